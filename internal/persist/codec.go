package persist

import (
	"bytes"
	"encoding/gob"

	"github.com/standardbeagle/lci/internal/errors"
)

// Envelope wraps a persisted index payload with the format_version every
// on-disk struct carries, so a version bump can be detected before the
// decoder touches the payload's real fields.
type Envelope struct {
	FormatVersion uint32
	Payload       []byte
}

// Save gob-encodes v into an Envelope at formatVersion, then writes it
// through the shared LZ4 frame. gob is the standard-library choice here:
// none of the retrieval pack's examples bring in a general-purpose object
// serialization library (protobuf/msgpack/flatbuffers), so this layer
// follows the stdlib rather than inventing a dependency to fit (see
// DESIGN.md); the LZ4 framing above it is the real, pack-external
// dependency the spec requires.
func Save(dir, name string, formatVersion uint32, v any) error {
	var payloadBuf bytes.Buffer
	if err := gob.NewEncoder(&payloadBuf).Encode(v); err != nil {
		return errors.Decode("persist.Save", "gob encode failed", err)
	}

	var envBuf bytes.Buffer
	env := Envelope{FormatVersion: formatVersion, Payload: payloadBuf.Bytes()}
	if err := gob.NewEncoder(&envBuf).Encode(env); err != nil {
		return errors.Decode("persist.Save", "gob encode envelope failed", err)
	}

	return Write(dir, name, envBuf.Bytes())
}

// Load reads and decompresses name, verifies formatVersion, and gob-decodes
// the payload into v. Any failure (missing file, bad magic, version
// mismatch, decode error) returns a DecodeError/IoError the caller treats
// as "rebuild".
func Load(dir, name string, formatVersion uint32, v any) error {
	raw, err := Read(dir, name)
	if err != nil {
		return err
	}

	var env Envelope
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&env); err != nil {
		return errors.Decode("persist.Load", "gob decode envelope failed", err)
	}
	if env.FormatVersion != formatVersion {
		return errors.Decode("persist.Load", "format_version mismatch", nil)
	}
	if err := gob.NewDecoder(bytes.NewReader(env.Payload)).Decode(v); err != nil {
		return errors.Decode("persist.Load", "gob decode payload failed", err)
	}
	return nil
}
