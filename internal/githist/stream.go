package githist

import (
	"bufio"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/standardbeagle/lci/internal/errors"
)

const recordMarker = "__REC__"

// streamLogOutput scans cmd's stdout line by line, never buffering the
// full output: a record header line (marked by recordMarker) starts a new
// commit; subsequent non-empty lines until the next header are that
// commit's touched files. The subject is the last of the header's
// record-separator-delimited fields; any extra separators found in it
// (e.g. from a subject that itself contains the control character, which
// is vanishingly rare but not impossible) are rejoined rather than
// truncating the subject.
func streamLogOutput(cmd *exec.Cmd, onRecord func(LogRecord) error) error {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.IO("githist.streamLogOutput", "stdout", err)
	}
	if err := cmd.Start(); err != nil {
		return errors.IO("githist.streamLogOutput", "git log", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var current *LogRecord
	flush := func() error {
		if current == nil {
			return nil
		}
		rec := *current
		current = nil
		return onRecord(rec)
	}

	var streamErr error
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, recordMarker+recordSeparator) {
			if err := flush(); err != nil {
				streamErr = err
				break
			}
			rec, ok := parseHeader(line)
			if !ok {
				continue
			}
			current = &rec
			continue
		}
		if line == "" {
			continue
		}
		if current != nil {
			current.Files = append(current.Files, line)
		}
	}
	if streamErr == nil {
		streamErr = flush()
	}

	waitErr := cmd.Wait()
	if streamErr != nil {
		return streamErr
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return errors.IO("githist.streamLogOutput", "scan", err)
	}
	if waitErr != nil {
		return errors.IO("githist.streamLogOutput", "git log", waitErr)
	}
	return nil
}

func parseHeader(line string) (LogRecord, bool) {
	fields := strings.Split(line, recordSeparator)
	// fields[0] == recordMarker; hash, author, timestamp, then subject
	// (rejoining any extra separator-delimited pieces back into it).
	if len(fields) < 5 {
		return LogRecord{}, false
	}
	ts, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return LogRecord{}, false
	}
	subject := strings.Join(fields[4:], recordSeparator)
	return LogRecord{
		Hash:      fields[1],
		Author:    fields[2],
		Timestamp: ts,
		Subject:   subject,
	}, true
}
