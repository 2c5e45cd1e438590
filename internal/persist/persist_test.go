package persist

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileName_Sanitized(t *testing.T) {
	name := FileName("/home/user/My Repo!", KindFileList)
	assert.Regexp(t, `^my-repo-_[A-Za-z0-9_]{1,8}\.file-list$`, name)
}

func TestFileName_Deterministic(t *testing.T) {
	a := FileName("/repos/widget", KindWordSearch)
	b := FileName("/repos/widget", KindWordSearch)
	assert.Equal(t, a, b)
}

func TestWriteRead_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("the quick brown fox jumps over the lazy dog, repeatedly, for compressibility")

	require.NoError(t, Write(dir, "test.bin", payload))
	got, err := Read(dir, "test.bin")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestRead_BadMagic(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(dir, "good.bin", []byte("hello")))

	// Corrupt the magic tag directly.
	path := dir + "/good.bin"
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[0] = 'X'
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = Read(dir, "good.bin")
	assert.Error(t, err)
}

type testStruct struct {
	Name  string
	Count int
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	in := testStruct{Name: "widgets", Count: 42}
	require.NoError(t, Save(dir, "idx.bin", 1, &in))

	var out testStruct
	require.NoError(t, Load(dir, "idx.bin", 1, &out))
	assert.Equal(t, in, out)
}

func TestLoad_VersionMismatch(t *testing.T) {
	dir := t.TempDir()
	in := testStruct{Name: "widgets"}
	require.NoError(t, Save(dir, "idx.bin", 1, &in))

	var out testStruct
	err := Load(dir, "idx.bin", 2, &out)
	assert.Error(t, err)
}
