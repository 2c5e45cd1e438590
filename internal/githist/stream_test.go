package githist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	line := "__REC__" + recordSeparator + "abc123" + recordSeparator + "Jane Doe" + recordSeparator + "1700000000" + recordSeparator + "fix: handle pipes | in subjects"
	rec, ok := parseHeader(line)
	require.True(t, ok)
	assert.Equal(t, "abc123", rec.Hash)
	assert.Equal(t, "Jane Doe", rec.Author)
	assert.Equal(t, int64(1700000000), rec.Timestamp)
	assert.Equal(t, "fix: handle pipes | in subjects", rec.Subject)
}

func TestParseHeader_RejoinsExtraSeparators(t *testing.T) {
	line := "__REC__" + recordSeparator + "abc" + recordSeparator + "A" + recordSeparator + "1" + recordSeparator + "part1" + recordSeparator + "part2"
	rec, ok := parseHeader(line)
	require.True(t, ok)
	assert.Equal(t, "part1"+recordSeparator+"part2", rec.Subject)
}

func TestParseHeader_TooFewFields(t *testing.T) {
	_, ok := parseHeader("__REC__" + recordSeparator + "abc")
	assert.False(t, ok)
}
