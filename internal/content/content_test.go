package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docs() []FileDoc {
	return []FileDoc{
		{Path: "a.go", Content: []byte("func handler() {\n\treturn parseRequest()\n}\n")},
		{Path: "b.go", Content: []byte("func parseRequest() Request {\n\treturn Request{}\n}\n")},
		{Path: "c.go", Content: []byte("// unrelated file\nfunc other() {}\n")},
	}
}

func TestBuild_FileTokenCounts(t *testing.T) {
	ci := Build(docs(), BuildOptions{Workers: 2})
	require.Equal(t, 3, ci.FileCount())
	for i := range docs() {
		assert.Greater(t, ci.fileTokenCounts[i], uint32(0))
	}
}

func TestQuery_Any(t *testing.T) {
	ci := Build(docs(), BuildOptions{})
	hits, err := ci.Query([]string{"parserequest"}, ModeAny)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	paths := []string{hits[0].Path, hits[1].Path}
	assert.Contains(t, paths, "a.go")
	assert.Contains(t, paths, "b.go")
}

func TestQuery_All_RequiresEveryTerm(t *testing.T) {
	ci := Build(docs(), BuildOptions{})
	hits, err := ci.Query([]string{"func", "other"}, ModeAll)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c.go", hits[0].Path)
}

func TestQuery_EmptyTerms(t *testing.T) {
	ci := Build(docs(), BuildOptions{})
	_, err := ci.Query(nil, ModeAny)
	assert.Error(t, err)
}

func TestSubstringSearch(t *testing.T) {
	ci := Build(docs(), BuildOptions{})
	hits := ci.SubstringSearch("parse")
	_, ok := hits["parserequest"]
	assert.True(t, ok)
}

func TestUpsertAndRemove(t *testing.T) {
	ci := New()
	require.NoError(t, ci.Upsert("x.go", []byte("func alpha() {}")))
	require.NoError(t, ci.Upsert("y.go", []byte("func beta() {}")))

	hits, err := ci.Query([]string{"alpha"}, ModeAny)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "x.go", hits[0].Path)

	ci.Remove("x.go")
	hits, err = ci.Query([]string{"alpha"}, ModeAny)
	require.NoError(t, err)
	assert.Len(t, hits, 0)

	// file_id should be reused by the next Upsert.
	require.NoError(t, ci.Upsert("z.go", []byte("func gamma() {}")))
	assert.Equal(t, 2, ci.FileCount())
}

func TestQuery_Phrase_Alphanumeric(t *testing.T) {
	ci := Build(docs(), BuildOptions{})
	hits, err := ci.Query([]string{"func", "handler"}, ModePhrase)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a.go", hits[0].Path)
}

func TestQuery_Phrase_Punctuated_BypassesTokenization(t *testing.T) {
	ci := Build(docs(), BuildOptions{})
	read := func(path string) (string, error) {
		for _, d := range docs() {
			if d.Path == path {
				return string(d.Content), nil
			}
		}
		return "", assert.AnError
	}

	// "parseRequest()" contains punctuation; the raw phrase must be
	// substring-matched against line text rather than truncated to its
	// first token ("parserequest").
	hits, err := ci.Query([]string{"parseRequest()"}, ModePhrase, read)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	paths := []string{hits[0].Path, hits[1].Path}
	assert.Contains(t, paths, "a.go")
	assert.Contains(t, paths, "b.go")
}

func TestQuery_Phrase_Punctuated_NoReaderReturnsUnscoredCandidates(t *testing.T) {
	ci := Build(docs(), BuildOptions{})
	hits, err := ci.Query([]string{"parseRequest()"}, ModePhrase)
	require.NoError(t, err)
	// Without a LineReader the literal text can't be verified, so every
	// candidate sharing a sub-token is reported, unscored.
	assert.GreaterOrEqual(t, len(hits), 1)
}

func TestUpsert_Reindex(t *testing.T) {
	ci := New()
	require.NoError(t, ci.Upsert("x.go", []byte("func alpha() {}")))
	require.NoError(t, ci.Upsert("x.go", []byte("func renamed() {}")))

	hits, err := ci.Query([]string{"alpha"}, ModeAny)
	require.NoError(t, err)
	assert.Len(t, hits, 0)

	hits, err = ci.Query([]string{"renamed"}, ModeAny)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "x.go", hits[0].Path)
}
