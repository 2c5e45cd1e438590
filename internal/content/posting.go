package content

import "github.com/standardbeagle/lci/internal/types"

// Posting is one (token, file) entry in the inverted index: the file that
// contains the token and the 1-based, strictly increasing line numbers it
// appears on.
type Posting struct {
	FileID types.FileID
	Lines  []uint32
}

// addLine appends line to p.Lines if it isn't already the last line recorded,
// preserving the strictly-increasing invariant.
func (p *Posting) addLine(line uint32) {
	if n := len(p.Lines); n > 0 && p.Lines[n-1] == line {
		return
	}
	p.Lines = append(p.Lines, line)
}
