// Package search finds regex and substring occurrences in a text buffer. The
// result is an iterator of consecutive non-overlapping matches, meaning not
// necessarily all matches. Plain strings compile to themselves.
package search

import (
	"errors"
	"fmt"
	"regexp"

	"quill/textbuf"
)

var (
	ErrEmptyPattern = errors.New("empty search pattern")
	ErrPatternFail  = errors.New("pattern does not compile")
	ErrCharToByte   = errors.New("start position does not convert to a byte offset")
)

// Matches walks non-overlapping matches of a compiled pattern over a byte
// snapshot of the buffer.
type Matches struct {
	allBytes string
	re       *regexp.Regexp
	bytePos  int
}

// Find compiles pattern and positions the match iterator at startChars
// (negative means the buffer start).
func Find(pattern string, buf textbuf.TextBuffer, startChars int) (*Matches, error) {
	if pattern == "" {
		return nil, ErrEmptyPattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPatternFail, err)
	}

	bytePos := 0
	if startChars > 0 {
		pos, ok := buf.CharToByte(startChars)
		if !ok {
			return nil, ErrCharToByte
		}
		bytePos = pos
	}

	return &Matches{
		allBytes: buf.String(),
		re:       re,
		bytePos:  bytePos,
	}, nil
}

// Next returns the byte offsets of the next match. The scan resumes at the
// previous match's end, so matches never overlap.
func (m *Matches) Next() (begin, end int, ok bool) {
	if m.bytePos > len(m.allBytes) {
		return 0, 0, false
	}
	loc := m.re.FindStringIndex(m.allBytes[m.bytePos:])
	if loc == nil {
		return 0, 0, false
	}
	begin = m.bytePos + loc[0]
	end = m.bytePos + loc[1]
	if end == begin {
		// Zero-width match; step over one byte so the iterator terminates.
		m.bytePos = end + 1
	} else {
		m.bytePos = end
	}
	return begin, end, true
}
