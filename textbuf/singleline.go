package textbuf

// SingleLine is the simplified one-line TextBuffer used by line-oriented
// widgets (prompts, command bars) and by tests that pin the container
// interface. It refuses newline insertion instead of growing lines.

import (
	"iter"
	"strings"

	"github.com/sirupsen/logrus"
)

type SingleLine struct {
	runes []rune
}

// NewSingleLine keeps only the first line of s.
func NewSingleLine(s string) *SingleLine {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return &SingleLine{runes: []rune(s)}
}

func (l *SingleLine) LenBytes() int {
	return len(string(l.runes))
}

func (l *SingleLine) LenChars() int {
	return len(l.runes)
}

func (l *SingleLine) LenLines() int {
	return 1
}

func (l *SingleLine) CharAt(charIdx int) (rune, bool) {
	if charIdx < 0 || charIdx >= len(l.runes) {
		return 0, false
	}
	return l.runes[charIdx], true
}

func (l *SingleLine) CharToByte(charIdx int) (int, bool) {
	if charIdx < 0 || charIdx > len(l.runes) {
		return 0, false
	}
	return len(string(l.runes[:charIdx])), true
}

func (l *SingleLine) ByteToChar(byteIdx int) (int, bool) {
	s := string(l.runes)
	if byteIdx < 0 || byteIdx > len(s) {
		return 0, false
	}
	if byteIdx < len(s) && !isRuneStart(s[byteIdx]) {
		return 0, false
	}
	chars := 0
	for off := range s {
		if off >= byteIdx {
			break
		}
		chars++
	}
	return chars, true
}

func (l *SingleLine) CharToLine(charIdx int) (int, bool) {
	if charIdx < 0 || charIdx > len(l.runes) {
		return 0, false
	}
	return 0, true
}

func (l *SingleLine) LineToChar(lineIdx int) (int, bool) {
	if lineIdx != 0 {
		return 0, false
	}
	return 0, true
}

func (l *SingleLine) Line(lineIdx int) string {
	if lineIdx != 0 {
		return ""
	}
	return string(l.runes)
}

func (l *SingleLine) Chars() iter.Seq[rune] {
	return func(yield func(rune) bool) {
		for _, ch := range l.runes {
			if !yield(ch) {
				return
			}
		}
	}
}

func (l *SingleLine) Lines() iter.Seq[string] {
	return lines(l.Chars())
}

func (l *SingleLine) InsertBlock(charIdx int, block string) bool {
	if charIdx < 0 || charIdx > len(l.runes) {
		logrus.Warnf("insert at %d rejected, line holds %d chars", charIdx, len(l.runes))
		return false
	}
	if strings.ContainsRune(block, '\n') {
		logrus.Warnf("newline insert rejected by single-line store")
		return false
	}
	insert := []rune(block)
	updated := make([]rune, 0, len(l.runes)+len(insert))
	updated = append(updated, l.runes[:charIdx]...)
	updated = append(updated, insert...)
	updated = append(updated, l.runes[charIdx:]...)
	l.runes = updated
	return true
}

func (l *SingleLine) Remove(charBegin, charEnd int) bool {
	if charBegin >= charEnd {
		logrus.Errorf("removal of improper range (%d, %d) rejected", charBegin, charEnd)
		return false
	}
	if charBegin < 0 || charEnd > len(l.runes) {
		return false
	}
	l.runes = append(l.runes[:charBegin:charBegin], l.runes[charEnd:]...)
	return true
}

func (l *SingleLine) String() string {
	return string(l.runes)
}
