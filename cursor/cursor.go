// Package cursor implements single cursors and sorted multi-cursor sets over a
// text buffer. Positions are counted in chars, not bytes. A cursor may carry a
// selection; the anchor always sits on one of the selection's ends. A cursor
// may point one char beyond the buffer, where the next typed character lands.
package cursor

import (
	"unicode"

	"github.com/sirupsen/logrus"

	"quill/textbuf"
)

// Status describes what occupies a given char index.
type Status int

const (
	StatusNone Status = iota
	StatusWithinSelection
	StatusUnderCursor
)

// newlineLength is the char width of a line break.
const newlineLength = 1

// Selection is a half-open [B, E) char range, B < E.
type Selection struct {
	B int
	E int
}

func NewSelection(b, e int) Selection {
	if b >= e {
		logrus.Errorf("selection with begin %d >= end %d", b, e)
	}
	return Selection{B: b, E: e}
}

func (s Selection) Within(charIdx int) bool {
	return charIdx >= s.B && charIdx < s.E
}

func (s Selection) Len() int {
	if s.B >= s.E {
		logrus.Errorf("selection with begin >= end, returning 0 for length: %+v", s)
		return 0
	}
	return s.E - s.B
}

// WordDeterminant tells whether the word around firstIdx continues at
// currentIdx. Both indices address chars of buf.
type WordDeterminant func(buf textbuf.TextBuffer, firstIdx, currentIdx int) bool

// DefaultWordDeterminant groups runs of whitespace and runs of
// non-whitespace into words.
func DefaultWordDeterminant(buf textbuf.TextBuffer, firstIdx, currentIdx int) bool {
	first, ok1 := buf.CharAt(firstIdx)
	current, ok2 := buf.CharAt(currentIdx)
	if !ok1 || !ok2 {
		return false
	}
	return unicode.IsSpace(first) == unicode.IsSpace(current)
}

// CodeWordDeterminant separates identifier runs, whitespace runs and
// punctuation runs, so word motion in source code stops at operators.
func CodeWordDeterminant(buf textbuf.TextBuffer, firstIdx, currentIdx int) bool {
	first, ok1 := buf.CharAt(firstIdx)
	current, ok2 := buf.CharAt(currentIdx)
	if !ok1 || !ok2 {
		return false
	}
	return charClass(first) == charClass(current)
}

func charClass(r rune) int {
	switch {
	case unicode.IsSpace(r):
		return 0
	case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
		return 1
	default:
		return 2
	}
}

// Cursor is an anchor position with an optional selection. Invariant: when S
// is set, A equals S.B or S.E. PC is the preferred column for vertical moves;
// -1 means unset.
type Cursor struct {
	S  *Selection
	A  int
	PC int
}

func New(anchor int) Cursor {
	return Cursor{A: anchor, PC: -1}
}

func (c Cursor) WithSelection(sel Selection) Cursor {
	if sel.B != c.A && sel.E != c.A {
		logrus.Warn("selection not touching anchor, moving anchor to re-establish invariant")
		c.A = sel.E
	}
	c.S = &sel
	return c
}

func (c Cursor) WithPreferredColumn(pc int) Cursor {
	c.PC = pc
	return c
}

// Clone deep-copies the cursor, detaching the selection.
func (c Cursor) Clone() Cursor {
	if c.S != nil {
		sel := *c.S
		c.S = &sel
	}
	return c
}

// ShiftBy moves the anchor and selection by shift chars. It refuses shifts
// that would push any position below zero. Returns whether a position changed.
func (c *Cursor) ShiftBy(shift int) bool {
	if shift == 0 {
		return false
	}
	if shift < 0 {
		if c.A < -shift || (c.S != nil && c.S.B < -shift) {
			logrus.Errorf("attempted to shift %+v by %d, ignoring completely", c, shift)
			return false
		}
	}
	c.A += shift
	if c.S != nil {
		c.S = &Selection{B: c.S.B + shift, E: c.S.E + shift}
	}
	return true
}

// UpdateSelect moves the selection end that sat at oldPos to newPos,
// creating a selection when none exists and collapsing it when the ends meet.
// An end moved past the other one swaps roles with it, so B < E still holds.
// Consecutive calls may legitimately shrink a selection (the user reversed
// direction while holding the modifier).
func (c *Cursor) UpdateSelect(oldPos, newPos int) {
	if oldPos == newPos {
		return
	}
	if c.S == nil {
		c.S = &Selection{B: min(oldPos, newPos), E: max(oldPos, newPos)}
		return
	}
	if c.S.B == oldPos {
		if newPos != c.S.E {
			c.S = &Selection{B: min(newPos, c.S.E), E: max(newPos, c.S.E)}
		} else {
			c.S = nil
		}
		return
	}
	if c.S.E == oldPos {
		if c.S.B != newPos {
			c.S = &Selection{B: min(c.S.B, newPos), E: max(c.S.B, newPos)}
		} else {
			c.S = nil
		}
		return
	}
	logrus.Error("selection does not begin or end at anchor, not updating")
}

func (c *Cursor) ClearSelection() {
	c.S = nil
}

func (c *Cursor) ClearPC() {
	c.PC = -1
}

// ClearBoth drops both selection and preferred column.
func (c *Cursor) ClearBoth() {
	c.S = nil
	c.PC = -1
}

func (c *Cursor) StatusAt(charIdx int) Status {
	if charIdx == c.A {
		return StatusUnderCursor
	}
	if c.S != nil && c.S.Within(charIdx) {
		return StatusWithinSelection
	}
	return StatusNone
}

// MoveHome jumps to the first char of the current line. Returns false on noop.
func (c *Cursor) MoveHome(buf textbuf.TextBuffer, selecting bool) bool {
	oldPos := c.A
	line, ok := buf.CharToLine(c.A)
	if !ok {
		logrus.Errorf("no line for anchor %d", c.A)
		return false
	}
	newPos, ok := buf.LineToChar(line)
	if !ok {
		logrus.Errorf("no char for line %d", line)
		return false
	}

	if newPos == c.A {
		// Only the preferred column may change here, selection is untouched.
		if c.PC >= 0 {
			c.PC = -1
			return true
		}
		return false
	}

	c.A = newPos
	if selecting {
		c.UpdateSelect(oldPos, newPos)
	} else {
		c.ClearSelection()
	}
	c.PC = -1
	return true
}

// MoveEnd jumps to the last char of the current line, which for the final
// line means one past the buffer. Returns false on noop.
func (c *Cursor) MoveEnd(buf textbuf.TextBuffer, selecting bool) bool {
	oldPos := c.A
	line, ok := buf.CharToLine(c.A)
	if !ok {
		logrus.Errorf("no line for anchor %d", c.A)
		return false
	}

	var newPos int
	if virtualLines(buf) > line+1 {
		begin, ok := buf.LineToChar(line + 1)
		if !ok {
			logrus.Errorf("no char for line %d", line+1)
			return false
		}
		newPos = begin - newlineLength
	} else {
		newPos = buf.LenChars()
	}

	if newPos == c.A {
		if c.PC >= 0 {
			c.PC = -1
			return true
		}
		return false
	}

	c.A = newPos
	if selecting {
		c.UpdateSelect(oldPos, newPos)
	} else {
		c.ClearSelection()
	}
	c.PC = -1
	return true
}

// WordBegin steps left over the word-run behind the cursor. The determinant
// receives the first skipped index so it can tell whitespace runs from
// non-whitespace runs. Returns false on noop.
func (c *Cursor) WordBegin(buf textbuf.TextBuffer, selecting bool, det WordDeterminant) bool {
	if c.A == 0 {
		return false
	}
	oldPos := c.A
	c.A--

	// We first move, then remember what we jumped over, so that we collect
	// "more of the same as the first character behind the cursor".
	firstCharPos := c.A
	for c.A > 0 && det(buf, firstCharPos, c.A-1) {
		c.A--
	}

	if selecting {
		c.UpdateSelect(oldPos, c.A)
	} else {
		c.ClearSelection()
	}
	return oldPos != c.A
}

// WordEnd is the symmetric rightward step. Returns false on noop.
func (c *Cursor) WordEnd(buf textbuf.TextBuffer, selecting bool, det WordDeterminant) bool {
	if c.A == buf.LenChars() {
		return false
	}
	oldPos := c.A

	if det(buf, oldPos, c.A) {
		for c.A < buf.LenChars() && det(buf, oldPos, c.A) {
			c.A++
		}
	} else {
		c.A++
	}

	if selecting {
		c.UpdateSelect(oldPos, c.A)
	} else {
		c.ClearSelection()
	}
	return oldPos != c.A
}

// Simplify drops selection and preferred column, reporting whether either
// was present.
func (c *Cursor) Simplify() bool {
	res := false
	if c.PC >= 0 {
		c.PC = -1
		res = true
	}
	if c.S != nil {
		c.S = nil
		res = true
	}
	return res
}

// IsSimple ignores the preferred column.
func (c Cursor) IsSimple() bool {
	return c.S == nil
}

func (c Cursor) AnchorLeft() bool {
	return c.S != nil && c.S.B == c.A
}

func (c Cursor) AnchorRight() bool {
	return c.S != nil && c.S.E == c.A
}

// Begin is the leftmost position the cursor covers.
func (c Cursor) Begin() int {
	if c.S != nil {
		return c.S.B
	}
	return c.A
}

// End is the rightmost position the cursor covers.
func (c Cursor) End() int {
	if c.S != nil {
		return c.S.E
	}
	return c.A
}

// Intersects tells whether the cursor overlaps the half-open char range.
func (c Cursor) Intersects(begin, end int) bool {
	if c.IsSimple() {
		return begin <= c.A && c.A < end
	}
	return c.Begin() < end && begin < c.End()
}

func (c Cursor) CheckInvariant() bool {
	if c.S == nil {
		return true
	}
	return c.S.B != c.S.E && (c.S.B == c.A || c.S.E == c.A)
}

// compare orders cursors by anchor, then selection, then preferred column.
// Absent selections and columns sort first.
func compare(a, b Cursor) int {
	if a.A != b.A {
		return a.A - b.A
	}
	switch {
	case a.S == nil && b.S != nil:
		return -1
	case a.S != nil && b.S == nil:
		return 1
	case a.S != nil && b.S != nil:
		if a.S.B != b.S.B {
			return a.S.B - b.S.B
		}
		if a.S.E != b.S.E {
			return a.S.E - b.S.E
		}
	}
	return a.PC - b.PC
}

// virtualLines counts lines the way vertical motion wants them: a text
// ending with a newline contributes one extra, empty, appendable line.
func virtualLines(buf textbuf.TextBuffer) int {
	breaks, _ := buf.CharToLine(buf.LenChars())
	return breaks + 1
}
