package cursor

// StupidCursor is the (line, char-in-line) position pair used only because
// line-oriented external protocols use it. Char counts Unicode scalars from
// the line start: not bytes, not grapheme clusters, not display columns, so
// it converts to nothing else easily.

import (
	"github.com/sirupsen/logrus"

	"quill/textbuf"
)

type StupidCursor struct {
	Line int // Zero based.
	Char int // Zero based, scalars from line start.
}

// FromCursor converts a real cursor's anchor. It refuses positions the
// buffer can't place.
func FromCursor(buf textbuf.TextBuffer, c Cursor) (StupidCursor, bool) {
	line, ok := buf.CharToLine(c.A)
	if !ok {
		logrus.Error("failed casting cursor to protocol cursor, no line for anchor")
		return StupidCursor{}, false
	}
	lineBegin, ok := buf.LineToChar(line)
	if !ok {
		logrus.Error("failed casting cursor to protocol cursor, no line begin")
		return StupidCursor{}, false
	}
	if lineBegin > c.A {
		logrus.Error("failed casting cursor to protocol cursor, line begin past anchor")
		return StupidCursor{}, false
	}
	return StupidCursor{Line: line, Char: c.A - lineBegin}, true
}

// ToCursor converts back to a real cursor, refusing positions beyond the
// buffer. A position one past the last line's text is allowed, appending.
func (sc StupidCursor) ToCursor(buf textbuf.TextBuffer) (Cursor, bool) {
	lineBegin, ok := buf.LineToChar(sc.Line)
	if !ok {
		logrus.Debug("can't cast protocol cursor to real cursor, not enough lines")
		return Cursor{}, false
	}
	candidate := lineBegin + sc.Char
	if nextBegin, ok := buf.LineToChar(sc.Line + 1); ok {
		if candidate <= nextBegin {
			return New(candidate), true
		}
		logrus.Debug("can't cast protocol cursor to real cursor, not enough chars in line")
		return Cursor{}, false
	}
	// Last line: the position one past the buffer is a valid cursor.
	if candidate <= buf.LenChars() {
		return New(candidate), true
	}
	logrus.Debug("can't cast protocol cursor to real cursor, not enough chars in last line")
	return Cursor{}, false
}

// ToSelection converts a protocol range into a selection, refusing deformed
// or unplaceable ranges.
func ToSelection(first, second StupidCursor, buf textbuf.TextBuffer) (Selection, bool) {
	a, ok := first.ToCursor(buf)
	if !ok {
		return Selection{}, false
	}
	b, ok := second.ToCursor(buf)
	if !ok {
		return Selection{}, false
	}
	if a.A >= b.A {
		logrus.Errorf("protocol range %v >= %v is deformed", first, second)
		return Selection{}, false
	}
	return NewSelection(a.A, b.A), true
}

// Compare orders by line, then char.
func (sc StupidCursor) Compare(other StupidCursor) int {
	if sc.Line != other.Line {
		return sc.Line - other.Line
	}
	return sc.Char - other.Char
}

// IsBetween tells whether sc lies in [leftInclusive, rightExclusive).
func (sc StupidCursor) IsBetween(leftInclusive, rightExclusive StupidCursor) bool {
	if leftInclusive.Compare(rightExclusive) >= 0 {
		logrus.Errorf("protocol cursor %v can't be within deformed range %v %v",
			sc, leftInclusive, rightExclusive)
		return false
	}
	return leftInclusive.Compare(sc) <= 0 && sc.Compare(rightExclusive) < 0
}
