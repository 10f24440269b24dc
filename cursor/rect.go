package cursor

// Screen-space geometry of a cursor set, used by views to decide what to
// scroll into sight.

import (
	"github.com/sirupsen/logrus"

	"quill/textbuf"
)

// XY is a (column, row) position in char space.
type XY struct {
	X int
	Y int
}

// Rect spans Min to Max inclusive.
type Rect struct {
	Min XY
	Max XY
}

func (r *Rect) expandToContain(p XY) {
	r.Min.X = min(r.Min.X, p.X)
	r.Min.Y = min(r.Min.Y, p.Y)
	r.Max.X = max(r.Max.X, p.X)
	r.Max.Y = max(r.Max.Y, p.Y)
}

// ToXY places a cursor's anchor on the (column, row) grid.
func ToXY(c Cursor, buf textbuf.TextBuffer) XY {
	y, ok := buf.CharToLine(c.A)
	if !ok {
		logrus.Errorf("failed translating cursor to XY (1), most likely wrong buffer provided: %+v", c)
		return XY{}
	}
	lineBegin, ok := buf.LineToChar(y)
	if !ok {
		logrus.Errorf("failed translating cursor to XY (2), most likely wrong buffer provided: %+v", c)
		return XY{}
	}
	return XY{X: c.A - lineBegin, Y: y}
}

// BoundingRect is the smallest rect containing every anchor of the set.
func BoundingRect(cs *Set, buf textbuf.TextBuffer) Rect {
	cursors := cs.Cursors()
	if len(cursors) == 0 {
		logrus.Error("asked for bounding rect of an empty cursor set, returning zero")
		return Rect{}
	}
	first := ToXY(cursors[0], buf)
	rect := Rect{Min: first, Max: first}
	for _, c := range cursors[1:] {
		rect.expandToContain(ToXY(c, buf))
	}
	return rect
}
