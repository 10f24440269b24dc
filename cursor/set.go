package cursor

// Set is the sorted, non-overlapping collection of cursors of one view.
//
// Invariants:
//   - non-empty (so a supercursor always exists),
//   - strict order by anchor,
//   - anchors sit on the same side of every selection,
//   - no two cursors overlap,
//   - every position lies within [0, LenChars()].
//
// A motion may temporarily break the same-side rule; ReduceLeft/ReduceRight
// repair it afterwards.

import (
	"slices"

	"github.com/sirupsen/logrus"

	"quill/textbuf"
)

type Set struct {
	set []Cursor
}

// NewSet returns a set with a single cursor at position zero.
func NewSet() *Set {
	return &Set{set: []Cursor{New(0)}}
}

// Singleton wraps one cursor. Singleton in the set-theory sense.
func Singleton(c Cursor) *Set {
	return &Set{set: []Cursor{c}}
}

// FromCursors builds a set from already-sorted, non-overlapping cursors.
func FromCursors(cursors []Cursor) *Set {
	return &Set{set: cursors}
}

// Cursors exposes the underlying slice. Callers may mutate elements in place
// but must re-establish the invariants via the Reduce methods.
func (cs *Set) Cursors() []Cursor {
	return cs.set
}

// AsSingle returns the only cursor, or nil if the set is not a singleton.
func (cs *Set) AsSingle() *Cursor {
	if len(cs.set) != 1 {
		return nil
	}
	return &cs.set[0]
}

func (cs *Set) Len() int {
	return len(cs.set)
}

func (cs *Set) IsSingle() bool {
	return len(cs.set) == 1
}

// Clone deep-copies the set, detaching all selections.
func (cs *Set) Clone() *Set {
	out := make([]Cursor, len(cs.set))
	for i, c := range cs.set {
		out[i] = c.Clone()
	}
	return &Set{set: out}
}

// MaxCursorPos is the largest index under any cursor or within any selection.
func (cs *Set) MaxCursorPos() int {
	maxPos := 0
	for _, c := range cs.set {
		maxPos = max(maxPos, c.A)
		if c.S != nil {
			maxPos = max(maxPos, c.S.E)
		}
	}
	return maxPos
}

// Supercursor is the set's first cursor, used to anchor find-continuation.
func (cs *Set) Supercursor() *Cursor {
	if len(cs.set) == 0 {
		logrus.Error("invariant broken, empty cursor set")
		cs.set = []Cursor{New(0)}
	}
	return &cs.set[0]
}

func (cs *Set) MoveLeft(selecting bool) bool {
	return cs.MoveLeftBy(1, selecting)
}

// MoveLeftBy decrements each anchor by up to l. Overlaps between neighbors
// are resolved by cutting the rightmost edge of the left selection, then
// ReduceLeft restores the invariants.
func (cs *Set) MoveLeftBy(l int, selecting bool) bool {
	res := false
	for i := range cs.set {
		c := &cs.set[i]
		if c.A > 0 {
			oldPos := c.A
			c.A -= min(c.A, l)
			if selecting {
				c.UpdateSelect(oldPos, c.A)
				c.PC = -1
			} else {
				c.ClearBoth()
			}
			res = true
		}
	}

	if selecting {
		// Cut overlaps from the right side of the earlier selection, since
		// this was a move left.
		for i := 0; i < len(cs.set)-1; i++ {
			right := cs.set[i+1]
			left := &cs.set[i]
			if left.S != nil && right.S != nil && left.S.E > right.S.B {
				if left.S.B >= right.S.B {
					left.S = nil
				} else {
					left.S = &Selection{B: left.S.B, E: right.S.B}
				}
			}
		}
	}

	cs.ReduceLeft()
	return res
}

func (cs *Set) MoveRight(buf textbuf.TextBuffer, selecting bool) bool {
	return cs.MoveRightBy(buf, 1, selecting)
}

// MoveRightBy is symmetric to MoveLeftBy; it cuts the leftmost edge of the
// later selection and iterates in reverse so neighbors whose data was already
// rewritten are not consulted again.
func (cs *Set) MoveRightBy(buf textbuf.TextBuffer, l int, selecting bool) bool {
	if cs.MaxCursorPos() > buf.LenChars() {
		logrus.Error("buffer shorter than cursor positions, returning prematurely to avoid crash")
		return false
	}

	length := buf.LenChars()
	res := false
	for i := range cs.set {
		c := &cs.set[i]
		// The anchor is allowed one past the last char.
		if c.A < length {
			oldPos := c.A
			c.A = min(c.A+l, length)
			if selecting {
				c.UpdateSelect(oldPos, c.A)
				c.PC = -1
			} else {
				c.ClearBoth()
			}
			res = true
		}
	}

	if selecting {
		for i := len(cs.set) - 2; i >= 0; i-- {
			left := cs.set[i]
			right := &cs.set[i+1]
			if left.S != nil && right.S != nil && left.S.E > right.S.B {
				if left.S.E >= right.S.E {
					right.S = nil
				} else {
					right.S = &Selection{B: left.S.E, E: right.S.E}
				}
			}
		}
	}

	cs.ReduceRight()
	return res
}

// MoveVerticallyBy moves every cursor l lines (negative l moves up), keeping
// the preferred column across lines too short to host it.
func (cs *Set) MoveVerticallyBy(buf textbuf.TextBuffer, l int, selecting bool) bool {
	if cs.MaxCursorPos() > buf.LenChars() {
		logrus.Error("buffer shorter than cursor positions, returning prematurely to avoid crash")
		return false
	}
	if l == 0 {
		return false
	}

	res := false
	lastLineIdx := virtualLines(buf) - 1

	for i := range cs.set {
		c := &cs.set[i]
		if !selecting {
			c.ClearSelection()
		}

		curLineIdx, ok := buf.CharToLine(c.A)
		if !ok {
			logrus.Error("char_to_line failed unexpectedly, skipping cursor")
			continue
		}
		curLineBegin, ok := buf.LineToChar(curLineIdx)
		if !ok {
			logrus.Error("line_to_char failed unexpectedly (1), skipping cursor")
			continue
		}
		currentCol := c.A - curLineBegin

		// Target line beyond the end of buffer.
		if curLineIdx+l > lastLineIdx {
			if c.A == buf.LenChars() {
				continue
			}
			c.PC = currentCol
			oldPos := c.A
			c.A = buf.LenChars()
			if selecting {
				c.UpdateSelect(oldPos, c.A)
			}
			res = true
			continue
		}

		// Can't scroll that far up, begin of file is the best we can get.
		if curLineIdx+l < 0 {
			if c.A == 0 {
				continue
			}
			c.PC = currentCol
			oldPos := c.A
			c.A = 0
			if selecting {
				c.UpdateSelect(oldPos, c.A)
			}
			res = true
			continue
		}

		newLineIdx := curLineIdx + l

		// The newline counts as the last character of its line.
		var lastCharInNewLine int
		if newLineIdx == lastLineIdx {
			// The "potential new character" beyond the buffer is a valid
			// cursor position.
			lastCharInNewLine = buf.LenChars()
		} else {
			begin, ok := buf.LineToChar(newLineIdx + 1)
			if !ok {
				logrus.Error("line_to_char failed unexpectedly (2), skipping cursor")
				continue
			}
			lastCharInNewLine = begin - newlineLength
		}

		newLineBegin, ok := buf.LineToChar(newLineIdx)
		if !ok {
			logrus.Error("line_to_char failed unexpectedly (3), skipping cursor")
			continue
		}
		newLineChars := lastCharInNewLine + 1 - newLineBegin

		if c.PC >= 0 {
			preferred := c.PC
			oldPos := c.A
			if preferred <= newLineChars-newlineLength {
				// The new line has room for the remembered column.
				c.PC = -1
				c.A = newLineBegin + preferred
			} else {
				c.A = newLineBegin + newLineChars - newlineLength
			}
			if selecting {
				c.UpdateSelect(oldPos, c.A)
			}
			if oldPos != c.A {
				res = true
			}
		} else {
			oldPos := c.A
			addon := 0
			if newLineIdx == lastLineIdx {
				// The last line is one char "longer" than it is, so the
				// cursor can sit behind the buffer, appending.
				addon = 1
			}
			if newLineChars+addon <= currentCol {
				c.A = newLineBegin + newLineChars - 1
				c.PC = currentCol
			} else {
				c.A = newLineBegin + currentCol
			}
			if selecting {
				c.UpdateSelect(oldPos, c.A)
			}
			if oldPos != c.A {
				res = true
			}
		}
	}

	if l < 0 {
		cs.ReduceLeft()
	} else {
		cs.ReduceRight()
	}
	return res
}

func (cs *Set) MoveHome(buf textbuf.TextBuffer, selecting bool) bool {
	if cs.MaxCursorPos() > buf.LenChars() {
		logrus.Error("buffer shorter than cursor positions, returning prematurely to avoid crash")
		return false
	}
	res := false
	for i := range cs.set {
		res = cs.set[i].MoveHome(buf, selecting) || res
	}
	cs.ReduceLeft()
	return res
}

func (cs *Set) MoveEnd(buf textbuf.TextBuffer, selecting bool) bool {
	if cs.MaxCursorPos() > buf.LenChars() {
		logrus.Error("buffer shorter than cursor positions, returning prematurely to avoid crash")
		return false
	}
	res := false
	for i := range cs.set {
		res = cs.set[i].MoveEnd(buf, selecting) || res
	}
	cs.ReduceRight()
	return res
}

func (cs *Set) WordBegin(buf textbuf.TextBuffer, selecting bool, det WordDeterminant) bool {
	res := false
	for i := range cs.set {
		res = cs.set[i].WordBegin(buf, selecting, det) || res
	}
	cs.ReduceLeft()
	return res
}

func (cs *Set) WordEnd(buf textbuf.TextBuffer, selecting bool, det WordDeterminant) bool {
	res := false
	for i := range cs.set {
		res = cs.set[i].WordEnd(buf, selecting, det) || res
	}
	cs.ReduceRight()
	return res
}

func (cs *Set) WordBeginDefault(buf textbuf.TextBuffer, selecting bool) bool {
	return cs.WordBegin(buf, selecting, DefaultWordDeterminant)
}

func (cs *Set) WordEndDefault(buf textbuf.TextBuffer, selecting bool) bool {
	return cs.WordEnd(buf, selecting, DefaultWordDeterminant)
}

// StatusAt aggregates the cursor statuses for one char index. UnderCursor
// wins over WithinSelection.
func (cs *Set) StatusAt(charIdx int) Status {
	current := StatusNone
	for _, c := range cs.set {
		switch c.StatusAt(charIdx) {
		case StatusWithinSelection:
			if current == StatusNone {
				current = StatusWithinSelection
			}
		case StatusUnderCursor:
			return StatusUnderCursor
		}
	}
	return current
}

// normalizeAnchor moves every anchor to the chosen selection edge. Reports
// whether any anchor actually moved, which implies the same-side invariant
// was broken earlier.
func (cs *Set) normalizeAnchor(right bool) bool {
	changed := false
	for i := range cs.set {
		c := &cs.set[i]
		if c.S == nil {
			continue
		}
		if right {
			if c.A != c.S.E {
				changed = true
			}
			c.A = c.S.E
		} else {
			if c.A != c.S.B {
				changed = true
			}
			c.A = c.S.B
		}
	}
	return changed
}

// ReduceLeft normalizes after a leftward move: anchors go to selection
// begins, colliding anchors keep the longer selection, and overlapping
// neighbors lose the tail of the earlier selection.
func (cs *Set) ReduceLeft() {
	if len(cs.set) == 1 {
		return
	}

	if cs.normalizeAnchor(false) {
		logrus.Warn("normalizing anchor left had an effect, this is not expected")
	}

	cs.dedupByAnchor(false)

	for i := 0; i < len(cs.set)-1; i++ {
		next := cs.set[i+1]
		curr := &cs.set[i]
		if curr.S != nil && curr.S.E > next.A {
			if curr.S.B >= next.A {
				curr.S = nil
			} else {
				curr.S = &Selection{B: curr.S.B, E: next.A}
			}
		}
	}
}

// ReduceRight is the mirror image, shortening the later selection's begin.
func (cs *Set) ReduceRight() {
	if len(cs.set) == 1 {
		return
	}

	if cs.normalizeAnchor(true) {
		logrus.Warn("normalizing anchor right had an effect, this is not expected")
	}

	cs.dedupByAnchor(true)

	for i := len(cs.set) - 1; i >= 1; i-- {
		prev := cs.set[i-1]
		curr := &cs.set[i]
		if curr.S != nil && prev.S != nil && curr.S.B < prev.S.E {
			if curr.S.E <= prev.S.E {
				curr.S = nil
			} else {
				curr.S = &Selection{B: prev.S.E, E: curr.S.E}
			}
		}
	}
}

// dedupByAnchor sorts by anchor and keeps, per colliding anchor, the cursor
// with the longer selection (one with any selection dominates one without).
func (cs *Set) dedupByAnchor(right bool) {
	slices.SortStableFunc(cs.set, func(a, b Cursor) int {
		return a.A - b.A
	})

	out := cs.set[:0:0]
	for _, c := range cs.set {
		if len(out) == 0 || out[len(out)-1].A != c.A {
			out = append(out, c)
			continue
		}
		prev := &out[len(out)-1]
		switch {
		case prev.S == nil && c.S != nil:
			*prev = c
		case prev.S != nil && c.S != nil && !right && c.S.E > prev.S.E:
			*prev = c
		case prev.S != nil && c.S != nil && right && c.S.B < prev.S.B:
			*prev = c
		}
	}
	cs.set = out
}

// Simplify drops every selection and preferred column.
func (cs *Set) Simplify() bool {
	res := false
	for i := range cs.set {
		res = cs.set[i].Simplify() || res
	}
	return res
}

// AreSimple considers only selections, ignoring preferred columns.
func (cs *Set) AreSimple() bool {
	for _, c := range cs.set {
		if !c.IsSimple() {
			return false
		}
	}
	return true
}

// AddCursor inserts a cursor, keeping the order. Precondition: the set is
// simple. Returns false when the position is already occupied.
func (cs *Set) AddCursor(c Cursor) bool {
	if !cs.AreSimple() {
		logrus.Warn("adding a cursor to a non-simple set")
	}
	if cs.StatusAt(c.A) != StatusNone {
		return false
	}
	cs.set = append(cs.set, c)
	slices.SortFunc(cs.set, compare)
	return true
}

// RemoveByAnchor removes the unique cursor anchored at anchorChar. The set
// may become temporarily empty; callers re-seed it.
func (cs *Set) RemoveByAnchor(anchorChar int) bool {
	for i := range cs.set {
		if cs.set[i].A == anchorChar {
			cs.set = append(cs.set[:i], cs.set[i+1:]...)
			return true
		}
	}
	return false
}

// CheckInvariants validates the whole set, logging the first violation.
func (cs *Set) CheckInvariants() bool {
	if len(cs.set) == 0 {
		logrus.Error("cursor set empty")
		return false
	}

	for _, c := range cs.set {
		if !c.CheckInvariant() {
			return false
		}
	}

	for i := 1; i < len(cs.set); i++ {
		if compare(cs.set[i-1], cs.set[i]) >= 0 {
			logrus.Errorf("cursor[%d] = %+v >= %+v = cursor[%d]", i-1, cs.set[i-1], cs.set[i], i)
			return false
		}
	}

	anchorLeft, anchorRight := false, false
	for _, c := range cs.set {
		anchorLeft = anchorLeft || c.AnchorLeft()
		anchorRight = anchorRight || c.AnchorRight()
	}
	if anchorLeft && anchorRight {
		logrus.Error(`invariant "anchors on the same side" failed`)
		return false
	}

	for i := 1; i < len(cs.set); i++ {
		if cs.set[i-1].End() > cs.set[i].Begin() {
			logrus.Errorf("cursor[%d].End() = %d > %d = cursor[%d].Begin()",
				i-1, cs.set[i-1].End(), cs.set[i].Begin(), i)
			return false
		}
	}
	return true
}
