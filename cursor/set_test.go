package cursor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/cursor"
	"quill/edittest"
	"quill/textbuf"
)

func applySet(t *testing.T, input string, f func(*cursor.Set, textbuf.TextBuffer)) string {
	t.Helper()
	buf, cs := edittest.Decode(input)
	f(cs, buf)
	require.True(t, cs.CheckInvariants())
	return edittest.Encode(buf, cs)
}

func TestMoveLeftRight(t *testing.T) {
	right := func(cs *cursor.Set, buf textbuf.TextBuffer) { cs.MoveRight(buf, false) }
	left := func(cs *cursor.Set, buf textbuf.TextBuffer) { cs.MoveLeft(false) }

	assert.Equal(t, "a#bc", applySet(t, "#abc", right))
	assert.Equal(t, "abc#", applySet(t, "ab#c", right))
	assert.Equal(t, "abc#", applySet(t, "abc#", right))

	assert.Equal(t, "#abc", applySet(t, "a#bc", left))
	assert.Equal(t, "#abc", applySet(t, "#abc", left))

	// Colliding cursors merge.
	assert.Equal(t, "#abc", applySet(t, "#a#bc", left))
	assert.Equal(t, "abc#", applySet(t, "ab#c#", right))
}

// CursorLeft then CursorRight on an interior cursor is identity.
func TestLeftRightRoundTrip(t *testing.T) {
	both := func(cs *cursor.Set, buf textbuf.TextBuffer) {
		cs.MoveLeft(false)
		cs.MoveRight(buf, false)
	}
	assert.Equal(t, "ab#c", applySet(t, "ab#c", both))
}

func TestMoveRightSelecting(t *testing.T) {
	right := func(cs *cursor.Set, buf textbuf.TextBuffer) { cs.MoveRight(buf, true) }

	assert.Equal(t, "(a]bc", applySet(t, "#abc", right))
	assert.Equal(t, "(ab]c", applySet(t, "(a]bc", right))

	// Adjacent selections collide and reduce.
	assert.Equal(t, "(a](b]c", applySet(t, "#a#bc", right))
	assert.Equal(t, "(ab](c]", applySet(t, "(a](b]c", right))
}

func TestMoveLeftSelecting(t *testing.T) {
	left := func(cs *cursor.Set, buf textbuf.TextBuffer) { cs.MoveLeft(true) }

	assert.Equal(t, "ab[c)", applySet(t, "abc#", left))
	assert.Equal(t, "a[bc)", applySet(t, "ab[c)", left))
	assert.Equal(t, "[a)[b)c", applySet(t, "a#b#c", left))
}

// Holding the selection across a direction change shrinks it again.
func TestSelectionDirectionFlip(t *testing.T) {
	assert.Equal(t, "a#bc", applySet(t, "a(b]c", func(cs *cursor.Set, buf textbuf.TextBuffer) {
		cs.MoveLeft(true)
	}))
}

func TestMoveVerticallyPreferredColumn(t *testing.T) {
	buf, cs := edittest.Decode("asdf\nasd\n\ndsafsdf\nfdsafds#")

	// First up lands at the end of the line above, still honoring column 7.
	cs.MoveVerticallyBy(buf, -1, false)
	assert.Equal(t, "asdf\nasd\n\ndsafsdf#\nfdsafds", edittest.Encode(buf, cs))

	// The empty line truncates the column; the original one is remembered.
	cs.MoveVerticallyBy(buf, -1, false)
	assert.Equal(t, "asdf\nasd\n#\ndsafsdf\nfdsafds", edittest.Encode(buf, cs))
	assert.Equal(t, 7, cs.Supercursor().PC)

	// "asd" is still too short for column 7, so the column stays remembered.
	cs.MoveVerticallyBy(buf, -1, false)
	require.True(t, cs.CheckInvariants())
	assert.Equal(t, "asdf\nasd#\n\ndsafsdf\nfdsafds", edittest.Encode(buf, cs))
	assert.Equal(t, 7, cs.Supercursor().PC)

	// A fourth up clamps to the end of "asdf", still short of column 7.
	cs.MoveVerticallyBy(buf, -1, false)
	assert.Equal(t, "asdf#\nasd\n\ndsafsdf\nfdsafds", edittest.Encode(buf, cs))
}

func TestMoveVerticallyClamps(t *testing.T) {
	down := func(cs *cursor.Set, buf textbuf.TextBuffer) { cs.MoveVerticallyBy(buf, 1, false) }
	up := func(cs *cursor.Set, buf textbuf.TextBuffer) { cs.MoveVerticallyBy(buf, -1, false) }

	// Below the last line clamps to one past the buffer.
	assert.Equal(t, "ab\ncd#", applySet(t, "ab\nc#d", down))
	assert.Equal(t, "abcd#", applySet(t, "ab#cd", down))

	// Above the first line clamps to zero.
	assert.Equal(t, "#abcd", applySet(t, "ab#cd", up))
}

func TestMoveVerticallyBetweenLines(t *testing.T) {
	down := func(cs *cursor.Set, buf textbuf.TextBuffer) { cs.MoveVerticallyBy(buf, 1, false) }
	assert.Equal(t, "ab\nc#d", applySet(t, "a#b\ncd", down))
	assert.Equal(t, "ab\ncd\ne#f", applySet(t, "ab\nc#d\nef", down))
}

func TestMoveHomeEndSet(t *testing.T) {
	home := func(cs *cursor.Set, buf textbuf.TextBuffer) { cs.MoveHome(buf, false) }
	end := func(cs *cursor.Set, buf textbuf.TextBuffer) { cs.MoveEnd(buf, false) }

	assert.Equal(t, "#ab\n#cd", applySet(t, "a#b\nc#d", home))
	assert.Equal(t, "ab#\ncd#", applySet(t, "a#b\nc#d", end))

	// Cursors on the same line merge at its edge.
	assert.Equal(t, "#abcd", applySet(t, "a#bc#d", home))
	assert.Equal(t, "abcd#", applySet(t, "a#bc#d", end))
}

func TestWordMovesSet(t *testing.T) {
	begin := func(cs *cursor.Set, buf textbuf.TextBuffer) { cs.WordBeginDefault(buf, true) }

	assert.Equal(t, "[ax)\n[ax)\n[ax)\n[ax)\n", applySet(t, "ax#\nax#\nax#\nax#\n", begin))
}

func TestStatusAt(t *testing.T) {
	_, cs := edittest.Decode("a[bc)d#e")
	assert.Equal(t, cursor.StatusUnderCursor, cs.StatusAt(1))
	assert.Equal(t, cursor.StatusWithinSelection, cs.StatusAt(2))
	assert.Equal(t, cursor.StatusUnderCursor, cs.StatusAt(4))
	assert.Equal(t, cursor.StatusNone, cs.StatusAt(0))
}

func TestAddRemoveCursor(t *testing.T) {
	_, cs := edittest.Decode("ab#cd")

	assert.True(t, cs.AddCursor(cursor.New(0)))
	assert.Equal(t, 2, cs.Len())
	assert.Equal(t, 0, cs.Supercursor().A)

	// Occupied position is refused.
	assert.False(t, cs.AddCursor(cursor.New(2)))

	assert.True(t, cs.RemoveByAnchor(0))
	assert.False(t, cs.RemoveByAnchor(0))
	assert.Equal(t, 1, cs.Len())
}

func TestReduceKeepsLongerSelection(t *testing.T) {
	// Two cursors sharing an anchor after normalization: the longer
	// selection wins.
	cs := cursor.FromCursors([]cursor.Cursor{
		cursor.New(0).WithSelection(cursor.NewSelection(0, 2)),
		cursor.New(0).WithSelection(cursor.NewSelection(0, 4)),
	})
	cs.ReduceLeft()
	require.Equal(t, 1, cs.Len())
	assert.Equal(t, cursor.Selection{B: 0, E: 4}, *cs.Cursors()[0].S)
}

func TestBoundingRect(t *testing.T) {
	buf, cs := edittest.Decode("ab#\ncd\nef#gh")
	rect := cursor.BoundingRect(cs, buf)
	assert.Equal(t, cursor.XY{X: 2, Y: 0}, rect.Min)
	assert.Equal(t, cursor.XY{X: 2, Y: 2}, rect.Max)
}
