package buffer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/clip"
	"quill/edit"
	"quill/edittest"
)

// decodeState builds a buffer state around a codec string, freezing the diff
// oracle's clock so only explicit boundaries create milestones.
func decodeState(t *testing.T, text string) (*State, ViewID) {
	t.Helper()
	buf, cs := edittest.Decode(text)
	s := NewFromString(buf.String())
	s.oracle.Now = func() time.Time { return time.Unix(0, 0) }
	s.oracle.lastMilestone = time.Unix(0, 0)

	viewID := NextID()
	s.AttachCursorSet(viewID, cs)
	return s, viewID
}

func encodeState(t *testing.T, s *State, viewID ViewID) string {
	t.Helper()
	return edittest.Encode(s.Text(), s.CursorSet(viewID))
}

func TestUndoRedoChain(t *testing.T) {
	s, view := decodeState(t, "ala ma kota#")

	for i := 0; i < 4; i++ {
		rep := s.Apply(view, edit.Backspace{}, 4)
		assert.True(t, rep.BufferChanged)
	}
	assert.Equal(t, "ala ma #", encodeState(t, s, view))

	require.True(t, s.Undo())
	assert.Equal(t, "ala ma k#", encodeState(t, s, view))
	require.True(t, s.Undo())
	assert.Equal(t, "ala ma ko#", encodeState(t, s, view))
	require.True(t, s.Undo())
	assert.Equal(t, "ala ma kot#", encodeState(t, s, view))
	require.True(t, s.Undo())
	assert.Equal(t, "ala ma kota#", encodeState(t, s, view))
	assert.False(t, s.Undo())

	require.True(t, s.CanRedo())
	require.True(t, s.Redo())
	assert.Equal(t, "ala ma kot#", encodeState(t, s, view))
	require.True(t, s.Redo())
	assert.Equal(t, "ala ma ko#", encodeState(t, s, view))
	require.True(t, s.Redo())
	assert.Equal(t, "ala ma k#", encodeState(t, s, view))
	require.True(t, s.Redo())
	assert.Equal(t, "ala ma #", encodeState(t, s, view))
	assert.False(t, s.Redo())
}

// Redo after Undo is identity when nothing intervened; a fresh edit clears
// the forward history.
func TestRedoClearedByEdit(t *testing.T) {
	s, view := decodeState(t, "ab#")

	s.Apply(view, edit.Delete{}, 4) // no-op at the end, not a milestone
	s.Apply(view, edit.Backspace{}, 4)
	assert.Equal(t, "a#", encodeState(t, s, view))

	require.True(t, s.Undo())
	assert.Equal(t, "ab#", encodeState(t, s, view))
	require.True(t, s.CanRedo())

	s.Apply(view, edit.Char{Ch: 'x'}, 4)
	assert.False(t, s.CanRedo())
	assert.False(t, s.Redo())
}

// Typed characters batch; the milestone appears only once enough of them
// accumulate, yet an undo still lands on the pre-typing state.
func TestTypingBatchesIntoOneMilestone(t *testing.T) {
	s, view := decodeState(t, "#")

	for _, ch := range "abc" {
		s.Apply(view, edit.Char{Ch: ch}, 4)
	}
	assert.Equal(t, "abc#", encodeState(t, s, view))

	require.True(t, s.Undo())
	assert.Equal(t, "#", encodeState(t, s, view))
	require.True(t, s.Redo())
	assert.Equal(t, "abc#", encodeState(t, s, view))
}

func TestCharThresholdMilestones(t *testing.T) {
	s, view := decodeState(t, "#")

	// Ten single-cursor chars cross the threshold exactly once.
	for _, ch := range "abcdefghij" {
		s.Apply(view, edit.Char{Ch: ch}, 4)
	}
	for _, ch := range "klm" {
		s.Apply(view, edit.Char{Ch: ch}, 4)
	}

	require.True(t, s.Undo())
	assert.Equal(t, "abcdefghij#", encodeState(t, s, view))
	require.True(t, s.Undo())
	assert.Equal(t, "#", encodeState(t, s, view))
}

func TestUndoThroughMessage(t *testing.T) {
	s, view := decodeState(t, "ab#")

	s.Apply(view, edit.Backspace{}, 4)
	rep := s.Apply(view, edit.Undo{}, 4)
	assert.True(t, rep.BufferChanged)
	assert.Equal(t, "ab#", encodeState(t, s, view))

	rep = s.Apply(view, edit.Redo{}, 4)
	assert.True(t, rep.BufferChanged)
	assert.Equal(t, "a#", encodeState(t, s, view))
}

func TestSaveMarker(t *testing.T) {
	s, view := decodeState(t, "ab#")
	assert.True(t, s.IsSaved())

	s.Apply(view, edit.Char{Ch: 'x'}, 4)
	assert.False(t, s.IsSaved())

	s.MarkSaved()
	assert.True(t, s.IsSaved())

	require.True(t, s.Undo())
	assert.False(t, s.IsSaved())
	require.True(t, s.Redo())
	assert.True(t, s.IsSaved())
}

func TestObserverViewsFollowEdits(t *testing.T) {
	s, primary := decodeState(t, "abcd#")
	_, obsSet := edittest.Decode("ab#cd")
	observer := NextID()
	s.AttachCursorSet(observer, obsSet)

	rep := s.Apply(primary, edit.InsertBlock{Pos: 0, Text: "xy"}, 4)
	assert.True(t, rep.BufferChanged)
	assert.True(t, rep.ObserversChanged)

	assert.Equal(t, "xyabcd#", encodeState(t, s, primary))
	assert.Equal(t, "xyab#cd", encodeState(t, s, observer))
}

// Undo restores the acting view's cursors from the milestone; observer
// cursors are only clamped, their flow is not rewound.
func TestUndoDoesNotRewindObservers(t *testing.T) {
	s, primary := decodeState(t, "abcd#")
	_, obsSet := edittest.Decode("#abcd")
	observer := NextID()
	s.AttachCursorSet(observer, obsSet)

	s.Apply(primary, edit.Char{Ch: 'x'}, 4)
	// The observer moved on its own in the meantime.
	s.Apply(observer, edit.CursorRight{}, 4)

	s.Apply(primary, edit.Undo{}, 4)
	assert.Equal(t, "abcd#", encodeState(t, s, primary))
	assert.Equal(t, "a#bcd", encodeState(t, s, observer))
}

func TestRegisterUnregisterView(t *testing.T) {
	s := NewFromString("hello")
	view := NextID()
	cs := s.RegisterView(view)
	require.NotNil(t, cs)
	assert.Equal(t, 0, cs.Supercursor().A)

	s.UnregisterView(view)
	assert.Nil(t, s.CursorSet(view))
	// The buffer itself survives its views.
	assert.Equal(t, "hello", s.String())
}

func TestFindOnce(t *testing.T) {
	s, view := decodeState(t, "#ala ma kota, kot ma ale")

	found, err := s.FindOnce(view, "kot", -1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "ala ma (kot]a, kot ma ale", encodeState(t, s, view))

	// Continuation from the supercursor finds the next occurrence.
	found, err = s.FindOnce(view, "kot", -1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "ala ma kota, (kot] ma ale", encodeState(t, s, view))

	found, err = s.FindOnce(view, "kot", -1)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = s.FindOnce(view, "(", -1)
	assert.Error(t, err)
	_, err = s.FindOnce(view, "", -1)
	assert.Error(t, err)
}

func TestCursorsMatch(t *testing.T) {
	s, view := decodeState(t, "(kot] ma (kot]a")
	assert.True(t, s.CursorsMatch(view, "kot"))
	assert.False(t, s.CursorsMatch(view, "pies"))

	s2, view2 := decodeState(t, "kot# ma")
	assert.False(t, s2.CursorsMatch(view2, "kot"))
}

func TestPasteMilestonesImmediately(t *testing.T) {
	s, view := decodeState(t, "#")
	s.SetClipboard(clipFromString("hello"))

	s.Apply(view, edit.Paste{}, 4)
	assert.Equal(t, "hello#", encodeState(t, s, view))
	require.True(t, s.Undo())
	assert.Equal(t, "#", encodeState(t, s, view))
}

func clipFromString(contents string) edit.Clipboard {
	c := clip.NewMemory()
	c.Set(contents)
	return c
}

// Inserting then deleting the same block restores text and cursor sets
// bitwise.
func TestInsertDeleteRoundTrip(t *testing.T) {
	s, view := decodeState(t, "ab#cd\nef#")
	before := encodeState(t, s, view)

	s.Apply(view, edit.InsertBlock{Pos: 2, Text: "XYZ"}, 4)
	s.Apply(view, edit.DeleteBlock{Begin: 2, End: 5}, 4)

	assert.Equal(t, before, encodeState(t, s, view))
}
