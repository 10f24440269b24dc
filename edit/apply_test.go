package edit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/clip"
	"quill/edit"
	"quill/edittest"
)

// decodeApplyEncode runs one message against a decoded state and renders the
// result back, checking invariants on both sides. Page height 4, tab stops of
// four spaces.
func decodeApplyEncode(t *testing.T, text string, msg edit.Msg, clipboard edit.Clipboard) string {
	t.Helper()
	buf, cs := edittest.Decode(text)
	require.True(t, cs.CheckInvariants())
	edit.Apply(msg, cs, nil, buf, 4, clipboard, 4)
	require.True(t, cs.CheckInvariants())
	return edittest.Encode(buf, cs)
}

func TestSingleCursorWrite(t *testing.T) {
	assert.Equal(t, "abc#ba", decodeApplyEncode(t, "ab#ba", edit.Char{Ch: 'c'}, nil))
	assert.Equal(t, "c#abba", decodeApplyEncode(t, "#abba", edit.Char{Ch: 'c'}, nil))
	assert.Equal(t, "abbac#", decodeApplyEncode(t, "abba#", edit.Char{Ch: 'c'}, nil))
}

func TestSingleCursorBlockWrite(t *testing.T) {
	assert.Equal(t, "abhello#ba", decodeApplyEncode(t, "ab#ba", edit.Block{Text: "hello"}, nil))
	assert.Equal(t, "hello#abba", decodeApplyEncode(t, "#abba", edit.Block{Text: "hello"}, nil))
}

func TestSingleCursorBlockReplace(t *testing.T) {
	assert.Equal(t, "abhello#x", decodeApplyEncode(t, "ab(ba]x", edit.Block{Text: "hello"}, nil))
}

func TestSingleCursorBackspace(t *testing.T) {
	assert.Equal(t, "a#ba", decodeApplyEncode(t, "ab#ba", edit.Backspace{}, nil))
	assert.Equal(t, "#abba", decodeApplyEncode(t, "#abba", edit.Backspace{}, nil))
	assert.Equal(t, "abb#", decodeApplyEncode(t, "abba#", edit.Backspace{}, nil))
}

func TestSingleCursorDelete(t *testing.T) {
	assert.Equal(t, "ab#a", decodeApplyEncode(t, "ab#da", edit.Delete{}, nil))
	assert.Equal(t, "abda#", decodeApplyEncode(t, "abda#", edit.Delete{}, nil))
	assert.Equal(t, "#bda", decodeApplyEncode(t, "#abda", edit.Delete{}, nil))
}

func TestMultiCursorWrite(t *testing.T) {
	assert.Equal(t, "abcd#abcd#a", decodeApplyEncode(t, "abc#abc#a", edit.Char{Ch: 'd'}, nil))
	assert.Equal(t, "abchello#abchello#a",
		decodeApplyEncode(t, "abc#abc#a", edit.Block{Text: "hello"}, nil))
}

func TestMultiCursorBlockSelection(t *testing.T) {
	assert.Equal(t, "hello#chello#c",
		decodeApplyEncode(t, "(ab]c(ab]c", edit.Block{Text: "hello"}, nil))
	assert.Equal(t, "hello#chello#c",
		decodeApplyEncode(t, "[ab)c[ab)c", edit.Block{Text: "hello"}, nil))
}

// A full editing round over four cursors on four lines.
func TestMultiCursorScenario(t *testing.T) {
	assert.Equal(t, "a#\na#\na#\na#\n",
		decodeApplyEncode(t, "#\n#\n#\n#\n", edit.Char{Ch: 'a'}, nil))
	assert.Equal(t, "ab#\nab#\nab#\nab#\n",
		decodeApplyEncode(t, "a#\na#\na#\na#\n", edit.Char{Ch: 'b'}, nil))
	assert.Equal(t, "a[b)\na[b)\na[b)\na[b)\n",
		decodeApplyEncode(t, "ab#\nab#\nab#\nab#\n", edit.CursorLeft{Selecting: true}, nil))
	assert.Equal(t, "ax#\nax#\nax#\nax#\n",
		decodeApplyEncode(t, "a[b)\na[b)\na[b)\na[b)\n", edit.Char{Ch: 'x'}, nil))
	assert.Equal(t, "[ax)\n[ax)\n[ax)\n[ax)\n",
		decodeApplyEncode(t, "ax#\nax#\nax#\nax#\n", edit.WordBegin{Selecting: true}, nil))
	assert.Equal(t, "u#\nu#\nu#\nu#\n",
		decodeApplyEncode(t, "[ax)\n[ax)\n[ax)\n[ax)\n", edit.Char{Ch: 'u'}, nil))
	assert.Equal(t, "#\n#\n#\n#\n",
		decodeApplyEncode(t, "u#\nu#\nu#\nu#\n", edit.Backspace{}, nil))
	assert.Equal(t, "#\n",
		decodeApplyEncode(t, "#\n#\n#\n#\n", edit.Backspace{}, nil))
}

func TestMultiCursorDelete(t *testing.T) {
	assert.Equal(t, "#b#b#b#b", decodeApplyEncode(t, "#ab#ab#ab#ab", edit.Delete{}, nil))
	assert.Equal(t, "#", decodeApplyEncode(t, "#\n#\n#\n#\n", edit.Delete{}, nil))
}

func TestMultiCursorCopyPaste(t *testing.T) {
	clipboard := clip.NewMemory()

	assert.Equal(t, "(a]bba\n(a]bba\n(a]bba\n(a]bba\n",
		decodeApplyEncode(t, "#abba\n#abba\n#abba\n#abba\n", edit.CursorRight{Selecting: true}, clipboard))
	assert.Equal(t, "(ab]ba\n(ab]ba\n(ab]ba\n(ab]ba\n",
		decodeApplyEncode(t, "(a]bba\n(a]bba\n(a]bba\n(a]bba\n", edit.CursorRight{Selecting: true}, clipboard))
	assert.Equal(t, "(ab]ba\n(ab]ba\n(ab]ba\n(ab]ba\n",
		decodeApplyEncode(t, "(ab]ba\n(ab]ba\n(ab]ba\n(ab]ba\n", edit.Copy{}, clipboard))
	assert.Equal(t, "ab\nab\nab\nab", clipboard.Get())
	assert.Equal(t, "abba#\nabba#\nabba#\nabba#\n",
		decodeApplyEncode(t, "(ab]ba\n(ab]ba\n(ab]ba\n(ab]ba\n", edit.LineEnd{}, clipboard))

	// Four clipboard lines, four cursors: one line per cursor.
	assert.Equal(t, "abbaab#\nabbaab#\nabbaab#\nabbaab#\n",
		decodeApplyEncode(t, "abba#\nabba#\nabba#\nabba#\n", edit.Paste{}, clipboard))
}

func TestPasteFullContentsWhenCountsDiffer(t *testing.T) {
	clipboard := clip.NewMemory()
	clipboard.Set("xy")
	assert.Equal(t, "xy#axy#b", decodeApplyEncode(t, "#a#b", edit.Paste{}, clipboard))
}

func TestPasteEmptyClipboardIsNoop(t *testing.T) {
	clipboard := clip.NewMemory()
	assert.Equal(t, "a#b", decodeApplyEncode(t, "a#b", edit.Paste{}, clipboard))
}

func TestCopyWithoutSelectionContributesEmpty(t *testing.T) {
	clipboard := clip.NewMemory()
	decodeApplyEncode(t, "(a]b#c", edit.Copy{}, clipboard)
	assert.Equal(t, "a\n", clipboard.Get())
}

func TestDeleteBlock(t *testing.T) {
	assert.Equal(t, "#aakota#kot#",
		decodeApplyEncode(t, "#alamakota#kot#", edit.DeleteBlock{Begin: 1, End: 4}, nil))
	assert.Equal(t, "aakota[kot)",
		decodeApplyEncode(t, "alamakota[kot)", edit.DeleteBlock{Begin: 1, End: 4}, nil))
}

func TestInsertBlock(t *testing.T) {
	assert.Equal(t, "dupa#alamakota#kot#",
		decodeApplyEncode(t, "#alamakota#kot#", edit.InsertBlock{Pos: 0, Text: "dupa"}, nil))
	assert.Equal(t, "dupa[knicot)",
		decodeApplyEncode(t, "dupa[kot)", edit.InsertBlock{Pos: 5, Text: "nic"}, nil))
}

func TestSubstituteBlock(t *testing.T) {
	assert.Equal(t, "xy#z",
		decodeApplyEncode(t, "ab#cz", edit.SubstituteBlock{Begin: 0, End: 3, Text: "xy"}, nil))

	// A degenerate range is refused entirely.
	assert.Equal(t, "ab#cz",
		decodeApplyEncode(t, "ab#cz", edit.SubstituteBlock{Begin: 2, End: 2, Text: "xy"}, nil))
}

func TestShiftTab(t *testing.T) {
	text := "\naa#aa\n    bbbb#\n      ccc#c"
	after := "\naa#aa\nbbbb#\n  ccc#c"
	assert.Equal(t, after, decodeApplyEncode(t, text, edit.ShiftTab{}, nil))

	text = "\nsomebs\n[\naaaa\n    bbbb\n      ccc)c"
	after = "\nsomebs\n[\naaaa\nbbbb\n  ccc)c"
	assert.Equal(t, after, decodeApplyEncode(t, text, edit.ShiftTab{}, nil))
}

func TestTab(t *testing.T) {
	text := "\naa#aa\n    bbbb#\n      ccc#c"
	after := "\naa    #aa\n    bbbb    #\n      ccc    #c"
	assert.Equal(t, after, decodeApplyEncode(t, text, edit.Tab{}, nil))

	text = "\naa(aa\n    bbbb\n      ccc]c\n      dddd"
	after = "\n    aa(aa\n        bbbb\n          ccc]c\n      dddd"
	assert.Equal(t, after, decodeApplyEncode(t, text, edit.Tab{}, nil))
}

func TestTabOnMixedSetIsRefused(t *testing.T) {
	assert.Equal(t, "(a]b#c", decodeApplyEncode(t, "(a]b#c", edit.Tab{}, nil))
}

func TestOversizedPageIsIgnored(t *testing.T) {
	buf, cs := edittest.Decode("a#b\ncd")
	rep := edit.Apply(edit.PageDown{}, cs, nil, buf, 5000, nil, 4)
	assert.False(t, rep.CursorsChanged)
	assert.Equal(t, "a#b\ncd", edittest.Encode(buf, cs))
}

func TestApplyReportBits(t *testing.T) {
	buf, cs := edittest.Decode("a#b")
	rep := edit.Apply(edit.Char{Ch: 'x'}, cs, nil, buf, 4, nil, 4)
	assert.True(t, rep.BufferChanged)
	assert.True(t, rep.CursorsChanged)
	assert.False(t, rep.ObserversChanged)

	rep = edit.Apply(edit.CursorRight{}, cs, nil, buf, 4, nil, 4)
	assert.True(t, rep.CursorsChanged)
	assert.False(t, rep.BufferChanged)

	// At the right edge nothing moves.
	rep = edit.Apply(edit.CursorRight{}, cs, nil, buf, 4, nil, 4)
	assert.False(t, rep.CursorsChanged)
}

func TestDirectionOf(t *testing.T) {
	assert.Equal(t, edit.ArrowRight, edit.DirectionOf(edit.Char{Ch: 'a'}))
	assert.Equal(t, edit.ArrowLeft, edit.DirectionOf(edit.Backspace{}))
	assert.Equal(t, edit.ArrowUp, edit.DirectionOf(edit.PageUp{}))
	assert.Equal(t, edit.ArrowDown, edit.DirectionOf(edit.CursorDown{}))
	assert.Equal(t, edit.ArrowNone, edit.DirectionOf(edit.Copy{}))
}
