package edit

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"quill/cursor"
	"quill/textbuf"
)

// pageHeightLimit is an arbitrary bound on page motions, protecting the
// signed arithmetic below from absurd viewport sizes.
const pageHeightLimit = 2000

// Clipboard is the two-method capability the interpreter consumes. A nil
// clipboard turns Copy and Paste into logged no-ops.
type Clipboard interface {
	Get() string
	Set(string)
}

// Historied is the optional undo capability of a text buffer. Plain ropes
// don't have it; buffer.State does.
type Historied interface {
	CanUndo() bool
	CanRedo() bool
	Undo() bool
	Redo() bool
}

// Report tells what an applied message touched.
type Report struct {
	BufferChanged    bool
	CursorsChanged   bool
	ObserversChanged bool
}

func (r *Report) or(other Report) {
	r.BufferChanged = r.BufferChanged || other.BufferChanged
	r.CursorsChanged = r.CursorsChanged || other.CursorsChanged
	r.ObserversChanged = r.ObserversChanged || other.ObserversChanged
}

// Apply interprets msg against the buffer, the primary cursor set and the
// observer cursor sets of all other views, keeping the three coherent. All
// cursor-set invariants hold again when it returns. tabsToSpaces > 0 turns
// tab stops into that many spaces; otherwise a literal tab is used.
func Apply(
	msg Msg,
	cs *cursor.Set,
	observers []*cursor.Set,
	buf textbuf.TextBuffer,
	pageHeight int,
	clipboard Clipboard,
	tabsToSpaces int,
) Report {
	var res Report

	switch m := msg.(type) {
	case Char:
		res.or(insertAtCursors(cs, observers, buf, -1, string(m.Ch)))
	case Block:
		res.or(insertAtCursors(cs, observers, buf, -1, m.Text))
	case CursorUp:
		res.CursorsChanged = cs.MoveVerticallyBy(buf, -1, m.Selecting) || res.CursorsChanged
	case CursorDown:
		res.CursorsChanged = cs.MoveVerticallyBy(buf, 1, m.Selecting) || res.CursorsChanged
	case CursorLeft:
		res.CursorsChanged = cs.MoveLeft(m.Selecting) || res.CursorsChanged
	case CursorRight:
		res.CursorsChanged = cs.MoveRight(buf, m.Selecting) || res.CursorsChanged
	case LineBegin:
		res.CursorsChanged = cs.MoveHome(buf, m.Selecting) || res.CursorsChanged
	case LineEnd:
		res.CursorsChanged = cs.MoveEnd(buf, m.Selecting) || res.CursorsChanged
	case WordBegin:
		res.CursorsChanged = cs.WordBeginDefault(buf, m.Selecting) || res.CursorsChanged
	case WordEnd:
		res.CursorsChanged = cs.WordEndDefault(buf, m.Selecting) || res.CursorsChanged
	case PageUp:
		if pageHeight > pageHeightLimit {
			logrus.Errorf("received PageUp of page height %d, ignoring", pageHeight)
		} else {
			res.CursorsChanged = cs.MoveVerticallyBy(buf, -pageHeight, m.Selecting) || res.CursorsChanged
		}
	case PageDown:
		if pageHeight > pageHeightLimit {
			logrus.Errorf("received PageDown of page height %d, ignoring", pageHeight)
		} else {
			res.CursorsChanged = cs.MoveVerticallyBy(buf, pageHeight, m.Selecting) || res.CursorsChanged
		}
	case Backspace:
		res.or(handleBackspaceDelete(cs, observers, buf, true))
	case Delete:
		res.or(handleBackspaceDelete(cs, observers, buf, false))
	case Copy:
		applyCopy(cs, buf, clipboard)
	case Paste:
		res.or(applyPaste(cs, observers, buf, clipboard))
	case Undo:
		if h, ok := buf.(Historied); ok {
			res.BufferChanged = h.Undo() || res.BufferChanged
		} else {
			logrus.Warn("undo on a buffer without history, ignoring")
		}
	case Redo:
		if h, ok := buf.(Historied); ok {
			res.BufferChanged = h.Redo() || res.BufferChanged
		} else {
			logrus.Warn("redo on a buffer without history, ignoring")
		}
	case DeleteBlock:
		res.or(removeAt(cs, observers, buf, m.Begin, m.End))
	case InsertBlock:
		res.or(insertAt(cs, observers, buf, m.Pos, m.Text))
	case SubstituteBlock:
		res.or(removeAt(cs, observers, buf, m.Begin, m.End))
		if res.BufferChanged {
			res.or(insertAt(cs, observers, buf, m.Begin, m.Text))
		}
	case Tab:
		res.or(applyTab(cs, observers, buf, tabsToSpaces))
	case ShiftTab:
		res.or(applyShiftTab(cs, observers, buf, tabsToSpaces))
	}

	if !cs.CheckInvariants() {
		// Best-effort repair; a broken set must never leak to the caller.
		logrus.Errorf("cursor set invariants broken after %T, reducing", msg)
		cs.ReduceRight()
	}
	for _, c := range cs.Cursors() {
		if c.End() > buf.LenChars() {
			logrus.Errorf("cursor %+v beyond buffer end %d", c, buf.LenChars())
		}
	}

	return res
}

// insertAtCursors inserts what at every cursor of cs (or only at cursor
// specific, if non-negative, with the rest merely shifted). Selections are
// consumed first; earlier cursors' net char delta is carried forward in
// modifier so later cursors stay aligned.
func insertAtCursors(cs *cursor.Set, observers []*cursor.Set, buf textbuf.TextBuffer, specific int, what string) Report {
	var res Report
	modifier := 0
	set := cs.Cursors()
	for idx := range set {
		c := &set[idx]
		if c.ShiftBy(modifier) {
			res.CursorsChanged = true
		}

		if c.A > buf.LenChars() {
			logrus.Errorf("cursor beyond length of rope: %d > %d", c.A, buf.LenChars())
			continue
		}
		if specific >= 0 && specific != idx {
			continue
		}

		if c.S != nil {
			sel := *c.S
			if buf.Remove(sel.B, sel.E) {
				res.BufferChanged = true
				res.CursorsChanged = true
			} else {
				logrus.Warn("expected to remove non-empty substring but failed")
			}
			change := sel.E - sel.B
			modifier -= change

			for _, obs := range observers {
				if updateAfterRemoval(obs, sel.B, sel.E) {
					res.ObserversChanged = true
				}
			}

			// Copied out before clearing: an anchor on the right must re-shift
			// back to where the selection started.
			wasAnchorRight := c.AnchorRight()
			c.ClearSelection()
			if wasAnchorRight {
				if c.ShiftBy(-change) {
					res.CursorsChanged = true
				}
			}
		}
		c.ClearPC()

		stride := utf8.RuneCountInString(what)
		if buf.InsertBlock(c.A, what) {
			res.BufferChanged = true
			res.CursorsChanged = true
			for _, obs := range observers {
				if updateAfterInsertion(obs, c.A, stride) {
					res.ObserversChanged = true
				}
			}
		} else {
			logrus.Warnf("expected to insert %d chars at %d, but failed", stride, c.A)
		}

		if c.ShiftBy(stride) {
			res.CursorsChanged = true
		}
		modifier += stride
	}
	cs.ReduceRight()
	return res
}

// insertAt inserts at an arbitrary position; both the primary and the
// observer cursor sets are merely updated, none of them acts.
func insertAt(cs *cursor.Set, observers []*cursor.Set, buf textbuf.TextBuffer, charPos int, what string) Report {
	var res Report
	if !buf.InsertBlock(charPos, what) {
		logrus.Errorf("did not insert into rope at %d", charPos)
		return res
	}
	res.BufferChanged = true
	stride := utf8.RuneCountInString(what)

	if updateAfterInsertion(cs, charPos, stride) {
		res.CursorsChanged = true
	}
	for _, obs := range observers {
		if updateAfterInsertion(obs, charPos, stride) {
			res.ObserversChanged = true
		}
	}
	return res
}

// removeAt removes an arbitrary range, updating all cursor sets.
func removeAt(cs *cursor.Set, observers []*cursor.Set, buf textbuf.TextBuffer, begin, end int) Report {
	var res Report
	if begin >= end {
		logrus.Error("delete block with empty range, ignoring")
		return res
	}
	if !buf.Remove(begin, end) {
		logrus.Error("failed to remove block")
		return res
	}
	res.BufferChanged = true
	if updateAfterRemoval(cs, begin, end) {
		res.CursorsChanged = true
	}
	for _, obs := range observers {
		if updateAfterRemoval(obs, begin, end) {
			res.ObserversChanged = true
		}
	}
	return res
}

// updateAfterInsertion rewrites a passive cursor set after charLen chars
// appeared at charPos: cursors at or after the position shift right, and
// selections spanning it grow.
func updateAfterInsertion(cs *cursor.Set, charPos, charLen int) bool {
	res := false
	set := cs.Cursors()
	for i := range set {
		c := &set[i]
		if charPos <= c.Begin() {
			if c.ShiftBy(charLen) {
				res = true
			}
		} else if charPos < c.End() && c.S != nil {
			if c.A == c.S.E {
				c.A += charLen
			}
			c.S = &cursor.Selection{B: c.S.B, E: c.S.E + charLen}
			res = true
		}
	}
	return res
}

// updateAfterRemoval rewrites a passive cursor set after [begin, end) was
// removed: cursors strictly inside disappear, selections crossing an edge are
// clipped on that side (the anchor follows the edge it tracks), and
// everything after the range shifts left. An emptied set is re-seeded with a
// cursor at the removal start.
func updateAfterRemoval(cs *cursor.Set, begin, end int) bool {
	res := false
	stride := end - begin

	var doomed []int
	for _, c := range cs.Cursors() {
		// The first inequality is sharp: removing the char a cursor would
		// have replaced does not invalidate the cursor.
		if begin < c.Begin() && c.End() <= end {
			doomed = append(doomed, c.A)
		}
	}
	for _, a := range doomed {
		if !cs.RemoveByAnchor(a) {
			logrus.Errorf("expected to remove cursor anchored at %d", a)
		}
		res = true
	}

	set := cs.Cursors()
	for i := range set {
		c := &set[i]
		if c.S == nil || !c.Intersects(begin, end) {
			continue
		}
		sel := *c.S
		switch {
		case begin <= sel.E && sel.E < end:
			// Selection end inside the removed range.
			if c.A == sel.E {
				c.A = begin
			}
			sel.E = begin
		case begin <= sel.B && sel.B < end:
			// Selection begin inside the removed range.
			if c.A == sel.B {
				c.A = end
			}
			sel.B = end
		default:
			// The removed range is enclosed by the selection.
			if c.A == sel.E {
				c.A -= stride
			}
			sel.E -= stride
		}
		if sel.B < sel.E {
			c.S = &sel
		} else {
			c.S = nil
		}
		res = true
	}

	set = cs.Cursors()
	for i := range set {
		c := &set[i]
		if end <= c.Begin() {
			if c.ShiftBy(-stride) {
				res = true
			}
		}
	}

	if cs.Len() == 0 {
		logrus.Error("cursor set empty after removing block, seeding cursor at block start")
		cs.AddCursor(cursor.New(begin))
		res = true
	}
	return res
}

// handleBackspaceDelete removes selections where they exist, otherwise one
// char to the left (backspace) or right (delete) of each cursor.
func handleBackspaceDelete(cs *cursor.Set, observers []*cursor.Set, buf textbuf.TextBuffer, backspace bool) Report {
	var res Report
	modifier := 0
	set := cs.Cursors()
	for i := range set {
		c := &set[i]
		if c.ShiftBy(modifier) {
			res.CursorsChanged = true
		}

		if c.A > buf.LenChars() {
			logrus.Errorf("cursor beyond length of rope: %d > %d", c.A, buf.LenChars())
			continue
		}

		if c.S != nil {
			sel := *c.S
			if buf.Remove(sel.B, sel.E) {
				res.BufferChanged = true
				for _, obs := range observers {
					if updateAfterRemoval(obs, sel.B, sel.E) {
						res.ObserversChanged = true
					}
				}
			} else {
				logrus.Warn("expected to remove non-empty substring but failed")
			}
			change := sel.E - sel.B
			modifier -= change

			wasAnchorRight := c.AnchorRight()
			c.ClearBoth()
			res.CursorsChanged = true
			if wasAnchorRight {
				if c.ShiftBy(-change) {
					res.CursorsChanged = true
				}
			}
			continue
		}

		if backspace {
			if c.A == 0 {
				continue
			}
		} else if c.A == buf.LenChars() {
			continue
		}

		b, e := c.A, c.A+1
		if backspace {
			b, e = c.A-1, c.A
		}
		if buf.Remove(b, e) {
			res.BufferChanged = true
			for _, obs := range observers {
				if updateAfterRemoval(obs, b, e) {
					res.ObserversChanged = true
				}
			}
		} else {
			logrus.Error("expected to remove char but failed")
		}
		modifier--

		c.ClearBoth()
		res.CursorsChanged = true
		if backspace {
			if c.ShiftBy(-1) {
				res.CursorsChanged = true
			}
		}
	}

	cs.ReduceLeft()
	return res
}

func applyCopy(cs *cursor.Set, buf textbuf.TextBuffer, clipboard Clipboard) {
	if clipboard == nil {
		logrus.Warn("copy without a clipboard, ignoring")
		return
	}
	var contents strings.Builder
	for i, c := range cs.Cursors() {
		if i > 0 {
			contents.WriteByte('\n')
		}
		if c.S != nil {
			text, _ := textbuf.Selected(buf, c.S.B, c.S.E)
			contents.WriteString(text)
		}
	}
	clipboard.Set(contents.String())
}

func applyPaste(cs *cursor.Set, observers []*cursor.Set, buf textbuf.TextBuffer, clipboard Clipboard) Report {
	var res Report
	if clipboard == nil {
		logrus.Warn("paste without a clipboard, ignoring")
		return res
	}
	contents := clipboard.Get()
	if contents == "" {
		logrus.Warn("not pasting empty contents")
		return res
	}

	parts := splitClipboardLines(contents)
	if len(parts) != cs.Len() {
		// Every cursor gets the full contents.
		res.or(insertAtCursors(cs, observers, buf, -1, contents))
		return res
	}
	// One line per cursor; the other cursors see it as a foreign insertion.
	for idx, line := range parts {
		res.or(insertAtCursors(cs, observers, buf, idx, line))
	}
	return res
}

// splitClipboardLines splits on newlines, treating a trailing newline as a
// terminator rather than an extra empty line.
func splitClipboardLines(contents string) []string {
	parts := strings.Split(contents, "\n")
	if len(parts) > 1 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// cursorsToLineIndices collects the sorted, deduplicated line indices touched
// by any anchor or selected character.
func cursorsToLineIndices(buf textbuf.TextBuffer, cs *cursor.Set) []int {
	seen := map[int]bool{}
	for _, c := range cs.Cursors() {
		if line, ok := buf.CharToLine(c.A); ok {
			seen[line] = true
		} else {
			logrus.Errorf("failed finding line for anchor %d", c.A)
		}
		if c.S == nil {
			continue
		}
		for charIdx := c.S.B; charIdx < c.S.E; charIdx++ {
			if line, ok := buf.CharToLine(charIdx); ok {
				seen[line] = true
			} else {
				logrus.Errorf("failed finding line for selected index %d", charIdx)
			}
		}
	}
	indices := make([]int, 0, len(seen))
	for line := range seen {
		indices = append(indices, line)
	}
	slices.Sort(indices)
	return indices
}

func tabStop(tabsToSpaces int) string {
	if tabsToSpaces <= 0 {
		return "\t"
	}
	return strings.Repeat(" ", tabsToSpaces)
}

// applyTab inserts a tab stop at every simple cursor, or indents every line
// touched by selections. A mixed set is refused.
func applyTab(cs *cursor.Set, observers []*cursor.Set, buf textbuf.TextBuffer, tabsToSpaces int) Report {
	var res Report
	tab := tabStop(tabsToSpaces)

	if cs.AreSimple() {
		res.or(insertAtCursors(cs, observers, buf, -1, tab))
		return res
	}

	allComplex := true
	for _, c := range cs.Cursors() {
		if c.IsSimple() {
			allComplex = false
		}
	}
	if !allComplex {
		logrus.Error("ignoring tab on mixed cursor set")
		return res
	}

	for _, lineIdx := range cursorsToLineIndices(buf, cs) {
		charBegin, ok := buf.LineToChar(lineIdx)
		if !ok {
			logrus.Error("failed casting line index to begin char (1)")
			continue
		}
		res.or(insertAt(cs, observers, buf, charBegin, tab))
	}
	return res
}

// applyShiftTab removes one leading tab stop from every touched line,
// processing lines in reverse so earlier removals don't shift later ones.
func applyShiftTab(cs *cursor.Set, observers []*cursor.Set, buf textbuf.TextBuffer, tabsToSpaces int) Report {
	var res Report
	indices := cursorsToLineIndices(buf, cs)

	for i := len(indices) - 1; i >= 0; i-- {
		charBegin, ok := buf.LineToChar(indices[i])
		if !ok {
			logrus.Error("failed casting line index to begin char (2)")
			continue
		}
		first, ok := buf.CharAt(charBegin)
		if !ok {
			logrus.Errorf("no character at line begin %d", charBegin)
			continue
		}

		eat := 0
		if first == '\t' {
			eat = 1
		} else {
			tabWidth := tabsToSpaces
			if tabWidth <= 0 {
				tabWidth = 1
			}
			for offset := 0; offset < tabWidth; offset++ {
				ch, ok := buf.CharAt(charBegin + offset)
				if !ok {
					break
				}
				if ch != ' ' {
					break
				}
				eat++
			}
		}
		if eat == 0 {
			continue
		}
		res.or(removeAt(cs, observers, buf, charBegin, charBegin+eat))
	}
	return res
}
