// Package buffer owns a document: its rope, its parse state, the cursor sets
// of every view observing it, and the undo history of (text, cursor-sets)
// milestones. All edit messages funnel through Apply, which keeps the three
// coherent within one critical section.
package buffer

import (
	"iter"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"quill/cursor"
	"quill/edit"
	"quill/syntax"
	"quill/textbuf"
)

// ViewID identifies one view observing a buffer.
type ViewID uint64

// idCounter is the only process-wide mutable: the monotonic id generator for
// views and documents.
var idCounter atomic.Uint64

func NextID() ViewID {
	return ViewID(idCounter.Add(1))
}

// milestone is one entry of the undo history: the text and every view's
// cursor set at that instant. Milestone ropes share structure with the live
// rope, so a snapshot is cheap.
type milestone struct {
	text *textbuf.Rope
	sets map[ViewID]*cursor.Set
}

// State is a buffer with history. Exported methods lock; the edit interpreter
// runs inside Apply's critical section through an unexported adapter.
type State struct {
	mu sync.RWMutex

	text  *textbuf.Rope
	parse *syntax.Bridge

	history  []milestone
	pos      int
	savedIdx int
	dirty    bool // live state diverged from history[pos]

	oracle     *Oracle
	cursorSets map[ViewID]*cursor.Set

	clipboard    edit.Clipboard
	tabsToSpaces int

	activeView   ViewID
	pendingEdits []syntax.Edit
}

func New() *State {
	return NewFromString("")
}

func NewFromString(text string) *State {
	s := &State{
		text:       textbuf.NewRope(text),
		oracle:     NewOracle(),
		cursorSets: map[ViewID]*cursor.Set{},
		savedIdx:   0,
	}
	s.history = []milestone{s.snapshot()}
	return s
}

// SetLanguage attaches a parser bridge for the language id and runs the
// initial parse. An unsupported id leaves the buffer unparsed.
func (s *State) SetLanguage(langID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	bridge := syntax.NewBridge(langID)
	if bridge == nil {
		return false
	}
	s.parse = bridge
	bridge.ParseFull([]byte(s.text.String()))
	return true
}

func (s *State) SetClipboard(c edit.Clipboard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clipboard = c
}

// SetTabPolicy sets spaces-per-tab-stop; zero or less keeps literal tabs.
func (s *State) SetTabPolicy(tabsToSpaces int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabsToSpaces = tabsToSpaces
}

// RegisterView attaches a view; its cursor set starts as a single cursor at
// position zero.
func (s *State) RegisterView(viewID ViewID) *cursor.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs := cursor.NewSet()
	s.cursorSets[viewID] = cs
	s.noteView(viewID)
	return cs
}

// AttachCursorSet replaces the view's cursor set wholesale, registering the
// view if it wasn't.
func (s *State) AttachCursorSet(viewID ViewID, cs *cursor.Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursorSets[viewID] = cs
	s.noteView(viewID)
}

// noteView mirrors a fresh view's cursor set into the present milestone, so
// an undo back to it does not lose the set.
func (s *State) noteView(viewID ViewID) {
	if !s.dirty {
		s.history[s.pos].sets[viewID] = s.cursorSets[viewID].Clone()
	}
}

// UnregisterView destroys the view's cursor set, never the buffer.
func (s *State) UnregisterView(viewID ViewID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cursorSets, viewID)
}

// CursorSet returns the live cursor set of a view, or nil.
func (s *State) CursorSet(viewID ViewID) *cursor.Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursorSets[viewID]
}

// Apply interprets one edit message with viewID acting as primary, updates
// the parse, and lets the diff oracle decide on a new history milestone.
func (s *State) Apply(viewID ViewID, msg edit.Msg, pageHeight int) edit.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, ok := s.cursorSets[viewID]
	if !ok {
		logrus.Errorf("apply for unregistered view %d", viewID)
		return edit.Report{}
	}
	observers := s.observersOf(viewID)

	s.activeView = viewID
	s.pendingEdits = nil

	rep := edit.Apply(msg, cs, observers, &editable{s}, pageHeight, s.clipboard, s.tabsToSpaces)

	_, isUndo := msg.(edit.Undo)
	_, isRedo := msg.(edit.Redo)
	if isUndo || isRedo {
		// History already moved; the oracle only learns about the boundary.
		s.oracle.Reset()
		return rep
	}

	if rep.BufferChanged {
		if s.parse != nil && len(s.pendingEdits) > 0 {
			s.parse.ApplyEdits(s.pendingEdits, []byte(s.text.String()))
		}
		// Anything redoable is gone the moment a new edit lands.
		s.truncateForward()
		s.dirty = true
	}

	if s.oracle.ShouldMilestone(msg, cs) && s.dirty {
		s.pushMilestone()
	}

	return rep
}

// observersOf collects the other views' cursor sets in stable id order.
func (s *State) observersOf(viewID ViewID) []*cursor.Set {
	ids := make([]ViewID, 0, len(s.cursorSets))
	for id := range s.cursorSets {
		if id != viewID {
			ids = append(ids, id)
		}
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	observers := make([]*cursor.Set, len(ids))
	for i, id := range ids {
		observers[i] = s.cursorSets[id]
	}
	return observers
}

func (s *State) snapshot() milestone {
	sets := make(map[ViewID]*cursor.Set, len(s.cursorSets))
	for id, cs := range s.cursorSets {
		sets[id] = cs.Clone()
	}
	return milestone{text: s.text.Clone(), sets: sets}
}

func (s *State) truncateForward() {
	if s.pos+1 < len(s.history) {
		s.history = s.history[:s.pos+1]
		if s.savedIdx > s.pos {
			s.savedIdx = -1
		}
	}
}

func (s *State) pushMilestone() {
	s.truncateForward()
	s.history = append(s.history, s.snapshot())
	s.pos++
	s.dirty = false
}

// restore swaps the live text for a milestone's. The acting view's cursor set
// comes back from the snapshot; observers are not rolled back, only clamped,
// so their flow is not interrupted.
func (s *State) restore(ms milestone, restoreAll bool) {
	s.text = ms.text.Clone()
	for id, cs := range s.cursorSets {
		snap, inMilestone := ms.sets[id]
		if inMilestone && (restoreAll || id == s.activeView) {
			s.cursorSets[id] = snap.Clone()
		} else {
			clampSet(cs, s.text.LenChars())
		}
	}
	if s.parse != nil {
		s.parse.ParseFull([]byte(s.text.String()))
	}
}

// clampSet pulls every position back into [0, lenChars] and re-reduces.
func clampSet(cs *cursor.Set, lenChars int) {
	set := cs.Cursors()
	for i := range set {
		c := &set[i]
		if c.A > lenChars {
			c.A = lenChars
		}
		if c.S != nil {
			sel := *c.S
			if sel.E > lenChars {
				sel.E = lenChars
			}
			if sel.B < sel.E {
				c.S = &sel
			} else {
				c.S = nil
			}
		}
	}
	cs.ReduceLeft()
}

func (s *State) undoLocked(restoreAll bool) bool {
	if s.dirty {
		// Commit the live state first so Redo can come back to it.
		s.pushMilestone()
	}
	if s.pos == 0 {
		return false
	}
	s.pos--
	s.restore(s.history[s.pos], restoreAll)
	s.oracle.Reset()
	return true
}

func (s *State) redoLocked(restoreAll bool) bool {
	if s.dirty {
		// A diverged state has nothing ahead of it.
		return false
	}
	if s.pos+1 >= len(s.history) {
		return false
	}
	s.pos++
	s.restore(s.history[s.pos], restoreAll)
	s.oracle.Reset()
	return true
}

// Undo steps the whole buffer, including every view's cursor set, one
// milestone back.
func (s *State) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.undoLocked(true)
}

func (s *State) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redoLocked(true)
}

func (s *State) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pos > 0 || s.dirty
}

func (s *State) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.dirty && s.pos+1 < len(s.history)
}

// IsSaved reports whether the current position matches the last saved one.
func (s *State) IsSaved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.dirty && s.savedIdx == s.pos
}

// MarkSaved pins the save marker to the present, committing any pending
// changes into a milestone first.
func (s *State) MarkSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirty {
		s.pushMilestone()
	}
	s.savedIdx = s.pos
	s.oracle.Reset()
}

// TextSnapshot returns a char iterator over an immutable snapshot; iterating
// needs no lock thanks to the rope's structural sharing.
func (s *State) TextSnapshot() iter.Seq[rune] {
	s.mu.RLock()
	snap := s.text.Clone()
	s.mu.RUnlock()
	return snap.Chars()
}

// Text returns an immutable snapshot of the rope.
func (s *State) Text() *textbuf.Rope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text.Clone()
}

func (s *State) Line(lineIdx int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text.Line(lineIdx)
}

func (s *State) LenChars() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text.LenChars()
}

func (s *State) LenLines() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text.LenLines()
}

func (s *State) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text.String()
}

// Highlights collects the highlight spans intersecting [fromChar, toChar).
// Without a parser (or with a stale tree) the result is simply empty.
func (s *State) Highlights(fromChar, toChar int) []syntax.Span {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.parse == nil {
		return nil
	}
	var spans []syntax.Span
	for span := range s.parse.Highlights(s.text, fromChar, toChar) {
		spans = append(spans, span)
	}
	return spans
}

// editable adapts State for the interpreter: TextBuffer methods delegate to
// the live rope, recording parser edits along the way, and the history
// capability maps to the milestone machinery. No locking here; Apply already
// holds the writer lock.
type editable struct {
	s *State
}

func (e *editable) LenBytes() int  { return e.s.text.LenBytes() }
func (e *editable) LenChars() int  { return e.s.text.LenChars() }
func (e *editable) LenLines() int  { return e.s.text.LenLines() }
func (e *editable) String() string { return e.s.text.String() }

func (e *editable) CharAt(charIdx int) (rune, bool)     { return e.s.text.CharAt(charIdx) }
func (e *editable) CharToByte(charIdx int) (int, bool)  { return e.s.text.CharToByte(charIdx) }
func (e *editable) ByteToChar(byteIdx int) (int, bool)  { return e.s.text.ByteToChar(byteIdx) }
func (e *editable) CharToLine(charIdx int) (int, bool)  { return e.s.text.CharToLine(charIdx) }
func (e *editable) LineToChar(lineIdx int) (int, bool)  { return e.s.text.LineToChar(lineIdx) }
func (e *editable) Line(lineIdx int) string             { return e.s.text.Line(lineIdx) }
func (e *editable) Chars() iter.Seq[rune]               { return e.s.text.Chars() }
func (e *editable) Lines() iter.Seq[string]             { return e.s.text.Lines() }

func (e *editable) InsertBlock(charIdx int, block string) bool {
	var (
		startByte uint32
		startPt   syntax.Point
		located   bool
	)
	if e.s.parse != nil {
		startByte, startPt, located = syntax.LocateChar(e.s.text, charIdx)
	}
	if !e.s.text.InsertBlock(charIdx, block) {
		return false
	}
	if e.s.parse != nil && located {
		newEndChar := charIdx + utf8.RuneCountInString(block)
		if newEndByte, newEndPt, ok := syntax.LocateChar(e.s.text, newEndChar); ok {
			e.s.pendingEdits = append(e.s.pendingEdits, syntax.Edit{
				StartByte:   startByte,
				OldEndByte:  startByte,
				NewEndByte:  newEndByte,
				StartPoint:  startPt,
				OldEndPoint: startPt,
				NewEndPoint: newEndPt,
			})
		}
	}
	return true
}

func (e *editable) Remove(charBegin, charEnd int) bool {
	var (
		startByte, oldEndByte uint32
		startPt, oldEndPt     syntax.Point
		located               bool
	)
	if e.s.parse != nil {
		var okB, okE bool
		startByte, startPt, okB = syntax.LocateChar(e.s.text, charBegin)
		oldEndByte, oldEndPt, okE = syntax.LocateChar(e.s.text, charEnd)
		located = okB && okE
	}
	if !e.s.text.Remove(charBegin, charEnd) {
		return false
	}
	if e.s.parse != nil && located {
		e.s.pendingEdits = append(e.s.pendingEdits, syntax.Edit{
			StartByte:   startByte,
			OldEndByte:  oldEndByte,
			NewEndByte:  startByte,
			StartPoint:  startPt,
			OldEndPoint: oldEndPt,
			NewEndPoint: startPt,
		})
	}
	return true
}

func (e *editable) CanUndo() bool { return e.s.pos > 0 || e.s.dirty }
func (e *editable) CanRedo() bool { return !e.s.dirty && e.s.pos+1 < len(e.s.history) }
func (e *editable) Undo() bool    { return e.s.undoLocked(false) }
func (e *editable) Redo() bool    { return e.s.redoLocked(false) }
