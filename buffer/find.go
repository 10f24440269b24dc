package buffer

// Search entry points. FindOnce is destructive to the view's cursor set: the
// set collapses to a single cursor selecting the first match.

import (
	"regexp"

	"github.com/sirupsen/logrus"

	"quill/cursor"
	"quill/search"
	"quill/textbuf"
)

// FindOnce scans for pattern from fromChars (negative means "from the
// supercursor") and, on a non-empty match, replaces the view's cursor set
// with one cursor selecting it, anchor at the match end. Returns whether a
// match was found.
func (s *State) FindOnce(viewID ViewID, pattern string, fromChars int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, ok := s.cursorSets[viewID]
	if !ok {
		logrus.Errorf("find for unregistered view %d", viewID)
		return false, nil
	}

	start := fromChars
	if start < 0 {
		start = cs.Supercursor().A
	}

	matches, err := search.Find(pattern, s.text, start)
	if err != nil {
		return false, err
	}

	beginByte, endByte, found := matches.Next()
	if !found {
		return false, nil
	}
	if beginByte == endByte {
		logrus.Error("empty find, this should not be possible")
		return false, nil
	}

	begin, okB := s.text.ByteToChar(beginByte)
	end, okE := s.text.ByteToChar(endByte)
	if !okB || !okE {
		return false, search.ErrCharToByte
	}

	s.cursorSets[viewID] = cursor.Singleton(
		cursor.New(end).WithSelection(cursor.NewSelection(begin, end)))
	return true, nil
}

// CursorsMatch reports whether every cursor of the view carries a selection
// and every selection matches the pattern.
func (s *State) CursorsMatch(viewID ViewID, pattern string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cs, ok := s.cursorSets[viewID]
	if !ok {
		return false
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	for _, c := range cs.Cursors() {
		if c.S == nil {
			return false
		}
		selected, _ := textbuf.Selected(s.text, c.S.B, c.S.E)
		if !re.MatchString(selected) {
			return false
		}
	}
	return true
}
