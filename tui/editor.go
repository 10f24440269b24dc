package tui

// The editor shell: buffer list, event loop, find prompt, status bar. This
// stays deliberately thin; everything that matters happens in the buffer and
// the edit interpreter.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nsf/termbox-go"
	"github.com/sirupsen/logrus"

	"quill/buffer"
	"quill/cursor"
	"quill/edit"
	"quill/syntax"
	"quill/textbuf"
)

type Editor struct {
	views  []*View
	active int
	theme  *Theme

	clipboard edit.Clipboard

	finding    bool
	findLine   *textbuf.SingleLine
	findCursor *cursor.Set

	message string
}

func NewEditor(theme *Theme, clipboard edit.Clipboard) *Editor {
	return &Editor{
		theme:      theme,
		clipboard:  clipboard,
		findLine:   textbuf.NewSingleLine(""),
		findCursor: cursor.NewSet(),
	}
}

func (e *Editor) activeView() *View {
	if len(e.views) == 0 {
		return nil
	}
	return e.views[e.active]
}

// OpenFile loads a file into a new buffer, attaching a parser when the file
// type has a grammar.
func (e *Editor) OpenFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	ft := syntax.GetFileType(path)
	buf := buffer.NewFromString(string(content))
	buf.SetClipboard(e.clipboard)
	buf.SetTabPolicy(ft.TabsToSpaces())
	if ft.LangID != "" {
		if !buf.SetLanguage(ft.LangID) {
			logrus.Warnf("no grammar for %s, opening %s unhighlighted", ft.LangID, path)
		}
	}

	e.views = append(e.views, NewView(buf, path, ft))
	e.active = len(e.views) - 1
	return nil
}

// OpenScratch adds an empty unnamed buffer.
func (e *Editor) OpenScratch() {
	buf := buffer.New()
	buf.SetClipboard(e.clipboard)
	e.views = append(e.views, NewView(buf, "", syntax.GetFileType("")))
	e.active = len(e.views) - 1
}

func (e *Editor) saveActive() {
	v := e.activeView()
	if v == nil {
		return
	}
	if v.Filename == "" {
		e.message = "no filename"
		return
	}
	if err := os.WriteFile(v.Filename, []byte(v.Buf.String()), 0644); err != nil {
		e.message = fmt.Sprintf("save failed: %v", err)
		return
	}
	v.Buf.MarkSaved()
	e.message = fmt.Sprintf("wrote %s", filepath.Base(v.Filename))
}

func (e *Editor) nextBuffer() {
	if len(e.views) > 0 {
		e.active = (e.active + 1) % len(e.views)
	}
}

func (e *Editor) prevBuffer() {
	if len(e.views) > 0 {
		e.active = (e.active - 1 + len(e.views)) % len(e.views)
	}
}

// Run is the main event loop. Returns when the user quits.
func (e *Editor) Run() {
	if len(e.views) == 0 {
		e.OpenScratch()
	}
	for {
		e.draw()
		ev := termbox.PollEvent()
		if ev.Type != termbox.EventKey {
			continue
		}
		e.message = ""

		if e.finding {
			if e.handleFindKey(ev) {
				continue
			}
		}

		switch ev.Key {
		case termbox.KeyCtrlQ:
			return
		case termbox.KeyCtrlS:
			e.saveActive()
			continue
		case termbox.KeyCtrlF:
			e.finding = true
			e.findLine = textbuf.NewSingleLine("")
			e.findCursor = cursor.NewSet()
			continue
		case termbox.KeyCtrlN:
			e.nextBuffer()
			continue
		case termbox.KeyCtrlP:
			e.prevBuffer()
			continue
		}

		v := e.activeView()
		if v == nil {
			continue
		}
		if msg, ok := KeyToMsg(ev); ok {
			_, height := termbox.Size()
			v.Apply(msg, max(height-1, 1))
		}
	}
}

// handleFindKey feeds keys into the find prompt. The prompt itself is a
// single-line buffer driven by the same interpreter as the documents.
func (e *Editor) handleFindKey(ev termbox.Event) bool {
	switch ev.Key {
	case termbox.KeyEsc:
		e.finding = false
		return true
	case termbox.KeyEnter:
		e.finding = false
		pattern := e.findLine.String()
		v := e.activeView()
		if v == nil || pattern == "" {
			return true
		}
		found, err := v.Buf.FindOnce(v.ViewID, pattern, -1)
		switch {
		case err != nil:
			e.message = fmt.Sprintf("find failed: %v", err)
		case !found:
			e.message = fmt.Sprintf("no match for %q", pattern)
		default:
			_, height := termbox.Size()
			v.FollowCursors(max(height-1, 1), edit.ArrowDown)
		}
		return true
	}

	if msg, ok := KeyToMsg(ev); ok {
		if _, isChar := msg.(edit.Char); isChar || !edit.IsEditing(msg) {
			edit.Apply(msg, e.findCursor, nil, e.findLine, 1, nil, 0)
			return true
		}
		if _, isBackspace := msg.(edit.Backspace); isBackspace {
			edit.Apply(msg, e.findCursor, nil, e.findLine, 1, nil, 0)
			return true
		}
	}
	return true
}

func (e *Editor) draw() {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	width, height := termbox.Size()
	if height < 2 {
		termbox.Flush()
		return
	}

	if v := e.activeView(); v != nil {
		v.Draw(e.theme, 0, 0, width, height-1)
	}
	e.drawStatusBar(width, height-1)
	termbox.Flush()
}

func (e *Editor) drawStatusBar(width, row int) {
	fg := attr(e.theme.StatusBarFg)
	bg := attr(e.theme.StatusBarBg)

	var left string
	if e.finding {
		left = "/" + e.findLine.String()
		fg = attr(e.theme.PromptFg)
	} else if v := e.activeView(); v != nil {
		name := v.Filename
		if name == "" {
			name = "[No Name]"
		}
		saved := ""
		if !v.Buf.IsSaved() {
			saved = " [+]"
		}
		left = fmt.Sprintf(" %s%s", name, saved)
		if cs := v.Buf.CursorSet(v.ViewID); cs != nil {
			pos := cursor.ToXY(*cs.Supercursor(), v.Buf.Text())
			left = fmt.Sprintf("%s  %d:%d", left, pos.Y+1, pos.X+1)
		}
		if e.message != "" {
			left += "  " + e.message
		}
	}

	col := 0
	for _, ch := range left {
		if col >= width {
			break
		}
		termbox.SetCell(col, row, ch, fg, bg)
		col++
	}
	for ; col < width; col++ {
		termbox.SetCell(col, row, ' ', fg, bg)
	}
}
