package tui

// Keyboard translation: termbox events become common edit messages. Alt
// combined with a motion extends the selection, since terminals rarely
// deliver shifted arrows.

import (
	"github.com/nsf/termbox-go"

	"quill/edit"
)

// KeyToMsg maps a key event to an edit message. The second result is false
// for keys the editor shell handles itself (quit, save, find).
func KeyToMsg(ev termbox.Event) (edit.Msg, bool) {
	selecting := ev.Mod&termbox.ModAlt != 0

	switch ev.Key {
	case termbox.KeyArrowUp:
		return edit.CursorUp{Selecting: selecting}, true
	case termbox.KeyArrowDown:
		return edit.CursorDown{Selecting: selecting}, true
	case termbox.KeyArrowLeft:
		return edit.CursorLeft{Selecting: selecting}, true
	case termbox.KeyArrowRight:
		return edit.CursorRight{Selecting: selecting}, true
	case termbox.KeyHome:
		return edit.LineBegin{Selecting: selecting}, true
	case termbox.KeyEnd:
		return edit.LineEnd{Selecting: selecting}, true
	case termbox.KeyCtrlA:
		return edit.LineBegin{Selecting: selecting}, true
	case termbox.KeyCtrlE:
		return edit.LineEnd{Selecting: selecting}, true
	case termbox.KeyCtrlW:
		return edit.WordBegin{Selecting: selecting}, true
	case termbox.KeyCtrlD:
		return edit.WordEnd{Selecting: selecting}, true
	case termbox.KeyPgup:
		return edit.PageUp{Selecting: selecting}, true
	case termbox.KeyPgdn:
		return edit.PageDown{Selecting: selecting}, true
	case termbox.KeyBackspace, termbox.KeyBackspace2:
		return edit.Backspace{}, true
	case termbox.KeyDelete:
		return edit.Delete{}, true
	case termbox.KeyTab:
		return edit.Tab{}, true
	case termbox.KeyCtrlC:
		return edit.Copy{}, true
	case termbox.KeyCtrlV:
		return edit.Paste{}, true
	case termbox.KeyCtrlZ:
		return edit.Undo{}, true
	case termbox.KeyCtrlY:
		return edit.Redo{}, true
	case termbox.KeyEnter:
		return edit.Char{Ch: '\n'}, true
	case termbox.KeySpace:
		return edit.Char{Ch: ' '}, true
	}

	if ev.Ch != 0 {
		return edit.Char{Ch: ev.Ch}, true
	}
	return nil, false
}
