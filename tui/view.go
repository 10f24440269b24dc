package tui

// A View renders one buffer into the terminal and keeps its scroll position
// following the cursors. It owns a view id registered with the buffer; the
// buffer owns the cursor set.

import (
	"fmt"

	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"

	"quill/buffer"
	"quill/cursor"
	"quill/edit"
	"quill/syntax"
)

type View struct {
	Buf      *buffer.State
	ViewID   buffer.ViewID
	Filename string
	FileType *syntax.FileType

	scrollX int
	scrollY int
}

func NewView(buf *buffer.State, filename string, ft *syntax.FileType) *View {
	id := buffer.NextID()
	buf.RegisterView(id)
	return &View{
		Buf:      buf,
		ViewID:   id,
		Filename: filename,
		FileType: ft,
	}
}

// Close unregisters the view's cursor set; the buffer survives.
func (v *View) Close() {
	v.Buf.UnregisterView(v.ViewID)
}

// Apply forwards one edit message with this view acting as primary, then
// chases the cursors with the viewport.
func (v *View) Apply(msg edit.Msg, pageHeight int) edit.Report {
	rep := v.Buf.Apply(v.ViewID, msg, pageHeight)
	v.FollowCursors(pageHeight, edit.DirectionOf(msg))
	return rep
}

// FollowCursors scrolls so the edge of the cursor rect the last motion moved
// toward stays visible.
func (v *View) FollowCursors(pageHeight int, dir edit.Arrow) {
	cs := v.Buf.CursorSet(v.ViewID)
	if cs == nil || pageHeight < 1 {
		return
	}
	rect := cursor.BoundingRect(cs, v.Buf.Text())

	target := rect.Min
	if dir == edit.ArrowDown || dir == edit.ArrowRight {
		target = rect.Max
	}

	if target.Y < v.scrollY {
		v.scrollY = target.Y
	}
	if target.Y >= v.scrollY+pageHeight {
		v.scrollY = target.Y - pageHeight + 1
	}
	if v.scrollY < 0 {
		v.scrollY = 0
	}
}

// gutterWidth is the left column reserved for line numbers.
const gutterWidth = 5

// Draw paints the buffer into the rectangle at (x, y) of size (w, h), with a
// line-number gutter on the left.
func (v *View) Draw(theme *Theme, x, y, w, h int) {
	text := v.Buf.Text()
	cs := v.Buf.CursorSet(v.ViewID)

	if w > gutterWidth*2 {
		v.drawGutter(theme, x, y, h, charToLineCount(text))
		x += gutterWidth
		w -= gutterWidth
	}

	firstChar, ok := text.LineToChar(v.scrollY)
	if !ok {
		firstChar = 0
	}
	lastChar := text.LenChars()
	if end, ok := text.LineToChar(min(v.scrollY+h, charToLineCount(text))); ok {
		lastChar = end
	}

	// One attribute per visible char, from the highlight captures.
	attrs := map[int]termbox.Attribute{}
	for _, span := range v.Buf.Highlights(firstChar, lastChar+1) {
		a := theme.CaptureAttr(span.Name)
		for i := span.CharBegin; i < span.CharEnd; i++ {
			attrs[i] = a
		}
	}

	defaultFg := attr(theme.Foreground)
	defaultBg := attr(theme.Background)

	for row := 0; row < h; row++ {
		lineIdx := v.scrollY + row
		lineBegin, ok := text.LineToChar(lineIdx)
		if !ok {
			break
		}
		line := text.Line(lineIdx)

		col := 0
		charIdx := lineBegin
		for _, ch := range line {
			fg := defaultFg
			if a, found := attrs[charIdx]; found {
				fg = a
			}
			bg := defaultBg
			if cs != nil {
				switch cs.StatusAt(charIdx) {
				case cursor.StatusWithinSelection:
					bg = attr(theme.SelectionBg)
				case cursor.StatusUnderCursor:
					fg = attr(theme.CursorFg)
					bg = attr(theme.CursorBg)
				}
			}

			if ch == '\n' || ch == '\t' {
				if col-v.scrollX >= 0 && col-v.scrollX < w {
					termbox.SetCell(x+col-v.scrollX, y+row, ' ', fg, bg)
				}
				if ch == '\t' {
					col += v.tabWidth() - (col % v.tabWidth())
				}
			} else {
				if col-v.scrollX >= 0 && col-v.scrollX < w {
					termbox.SetCell(x+col-v.scrollX, y+row, ch, fg, bg)
				}
				col += runewidth.RuneWidth(ch)
			}
			charIdx++
		}

		// A cursor may sit one past the last char of the final line.
		if cs != nil && charIdx == text.LenChars() &&
			cs.StatusAt(charIdx) == cursor.StatusUnderCursor &&
			col-v.scrollX >= 0 && col-v.scrollX < w {
			termbox.SetCell(x+col-v.scrollX, y+row, ' ', attr(theme.CursorFg), attr(theme.CursorBg))
		}
	}
}

func (v *View) drawGutter(theme *Theme, x, y, h, lineCount int) {
	fg := attr(theme.GutterFg)
	for row := 0; row < h; row++ {
		lineIdx := v.scrollY + row
		if lineIdx >= lineCount {
			termbox.SetCell(x, y+row, '~', fg, termbox.ColorDefault)
			continue
		}
		number := fmt.Sprintf("%*d ", gutterWidth-1, lineIdx+1)
		for col, ch := range number {
			termbox.SetCell(x+col, y+row, ch, fg, termbox.ColorDefault)
		}
	}
}

func (v *View) tabWidth() int {
	if v.FileType != nil && v.FileType.TabWidth > 0 {
		return v.FileType.TabWidth
	}
	return 4
}

// charToLineCount is the number of addressable line starts, including the
// virtual line after a trailing newline.
func charToLineCount(text interface {
	CharToLine(int) (int, bool)
	LenChars() int
}) int {
	breaks, _ := text.CharToLine(text.LenChars())
	return breaks + 1
}
