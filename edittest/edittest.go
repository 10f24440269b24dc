// Package edittest encodes and decodes the textual notation used throughout
// the test suites to describe a buffer together with a cursor set:
//
//   - '#' is a cursor with no selection, placed before the next character,
//   - "[xy)" selects "xy" with the anchor on the left,
//   - "(xy]" selects "xy" with the anchor on the right,
//   - '.' is a visual separator, skipped during decode.
//
// "ala#" is the text "ala" with one cursor at index 3. "a[la)" selects "la"
// anchored at 1.
package edittest

import (
	"fmt"
	"strings"

	"quill/cursor"
	"quill/textbuf"
)

// Decode parses the notation into a rope and a cursor set.
func Decode(s string) (*textbuf.Rope, *cursor.Set) {
	var text strings.Builder
	var cursors []cursor.Cursor
	textLen := 0
	otherPart := -1

	for _, ch := range s {
		switch ch {
		case '.':
			continue
		case '[', ']':
			if otherPart < 0 {
				otherPart = textLen
			} else {
				cursors = append(cursors,
					cursor.New(textLen).WithSelection(cursor.NewSelection(otherPart, textLen)))
				otherPart = -1
			}
			continue
		case '(', ')':
			if otherPart < 0 {
				otherPart = textLen
			} else {
				cursors = append(cursors,
					cursor.New(otherPart).WithSelection(cursor.NewSelection(otherPart, textLen)))
				otherPart = -1
			}
			continue
		case '#':
			if otherPart >= 0 {
				panic("either # or a ( ] pair")
			}
			cursors = append(cursors, cursor.New(textLen))
			continue
		}
		text.WriteRune(ch)
		textLen++
	}
	if otherPart >= 0 {
		panic("unclosed selection bracket")
	}

	buf := textbuf.NewRope(text.String())
	cs := cursor.FromCursors(cursors)
	assertWithinText(buf, cs)
	return buf, cs
}

// Encode renders a buffer and cursor set back into the notation. It panics on
// overlapping cursors, since such a state can not be expressed.
func Encode(buf textbuf.TextBuffer, cs *cursor.Set) string {
	assertWithinText(buf, cs)

	// Color every position so overlaps are caught; the +2 is because the last
	// cursor may point at a non-existent character.
	colors := make([]int, buf.LenChars()+2)
	for i := range colors {
		colors[i] = -1
	}
	for idx, c := range cs.Cursors() {
		if c.S != nil {
			for i := c.S.B; i < c.S.E; i++ {
				if colors[i] >= 0 {
					panic(fmt.Sprintf("cursor %d collides with cursor %d", idx, colors[i]))
				}
				colors[i] = idx
			}
		} else {
			if colors[c.A] >= 0 {
				panic(fmt.Sprintf("cursor %d collides with cursor %d", idx, colors[c.A]))
			}
			colors[c.A] = idx
		}
	}

	var sb strings.Builder
	text := []rune(buf.String())
	for idx := 0; idx <= len(text); idx++ {
		for _, c := range cs.Cursors() {
			switch {
			case c.S != nil && c.S.B == idx:
				if c.A == c.S.B {
					sb.WriteByte('[')
				} else {
					sb.WriteByte('(')
				}
			case c.S != nil && c.S.E == idx:
				if c.A == c.S.E {
					sb.WriteByte(']')
				} else {
					sb.WriteByte(')')
				}
			case c.S == nil && c.A == idx:
				sb.WriteByte('#')
			}
		}
		if idx < len(text) {
			sb.WriteRune(text[idx])
		}
	}
	return sb.String()
}

func assertWithinText(buf textbuf.TextBuffer, cs *cursor.Set) {
	lenChars := buf.LenChars()
	for _, c := range cs.Cursors() {
		if c.A > lenChars {
			panic(fmt.Sprintf("cursor anchor %d beyond text length %d", c.A, lenChars))
		}
		if c.S != nil && c.S.E > lenChars {
			panic(fmt.Sprintf("selection end %d beyond text length %d", c.S.E, lenChars))
		}
	}
}
