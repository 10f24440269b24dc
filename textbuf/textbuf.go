// Package textbuf holds the text containers the editor core operates on. All
// public positions are zero-based Unicode scalar (rune) indices; a newline is a
// single character that terminates its line.
package textbuf

import (
	"bufio"
	"iter"
	"strings"

	"github.com/clipperhouse/uax29/v2/graphemes"
)

// TextBuffer is the narrow capability trait every text container implements.
// Index conversions report failure for out-of-range input instead of
// panicking; CharToLine additionally accepts charIdx == LenChars.
type TextBuffer interface {
	LenBytes() int
	LenChars() int
	LenLines() int

	CharAt(charIdx int) (rune, bool)
	CharToByte(charIdx int) (int, bool)
	ByteToChar(byteIdx int) (int, bool)
	CharToLine(charIdx int) (int, bool)
	LineToChar(lineIdx int) (int, bool)

	// Line returns the line's text, including its trailing newline if any.
	Line(lineIdx int) string
	Chars() iter.Seq[rune]
	Lines() iter.Seq[string]

	InsertBlock(charIdx int, block string) bool
	Remove(charBegin, charEnd int) bool

	String() string
}

// Selected collects the characters of [begin, end). The second result tells
// whether all requested characters were found.
func Selected(buf TextBuffer, begin, end int) (string, bool) {
	if begin >= buf.LenChars() {
		return "", false
	}

	var sb strings.Builder
	for idx := begin; idx < end; idx++ {
		ch, ok := buf.CharAt(idx)
		if !ok {
			return sb.String(), false
		}
		sb.WriteRune(ch)
	}
	return sb.String(), true
}

// Graphemes segments the characters of [begin, end) into grapheme clusters.
func Graphemes(buf TextBuffer, begin, end int) iter.Seq[string] {
	return func(yield func(string) bool) {
		text, _ := Selected(buf, begin, end)
		scanner := bufio.NewScanner(strings.NewReader(text))
		scanner.Split(graphemes.SplitFunc)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}
}

// lines turns a character iterator into a lazy line iterator. Every yielded
// line keeps its trailing newline; a trailing empty line is not reported.
func lines(chars iter.Seq[rune]) iter.Seq[string] {
	return func(yield func(string) bool) {
		var sb strings.Builder
		for ch := range chars {
			sb.WriteRune(ch)
			if ch == '\n' {
				if !yield(sb.String()) {
					return
				}
				sb.Reset()
			}
		}
		if sb.Len() > 0 {
			yield(sb.String())
		}
	}
}
