// Package syntax wraps tree-sitter for incremental parsing and highlight
// queries. A Bridge holds the parser, the last completed tree and the
// compiled queries for one language; the buffer feeds it edits so the tree
// follows the text without full reparses from scratch.
package syntax

import (
	"context"
	"embed"
	"fmt"
	"iter"

	sitter "github.com/mitjafelicijan/go-tree-sitter"
	"github.com/mitjafelicijan/go-tree-sitter/bash"
	"github.com/mitjafelicijan/go-tree-sitter/c"
	"github.com/mitjafelicijan/go-tree-sitter/golang"
	"github.com/mitjafelicijan/go-tree-sitter/javascript"
	"github.com/mitjafelicijan/go-tree-sitter/python"
	"github.com/sirupsen/logrus"

	"quill/textbuf"
)

//go:embed queries/*.scm
var queriesFS embed.FS

// Span is one highlight capture mapped back into char space.
type Span struct {
	CharBegin int
	CharEnd   int
	Name      string
}

// Point is a (row, column) position, column counted in bytes from line start
// the way tree-sitter expects.
type Point struct {
	Row    uint32
	Column uint32
}

// Edit describes one contiguous text replacement in byte and point space,
// ready for tree-sitter.
type Edit struct {
	StartByte   uint32
	OldEndByte  uint32
	NewEndByte  uint32
	StartPoint  Point
	OldEndPoint Point
	NewEndPoint Point
}

// LocateChar resolves a char index into the byte offset and point tree-sitter
// wants. The index may equal LenChars.
func LocateChar(buf textbuf.TextBuffer, charIdx int) (uint32, Point, bool) {
	byteOff, ok := buf.CharToByte(charIdx)
	if !ok {
		return 0, Point{}, false
	}
	row, ok := buf.CharToLine(charIdx)
	if !ok {
		return 0, Point{}, false
	}
	lineBegin, ok := buf.LineToChar(row)
	if !ok {
		return 0, Point{}, false
	}
	lineBeginByte, ok := buf.CharToByte(lineBegin)
	if !ok {
		return 0, Point{}, false
	}
	return uint32(byteOff), Point{Row: uint32(row), Column: uint32(byteOff - lineBeginByte)}, true
}

// Bridge is the per-buffer parsing state for one language.
type Bridge struct {
	parser         *sitter.Parser
	tree           *sitter.Tree
	lang           *sitter.Language
	highlightQuery *sitter.Query
	indentQuery    *sitter.Query
	langName       string
	stale          bool
}

// NewBridge initializes a parser for the language id, or returns nil when the
// language is not supported.
func NewBridge(langID string) *Bridge {
	var lang *sitter.Language
	switch langID {
	case "go":
		lang = golang.GetLanguage()
	case "c":
		lang = c.GetLanguage()
	case "python":
		lang = python.GetLanguage()
	case "javascript":
		lang = javascript.GetLanguage()
	case "bash":
		lang = bash.GetLanguage()
	default:
		return nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	b := &Bridge{
		parser:   parser,
		lang:     lang,
		langName: langID,
	}
	b.highlightQuery = b.loadQuery(fmt.Sprintf("queries/%s.scm", langID))
	b.indentQuery = b.loadQuery(fmt.Sprintf("queries/%s-indents.scm", langID))
	return b
}

func (b *Bridge) Language() string {
	return b.langName
}

// IndentQuery exposes the language's indent captures; nil when none shipped.
func (b *Bridge) IndentQuery() *sitter.Query {
	return b.indentQuery
}

// loadQuery reads and compiles a query from the embedded filesystem.
func (b *Bridge) loadQuery(path string) *sitter.Query {
	content, err := queriesFS.ReadFile(path)
	if err != nil {
		return nil
	}
	q, err := sitter.NewQuery(content, b.lang)
	if err != nil {
		logrus.Warnf("failed to compile query %s: %v", path, err)
		return nil
	}
	return q
}

// ParseFull builds the initial tree for content.
func (b *Bridge) ParseFull(content []byte) {
	tree, err := b.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		logrus.Warnf("full parse failed: %v", err)
		b.stale = true
		return
	}
	b.tree = tree
	b.stale = false
}

// ApplyEdits tells the tree about the replacements and reparses with the old
// tree as hint. A stale tree falls back to a full parse.
func (b *Bridge) ApplyEdits(edits []Edit, content []byte) {
	if b.tree == nil || b.stale {
		b.ParseFull(content)
		return
	}
	for _, e := range edits {
		b.tree.Edit(sitter.EditInput{
			StartIndex:  e.StartByte,
			OldEndIndex: e.OldEndByte,
			NewEndIndex: e.NewEndByte,
			StartPoint:  sitter.Point{Row: e.StartPoint.Row, Column: e.StartPoint.Column},
			OldEndPoint: sitter.Point{Row: e.OldEndPoint.Row, Column: e.OldEndPoint.Column},
			NewEndPoint: sitter.Point{Row: e.NewEndPoint.Row, Column: e.NewEndPoint.Column},
		})
	}
	tree, err := b.parser.ParseCtx(context.Background(), b.tree, content)
	if err != nil {
		logrus.Warnf("incremental parse failed, marking tree stale: %v", err)
		b.stale = true
		return
	}
	b.tree = tree
	b.stale = false
}

// Highlights yields the query captures intersecting [fromChar, toChar) in
// tree-walk order. Captures whose offsets fall outside the current text are
// skipped; the tree is allowed to lag the text by an edit or two. A tree
// marked stale by a failed parse yields nothing.
func (b *Bridge) Highlights(buf textbuf.TextBuffer, fromChar, toChar int) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		if b.tree == nil || b.stale || b.highlightQuery == nil {
			return
		}

		qc := sitter.NewQueryCursor()
		qc.Exec(b.highlightQuery, b.tree.RootNode())

		for {
			m, ok := qc.NextMatch()
			if !ok {
				return
			}
			for _, capture := range m.Captures {
				begin, okB := buf.ByteToChar(int(capture.Node.StartByte()))
				end, okE := buf.ByteToChar(int(capture.Node.EndByte()))
				if !okB || !okE {
					continue
				}
				if end <= fromChar || begin >= toChar {
					continue
				}
				span := Span{
					CharBegin: max(begin, fromChar),
					CharEnd:   min(end, toChar),
					Name:      b.highlightQuery.CaptureNameForId(capture.Index),
				}
				if !yield(span) {
					return
				}
			}
		}
	}
}
