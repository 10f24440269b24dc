package textbuf

// A persistent rope over string leaves. Every edit produces a new root while
// sharing unchanged subtrees, so snapshots taken for the undo history cost
// O(log n). Leaves cache byte, char and line-break counts so index conversions
// descend the tree instead of scanning text.

import (
	"iter"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	// maxLeafBytes bounds leaf size; adjacent small leaves are merged on concat.
	maxLeafBytes = 512
	// maxRopeDepth triggers a full rebuild from leaves.
	maxRopeDepth = 48
)

type node struct {
	left, right *node // both nil for a leaf
	leaf        string
	bytes       int
	chars       int
	breaks      int
	depth       int
}

func (n *node) isLeaf() bool {
	return n.left == nil
}

func newLeaf(s string) *node {
	chars, breaks := 0, 0
	for _, r := range s {
		chars++
		if r == '\n' {
			breaks++
		}
	}
	return &node{leaf: s, bytes: len(s), chars: chars, breaks: breaks}
}

// charOffset returns the byte offset of rune number idx within s.
func charOffset(s string, idx int) int {
	for off := range s {
		if idx == 0 {
			return off
		}
		idx--
	}
	return len(s)
}

func makeNode(l, r *node) *node {
	if l == nil {
		return r
	}
	if r == nil {
		return l
	}
	if l.isLeaf() && r.isLeaf() && l.bytes+r.bytes <= maxLeafBytes {
		return newLeaf(l.leaf + r.leaf)
	}
	return &node{
		left:   l,
		right:  r,
		bytes:  l.bytes + r.bytes,
		chars:  l.chars + r.chars,
		breaks: l.breaks + r.breaks,
		depth:  max(l.depth, r.depth) + 1,
	}
}

// buildLeaves chops s into maxLeafBytes-sized leaves on rune boundaries.
func buildLeaves(s string) []*node {
	var leaves []*node
	for len(s) > 0 {
		cut := len(s)
		if cut > maxLeafBytes {
			cut = maxLeafBytes
			// Back off to the previous rune boundary.
			for cut > 0 && !isRuneStart(s[cut]) {
				cut--
			}
			if cut == 0 {
				cut = len(s)
			}
		}
		leaves = append(leaves, newLeaf(s[:cut]))
		s = s[cut:]
	}
	return leaves
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// buildBalanced merges leaves pairwise until a single root remains.
func buildBalanced(leaves []*node) *node {
	if len(leaves) == 0 {
		return nil
	}
	for len(leaves) > 1 {
		merged := make([]*node, 0, (len(leaves)+1)/2)
		for i := 0; i < len(leaves); i += 2 {
			if i+1 < len(leaves) {
				merged = append(merged, makeNode(leaves[i], leaves[i+1]))
			} else {
				merged = append(merged, leaves[i])
			}
		}
		leaves = merged
	}
	return leaves[0]
}

func collectLeaves(n *node, acc []*node) []*node {
	if n == nil {
		return acc
	}
	if n.isLeaf() {
		return append(acc, n)
	}
	return collectLeaves(n.right, collectLeaves(n.left, acc))
}

func rebalanced(n *node) *node {
	if n == nil || n.depth <= maxRopeDepth {
		return n
	}
	return buildBalanced(collectLeaves(n, nil))
}

// splitAt splits n into two trees holding chars [0, idx) and [idx, chars).
func splitAt(n *node, idx int) (*node, *node) {
	if n == nil {
		return nil, nil
	}
	if n.isLeaf() {
		switch idx {
		case 0:
			return nil, n
		case n.chars:
			return n, nil
		}
		off := charOffset(n.leaf, idx)
		return newLeaf(n.leaf[:off]), newLeaf(n.leaf[off:])
	}
	if idx <= n.left.chars {
		ll, lr := splitAt(n.left, idx)
		return ll, makeNode(lr, n.right)
	}
	rl, rr := splitAt(n.right, idx-n.left.chars)
	return makeNode(n.left, rl), rr
}

// Rope is the primary TextBuffer implementation. The zero value is an empty
// rope; Clone shares all structure with the receiver.
type Rope struct {
	root *node
}

func NewRope(s string) *Rope {
	return &Rope{root: buildBalanced(buildLeaves(s))}
}

// Clone returns a snapshot handle sharing the current tree. Later edits to
// either rope do not affect the other.
func (r *Rope) Clone() *Rope {
	return &Rope{root: r.root}
}

func (r *Rope) LenBytes() int {
	if r.root == nil {
		return 0
	}
	return r.root.bytes
}

func (r *Rope) LenChars() int {
	if r.root == nil {
		return 0
	}
	return r.root.chars
}

// LenLines counts the newline as the last character of its line: a text that
// ends with '\n' has exactly as many lines as it has line breaks.
func (r *Rope) LenLines() int {
	if r.root == nil || r.root.chars == 0 {
		return 1
	}
	last, _ := r.CharAt(r.root.chars - 1)
	if last == '\n' {
		return r.root.breaks
	}
	return r.root.breaks + 1
}

func (r *Rope) CharAt(charIdx int) (rune, bool) {
	if r.root == nil || charIdx < 0 || charIdx >= r.root.chars {
		return 0, false
	}
	n := r.root
	for !n.isLeaf() {
		if charIdx < n.left.chars {
			n = n.left
		} else {
			charIdx -= n.left.chars
			n = n.right
		}
	}
	for _, ch := range n.leaf {
		if charIdx == 0 {
			return ch, true
		}
		charIdx--
	}
	return 0, false
}

func (r *Rope) CharToByte(charIdx int) (int, bool) {
	if charIdx < 0 || charIdx > r.LenChars() {
		return 0, false
	}
	off := 0
	n := r.root
	for n != nil && !n.isLeaf() {
		if charIdx < n.left.chars {
			n = n.left
		} else {
			charIdx -= n.left.chars
			off += n.left.bytes
			n = n.right
		}
	}
	if n != nil {
		off += charOffset(n.leaf, charIdx)
	}
	return off, true
}

func (r *Rope) ByteToChar(byteIdx int) (int, bool) {
	if byteIdx < 0 || byteIdx > r.LenBytes() {
		return 0, false
	}
	chars := 0
	n := r.root
	for n != nil && !n.isLeaf() {
		if byteIdx < n.left.bytes {
			n = n.left
		} else {
			byteIdx -= n.left.bytes
			chars += n.left.chars
			n = n.right
		}
	}
	if n != nil {
		if byteIdx < len(n.leaf) && !isRuneStart(n.leaf[byteIdx]) {
			// Offset points inside a multi-byte rune.
			return 0, false
		}
		for off := range n.leaf {
			if off >= byteIdx {
				break
			}
			chars++
		}
	}
	return chars, true
}

// CharToLine counts the line breaks before charIdx. It accepts
// charIdx == LenChars, the "one past end" position.
func (r *Rope) CharToLine(charIdx int) (int, bool) {
	if charIdx < 0 || charIdx > r.LenChars() {
		return 0, false
	}
	line := 0
	n := r.root
	for n != nil && !n.isLeaf() {
		if charIdx <= n.left.chars {
			n = n.left
		} else {
			charIdx -= n.left.chars
			line += n.left.breaks
			n = n.right
		}
	}
	if n != nil {
		for _, ch := range n.leaf {
			if charIdx == 0 {
				break
			}
			charIdx--
			if ch == '\n' {
				line++
			}
		}
	}
	return line, true
}

// LineToChar returns the char index of the first character of the line, valid
// for line indices up to and including the number of line breaks.
func (r *Rope) LineToChar(lineIdx int) (int, bool) {
	if lineIdx < 0 {
		return 0, false
	}
	if lineIdx == 0 {
		return 0, true
	}
	if r.root == nil || lineIdx > r.root.breaks {
		return 0, false
	}
	chars := 0
	n := r.root
	for !n.isLeaf() {
		if lineIdx <= n.left.breaks {
			n = n.left
		} else {
			lineIdx -= n.left.breaks
			chars += n.left.chars
			n = n.right
		}
	}
	for _, ch := range n.leaf {
		chars++
		if ch == '\n' {
			lineIdx--
			if lineIdx == 0 {
				break
			}
		}
	}
	return chars, true
}

func (r *Rope) Line(lineIdx int) string {
	begin, ok := r.LineToChar(lineIdx)
	if !ok {
		return ""
	}
	end := r.LenChars()
	if next, ok := r.LineToChar(lineIdx + 1); ok {
		end = next
	}
	var sb strings.Builder
	appendRange(r.root, &sb, begin, end)
	return sb.String()
}

func appendRange(n *node, sb *strings.Builder, from, to int) {
	if n == nil || from >= to {
		return
	}
	if n.isLeaf() {
		sb.WriteString(n.leaf[charOffset(n.leaf, from):charOffset(n.leaf, to)])
		return
	}
	lc := n.left.chars
	if from < lc {
		appendRange(n.left, sb, from, min(to, lc))
	}
	if to > lc {
		appendRange(n.right, sb, max(from-lc, 0), to-lc)
	}
}

func (r *Rope) Chars() iter.Seq[rune] {
	return func(yield func(rune) bool) {
		walkChars(r.root, yield)
	}
}

func walkChars(n *node, yield func(rune) bool) bool {
	if n == nil {
		return true
	}
	if n.isLeaf() {
		for _, ch := range n.leaf {
			if !yield(ch) {
				return false
			}
		}
		return true
	}
	return walkChars(n.left, yield) && walkChars(n.right, yield)
}

func (r *Rope) Lines() iter.Seq[string] {
	return lines(r.Chars())
}

func (r *Rope) InsertBlock(charIdx int, block string) bool {
	if charIdx < 0 || charIdx > r.LenChars() {
		logrus.Warnf("insert at %d rejected, rope holds %d chars", charIdx, r.LenChars())
		return false
	}
	if block == "" {
		return true
	}
	left, right := splitAt(r.root, charIdx)
	middle := buildBalanced(buildLeaves(block))
	r.root = rebalanced(makeNode(makeNode(left, middle), right))
	return true
}

func (r *Rope) Remove(charBegin, charEnd int) bool {
	if charBegin >= charEnd {
		logrus.Errorf("removal of improper range (%d, %d) rejected", charBegin, charEnd)
		return false
	}
	if charBegin < 0 || charEnd > r.LenChars() {
		logrus.Warnf("removal of (%d, %d) rejected, rope holds %d chars", charBegin, charEnd, r.LenChars())
		return false
	}
	left, rest := splitAt(r.root, charBegin)
	_, right := splitAt(rest, charEnd-charBegin)
	r.root = rebalanced(makeNode(left, right))
	return true
}

func (r *Rope) String() string {
	var sb strings.Builder
	sb.Grow(r.LenBytes())
	appendLeaves(r.root, &sb)
	return sb.String()
}

func appendLeaves(n *node, sb *strings.Builder) {
	if n == nil {
		return
	}
	if n.isLeaf() {
		sb.WriteString(n.leaf)
		return
	}
	appendLeaves(n.left, sb)
	appendLeaves(n.right, sb)
}
