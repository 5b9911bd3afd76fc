package syntax

import (
	"strings"

	"github.com/dhamidi/ginko/dts/diagnostics"
)

// Node is a homogeneous CST node: either a leaf wrapping a single Token, or
// a composite node with ordered Children. Shape grounded on
// java/parser/node.go's Node{Kind, Children, Token}, generalized so every
// token (including trivia) is reachable from the root — the lossless
// invariant spec.md §3 requires.
type Node struct {
	Kind     Kind
	Token    *Token // non-nil for leaves
	Children []*Node
	Parent   *Node
	rng      diagnostics.Range
}

// IsLeaf reports whether n wraps a single token rather than children.
func (n *Node) IsLeaf() bool {
	return n.Token != nil
}

// Range returns n's byte range, computed from its token (leaf) or the span
// of its first and last child (composite).
func (n *Node) Range() diagnostics.Range {
	return n.rng
}

// Text concatenates every leaf token's text under n in tree order. The CST
// round-trip invariant (spec.md §8) is exactly Text() == original source
// when n is a FILE root.
func (n *Node) Text() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	if n.IsLeaf() {
		b.WriteString(n.Token.Text)
		return
	}
	for _, c := range n.Children {
		c.writeText(b)
	}
}

// FirstChildOfKind returns the first direct child with the given kind, or
// nil. Grounded on java/parser/node.go's FirstChildOfKind.
func (n *Node) FirstChildOfKind(kind Kind) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// ChildrenOfKind returns every direct child with the given kind.
func (n *Node) ChildrenOfKind(kind Kind) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// NonTrivia returns the direct children that are not whitespace/comments.
func (n *Node) NonTrivia() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.IsLeaf() && c.Kind.IsTrivia() {
			continue
		}
		out = append(out, c)
	}
	return out
}

// IsError reports whether n (or its token) is an ERROR kind.
func (n *Node) IsError() bool {
	return n.Kind == ERROR
}

// TokenAtOffset returns the deepest leaf token containing the given byte
// offset, or nil if out of range. Used by the project layer's
// find_at_pos and by the LSP boundary for hover/go-to-definition.
func (n *Node) TokenAtOffset(offset int) *Node {
	if offset < n.rng.Start || offset >= n.rng.End {
		if !(n.rng.Start == n.rng.End && offset == n.rng.Start) {
			return nil
		}
	}
	if n.IsLeaf() {
		return n
	}
	for _, c := range n.Children {
		if found := c.TokenAtOffset(offset); found != nil {
			return found
		}
	}
	return nil
}

// WalkEvent distinguishes entering vs. leaving a node during a Walk,
// mirroring the original's ast::WalkEvent used by extract_labels.
type WalkEvent int

const (
	Enter WalkEvent = iota
	Leave
)

// Walk performs a pre/post-order traversal, invoking visit on every
// Enter/Leave pair. Grounded on
// original_source/ginko/src/dts/analysis/file.rs's use of WalkEvent to
// maintain a Path stack while extracting labels.
func (n *Node) Walk(visit func(WalkEvent, *Node)) {
	visit(Enter, n)
	for _, c := range n.Children {
		c.Walk(visit)
	}
	visit(Leave, n)
}

func (n *Node) String() string {
	var b strings.Builder
	n.writeString(&b, 0)
	return b.String()
}

func (n *Node) writeString(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	if n.IsLeaf() {
		b.WriteString(n.Kind.String())
		b.WriteString(" ")
		b.WriteString(quoteText(n.Token.Text))
		b.WriteString("\n")
		return
	}
	b.WriteString(n.Kind.String())
	b.WriteString("\n")
	for _, c := range n.Children {
		c.writeString(b, depth+1)
	}
}

func quoteText(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString("\\n")
		case '"':
			b.WriteString("\\\"")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
