package syntax

import "github.com/dhamidi/ginko/dts/diagnostics"

// Builder constructs a Node tree with retroactive-wrap support, the Go
// equivalent of original_source/ginko/src/dts/syntax/builder.rs's wrapper
// around rowan::GreenNodeBuilder. Rather than rowan's flat mutable event
// list, this builder keeps an explicit stack of open frames; a Checkpoint
// records a position in the currently-open frame's children so a later
// StartNodeAt can splice already-built siblings into a freshly discovered
// parent (see DESIGN.md, dts/syntax entry).
type Builder struct {
	stack []*frame
}

type frame struct {
	kind     Kind
	children []*Node
	start    int // byte offset at which this frame opened
	hasStart bool
}

// Checkpoint marks a position within the currently open frame to which a
// new parent node can later be retroactively inserted.
type Checkpoint struct {
	frameIndex int
	childIndex int
}

// NewBuilder creates a builder with no open nodes. Callers must call
// StartNode before Token/Checkpoint.
func NewBuilder() *Builder {
	return &Builder{}
}

// StartNode pushes a new open node of the given kind.
func (b *Builder) StartNode(kind Kind) {
	b.stack = append(b.stack, &frame{kind: kind})
}

// Checkpoint captures the current frame's child count, so that a node
// started later can be retroactively wrapped around everything appended
// to this frame since the checkpoint was taken.
func (b *Builder) Checkpoint() Checkpoint {
	top := b.top()
	return Checkpoint{frameIndex: len(b.stack) - 1, childIndex: len(top.children)}
}

// StartNodeAt opens a new node that retroactively wraps every child
// appended to the checkpointed frame since cp was taken. This is the
// mechanism behind parse_property_or_node: the parser builds a NAME node,
// takes no action, then on seeing `{` or `=` wraps the NAME (and anything
// since) into NODE or PROPERTY.
func (b *Builder) StartNodeAt(cp Checkpoint, kind Kind) {
	parent := b.stack[cp.frameIndex]
	wrapped := parent.children[cp.childIndex:]
	parent.children = parent.children[:cp.childIndex]
	newFrame := &frame{kind: kind, children: append([]*Node{}, wrapped...)}
	// Insert the new frame directly after the checkpointed frame so that
	// further children (appended by the caller before FinishNode) land in
	// the new frame, and finishing it appends correctly to parent.
	tail := append([]*frame{}, b.stack[cp.frameIndex+1:]...)
	b.stack = append(b.stack[:cp.frameIndex+1], newFrame)
	b.stack = append(b.stack, tail...)
}

// Token appends a leaf node wrapping tok to the currently open frame.
// Whitespace/comment tokens are attached exactly like any other token —
// trivia is never dropped (spec.md §4.2 "Trivia handling").
func (b *Builder) Token(tok Token) {
	leaf := &Node{Kind: tok.Kind, Token: &tok, rng: tok.Range}
	top := b.top()
	top.children = append(top.children, leaf)
}

// FinishNode closes the most recently opened frame and appends the
// resulting Node to its new parent frame (or discards it if this was the
// root, whose caller should use Finish instead).
func (b *Builder) FinishNode() *Node {
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	node := finishFrame(top)
	if len(b.stack) > 0 {
		parent := b.top()
		parent.children = append(parent.children, node)
	}
	return node
}

// Finish closes the single remaining root frame and returns the tree.
func (b *Builder) Finish() *Node {
	if len(b.stack) != 1 {
		panic("syntax: Finish called with unbalanced node stack")
	}
	top := b.stack[0]
	b.stack = nil
	return finishFrame(top)
}

func (b *Builder) top() *frame {
	return b.stack[len(b.stack)-1]
}

func finishFrame(f *frame) *Node {
	n := &Node{Kind: f.kind, Children: f.children}
	for _, c := range f.children {
		c.Parent = n
	}
	if len(f.children) == 0 {
		n.rng = diagnostics.Range{}
	} else {
		n.rng = diagnostics.Range{Start: f.children[0].Range().Start, End: f.children[len(f.children)-1].Range().End}
	}
	return n
}
