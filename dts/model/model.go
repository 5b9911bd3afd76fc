// Package model defines the semantic value types a DTS file evaluates to:
// node names, paths, references, cell/property values, and the merged
// node/file/label-map shapes described in spec.md §3.
package model

import (
	"fmt"
	"strings"

	"github.com/dhamidi/ginko/dts/diagnostics"
)

// NodeName is {ident, address?}; "foo@1000" parses to {ident: "foo",
// address: "1000"}.
type NodeName struct {
	Ident   string
	Address string // empty when absent
}

func (n NodeName) String() string {
	if n.Address == "" {
		return n.Ident
	}
	return n.Ident + "@" + n.Address
}

// ParseNodeName splits "ident@addr" into its components.
func ParseNodeName(text string) NodeName {
	if i := strings.IndexByte(text, '@'); i >= 0 {
		return NodeName{Ident: text[:i], Address: text[i+1:]}
	}
	return NodeName{Ident: text}
}

// Path is an ordered sequence of NodeName; the empty sequence denotes "/".
type Path []NodeName

func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, n := range p {
		b.WriteByte('/')
		b.WriteString(n.String())
	}
	return b.String()
}

// Append returns a new Path with n appended.
func (p Path) Append(n NodeName) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = n
	return out
}

// ReferenceKind distinguishes the two reference forms.
type ReferenceKind int

const (
	RefLabel ReferenceKind = iota
	RefPath
)

// Reference is Label(string) | Path(Path).
type Reference struct {
	Kind  ReferenceKind
	Label string
	Path  Path
}

func (r Reference) String() string {
	if r.Kind == RefLabel {
		return "&" + r.Label
	}
	return "&{" + r.Path.String() + "}"
}

// Width is the bit width a cell value was evaluated at.
type Width int

const (
	U8 Width = iota
	U16
	U32
	U64
)

func (w Width) BitSize() int {
	switch w {
	case U8:
		return 8
	case U16:
		return 16
	case U32:
		return 32
	case U64:
		return 64
	default:
		return 32
	}
}

// CellValueKind distinguishes a numeric cell entry from a reference one.
type CellValueKind int

const (
	CellNumber CellValueKind = iota
	CellReference
)

// CellValue is Number(integer) | Reference(Reference).
type CellValue struct {
	Kind   CellValueKind
	Number uint64
	Ref    Reference
}

// CellValues is a width-tagged sequence of CellValue, the evaluated
// contents of a single <...> cell.
type CellValues struct {
	Width  Width
	Values []CellValue
}

// ValueKind distinguishes the four property-value shapes.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueBytes
	ValueCell
	ValueReference
)

// Value is String(string) | Bytes([]byte) | Cell(CellValues) | Reference(Reference).
type Value struct {
	Kind      ValueKind
	Str       string
	Bytes     []byte
	Cell      CellValues
	Reference Reference
	Range     diagnostics.Range
}

func (v Value) String() string {
	switch v.Kind {
	case ValueString:
		return fmt.Sprintf("%q", v.Str)
	case ValueBytes:
		return fmt.Sprintf("%x", v.Bytes)
	case ValueReference:
		return v.Reference.String()
	default:
		return fmt.Sprintf("cell(%v)", v.Cell.Values)
	}
}

// Node is a semantic tree node: named children (merged on collision) and
// named properties (last-write-wins on collision).
type Node struct {
	Children   map[string]*Node
	ChildOrder []string // insertion order, for stable traversal/printing
	Properties map[string][]Value
	PropOrder  []string
}

func NewNode() *Node {
	return &Node{Children: map[string]*Node{}, Properties: map[string][]Value{}}
}

// Merge deep-merges other into n: properties overwrite (last-wins),
// children merge recursively, per spec.md §3 and §4.5 ("Merging").
func (n *Node) Merge(other *Node) {
	for _, name := range other.ChildOrder {
		child := other.Children[name]
		if existing, ok := n.Children[name]; ok {
			existing.Merge(child)
			continue
		}
		n.Children[name] = child
		n.ChildOrder = append(n.ChildOrder, name)
	}
	for _, name := range other.PropOrder {
		if _, ok := n.Properties[name]; !ok {
			n.PropOrder = append(n.PropOrder, name)
		}
		n.Properties[name] = other.Properties[name]
	}
}

// SetProperty records values for name, tracking insertion order the
// first time name is seen (subsequent calls overwrite, last-wins).
func (n *Node) SetProperty(name string, values []Value) {
	if _, ok := n.Properties[name]; !ok {
		n.PropOrder = append(n.PropOrder, name)
	}
	n.Properties[name] = values
}

// GetOrCreateChild returns the child named name, creating it (and
// recording it in ChildOrder) if absent.
func (n *Node) GetOrCreateChild(name string) *Node {
	if child, ok := n.Children[name]; ok {
		return child
	}
	child := NewNode()
	n.Children[name] = child
	n.ChildOrder = append(n.ChildOrder, name)
	return child
}

// ReservedMemory is one /memreserve/ entry.
type ReservedMemory struct {
	Address uint64
	Length  uint64
}

// File is the merged semantic model of one DTS source file.
type File struct {
	Root           *Node
	ReservedMemory []ReservedMemory
}

func NewFile() *File {
	return &File{Root: NewNode()}
}

// LabelEntry records where a label was defined.
type LabelEntry struct {
	PathInTree    Path
	DefiningFile  string
	DefiningRange diagnostics.Range
}

// LabelMap maps label text to its definition site.
type LabelMap map[string]LabelEntry
