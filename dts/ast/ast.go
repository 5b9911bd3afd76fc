// Package ast provides thin, zero-copy typed wrappers over dts/syntax's
// CST nodes: each wrapper validates the underlying node's Kind and
// exposes named accessors, per spec.md §4.3. Grounded in shape on
// _examples/dhamidi-sai/java/parser/node.go's kind-filtered accessor
// methods, repurposed here as typed wrapper structs rather than generic
// children-by-kind queries.
package ast

import (
	"strings"

	"github.com/dhamidi/ginko/dts/syntax"
)

// File wraps a FILE CST node.
type File struct{ N *syntax.Node }

// CastFile wraps n as a File if its kind matches, else returns ok=false.
func CastFile(n *syntax.Node) (File, bool) {
	if n == nil || n.Kind != syntax.FILE {
		return File{}, false
	}
	return File{N: n}, true
}

// Primaries returns the top-level header/reserve-memory/include/node/
// delete items, skipping trivia; ERROR nodes are included.
func (f File) Primaries() []*syntax.Node {
	return f.N.NonTrivia()
}

// Header wraps a HEADER node.
type Header struct{ N *syntax.Node }

func CastHeader(n *syntax.Node) (Header, bool) {
	if n == nil || n.Kind != syntax.HEADER {
		return Header{}, false
	}
	return Header{N: n}, true
}

// IsPlugin reports whether this header is `/plugin/;` rather than
// `/dts-v1/;`.
func (h Header) IsPlugin() bool {
	for _, c := range h.N.Children {
		if c.Kind == syntax.PLUGIN {
			return true
		}
	}
	return false
}

// ReserveMemory wraps a RESERVE_MEMORY node.
type ReserveMemory struct{ N *syntax.Node }

func CastReserveMemory(n *syntax.Node) (ReserveMemory, bool) {
	if n == nil || n.Kind != syntax.RESERVE_MEMORY {
		return ReserveMemory{}, false
	}
	return ReserveMemory{N: n}, true
}

// Ints returns the two INT children (address, length).
func (r ReserveMemory) Ints() []*syntax.Node {
	return r.N.ChildrenOfKind(syntax.INT)
}

// IncludeFile wraps an INCLUDE_FILE node.
type IncludeFile struct{ N *syntax.Node }

func CastIncludeFile(n *syntax.Node) (IncludeFile, bool) {
	if n == nil || n.Kind != syntax.INCLUDE_FILE {
		return IncludeFile{}, false
	}
	return IncludeFile{N: n}, true
}

// Path returns the included file's path with its surrounding quotes
// stripped and escapes left as-is (the I/O port deals in raw path text).
func (inc IncludeFile) Path() (string, bool) {
	str := inc.N.FirstChildOfKind(syntax.STRING)
	if str == nil {
		return "", false
	}
	return unquote(str.Token.Text), true
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return strings.TrimPrefix(s, `"`)
}

// Name wraps a NAME node (permissive node/property name).
type Name struct{ N *syntax.Node }

func CastName(n *syntax.Node) (Name, bool) {
	if n == nil || n.Kind != syntax.NAME {
		return Name{}, false
	}
	return Name{N: n}, true
}

// Text returns the name's literal spelling.
func (nm Name) Text() string {
	return nm.N.Text()
}

// Label wraps a LABEL node (IDENT [WS] COLON, or the IDENT form inside a
// REFERENCE).
type Label struct{ N *syntax.Node }

func CastLabel(n *syntax.Node) (Label, bool) {
	if n == nil || n.Kind != syntax.LABEL {
		return Label{}, false
	}
	return Label{N: n}, true
}

// Ident returns the label's identifier text.
func (l Label) Ident() string {
	if id := l.N.FirstChildOfKind(syntax.IDENT); id != nil {
		return id.Token.Text
	}
	return ""
}

// Reference wraps a REFERENCE node (`&label` or `&{path}`).
type Reference struct{ N *syntax.Node }

func CastReference(n *syntax.Node) (Reference, bool) {
	if n == nil || n.Kind != syntax.REFERENCE {
		return Reference{}, false
	}
	return Reference{N: n}, true
}

// Label returns the referenced label and true, if this is a label-form
// reference.
func (r Reference) Label() (string, bool) {
	if lbl := r.N.FirstChildOfKind(syntax.LABEL); lbl != nil {
		l, _ := CastLabel(lbl)
		return l.Ident(), true
	}
	return "", false
}

// PathNode returns the inner PATH node of a `&{/foo/bar}` reference, if
// this is a path-form reference (REF_PATH wraps L_BRACE, PATH, R_BRACE).
func (r Reference) PathNode() (*syntax.Node, bool) {
	rp := r.N.FirstChildOfKind(syntax.REF_PATH)
	if rp == nil {
		return nil, false
	}
	if p := rp.FirstChildOfKind(syntax.PATH); p != nil {
		return p, true
	}
	return nil, false
}

// PathSegments returns the NAME children of a PATH node in order.
func PathSegments(pathNode *syntax.Node) []*syntax.Node {
	return pathNode.ChildrenOfKind(syntax.NAME)
}

// Property wraps a PROPERTY node.
type Property struct{ N *syntax.Node }

func CastProperty(n *syntax.Node) (Property, bool) {
	if n == nil || n.Kind != syntax.PROPERTY {
		return Property{}, false
	}
	return Property{N: n}, true
}

// Name returns the property's NAME node.
func (p Property) Name() (Name, bool) {
	nm := p.N.FirstChildOfKind(syntax.NAME)
	return CastName(nm)
}

// IsFlag reports whether this is a flag property (no '=', no values).
func (p Property) IsFlag() bool {
	return p.N.FirstChildOfKind(syntax.PROPERTY_LIST) == nil
}

// Values returns the PROP_VALUE children, in order.
func (p Property) Values() []*syntax.Node {
	if list := p.N.FirstChildOfKind(syntax.PROPERTY_LIST); list != nil {
		return list.ChildrenOfKind(syntax.PROP_VALUE)
	}
	return nil
}

// DtsNode wraps a NODE node (a device node declaration).
type DtsNode struct{ N *syntax.Node }

func CastNode(n *syntax.Node) (DtsNode, bool) {
	if n == nil || n.Kind != syntax.NODE {
		return DtsNode{}, false
	}
	return DtsNode{N: n}, true
}

// Label returns this node's preceding label, if any.
func (d DtsNode) Label() (Label, bool) {
	lbl := d.N.FirstChildOfKind(syntax.LABEL)
	return CastLabel(lbl)
}

// Name returns this node's NAME child (for "/" or plain node names).
func (d DtsNode) Name() (Name, bool) {
	nm := d.N.FirstChildOfKind(syntax.NAME)
	return CastName(nm)
}

// Reference returns this node's REFERENCE child (for `&label {...}`
// override nodes).
func (d DtsNode) Reference() (Reference, bool) {
	ref := d.N.FirstChildOfKind(syntax.REFERENCE)
	return CastReference(ref)
}

// IsOmitIfNoRef reports whether this node carries the
// `/omit-if-no-ref/` decoration.
func (d DtsNode) IsOmitIfNoRef() bool {
	dec := d.N.FirstChildOfKind(syntax.DECORATION)
	return dec != nil
}

// Body returns the node's NODE_BODY child's non-trivia items (PROPERTY,
// NODE, DELETE_SPEC).
func (d DtsNode) Body() []*syntax.Node {
	body := d.N.FirstChildOfKind(syntax.NODE_BODY)
	if body == nil {
		return nil
	}
	return body.NonTrivia()
}

// DeleteSpec wraps a DELETE_SPEC node.
type DeleteSpec struct{ N *syntax.Node }

func CastDeleteSpec(n *syntax.Node) (DeleteSpec, bool) {
	if n == nil || n.Kind != syntax.DELETE_SPEC {
		return DeleteSpec{}, false
	}
	return DeleteSpec{N: n}, true
}

// IsDeleteNode reports whether this deletes a node (vs. a property).
func (d DeleteSpec) IsDeleteNode() bool {
	for _, c := range d.N.Children {
		if c.Kind == syntax.DELETE_NODE {
			return true
		}
	}
	return false
}

// TargetName returns the NAME child, for body-scope delete-property /
// delete-node specs.
func (d DeleteSpec) TargetName() (Name, bool) {
	return CastName(d.N.FirstChildOfKind(syntax.NAME))
}

// TargetReference returns the REFERENCE child, for file-scope
// /delete-node/ specs.
func (d DeleteSpec) TargetReference() (Reference, bool) {
	return CastReference(d.N.FirstChildOfKind(syntax.REFERENCE))
}
