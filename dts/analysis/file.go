// Package analysis implements the semantic analyzer: header/structural
// rules, name validators, well-known property checks, label extraction,
// and node merging, per spec.md §4.5. Grounded on
// original_source/ginko/src/dts/analysis/file.rs.
package analysis

import (
	"regexp"
	"strings"

	"github.com/dhamidi/ginko/dts/ast"
	"github.com/dhamidi/ginko/dts/diagnostics"
	"github.com/dhamidi/ginko/dts/eval"
	"github.com/dhamidi/ginko/dts/model"
	"github.com/dhamidi/ginko/dts/syntax"
)

// FileType classifies a ProjectFile, per spec.md §6.
type FileType int

const (
	Source FileType = iota
	Include
	Overlay
	Unknown
)

// InferFileType maps an extension to a FileType: ".dts" -> Source,
// ".dtsi" -> Include, ".dtso" -> Overlay, else Unknown.
func InferFileType(path string) FileType {
	switch {
	case strings.HasSuffix(path, ".dts"):
		return Source
	case strings.HasSuffix(path, ".dtsi"):
		return Include
	case strings.HasSuffix(path, ".dtso"):
		return Overlay
	default:
		return Unknown
	}
}

// Result is the outcome of analyzing a single file's CST, before any
// cross-file include propagation is applied by dts/project.
type Result struct {
	Model       *model.File
	Labels      model.LabelMap
	Diagnostics []diagnostics.Diagnostic
	// UnresolvedReferences lists every reference in this file's own CST,
	// resolved or not; the single-file pass does not resolve them. The
	// project layer checks each against the merged cross-file label map
	// and the file's node paths before emitting an UnresolvedReference
	// diagnostic.
	UnresolvedReferences []UnresolvedRef
	SawHeader            bool
	IsPlugin             bool
	// EffectiveFileType is the input FileType, promoted to Overlay when a
	// /plugin/ header was seen — original_source/ginko/src/dts/analysis/
	// file.rs promotes DtSource to DtSourceOverlay on Plugin detection.
	EffectiveFileType FileType
	// NodePositions maps a node's flat tree path to the byte range of its
	// declaration, for dts/project's GetNodePosition/DocumentReference.
	NodePositions map[string]diagnostics.Range
}

// UnresolvedRef is one reference found by the single-file pass, left for
// the project layer to resolve.
type UnresolvedRef struct {
	Ref   model.Reference
	Range diagnostics.Range
}

var (
	labelNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	nodeIdentRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9,._+-]*$`)
	nodeAddrRe  = regexp.MustCompile(`^[A-Za-z0-9,._+-]*$`)
	propNameRe  = regexp.MustCompile(`^[A-Za-z0-9,._+#?-]+$`)
	maxNameLen  = 31
)

// Analyzer runs the single-file analysis pass. file is the canonical
// path, used to tag diagnostics and label entries.
type Analyzer struct {
	file string
	sm   diagnostics.SeverityMap
	bag  *diagnostics.Bag
}

func New(file string, sm diagnostics.SeverityMap) *Analyzer {
	if sm == nil {
		sm = diagnostics.DefaultSeverityMap()
	}
	return &Analyzer{file: file, sm: sm, bag: &diagnostics.Bag{}}
}

// AnalyzeFile runs the full single-file pass: header/structural rules,
// node-tree merge into a model.File, label extraction, and well-known
// property validation. fileType controls which rules apply (Include and
// Overlay suppress NonDtsV1 and UnresolvedReference, per spec.md §6).
// seed pre-populates the label map (dts/project uses this to propagate
// labels from already-analyzed includes so cross-file duplicates and
// label lookups work before this file's own labels are added).
func (a *Analyzer) AnalyzeFile(root *syntax.Node, fileType FileType, seed model.LabelMap) Result {
	f, ok := ast.CastFile(root)
	if !ok {
		a.diag(diagnostics.ParserError, root.Range(), "expected a FILE node")
		return Result{Model: model.NewFile(), Labels: model.LabelMap{}, Diagnostics: a.bag.Items()}
	}

	mf := model.NewFile()
	labels := model.LabelMap{}
	for k, v := range seed {
		labels[k] = v
	}
	nodePositions := map[string]diagnostics.Range{}

	sawHeader := false
	headerSeen := false
	isPlugin := false
	seenNonIncludeContent := false
	var unresolved []UnresolvedRef

	for _, primary := range f.Primaries() {
		switch primary.Kind {
		case syntax.HEADER:
			h, _ := ast.CastHeader(primary)
			if headerSeen {
				a.diag(diagnostics.DuplicateDirective, primary.Range(), "duplicate header directive")
			} else if seenNonIncludeContent {
				a.diag(diagnostics.MisplacedDtsHeader, primary.Range(), "/dts-v1/ must precede other content")
			}
			headerSeen = true
			sawHeader = true
			isPlugin = h.IsPlugin()
		case syntax.INCLUDE:
			// Includes may legally precede the header; they do not count
			// as "other content" for MisplacedDtsHeader purposes.
		case syntax.RESERVE_MEMORY:
			seenNonIncludeContent = true
			rm, _ := ast.CastReserveMemory(primary)
			ints := rm.Ints()
			if len(ints) == 2 {
				addr, errA := eval.Eval(ints[0], 64)
				length, errL := eval.Eval(ints[1], 64)
				if errA != nil {
					a.diag(diagnostics.IntError, ints[0].Range(), "invalid /memreserve/ address")
				}
				if errL != nil {
					a.diag(diagnostics.IntError, ints[1].Range(), "invalid /memreserve/ length")
				}
				if errA == nil && errL == nil {
					mf.ReservedMemory = append(mf.ReservedMemory, model.ReservedMemory{Address: addr, Length: length})
				}
			}
		case syntax.NODE:
			seenNonIncludeContent = true
			dn, _ := ast.CastNode(primary)
			body := a.analyzeNodeBody(dn, labels, model.Path{}, &unresolved, nodePositions)
			mf.Root.Merge(body)
		case syntax.DELETE_SPEC:
			seenNonIncludeContent = true
			// File-scope /delete-node/ is not applied: the targeted node
			// stays in the model, and nothing further is recorded here.
		case syntax.ERROR:
			a.diag(diagnostics.ParserError, primary.Range(), "unrecognized content at file scope")
		}
	}

	if fileType == Source && !headerSeen {
		a.diag(diagnostics.NonDtsV1, diagnostics.Range{Start: 0, End: 0}, "source file is missing /dts-v1/;")
	}

	effective := fileType
	if isPlugin {
		effective = Overlay
	}

	a.validateWellKnownProperties(mf.Root)

	return Result{
		Model:                mf,
		Labels:               labels,
		Diagnostics:          a.bag.Items(),
		UnresolvedReferences: unresolved,
		SawHeader:            sawHeader,
		IsPlugin:             isPlugin,
		EffectiveFileType:    effective,
		NodePositions:        nodePositions,
	}
}

func (a *Analyzer) diag(code diagnostics.Code, rng diagnostics.Range, msg string) {
	a.bag.Add(diagnostics.Diagnostic{Code: code, Range: rng, File: a.file, Message: msg})
}

// analyzeNodeBody recursively builds the semantic Node tree for a single
// `name { ... };` declaration, extracting labels along the way (tree-walk
// with an explicit Path stack, grounded on
// original_source/ginko/src/dts/analysis/file.rs's extract_labels).
func (a *Analyzer) analyzeNodeBody(dn ast.DtsNode, labels model.LabelMap, parentPath model.Path, unresolved *[]UnresolvedRef, positions map[string]diagnostics.Range) *model.Node {
	n := model.NewNode()

	var nn model.NodeName
	if nameNode, ok := dn.Name(); ok {
		text := nameNode.Text()
		if text == "/" {
			nn = model.NodeName{Ident: "/"}
		} else {
			nn = model.ParseNodeName(text)
			a.validateNodeName(nameNode.N)
		}
	} else if ref, ok := dn.Reference(); ok {
		// Referenced-node override: its path is resolved relative to the
		// reference target by the project layer; locally we still walk
		// its body so nested labels/properties are captured.
		nn = model.NodeName{Ident: ref.N.Text()}
	}

	path := parentPath
	if nn.Ident != "/" {
		path = parentPath.Append(nn)
	}

	if lbl, ok := dn.Label(); ok {
		a.recordLabel(labels, lbl.Ident(), path, lbl.N.Range())
	}
	positions[path.String()] = dn.N.Range()

	sawNodeChild := false
	for _, item := range dn.Body() {
		switch item.Kind {
		case syntax.PROPERTY:
			if sawNodeChild {
				a.diag(diagnostics.PropertyAfterNode, item.Range(), "properties must precede child nodes")
			}
			p, _ := ast.CastProperty(item)
			a.analyzeProperty(p, n, labels, path, unresolved)
		case syntax.NODE:
			sawNodeChild = true
			childDn, _ := ast.CastNode(item)
			childModel := a.analyzeNodeBody(childDn, labels, path, unresolved, positions)
			var childName model.NodeName
			if cn, ok := childDn.Name(); ok {
				childName = model.ParseNodeName(cn.Text())
			} else if ref, ok := childDn.Reference(); ok {
				childName = model.NodeName{Ident: ref.N.Text()}
			}
			existing := n.GetOrCreateChild(childName.String())
			existing.Merge(childModel)
		case syntax.DELETE_SPEC:
			// Body-scope /delete-property/ and /delete-node/ are not
			// applied: the deleted property or child stays in the model.
		}
	}

	return n
}

func (a *Analyzer) recordLabel(labels model.LabelMap, name string, path model.Path, rng diagnostics.Range) {
	if len(name) > maxNameLen {
		a.diag(diagnostics.NameTooLong, rng, "label name exceeds 31 characters")
	}
	if !labelNameRe.MatchString(name) {
		a.diag(diagnostics.IllegalChar, rng, "illegal character in label name")
	}
	if existing, ok := labels[name]; ok {
		d := diagnostics.Diagnostic{
			Code: diagnostics.DuplicateLabel, Range: rng, File: a.file,
			Message: "duplicate label: " + name,
		}
		d = d.WithRelated(existing.DefiningFile, existing.DefiningRange, "previously defined here")
		a.bag.Add(d)
		return
	}
	labels[name] = model.LabelEntry{PathInTree: path, DefiningFile: a.file, DefiningRange: rng}
}

func (a *Analyzer) analyzeProperty(p ast.Property, n *model.Node, labels model.LabelMap, path model.Path, unresolved *[]UnresolvedRef) {
	nameNode, ok := p.Name()
	if !ok {
		return
	}
	name := nameNode.Text()
	a.validatePropertyName(nameNode.N)
	if lbl, ok := ast.CastLabel(p.N.FirstChildOfKind(syntax.LABEL)); ok {
		a.recordLabel(labels, lbl.Ident(), path, lbl.N.Range())
	}

	if p.IsFlag() {
		n.SetProperty(name, nil)
		return
	}

	var values []model.Value
	for _, pv := range p.Values() {
		v, ok := a.evalPropValue(pv, unresolved)
		if ok {
			values = append(values, v)
		}
	}
	n.SetProperty(name, values)
}

func (a *Analyzer) evalPropValue(pv *syntax.Node, unresolved *[]UnresolvedRef) (model.Value, bool) {
	for _, c := range pv.NonTrivia() {
		switch c.Kind {
		case syntax.STRING_PROP:
			str := c.FirstChildOfKind(syntax.STRING)
			if str == nil {
				continue
			}
			return model.Value{Kind: model.ValueString, Str: unquoteText(str.Token.Text), Range: c.Range()}, true
		case syntax.CELL:
			return a.evalCell(c, unresolved), true
		case syntax.BYTE_STRING:
			return model.Value{Kind: model.ValueBytes, Bytes: decodeByteString(c), Range: c.Range()}, true
		case syntax.REFERENCE:
			modelRef := a.resolveReference(c, unresolved)
			return model.Value{Kind: model.ValueReference, Reference: modelRef, Range: c.Range()}, true
		case syntax.LABEL:
			// A label preceding a value: not itself a value; skip.
		}
	}
	return model.Value{}, false
}

func (a *Analyzer) evalCell(cell *syntax.Node, unresolved *[]UnresolvedRef) model.Value {
	width := model.U32
	if cell.Parent != nil {
		if bs := cell.Parent.FirstChildOfKind(syntax.BITS_SPEC); bs != nil {
			if n := bs.FirstChildOfKind(syntax.INT); n != nil {
				if bits, err := eval.Eval(n, 64); err == nil {
					for _, w := range []model.Width{model.U8, model.U16, model.U32, model.U64} {
						if uint64(w.BitSize()) == bits {
							width = w
						}
					}
				}
			}
		}
	}
	items := cell.ChildrenOfKind(syntax.CELL_INNER)
	var values []model.CellValue
	for _, item := range items {
		inner := firstExprOrRef(item)
		if inner == nil {
			continue
		}
		if inner.Kind == syntax.REFERENCE {
			modelRef := a.resolveReference(inner, unresolved)
			values = append(values, model.CellValue{Kind: model.CellReference, Ref: modelRef})
			continue
		}
		if inner.Kind == syntax.PAREN_EXPRESSION {
			v, truncated, err := eval.EvalParenAsCell(inner)
			if err != nil {
				a.diag(diagnostics.IntError, inner.Range(), "invalid expression")
				continue
			}
			if truncated {
				a.diag(diagnostics.TruncatingBits, inner.Range(), "truncating bits")
			}
			values = append(values, model.CellValue{Kind: model.CellNumber, Number: uint64(v)})
			continue
		}
		v, err := eval.Eval(inner, width.BitSize())
		if err != nil {
			a.diag(diagnostics.IntError, inner.Range(), "invalid integer literal")
			continue
		}
		values = append(values, model.CellValue{Kind: model.CellNumber, Number: v})
	}
	return model.Value{Kind: model.ValueCell, Cell: model.CellValues{Width: width, Values: values}, Range: cell.Range()}
}

func firstExprOrRef(cellInner *syntax.Node) *syntax.Node {
	for _, c := range cellInner.NonTrivia() {
		return c
	}
	return nil
}

func (a *Analyzer) resolveReference(refNode *syntax.Node, unresolved *[]UnresolvedRef) model.Reference {
	r, _ := ast.CastReference(refNode)
	var mr model.Reference
	if label, ok := r.Label(); ok {
		mr = model.Reference{Kind: model.RefLabel, Label: label}
	} else if pathNode, ok := r.PathNode(); ok {
		var path model.Path
		for _, seg := range ast.PathSegments(pathNode) {
			na, _ := ast.CastName(seg)
			path = path.Append(model.ParseNodeName(na.Text()))
		}
		mr = model.Reference{Kind: model.RefPath, Path: path}
	}
	*unresolved = append(*unresolved, UnresolvedRef{Ref: mr, Range: refNode.Range()})
	return mr
}

func (a *Analyzer) validateNodeName(nameNode *syntax.Node) {
	text := nameNode.Text()
	ident := text
	addr := ""
	if i := strings.IndexByte(text, '@'); i >= 0 {
		ident = text[:i]
		addr = text[i+1:]
	}
	if len(text) > maxNameLen {
		a.diag(diagnostics.NameTooLong, nameNode.Range(), "node name exceeds 31 characters")
	}
	if !nodeIdentRe.MatchString(ident) {
		a.diag(diagnostics.IllegalStart, nameNode.Range(), "node name must start with a letter")
	}
	if addr != "" && !nodeAddrRe.MatchString(addr) {
		a.diag(diagnostics.IllegalChar, nameNode.Range(), "illegal character in node address")
	}
}

func (a *Analyzer) validatePropertyName(nameNode *syntax.Node) {
	text := nameNode.Text()
	if len(text) > maxNameLen {
		a.diag(diagnostics.NameTooLong, nameNode.Range(), "property name exceeds 31 characters")
	}
	if !propNameRe.MatchString(text) {
		a.diag(diagnostics.IllegalChar, nameNode.Range(), "illegal character in property name")
	}
}

func (a *Analyzer) validateWellKnownProperties(root *model.Node) {
	if values, ok := root.Properties["compatible"]; ok {
		for _, v := range values {
			if v.Kind != model.ValueString {
				a.diag(diagnostics.NonStringInCompatible, v.Range, "compatible must be a string list")
			}
		}
	}
}

func unquoteText(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) {
		if strings.HasSuffix(s, `"`) {
			return s[1 : len(s)-1]
		}
		return s[1:]
	}
	return s
}

func decodeByteString(bs *syntax.Node) []byte {
	var hex strings.Builder
	for _, chunk := range bs.ChildrenOfKind(syntax.BYTE_CHUNK) {
		hex.WriteString(chunk.Text())
	}
	s := hex.String()
	out := make([]byte, 0, len(s)/2)
	for i := 0; i+1 < len(s); i += 2 {
		hi := hexDigit(s[i])
		lo := hexDigit(s[i+1])
		out = append(out, byte(hi<<4|lo))
	}
	return out
}

func hexDigit(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}
