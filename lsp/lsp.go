// Package lsp implements the out-of-core-scope LSP boundary spec.md §6
// describes: a thin glsp server translating textDocument notifications
// into dts/project calls and dts/project query results into LSP
// protocol values. Grounded on java/codebase/lsp.go's NewLSPServer/
// protocol.Handler wiring, re-pointed at dts/project instead of
// java/codebase.Codebase.
package lsp

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/ginko/dts/analysis"
	"github.com/dhamidi/ginko/dts/ast"
	"github.com/dhamidi/ginko/dts/diagnostics"
	"github.com/dhamidi/ginko/dts/lineindex"
	"github.com/dhamidi/ginko/dts/project"
	"github.com/dhamidi/ginko/dts/syntax"
)

const lsName = "ginko"

// Server is the LSP front end for a single dts/project.Project.
type Server struct {
	proj    *project.Project
	handler protocol.Handler
	server  *server.Server
	version string
}

// NewServer constructs an LSP server backed by a fresh project.Project.
func NewServer(version string) *Server {
	ls := &Server{
		proj:    project.New(nil, nil),
		version: version,
	}

	ls.handler = protocol.Handler{
		Initialize:                 ls.initialize,
		Initialized:                ls.initialized,
		Shutdown:                   ls.shutdown,
		SetTrace:                   ls.setTrace,
		TextDocumentDidOpen:        ls.textDocumentDidOpen,
		TextDocumentDidChange:      ls.textDocumentDidChange,
		TextDocumentDidClose:       ls.textDocumentDidClose,
		TextDocumentDidSave:        ls.textDocumentDidSave,
		TextDocumentDefinition:     ls.definition,
		TextDocumentHover:          ls.hover,
		TextDocumentDocumentSymbol: ls.documentSymbol,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)
	return ls
}

// RunStdio serves the protocol over stdin/stdout, the only transport
// spec.md's LSP surface names.
func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := ls.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(true)},
	}
	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true
	capabilities.DocumentSymbolProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.proj.AddFile(path, params.TextDocument.Text, analysis.InferFileType(path))
	ls.publishDiagnostics(ctx, path)
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		fileType := analysis.InferFileType(path)
		if f := ls.proj.GetFile(path); f != nil {
			fileType = f.FileType()
		}
		ls.proj.AddFile(path, whole.Text, fileType)
		ls.publishDiagnostics(ctx, path)
	}
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.proj.RemoveFile(path)
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if params.Text != nil {
		fileType := analysis.InferFileType(path)
		if f := ls.proj.GetFile(path); f != nil {
			fileType = f.FileType()
		}
		ls.proj.AddFile(path, *params.Text, fileType)
		ls.publishDiagnostics(ctx, path)
	}
	return nil
}

// publishDiagnostics translates a file's dts/diagnostics.Diagnostic
// slice into an LSP publishDiagnostics notification, mapping
// Error/Warning/Hint to LSP Error/Warning/Hint per spec.md §6.
func (ls *Server) publishDiagnostics(ctx *glsp.Context, path string) {
	f := ls.proj.GetFile(path)
	if f == nil {
		return
	}
	ix := lineindex.New([]byte(f.Source()))
	sm := ls.proj.SeverityMap()

	var out []protocol.Diagnostic
	for _, d := range f.Diagnostics() {
		rng, err := ix.RangeToLSP(d.Range)
		if err != nil {
			continue
		}
		sev := toProtocolSeverity(sm.Severity(d.Code))
		code := d.Code.String()
		out = append(out, protocol.Diagnostic{
			Range:    toProtocolRange(rng),
			Severity: &sev,
			Code:     &protocol.IntegerOrString{Value: code},
			Source:   strPtr(lsName),
			Message:  d.Message,
		})
	}

	uri := pathToURI(path)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: out,
	})
}

func toProtocolSeverity(s diagnostics.Severity) protocol.DiagnosticSeverity {
	switch s {
	case diagnostics.Error:
		return protocol.DiagnosticSeverityError
	case diagnostics.Warning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityHint
	}
}

// definition resolves the reference under the cursor via
// Project.GetNodePosition; an include target resolves by opening the
// included file at offset 0, per spec.md §6.
func (ls *Server) definition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	f := ls.proj.GetFile(path)
	if f == nil {
		return nil, nil
	}
	ix := lineindex.New([]byte(f.Source()))
	offset, err := ix.PositionToOffset(lineindex.Position{
		Line:      int(params.Position.Line),
		Character: int(params.Position.Character),
	})
	if err != nil {
		return nil, nil
	}

	if target, ok := ls.includeTargetAt(f, offset); ok {
		targetURI := pathToURI(target)
		return protocol.Location{
			URI:   targetURI,
			Range: protocol.Range{},
		}, nil
	}

	item, ok := ls.proj.FindAtPos(path, offset)
	if !ok || item.Reference == nil {
		return nil, nil
	}
	defFile, defRange, ok := ls.proj.GetNodePosition(path, *item.Reference)
	if !ok {
		return nil, nil
	}
	defIx := lineindex.New([]byte(fileSource(ls.proj, defFile)))
	lspRange, err := defIx.RangeToLSP(defRange)
	if err != nil {
		return nil, nil
	}
	return protocol.Location{
		URI:   pathToURI(defFile),
		Range: toProtocolRange(lspRange),
	}, nil
}

// hover documents the reference under the cursor via
// Project.DocumentReference.
func (ls *Server) hover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	f := ls.proj.GetFile(path)
	if f == nil {
		return nil, nil
	}
	ix := lineindex.New([]byte(f.Source()))
	offset, err := ix.PositionToOffset(lineindex.Position{
		Line:      int(params.Position.Line),
		Character: int(params.Position.Character),
	})
	if err != nil {
		return nil, nil
	}
	item, ok := ls.proj.FindAtPos(path, offset)
	if !ok || item.Reference == nil {
		return nil, nil
	}
	text, ok := ls.proj.DocumentReference(path, *item.Reference)
	if !ok {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.MarkupKindPlainText, Value: text},
	}, nil
}

// documentSymbol walks the CST producing a symbol tree of root nodes,
// referenced-node overrides, and include directives, per spec.md §6.
func (ls *Server) documentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	f := ls.proj.GetFile(path)
	if f == nil || f.CST() == nil {
		return nil, nil
	}
	ix := lineindex.New([]byte(f.Source()))
	file, ok := ast.CastFile(f.CST())
	if !ok {
		return nil, nil
	}

	var symbols []protocol.DocumentSymbol
	for _, primary := range file.Primaries() {
		if sym, ok := symbolFor(primary, ix); ok {
			symbols = append(symbols, sym)
		}
	}
	return symbols, nil
}

func symbolFor(n *syntax.Node, ix *lineindex.Index) (protocol.DocumentSymbol, bool) {
	rng, err := ix.RangeToLSP(n.Range())
	if err != nil {
		return protocol.DocumentSymbol{}, false
	}
	lspRange := toProtocolRange(rng)

	switch n.Kind {
	case syntax.NODE:
		dn, _ := ast.CastNode(n)
		name := "/"
		if nm, ok := dn.Name(); ok {
			name = nm.Text()
		} else if ref, ok := dn.Reference(); ok {
			name = ref.N.Text()
		}
		kind := protocol.SymbolKindNamespace
		sym := protocol.DocumentSymbol{
			Name:           name,
			Kind:           kind,
			Range:          lspRange,
			SelectionRange: lspRange,
		}
		for _, child := range dn.Body() {
			if childSym, ok := symbolFor(child, ix); ok {
				sym.Children = append(sym.Children, childSym)
			}
		}
		return sym, true
	case syntax.INCLUDE_FILE:
		inc, _ := ast.CastIncludeFile(n)
		target, _ := inc.Path()
		return protocol.DocumentSymbol{
			Name:           "/include/ " + target,
			Kind:           protocol.SymbolKindFile,
			Range:          lspRange,
			SelectionRange: lspRange,
		}, true
	default:
		return protocol.DocumentSymbol{}, false
	}
}

// includeTargetAt reports the resolved path of the include target the
// offset falls within, if any.
func (ls *Server) includeTargetAt(f *project.ProjectFile, offset int) (string, bool) {
	root := f.CST()
	if root == nil {
		return "", false
	}
	file, ok := ast.CastFile(root)
	if !ok {
		return "", false
	}
	for _, primary := range file.Primaries() {
		if primary.Kind != syntax.INCLUDE_FILE {
			continue
		}
		if offset < primary.Range().Start || offset >= primary.Range().End {
			continue
		}
		inc, _ := ast.CastIncludeFile(primary)
		target, ok := inc.Path()
		if !ok {
			continue
		}
		return filepath.Join(filepath.Dir(f.Path()), target), true
	}
	return "", false
}

func fileSource(p *project.Project, path string) string {
	if f := p.GetFile(path); f != nil {
		return f.Source()
	}
	return ""
}

func toProtocolRange(r lineindex.LSPRange) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(r.Start.Line), Character: protocol.UInteger(r.Start.Character)},
		End:   protocol.Position{Line: protocol.UInteger(r.End.Line), Character: protocol.UInteger(r.End.Character)},
	}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) string {
	return "file://" + filepath.ToSlash(path)
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
