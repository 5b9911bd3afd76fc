// Package project implements the multi-file project/analysis engine:
// include resolution, cycle detection, cross-file label propagation,
// and the query surface consumed by cmd/ginko and lsp, per spec.md
// §4.5/§5/§6. Grounded on
// original_source/ginko/src/dts/analysis/project.rs's Project/
// ProjectFile/ProjectState, with the RWMutex-guarded file map adapted
// from java/codebase/codebase.go's Codebase.
package project

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dhamidi/ginko/dts/analysis"
	"github.com/dhamidi/ginko/dts/ast"
	"github.com/dhamidi/ginko/dts/diagnostics"
	"github.com/dhamidi/ginko/dts/model"
	"github.com/dhamidi/ginko/dts/project/importguard"
	"github.com/dhamidi/ginko/dts/syntax"
)

// IOPort is the sole external dependency: reading file contents by
// path. Paths are opaque strings — canonicalization is the caller's
// (or, by default, the filesystem port's) job, per spec.md §6.
type IOPort interface {
	ReadToString(path string) (string, error)
}

// FSPort is the default IOPort, reading directly from the local
// filesystem.
type FSPort struct{}

func (FSPort) ReadToString(p string) (string, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// State is a ProjectFile's position in the per-file state machine from
// spec.md §4.5: Empty -> Parsing -> Parsed -> Analyzing -> Analyzed.
type State int

const (
	Empty State = iota
	Parsing
	Parsed
	Analyzing
	Analyzed
)

// ProjectFile is one file tracked by a Project. Each instance carries
// its own lock so that LSP-style concurrent readers can observe a
// stale-but-consistent snapshot while a reparse is in flight — per
// spec.md §5's per-file reader/writer lock requirement.
type ProjectFile struct {
	mu sync.RWMutex

	path          string
	source        string
	declaredType  analysis.FileType
	effectiveType analysis.FileType
	state         State

	cst               *syntax.Node
	syntaxDiagnostics []diagnostics.Diagnostic
	model             *model.File
	labels            model.LabelMap
	nodePositions     map[string]diagnostics.Range
	unresolved        []analysis.UnresolvedRef
	analysisDiags     []diagnostics.Diagnostic
	includeTargets    []includeEdge
}

type includeEdge struct {
	target string
	rng    diagnostics.Range
}

// Path returns the file's canonical path.
func (f *ProjectFile) Path() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.path
}

// Source returns the file's current text.
func (f *ProjectFile) Source() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.source
}

// CST returns the file's concrete syntax tree.
func (f *ProjectFile) CST() *syntax.Node {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.cst
}

// Model returns the file's merged semantic model, or nil if not yet
// analyzed.
func (f *ProjectFile) Model() *model.File {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.model
}

// Labels returns the file's label map (including labels propagated
// from its includes), or nil if not yet analyzed.
func (f *ProjectFile) Labels() model.LabelMap {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.labels
}

// FileType returns the effective file type (promoted to Overlay on
// /plugin/, and to Include when another project file includes it).
func (f *ProjectFile) FileType() analysis.FileType {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.effectiveType
}

// State returns the file's current state-machine position.
func (f *ProjectFile) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// Diagnostics returns syntax and analysis diagnostics together, sorted
// by (file, start) per spec.md §7's user-surface rule.
func (f *ProjectFile) Diagnostics() []diagnostics.Diagnostic {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]diagnostics.Diagnostic, 0, len(f.syntaxDiagnostics)+len(f.analysisDiags))
	out = append(out, f.syntaxDiagnostics...)
	out = append(out, f.analysisDiags...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Range.Start < out[j].Range.Start
	})
	return out
}

// Project is the multi-file analysis engine described in spec.md
// §4.5. Mutating operations (AddFile, Analyze, RemoveFile) require
// exclusive access to the file map; GetFile hands out a *ProjectFile
// that callers read through its own lock, so readers are never blocked
// by an in-flight mutation of a different file.
type Project struct {
	mu           sync.RWMutex
	files        map[string]*ProjectFile
	includePaths []string
	io           IOPort
	sm           diagnostics.SeverityMap
	canon        *lru.Cache[string, string]
}

// New creates an empty Project backed by io (FSPort{} if nil), using
// sm for diagnostic severities (diagnostics.DefaultSeverityMap() if
// nil).
func New(io IOPort, sm diagnostics.SeverityMap) *Project {
	if io == nil {
		io = FSPort{}
	}
	if sm == nil {
		sm = diagnostics.DefaultSeverityMap()
	}
	cache, _ := lru.New[string, string](256)
	return &Project{
		files: make(map[string]*ProjectFile),
		io:    io,
		sm:    sm,
		canon: cache,
	}
}

// SetIncludePaths replaces the project's include search path, used to
// resolve `/include/ "name"` targets that are not found relative to
// the including file.
func (p *Project) SetIncludePaths(paths []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.includePaths = append([]string(nil), paths...)
}

// AddFile inserts or replaces a file, parses it, then re-runs analysis
// on it (and transitively on its includes), per spec.md §4.5.
func (p *Project) AddFile(filePath, text string, fileType analysis.FileType) {
	p.mu.Lock()
	f := p.getOrCreateLocked(filePath)
	p.mu.Unlock()

	p.parseInto(f, filePath, text, fileType)
	p.Analyze(filePath)
}

// AddFileFromFS reads filePath through the I/O port and adds it,
// inferring its file type from the extension.
func (p *Project) AddFileFromFS(filePath string) error {
	text, err := p.io.ReadToString(filePath)
	if err != nil {
		return err
	}
	p.AddFile(filePath, text, analysis.InferFileType(filePath))
	return nil
}

// loadFileFromFS parses filePath (reading it through the I/O port) if
// it is not already tracked, without triggering analysis — used while
// walking includes, where analysis happens once, afterward, in
// topological order.
func (p *Project) loadFileFromFS(filePath string) error {
	p.mu.RLock()
	_, have := p.files[filePath]
	p.mu.RUnlock()
	if have {
		return nil
	}
	text, err := p.io.ReadToString(filePath)
	if err != nil {
		return err
	}
	p.mu.Lock()
	f := p.getOrCreateLocked(filePath)
	p.mu.Unlock()
	p.parseInto(f, filePath, text, analysis.InferFileType(filePath))
	return nil
}

func (p *Project) getOrCreateLocked(filePath string) *ProjectFile {
	if f, ok := p.files[filePath]; ok {
		return f
	}
	f := &ProjectFile{path: filePath, state: Empty}
	p.files[filePath] = f
	return f
}

func (p *Project) parseInto(f *ProjectFile, filePath, text string, fileType analysis.FileType) {
	f.mu.Lock()
	f.state = Parsing
	f.mu.Unlock()

	root, diags := syntax.ParseFile(text, filePath)
	edges := collectIncludeEdges(root)

	f.mu.Lock()
	f.path = filePath
	f.source = text
	f.declaredType = fileType
	f.effectiveType = fileType
	f.cst = root
	f.syntaxDiagnostics = diags
	f.includeTargets = edges
	f.state = Parsed
	f.mu.Unlock()
}

// collectIncludeEdges walks the file-scope primaries for INCLUDE_FILE
// nodes, returning their path text as written (resolveIncludePath
// resolves it later) and the range to attach a diagnostic to (the path
// string token's range).
func collectIncludeEdges(root *syntax.Node) []includeEdge {
	f, ok := ast.CastFile(root)
	if !ok {
		return nil
	}
	var edges []includeEdge
	for _, primary := range f.Primaries() {
		if primary.Kind != syntax.INCLUDE_FILE {
			continue
		}
		inc, _ := ast.CastIncludeFile(primary)
		target, ok := inc.Path()
		if !ok {
			continue
		}
		rng := primary.Range()
		if str := primary.FirstChildOfKind(syntax.STRING); str != nil {
			rng = str.Range()
		}
		edges = append(edges, includeEdge{target: target, rng: rng})
	}
	return edges
}

// resolveIncludePath canonicalizes target relative to fromPath, then
// against the include search path, caching results in an LRU cache —
// SPEC_FULL.md's domain-stack slot for hashicorp/golang-lru/v2.
func (p *Project) resolveIncludePath(fromPath, target string) string {
	key := fromPath + "\x00" + target
	if v, ok := p.canon.Get(key); ok {
		return v
	}
	resolved := target
	if !filepath.IsAbs(target) {
		candidate := filepath.Join(filepath.Dir(fromPath), target)
		if _, err := os.Stat(candidate); err == nil {
			resolved = candidate
		} else {
			p.mu.RLock()
			includePaths := append([]string(nil), p.includePaths...)
			p.mu.RUnlock()
			for _, dir := range includePaths {
				c := filepath.Join(dir, target)
				if _, err := os.Stat(c); err == nil {
					resolved = c
					break
				}
			}
		}
	}
	resolved = path.Clean(filepath.ToSlash(resolved))
	p.canon.Add(key, resolved)
	return resolved
}

// Analyze recursively resolves file's includes (reading any not yet in
// the project, detecting cycles as it goes with one ImportGuard shared
// across the whole resolution), computes a topological order over the
// include graph, and analyzes each file so that a file's dependencies
// are always analyzed before it is, per spec.md §4.5.
func (p *Project) Analyze(filePath string) {
	guard := importguard.New[string]()
	var order []string
	onStack := map[string]bool{}
	done := map[string]bool{}
	extraDiags := map[string][]diagnostics.Diagnostic{}

	var visit func(fp string)
	visit = func(fp string) {
		if done[fp] || onStack[fp] {
			return
		}
		onStack[fp] = true
		defer func() { onStack[fp] = false }()

		p.mu.RLock()
		f, ok := p.files[fp]
		p.mu.RUnlock()
		if !ok {
			return
		}

		f.mu.RLock()
		edges := append([]includeEdge(nil), f.includeTargets...)
		f.mu.RUnlock()

		for _, e := range edges {
			resolved := p.resolveIncludePath(fp, e.target)

			if err := p.loadFileFromFS(resolved); err != nil {
				extraDiags[fp] = append(extraDiags[fp], diagnostics.Diagnostic{
					Code: diagnostics.IOError, Range: e.rng, File: fp,
					Message: fmt.Sprintf("cannot read included file %q: %v", e.target, err),
				})
				continue
			}

			if err := guard.Add(fp, []string{resolved}); err != nil {
				cyc := cycleOf(err)
				cyc = rotateCycle(cyc, filePath)
				extraDiags[fp] = append(extraDiags[fp], diagnostics.Diagnostic{
					Code: diagnostics.CyclicDependencyError, Range: e.rng, File: fp,
					Message: "cyclic dependency: " + strings.Join(cyc, " -> "),
				})
				continue
			}

			visit(resolved)
		}

		done[fp] = true
		order = append(order, fp)
	}

	visit(filePath)

	for _, fp := range order {
		p.analyzeOne(fp)
	}

	for fp, ds := range extraDiags {
		p.mu.RLock()
		f := p.files[fp]
		p.mu.RUnlock()
		if f != nil {
			f.mu.Lock()
			f.analysisDiags = append(f.analysisDiags, ds...)
			f.mu.Unlock()
		}
	}

	p.propagateErrorsInInclude(order)
}

// cycleOf extracts the cycle element slice from an importguard error
// without a direct type-parameter reference (Add is called with
// V=string throughout dts/project).
func cycleOf(err error) []string {
	if ge, ok := err.(interface{ Cycle() []string }); ok {
		return ge.Cycle()
	}
	return nil
}

// rotateCycle rewrites a closed cycle (cycle[0] == cycle[len-1]) so it
// starts and ends at anchor, if anchor participates in it — matching
// original_source/ginko's entry-rooted cycle message (the recursive
// analysis walk reports the cycle starting from the file Analyze was
// called with, not from whichever edge happened to close the loop).
func rotateCycle(cycle []string, anchor string) []string {
	if len(cycle) < 2 {
		return cycle
	}
	open := cycle[:len(cycle)-1]
	idx := -1
	for i, v := range open {
		if v == anchor {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return cycle
	}
	rotated := append(append([]string(nil), open[idx:]...), open[:idx]...)
	rotated = append(rotated, anchor)
	return rotated
}

// analyzeOne runs the single-file analysis pass for fp, seeding its
// label map from already-analyzed includes (spec.md §4.5's
// "Propagate" rule) and promoting its effective file type to Include
// when some other file includes it (original_source/ginko's
// project.rs test multi_includes: a .dts file reached via /include/
// is reclassified DtSourceInclude regardless of extension).
func (p *Project) analyzeOne(fp string) {
	p.mu.RLock()
	f, ok := p.files[fp]
	p.mu.RUnlock()
	if !ok {
		return
	}

	f.mu.Lock()
	f.state = Analyzing
	root := f.cst
	declared := f.declaredType
	edges := append([]includeEdge(nil), f.includeTargets...)
	f.mu.Unlock()

	seed := model.LabelMap{}
	for _, e := range edges {
		resolved := p.resolveIncludePath(fp, e.target)
		p.mu.RLock()
		dep, ok := p.files[resolved]
		p.mu.RUnlock()
		if !ok {
			continue
		}
		dep.mu.RLock()
		for k, v := range dep.labels {
			if _, exists := seed[k]; !exists {
				seed[k] = v
			}
		}
		dep.mu.RUnlock()
	}

	fileType := declared
	if p.isIncludedByAnother(fp) {
		fileType = analysis.Include
	}

	a := analysis.New(fp, p.sm)
	result := a.AnalyzeFile(root, fileType, seed)

	f.mu.Lock()
	f.model = result.Model
	f.labels = result.Labels
	f.nodePositions = result.NodePositions
	f.unresolved = result.UnresolvedReferences
	f.analysisDiags = result.Diagnostics
	f.effectiveType = result.EffectiveFileType
	if fileType == analysis.Include {
		f.effectiveType = analysis.Include
	}
	f.state = Analyzed
	f.mu.Unlock()

	if fileType != analysis.Overlay && fileType != analysis.Include && !result.IsPlugin {
		p.emitUnresolvedReferences(f, result.UnresolvedReferences)
	}
}

// isIncludedByAnother reports whether any other file in the project
// has an /include/ edge resolving to fp.
func (p *Project) isIncludedByAnother(fp string) bool {
	p.mu.RLock()
	others := make(map[string]*ProjectFile, len(p.files))
	for k, f := range p.files {
		if k != fp {
			others[k] = f
		}
	}
	p.mu.RUnlock()

	for other, f := range others {
		f.mu.RLock()
		edges := append([]includeEdge(nil), f.includeTargets...)
		f.mu.RUnlock()
		for _, e := range edges {
			if p.resolveIncludePath(other, e.target) == fp {
				return true
			}
		}
	}
	return false
}

func (p *Project) emitUnresolvedReferences(f *ProjectFile, refs []analysis.UnresolvedRef) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ref := range refs {
		if ref.Ref.Kind == model.RefLabel {
			if _, ok := f.labels[ref.Ref.Label]; ok {
				continue
			}
		}
		if ref.Ref.Kind == model.RefPath {
			if _, ok := f.nodePositions[ref.Ref.Path.String()]; ok {
				continue
			}
		}
		f.analysisDiags = append(f.analysisDiags, diagnostics.Diagnostic{
			Code: diagnostics.UnresolvedReference, Range: ref.Range, File: f.path,
			Message: "unresolved reference: " + ref.Ref.String(),
		})
	}
}

// propagateErrorsInInclude emits one ErrorsInInclude diagnostic per
// include edge whose target closure carries at least one Error-
// severity diagnostic, recomputed on every Analyze call (DESIGN.md
// Open-Question decision 1).
func (p *Project) propagateErrorsInInclude(order []string) {
	hasErrors := map[string]bool{}
	for _, fp := range order {
		p.mu.RLock()
		f := p.files[fp]
		p.mu.RUnlock()
		if f == nil {
			continue
		}
		f.mu.RLock()
		for _, d := range f.syntaxDiagnostics {
			if p.sm.Severity(d.Code) == diagnostics.Error {
				hasErrors[fp] = true
			}
		}
		for _, d := range f.analysisDiags {
			if p.sm.Severity(d.Code) == diagnostics.Error {
				hasErrors[fp] = true
			}
		}
		f.mu.RUnlock()
	}

	for _, fp := range order {
		p.mu.RLock()
		f := p.files[fp]
		p.mu.RUnlock()
		if f == nil {
			continue
		}
		f.mu.RLock()
		edges := append([]includeEdge(nil), f.includeTargets...)
		f.mu.RUnlock()

		var extra []diagnostics.Diagnostic
		for _, e := range edges {
			resolved := p.resolveIncludePath(fp, e.target)
			if hasErrors[resolved] {
				extra = append(extra, diagnostics.Diagnostic{
					Code: diagnostics.ErrorsInInclude, Range: e.rng, File: fp,
					Message: "included file has errors: " + e.target,
				})
			}
		}
		if len(extra) > 0 {
			f.mu.Lock()
			f.analysisDiags = append(f.analysisDiags, extra...)
			f.mu.Unlock()
			// order lists dependencies first, so marking fp here lets its
			// includers see errors anywhere in fp's include closure.
			if p.sm.Severity(diagnostics.ErrorsInInclude) == diagnostics.Error {
				hasErrors[fp] = true
			}
		}
	}
}

// RemoveFile drops a file from the project.
func (p *Project) RemoveFile(filePath string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.files, filePath)
}

// GetFile returns the tracked file, or nil if not present.
func (p *Project) GetFile(filePath string) *ProjectFile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.files[filePath]
}

// GetDiagnostics returns filePath's diagnostics, sorted, or nil if the
// file is not tracked.
func (p *Project) GetDiagnostics(filePath string) []diagnostics.Diagnostic {
	f := p.GetFile(filePath)
	if f == nil {
		return nil
	}
	return f.Diagnostics()
}

// SeverityMap returns the project's diagnostic severity table.
func (p *Project) SeverityMap() diagnostics.SeverityMap {
	return p.sm
}

// ItemAtCursor describes whatever syntax element sits at a byte
// offset, for hover/definition support.
type ItemAtCursor struct {
	Node      *syntax.Node
	Reference *model.Reference
}

// FindAtPos returns the CST node at byte offset pos within filePath,
// plus a parsed Reference if that node resolves to one.
func (p *Project) FindAtPos(filePath string, pos int) (ItemAtCursor, bool) {
	f := p.GetFile(filePath)
	if f == nil {
		return ItemAtCursor{}, false
	}
	root := f.CST()
	if root == nil {
		return ItemAtCursor{}, false
	}
	n := root.TokenAtOffset(pos)
	if n == nil {
		return ItemAtCursor{}, false
	}
	item := ItemAtCursor{Node: n}
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Kind == syntax.REFERENCE {
			ref, _ := ast.CastReference(cur)
			var mr model.Reference
			if label, ok := ref.Label(); ok {
				mr = model.Reference{Kind: model.RefLabel, Label: label}
			} else if pathNode, ok := ref.PathNode(); ok {
				var mp model.Path
				for _, seg := range ast.PathSegments(pathNode) {
					na, _ := ast.CastName(seg)
					mp = mp.Append(model.ParseNodeName(na.Text()))
				}
				mr = model.Reference{Kind: model.RefPath, Path: mp}
			}
			item.Reference = &mr
			break
		}
	}
	return item, true
}

// GetNodePosition resolves ref (as seen within filePath) to the file
// and byte range where the target node is declared.
func (p *Project) GetNodePosition(filePath string, ref model.Reference) (string, diagnostics.Range, bool) {
	f := p.GetFile(filePath)
	if f == nil {
		return "", diagnostics.Range{}, false
	}
	labels := f.Labels()
	if ref.Kind == model.RefLabel {
		entry, ok := labels[ref.Label]
		if !ok {
			return "", diagnostics.Range{}, false
		}
		return entry.DefiningFile, entry.DefiningRange, true
	}

	key := ref.Path.String()
	f.mu.RLock()
	rng, ok := f.nodePositions[key]
	f.mu.RUnlock()
	if ok {
		return filePath, rng, true
	}
	return "", diagnostics.Range{}, false
}

// DocumentReference renders a short human-readable description of what
// ref points to, for hover text.
func (p *Project) DocumentReference(filePath string, ref model.Reference) (string, bool) {
	file, rng, ok := p.GetNodePosition(filePath, ref)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%s defined in %s at byte %d", ref.String(), file, rng.Start), true
}
