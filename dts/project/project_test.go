package project

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dhamidi/ginko/dts/analysis"
	"github.com/dhamidi/ginko/dts/diagnostics"
	"github.com/dhamidi/ginko/dts/model"
)

// memIO is an in-memory IOPort, grounded on the original's in-process
// project tests (project.rs's multi_includes/cyclic_includes add files
// directly rather than touching a real filesystem).
type memIO struct {
	files map[string]string
}

func newMemIO(files map[string]string) *memIO {
	return &memIO{files: files}
}

func (m *memIO) ReadToString(path string) (string, error) {
	if text, ok := m.files[path]; ok {
		return text, nil
	}
	return "", fmt.Errorf("file not found: %s", path)
}

func hasCode(diags []diagnostics.Diagnostic, code diagnostics.Code) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestMultiIncludes(t *testing.T) {
	io := newMemIO(map[string]string{
		"file2.dts": `/include/ "file3.dts"`,
		"file3.dts": ``,
		"file1.dts": "/dts-v1/;\n/include/ \"file2.dts\"",
	})
	p := New(io, nil)
	if err := p.AddFileFromFS("file1.dts"); err != nil {
		t.Fatalf("add file1: %v", err)
	}

	f1 := p.GetFile("file1.dts")
	if f1 == nil {
		t.Fatalf("file1.dts not tracked")
	}
	if diags := f1.Diagnostics(); len(diags) != 0 {
		t.Fatalf("file1 diagnostics = %v, want none", diags)
	}
	if f1.FileType() != analysis.Source {
		t.Fatalf("file1 type = %v, want Source", f1.FileType())
	}

	f2 := p.GetFile("file2.dts")
	if f2 == nil {
		t.Fatalf("file2.dts not tracked")
	}
	if diags := f2.Diagnostics(); len(diags) != 0 {
		t.Fatalf("file2 diagnostics = %v, want none", diags)
	}
	if f2.FileType() != analysis.Include {
		t.Fatalf("file2 type = %v, want Include (promoted by being included)", f2.FileType())
	}

	f3 := p.GetFile("file3.dts")
	if f3 == nil {
		t.Fatalf("file3.dts not tracked")
	}
	if f3.FileType() != analysis.Include {
		t.Fatalf("file3 type = %v, want Include", f3.FileType())
	}
}

func TestCyclicIncludes(t *testing.T) {
	io := newMemIO(map[string]string{
		"file2.dts": `/include/ "file3.dts"`,
		"file3.dts": `/include/ "file1.dts"`,
		"file1.dts": "/dts-v1/;\n/include/ \"file2.dts\"",
	})
	p := New(io, nil)
	if err := p.AddFileFromFS("file1.dts"); err != nil {
		t.Fatalf("add file1: %v", err)
	}

	f3 := p.GetFile("file3.dts")
	if f3 == nil {
		t.Fatalf("file3.dts not tracked")
	}
	diags := f3.Diagnostics()
	var cyc *diagnostics.Diagnostic
	for i := range diags {
		if diags[i].Code == diagnostics.CyclicDependencyError {
			cyc = &diags[i]
		}
	}
	if cyc == nil {
		t.Fatalf("file3 diagnostics = %v, want a CyclicDependencyError", diags)
	}
	if !strings.Contains(cyc.Message, "file1.dts -> file2.dts -> file3.dts -> file1.dts") {
		t.Fatalf("cycle message = %q, want it to contain the entry-rooted cycle", cyc.Message)
	}
}

func TestSimpleSourceNoDiagnostics(t *testing.T) {
	io := newMemIO(map[string]string{
		"a.dts": "/dts-v1/;\n/ { some_node: n {}; };",
	})
	p := New(io, nil)
	if err := p.AddFileFromFS("a.dts"); err != nil {
		t.Fatalf("add file: %v", err)
	}
	f := p.GetFile("a.dts")
	if diags := f.Diagnostics(); len(diags) != 0 {
		t.Fatalf("diagnostics = %v, want none", diags)
	}
	labels := f.Labels()
	entry, ok := labels["some_node"]
	if !ok {
		t.Fatalf("labels = %v, want some_node", labels)
	}
	if entry.PathInTree.String() != "/n" {
		t.Fatalf("some_node path = %q, want /n", entry.PathInTree.String())
	}
}

func TestNonV1Source(t *testing.T) {
	io := newMemIO(map[string]string{"a.dts": "/ {};"})
	p := New(io, nil)
	if err := p.AddFileFromFS("a.dts"); err != nil {
		t.Fatalf("add file: %v", err)
	}
	diags := p.GetDiagnostics("a.dts")
	if len(diags) != 1 || diags[0].Code != diagnostics.NonDtsV1 {
		t.Fatalf("diagnostics = %v, want exactly one NonDtsV1", diags)
	}
	if diags[0].Range != (diagnostics.Range{Start: 0, End: 0}) {
		t.Fatalf("range = %v, want [0,0]", diags[0].Range)
	}
}

func TestUnresolvedLabel(t *testing.T) {
	io := newMemIO(map[string]string{"a.dts": "/dts-v1/;\n/ { a = &missing; };"})
	p := New(io, nil)
	if err := p.AddFileFromFS("a.dts"); err != nil {
		t.Fatalf("add file: %v", err)
	}
	diags := p.GetDiagnostics("a.dts")
	if !hasCode(diags, diagnostics.UnresolvedReference) {
		t.Fatalf("diagnostics = %v, want UnresolvedReference", diags)
	}
}

func TestPathFormReferenceResolvesToNodePosition(t *testing.T) {
	io := newMemIO(map[string]string{"a.dts": `/dts-v1/;
/ {
	target = &{/foo/bar};
	foo {
		bar {
		};
	};
};`})
	p := New(io, nil)
	if err := p.AddFileFromFS("a.dts"); err != nil {
		t.Fatalf("add file: %v", err)
	}
	diags := p.GetDiagnostics("a.dts")
	if hasCode(diags, diagnostics.UnresolvedReference) {
		t.Fatalf("diagnostics = %v, want no UnresolvedReference for a valid path reference", diags)
	}

	ref := model.Reference{Kind: model.RefPath, Path: model.Path{{Ident: "foo"}, {Ident: "bar"}}}
	file, rng, ok := p.GetNodePosition("a.dts", ref)
	if !ok {
		t.Fatalf("GetNodePosition(%v) = not found, want the /foo/bar declaration", ref)
	}
	if file != "a.dts" {
		t.Fatalf("GetNodePosition file = %q, want a.dts", file)
	}

	root := p.GetFile("a.dts").CST()
	text := root.Text()
	wantStart := strings.Index(text, "bar {")
	if wantStart < 0 {
		t.Fatalf("fixture source does not contain %q", "bar {")
	}
	if rng.Start != wantStart {
		t.Fatalf("range.Start = %d, want %d (start of the bar node's declaration)", rng.Start, wantStart)
	}
}

func TestPathFormReferenceToNonexistentNodeIsUnresolved(t *testing.T) {
	io := newMemIO(map[string]string{"a.dts": `/dts-v1/;
/ {
	target = &{/nonexistent};
};`})
	p := New(io, nil)
	if err := p.AddFileFromFS("a.dts"); err != nil {
		t.Fatalf("add file: %v", err)
	}
	diags := p.GetDiagnostics("a.dts")
	var unresolved []diagnostics.Diagnostic
	for _, d := range diags {
		if d.Code == diagnostics.UnresolvedReference {
			unresolved = append(unresolved, d)
		}
	}
	if len(unresolved) != 1 {
		t.Fatalf("UnresolvedReference diagnostics = %v, want exactly 1", unresolved)
	}
}

func TestByteStringOddLength(t *testing.T) {
	io := newMemIO(map[string]string{"a.dts": "/dts-v1/;\n/ { p = [ABC]; };"})
	p := New(io, nil)
	if err := p.AddFileFromFS("a.dts"); err != nil {
		t.Fatalf("add file: %v", err)
	}
	diags := p.GetDiagnostics("a.dts")
	if !hasCode(diags, diagnostics.OddNumberOfBytestringElements) {
		t.Fatalf("diagnostics = %v, want OddNumberOfBytestringElements", diags)
	}
}

func TestRemoveFile(t *testing.T) {
	io := newMemIO(map[string]string{"a.dts": "/dts-v1/;\n/ {};"})
	p := New(io, nil)
	p.AddFileFromFS("a.dts")
	p.RemoveFile("a.dts")
	if f := p.GetFile("a.dts"); f != nil {
		t.Fatalf("expected file removed, got %v", f)
	}
}
