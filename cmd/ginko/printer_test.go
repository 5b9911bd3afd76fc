package main

import (
	"strings"
	"testing"

	"github.com/dhamidi/ginko/dts/diagnostics"
)

func TestPrintDiagnosticsRendersCaretUnderline(t *testing.T) {
	source := "/dts-v1/;\nfoo = <1>;\n"
	d := diagnostics.Diagnostic{
		Code:    diagnostics.IllegalChar,
		Range:   diagnostics.Range{Start: 10, End: 13},
		File:    "test.dts",
		Message: "illegal character",
	}
	sm := diagnostics.DefaultSeverityMap()

	var buf strings.Builder
	printDiagnostics(&buf, source, []diagnostics.Diagnostic{d}, sm)
	out := buf.String()

	if !strings.Contains(out, "error --> test.dts:2:1") {
		t.Fatalf("missing header line, got:\n%s", out)
	}
	if !strings.Contains(out, "2 | foo = <1>;") {
		t.Fatalf("missing source line, got:\n%s", out)
	}
	if !strings.Contains(out, "^^^ illegal character") {
		t.Fatalf("missing caret underline, got:\n%s", out)
	}
}

func TestPrintDiagnosticsIncludesRelated(t *testing.T) {
	source := "a: node { };\n"
	d := diagnostics.Diagnostic{
		Code:    diagnostics.DuplicateLabel,
		Range:   diagnostics.Range{Start: 0, End: 1},
		File:    "test.dts",
		Message: "duplicate label a",
	}
	d = d.WithRelated("other.dts", diagnostics.Range{Start: 5, End: 6}, "first defined here")
	sm := diagnostics.DefaultSeverityMap()

	var buf strings.Builder
	printDiagnostics(&buf, source, []diagnostics.Diagnostic{d}, sm)
	out := buf.String()

	if !strings.Contains(out, "other.dts:") || !strings.Contains(out, "first defined here") {
		t.Fatalf("missing related info, got:\n%s", out)
	}
}

func TestIndentForPreservesTabs(t *testing.T) {
	got := indentFor("\tfoo = <1>;", 2)
	want := "\t "
	if got != want {
		t.Fatalf("indentFor = %q, want %q", got, want)
	}
}
