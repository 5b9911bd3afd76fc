package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/ginko/dts/diagnostics"
	"github.com/dhamidi/ginko/dts/lineindex"
)

// printDiagnostics renders each diagnostic as a source-line excerpt with
// a caret underline, grounded on
// original_source/ginko/src/dts/diagnostics.rs's DiagnosticPrinter
// (`error --> file:line:col`, a blank gutter line, the offending source
// line, then a caret run under the span).
func printDiagnostics(w io.Writer, source string, diags []diagnostics.Diagnostic, sm diagnostics.SeverityMap) {
	lines := strings.Split(source, "\n")
	ix := lineindex.New([]byte(source))

	for _, d := range diags {
		printOne(w, lines, ix, d, sm)
		fmt.Fprintln(w)
	}
}

func printOne(w io.Writer, lines []string, ix *lineindex.Index, d diagnostics.Diagnostic, sm diagnostics.SeverityMap) {
	start, err := ix.OffsetToPosition(d.Range.Start)
	if err != nil {
		fmt.Fprintf(w, "%s: %s: %s\n", sm.Severity(d.Code), d.Code, d.Message)
		return
	}
	end, endErr := ix.OffsetToPosition(d.Range.End)
	if endErr != nil {
		end = start
	}

	line := ""
	if start.Line < len(lines) {
		line = lines[start.Line]
	}
	prefix := fmt.Sprintf("%d", start.Line+1)
	gutter := strings.Repeat(" ", len(prefix))

	fmt.Fprintf(w, "%s --> %s:%d:%d\n", sm.Severity(d.Code), d.File, start.Line+1, start.Character+1)
	fmt.Fprintf(w, "%s |\n", gutter)
	fmt.Fprintf(w, "%s | %s\n", prefix, line)

	caretLen := 1
	if end.Line == start.Line && end.Character > start.Character {
		caretLen = end.Character - start.Character
	}
	indent := indentFor(line, start.Character)
	fmt.Fprintf(w, "%s | %s%s %s", gutter, indent, strings.Repeat("^", caretLen), d.Message)
	for _, rel := range d.Related {
		fmt.Fprintf(w, "\n%s   %s:%d: %s", gutter, rel.File, rel.Range.Start, rel.Message)
	}
	fmt.Fprintln(w)
}

// indentFor reproduces a line's leading whitespace up to col, collapsing
// non-whitespace runes to spaces so tabs in the source line up with tabs
// in the caret line.
func indentFor(line string, col int) string {
	var b strings.Builder
	for i, r := range line {
		if i >= col {
			break
		}
		if r == '\t' {
			b.WriteRune('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
