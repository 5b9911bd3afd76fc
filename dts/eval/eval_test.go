package eval

import (
	"testing"

	"github.com/dhamidi/ginko/dts/syntax"
)

func exprNode(t *testing.T, src string) *syntax.Node {
	t.Helper()
	root, diags := syntax.ParseFile(`/ { a = <(`+src+`)>; };`, "t.dts")
	for _, d := range diags {
		t.Fatalf("unexpected diagnostic: %v", d)
	}
	var found *syntax.Node
	root.Walk(func(ev syntax.WalkEvent, n *syntax.Node) {
		if ev == syntax.Enter && n.Kind == syntax.CELL_INNER && found == nil {
			for _, c := range n.NonTrivia() {
				found = c
			}
		}
	})
	if found == nil {
		t.Fatalf("no cell inner expression found in %q", src)
	}
	return found
}

func TestEvalArithmeticWrapping(t *testing.T) {
	cases := []struct {
		expr string
		want uint64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"1 << 8 | 0x0F", 0x10F},
		{"10 % 3", 1},
		{"~0", 0xFFFFFFFF},
		{"-1", 0xFFFFFFFF},
		{"!0", 1},
		{"!5", 0},
	}
	for _, c := range cases {
		t.Run(c.expr, func(t *testing.T) {
			n := exprNode(t, c.expr)
			got, err := Eval(n, 32)
			if err != nil {
				t.Fatalf("eval error: %v", err)
			}
			if got != c.want {
				t.Errorf("Eval(%q) = %#x, want %#x", c.expr, got, c.want)
			}
		})
	}
}

func TestEvalDivideByZero(t *testing.T) {
	n := exprNode(t, "1 / 0")
	_, err := Eval(n, 32)
	if err == nil || err.Cause != CauseDivideByZero {
		t.Fatalf("got %v, want DivideByZero", err)
	}
}

func TestEvalWrappingAddOverflow(t *testing.T) {
	n := exprNode(t, "0xFFFFFFFF + 1")
	got, err := Eval(n, 32)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if got != 0 {
		t.Fatalf("got %#x, want 0 (wrapped)", got)
	}
}

func TestEvalParenAsCellTruncationWarning(t *testing.T) {
	root, diags := syntax.ParseFile(`/ { a = <(0xFFFFFFFF00000001)>; };`, "t.dts")
	for _, d := range diags {
		t.Fatalf("unexpected diagnostic: %v", d)
	}
	var paren *syntax.Node
	root.Walk(func(ev syntax.WalkEvent, n *syntax.Node) {
		if ev == syntax.Enter && n.Kind == syntax.PAREN_EXPRESSION {
			paren = n
		}
	})
	if paren == nil {
		t.Fatalf("no paren expression found")
	}
	_, truncated, err := EvalParenAsCell(paren)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if !truncated {
		t.Fatalf("expected truncation warning")
	}
}
