package syntax

import (
	"testing"
)

func textOf(n *Node) string {
	return n.Text()
}

func TestParseFileRoundTrip(t *testing.T) {
	inputs := []string{
		``,
		"/dts-v1/;\n/ { some_node: n {}; };",
		`/ {};`,
		"/dts-v1/;\n/ { a = &missing; };",
		`a { compatible = "vendor,chip"; reg = <0x10 (1 << 2)>; };`,
		`p = [ABC];`,
		`/include/ "foo.dtsi"`,
		`// trailing comment`,
		`/ { a = <(1 + 2 * 3)>; };`,
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			root, _ := ParseFile(in, "test.dts")
			if root.Kind != FILE {
				t.Fatalf("root kind = %v, want FILE", root.Kind)
			}
			if got := textOf(root); got != in {
				t.Fatalf("round trip mismatch:\ngot:  %q\nwant: %q", got, in)
			}
		})
	}
}

func TestParsePropertyVsNodeDisambiguation(t *testing.T) {
	root, diags := ParseFile(`/ { foo; bar = <1>; baz {}; };`, "t.dts")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	rootNode := root.FirstChildOfKind(NODE)
	if rootNode == nil {
		t.Fatalf("expected root NODE, tree: %s", root.String())
	}
	body := rootNode.FirstChildOfKind(NODE_BODY)
	if body == nil {
		t.Fatalf("expected NODE_BODY")
	}
	var kinds []Kind
	for _, c := range body.NonTrivia() {
		kinds = append(kinds, c.Kind)
	}
	want := []Kind{PROPERTY, PROPERTY, NODE}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("item %d: got %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestParseBinaryExpressionShape(t *testing.T) {
	root, diags := ParseFile(`/ { a = <(1 + 2 * 3)>; };`, "t.dts")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	// 1 + 2 * 3 should associate as 1 + (2 * 3): the outer BINARY's RHS is
	// itself a BINARY, confirming precedence climbing produced the right
	// tree shape rather than flat left-to-right grouping.
	var paren *Node
	root.Walk(func(ev WalkEvent, n *Node) {
		if ev == Enter && n.Kind == PAREN_EXPRESSION {
			paren = n
		}
	})
	if paren == nil {
		t.Fatalf("no PAREN_EXPRESSION found")
	}
	outer := paren.FirstChildOfKind(BINARY)
	if outer == nil {
		t.Fatalf("no outer BINARY, tree:\n%s", paren.String())
	}
	innerBinaries := outer.ChildrenOfKind(BINARY)
	if len(innerBinaries) != 1 {
		t.Fatalf("expected exactly one nested BINARY (the 2*3 term), got %d:\n%s", len(innerBinaries), outer.String())
	}
}

func TestParseUnbalancedParentheses(t *testing.T) {
	_, diags := ParseFile(`/ { a = <(1 + 2>; };`, "t.dts")
	found := false
	for _, d := range diags {
		if d.Code.String() == "UnbalancedParentheses" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected UnbalancedParentheses diagnostic, got %v", diags)
	}
}

func TestParseOddByteString(t *testing.T) {
	_, diags := ParseFile(`/ { p = [ABC]; };`, "t.dts")
	found := false
	for _, d := range diags {
		if d.Code.String() == "OddNumberOfBytestringElements" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected OddNumberOfBytestringElements diagnostic, got %v", diags)
	}
}

func TestParseLabelWithWhitespaceBeforeColon(t *testing.T) {
	root, diags := ParseFile(`/ { foo : bar {}; };`, "t.dts")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	var label *Node
	root.Walk(func(ev WalkEvent, n *Node) {
		if ev == Enter && n.Kind == LABEL {
			label = n
		}
	})
	if label == nil {
		t.Fatalf("expected a LABEL node")
	}
}

func TestParseEmptyInputProducesEmptyFile(t *testing.T) {
	root, diags := ParseFile(``, "t.dts")
	if root.Kind != FILE || len(root.Children) != 0 {
		t.Fatalf("got %s", root.String())
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}
