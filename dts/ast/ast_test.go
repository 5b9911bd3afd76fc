package ast

import (
	"testing"

	"github.com/dhamidi/ginko/dts/syntax"
)

func parse(t *testing.T, src string) File {
	t.Helper()
	root, diags := syntax.ParseFile(src, "test.dts")
	if len(diags) != 0 {
		t.Fatalf("unexpected parse diagnostics: %v", diags)
	}
	f, ok := CastFile(root)
	if !ok {
		t.Fatalf("ParseFile did not produce a FILE root")
	}
	return f
}

func TestHeaderIsPlugin(t *testing.T) {
	f := parse(t, "/dts-v1/; /plugin/;")
	var header Header
	found := false
	for _, p := range f.Primaries() {
		if h, ok := CastHeader(p); ok {
			header, found = h, true
		}
	}
	if !found {
		t.Fatalf("no HEADER primary found")
	}
	if !header.IsPlugin() {
		t.Fatalf("IsPlugin() = false, want true")
	}
}

func TestHeaderWithoutPluginIsNotPlugin(t *testing.T) {
	f := parse(t, "/dts-v1/;")
	header, ok := CastHeader(f.Primaries()[0])
	if !ok {
		t.Fatalf("first primary is not a HEADER")
	}
	if header.IsPlugin() {
		t.Fatalf("IsPlugin() = true, want false")
	}
}

func TestIncludeFilePath(t *testing.T) {
	f := parse(t, `/include/ "common.dtsi"`)
	inc, ok := CastIncludeFile(f.Primaries()[0])
	if !ok {
		t.Fatalf("first primary is not INCLUDE_FILE")
	}
	path, ok := inc.Path()
	if !ok || path != "common.dtsi" {
		t.Fatalf("Path() = (%q, %v), want (common.dtsi, true)", path, ok)
	}
}

func TestDtsNodeLabelNameAndBody(t *testing.T) {
	f := parse(t, `/dts-v1/;
/ {
	l1: foo {
		status = "okay";
	};
};`)
	root, ok := CastNode(f.Primaries()[1])
	if !ok {
		t.Fatalf("second primary is not a NODE")
	}
	node, ok := CastNode(root.Body()[0])
	if !ok {
		t.Fatalf("first item of the root body is not a NODE")
	}
	lbl, ok := node.Label()
	if !ok || lbl.Ident() != "l1" {
		t.Fatalf("Label() = (%v, %v), want (l1, true)", lbl.Ident(), ok)
	}
	name, ok := node.Name()
	if !ok || name.Text() != "foo" {
		t.Fatalf("Name() = (%q, %v), want (foo, true)", name.Text(), ok)
	}
	body := node.Body()
	if len(body) != 1 {
		t.Fatalf("Body() = %d items, want 1", len(body))
	}
	prop, ok := CastProperty(body[0])
	if !ok {
		t.Fatalf("body item is not a PROPERTY")
	}
	if prop.IsFlag() {
		t.Fatalf("IsFlag() = true, want false (status has a value)")
	}
	if len(prop.Values()) != 1 {
		t.Fatalf("Values() = %d, want 1", len(prop.Values()))
	}
}

func TestPropertyFlagHasNoValues(t *testing.T) {
	f := parse(t, `/dts-v1/;
/ {
	disabled;
};`)
	node, _ := CastNode(f.Primaries()[1])
	body := node.Body()
	prop, ok := CastProperty(body[0])
	if !ok {
		t.Fatalf("body item is not a PROPERTY")
	}
	if !prop.IsFlag() {
		t.Fatalf("IsFlag() = false, want true")
	}
	if len(prop.Values()) != 0 {
		t.Fatalf("Values() = %v, want none", prop.Values())
	}
}

func TestReferenceLabelForm(t *testing.T) {
	f := parse(t, `/dts-v1/;
&uart0 {
	status = "okay";
};`)
	node, ok := CastNode(f.Primaries()[1])
	if !ok {
		t.Fatalf("second primary is not a NODE")
	}
	ref, ok := node.Reference()
	if !ok {
		t.Fatalf("Reference() missing")
	}
	label, ok := ref.Label()
	if !ok || label != "uart0" {
		t.Fatalf("Label() = (%q, %v), want (uart0, true)", label, ok)
	}
}
