package model

import "testing"

func TestParseNodeName(t *testing.T) {
	cases := map[string]NodeName{
		"foo":      {Ident: "foo"},
		"foo@1000": {Ident: "foo", Address: "1000"},
	}
	for text, want := range cases {
		if got := ParseNodeName(text); got != want {
			t.Errorf("ParseNodeName(%q) = %+v, want %+v", text, got, want)
		}
	}
}

func TestPathString(t *testing.T) {
	var root Path
	if root.String() != "/" {
		t.Errorf("empty Path.String() = %q, want /", root.String())
	}
	p := root.Append(NodeName{Ident: "soc"}).Append(NodeName{Ident: "uart", Address: "1000"})
	if got, want := p.String(), "/soc/uart@1000"; got != want {
		t.Errorf("Path.String() = %q, want %q", got, want)
	}
}

func TestReferenceString(t *testing.T) {
	labelRef := Reference{Kind: RefLabel, Label: "uart0"}
	if got, want := labelRef.String(), "&uart0"; got != want {
		t.Errorf("label reference String() = %q, want %q", got, want)
	}
	pathRef := Reference{Kind: RefPath, Path: Path{{Ident: "soc"}, {Ident: "uart"}}}
	if got, want := pathRef.String(), "&{/soc/uart}"; got != want {
		t.Errorf("path reference String() = %q, want %q", got, want)
	}
}

func TestNodeMergeOverwritesPropertiesAndMergesChildren(t *testing.T) {
	base := NewNode()
	base.SetProperty("status", []Value{{Kind: ValueString, Str: "disabled"}})
	base.GetOrCreateChild("child").SetProperty("a", []Value{{Kind: ValueString, Str: "1"}})

	other := NewNode()
	other.SetProperty("status", []Value{{Kind: ValueString, Str: "okay"}})
	other.GetOrCreateChild("child").SetProperty("b", []Value{{Kind: ValueString, Str: "2"}})
	other.GetOrCreateChild("sibling")

	base.Merge(other)

	if got := base.Properties["status"][0].Str; got != "okay" {
		t.Errorf("status = %q, want okay (last-write-wins)", got)
	}
	child := base.Children["child"]
	if _, ok := child.Properties["a"]; !ok {
		t.Errorf("child lost property a after merge")
	}
	if _, ok := child.Properties["b"]; !ok {
		t.Errorf("child missing merged property b")
	}
	if _, ok := base.Children["sibling"]; !ok {
		t.Errorf("merge did not add new sibling child")
	}
}

func TestNodeSetPropertyTracksInsertionOrderOnce(t *testing.T) {
	n := NewNode()
	n.SetProperty("a", []Value{{Kind: ValueString, Str: "1"}})
	n.SetProperty("b", []Value{{Kind: ValueString, Str: "2"}})
	n.SetProperty("a", []Value{{Kind: ValueString, Str: "3"}})

	if got, want := n.PropOrder, []string{"a", "b"}; len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("PropOrder = %v, want %v", got, want)
	}
	if got := n.Properties["a"][0].Str; got != "3" {
		t.Errorf("a = %q, want 3 (overwritten)", got)
	}
}

func TestWidthBitSize(t *testing.T) {
	cases := map[Width]int{U8: 8, U16: 16, U32: 32, U64: 64}
	for w, want := range cases {
		if got := w.BitSize(); got != want {
			t.Errorf("%v.BitSize() = %d, want %d", w, got, want)
		}
	}
}
