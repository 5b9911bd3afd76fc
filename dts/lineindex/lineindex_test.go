package lineindex

import (
	"testing"

	"github.com/dhamidi/ginko/dts/diagnostics"
)

func TestOffsetToPositionLF(t *testing.T) {
	src := []byte("ab\ncd")
	ix := New(src)

	if got := ix.LineCount(); got != 2 {
		t.Fatalf("LineCount() = %d, want 2", got)
	}

	cases := map[int]Position{
		0: {Line: 0, Character: 0},
		2: {Line: 0, Character: 2},
		3: {Line: 1, Character: 0},
		5: {Line: 1, Character: 2},
	}
	for offset, want := range cases {
		got, err := ix.OffsetToPosition(offset)
		if err != nil {
			t.Fatalf("OffsetToPosition(%d) error = %v", offset, err)
		}
		if got != want {
			t.Fatalf("OffsetToPosition(%d) = %+v, want %+v", offset, got, want)
		}
		roundTrip, err := ix.PositionToOffset(got)
		if err != nil {
			t.Fatalf("PositionToOffset(%+v) error = %v", got, err)
		}
		if roundTrip != offset {
			t.Fatalf("PositionToOffset(OffsetToPosition(%d)) = %d, want %d", offset, roundTrip, offset)
		}
	}
}

func TestOffsetToPositionCRLF(t *testing.T) {
	src := []byte("a\r\nb\n\nc")
	ix := New(src)

	if got := ix.LineCount(); got != 4 {
		t.Fatalf("LineCount() = %d, want 4", got)
	}

	cases := []struct {
		offset int
		want   Position
	}{
		{0, Position{Line: 0, Character: 0}},
		{3, Position{Line: 1, Character: 0}},
		{5, Position{Line: 2, Character: 0}},
		{6, Position{Line: 3, Character: 0}},
		{7, Position{Line: 3, Character: 1}},
	}
	for _, tc := range cases {
		got, err := ix.OffsetToPosition(tc.offset)
		if err != nil {
			t.Fatalf("OffsetToPosition(%d) error = %v", tc.offset, err)
		}
		if got != tc.want {
			t.Fatalf("OffsetToPosition(%d) = %+v, want %+v", tc.offset, got, tc.want)
		}
	}
}

func TestOffsetToPositionMultiByteRune(t *testing.T) {
	// "é" is 2 UTF-8 bytes but 1 UTF-16 unit; "𝔘" is 4 UTF-8 bytes but a
	// surrogate pair (2 UTF-16 units).
	src := []byte("é𝔘x")
	ix := New(src)

	got, err := ix.OffsetToPosition(len(src))
	if err != nil {
		t.Fatalf("OffsetToPosition error = %v", err)
	}
	want := Position{Line: 0, Character: 1 + 2 + 1}
	if got != want {
		t.Fatalf("OffsetToPosition(end) = %+v, want %+v", got, want)
	}
}

func TestPositionToOffsetSplitSurrogate(t *testing.T) {
	src := []byte("𝔘")
	ix := New(src)
	_, err := ix.PositionToOffset(Position{Line: 0, Character: 1})
	if err == nil {
		t.Fatalf("expected an error splitting a surrogate pair")
	}
}

func TestRangeToLSP(t *testing.T) {
	src := []byte("ab\ncd")
	ix := New(src)
	got, err := ix.RangeToLSP(diagnostics.Range{Start: 3, End: 5})
	if err != nil {
		t.Fatalf("RangeToLSP error = %v", err)
	}
	want := LSPRange{Start: Position{Line: 1, Character: 0}, End: Position{Line: 1, Character: 2}}
	if got != want {
		t.Fatalf("RangeToLSP = %+v, want %+v", got, want)
	}
}

func TestOffsetToPositionOutOfRange(t *testing.T) {
	ix := New([]byte("abc"))
	if _, err := ix.OffsetToPosition(-1); err == nil {
		t.Fatalf("expected an error for a negative offset")
	}
	if _, err := ix.OffsetToPosition(100); err == nil {
		t.Fatalf("expected an error for an offset past the end")
	}
}
