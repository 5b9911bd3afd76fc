// Package lineindex converts between the byte offsets diagnostics.Range
// carries and the line/UTF-16-character positions the LSP protocol
// requires, per spec.md §6's LSP surface. Grounded on
// kpumuk-thrift-weaver/internal/text's LineIndex, adapted from its
// distinct ByteOffset/Point types to plain ints matching
// dts/diagnostics.Range, and with the byte-column OffsetToPoint/
// PointToOffset pair dropped (nothing in this repo's CLI or LSP surface
// needs byte columns; only the UTF-16 LSP conversion is exercised).
package lineindex

import (
	"errors"
	"fmt"
	"slices"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/dhamidi/ginko/dts/diagnostics"
)

// Position is an LSP-facing UTF-16 line/character pair, both 0-based.
type Position struct {
	Line      int
	Character int
}

// LSPRange is an LSP-facing range expressed in UTF-16 positions.
type LSPRange struct {
	Start Position
	End   Position
}

var (
	ErrOutOfRange         = errors.New("lineindex: offset or position out of range")
	ErrInvalidUTF8        = errors.New("lineindex: invalid UTF-8 sequence")
	ErrSplitSurrogatePair = errors.New("lineindex: UTF-16 position splits a surrogate pair")
)

// Index maps byte offsets into src to 0-based line/UTF-16-character
// positions and back.
type Index struct {
	src        []byte
	lineStarts []int
}

// New builds an Index over src.
func New(src []byte) *Index {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Index{src: src, lineStarts: starts}
}

// LineCount returns the number of logical lines in the source.
func (ix *Index) LineCount() int {
	return len(ix.lineStarts)
}

// OffsetToPosition converts a byte offset to an LSP UTF-16 position.
func (ix *Index) OffsetToPosition(offset int) (Position, error) {
	if offset < 0 || offset > len(ix.src) {
		return Position{}, fmt.Errorf("%w: %d", ErrOutOfRange, offset)
	}
	line := ix.lineForOffset(offset)
	start, nextStart, contentEnd := ix.lineBounds(line)
	if offset > contentEnd && offset < nextStart {
		offset = contentEnd
	}
	char, err := utf16Units(ix.src[start:offset])
	if err != nil {
		return Position{}, err
	}
	return Position{Line: line, Character: char}, nil
}

// PositionToOffset converts an LSP UTF-16 position to a byte offset.
func (ix *Index) PositionToOffset(pos Position) (int, error) {
	if pos.Line < 0 || pos.Line >= ix.LineCount() {
		return 0, fmt.Errorf("%w: line %d", ErrOutOfRange, pos.Line)
	}
	if pos.Character < 0 {
		return 0, fmt.Errorf("%w: character %d", ErrOutOfRange, pos.Character)
	}
	start, _, contentEnd := ix.lineBounds(pos.Line)
	rel, err := utf16UnitsToByteOffset(ix.src[start:contentEnd], pos.Character)
	if err != nil {
		return 0, err
	}
	return start + rel, nil
}

// RangeToLSP converts a byte-offset diagnostics.Range to an LSP range.
func (ix *Index) RangeToLSP(r diagnostics.Range) (LSPRange, error) {
	start, err := ix.OffsetToPosition(r.Start)
	if err != nil {
		return LSPRange{}, err
	}
	end, err := ix.OffsetToPosition(r.End)
	if err != nil {
		return LSPRange{}, err
	}
	return LSPRange{Start: start, End: end}, nil
}

func (ix *Index) lineForOffset(off int) int {
	i, found := slices.BinarySearch(ix.lineStarts, off)
	if found {
		return i
	}
	return i - 1
}

func (ix *Index) lineBounds(line int) (start, nextStart, contentEnd int) {
	start = ix.lineStarts[line]
	if line+1 < len(ix.lineStarts) {
		nextStart = ix.lineStarts[line+1]
	} else {
		nextStart = len(ix.src)
	}
	contentEnd = nextStart
	if contentEnd > start && ix.src[contentEnd-1] == '\n' {
		contentEnd--
		if contentEnd > start && ix.src[contentEnd-1] == '\r' {
			contentEnd--
		}
	}
	return start, nextStart, contentEnd
}

func utf16Units(b []byte) (int, error) {
	units := 0
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			return 0, ErrInvalidUTF8
		}
		units += utf16RuneUnits(r)
		b = b[size:]
	}
	return units, nil
}

func utf16UnitsToByteOffset(line []byte, wantUnits int) (int, error) {
	units := 0
	i := 0
	for i < len(line) {
		if units == wantUnits {
			return i, nil
		}
		r, size := utf8.DecodeRune(line[i:])
		if r == utf8.RuneError && size == 1 {
			return 0, ErrInvalidUTF8
		}
		rUnits := utf16RuneUnits(r)
		if wantUnits > units && wantUnits < units+rUnits {
			return 0, ErrSplitSurrogatePair
		}
		units += rUnits
		i += size
	}
	if units == wantUnits {
		return i, nil
	}
	return 0, fmt.Errorf("%w: character %d > %d", ErrOutOfRange, wantUnits, units)
}

func utf16RuneUnits(r rune) int {
	if utf16.IsSurrogate(r) {
		return 1
	}
	if r <= 0xFFFF {
		return 1
	}
	return 2
}
