package syntax

import "github.com/dhamidi/ginko/dts/diagnostics"

// Token is a tagged lexeme: {kind, text, range}, per spec.md §3.
type Token struct {
	Kind  Kind
	Text  string
	Range diagnostics.Range
}
