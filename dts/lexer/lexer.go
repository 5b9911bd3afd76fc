// Package lexer converts DTS source bytes into a lossless stream of
// syntax.Token. The scanner loop (peek/advance/Position) is grounded on
// _examples/dhamidi-sai/java/parser/lexer.go; unlike that lexer — which
// drops whitespace and comments — trivia here is always emitted as a
// token, per spec.md §4.1 and the lossless invariant in §3.
package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/dhamidi/ginko/dts/diagnostics"
	"github.com/dhamidi/ginko/dts/syntax"
)

// Lexer scans a byte slice into tokens.
type Lexer struct {
	input []byte
	pos   int
}

// New creates a Lexer over text.
func New(text string) *Lexer {
	return &Lexer{input: []byte(text)}
}

// Lex tokenizes text in full. Infallible: unrecognized bytes become
// single-byte ERROR tokens (spec.md §4.1).
func Lex(text string) []syntax.Token {
	l := New(text)
	var tokens []syntax.Token
	for {
		tok, ok := l.Next()
		if !ok {
			break
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func (l *Lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) peekByte(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

// Next returns the next token and true, or (zero, false) at EOF.
func (l *Lexer) Next() (syntax.Token, bool) {
	if l.eof() {
		return syntax.Token{}, false
	}

	start := l.pos
	c := l.input[l.pos]

	switch {
	case isSpace(c):
		for !l.eof() && isSpace(l.input[l.pos]) {
			l.pos++
		}
		return l.token(syntax.WHITESPACE, start), true

	case c == '/' && l.peekByte(1) == '/':
		for !l.eof() && l.input[l.pos] != '\n' {
			l.pos++
		}
		return l.token(syntax.LINE_COMMENT, start), true

	case c == '/' && l.peekByte(1) == '*':
		l.pos += 2
		for !l.eof() && !(l.input[l.pos] == '*' && l.peekByte(1) == '/') {
			l.pos++
		}
		if !l.eof() {
			l.pos += 2
		}
		return l.token(syntax.BLOCK_COMMENT, start), true

	case c == '/':
		if kind, length := matchDirective(l.input[l.pos:]); length > 0 {
			l.pos += length
			return l.token(kind, start), true
		}
		l.pos++
		return l.token(syntax.SLASH, start), true

	case c == '"':
		l.scanString()
		return l.token(syntax.STRING, start), true

	case isIdentStart(c):
		for !l.eof() && isIdentCont(l.input[l.pos]) {
			l.pos++
		}
		return l.token(syntax.IDENT, start), true

	case isDigit(c):
		for !l.eof() && isAlnum(l.input[l.pos]) {
			l.pos++
		}
		return l.token(syntax.NUMBER, start), true
	}

	if kind, length := matchOperator(l.input[l.pos:]); length > 0 {
		l.pos += length
		return l.token(kind, start), true
	}

	// Unrecognized byte: consume one UTF-8 rune's worth of bytes as ERROR,
	// but never fewer than one byte, per spec.md "len == 1" only applies
	// to genuinely single-byte garbage; multi-byte runes are still
	// reported as a single ERROR token so the round-trip invariant holds.
	_, size := utf8.DecodeRune(l.input[l.pos:])
	if size == 0 {
		size = 1
	}
	l.pos += size
	return l.token(syntax.ERROR, start), true
}

func (l *Lexer) scanString() {
	l.pos++ // opening quote
	for !l.eof() {
		c := l.input[l.pos]
		if c == '\\' {
			l.pos++
			if !l.eof() {
				l.pos++
			}
			continue
		}
		if c == '"' {
			l.pos++
			return
		}
		l.pos++
	}
	// Unclosed string: consumes to EOF, matching spec.md §4.1.
}

func (l *Lexer) token(kind syntax.Kind, start int) syntax.Token {
	text := string(l.input[start:l.pos])
	return syntax.Token{Kind: kind, Text: text, Range: diagnostics.Range{Start: start, End: l.pos}}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// matchDirective tries each slash-led directive keyword longest-first
// against input, which always starts with '/'. Returns (kind, byte length)
// or (0, 0) if none match.
func matchDirective(input []byte) (syntax.Kind, int) {
	var bestKind syntax.Kind
	bestLen := 0
	for lit, kind := range syntax.DirectiveKeywords() {
		if len(lit) > len(input) {
			continue
		}
		if string(input[:len(lit)]) == lit && len(lit) > bestLen {
			bestKind = kind
			bestLen = len(lit)
		}
	}
	return bestKind, bestLen
}

// multiCharOperators lists two-character operators that must be matched
// before their single-character prefixes, per spec.md §4.1.
var multiCharOperators = []struct {
	lit  string
	kind syntax.Kind
}{
	{"!=", syntax.NEQ},
	{"==", syntax.EQEQ},
	{">>", syntax.DOUBLE_R_CHEV},
	{"<<", syntax.DOUBLE_L_CHEV},
	{">=", syntax.GTE},
	{"<=", syntax.LTE},
	{"&&", syntax.DOUBLE_AMP},
	{"||", syntax.DOUBLE_BAR},
}

var singleCharOperators = map[byte]syntax.Kind{
	'(': syntax.L_PAR,
	')': syntax.R_PAR,
	'{': syntax.L_BRACE,
	'}': syntax.R_BRACE,
	'[': syntax.L_BRAK,
	']': syntax.R_BRAK,
	'<': syntax.L_CHEV,
	'>': syntax.R_CHEV,
	'-': syntax.MINUS,
	'+': syntax.PLUS,
	'*': syntax.STAR,
	'%': syntax.PERCENT,
	'~': syntax.TILDE,
	'!': syntax.EXCLAMATION,
	'&': syntax.AMP,
	'|': syntax.BAR,
	'^': syntax.CIRC,
	'=': syntax.EQ,
	'?': syntax.QUESTION_MARK,
	':': syntax.COLON,
	';': syntax.SEMICOLON,
	',': syntax.COMMA,
	'.': syntax.DOT,
	'_': syntax.UNDERSCORE,
	'#': syntax.POUND,
	'@': syntax.AT,
}

func matchOperator(input []byte) (syntax.Kind, int) {
	for _, op := range multiCharOperators {
		if len(input) >= 2 && string(input[:2]) == op.lit {
			return op.kind, 2
		}
	}
	if kind, ok := singleCharOperators[input[0]]; ok {
		return kind, 1
	}
	return 0, 0
}

// ClassifyNumber reports the radix of a NUMBER token's text, used by
// dts/eval. Exposed here because it is purely lexical: "0x..." hex,
// leading-zero octal, else decimal, matching
// original_source/ginko/src/dts/eval/expression.rs's int_eval! macro.
func ClassifyNumber(text string) (radix int, digits string) {
	if text == "0" {
		return 10, "0"
	}
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		return 16, text[2:]
	}
	if strings.HasPrefix(text, "0") {
		return 8, text[1:]
	}
	return 10, text
}
