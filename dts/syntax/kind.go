// Package syntax implements the lossless concrete syntax tree: a closed
// Kind enum shared between tokens and composite nodes (mirroring
// rowan::Language's single-enum design in the original implementation),
// a checkpoint-based tree builder, and the recursive-descent parser that
// drives it.
package syntax

// Kind is the closed set of token and node kinds. The set is taken
// verbatim (renamed to Go convention) from
// original_source/ginko/src/dts/syntax/mod.rs's SyntaxKind enum, which is
// the authoritative grammar for this front-end.
type Kind int

const (
	// Trivia.
	WHITESPACE Kind = iota
	LINE_COMMENT
	BLOCK_COMMENT

	// Punctuation / operators (tokens).
	L_PAR
	R_PAR
	L_BRACE
	R_BRACE
	L_BRAK
	R_BRAK
	L_CHEV
	R_CHEV
	DOUBLE_L_CHEV
	DOUBLE_R_CHEV
	MINUS
	PLUS
	STAR
	SLASH
	PERCENT
	TILDE
	EXCLAMATION
	AMP
	DOUBLE_AMP
	BAR
	DOUBLE_BAR
	CIRC
	EQ
	EQEQ
	NEQ
	LTE
	GTE
	QUESTION_MARK
	COLON
	SEMICOLON
	COMMA
	DOT
	UNDERSCORE
	POUND
	AT

	// Literal classes.
	NUMBER
	IDENT
	STRING

	// Slash-led directives.
	DTS_V1
	MEM_RESERVE
	DELETE_NODE
	DELETE_PROPERTY
	PLUGIN
	BITS
	OMIT_IF_NO_REF
	INCLUDE

	// Error token.
	ERROR

	// Composite node kinds.
	LABEL
	NAME
	OP
	INT
	BINARY
	UNARY
	PAREN_EXPRESSION
	CELL
	CELL_INNER
	BYTE_STRING
	BYTE_CHUNK
	BITS_SPEC
	DELETE_SPEC
	OMIT_IF_NO_REF_SPEC
	HEADER
	RESERVE_MEMORY
	INCLUDE_FILE
	REFERENCE
	REF_PATH
	PATH
	PROPERTY_LIST
	PROP_VALUE
	STRING_PROP
	PROPERTY
	NODE
	DECORATION
	NODE_BODY
	FILE
)

var kindNames = map[Kind]string{
	WHITESPACE:          "WHITESPACE",
	LINE_COMMENT:        "LINE_COMMENT",
	BLOCK_COMMENT:       "BLOCK_COMMENT",
	L_PAR:               "L_PAR",
	R_PAR:               "R_PAR",
	L_BRACE:             "L_BRACE",
	R_BRACE:             "R_BRACE",
	L_BRAK:              "L_BRAK",
	R_BRAK:              "R_BRAK",
	L_CHEV:              "L_CHEV",
	R_CHEV:              "R_CHEV",
	DOUBLE_L_CHEV:       "DOUBLE_L_CHEV",
	DOUBLE_R_CHEV:       "DOUBLE_R_CHEV",
	MINUS:               "MINUS",
	PLUS:                "PLUS",
	STAR:                "STAR",
	SLASH:               "SLASH",
	PERCENT:             "PERCENT",
	TILDE:               "TILDE",
	EXCLAMATION:         "EXCLAMATION",
	AMP:                 "AMP",
	DOUBLE_AMP:          "DOUBLE_AMP",
	BAR:                 "BAR",
	DOUBLE_BAR:          "DOUBLE_BAR",
	CIRC:                "CIRC",
	EQ:                  "EQ",
	EQEQ:                "EQEQ",
	NEQ:                 "NEQ",
	LTE:                 "LTE",
	GTE:                 "GTE",
	QUESTION_MARK:       "QUESTION_MARK",
	COLON:               "COLON",
	SEMICOLON:           "SEMICOLON",
	COMMA:               "COMMA",
	DOT:                 "DOT",
	UNDERSCORE:          "UNDERSCORE",
	POUND:               "POUND",
	AT:                  "AT",
	NUMBER:              "NUMBER",
	IDENT:               "IDENT",
	STRING:              "STRING",
	DTS_V1:              "DTS_V1",
	MEM_RESERVE:         "MEM_RESERVE",
	DELETE_NODE:         "DELETE_NODE",
	DELETE_PROPERTY:     "DELETE_PROPERTY",
	PLUGIN:              "PLUGIN",
	BITS:                "BITS",
	OMIT_IF_NO_REF:      "OMIT_IF_NO_REF",
	INCLUDE:             "INCLUDE",
	ERROR:               "ERROR",
	LABEL:               "LABEL",
	NAME:                "NAME",
	OP:                  "OP",
	INT:                 "INT",
	BINARY:              "BINARY",
	UNARY:               "UNARY",
	PAREN_EXPRESSION:    "PAREN_EXPRESSION",
	CELL:                "CELL",
	CELL_INNER:          "CELL_INNER",
	BYTE_STRING:         "BYTE_STRING",
	BYTE_CHUNK:          "BYTE_CHUNK",
	BITS_SPEC:           "BITS_SPEC",
	DELETE_SPEC:         "DELETE_SPEC",
	OMIT_IF_NO_REF_SPEC: "OMIT_IF_NO_REF_SPEC",
	HEADER:              "HEADER",
	RESERVE_MEMORY:      "RESERVE_MEMORY",
	INCLUDE_FILE:        "INCLUDE_FILE",
	REFERENCE:           "REFERENCE",
	REF_PATH:            "REF_PATH",
	PATH:                "PATH",
	PROPERTY_LIST:       "PROPERTY_LIST",
	PROP_VALUE:          "PROP_VALUE",
	STRING_PROP:         "STRING_PROP",
	PROPERTY:            "PROPERTY",
	NODE:                "NODE",
	DECORATION:          "DECORATION",
	NODE_BODY:           "NODE_BODY",
	FILE:                "FILE",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsTrivia reports whether k is whitespace or a comment: tokens that are
// always preserved in the tree but skipped by grammar-significant lookahead.
func (k Kind) IsTrivia() bool {
	return k == WHITESPACE || k == LINE_COMMENT || k == BLOCK_COMMENT
}

// directiveKeywords maps the literal spelling of a slash-led directive to
// its Kind, tried longest-first by the lexer.
var directiveKeywords = map[string]Kind{
	"/dts-v1/":          DTS_V1,
	"/memreserve/":      MEM_RESERVE,
	"/delete-node/":     DELETE_NODE,
	"/delete-property/": DELETE_PROPERTY,
	"/plugin/":          PLUGIN,
	"/bits/":            BITS,
	"/omit-if-no-ref/":  OMIT_IF_NO_REF,
	"/include/":         INCLUDE,
}

// DirectiveKeywords exposes the slash-led directive table to the lexer.
func DirectiveKeywords() map[string]Kind {
	return directiveKeywords
}

// BinaryPrecedence returns the binding power of a binary operator kind and
// true if k is a binary operator, mirroring
// original_source/ginko/src/dts/syntax/expression.rs's binary_precedence.
func BinaryPrecedence(k Kind) (int, bool) {
	switch k {
	case STAR, SLASH, PERCENT:
		return 11, true
	case MINUS, PLUS:
		return 10, true
	case DOUBLE_R_CHEV, DOUBLE_L_CHEV:
		return 9, true
	case R_CHEV, L_CHEV, LTE, GTE:
		return 8, true
	case EQEQ, NEQ:
		return 7, true
	case AMP:
		return 6, true
	case CIRC:
		return 5, true
	case BAR:
		return 4, true
	case DOUBLE_AMP:
		return 3, true
	case DOUBLE_BAR:
		return 2, true
	case QUESTION_MARK:
		return 1, true
	default:
		return 0, false
	}
}
