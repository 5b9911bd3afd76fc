package syntax

import (
	"fmt"

	"github.com/dhamidi/ginko/dts/diagnostics"
	"github.com/dhamidi/ginko/dts/lexer"
)

// Parser is a recursive-descent, error-tolerant CST builder. Structural
// idioms (Option-less constructor, startNode/finishNode wrapping the
// builder, error-recovery-by-wrapping) are grounded on
// _examples/dhamidi-sai/java/parser/parser.go; the grammar itself and the
// checkpoint-driven disambiguation are grounded on
// original_source/ginko/src/dts/syntax/{parser,node,expression}.rs.
type Parser struct {
	tokens []Token
	pos    int
	b      *Builder
	diags  *diagnostics.Bag
	file   string
}

// NewParser tokenizes text and prepares a parser producing diagnostics
// tagged with file (the canonical path used in Diagnostic.File).
func NewParser(text, file string) *Parser {
	return &Parser{
		tokens: lexer.Lex(text),
		b:      NewBuilder(),
		diags:  &diagnostics.Bag{},
		file:   file,
	}
}

// ParseFile parses a complete DTS source file per spec.md §4.2's grammar,
// always returning a FILE root node (parser totality, spec.md §8).
func ParseFile(text, file string) (*Node, []diagnostics.Diagnostic) {
	p := NewParser(text, file)
	return p.Parse()
}

// Parse drives the top-level FILE grammar.
func (p *Parser) Parse() (*Node, []diagnostics.Diagnostic) {
	p.b.StartNode(FILE)
	for {
		p.skipWs()
		if p.pos >= len(p.tokens) {
			break
		}
		before := p.pos
		switch p.tokens[p.pos].Kind {
		case DTS_V1, PLUGIN:
			p.parseHeader()
		case MEM_RESERVE:
			p.parseReserveMemory()
		case INCLUDE:
			p.parseIncludeFile()
		case DELETE_NODE:
			p.parseFileDeleteNode()
		case SLASH, AMP, OMIT_IF_NO_REF:
			p.parseNodeDecl()
		default:
			p.errorToken(diagnostics.Expected, fmt.Sprintf("unexpected token %s at file scope", p.tokens[p.pos].Kind))
		}
		if p.pos == before {
			p.errorToken(diagnostics.Expected, "parser made no progress, skipping token")
		}
	}
	p.skipWs()
	return p.b.FinishNode(), p.diags.Items()
}

// --- token stream primitives ---

func (p *Parser) skipWs() {
	for p.pos < len(p.tokens) && p.tokens[p.pos].Kind.IsTrivia() {
		p.b.Token(p.tokens[p.pos])
		p.pos++
	}
}

func (p *Parser) bump() {
	if p.pos >= len(p.tokens) {
		return
	}
	p.b.Token(p.tokens[p.pos])
	p.pos++
}

func (p *Parser) eofOffset() int {
	if len(p.tokens) == 0 {
		return 0
	}
	return p.tokens[len(p.tokens)-1].Range.End
}

func (p *Parser) addDiag(code diagnostics.Code, rng diagnostics.Range, msg string) {
	p.diags.Add(diagnostics.Diagnostic{Code: code, Range: rng, File: p.file, Message: msg})
}

// errorToken skips trivia, then reports code at (and consumes, wrapped in
// an ERROR node) the next token — or at EOF if none remains. This is the
// "wrap the unexpected token in an ERROR node" branch of spec.md §4.2's
// error recovery.
func (p *Parser) errorToken(code diagnostics.Code, msg string) {
	p.skipWs()
	if p.pos >= len(p.tokens) {
		eof := p.eofOffset()
		p.addDiag(code, diagnostics.Range{Start: eof, End: eof}, msg)
		return
	}
	p.addDiag(code, p.tokens[p.pos].Range, msg)
	p.b.StartNode(ERROR)
	p.bump()
	p.b.FinishNode()
}

// expect consumes kind if present; otherwise reports code/msg and wraps
// whatever token is there in an ERROR node. Used for leaf literals
// (STRING, NUMBER) and delimiters whose absence doesn't desynchronize a
// surrounding loop.
func (p *Parser) expect(kind Kind, code diagnostics.Code, msg string) bool {
	p.skipWs()
	if p.pos < len(p.tokens) && p.tokens[p.pos].Kind == kind {
		p.bump()
		return true
	}
	p.errorToken(code, msg)
	return false
}

// expectClose reports a missing closing delimiter or ';' WITHOUT
// consuming the offending token — spec.md §4.2's "(b) synthesizes a
// missing delimiter ... but continues as if [it] were present". Consuming
// the wrong token here (e.g. the first token of the next statement) would
// desynchronize the surrounding loop.
func (p *Parser) expectClose(kind Kind, code diagnostics.Code, msg string) bool {
	p.skipWs()
	if p.pos < len(p.tokens) && p.tokens[p.pos].Kind == kind {
		p.bump()
		return true
	}
	var rng diagnostics.Range
	if p.pos < len(p.tokens) {
		rng = diagnostics.Range{Start: p.tokens[p.pos].Range.Start, End: p.tokens[p.pos].Range.Start}
	} else {
		eof := p.eofOffset()
		rng = diagnostics.Range{Start: eof, End: eof}
	}
	p.addDiag(code, rng, msg)
	return false
}

func isNameToken(k Kind) bool {
	switch k {
	case IDENT, NUMBER, COMMA, DOT, UNDERSCORE, PLUS, MINUS, AT, POUND, QUESTION_MARK:
		return true
	default:
		return false
	}
}

// --- file-scope primaries ---

func (p *Parser) parseHeader() {
	p.b.StartNode(HEADER)
	p.bump() // DTS_V1 or PLUGIN
	p.expectClose(SEMICOLON, diagnostics.Expected, "expected ';' after header")
	p.b.FinishNode()
}

func (p *Parser) parseReserveMemory() {
	p.b.StartNode(RESERVE_MEMORY)
	p.bump() // MEM_RESERVE
	p.parseIntLiteral()
	p.parseIntLiteral()
	p.expectClose(SEMICOLON, diagnostics.Expected, "expected ';' after /memreserve/")
	p.b.FinishNode()
}

func (p *Parser) parseIntLiteral() {
	p.skipWs()
	if p.pos < len(p.tokens) && p.tokens[p.pos].Kind == NUMBER {
		p.b.StartNode(INT)
		p.bump()
		p.b.FinishNode()
		return
	}
	p.errorToken(diagnostics.Expected, "expected integer literal")
}

func (p *Parser) parseIncludeFile() {
	p.b.StartNode(INCLUDE_FILE)
	p.bump() // INCLUDE
	p.expect(STRING, diagnostics.ExpectedName, "expected include path string")
	p.skipWs()
	if p.pos < len(p.tokens) && p.tokens[p.pos].Kind == SEMICOLON {
		p.addDiag(diagnostics.Expected, p.tokens[p.pos].Range, "/include/ does not take a trailing ';'")
		p.bump()
	}
	p.b.FinishNode()
}

func (p *Parser) parseFileDeleteNode() {
	p.b.StartNode(DELETE_SPEC)
	p.bump() // DELETE_NODE
	p.skipWs()
	if p.pos < len(p.tokens) && p.tokens[p.pos].Kind == AMP {
		p.parseReference()
	} else {
		p.errorToken(diagnostics.ExpectedName, "expected reference after /delete-node/")
	}
	p.expectClose(SEMICOLON, diagnostics.Expected, "expected ';'")
	p.b.FinishNode()
}

func (p *Parser) parseBodyDeleteSpec(kind Kind) {
	p.b.StartNode(DELETE_SPEC)
	p.bump() // DELETE_NODE or DELETE_PROPERTY
	p.skipWs()
	p.parseNameLike()
	p.expectClose(SEMICOLON, diagnostics.Expected, "expected ';'")
	p.b.FinishNode()
}

func (p *Parser) parseOptionalDecoration() {
	p.skipWs()
	if p.pos < len(p.tokens) && p.tokens[p.pos].Kind == OMIT_IF_NO_REF {
		p.b.StartNode(DECORATION)
		p.bump()
		p.b.FinishNode()
	}
}

// parseNodeDecl parses a file-scope node declaration: `/ {...};` or
// `&reference {...};`, optionally preceded by a decoration.
func (p *Parser) parseNodeDecl() {
	cp := p.b.Checkpoint()
	p.parseOptionalDecoration()
	p.skipWs()
	switch {
	case p.pos < len(p.tokens) && p.tokens[p.pos].Kind == SLASH:
		p.b.StartNode(NAME)
		p.bump()
		p.b.FinishNode()
	case p.pos < len(p.tokens) && p.tokens[p.pos].Kind == AMP:
		p.parseReference()
	default:
		p.errorToken(diagnostics.Expected, "expected '/' or a node reference")
	}
	p.skipWs()
	p.parseNodeBody()
	p.expectClose(SEMICOLON, diagnostics.Expected, "expected ';' after node")
	p.b.StartNodeAt(cp, NODE)
	p.b.FinishNode()
}

// --- node bodies ---

func (p *Parser) parseNodeBody() {
	if !p.expect(L_BRACE, diagnostics.Expected, "expected '{'") {
		return
	}
	p.b.StartNode(NODE_BODY)
	for {
		p.skipWs()
		if p.pos >= len(p.tokens) || p.tokens[p.pos].Kind == R_BRACE {
			break
		}
		before := p.pos
		switch p.tokens[p.pos].Kind {
		case DELETE_NODE:
			p.parseBodyDeleteSpec(DELETE_NODE)
		case DELETE_PROPERTY:
			p.parseBodyDeleteSpec(DELETE_PROPERTY)
		default:
			p.parsePropertyOrNode()
		}
		if p.pos == before {
			p.errorToken(diagnostics.Expected, "no progress in node body, skipping token")
		}
	}
	p.b.FinishNode()
	p.expectClose(R_BRACE, diagnostics.Expected, "expected '}'")
}

// parsePropertyOrNode implements the canonical checkpoint-disambiguation
// worked example: the parser builds a permissive NAME node without
// knowing yet whether it is parsing a property or a node, then wraps
// retroactively once the following token resolves the ambiguity.
// Grounded on original_source/ginko/src/dts/syntax/node.rs's
// parse_property_or_node.
func (p *Parser) parsePropertyOrNode() {
	cp := p.b.Checkpoint()
	p.parseOptionalLabel()
	p.parseOptionalDecoration()
	p.skipWs()
	p.parseNameLike()
	p.skipWs()
	switch {
	case p.pos < len(p.tokens) && p.tokens[p.pos].Kind == SEMICOLON:
		p.bump()
		p.b.StartNodeAt(cp, PROPERTY)
		p.b.FinishNode()
	case p.pos < len(p.tokens) && p.tokens[p.pos].Kind == EQ:
		p.bump()
		p.skipWs()
		p.parsePropertyList()
		p.expectClose(SEMICOLON, diagnostics.Expected, "expected ';'")
		p.b.StartNodeAt(cp, PROPERTY)
		p.b.FinishNode()
	case p.pos < len(p.tokens) && p.tokens[p.pos].Kind == L_BRACE:
		p.parseNodeBody()
		p.expectClose(SEMICOLON, diagnostics.Expected, "expected ';'")
		p.b.StartNodeAt(cp, NODE)
		p.b.FinishNode()
	default:
		p.errorToken(diagnostics.Expected, "expected ';', '=', or '{' after name")
		p.b.StartNodeAt(cp, ERROR)
		p.b.FinishNode()
	}
}

// parseOptionalLabel implements the "IDENT COLON vs IDENT WHITESPACE
// COLON" lookahead noted in spec.md §4.2: a label is an IDENT followed
// (possibly after trivia) by COLON.
func (p *Parser) parseOptionalLabel() {
	p.skipWs()
	if p.pos >= len(p.tokens) || p.tokens[p.pos].Kind != IDENT {
		return
	}
	idx := p.pos + 1
	for idx < len(p.tokens) && p.tokens[idx].Kind.IsTrivia() {
		idx++
	}
	if idx >= len(p.tokens) || p.tokens[idx].Kind != COLON {
		return
	}
	p.b.StartNode(LABEL)
	p.bump() // IDENT
	p.skipWs()
	p.bump() // COLON
	p.b.FinishNode()
}

// parseNameLike consumes a permissive, contiguous run of name-class
// tokens (no intervening whitespace) into a NAME node. The node/property
// distinction and character-class legality are deferred to analysis, per
// spec.md §4.2 "Name disambiguation".
func (p *Parser) parseNameLike() {
	p.b.StartNode(NAME)
	consumed := 0
	for p.pos < len(p.tokens) && isNameToken(p.tokens[p.pos].Kind) {
		p.bump()
		consumed++
	}
	if consumed == 0 {
		p.b.FinishNode()
		p.errorToken(diagnostics.ExpectedName, "expected a name")
		return
	}
	p.b.FinishNode()
}

// --- property values ---

func (p *Parser) parsePropertyList() {
	p.b.StartNode(PROPERTY_LIST)
	for {
		p.skipWs()
		before := p.pos
		p.parsePropValue()
		p.skipWs()
		if p.pos < len(p.tokens) && p.tokens[p.pos].Kind == COMMA {
			p.bump()
			continue
		}
		if p.pos == before {
			break
		}
		break
	}
	p.b.FinishNode()
}

func (p *Parser) parsePropValue() {
	p.b.StartNode(PROP_VALUE)
	p.parseOptionalLabel()
	p.skipWs()
	switch {
	case p.pos < len(p.tokens) && p.tokens[p.pos].Kind == STRING:
		p.b.StartNode(STRING_PROP)
		p.bump()
		p.b.FinishNode()
	case p.pos < len(p.tokens) && p.tokens[p.pos].Kind == BITS:
		p.parseBitsSpec()
		p.skipWs()
		p.parseCell()
	case p.pos < len(p.tokens) && p.tokens[p.pos].Kind == L_CHEV:
		p.parseCell()
	case p.pos < len(p.tokens) && p.tokens[p.pos].Kind == L_BRAK:
		p.parseByteString()
	case p.pos < len(p.tokens) && p.tokens[p.pos].Kind == AMP:
		p.parseReference()
	default:
		p.errorToken(diagnostics.Expected, "expected a property value")
	}
	p.b.FinishNode()
}

func (p *Parser) parseBitsSpec() {
	p.b.StartNode(BITS_SPEC)
	p.bump() // BITS
	p.skipWs()
	if p.pos < len(p.tokens) && p.tokens[p.pos].Kind == NUMBER {
		p.b.StartNode(INT)
		p.bump()
		p.b.FinishNode()
	} else {
		p.errorToken(diagnostics.Expected, "expected bit width after /bits/")
	}
	p.b.FinishNode()
}

func (p *Parser) parseCell() {
	if !p.expect(L_CHEV, diagnostics.Expected, "expected '<'") {
		return
	}
	p.b.StartNode(CELL)
	for {
		p.skipWs()
		if p.pos >= len(p.tokens) || p.tokens[p.pos].Kind == R_CHEV {
			break
		}
		before := p.pos
		p.parseCellInner()
		if p.pos == before {
			p.errorToken(diagnostics.Expected, "no progress parsing cell contents")
		}
	}
	p.expectClose(R_CHEV, diagnostics.Expected, "expected '>'")
	p.b.FinishNode()
}

func (p *Parser) parseCellInner() {
	p.b.StartNode(CELL_INNER)
	p.skipWs()
	switch {
	case p.pos < len(p.tokens) && p.tokens[p.pos].Kind == AMP:
		p.parseReference()
	case p.pos < len(p.tokens) && isExprStart(p.tokens[p.pos].Kind):
		// A cell item is a single number, unary expression or
		// parenthesized expression; binary operators appear only inside
		// parentheses, so a following '>' always closes the cell.
		p.parseUnary()
	default:
		p.errorToken(diagnostics.Expected, "expected number, reference, or parenthesized expression")
	}
	p.b.FinishNode()
}

func isExprStart(k Kind) bool {
	switch k {
	case NUMBER, MINUS, TILDE, EXCLAMATION, L_PAR:
		return true
	default:
		return false
	}
}

func (p *Parser) parseByteString() {
	if !p.expect(L_BRAK, diagnostics.Expected, "expected '['") {
		return
	}
	p.b.StartNode(BYTE_STRING)
	hexLen := 0
	for {
		p.skipWs()
		if p.pos >= len(p.tokens) || p.tokens[p.pos].Kind == R_BRAK {
			break
		}
		if p.tokens[p.pos].Kind == IDENT || p.tokens[p.pos].Kind == NUMBER {
			hexLen += len(p.tokens[p.pos].Text)
			p.b.StartNode(BYTE_CHUNK)
			p.bump()
			p.b.FinishNode()
			continue
		}
		p.errorToken(diagnostics.Expected, "expected hex byte chunk")
	}
	p.expectClose(R_BRAK, diagnostics.Expected, "expected ']'")
	node := p.b.FinishNode()
	if hexLen%2 != 0 {
		p.addDiag(diagnostics.OddNumberOfBytestringElements, node.Range(), "odd number of hex digits in byte string")
	}
}

// --- references ---

func (p *Parser) parseReference() {
	p.b.StartNode(REFERENCE)
	p.bump() // AMP
	p.skipWs()
	switch {
	case p.pos < len(p.tokens) && p.tokens[p.pos].Kind == L_BRACE:
		p.b.StartNode(REF_PATH)
		p.bump() // L_BRACE
		p.skipWs()
		p.parsePath()
		p.expectClose(R_BRACE, diagnostics.Expected, "expected '}'")
		p.b.FinishNode()
	case p.pos < len(p.tokens) && p.tokens[p.pos].Kind == IDENT:
		p.b.StartNode(LABEL)
		p.bump()
		p.b.FinishNode()
	default:
		p.errorToken(diagnostics.ExpectedName, "expected a label or '{' after '&'")
	}
	p.b.FinishNode()
}

func (p *Parser) parsePath() {
	p.b.StartNode(PATH)
	segments := 0
	for p.pos < len(p.tokens) && p.tokens[p.pos].Kind == SLASH {
		p.bump()
		p.skipWs()
		p.parseNameLike()
		segments++
		p.skipWs()
	}
	if segments == 0 {
		p.addDiag(diagnostics.PathCannotBeEmpty, p.currentRangeForDiag(), "path cannot be empty")
	}
	p.b.FinishNode()
}

func (p *Parser) currentRangeForDiag() diagnostics.Range {
	if p.pos < len(p.tokens) {
		return diagnostics.Range{Start: p.tokens[p.pos].Range.Start, End: p.tokens[p.pos].Range.Start}
	}
	eof := p.eofOffset()
	return diagnostics.Range{Start: eof, End: eof}
}

// --- expressions (precedence climbing) ---

// parseExpressionTop parses a full expression: unary operand followed by
// zero or more binary operators at any precedence, per spec.md's 11-tier
// table. Grounded on
// original_source/ginko/src/dts/syntax/expression.rs's parse_expression.
func (p *Parser) parseExpressionTop() {
	cp := p.b.Checkpoint()
	p.parseUnary()
	p.parseExpressionRHS(cp, 1)
}

func (p *Parser) parseExpressionRHS(cp Checkpoint, minPrecedence int) {
	for {
		p.skipWs()
		if p.pos >= len(p.tokens) {
			return
		}
		prec, isBinary := BinaryPrecedence(p.tokens[p.pos].Kind)
		if !isBinary || prec < minPrecedence {
			return
		}
		p.b.StartNodeAt(cp, BINARY)
		p.skipWs()
		p.b.StartNode(OP)
		p.bump()
		p.b.FinishNode()
		p.skipWs()
		rhsCp := p.b.Checkpoint()
		p.parseUnary()
		p.parseExpressionRHS(rhsCp, prec+1)
		p.b.FinishNode() // close BINARY
	}
}

// parseUnary handles right-associative prefix operators `- ! ~`, which
// bind tighter than any binary operator (spec.md §4.2).
func (p *Parser) parseUnary() {
	p.skipWs()
	if p.pos < len(p.tokens) {
		switch p.tokens[p.pos].Kind {
		case TILDE, EXCLAMATION, MINUS:
			cp := p.b.Checkpoint()
			p.b.StartNode(OP)
			p.bump()
			p.b.FinishNode()
			p.skipWs()
			p.parseUnary()
			p.b.StartNodeAt(cp, UNARY)
			p.b.FinishNode()
			return
		}
	}
	p.parsePrimaryExpr()
}

func (p *Parser) parsePrimaryExpr() {
	p.skipWs()
	switch {
	case p.pos < len(p.tokens) && p.tokens[p.pos].Kind == L_PAR:
		p.parseParenExpression()
	case p.pos < len(p.tokens) && p.tokens[p.pos].Kind == NUMBER:
		p.b.StartNode(INT)
		p.bump()
		p.b.FinishNode()
	case p.pos < len(p.tokens) && p.tokens[p.pos].Kind == AMP:
		p.parseReference()
	case p.pos >= len(p.tokens):
		eof := p.eofOffset()
		p.addDiag(diagnostics.UnexpectedEOF, diagnostics.Range{Start: eof, End: eof}, "unexpected end of input in expression")
	default:
		p.errorToken(diagnostics.Expected, "expected an expression")
	}
}

func (p *Parser) parseParenExpression() {
	var openRange diagnostics.Range
	if p.pos < len(p.tokens) {
		openRange = p.tokens[p.pos].Range
	}
	if !p.expect(L_PAR, diagnostics.Expected, "expected '('") {
		return
	}
	p.b.StartNode(PAREN_EXPRESSION)
	p.skipWs()
	p.parseExpressionTop()
	p.skipWs()
	if p.pos < len(p.tokens) && p.tokens[p.pos].Kind == R_PAR {
		p.bump()
	} else {
		p.addDiag(diagnostics.UnbalancedParentheses, openRange, "unbalanced parentheses")
	}
	p.b.FinishNode()
}
