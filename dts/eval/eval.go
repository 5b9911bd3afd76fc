// Package eval implements the C-style integer expression evaluator:
// literal parsing, wrapping arithmetic, and cell truncation, per
// spec.md §4.4. Grounded on
// original_source/ginko/src/dts/eval/expression.rs's int_eval! macro and
// Eval impls for BinaryExpression/UnaryExpression — hand-expanded into
// one Go function per width since Go has no macro facility; Go's native
// unsigned-integer wraparound on arithmetic is itself the idiomatic
// equivalent of Rust's wrapping_* methods, so no bignum/wrapping-math
// library is needed here (see DESIGN.md).
package eval

import (
	"strconv"

	"github.com/dhamidi/ginko/dts/diagnostics"
	"github.com/dhamidi/ginko/dts/lexer"
	"github.com/dhamidi/ginko/dts/syntax"
)

// Cause distinguishes the two ways evaluation can fail.
type Cause int

const (
	CauseParseError Cause = iota
	CauseDivideByZero
)

// Error is EvalError = {cause, byte-range}.
type Error struct {
	Cause Cause
	Range diagnostics.Range
}

func (e *Error) Error() string {
	switch e.Cause {
	case CauseDivideByZero:
		return "division by zero"
	default:
		return "integer parse error"
	}
}

// ParseIntLiteral parses a NUMBER token's text at the given width,
// applying spec.md §4.4's literal rules: "0" -> 0; "0x..." -> hex;
// leading "0" -> octal; else decimal. Overflow of the target width is a
// ParseError.
func ParseIntLiteral(tok *syntax.Node, width int) (uint64, *Error) {
	radix, digits := lexer.ClassifyNumber(tok.Token.Text)
	v, err := strconv.ParseUint(digits, radix, width)
	if err != nil {
		return 0, &Error{Cause: CauseParseError, Range: tok.Range()}
	}
	return v, nil
}

func mask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(width)) - 1
}

func truncate(v uint64, width int) uint64 {
	return v & mask(width)
}

// Eval evaluates an expression node (INT, UNARY, BINARY, PAREN_EXPRESSION)
// at the given bit width, returning a value already truncated to that
// width.
func Eval(n *syntax.Node, width int) (uint64, *Error) {
	switch n.Kind {
	case syntax.INT:
		tok := n
		if !tok.IsLeaf() {
			tok = n.FirstChildOfKind(syntax.NUMBER)
		}
		return ParseIntLiteral(tok, width)
	case syntax.PAREN_EXPRESSION:
		for _, c := range n.NonTrivia() {
			if isExprNode(c.Kind) {
				return Eval(c, width)
			}
		}
		return 0, &Error{Cause: CauseParseError, Range: n.Range()}
	case syntax.UNARY:
		return evalUnary(n, width)
	case syntax.BINARY:
		return evalBinary(n, width)
	default:
		return 0, &Error{Cause: CauseParseError, Range: n.Range()}
	}
}

func isExprNode(k syntax.Kind) bool {
	switch k {
	case syntax.INT, syntax.UNARY, syntax.BINARY, syntax.PAREN_EXPRESSION:
		return true
	default:
		return false
	}
}

func operand(n *syntax.Node, skip syntax.Kind) *syntax.Node {
	for _, c := range n.NonTrivia() {
		if c.Kind == skip {
			continue
		}
		if isExprNode(c.Kind) {
			return c
		}
	}
	return nil
}

func opKind(n *syntax.Node) syntax.Kind {
	op := n.FirstChildOfKind(syntax.OP)
	if op == nil {
		return syntax.ERROR
	}
	for _, c := range op.Children {
		if !c.Kind.IsTrivia() {
			return c.Kind
		}
	}
	return syntax.ERROR
}

func evalUnary(n *syntax.Node, width int) (uint64, *Error) {
	rhs := operand(n, syntax.OP)
	v, err := Eval(rhs, width)
	if err != nil {
		return 0, err
	}
	switch opKind(n) {
	case syntax.MINUS:
		return truncate(0-v, width), nil
	case syntax.EXCLAMATION:
		if v == 0 {
			return 1, nil
		}
		return 0, nil
	case syntax.TILDE:
		return truncate(^v, width), nil
	default:
		return 0, &Error{Cause: CauseParseError, Range: n.Range()}
	}
}

func evalBinary(n *syntax.Node, width int) (uint64, *Error) {
	var operands []*syntax.Node
	for _, c := range n.NonTrivia() {
		if isExprNode(c.Kind) {
			operands = append(operands, c)
		}
	}
	if len(operands) != 2 {
		return 0, &Error{Cause: CauseParseError, Range: n.Range()}
	}
	lhs, err := Eval(operands[0], width)
	if err != nil {
		return 0, err
	}
	rhs, err := Eval(operands[1], width)
	if err != nil {
		return 0, err
	}
	m := mask(width)
	switch opKind(n) {
	case syntax.PLUS:
		return truncate(lhs+rhs, width), nil
	case syntax.MINUS:
		return truncate(lhs-rhs, width), nil
	case syntax.STAR:
		return truncate(lhs*rhs, width), nil
	case syntax.SLASH:
		if rhs == 0 {
			return 0, &Error{Cause: CauseDivideByZero, Range: n.Range()}
		}
		return truncate(lhs/rhs, width), nil
	case syntax.PERCENT:
		if rhs == 0 {
			return 0, &Error{Cause: CauseDivideByZero, Range: n.Range()}
		}
		return truncate(lhs%rhs, width), nil
	case syntax.DOUBLE_L_CHEV:
		return truncate(lhs<<uint(rhs%uint64(width)), width), nil
	case syntax.DOUBLE_R_CHEV:
		return truncate(lhs>>uint(rhs%uint64(width)), width), nil
	case syntax.L_CHEV:
		return boolVal(lhs < rhs), nil
	case syntax.R_CHEV:
		return boolVal(lhs > rhs), nil
	case syntax.LTE:
		return boolVal(lhs <= rhs), nil
	case syntax.GTE:
		return boolVal(lhs >= rhs), nil
	case syntax.EQEQ:
		return boolVal(lhs == rhs), nil
	case syntax.NEQ:
		return boolVal(lhs != rhs), nil
	case syntax.AMP:
		return truncate(lhs&rhs, width), nil
	case syntax.CIRC:
		return truncate(lhs^rhs, width), nil
	case syntax.BAR:
		return truncate(lhs|rhs, width) & m, nil
	case syntax.DOUBLE_AMP:
		return boolVal(lhs != 0 && rhs != 0), nil
	case syntax.DOUBLE_BAR:
		return boolVal(lhs != 0 || rhs != 0), nil
	case syntax.QUESTION_MARK:
		// Ternary stub: the grammar models `cond ? a` as a left-associative
		// binary at precedence 1, yielding a when cond is nonzero, else 0.
		// The parser has no `:` branch, so `a ? b : c` is not accepted.
		if lhs != 0 {
			return rhs, nil
		}
		return 0, nil
	default:
		return 0, &Error{Cause: CauseParseError, Range: n.Range()}
	}
}

func boolVal(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// EvalCellNumber evaluates a bare-number CELL_INNER content at the
// declared bit width (no truncation warning — the literal itself must
// fit, per spec.md's IntError rule).
func EvalCellNumber(n *syntax.Node, width int) (uint64, *Error) {
	return Eval(n, width)
}

// EvalParenAsCell evaluates a parenthesized cell expression at u64, then
// truncates to 32 bits, reporting truncated=true if the discarded upper
// bits are neither all-zero nor all-one (spec.md §4.4's "truncating bits"
// warning).
func EvalParenAsCell(n *syntax.Node) (value uint32, truncated bool, err *Error) {
	v, e := Eval(n, 64)
	if e != nil {
		return 0, false, e
	}
	lower := uint32(v)
	upper := v >> 32
	allZero := upper == 0
	allOne := upper == 0xFFFFFFFF
	return lower, !(allZero || allOne), nil
}
