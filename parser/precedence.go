package parser

import "github.com/paiml/ruchy-sub007/token"

// Precedence levels, higher binds tighter. Matches spec.md §4.2.1's
// table; pipeline sits between assignment and logical-or, and unary/
// postfix bracket the whole table at the top.
const (
	LOWEST = iota
	ASSIGNMENT
	PIPELINE
	LOGICAL_OR
	NULL_COALESCE // also covers the message-send '!' infix use
	LOGICAL_AND
	BIT_OR
	BIT_XOR
	BIT_AND
	EQUALITY
	RELATIONAL
	SHIFT
	ADDITIVE
	MULTIPLICATIVE
	POWER
	UNARY
	POSTFIX
)

var precedences = map[token.Type]int{
	token.ASSIGN:       ASSIGNMENT,
	token.PLUS_ASSIGN:  ASSIGNMENT,
	token.MINUS_ASSIGN: ASSIGNMENT,
	token.STAR_ASSIGN:  ASSIGNMENT,
	token.SLASH_ASSIGN: ASSIGNMENT,
	token.PCT_ASSIGN:   ASSIGNMENT,
	token.AMP_ASSIGN:   ASSIGNMENT,
	token.PIPE_ASSIGN:  ASSIGNMENT,
	token.CARET_ASSIGN: ASSIGNMENT,
	token.SHL_ASSIGN:   ASSIGNMENT,
	token.SHR_ASSIGN:   ASSIGNMENT,

	token.PIPEGT: PIPELINE,

	token.OROR: LOGICAL_OR,

	token.QUESTQ: NULL_COALESCE,
	token.BANG:   NULL_COALESCE,

	token.ANDAND: LOGICAL_AND,

	token.PIPE:  BIT_OR,
	token.CARET: BIT_XOR,
	token.AMP:   BIT_AND,

	token.EQ: EQUALITY,
	token.NE: EQUALITY,

	token.LT: RELATIONAL,
	token.LE: RELATIONAL,
	token.GT: RELATIONAL,
	token.GE: RELATIONAL,

	token.SHL: SHIFT,
	token.SHR: SHIFT,

	token.PLUS:  ADDITIVE,
	token.MINUS: ADDITIVE,

	token.STAR:    MULTIPLICATIVE,
	token.SLASH:   MULTIPLICATIVE,
	token.PERCENT: MULTIPLICATIVE,

	token.POW: POWER,

	token.DOTDOT:   RELATIONAL,
	token.DOTDOTEQ: RELATIONAL,
}

// rightAssociative lists infix operators that associate right-to-left:
// assignment forms and the power operator.
var rightAssociative = map[token.Type]bool{
	token.ASSIGN:       true,
	token.PLUS_ASSIGN:  true,
	token.MINUS_ASSIGN: true,
	token.STAR_ASSIGN:  true,
	token.SLASH_ASSIGN: true,
	token.PCT_ASSIGN:   true,
	token.AMP_ASSIGN:   true,
	token.PIPE_ASSIGN:  true,
	token.CARET_ASSIGN: true,
	token.SHL_ASSIGN:   true,
	token.SHR_ASSIGN:   true,
	token.POW:          true,
}

func precedenceOf(tt token.Type) int {
	if p, ok := precedences[tt]; ok {
		return p
	}
	return LOWEST
}
