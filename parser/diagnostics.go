package parser

import (
	"fmt"

	"github.com/paiml/ruchy-sub007/ast"
	"github.com/paiml/ruchy-sub007/token"
)

// Diagnostic is a structured parse error (spec.md §4.2.4, §7): a
// message, the span it applies to, the token actually found, the set of
// tokens that would have been accepted, and a short recovery hint.
type Diagnostic struct {
	Message  string
	Span     ast.Span
	Found    token.Token
	Expected []token.Type
	Hint     string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s (found %s at %d:%d)", d.Message, d.Found.Type, d.Found.Line, d.Found.Column)
}

// syncTokens are the token types the recovery parser advances to before
// resuming (spec.md §4.2.4); a caller may supply additional sync tokens
// for a more local context (e.g. ',' or ']' inside a list).
var syncTokens = map[token.Type]bool{
	token.SEMI:  true,
	token.RBRACE: true,
	token.FUN:   true,
	token.LET:   true,
	token.IF:    true,
	token.FOR:   true,
	token.MATCH: true,
	token.EOF:   true,
}

var ghostCounter int

func newGhost(span ast.Span, reason string) *ast.Expr {
	ghostCounter++
	return &ast.Expr{
		Kind:        ast.KindGhost,
		Span:        span,
		Name:        fmt.Sprintf("_ghost_%d_%s", ghostCounter, reason),
		GhostReason: reason,
	}
}
