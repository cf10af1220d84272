// Package parser implements a Pratt (precedence-climbing) recursive
// descent parser over the lexer's token stream, producing the ast.Expr
// tree.
//
// The teacher's parser.go registers one parse function per token type in
// UnaryFuncs/BinaryFuncs maps and drives them from a 2-token lookahead
// loop; this parser keeps that shape (prefix/infix dispatch folded into
// a switch over token.Type, CurrToken/NextToken lookahead renamed
// cur/peek) and adds the two features the teacher doesn't need: a full
// precedence table (§4.2.1) instead of a handful of binary levels, and a
// recovery mode that never aborts (§4.2.4).
package parser

import (
	"strconv"

	"github.com/paiml/ruchy-sub007/ast"
	"github.com/paiml/ruchy-sub007/lexer"
	"github.com/paiml/ruchy-sub007/token"
)

// Parser turns a token stream into an AST. Strict mode (the default)
// records each syntax error in Diagnostics but does not stop at the
// first one: parsing continues, so Diagnostics can hold several entries,
// the first being the earliest error. Recovery mode accumulates
// diagnostics and ghost nodes and always returns a (possibly partial)
// AST.
type Parser struct {
	lex *lexer.Lexer

	cur  token.Token
	peek token.Token

	Recovery    bool
	Diagnostics []*Diagnostic
	PartialAST  bool
}

// New creates a strict-mode parser over src.
func New(src string) *Parser {
	p := &Parser{lex: lexer.New(src)}
	p.advance()
	p.advance()
	return p
}

// NewRecovery creates a parser in recovery mode: syntax errors are
// accumulated as diagnostics with ghost nodes substituted, rather than
// aborting parsing.
func NewRecovery(src string) *Parser {
	p := New(src)
	p.Recovery = true
	return p
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.Advance()
}

func (p *Parser) curIs(tt token.Type) bool  { return p.cur.Type == tt }
func (p *Parser) peekIs(tt token.Type) bool { return p.peek.Type == tt }

// fail records a diagnostic. In strict mode it returns the diagnostic as
// an error for the caller to propagate; in recovery mode it returns nil
// so the caller substitutes a ghost node and synchronizes.
func (p *Parser) fail(msg string, expected []token.Type, hint string) error {
	d := &Diagnostic{
		Message:  msg,
		Span:     ast.Span{Start: p.cur.Span.Start, End: p.cur.Span.End},
		Found:    p.cur,
		Expected: expected,
		Hint:     hint,
	}
	p.Diagnostics = append(p.Diagnostics, d)
	if !p.Recovery {
		return d
	}
	p.PartialAST = true
	return nil
}

// synchronize advances tokens until a sync token (or a caller-provided
// extra set) is reached. It always consumes at least one token so
// recovery can never loop forever.
func (p *Parser) synchronize(extra map[token.Type]bool) {
	p.advance()
	for !p.curIs(token.EOF) {
		if syncTokens[p.cur.Type] || (extra != nil && extra[p.cur.Type]) {
			return
		}
		p.advance()
	}
}

func (p *Parser) expect(tt token.Type) (token.Token, bool) {
	if p.cur.Type != tt {
		p.fail("expected "+string(tt)+", found "+string(p.cur.Type), []token.Type{tt}, "insert missing token")
		return p.cur, false
	}
	t := p.cur
	p.advance()
	return t, true
}

// Parse parses the whole input as a sequence of top-level
// expressions/statements, optionally separated by ';', and returns a
// Block expression whose value is that of its last item (mirroring the
// teacher's RootNode.Value-of-last-statement convention). Top-level
// bindings are installed directly in the caller's environment by the
// evaluator — this Block is not given its own child scope.
func (p *Parser) Parse() *ast.Expr {
	start := p.cur.Span.Start
	items := make([]*ast.Expr, 0, 4)
	for !p.curIs(token.EOF) {
		e := p.parseExpression(LOWEST)
		if e != nil {
			items = append(items, e)
		}
		for p.curIs(token.SEMI) {
			p.advance()
		}
	}
	return &ast.Expr{Kind: ast.KindBlock, Items: items, Span: ast.Span{Start: start, End: p.cur.Span.End}}
}

func (p *Parser) parseExpression(minPrec int) *ast.Expr {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}
	left = p.parsePostfix(left)

	for {
		prec := precedenceOf(p.cur.Type)
		if prec < minPrec || prec == LOWEST {
			break
		}
		op := p.cur.Type
		nextMin := prec + 1
		if rightAssociative[op] {
			nextMin = prec
		}
		span := left.Span
		p.advance()
		right := p.parseExpression(nextMin)
		if right == nil {
			right = newGhost(span, "missing_rhs")
		}
		left = &ast.Expr{Kind: ast.KindBinary, Left: left, Op: op, Right: right, Span: ast.Span{Start: span.Start, End: right.Span.End}}
	}
	return left
}

func (p *Parser) parsePostfix(left *ast.Expr) *ast.Expr {
	for {
		switch p.cur.Type {
		case token.LPAREN:
			left = p.parseCall(left)
		case token.LBRACKET:
			start := left.Span.Start
			p.advance()
			idx := p.parseExpression(LOWEST)
			p.expect(token.RBRACKET)
			left = &ast.Expr{Kind: ast.KindIndex, Object: left, Index: idx, Span: ast.Span{Start: start, End: p.cur.Span.End}}
		case token.DOT, token.SAFENAV:
			start := left.Span.Start
			p.advance()
			name := p.cur.Literal
			p.advance()
			if p.curIs(token.LPAREN) {
				call := p.parseCall(&ast.Expr{Kind: ast.KindIdentifier, Name: name})
				left = &ast.Expr{Kind: ast.KindMethodCall, Object: left, Method: name, Args: call.Args, Span: ast.Span{Start: start, End: p.cur.Span.End}}
			} else {
				left = &ast.Expr{Kind: ast.KindFieldAccess, Object: left, Name: name, Span: ast.Span{Start: start, End: p.cur.Span.End}}
			}
		case token.QUESTION, token.PLUSPLUS, token.MINUSM:
			op := p.cur.Type
			start := left.Span.Start
			p.advance()
			left = &ast.Expr{Kind: ast.KindUnary, Op: op, Operand: left, Span: ast.Span{Start: start, End: p.cur.Span.End}}
		default:
			return left
		}
	}
}

func (p *Parser) parseCall(callee *ast.Expr) *ast.Expr {
	start := callee.Span.Start
	p.advance() // consume '('
	args := make([]*ast.Expr, 0, 2)
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		a := p.parseExpression(ASSIGNMENT + 1)
		if a != nil {
			args = append(args, a)
		}
		if p.curIs(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)
	return &ast.Expr{Kind: ast.KindCall, Callee: callee, Args: args, Span: ast.Span{Start: start, End: p.cur.Span.End}}
}

func (p *Parser) parsePrefix() *ast.Expr {
	tok := p.cur
	switch tok.Type {
	case token.INT, token.FLOAT, token.STRING, token.CHAR, token.BYTE, token.BOOL:
		return p.parseLiteral()
	case token.FSTRING:
		return p.parseFormatString()
	case token.RAWSTRING:
		p.advance()
		return &ast.Expr{Kind: ast.KindLiteral, Literal: &ast.Literal{Kind: ast.LitString, Str: tok.Literal}, Span: spanOf(tok)}
	case token.IDENT, token.UNDERSCOR:
		return p.parseIdentifierOrLambda()
	case token.SELF, token.CRATE, token.SUPER:
		p.advance()
		return &ast.Expr{Kind: ast.KindIdentifier, Name: tok.Literal, Span: spanOf(tok)}
	case token.SOME, token.NONE, token.OK, token.ERR:
		return p.parseConstructorCall()
	case token.LPAREN:
		return p.parseParenOrTuple()
	case token.LBRACKET:
		return p.parseListOrComprehension()
	case token.LBRACE:
		return p.parseBlock()
	case token.LET, token.VAR, token.CONST:
		return p.parseLet()
	case token.FUN:
		return p.parseFunction(false)
	case token.PUB:
		p.advance()
		return p.parsePrefix()
	case token.ASYNC:
		p.advance()
		if p.curIs(token.FUN) {
			return p.parseFunction(true)
		}
		body := p.parseExpression(LOWEST)
		return &ast.Expr{Kind: ast.KindAsyncBlock, Body: body, Span: spanOf(tok)}
	case token.AWAIT:
		p.advance()
		return p.parseExpression(UNARY)
	case token.IF:
		return p.parseIf()
	case token.MATCH:
		return p.parseMatch()
	case token.FOR:
		return p.parseFor("")
	case token.WHILE:
		return p.parseWhile("")
	case token.LOOP:
		return p.parseLoop("")
	case token.LIFETIME:
		label := tok.Literal
		p.advance()
		p.expect(token.COLON)
		switch p.cur.Type {
		case token.FOR:
			return p.parseFor(label)
		case token.WHILE:
			return p.parseWhile(label)
		case token.LOOP:
			return p.parseLoop(label)
		}
		p.fail("expected loop after label", nil, "")
		return newGhost(spanOf(tok), "bad_label")
	case token.BREAK:
		p.advance()
		e := &ast.Expr{Kind: ast.KindBreak, Span: spanOf(tok)}
		if p.curIs(token.LIFETIME) {
			e.Label = p.cur.Literal
			p.advance()
		}
		if !p.curIs(token.SEMI) && !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
			e.Value = p.parseExpression(LOWEST)
		}
		return e
	case token.CONTINUE:
		p.advance()
		e := &ast.Expr{Kind: ast.KindContinue, Span: spanOf(tok)}
		if p.curIs(token.LIFETIME) {
			e.Label = p.cur.Literal
			p.advance()
		}
		return e
	case token.RETURN:
		p.advance()
		e := &ast.Expr{Kind: ast.KindReturn, Span: spanOf(tok)}
		if !p.curIs(token.SEMI) && !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
			e.Value = p.parseExpression(LOWEST)
		}
		return e
	case token.THROW:
		p.advance()
		v := p.parseExpression(LOWEST)
		return &ast.Expr{Kind: ast.KindThrow, Value: v, Span: spanOf(tok)}
	case token.TRY:
		return p.parseTryCatch()
	case token.STRUCT:
		return p.parseStruct()
	case token.ENUM:
		return p.parseEnum()
	case token.TRAIT, token.INTERFAC:
		return p.parseTrait()
	case token.IMPL:
		return p.parseImpl()
	case token.MOD:
		return p.parseModule()
	case token.USE, token.IMPORT:
		return p.parseImport()
	case token.MINUS, token.PLUS, token.NOT, token.TILDE, token.AMP, token.STAR:
		p.advance()
		operand := p.parseExpression(UNARY)
		return &ast.Expr{Kind: ast.KindUnary, Op: tok.Type, Operand: operand, Span: ast.Span{Start: tok.Span.Start, End: p.cur.Span.End}}
	}

	p.fail("unexpected token "+string(tok.Type), nil, "skip token")
	if p.Recovery {
		g := newGhost(spanOf(tok), "unexpected_token")
		p.synchronize(nil)
		return g
	}
	p.advance()
	return nil
}

func spanOf(t token.Token) ast.Span { return ast.Span{Start: t.Span.Start, End: t.Span.End} }

func (p *Parser) parseLiteral() *ast.Expr {
	tok := p.cur
	p.advance()
	lit := &ast.Literal{}
	switch tok.Type {
	case token.INT:
		lit.Kind = ast.LitInt
		lit.Text = tok.Literal
		lit.Suffix = tok.Suffix
	case token.FLOAT:
		lit.Kind = ast.LitFloat
		lit.Text = tok.Literal
		lit.Suffix = tok.Suffix
	case token.STRING:
		lit.Kind = ast.LitString
		lit.Str = tok.Literal
	case token.CHAR:
		lit.Kind = ast.LitChar
		if len(tok.Literal) > 0 {
			lit.Ch = []rune(tok.Literal)[0]
		}
	case token.BYTE:
		lit.Kind = ast.LitByte
		if len(tok.Literal) > 0 {
			lit.By = tok.Literal[0]
		}
	case token.BOOL:
		lit.Kind = ast.LitBool
		lit.Bool = tok.Literal == "true"
	}
	return &ast.Expr{Kind: ast.KindLiteral, Literal: lit, Span: spanOf(tok)}
}

// parseFormatString re-parses each {expr} interpolation found inside the
// raw literal text by recursively invoking the main parser on the
// embedded source, per spec.md §4.1.
func (p *Parser) parseFormatString() *ast.Expr {
	tok := p.cur
	p.advance()
	parts := make([]ast.FormatPart, 0, 4)
	text := tok.Literal
	i := 0
	for i < len(text) {
		j := i
		for j < len(text) && text[j] != '{' {
			j++
		}
		if j > i {
			parts = append(parts, ast.FormatPart{Text: text[i:j]})
		}
		if j >= len(text) {
			break
		}
		depth := 1
		k := j + 1
		for k < len(text) && depth > 0 {
			if text[k] == '{' {
				depth++
			} else if text[k] == '}' {
				depth--
				if depth == 0 {
					break
				}
			}
			k++
		}
		inner := text[j+1 : k]
		sub := New(inner)
		expr := sub.parseExpression(LOWEST)
		parts = append(parts, ast.FormatPart{Expr: expr})
		i = k + 1
	}
	return &ast.Expr{Kind: ast.KindFormatString, FormatParts: parts, Span: spanOf(tok)}
}

func (p *Parser) parseConstructorCall() *ast.Expr {
	name := p.cur.Literal
	tok := p.cur
	p.advance()
	ident := &ast.Expr{Kind: ast.KindIdentifier, Name: name, Span: spanOf(tok)}
	if p.curIs(token.LPAREN) {
		return p.parseCall(ident)
	}
	return ident
}

func (p *Parser) parseIdentifierOrLambda() *ast.Expr {
	name := p.cur.Literal
	tok := p.cur
	p.advance()

	// Qualified path a::b::c
	if p.curIs(token.COLONCOLON) {
		path := []string{name}
		for p.curIs(token.COLONCOLON) {
			p.advance()
			path = append(path, p.cur.Literal)
			p.advance()
		}
		joined := path[0]
		for _, s := range path[1:] {
			joined += "::" + s
		}
		return &ast.Expr{Kind: ast.KindIdentifier, Name: joined, Span: spanOf(tok)}
	}

	if p.curIs(token.FATARROW) {
		p.advance()
		body := p.parseExpression(ASSIGNMENT + 1)
		return &ast.Expr{
			Kind:   ast.KindLambda,
			Params: []ast.Param{{Name: name}},
			Body:   body,
			Span:   ast.Span{Start: tok.Span.Start, End: p.cur.Span.End},
		}
	}
	return &ast.Expr{Kind: ast.KindIdentifier, Name: name, Span: spanOf(tok)}
}

// parseParenOrTuple handles (expr), (x, y) => body fat-arrow lambdas, and
// (a, b, c) tuple literals.
func (p *Parser) parseParenOrTuple() *ast.Expr {
	start := p.cur.Span.Start
	p.advance() // '('
	if p.curIs(token.RPAREN) {
		p.advance()
		if p.curIs(token.FATARROW) {
			p.advance()
			body := p.parseExpression(ASSIGNMENT + 1)
			return &ast.Expr{Kind: ast.KindLambda, Body: body, Span: ast.Span{Start: start, End: p.cur.Span.End}}
		}
		return &ast.Expr{Kind: ast.KindLiteral, Literal: &ast.Literal{Kind: ast.LitUnit}, Span: ast.Span{Start: start, End: p.cur.Span.End}}
	}

	items := make([]*ast.Expr, 0, 2)
	first := p.parseExpression(LOWEST)
	items = append(items, first)
	isTuple := false
	for p.curIs(token.COMMA) {
		isTuple = true
		p.advance()
		if p.curIs(token.RPAREN) {
			break
		}
		items = append(items, p.parseExpression(LOWEST))
	}
	p.expect(token.RPAREN)

	if p.curIs(token.FATARROW) && allIdentifiers(items) {
		p.advance()
		params := make([]ast.Param, len(items))
		for i, it := range items {
			params[i] = ast.Param{Name: it.Name}
		}
		body := p.parseExpression(ASSIGNMENT + 1)
		return &ast.Expr{Kind: ast.KindLambda, Params: params, Body: body, Span: ast.Span{Start: start, End: p.cur.Span.End}}
	}

	if isTuple {
		return &ast.Expr{Kind: ast.KindTuple, Items: items, Span: ast.Span{Start: start, End: p.cur.Span.End}}
	}
	return items[0]
}

func allIdentifiers(items []*ast.Expr) bool {
	for _, it := range items {
		if it.Kind != ast.KindIdentifier {
			return false
		}
	}
	return true
}

// parseListOrComprehension: a list literal is a comprehension if it
// contains a top-level `for` keyword (spec.md §4.2.3).
func (p *Parser) parseListOrComprehension() *ast.Expr {
	start := p.cur.Span.Start
	p.advance() // '['
	items := make([]*ast.Expr, 0, 4)
	for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
		items = append(items, p.parseExpression(ASSIGNMENT+1))
		if p.curIs(token.FOR) {
			// Comprehension: the mapped expression is folded into the
			// loop body and the whole thing is tagged so the evaluator
			// collects iterations into a list instead of discarding them.
			forTok := p.cur
			p.advance() // 'for'
			var pat ast.Pattern
			loopVar := ""
			if p.curIs(token.LPAREN) {
				pat = p.parsePattern()
			} else {
				loopVar = p.cur.Literal
				p.advance()
			}
			p.expect(token.IN)
			iter := p.parseExpression(ASSIGNMENT + 1)
			forExpr := &ast.Expr{Kind: ast.KindFor, LoopVar: loopVar, ForPat: pat, Iterator: iter, Body: items[len(items)-1], Attributes: []string{"comprehension"}, Span: spanOf(forTok)}
			p.expect(token.RBRACKET)
			return &ast.Expr{Kind: ast.KindList, Items: []*ast.Expr{forExpr}, Attributes: []string{"comprehension"}, Span: ast.Span{Start: start, End: p.cur.Span.End}}
		}
		if p.curIs(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBRACKET)
	return &ast.Expr{Kind: ast.KindList, Items: items, Span: ast.Span{Start: start, End: p.cur.Span.End}}
}

// parseBlock implements the `{ ... }` disambiguation policy (§4.2.3)
// for every caller, the bodies of if/while/fun and other keywords
// included: it inspects the first tokens to decide between struct
// literal (`ident :` or `"key" :` first), set literal (two or more
// comma-separated expressions with no `;`), and block. A keyword body
// is not forced to be a block.
func (p *Parser) parseBlock() *ast.Expr {
	start := p.cur.Span.Start
	p.advance() // '{'

	if p.curIs(token.RBRACE) {
		p.advance()
		return &ast.Expr{Kind: ast.KindBlock, Items: nil, Span: ast.Span{Start: start, End: p.cur.Span.End}}
	}

	// Struct literal: `ident : expr` immediately inside the braces.
	if (p.curIs(token.IDENT) || p.curIs(token.STRING)) && p.peekIs(token.COLON) {
		return p.parseObjectLiteral(start)
	}

	items := make([]*ast.Expr, 0, 4)
	isSet := true
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		e := p.parseExpression(LOWEST)
		items = append(items, e)
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		if p.curIs(token.SEMI) {
			isSet = false
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RBRACE)

	// A single bare expression in braces is documented as a block to
	// match the usual language intuition (spec.md Design Notes §9).
	if isSet && len(items) > 1 {
		return &ast.Expr{Kind: ast.KindList, Items: items, Attributes: []string{"set"}, Span: ast.Span{Start: start, End: p.cur.Span.End}}
	}
	return &ast.Expr{Kind: ast.KindBlock, Items: items, Span: ast.Span{Start: start, End: p.cur.Span.End}}
}

func (p *Parser) parseObjectLiteral(start int) *ast.Expr {
	fields := make([]ast.Field, 0, 4)
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		name := p.cur.Literal
		p.advance()
		p.expect(token.COLON)
		val := p.parseExpression(ASSIGNMENT + 1)
		fields = append(fields, ast.Field{Name: name, Value: val})
		if p.curIs(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBRACE)
	return &ast.Expr{Kind: ast.KindStruct, Fields: fields, Attributes: []string{"literal"}, Span: ast.Span{Start: start, End: p.cur.Span.End}}
}

func (p *Parser) parseLet() *ast.Expr {
	tok := p.cur
	isMut := tok.Type == token.VAR
	p.advance()
	if tok.Type == token.LET && p.curIs(token.MUT) {
		isMut = true
		p.advance()
	}

	// Destructuring let: `let (a, b) = ...` or `let [a, b] = ...`
	if p.curIs(token.LPAREN) || p.curIs(token.LBRACKET) {
		pat := p.parsePattern()
		p.expect(token.ASSIGN)
		val := p.parseExpression(ASSIGNMENT + 1)
		return &ast.Expr{Kind: ast.KindLetPattern, DestructPt: pat, Value: val, IsMutable: isMut, Span: spanOf(tok)}
	}

	name := p.cur.Literal
	p.advance()
	var typeAnn *ast.Type
	if p.curIs(token.COLON) {
		p.advance()
		typeAnn = p.parseType()
	}
	p.expect(token.ASSIGN)
	val := p.parseExpression(ASSIGNMENT + 1)

	e := &ast.Expr{Kind: ast.KindLet, Name: name, TypeAnn: typeAnn, Value: val, IsMutable: isMut, Span: ast.Span{Start: tok.Span.Start, End: p.cur.Span.End}}
	if p.curIs(token.ELSE) {
		p.advance()
		e.ElseBlock = p.parseBlock()
	}
	return e
}

func (p *Parser) parseType() *ast.Type {
	if p.curIs(token.AMP) {
		p.advance()
		isMut := false
		if p.curIs(token.MUT) {
			isMut = true
			p.advance()
		}
		inner := p.parseType()
		return &ast.Type{Kind: ast.TypeReference, IsMut: isMut, Elem: inner}
	}
	if p.curIs(token.LBRACKET) {
		p.advance()
		elem := p.parseType()
		p.expect(token.RBRACKET)
		return &ast.Type{Kind: ast.TypeList, Elem: elem}
	}
	if p.curIs(token.LPAREN) {
		p.advance()
		params := make([]*ast.Type, 0, 2)
		for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
			params = append(params, p.parseType())
			if p.curIs(token.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RPAREN)
		return &ast.Type{Kind: ast.TypeTuple, Params: params}
	}
	name := p.cur.Literal
	p.advance()
	base := &ast.Type{Kind: ast.TypeNamed, Name: name}
	if p.curIs(token.LT) {
		p.advance()
		params := make([]*ast.Type, 0, 2)
		for !p.curIs(token.GT) && !p.curIs(token.EOF) {
			params = append(params, p.parseType())
			if p.curIs(token.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.GT)
		return &ast.Type{Kind: ast.TypeGeneric, Base: base, Params: params}
	}
	if p.curIs(token.QUESTION) {
		p.advance()
		return &ast.Type{Kind: ast.TypeOptional, Elem: base}
	}
	return base
}

func (p *Parser) parseFunction(isAsync bool) *ast.Expr {
	tok := p.cur
	p.advance() // 'fun'
	name := ""
	if p.curIs(token.IDENT) {
		name = p.cur.Literal
		p.advance()
	}
	params := p.parseParamList()
	var ret *ast.Type
	if p.curIs(token.ARROW) {
		p.advance()
		ret = p.parseType()
	}
	body := p.parseBlock()
	return &ast.Expr{
		Kind: ast.KindFunction, Name: name, Params: params, ReturnType: ret,
		Body: body, IsAsync: isAsync, Span: ast.Span{Start: tok.Span.Start, End: p.cur.Span.End},
	}
}

func (p *Parser) parseParamList() []ast.Param {
	p.expect(token.LPAREN)
	params := make([]ast.Param, 0, 2)
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		name := p.cur.Literal
		p.advance()
		var ty *ast.Type
		if p.curIs(token.COLON) {
			p.advance()
			ty = p.parseType()
		}
		var def *ast.Expr
		if p.curIs(token.ASSIGN) {
			p.advance()
			def = p.parseExpression(ASSIGNMENT + 1)
		}
		params = append(params, ast.Param{Name: name, Type: ty, Default: def})
		if p.curIs(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)
	return params
}

func (p *Parser) parseIf() *ast.Expr {
	tok := p.cur
	p.advance() // 'if'
	if p.curIs(token.LET) {
		p.advance()
		pat := p.parsePattern()
		p.expect(token.ASSIGN)
		scrut := p.parseExpression(ASSIGNMENT + 1)
		then := p.parseBlock()
		e := &ast.Expr{Kind: ast.KindIfLet, LetPattern: pat, Value: scrut, Then: then, Span: spanOf(tok)}
		if p.curIs(token.ELSE) {
			p.advance()
			e.Else = p.parseElseBranch()
		}
		return e
	}
	cond := p.parseExpression(ASSIGNMENT + 1)
	then := p.parseBlock()
	e := &ast.Expr{Kind: ast.KindIf, Cond: cond, Then: then, Span: spanOf(tok)}
	if p.curIs(token.ELSE) {
		p.advance()
		e.Else = p.parseElseBranch()
	}
	return e
}

func (p *Parser) parseElseBranch() *ast.Expr {
	if p.curIs(token.IF) {
		return p.parseIf()
	}
	return p.parseBlock()
}

func (p *Parser) parseMatch() *ast.Expr {
	tok := p.cur
	p.advance() // 'match'
	scrutinee := p.parseExpression(ASSIGNMENT + 1)
	p.expect(token.LBRACE)
	arms := make([]ast.MatchArm, 0, 4)
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		armStart := p.cur.Span.Start
		pat := p.parsePattern()
		var guard *ast.Expr
		if p.curIs(token.IF) {
			p.advance()
			guard = p.parseExpression(ASSIGNMENT + 1)
		}
		p.expect(token.FATARROW)
		body := p.parseExpression(ASSIGNMENT + 1)
		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body, Span: ast.Span{Start: armStart, End: p.cur.Span.End}})
		if p.curIs(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RBRACE)
	return &ast.Expr{Kind: ast.KindMatch, Scrutinee: scrutinee, Arms: arms, Span: spanOf(tok)}
}

func (p *Parser) parseFor(label string) *ast.Expr {
	tok := p.cur
	p.advance() // 'for'
	var pat ast.Pattern
	var loopVar string
	if p.curIs(token.LPAREN) {
		pat = p.parsePattern()
	} else {
		loopVar = p.cur.Literal
		p.advance()
		for p.curIs(token.COMMA) {
			// `for a, b in pairs` tuple destructuring sugar (spec.md §8.3
			// scenario 6): fold into a Tuple pattern.
			if pat.Kind == ast.PatWildcard && loopVar != "" {
				pat = ast.Pattern{Kind: ast.PatTuple, Sub: []ast.Pattern{{Kind: ast.PatIdentifier, Name: loopVar}}}
				loopVar = ""
			}
			p.advance()
			name := p.cur.Literal
			p.advance()
			pat.Sub = append(pat.Sub, ast.Pattern{Kind: ast.PatIdentifier, Name: name})
		}
	}
	p.expect(token.IN)
	iter := p.parseExpression(ASSIGNMENT + 1)
	body := p.parseBlock()
	return &ast.Expr{Kind: ast.KindFor, Label: label, LoopVar: loopVar, ForPat: pat, Iterator: iter, Body: body, Span: spanOf(tok)}
}

func (p *Parser) parseWhile(label string) *ast.Expr {
	tok := p.cur
	p.advance() // 'while'
	if p.curIs(token.LET) {
		p.advance()
		pat := p.parsePattern()
		p.expect(token.ASSIGN)
		scrut := p.parseExpression(ASSIGNMENT + 1)
		body := p.parseBlock()
		return &ast.Expr{Kind: ast.KindWhileLet, Label: label, LetPattern: pat, Value: scrut, Body: body, Span: spanOf(tok)}
	}
	cond := p.parseExpression(ASSIGNMENT + 1)
	body := p.parseBlock()
	return &ast.Expr{Kind: ast.KindWhile, Label: label, Cond: cond, Body: body, Span: spanOf(tok)}
}

func (p *Parser) parseLoop(label string) *ast.Expr {
	tok := p.cur
	p.advance() // 'loop'
	body := p.parseBlock()
	return &ast.Expr{Kind: ast.KindLoop, Label: label, Body: body, Span: spanOf(tok)}
}

func (p *Parser) parseTryCatch() *ast.Expr {
	tok := p.cur
	p.advance() // 'try'
	body := p.parseBlock()
	p.expect(token.CATCH)
	name := ""
	if p.curIs(token.IDENT) {
		name = p.cur.Literal
		p.advance()
	}
	catchBody := p.parseBlock()
	return &ast.Expr{Kind: ast.KindTryCatch, TryBody: body, CatchName: name, CatchBody: catchBody, Span: spanOf(tok)}
}

func (p *Parser) parseStruct() *ast.Expr {
	tok := p.cur
	p.advance() // 'struct'
	name := p.cur.Literal
	p.advance()
	fields := make([]ast.Field, 0, 4)
	if p.curIs(token.LBRACE) {
		p.advance()
		for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
			fname := p.cur.Literal
			p.advance()
			var ty *ast.Type
			if p.curIs(token.COLON) {
				p.advance()
				ty = p.parseType()
			}
			fields = append(fields, ast.Field{Name: fname, Type: ty})
			if p.curIs(token.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RBRACE)
	}
	return &ast.Expr{Kind: ast.KindStruct, Name: name, Fields: fields, Span: spanOf(tok)}
}

func (p *Parser) parseEnum() *ast.Expr {
	tok := p.cur
	p.advance() // 'enum'
	name := p.cur.Literal
	p.advance()
	p.expect(token.LBRACE)
	variants := make([]ast.EnumVariant, 0, 4)
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		vname := p.cur.Literal
		p.advance()
		var fields []ast.Field
		if p.curIs(token.LPAREN) {
			p.advance()
			for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
				fields = append(fields, ast.Field{Type: p.parseType()})
				if p.curIs(token.COMMA) {
					p.advance()
				} else {
					break
				}
			}
			p.expect(token.RPAREN)
		}
		variants = append(variants, ast.EnumVariant{Name: vname, Fields: fields})
		if p.curIs(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RBRACE)
	return &ast.Expr{Kind: ast.KindEnum, Name: name, Variants: variants, Span: spanOf(tok)}
}

func (p *Parser) parseTrait() *ast.Expr {
	tok := p.cur
	p.advance()
	name := p.cur.Literal
	p.advance()
	body := p.parseBlock()
	return &ast.Expr{Kind: ast.KindTrait, Name: name, Methods: body.Items, Span: spanOf(tok)}
}

func (p *Parser) parseImpl() *ast.Expr {
	tok := p.cur
	p.advance() // 'impl'
	first := p.parseType()
	var traitName string
	var forType *ast.Type
	if p.curIs(token.FOR) {
		p.advance()
		traitName = first.Name
		forType = p.parseType()
	} else {
		forType = first
	}
	body := p.parseBlock()
	return &ast.Expr{Kind: ast.KindImpl, TraitName: traitName, ForType: forType, Methods: body.Items, Span: spanOf(tok)}
}

func (p *Parser) parseModule() *ast.Expr {
	tok := p.cur
	p.advance() // 'mod'
	name := p.cur.Literal
	p.advance()
	body := p.parseBlock()
	return &ast.Expr{Kind: ast.KindModule, Name: name, Body: body, Span: spanOf(tok)}
}

func (p *Parser) parseImport() *ast.Expr {
	tok := p.cur
	isUse := tok.Type == token.USE
	p.advance() // 'use'/'import'
	path := p.parseModulePath()

	if p.curIs(token.STAR) {
		p.advance()
		return &ast.Expr{Kind: ast.KindImportAll, ModulePath: path, Span: spanOf(tok)}
	}
	if p.curIs(token.LBRACE) {
		p.advance()
		items := make([]ast.ImportItem, 0, 4)
		for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
			name := p.cur.Literal
			p.advance()
			alias := ""
			if p.curIs(token.AS) {
				p.advance()
				alias = p.cur.Literal
				p.advance()
			}
			items = append(items, ast.ImportItem{Name: name, Alias: alias})
			if p.curIs(token.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RBRACE)
		return &ast.Expr{Kind: ast.KindImport, ModulePath: path, ImportItems: items, Span: spanOf(tok)}
	}
	alias := ""
	if p.curIs(token.AS) {
		p.advance()
		alias = p.cur.Literal
		p.advance()
	}
	if !isUse {
		return &ast.Expr{Kind: ast.KindImportAll, ModulePath: path, Alias: alias, Span: spanOf(tok)}
	}
	return &ast.Expr{Kind: ast.KindImport, ModulePath: path, Alias: alias, Span: spanOf(tok)}
}

func (p *Parser) parseModulePath() string {
	path := p.cur.Literal
	p.advance()
	for p.curIs(token.COLONCOLON) {
		if p.peekIs(token.LBRACE) || p.peekIs(token.STAR) {
			p.advance()
			break
		}
		p.advance()
		path += "::" + p.cur.Literal
		p.advance()
	}
	return path
}

// --- Patterns ---

func (p *Parser) parsePattern() ast.Pattern {
	pat := p.parsePrimaryPattern()
	if p.curIs(token.PIPE) {
		alts := []ast.Pattern{pat}
		for p.curIs(token.PIPE) {
			p.advance()
			alts = append(alts, p.parsePrimaryPattern())
		}
		p.checkOrPatternBindings(alts)
		return ast.Pattern{Kind: ast.PatOr, Sub: alts}
	}
	return pat
}

// checkOrPatternBindings enforces the or-pattern invariant: every
// alternative must bind the same set of names, so `A(n) | B(m)` is
// rejected rather than silently binding whichever alternative matched.
func (p *Parser) checkOrPatternBindings(alts []ast.Pattern) {
	first := boundPatternNames(alts[0])
	for _, alt := range alts[1:] {
		if !sameNameSet(first, boundPatternNames(alt)) {
			p.fail("or-pattern alternatives must bind the same set of names", nil,
				"each `|` alternative must introduce identical bindings")
			return
		}
	}
}

// boundPatternNames collects every name a pattern would bind on match.
func boundPatternNames(pat ast.Pattern) map[string]bool {
	names := map[string]bool{}
	collectBoundPatternNames(pat, names)
	return names
}

func collectBoundPatternNames(pat ast.Pattern, names map[string]bool) {
	switch pat.Kind {
	case ast.PatIdentifier, ast.PatRestNamed:
		if pat.Name != "" {
			names[pat.Name] = true
		}
	case ast.PatAtBinding:
		names[pat.Name] = true
		if pat.Inner != nil {
			collectBoundPatternNames(*pat.Inner, names)
		}
	case ast.PatMut, ast.PatWithDefault, ast.PatOk, ast.PatErr, ast.PatSome:
		if pat.Inner != nil {
			collectBoundPatternNames(*pat.Inner, names)
		}
	case ast.PatTuple, ast.PatList, ast.PatTupleVariant, ast.PatOr:
		for _, sub := range pat.Sub {
			collectBoundPatternNames(sub, names)
		}
	case ast.PatStruct:
		for _, f := range pat.StructFields {
			collectBoundPatternNames(f.Pattern, names)
		}
	}
}

func sameNameSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

func (p *Parser) parsePrimaryPattern() ast.Pattern {
	tok := p.cur
	switch tok.Type {
	case token.UNDERSCOR:
		p.advance()
		return ast.Pattern{Kind: ast.PatWildcard}
	case token.MUT:
		p.advance()
		inner := p.parsePrimaryPattern()
		return ast.Pattern{Kind: ast.PatMut, Inner: &inner}
	case token.DOTDOT:
		p.advance()
		return ast.Pattern{Kind: ast.PatRest}
	case token.INT, token.FLOAT, token.STRING, token.CHAR, token.BOOL:
		lit := p.parseLiteral()
		if p.curIs(token.DOTDOT) || p.curIs(token.DOTDOTEQ) {
			inclusive := p.curIs(token.DOTDOTEQ)
			p.advance()
			end := p.parseLiteral()
			return ast.Pattern{Kind: ast.PatRange, RangeStart: lit.Literal, RangeEnd: end.Literal, Inclusive: inclusive}
		}
		return ast.Pattern{Kind: ast.PatLiteral, Literal: lit.Literal}
	case token.SOME, token.OK, token.ERR:
		p.advance()
		var inner *ast.Pattern
		if p.curIs(token.LPAREN) {
			p.advance()
			in := p.parsePattern()
			inner = &in
			p.expect(token.RPAREN)
		}
		kind := ast.PatSome
		switch tok.Type {
		case token.OK:
			kind = ast.PatOk
		case token.ERR:
			kind = ast.PatErr
		}
		return ast.Pattern{Kind: kind, Inner: inner}
	case token.NONE:
		p.advance()
		return ast.Pattern{Kind: ast.PatNone}
	case token.LPAREN:
		p.advance()
		subs := make([]ast.Pattern, 0, 2)
		for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
			subs = append(subs, p.parsePattern())
			if p.curIs(token.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RPAREN)
		return ast.Pattern{Kind: ast.PatTuple, Sub: subs}
	case token.LBRACKET:
		p.advance()
		subs := make([]ast.Pattern, 0, 2)
		for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
			subs = append(subs, p.parsePattern())
			if p.curIs(token.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RBRACKET)
		return ast.Pattern{Kind: ast.PatList, Sub: subs}
	case token.IDENT:
		name := tok.Literal
		p.advance()
		if p.curIs(token.COLONCOLON) || p.curIs(token.LPAREN) {
			path := []string{name}
			for p.curIs(token.COLONCOLON) {
				p.advance()
				path = append(path, p.cur.Literal)
				p.advance()
			}
			if p.curIs(token.LPAREN) {
				p.advance()
				subs := make([]ast.Pattern, 0, 2)
				for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
					subs = append(subs, p.parsePattern())
					if p.curIs(token.COMMA) {
						p.advance()
					} else {
						break
					}
				}
				p.expect(token.RPAREN)
				return ast.Pattern{Kind: ast.PatTupleVariant, Path: path, Sub: subs}
			}
			return ast.Pattern{Kind: ast.PatQualifiedName, Path: path}
		}
		if p.curIs(token.AT) {
			p.advance()
			inner := p.parsePrimaryPattern()
			return ast.Pattern{Kind: ast.PatAtBinding, Name: name, Inner: &inner}
		}
		if p.curIs(token.LBRACE) {
			p.advance()
			fields := make([]ast.PatternField, 0, 4)
			hasRest := false
			for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
				if p.curIs(token.DOTDOT) {
					hasRest = true
					p.advance()
					break
				}
				fname := p.cur.Literal
				p.advance()
				fp := ast.Pattern{Kind: ast.PatIdentifier, Name: fname}
				if p.curIs(token.COLON) {
					p.advance()
					fp = p.parsePattern()
				}
				fields = append(fields, ast.PatternField{Name: fname, Pattern: fp})
				if p.curIs(token.COMMA) {
					p.advance()
				} else {
					break
				}
			}
			p.expect(token.RBRACE)
			return ast.Pattern{Kind: ast.PatStruct, Path: []string{name}, StructFields: fields, HasRest: hasRest}
		}
		return ast.Pattern{Kind: ast.PatIdentifier, Name: name}
	}
	p.fail("expected pattern, found "+string(tok.Type), nil, "")
	p.advance()
	return ast.Pattern{Kind: ast.PatWildcard}
}

// ParseInt parses a lexed integer literal's text (hex or decimal, with
// underscores removed) into its numeric value.
func ParseInt(text string) (int64, error) {
	clean := removeUnderscores(text)
	return strconv.ParseInt(clean, 0, 64)
}

func ParseFloat(text string) (float64, error) {
	return strconv.ParseFloat(removeUnderscores(text), 64)
}

func removeUnderscores(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
