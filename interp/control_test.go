package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/paiml/ruchy-sub007/ast"
	"github.com/paiml/ruchy-sub007/token"
	"github.com/paiml/ruchy-sub007/value"
)

func boolExpr(b bool) *ast.Expr {
	return &ast.Expr{Kind: ast.KindLiteral, Literal: &ast.Literal{Kind: ast.LitBool, Bool: b}}
}

func TestEvalIfBranches(t *testing.T) {
	env := value.NewEnv(nil)
	ifExpr := &ast.Expr{Kind: ast.KindIf, Cond: boolExpr(true), Then: intExpr(1), Else: intExpr(2)}
	v, err := Eval(ifExpr, env, newEvalCtx())
	assert.Nil(t, err)
	assert.Equal(t, value.Int(1), v)

	ifExpr.Cond = boolExpr(false)
	v, err = Eval(ifExpr, env, newEvalCtx())
	assert.Nil(t, err)
	assert.Equal(t, value.Int(2), v)
}

func TestEvalMatchFirstMatchingArmWins(t *testing.T) {
	env := value.NewEnv(nil)
	m := &ast.Expr{
		Kind:      ast.KindMatch,
		Scrutinee: intExpr(2),
		Arms: []ast.MatchArm{
			{Pattern: ast.Pattern{Kind: ast.PatLiteral, Literal: intLit(1)}, Body: intExpr(100)},
			{Pattern: ast.Pattern{Kind: ast.PatIdentifier, Name: "n"}, Body: identExpr("n")},
		},
	}
	v, err := Eval(m, env, newEvalCtx())
	assert.Nil(t, err)
	assert.Equal(t, value.Int(2), v)
}

func TestEvalMatchGuardSkipsNonMatchingArm(t *testing.T) {
	env := value.NewEnv(nil)
	m := &ast.Expr{
		Kind:      ast.KindMatch,
		Scrutinee: intExpr(4),
		Arms: []ast.MatchArm{
			{
				Pattern: ast.Pattern{Kind: ast.PatIdentifier, Name: "n"},
				Guard:   &ast.Expr{Kind: ast.KindBinary, Op: token.LT, Left: identExpr("n"), Right: intExpr(2)},
				Body:    intExpr(111),
			},
			{Pattern: ast.Pattern{Kind: ast.PatWildcard}, Body: intExpr(222)},
		},
	}
	v, err := Eval(m, env, newEvalCtx())
	assert.Nil(t, err)
	assert.Equal(t, value.Int(222), v)
}

func TestEvalMatchNoArmFails(t *testing.T) {
	env := value.NewEnv(nil)
	m := &ast.Expr{
		Kind:      ast.KindMatch,
		Scrutinee: intExpr(9),
		Arms: []ast.MatchArm{
			{Pattern: ast.Pattern{Kind: ast.PatLiteral, Literal: intLit(1)}, Body: intExpr(1)},
		},
	}
	_, err := Eval(m, env, newEvalCtx())
	assert.NotNil(t, err)
}

func TestEvalForLoopBreakWithValue(t *testing.T) {
	env := value.NewEnv(nil)
	list := &ast.Expr{Kind: ast.KindList, Items: []*ast.Expr{intExpr(1), intExpr(2), intExpr(3)}}
	breakWhen2 := &ast.Expr{
		Kind: ast.KindIf,
		Cond: &ast.Expr{Kind: ast.KindBinary, Op: token.EQ, Left: identExpr("x"), Right: intExpr(2)},
		Then: &ast.Expr{Kind: ast.KindBreak, Value: intExpr(42)},
		Else: identExpr("x"),
	}
	forExpr := &ast.Expr{Kind: ast.KindFor, LoopVar: "x", Iterator: list, Body: breakWhen2}
	v, err := Eval(forExpr, env, newEvalCtx())
	assert.Nil(t, err)
	assert.Equal(t, value.Int(42), v)
}

func TestEvalForRangeExceedsCapFails(t *testing.T) {
	env := value.NewEnv(nil)
	ctx := newEvalCtx()
	ctx.RangeCap = 5
	rangeExpr := &ast.Expr{Kind: ast.KindBinary, Op: token.DOTDOT, Left: intExpr(0), Right: intExpr(100)}
	forExpr := &ast.Expr{Kind: ast.KindFor, LoopVar: "x", Iterator: rangeExpr, Body: identExpr("x")}
	_, err := Eval(forExpr, env, ctx)
	assert.NotNil(t, err)
}

func TestEvalWhileLoop(t *testing.T) {
	env := value.NewEnv(nil)
	env.Bind("i", value.Int(0), true)
	cond := &ast.Expr{Kind: ast.KindBinary, Op: token.LT, Left: identExpr("i"), Right: intExpr(3)}
	body := &ast.Expr{Kind: ast.KindBinary, Op: token.PLUS_ASSIGN, Left: identExpr("i"), Right: intExpr(1)}
	w := &ast.Expr{Kind: ast.KindWhile, Cond: cond, Body: body}
	_, err := Eval(w, env, newEvalCtx())
	assert.Nil(t, err)
	cell, _ := env.LookUp("i")
	assert.Equal(t, value.Int(3), cell.Value)
}

func TestEvalTryCatchHandlesThrow(t *testing.T) {
	env := value.NewEnv(nil)
	tc := &ast.Expr{
		Kind:      ast.KindTryCatch,
		TryBody:   &ast.Expr{Kind: ast.KindThrow, Value: intExpr(13)},
		CatchName: "e",
		CatchBody: identExpr("e"),
	}
	v, err := Eval(tc, env, newEvalCtx())
	assert.Nil(t, err)
	assert.Equal(t, value.Int(13), v)
}

func TestEvalTryCatchPassesThroughNonThrowFailure(t *testing.T) {
	env := value.NewEnv(nil)
	tc := &ast.Expr{
		Kind:      ast.KindTryCatch,
		TryBody:   identExpr("undefined_name"),
		CatchName: "e",
		CatchBody: identExpr("e"),
	}
	_, err := Eval(tc, env, newEvalCtx())
	assert.NotNil(t, err)
}
