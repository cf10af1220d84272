package parser

import (
	"testing"

	"github.com/paiml/ruchy-sub007/ast"
	"github.com/paiml/ruchy-sub007/token"
	"github.com/stretchr/testify/assert"
)

func TestParser_Precedence(t *testing.T) {
	p := New(`1 + 2 * 3`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.KindBinary, expr.Kind)
	assert.Equal(t, token.PLUS, expr.Op)
	assert.Equal(t, ast.KindBinary, expr.Right.Kind)
	assert.Equal(t, token.STAR, expr.Right.Op)
}

func TestParser_PowerRightAssociative(t *testing.T) {
	p := New(`2 ** 3 ** 2`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, token.POW, expr.Op)
	assert.Equal(t, ast.KindLiteral, expr.Left.Kind)
	assert.Equal(t, ast.KindBinary, expr.Right.Kind)
}

func TestParser_AssignmentRightAssociative(t *testing.T) {
	p := New(`a = b = 3`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, token.ASSIGN, expr.Op)
	assert.Equal(t, "a", expr.Left.Name)
	assert.Equal(t, token.ASSIGN, expr.Right.Op)
}

func TestParser_Let(t *testing.T) {
	p := New(`let x = 10`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.KindLet, expr.Kind)
	assert.Equal(t, "x", expr.Name)
	assert.Equal(t, ast.LitInt, expr.Value.Literal.Kind)
	assert.Equal(t, "10", expr.Value.Literal.Text)
}

func TestParser_LetMut(t *testing.T) {
	p := New(`let mut x = 1`)
	expr := p.parseExpression(LOWEST)
	assert.True(t, expr.IsMutable)
}

func TestParser_Function(t *testing.T) {
	p := New(`fun add(a: Int, b: Int) -> Int { a + b }`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.KindFunction, expr.Kind)
	assert.Equal(t, "add", expr.Name)
	assert.Len(t, expr.Params, 2)
	assert.Equal(t, "Int", expr.ReturnType.Name)
	assert.Equal(t, ast.KindBlock, expr.Body.Kind)
}

func TestParser_Lambda(t *testing.T) {
	p := New(`x => x * 2`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.KindLambda, expr.Kind)
	assert.Len(t, expr.Params, 1)
	assert.Equal(t, "x", expr.Params[0].Name)
}

func TestParser_MultiParamLambda(t *testing.T) {
	p := New(`(x, y) => x + y`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.KindLambda, expr.Kind)
	assert.Len(t, expr.Params, 2)
}

func TestParser_If(t *testing.T) {
	p := New(`if x > 0 { 1 } else { 2 }`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.KindIf, expr.Kind)
	assert.Equal(t, token.GT, expr.Cond.Op)
	assert.NotNil(t, expr.Else)
}

func TestParser_IfLet(t *testing.T) {
	p := New(`if let Some(x) = maybe { x } else { 0 }`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.KindIfLet, expr.Kind)
	assert.Equal(t, ast.PatSome, expr.LetPattern.Kind)
}

func TestParser_Match(t *testing.T) {
	p := New(`match n { 0 => "zero", x if x > 0 => "pos", _ => "neg" }`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.KindMatch, expr.Kind)
	assert.Len(t, expr.Arms, 3)
	assert.NotNil(t, expr.Arms[1].Guard)
	assert.Equal(t, ast.PatWildcard, expr.Arms[2].Pattern.Kind)
}

func TestParser_MatchOrPattern(t *testing.T) {
	p := New(`match n { 1 | 2 | 3 => "small", _ => "big" }`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.PatOr, expr.Arms[0].Pattern.Kind)
	assert.Len(t, expr.Arms[0].Pattern.Sub, 3)
}

func TestParser_MatchOrPatternMismatchedBindingsIsRejected(t *testing.T) {
	p := New(`match n { A(n) | B(m) => n, _ => 0 }`)
	p.parseExpression(LOWEST)
	assert.NotEmpty(t, p.Diagnostics)
}

func TestParser_MatchOrPatternSameBindingsAccepted(t *testing.T) {
	p := New(`match n { A(x) | B(x) => x, _ => 0 }`)
	p.parseExpression(LOWEST)
	assert.Empty(t, p.Diagnostics)
}

func TestParser_For(t *testing.T) {
	p := New(`for x in [1, 2, 3] { x }`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.KindFor, expr.Kind)
	assert.Equal(t, "x", expr.LoopVar)
	assert.Equal(t, ast.KindList, expr.Iterator.Kind)
}

func TestParser_WhileLet(t *testing.T) {
	p := New(`while let Some(x) = next() { x }`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.KindWhileLet, expr.Kind)
}

func TestParser_LabeledLoop(t *testing.T) {
	p := New(`'outer: loop { break 'outer }`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.KindLoop, expr.Kind)
	assert.Equal(t, "outer", expr.Label)
	assert.Equal(t, "outer", expr.Body.Items[0].Label)
}

func TestParser_ListLiteral(t *testing.T) {
	p := New(`[1, 2, 3]`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.KindList, expr.Kind)
	assert.Len(t, expr.Items, 3)
}

func TestParser_Comprehension(t *testing.T) {
	p := New(`[x * 2 for x in nums]`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.KindList, expr.Kind)
	assert.Contains(t, expr.Attributes, "comprehension")
}

func TestParser_TupleLiteral(t *testing.T) {
	p := New(`(1, 2, 3)`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.KindTuple, expr.Kind)
	assert.Len(t, expr.Items, 3)
}

func TestParser_ParenGroupingIsNotTuple(t *testing.T) {
	p := New(`(1 + 2) * 3`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.KindBinary, expr.Kind)
	assert.Equal(t, token.STAR, expr.Op)
}

func TestParser_StructLiteral(t *testing.T) {
	p := New(`{ x: 1, y: 2 }`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.KindStruct, expr.Kind)
	assert.Len(t, expr.Fields, 2)
}

func TestParser_SetLiteral(t *testing.T) {
	p := New(`{1, 2, 3}`)
	expr := p.parseExpression(LOWEST)
	assert.Contains(t, expr.Attributes, "set")
}

func TestParser_BlockIsSemicolonSeparated(t *testing.T) {
	p := New(`{ let x = 1; x + 1 }`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.KindBlock, expr.Kind)
	assert.Len(t, expr.Items, 2)
}

func TestParser_MethodCallAndFieldAccess(t *testing.T) {
	p := New(`obj.field.method(1, 2)`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.KindMethodCall, expr.Kind)
	assert.Equal(t, "method", expr.Method)
	assert.Len(t, expr.Args, 2)
	assert.Equal(t, ast.KindFieldAccess, expr.Object.Kind)
}

func TestParser_PipelineOperator(t *testing.T) {
	p := New(`x |> f |> g`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, token.PIPEGT, expr.Op)
}

func TestParser_FormatString(t *testing.T) {
	p := New(`f"hi {name}"`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.KindFormatString, expr.Kind)
	assert.Len(t, expr.FormatParts, 2)
	assert.Equal(t, "name", expr.FormatParts[1].Expr.Name)
}

func TestParser_EnumDefinition(t *testing.T) {
	p := New(`enum Shape { Circle(Float), Square(Float), Point }`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.KindEnum, expr.Kind)
	assert.Len(t, expr.Variants, 3)
	assert.Len(t, expr.Variants[0].Fields, 1)
}

func TestParser_StructDefinition(t *testing.T) {
	p := New(`struct Point { x: Int, y: Int }`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.KindStruct, expr.Kind)
	assert.Equal(t, "Point", expr.Name)
	assert.Len(t, expr.Fields, 2)
}

func TestParser_Import(t *testing.T) {
	p := New(`use math::{sqrt, pow}`)
	expr := p.parseExpression(LOWEST)
	assert.Equal(t, ast.KindImport, expr.Kind)
	assert.Equal(t, "math", expr.ModulePath)
	assert.Len(t, expr.ImportItems, 2)
}

func TestParser_RecoveryInsertsGhostAndContinues(t *testing.T) {
	p := NewRecovery(`let x = ; let y = 2`)
	prog := p.Parse()
	assert.True(t, p.PartialAST)
	assert.NotEmpty(t, p.Diagnostics)
	// Parsing continued past the error and recovered the second statement.
	assert.Equal(t, "y", prog.Items[len(prog.Items)-1].Name)
}

func TestParser_RecoveryNeverLoops(t *testing.T) {
	p := NewRecovery(`@ @ @ @`)
	prog := p.Parse()
	assert.True(t, p.PartialAST)
	assert.NotEmpty(t, prog.Items)
}

func TestParser_Program(t *testing.T) {
	p := New(`let x = 1; let y = 2; x + y`)
	prog := p.Parse()
	assert.Len(t, prog.Items, 3)
}
