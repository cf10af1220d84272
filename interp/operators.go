package interp

import (
	"math"

	"github.com/paiml/ruchy-sub007/ast"
	"github.com/paiml/ruchy-sub007/token"
	"github.com/paiml/ruchy-sub007/value"
)

func evalUnary(expr *ast.Expr, env *value.Env, ctx *Context) (value.Value, *EvalError) {
	switch expr.Op {
	case token.QUESTION:
		// Try-operator: propagate Err/None, unwrap Ok/Some (spec.md §3.2
		// glossary "? operator").
		v, err := Eval(expr.Operand, env, ctx)
		if err != nil {
			return value.Nil(), err
		}
		if v.Kind == value.KindEnumVariant {
			switch v.VariantName {
			case "Err", "None":
				return value.Nil(), returnSignal(v)
			case "Ok", "Some":
				if len(v.Payload) == 1 {
					return v.Payload[0], nil
				}
				return value.Unit(), nil
			}
		}
		return v, nil
	case token.PLUSPLUS, token.MINUSM:
		return evalIncDec(expr, env, ctx)
	}

	v, err := Eval(expr.Operand, env, ctx)
	if err != nil {
		return value.Nil(), err
	}
	switch expr.Op {
	case token.MINUS:
		switch v.Kind {
		case value.KindInteger:
			return value.Int(-v.Integer), nil
		case value.KindFloat:
			return value.Float64(-v.Float), nil
		}
		return value.Nil(), Fail("unary '-' requires a numeric operand")
	case token.PLUS:
		if v.Kind != value.KindInteger && v.Kind != value.KindFloat {
			return value.Nil(), Fail("unary '+' requires a numeric operand")
		}
		return v, nil
	case token.NOT:
		if v.Kind != value.KindBool {
			return value.Nil(), Fail("'!' requires a boolean operand")
		}
		return value.Bool(!v.Bool), nil
	case token.TILDE:
		if v.Kind != value.KindInteger {
			return value.Nil(), Fail("'~' requires an integer operand")
		}
		return value.Int(^v.Integer), nil
	case token.STAR, token.AMP:
		// Deref/ref are transparent in a value-semantics evaluator.
		return v, nil
	}
	return value.Nil(), Fail("unsupported unary operator %s", expr.Op)
}

func evalIncDec(expr *ast.Expr, env *value.Env, ctx *Context) (value.Value, *EvalError) {
	if expr.Operand.Kind != ast.KindIdentifier {
		return value.Nil(), Fail("%s requires an identifier operand", expr.Op)
	}
	cell, ok := env.LookUp(expr.Operand.Name)
	if !ok {
		return value.Nil(), Fail("undefined identifier: %s", expr.Operand.Name)
	}
	if cell.Value.Kind != value.KindInteger {
		return value.Nil(), Fail("%s requires an integer binding", expr.Op)
	}
	delta := int64(1)
	if expr.Op == token.MINUSM {
		delta = -1
	}
	cell.Value = value.Int(cell.Value.Integer + delta)
	return cell.Value, nil
}

func evalBinary(expr *ast.Expr, env *value.Env, ctx *Context) (value.Value, *EvalError) {
	switch expr.Op {
	case token.ASSIGN:
		return evalAssign(expr, env, ctx)
	case token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN,
		token.PCT_ASSIGN, token.AMP_ASSIGN, token.PIPE_ASSIGN, token.CARET_ASSIGN,
		token.SHL_ASSIGN, token.SHR_ASSIGN:
		return evalCompoundAssign(expr, env, ctx)
	case token.ANDAND:
		left, err := Eval(expr.Left, env, ctx)
		if err != nil {
			return value.Nil(), err
		}
		if left.Kind != value.KindBool {
			return value.Nil(), Fail("'&&' requires boolean operands")
		}
		if !left.Bool {
			return left, nil
		}
		return Eval(expr.Right, env, ctx)
	case token.OROR:
		left, err := Eval(expr.Left, env, ctx)
		if err != nil {
			return value.Nil(), err
		}
		if left.Kind != value.KindBool {
			return value.Nil(), Fail("'||' requires boolean operands")
		}
		if left.Bool {
			return left, nil
		}
		return Eval(expr.Right, env, ctx)
	case token.QUESTQ:
		left, err := Eval(expr.Left, env, ctx)
		if err != nil {
			return value.Nil(), err
		}
		if left.Kind == value.KindNil || (left.Kind == value.KindEnumVariant && left.VariantName == "None") {
			return Eval(expr.Right, env, ctx)
		}
		return left, nil
	case token.PIPEGT:
		left, err := Eval(expr.Left, env, ctx)
		if err != nil {
			return value.Nil(), err
		}
		return applyPipeline(left, expr.Right, env, ctx)
	}

	left, err := Eval(expr.Left, env, ctx)
	if err != nil {
		return value.Nil(), err
	}
	right, err := Eval(expr.Right, env, ctx)
	if err != nil {
		return value.Nil(), err
	}
	return applyBinaryOp(expr.Op, left, right)
}

// applyPipeline evaluates `left |> f(args...)` as `f(left, args...)`,
// or `left |> f` as `f(left)` when the right side is a bare callee.
func applyPipeline(left value.Value, rhs *ast.Expr, env *value.Env, ctx *Context) (value.Value, *EvalError) {
	if rhs.Kind == ast.KindCall {
		callee, err := Eval(rhs.Callee, env, ctx)
		if err != nil {
			return value.Nil(), err
		}
		args := make([]value.Value, 0, len(rhs.Args)+1)
		args = append(args, left)
		for _, a := range rhs.Args {
			av, err := Eval(a, env, ctx)
			if err != nil {
				return value.Nil(), err
			}
			args = append(args, av)
		}
		return applyCallable(callee, args, ctx)
	}
	callee, err := Eval(rhs, env, ctx)
	if err != nil {
		return value.Nil(), err
	}
	return applyCallable(callee, []value.Value{left}, ctx)
}

func evalAssign(expr *ast.Expr, env *value.Env, ctx *Context) (value.Value, *EvalError) {
	v, err := Eval(expr.Right, env, ctx)
	if err != nil {
		return value.Nil(), err
	}
	if expr.Left.Kind != ast.KindIdentifier {
		return value.Nil(), Fail("left-hand side of assignment must be an identifier")
	}
	if !env.Assign(expr.Left.Name, v) {
		return value.Nil(), Fail("undefined identifier: %s", expr.Left.Name)
	}
	return v, nil
}

func evalCompoundAssign(expr *ast.Expr, env *value.Env, ctx *Context) (value.Value, *EvalError) {
	if expr.Left.Kind != ast.KindIdentifier {
		return value.Nil(), Fail("left-hand side of compound assignment must be an identifier")
	}
	cell, ok := env.LookUp(expr.Left.Name)
	if !ok {
		return value.Nil(), Fail("undefined identifier: %s", expr.Left.Name)
	}
	rhs, err := Eval(expr.Right, env, ctx)
	if err != nil {
		return value.Nil(), err
	}
	baseOp := map[token.Type]token.Type{
		token.PLUS_ASSIGN: token.PLUS, token.MINUS_ASSIGN: token.MINUS,
		token.STAR_ASSIGN: token.STAR, token.SLASH_ASSIGN: token.SLASH,
		token.PCT_ASSIGN: token.PERCENT, token.AMP_ASSIGN: token.AMP,
		token.PIPE_ASSIGN: token.PIPE, token.CARET_ASSIGN: token.CARET,
		token.SHL_ASSIGN: token.SHL, token.SHR_ASSIGN: token.SHR,
	}[expr.Op]
	result, e := applyBinaryOp(baseOp, cell.Value, rhs)
	if e != nil {
		return value.Nil(), e
	}
	cell.Value = result
	return result, nil
}

func applyBinaryOp(op token.Type, left, right value.Value) (value.Value, *EvalError) {
	switch op {
	case token.PLUS:
		return applyPlus(left, right)
	case token.MINUS, token.STAR, token.SLASH, token.PERCENT, token.POW:
		return applyArith(op, left, right)
	case token.EQ:
		return value.Bool(value.Equal(left, right)), nil
	case token.NE:
		return value.Bool(!value.Equal(left, right)), nil
	case token.LT, token.LE, token.GT, token.GE:
		return applyCompare(op, left, right)
	case token.AMP, token.PIPE, token.CARET, token.SHL, token.SHR:
		return applyBitwise(op, left, right)
	case token.DOTDOT, token.DOTDOTEQ:
		if left.Kind != value.KindInteger || right.Kind != value.KindInteger {
			return value.Nil(), Fail("range bounds must be integers")
		}
		return value.Value{Kind: value.KindRange, RangeStart: left.Integer, RangeEnd: right.Integer, Inclusive: op == token.DOTDOTEQ}, nil
	}
	return value.Nil(), Fail("unsupported binary operator %s", op)
}

func applyPlus(left, right value.Value) (value.Value, *EvalError) {
	switch {
	case left.Kind == value.KindString && right.Kind == value.KindString:
		return value.Str(left.Str + right.Str), nil
	case left.Kind == value.KindString && right.Kind == value.KindInteger:
		if right.Integer < 0 {
			return value.Nil(), Fail("string repeat count must be non-negative")
		}
		out := ""
		for i := int64(0); i < right.Integer; i++ {
			out += left.Str
		}
		return value.Str(out), nil
	case left.Kind == value.KindList && right.Kind == value.KindList:
		out := make([]value.Value, 0, len(left.List)+len(right.List))
		out = append(out, left.List...)
		out = append(out, right.List...)
		return value.List(out), nil
	}
	return applyArith(token.PLUS, left, right)
}

func applyArith(op token.Type, left, right value.Value) (value.Value, *EvalError) {
	if left.Kind != value.KindInteger && left.Kind != value.KindFloat {
		return value.Nil(), Fail("arithmetic requires numeric operands, got %s", value.TypeName(left))
	}
	if right.Kind != value.KindInteger && right.Kind != value.KindFloat {
		return value.Nil(), Fail("arithmetic requires numeric operands, got %s", value.TypeName(right))
	}
	if left.Kind == value.KindInteger && right.Kind == value.KindInteger {
		a, b := left.Integer, right.Integer
		switch op {
		case token.PLUS:
			return value.Int(a + b), nil
		case token.MINUS:
			return value.Int(a - b), nil
		case token.STAR:
			return value.Int(a * b), nil
		case token.SLASH:
			if b == 0 {
				return value.Nil(), Fail("division by zero")
			}
			return value.Int(a / b), nil
		case token.PERCENT:
			if b == 0 {
				return value.Nil(), Fail("modulo by zero")
			}
			return value.Int(a % b), nil
		case token.POW:
			if b < 0 {
				return value.Nil(), Fail("'**' with negative integer exponent is undefined for integers")
			}
			return value.Int(intPow(a, b)), nil
		}
	}
	a, b := toFloat(left), toFloat(right)
	switch op {
	case token.PLUS:
		return value.Float64(a + b), nil
	case token.MINUS:
		return value.Float64(a - b), nil
	case token.STAR:
		return value.Float64(a * b), nil
	case token.SLASH:
		if b == 0 {
			return value.Nil(), Fail("division by zero")
		}
		return value.Float64(a / b), nil
	case token.PERCENT:
		if b == 0 {
			return value.Nil(), Fail("modulo by zero")
		}
		return value.Float64(math.Mod(a, b)), nil
	case token.POW:
		return value.Float64(math.Pow(a, b)), nil
	}
	return value.Nil(), Fail("unsupported arithmetic operator %s", op)
}

func intPow(base, exp int64) int64 {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func toFloat(v value.Value) float64 {
	if v.Kind == value.KindInteger {
		return float64(v.Integer)
	}
	return v.Float
}

func applyCompare(op token.Type, left, right value.Value) (value.Value, *EvalError) {
	var cmp int
	switch {
	case (left.Kind == value.KindInteger || left.Kind == value.KindFloat) &&
		(right.Kind == value.KindInteger || right.Kind == value.KindFloat):
		a, b := toFloat(left), toFloat(right)
		cmp = compareFloat(a, b)
	case left.Kind == value.KindString && right.Kind == value.KindString:
		cmp = compareString(left.Str, right.Str)
	default:
		return value.Nil(), Fail("comparison requires two numeric or two string operands")
	}
	switch op {
	case token.LT:
		return value.Bool(cmp < 0), nil
	case token.LE:
		return value.Bool(cmp <= 0), nil
	case token.GT:
		return value.Bool(cmp > 0), nil
	case token.GE:
		return value.Bool(cmp >= 0), nil
	}
	return value.Nil(), Fail("unsupported comparison operator %s", op)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func applyBitwise(op token.Type, left, right value.Value) (value.Value, *EvalError) {
	if left.Kind != value.KindInteger || right.Kind != value.KindInteger {
		return value.Nil(), Fail("bitwise/shift operators require integer operands")
	}
	a, b := left.Integer, right.Integer
	switch op {
	case token.AMP:
		return value.Int(a & b), nil
	case token.PIPE:
		return value.Int(a | b), nil
	case token.CARET:
		return value.Int(a ^ b), nil
	case token.SHL, token.SHR:
		if b < 0 || b > 63 {
			return value.Nil(), Fail("shift amount out of range [0, 63]")
		}
		if op == token.SHL {
			return value.Int(a << uint(b)), nil
		}
		return value.Int(a >> uint(b)), nil
	}
	return value.Nil(), Fail("unsupported bitwise operator %s", op)
}
