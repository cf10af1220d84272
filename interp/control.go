package interp

import (
	"github.com/paiml/ruchy-sub007/ast"
	"github.com/paiml/ruchy-sub007/value"
)

func evalIf(expr *ast.Expr, env *value.Env, ctx *Context) (value.Value, *EvalError) {
	cond, err := Eval(expr.Cond, env, ctx)
	if err != nil {
		return value.Nil(), err
	}
	if cond.Kind != value.KindBool {
		return value.Nil(), Fail("if condition must be a boolean")
	}
	if cond.Bool {
		return Eval(expr.Then, value.NewEnv(env), ctx)
	}
	if expr.Else != nil {
		return Eval(expr.Else, value.NewEnv(env), ctx)
	}
	return value.Unit(), nil
}

func evalIfLet(expr *ast.Expr, env *value.Env, ctx *Context) (value.Value, *EvalError) {
	scrutinee, err := Eval(expr.Value, env, ctx)
	if err != nil {
		return value.Nil(), err
	}
	binds, ok := Unify(expr.LetPattern, scrutinee)
	if ok {
		inner := value.NewEnv(env)
		for name, v := range binds {
			inner.Bind(name, v, false)
		}
		return Eval(expr.Then, inner, ctx)
	}
	if expr.Else != nil {
		return Eval(expr.Else, value.NewEnv(env), ctx)
	}
	return value.Unit(), nil
}

func evalMatch(expr *ast.Expr, env *value.Env, ctx *Context) (value.Value, *EvalError) {
	scrutinee, err := Eval(expr.Scrutinee, env, ctx)
	if err != nil {
		return value.Nil(), err
	}
	for _, arm := range expr.Arms {
		binds, ok := Unify(arm.Pattern, scrutinee)
		if !ok {
			continue
		}
		inner := value.NewEnv(env)
		for name, v := range binds {
			inner.Bind(name, v, false)
		}
		if arm.Guard != nil {
			g, gerr := Eval(arm.Guard, inner, ctx)
			if gerr != nil {
				return value.Nil(), gerr
			}
			if g.Kind != value.KindBool || !g.Bool {
				continue
			}
		}
		return Eval(arm.Body, inner, ctx)
	}
	return value.Nil(), Fail("no match arm matched the value")
}

// iterableItems expands an iterator expression's value into the
// sequence `for` walks: list/tuple elements, a range's integers
// (materialized up to ctx.RangeCap), or a string's characters
// (spec.md §4.3.3).
func iterableItems(v value.Value, ctx *Context) ([]value.Value, *EvalError) {
	switch v.Kind {
	case value.KindList:
		return v.List, nil
	case value.KindTuple:
		return v.Tuple, nil
	case value.KindString:
		runes := []rune(v.Str)
		items := make([]value.Value, len(runes))
		for i, r := range runes {
			items[i] = value.CharVal(r)
		}
		return items, nil
	case value.KindRange:
		hi := v.RangeEnd
		if v.Inclusive {
			hi++
		}
		n := hi - v.RangeStart
		if n < 0 {
			n = 0
		}
		if n > int64(ctx.RangeCap) {
			return nil, Fail("range materialization exceeds safety cap of %d", ctx.RangeCap)
		}
		items := make([]value.Value, 0, n)
		for i := v.RangeStart; i < hi; i++ {
			items = append(items, value.Int(i))
		}
		return items, nil
	}
	return nil, Fail("value of kind %s is not iterable", value.TypeName(v))
}

func evalFor(expr *ast.Expr, env *value.Env, ctx *Context) (value.Value, *EvalError) {
	iterV, err := Eval(expr.Iterator, env, ctx)
	if err != nil {
		return value.Nil(), err
	}
	items, err := iterableItems(iterV, ctx)
	if err != nil {
		return value.Nil(), err
	}

	collect := len(expr.Attributes) > 0 && hasAttr(expr.Attributes, "comprehension")
	var collected []value.Value
	result := value.Unit()
	iterations := 0
	for _, item := range items {
		iterations++
		if iterations > ctx.MaxIterations {
			return value.Nil(), Fail("loop exceeded maximum iteration count of %d", ctx.MaxIterations)
		}
		inner := value.NewEnv(env)
		if expr.LoopVar != "" {
			inner.Bind(expr.LoopVar, item, false)
		} else {
			binds, ok := Unify(expr.ForPat, item)
			if !ok {
				return value.Nil(), Fail("for-loop destructuring pattern did not match item")
			}
			for name, v := range binds {
				inner.Bind(name, v, false)
			}
		}
		v, berr := Eval(expr.Body, inner, ctx)
		if berr != nil {
			switch berr.Kind {
			case ErrBreak:
				if berr.Label == "" || berr.Label == expr.Label {
					if collect {
						return value.List(collected), nil
					}
					return berr.Value, nil
				}
				return value.Nil(), berr
			case ErrContinue:
				if berr.Label == "" || berr.Label == expr.Label {
					continue
				}
				return value.Nil(), berr
			default:
				return value.Nil(), berr
			}
		}
		if collect {
			collected = append(collected, v)
		}
		result = v
	}
	if collect {
		return value.List(collected), nil
	}
	return result, nil
}

func hasAttr(attrs []string, name string) bool {
	for _, a := range attrs {
		if a == name {
			return true
		}
	}
	return false
}

func evalWhile(expr *ast.Expr, env *value.Env, ctx *Context) (value.Value, *EvalError) {
	result := value.Unit()
	iterations := 0
	for {
		cond, err := Eval(expr.Cond, env, ctx)
		if err != nil {
			return value.Nil(), err
		}
		if cond.Kind != value.KindBool {
			return value.Nil(), Fail("while condition must be a boolean")
		}
		if !cond.Bool {
			return result, nil
		}
		iterations++
		if iterations > ctx.MaxIterations {
			return value.Nil(), Fail("loop exceeded maximum iteration count of %d", ctx.MaxIterations)
		}
		v, berr := Eval(expr.Body, value.NewEnv(env), ctx)
		if berr != nil {
			switch berr.Kind {
			case ErrBreak:
				if berr.Label == "" || berr.Label == expr.Label {
					return berr.Value, nil
				}
				return value.Nil(), berr
			case ErrContinue:
				if berr.Label == "" || berr.Label == expr.Label {
					continue
				}
				return value.Nil(), berr
			default:
				return value.Nil(), berr
			}
		}
		result = v
	}
}

func evalWhileLet(expr *ast.Expr, env *value.Env, ctx *Context) (value.Value, *EvalError) {
	result := value.Unit()
	iterations := 0
	for {
		scrutinee, err := Eval(expr.Value, env, ctx)
		if err != nil {
			return value.Nil(), err
		}
		binds, ok := Unify(expr.LetPattern, scrutinee)
		if !ok {
			return result, nil
		}
		iterations++
		if iterations > ctx.MaxIterations {
			return value.Nil(), Fail("loop exceeded maximum iteration count of %d", ctx.MaxIterations)
		}
		inner := value.NewEnv(env)
		for name, v := range binds {
			inner.Bind(name, v, false)
		}
		v, berr := Eval(expr.Body, inner, ctx)
		if berr != nil {
			switch berr.Kind {
			case ErrBreak:
				if berr.Label == "" || berr.Label == expr.Label {
					return berr.Value, nil
				}
				return value.Nil(), berr
			case ErrContinue:
				if berr.Label == "" || berr.Label == expr.Label {
					continue
				}
				return value.Nil(), berr
			default:
				return value.Nil(), berr
			}
		}
		result = v
	}
}

func evalLoop(expr *ast.Expr, env *value.Env, ctx *Context) (value.Value, *EvalError) {
	iterations := 0
	for {
		iterations++
		if iterations > ctx.MaxIterations {
			return value.Nil(), Fail("loop exceeded maximum iteration count of %d", ctx.MaxIterations)
		}
		_, berr := Eval(expr.Body, value.NewEnv(env), ctx)
		if berr != nil {
			switch berr.Kind {
			case ErrBreak:
				if berr.Label == "" || berr.Label == expr.Label {
					return berr.Value, nil
				}
				return value.Nil(), berr
			case ErrContinue:
				if berr.Label == "" || berr.Label == expr.Label {
					continue
				}
				return value.Nil(), berr
			default:
				return value.Nil(), berr
			}
		}
	}
}

func evalTryCatch(expr *ast.Expr, env *value.Env, ctx *Context) (value.Value, *EvalError) {
	v, err := Eval(expr.TryBody, value.NewEnv(env), ctx)
	if err == nil {
		return v, nil
	}
	if err.Kind != ErrThrow {
		return value.Nil(), err
	}
	inner := value.NewEnv(env)
	if expr.CatchName != "" {
		inner.Bind(expr.CatchName, err.Value, false)
	}
	return Eval(expr.CatchBody, inner, ctx)
}
