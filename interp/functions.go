package interp

import (
	"github.com/paiml/ruchy-sub007/ast"
	"github.com/paiml/ruchy-sub007/value"
)

// evalFunctionDef installs a named function in the current frame. The
// function's own name is also bound inside its captured environment so
// the body can call itself recursively (the teacher's function package
// gives every FuncObject its own name for exactly this reason).
func evalFunctionDef(expr *ast.Expr, env *value.Env) (value.Value, *EvalError) {
	fn := value.Value{
		Kind:     value.KindFunction,
		FuncName: expr.Name,
		Params:   expr.Params,
		Body:     expr.Body,
		Captured: env,
		IsAsync:  expr.IsAsync,
	}
	env.Bind(expr.Name, fn, false)
	return value.Unit(), nil
}

func evalLambda(expr *ast.Expr, env *value.Env) (value.Value, *EvalError) {
	return value.Value{
		Kind:     value.KindFunction,
		Params:   expr.Params,
		Body:     expr.Body,
		Captured: env,
		IsAsync:  expr.IsAsync,
	}, nil
}

func evalCall(expr *ast.Expr, env *value.Env, ctx *Context) (value.Value, *EvalError) {
	callee, err := Eval(expr.Callee, env, ctx)
	if err != nil {
		return value.Nil(), err
	}
	args := make([]value.Value, 0, len(expr.Args))
	for _, a := range expr.Args {
		av, aerr := Eval(a, env, ctx)
		if aerr != nil {
			return value.Nil(), aerr
		}
		args = append(args, av)
	}
	return applyCallable(callee, args, ctx)
}

// applyCallable invokes a function value against already-evaluated
// arguments: check arity, bind a fresh frame rooted at the function's
// captured environment (not the caller's), recurse self-reference for
// named functions, evaluate the body, and unwrap a Return signal into
// an ordinary result.
func applyCallable(callee value.Value, args []value.Value, ctx *Context) (value.Value, *EvalError) {
	if callee.Kind != value.KindFunction {
		return value.Nil(), Fail("value of kind %s is not callable", value.TypeName(callee))
	}
	if callee.EnumName != "" {
		if len(args) != len(callee.Params) {
			return value.Nil(), Fail("%s expects %d argument(s), got %d", callee.FuncName, len(callee.Params), len(args))
		}
		return value.EnumVariant(callee.EnumName, callee.FuncName, args), nil
	}
	if callee.Body == nil {
		if v, ok := callBuiltin(callee.FuncName, args); ok {
			return v, nil
		}
		return value.Nil(), Fail("unknown builtin function %q", callee.FuncName)
	}
	if len(args) > len(callee.Params) {
		return value.Nil(), Fail("%s expects at most %d argument(s), got %d", callSiteName(callee), len(callee.Params), len(args))
	}

	frame := value.NewEnv(callee.Captured)
	if callee.FuncName != "" {
		frame.Bind(callee.FuncName, callee, false)
	}
	for i, p := range callee.Params {
		if i < len(args) {
			frame.Bind(p.Name, args[i], true)
			continue
		}
		if p.Default != nil {
			dv, derr := Eval(p.Default, frame, ctx)
			if derr != nil {
				return value.Nil(), derr
			}
			frame.Bind(p.Name, dv, true)
			continue
		}
		return value.Nil(), Fail("%s missing required argument %q", callSiteName(callee), p.Name)
	}

	v, err := Eval(callee.Body, frame, ctx.child())
	if err == nil {
		return v, nil
	}
	if err.Kind == ErrReturn {
		return err.Value, nil
	}
	return value.Nil(), err
}

func callSiteName(fn value.Value) string {
	if fn.FuncName != "" {
		return fn.FuncName
	}
	return "lambda"
}

// evalMethodCall dispatches `object.method(args)`: a callable stored on
// an object's field wins first, then the builtin method table for the
// receiver's kind (list/string methods, Option/Result
// combinators) handles the rest.
func evalMethodCall(expr *ast.Expr, env *value.Env, ctx *Context) (value.Value, *EvalError) {
	recv, err := Eval(expr.Object, env, ctx)
	if err != nil {
		return value.Nil(), err
	}
	args := make([]value.Value, 0, len(expr.Args))
	for _, a := range expr.Args {
		av, aerr := Eval(a, env, ctx)
		if aerr != nil {
			return value.Nil(), aerr
		}
		args = append(args, av)
	}
	if recv.Kind == value.KindObject {
		if fv, ok := recv.Fields[expr.Method]; ok && fv.Kind == value.KindFunction {
			return applyCallable(fv, args, ctx)
		}
	}
	v, ok := callBuiltinMethod(recv, expr.Method, args, ctx)
	if !ok {
		return value.Nil(), Fail("no method %q on value of kind %s", expr.Method, value.TypeName(recv))
	}
	return v, nil
}
