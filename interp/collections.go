package interp

import (
	"github.com/paiml/ruchy-sub007/ast"
	"github.com/paiml/ruchy-sub007/value"
)

func evalList(expr *ast.Expr, env *value.Env, ctx *Context) (value.Value, *EvalError) {
	if len(expr.Items) == 1 && hasAttr(expr.Attributes, "comprehension") {
		return Eval(expr.Items[0], env, ctx)
	}
	items := make([]value.Value, 0, len(expr.Items))
	for _, it := range expr.Items {
		v, err := Eval(it, env, ctx)
		if err != nil {
			return value.Nil(), err
		}
		items = append(items, v)
	}
	return value.List(items), nil
}

func evalTuple(expr *ast.Expr, env *value.Env, ctx *Context) (value.Value, *EvalError) {
	items := make([]value.Value, 0, len(expr.Items))
	for _, it := range expr.Items {
		v, err := Eval(it, env, ctx)
		if err != nil {
			return value.Nil(), err
		}
		items = append(items, v)
	}
	return value.TupleVal(items), nil
}

// evalStructExpr handles both shapes the parser tags with KindStruct:
// a struct *literal* (Attributes contains "literal"; every Field.Value
// is set) builds an ordinary object, while a struct *definition*
// (Field.Type set, used at the point a `struct` block is declared) has
// nothing to evaluate at runtime — field layout is enforced structurally
// when a literal of that shape is built, not by a registered type.
func evalStructExpr(expr *ast.Expr, env *value.Env, ctx *Context) (value.Value, *EvalError) {
	if !hasAttr(expr.Attributes, "literal") {
		return value.Unit(), nil
	}
	keys := make([]string, 0, len(expr.Fields))
	fields := make(map[string]value.Value, len(expr.Fields))
	for _, f := range expr.Fields {
		v := value.Unit()
		if f.Value != nil {
			var err *EvalError
			v, err = Eval(f.Value, env, ctx)
			if err != nil {
				return value.Nil(), err
			}
		}
		keys = append(keys, f.Name)
		fields[f.Name] = v
	}
	return value.Value{Kind: value.KindObject, Keys: keys, Fields: fields}, nil
}

// evalEnumDef registers each variant of an enum as a callable
// constructor (payload variants) or a ready-made value (unit
// variants), bound under the variant's own name so `Variant(x)` and
// bare `Variant` both work the way Some/Ok/Err already do. A payload
// variant is a KindFunction value tagged with EnumName set and Body
// nil — applyCallable recognizes that shape and builds the
// EnumVariant directly instead of evaluating a body.
func evalEnumDef(expr *ast.Expr, env *value.Env) (value.Value, *EvalError) {
	for _, variant := range expr.Variants {
		if len(variant.Fields) == 0 {
			env.Bind(variant.Name, value.EnumVariant(expr.Name, variant.Name, nil), false)
			continue
		}
		params := make([]ast.Param, len(variant.Fields))
		for i, f := range variant.Fields {
			params[i] = ast.Param{Name: f.Name}
		}
		env.Bind(variant.Name, value.Value{
			Kind:     value.KindFunction,
			FuncName: variant.Name,
			EnumName: expr.Name,
			Params:   params,
			Captured: env,
		}, false)
	}
	return value.Unit(), nil
}

func evalFieldAccess(expr *ast.Expr, env *value.Env, ctx *Context) (value.Value, *EvalError) {
	recv, err := Eval(expr.Object, env, ctx)
	if err != nil {
		return value.Nil(), err
	}
	switch recv.Kind {
	case value.KindObject:
		if v, ok := recv.Fields[expr.Name]; ok {
			return v, nil
		}
		return value.Nil(), Fail("object has no field %q", expr.Name)
	case value.KindTuple:
		idx, perr := parseIntLiteral(expr.Name)
		if perr != nil || idx < 0 || int(idx) >= len(recv.Tuple) {
			return value.Nil(), Fail("invalid tuple field .%s", expr.Name)
		}
		return recv.Tuple[idx], nil
	}
	return value.Nil(), Fail("value of kind %s has no field %q", value.TypeName(recv), expr.Name)
}

func evalIndex(expr *ast.Expr, env *value.Env, ctx *Context) (value.Value, *EvalError) {
	recv, err := Eval(expr.Object, env, ctx)
	if err != nil {
		return value.Nil(), err
	}
	idxV, err := Eval(expr.Index, env, ctx)
	if err != nil {
		return value.Nil(), err
	}
	switch recv.Kind {
	case value.KindList:
		i, ok := asIndex(idxV, len(recv.List))
		if !ok {
			return value.Nil(), Fail("list index out of bounds")
		}
		return recv.List[i], nil
	case value.KindTuple:
		i, ok := asIndex(idxV, len(recv.Tuple))
		if !ok {
			return value.Nil(), Fail("tuple index out of bounds")
		}
		return recv.Tuple[i], nil
	case value.KindString:
		runes := []rune(recv.Str)
		i, ok := asIndex(idxV, len(runes))
		if !ok {
			return value.Nil(), Fail("string index out of bounds")
		}
		return value.CharVal(runes[i]), nil
	case value.KindObject:
		if idxV.Kind != value.KindString {
			return value.Nil(), Fail("object index must be a string key")
		}
		v, ok := recv.Fields[idxV.Str]
		if !ok {
			return value.Nil(), Fail("object has no key %q", idxV.Str)
		}
		return v, nil
	}
	return value.Nil(), Fail("value of kind %s is not indexable", value.TypeName(recv))
}

func asIndex(v value.Value, length int) (int, bool) {
	if v.Kind != value.KindInteger {
		return 0, false
	}
	i := v.Integer
	if i < 0 {
		i += int64(length)
	}
	if i < 0 || i >= int64(length) {
		return 0, false
	}
	return int(i), true
}

// evalModule evaluates a `mod name { ... }` block directly against the
// enclosing environment: the core evaluator does not namespace module
// members (spec.md's URL-import layer handles cross-file resolution
// separately), so a module block is just a grouped set of definitions.
func evalModule(expr *ast.Expr, env *value.Env, ctx *Context) (value.Value, *EvalError) {
	return Eval(expr.Body, env, ctx)
}
