package interp

import (
	"fmt"
	"math"

	"github.com/paiml/ruchy-sub007/value"
)

var builtinFuncNames = map[string]bool{
	"Some": true, "Ok": true, "Err": true,
	"println": true, "print": true, "len": true, "abs": true,
	"min": true, "max": true, "pow": true, "sqrt": true,
	"floor": true, "ceil": true, "round": true,
}

// builtinConstructor wires the names that are always in scope unless a
// user binding shadows them: the None constant, and the callable
// builtins as KindFunction values with a nil Body (the marker
// applyCallable uses to route to callBuiltin instead of evaluating a
// user-defined body). Grounded in the teacher's objects/math.go table
// of always-available builtins, generalized from math functions to
// Ruchy's sum-type constructors and collection/print builtins.
func builtinConstructor(name string) (value.Value, bool) {
	if name == "None" {
		return value.None(), true
	}
	if builtinFuncNames[name] {
		return value.Value{Kind: value.KindFunction, FuncName: name}, true
	}
	return value.Value{}, false
}

// callBuiltin dispatches the free-standing builtin functions
// (println/print/len/abs/min/max/pow/sqrt/floor/ceil/round, plus the
// Some/Ok/Err constructors applied as calls). Grounded in the teacher's
// objects/math.go and std/math.go tables.
func callBuiltin(name string, args []value.Value) (value.Value, bool) {
	switch name {
	case "Some":
		return value.Some(arg(args, 0)), true
	case "Ok":
		return value.Ok(arg(args, 0)), true
	case "Err":
		return value.Err(arg(args, 0)), true
	case "println":
		fmt.Println(joinDisplay(args))
		return value.Unit(), true
	case "print":
		fmt.Print(joinDisplay(args))
		return value.Unit(), true
	case "len":
		return builtinLen(arg(args, 0))
	case "abs":
		return numericUnary(arg(args, 0), math.Abs, func(i int64) int64 {
			if i < 0 {
				return -i
			}
			return i
		})
	case "floor":
		return value.Float64(math.Floor(mustFloat(arg(args, 0)))), true
	case "ceil":
		return value.Float64(math.Ceil(mustFloat(arg(args, 0)))), true
	case "round":
		return value.Float64(math.Round(mustFloat(arg(args, 0)))), true
	case "sqrt":
		return value.Float64(math.Sqrt(mustFloat(arg(args, 0)))), true
	case "min":
		return numericBinary(arg(args, 0), arg(args, 1), math.Min, func(a, b int64) int64 {
			if a < b {
				return a
			}
			return b
		})
	case "max":
		return numericBinary(arg(args, 0), arg(args, 1), math.Max, func(a, b int64) int64 {
			if a > b {
				return a
			}
			return b
		})
	case "pow":
		return value.Float64(math.Pow(mustFloat(arg(args, 0)), mustFloat(arg(args, 1)))), true
	}
	return value.Value{}, false
}

func arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.Unit()
}

func joinDisplay(args []value.Value) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		if a.Kind == value.KindString {
			out += a.Str
		} else {
			out += value.Display(a)
		}
	}
	return out
}

func builtinLen(v value.Value) (value.Value, bool) {
	switch v.Kind {
	case value.KindString:
		return value.Int(int64(len([]rune(v.Str)))), true
	case value.KindList:
		return value.Int(int64(len(v.List))), true
	case value.KindTuple:
		return value.Int(int64(len(v.Tuple))), true
	case value.KindObject:
		return value.Int(int64(len(v.Keys))), true
	}
	return value.Value{}, false
}

func mustFloat(v value.Value) float64 {
	switch v.Kind {
	case value.KindFloat:
		return v.Float
	case value.KindInteger:
		return float64(v.Integer)
	}
	return 0
}

func numericUnary(v value.Value, ffn func(float64) float64, ifn func(int64) int64) (value.Value, bool) {
	switch v.Kind {
	case value.KindInteger:
		return value.Int(ifn(v.Integer)), true
	case value.KindFloat:
		return value.Float64(ffn(v.Float)), true
	}
	return value.Value{}, false
}

func numericBinary(a, b value.Value, ffn func(float64, float64) float64, ifn func(int64, int64) int64) (value.Value, bool) {
	if a.Kind == value.KindInteger && b.Kind == value.KindInteger {
		return value.Int(ifn(a.Integer, b.Integer)), true
	}
	if (a.Kind == value.KindInteger || a.Kind == value.KindFloat) &&
		(b.Kind == value.KindInteger || b.Kind == value.KindFloat) {
		return value.Float64(ffn(mustFloat(a), mustFloat(b))), true
	}
	return value.Value{}, false
}

// callBuiltinMethod handles receiver.method(args) for the built-in
// collection and Option/Result types — grounded in the teacher's
// std/list.go, std/strings.go, std/map.go, std/set.go method tables.
func callBuiltinMethod(recv value.Value, method string, args []value.Value, ctx *Context) (value.Value, bool) {
	switch recv.Kind {
	case value.KindEnumVariant:
		return callOptionResultMethod(recv, method, args, ctx)
	case value.KindList:
		return callListMethod(recv, method, args, ctx)
	case value.KindString:
		return callStringMethod(recv, method, args)
	}
	return value.Value{}, false
}

func callOptionResultMethod(recv value.Value, method string, args []value.Value, ctx *Context) (value.Value, bool) {
	isSome := recv.VariantName == "Some"
	isOk := recv.VariantName == "Ok"
	switch method {
	case "is_some":
		return value.Bool(isSome), true
	case "is_none":
		return value.Bool(recv.VariantName == "None"), true
	case "is_ok":
		return value.Bool(isOk), true
	case "is_err":
		return value.Bool(recv.VariantName == "Err"), true
	case "unwrap":
		if isSome || isOk {
			return payloadOrUnit(recv), true
		}
		return value.Value{}, false
	case "unwrap_or":
		if isSome || isOk {
			return payloadOrUnit(recv), true
		}
		return arg(args, 0), true
	case "map":
		if !isSome && !isOk {
			return recv, true
		}
		v, err := applyCallable(arg(args, 0), []value.Value{payloadOrUnit(recv)}, ctx)
		if err != nil {
			return value.Value{}, false
		}
		if recv.EnumName == "Result" {
			return value.Ok(v), true
		}
		return value.Some(v), true
	}
	return value.Value{}, false
}

func callListMethod(recv value.Value, method string, args []value.Value, ctx *Context) (value.Value, bool) {
	switch method {
	case "push":
		return value.List(append(append([]value.Value{}, recv.List...), arg(args, 0))), true
	case "map":
		out := make([]value.Value, len(recv.List))
		for i, item := range recv.List {
			v, err := applyCallable(arg(args, 0), []value.Value{item}, ctx)
			if err != nil {
				return value.Value{}, false
			}
			out[i] = v
		}
		return value.List(out), true
	case "filter":
		var out []value.Value
		for _, item := range recv.List {
			v, err := applyCallable(arg(args, 0), []value.Value{item}, ctx)
			if err != nil {
				return value.Value{}, false
			}
			if v.Kind == value.KindBool && v.Bool {
				out = append(out, item)
			}
		}
		return value.List(out), true
	case "len":
		return value.Int(int64(len(recv.List))), true
	}
	return value.Value{}, false
}

func callStringMethod(recv value.Value, method string, args []value.Value) (value.Value, bool) {
	switch method {
	case "len":
		return value.Int(int64(len([]rune(recv.Str)))), true
	case "to_upper":
		return value.Str(upper(recv.Str)), true
	case "to_lower":
		return value.Str(lower(recv.Str)), true
	}
	return value.Value{}, false
}

func upper(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r >= 'a' && r <= 'z' {
			out[i] = r - ('a' - 'A')
		}
	}
	return string(out)
}

func lower(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r >= 'A' && r <= 'Z' {
			out[i] = r + ('a' - 'A')
		}
	}
	return string(out)
}
