package interp

import (
	"time"

	"github.com/paiml/ruchy-sub007/ast"
	"github.com/paiml/ruchy-sub007/value"
)

// Unify attempts to match pat against v, returning the bindings it
// produces on success. A pattern either matches with some bindings or
// does not match — it never partially matches.
func Unify(pat ast.Pattern, v value.Value) (map[string]value.Value, bool) {
	binds := map[string]value.Value{}
	ok := unify(pat, v, binds)
	if !ok {
		return nil, false
	}
	return binds, true
}

func unify(pat ast.Pattern, v value.Value, binds map[string]value.Value) bool {
	switch pat.Kind {
	case ast.PatWildcard:
		return true
	case ast.PatRest, ast.PatRestNamed:
		if pat.Name != "" {
			binds[pat.Name] = v
		}
		return true
	case ast.PatIdentifier:
		binds[pat.Name] = v
		return true
	case ast.PatMut:
		return unify(*pat.Inner, v, binds)
	case ast.PatAtBinding:
		binds[pat.Name] = v
		return unify(*pat.Inner, v, binds)
	case ast.PatLiteral:
		return value.Equal(literalValue(pat.Literal), v)
	case ast.PatRange:
		return unifyRange(pat, v)
	case ast.PatQualifiedName:
		if v.Kind == value.KindEnumVariant && len(pat.Path) > 0 {
			return v.VariantName == pat.Path[len(pat.Path)-1] && len(v.Payload) == 0
		}
		return false
	case ast.PatTuple:
		if v.Kind != value.KindTuple {
			return false
		}
		return unifySeq(pat.Sub, v.Tuple, binds)
	case ast.PatList:
		if v.Kind != value.KindList {
			return false
		}
		return unifySeq(pat.Sub, v.List, binds)
	case ast.PatTupleVariant:
		if v.Kind != value.KindEnumVariant || len(pat.Path) == 0 {
			return false
		}
		if v.VariantName != pat.Path[len(pat.Path)-1] {
			return false
		}
		if len(v.Payload) != len(pat.Sub) {
			return false
		}
		for i, sub := range pat.Sub {
			if !unify(sub, v.Payload[i], binds) {
				return false
			}
		}
		return true
	case ast.PatStruct:
		if v.Kind != value.KindObject {
			return false
		}
		for _, f := range pat.StructFields {
			fv, ok := v.Fields[f.Name]
			if !ok {
				if f.Pattern.Kind == ast.PatWithDefault {
					fv = value.Nil()
				} else {
					return false
				}
			}
			if !unify(f.Pattern, fv, binds) {
				return false
			}
		}
		if !pat.HasRest && len(pat.StructFields) != len(v.Keys) {
			return false
		}
		return true
	case ast.PatOk:
		if v.Kind != value.KindEnumVariant || v.VariantName != "Ok" {
			return false
		}
		if pat.Inner == nil {
			return true
		}
		return unify(*pat.Inner, payloadOrUnit(v), binds)
	case ast.PatErr:
		if v.Kind != value.KindEnumVariant || v.VariantName != "Err" {
			return false
		}
		if pat.Inner == nil {
			return true
		}
		return unify(*pat.Inner, payloadOrUnit(v), binds)
	case ast.PatSome:
		if v.Kind != value.KindEnumVariant || v.VariantName != "Some" {
			return false
		}
		if pat.Inner == nil {
			return true
		}
		return unify(*pat.Inner, payloadOrUnit(v), binds)
	case ast.PatNone:
		return v.Kind == value.KindEnumVariant && v.VariantName == "None"
	case ast.PatOr:
		for _, alt := range pat.Sub {
			trial := map[string]value.Value{}
			if unify(alt, v, trial) {
				for k, tv := range trial {
					binds[k] = tv
				}
				return true
			}
		}
		return false
	case ast.PatWithDefault:
		if v.Kind == value.KindNil {
			dv, err := Eval(pat.Default, value.NewEnv(nil), NewContext(time.Time{}))
			if err != nil {
				return false
			}
			v = dv
		}
		if pat.Inner != nil {
			return unify(*pat.Inner, v, binds)
		}
		return true
	}
	return false
}

func payloadOrUnit(v value.Value) value.Value {
	if len(v.Payload) == 1 {
		return v.Payload[0]
	}
	return value.Unit()
}

func literalValue(lit *ast.Literal) value.Value {
	switch lit.Kind {
	case ast.LitInt:
		i, _ := parseIntLiteral(lit.Text)
		return value.Int(i)
	case ast.LitFloat:
		f, _ := parseFloatLiteral(lit.Text)
		return value.Float64(f)
	case ast.LitString:
		return value.Str(lit.Str)
	case ast.LitChar:
		return value.CharVal(lit.Ch)
	case ast.LitByte:
		return value.ByteVal(lit.By)
	case ast.LitBool:
		return value.Bool(lit.Bool)
	}
	return value.Unit()
}

func unifyRange(pat ast.Pattern, v value.Value) bool {
	var lo, hi int64
	switch {
	case pat.RangeStart.Kind == ast.LitInt:
		lo, _ = parseIntLiteral(pat.RangeStart.Text)
		hi, _ = parseIntLiteral(pat.RangeEnd.Text)
	case pat.RangeStart.Kind == ast.LitChar:
		lo = int64(pat.RangeStart.Ch)
		hi = int64(pat.RangeEnd.Ch)
	default:
		return false
	}
	var n int64
	switch v.Kind {
	case value.KindInteger:
		n = v.Integer
	case value.KindChar:
		n = int64(v.Char)
	default:
		return false
	}
	if pat.Inclusive {
		return n >= lo && n <= hi
	}
	return n >= lo && n < hi
}

// unifySeq matches a fixed-arity or rest-bearing sequence pattern
// against items, element-wise; a Rest/RestNamed element consumes
// whatever items remain at that position.
func unifySeq(sub []ast.Pattern, items []value.Value, binds map[string]value.Value) bool {
	restIdx := -1
	for i, s := range sub {
		if s.Kind == ast.PatRest || s.Kind == ast.PatRestNamed {
			restIdx = i
			break
		}
	}
	if restIdx == -1 {
		if len(sub) != len(items) {
			return false
		}
		for i, s := range sub {
			if !unify(s, items[i], binds) {
				return false
			}
		}
		return true
	}

	before := sub[:restIdx]
	after := sub[restIdx+1:]
	if len(items) < len(before)+len(after) {
		return false
	}
	for i, s := range before {
		if !unify(s, items[i], binds) {
			return false
		}
	}
	restItems := items[len(before) : len(items)-len(after)]
	if sub[restIdx].Name != "" {
		binds[sub[restIdx].Name] = value.List(restItems)
	}
	for i, s := range after {
		if !unify(s, items[len(items)-len(after)+i], binds) {
			return false
		}
	}
	return true
}
