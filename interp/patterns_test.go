package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/paiml/ruchy-sub007/ast"
	"github.com/paiml/ruchy-sub007/value"
)

func intLit(n int64) *ast.Literal {
	return &ast.Literal{Kind: ast.LitInt, Text: itoa(n)}
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{byte('0' + n%10)}, buf...)
		n /= 10
	}
	if neg {
		buf = append([]byte{'-'}, buf...)
	}
	return string(buf)
}

func TestUnifyWildcardAlwaysMatches(t *testing.T) {
	binds, ok := Unify(ast.Pattern{Kind: ast.PatWildcard}, value.Int(42))
	assert.True(t, ok)
	assert.Empty(t, binds)
}

func TestUnifyIdentifierBinds(t *testing.T) {
	binds, ok := Unify(ast.Pattern{Kind: ast.PatIdentifier, Name: "x"}, value.Int(7))
	assert.True(t, ok)
	assert.Equal(t, value.Int(7), binds["x"])
}

func TestUnifyLiteralRequiresEquality(t *testing.T) {
	pat := ast.Pattern{Kind: ast.PatLiteral, Literal: intLit(3)}
	_, ok := Unify(pat, value.Int(3))
	assert.True(t, ok)
	_, ok = Unify(pat, value.Int(4))
	assert.False(t, ok)
}

func TestUnifyRangeInclusiveExclusive(t *testing.T) {
	incl := ast.Pattern{Kind: ast.PatRange, RangeStart: intLit(1), RangeEnd: intLit(5), Inclusive: true}
	_, ok := Unify(incl, value.Int(5))
	assert.True(t, ok)

	excl := ast.Pattern{Kind: ast.PatRange, RangeStart: intLit(1), RangeEnd: intLit(5), Inclusive: false}
	_, ok = Unify(excl, value.Int(5))
	assert.False(t, ok)
}

func TestUnifyTupleElementwise(t *testing.T) {
	pat := ast.Pattern{Kind: ast.PatTuple, Sub: []ast.Pattern{
		{Kind: ast.PatIdentifier, Name: "a"},
		{Kind: ast.PatLiteral, Literal: intLit(2)},
	}}
	v := value.TupleVal([]value.Value{value.Int(1), value.Int(2)})
	binds, ok := Unify(pat, v)
	assert.True(t, ok)
	assert.Equal(t, value.Int(1), binds["a"])

	_, ok = Unify(pat, value.TupleVal([]value.Value{value.Int(1), value.Int(3)}))
	assert.False(t, ok)
}

func TestUnifyListWithRest(t *testing.T) {
	pat := ast.Pattern{Kind: ast.PatList, Sub: []ast.Pattern{
		{Kind: ast.PatIdentifier, Name: "head"},
		{Kind: ast.PatRestNamed, Name: "tail"},
	}}
	v := value.List([]value.Value{value.Int(1), value.Int(2), value.Int(3)})
	binds, ok := Unify(pat, v)
	assert.True(t, ok)
	assert.Equal(t, value.Int(1), binds["head"])
	assert.Equal(t, value.List([]value.Value{value.Int(2), value.Int(3)}), binds["tail"])
}

func TestUnifyListArityMismatchFails(t *testing.T) {
	pat := ast.Pattern{Kind: ast.PatList, Sub: []ast.Pattern{
		{Kind: ast.PatIdentifier, Name: "a"},
		{Kind: ast.PatIdentifier, Name: "b"},
	}}
	_, ok := Unify(pat, value.List([]value.Value{value.Int(1)}))
	assert.False(t, ok)
}

func TestUnifySomeNone(t *testing.T) {
	somePat := ast.Pattern{Kind: ast.PatSome, Inner: &ast.Pattern{Kind: ast.PatIdentifier, Name: "x"}}
	binds, ok := Unify(somePat, value.Some(value.Int(9)))
	assert.True(t, ok)
	assert.Equal(t, value.Int(9), binds["x"])

	_, ok = Unify(somePat, value.None())
	assert.False(t, ok)

	nonePat := ast.Pattern{Kind: ast.PatNone}
	_, ok = Unify(nonePat, value.None())
	assert.True(t, ok)
}

func TestUnifyOkErr(t *testing.T) {
	okPat := ast.Pattern{Kind: ast.PatOk, Inner: &ast.Pattern{Kind: ast.PatIdentifier, Name: "v"}}
	binds, ok := Unify(okPat, value.Ok(value.Str("done")))
	assert.True(t, ok)
	assert.Equal(t, value.Str("done"), binds["v"])

	errPat := ast.Pattern{Kind: ast.PatErr, Inner: &ast.Pattern{Kind: ast.PatIdentifier, Name: "e"}}
	_, ok = Unify(errPat, value.Ok(value.Str("done")))
	assert.False(t, ok)
}

func TestUnifyOrPattern(t *testing.T) {
	pat := ast.Pattern{Kind: ast.PatOr, Sub: []ast.Pattern{
		{Kind: ast.PatLiteral, Literal: intLit(1)},
		{Kind: ast.PatLiteral, Literal: intLit(2)},
	}}
	_, ok := Unify(pat, value.Int(2))
	assert.True(t, ok)
	_, ok = Unify(pat, value.Int(3))
	assert.False(t, ok)
}

func TestUnifyAtBinding(t *testing.T) {
	pat := ast.Pattern{Kind: ast.PatAtBinding, Name: "n", Inner: &ast.Pattern{Kind: ast.PatLiteral, Literal: intLit(5)}}
	binds, ok := Unify(pat, value.Int(5))
	assert.True(t, ok)
	assert.Equal(t, value.Int(5), binds["n"])
}

func TestUnifyStructRequiredFieldsAndRest(t *testing.T) {
	obj := value.Value{Kind: value.KindObject, Keys: []string{"name", "age"}, Fields: map[string]value.Value{
		"name": value.Str("Ada"),
		"age":  value.Int(30),
	}}
	pat := ast.Pattern{Kind: ast.PatStruct, StructFields: []ast.PatternField{
		{Name: "name", Pattern: ast.Pattern{Kind: ast.PatIdentifier, Name: "n"}},
	}, HasRest: true}
	binds, ok := Unify(pat, obj)
	assert.True(t, ok)
	assert.Equal(t, value.Str("Ada"), binds["n"])

	noRestPat := ast.Pattern{Kind: ast.PatStruct, StructFields: []ast.PatternField{
		{Name: "name", Pattern: ast.Pattern{Kind: ast.PatIdentifier, Name: "n"}},
	}, HasRest: false}
	_, ok = Unify(noRestPat, obj)
	assert.False(t, ok)
}

func TestUnifyStructMissingFieldUsesDefault(t *testing.T) {
	obj := value.Value{Kind: value.KindObject, Keys: []string{"name"}, Fields: map[string]value.Value{
		"name": value.Str("Ada"),
	}}
	pat := ast.Pattern{Kind: ast.PatStruct, HasRest: true, StructFields: []ast.PatternField{
		{Name: "name", Pattern: ast.Pattern{Kind: ast.PatIdentifier, Name: "n"}},
		{Name: "age", Pattern: ast.Pattern{
			Kind:    ast.PatWithDefault,
			Inner:   &ast.Pattern{Kind: ast.PatIdentifier, Name: "a"},
			Default: &ast.Expr{Kind: ast.KindLiteral, Literal: intLit(0)},
		}},
	}}
	binds, ok := Unify(pat, obj)
	assert.True(t, ok)
	assert.Equal(t, value.Int(0), binds["a"])
}

func TestUnifyTupleVariant(t *testing.T) {
	v := value.EnumVariant("Shape", "Circle", []value.Value{value.Float64(2.5)})
	pat := ast.Pattern{Kind: ast.PatTupleVariant, Path: []string{"Shape", "Circle"}, Sub: []ast.Pattern{
		{Kind: ast.PatIdentifier, Name: "r"},
	}}
	binds, ok := Unify(pat, v)
	assert.True(t, ok)
	assert.Equal(t, value.Float64(2.5), binds["r"])
}

func TestUnifyQualifiedNameUnitVariant(t *testing.T) {
	v := value.EnumVariant("Color", "Red", nil)
	pat := ast.Pattern{Kind: ast.PatQualifiedName, Path: []string{"Color", "Red"}}
	_, ok := Unify(pat, v)
	assert.True(t, ok)

	payload := value.EnumVariant("Color", "Red", []value.Value{value.Int(1)})
	_, ok = Unify(pat, payload)
	assert.False(t, ok)
}

func TestUnifyKindMismatchFails(t *testing.T) {
	pat := ast.Pattern{Kind: ast.PatTuple, Sub: []ast.Pattern{{Kind: ast.PatWildcard}}}
	_, ok := Unify(pat, value.Int(1))
	assert.False(t, ok)
}
