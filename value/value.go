// Package value defines the runtime Value sum type produced by the
// evaluator (spec.md §3.3).
//
// The teacher models runtime values as a GoMixObject interface
// implemented by a family of concrete structs (Integer, Float, String,
// Array, Map, ...), each carrying GetType/ToString/ToObject. Ruchy keeps
// that shape — a Kind tag plus per-kind fields on one struct, which
// makes equality, Display, and the evaluator's switch-based dispatch
// simpler than a dozen concrete types behind an interface once the
// payload shapes multiply this much (18 kinds versus the teacher's ~12,
// several of which need to reference a shared captured environment).
package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/paiml/ruchy-sub007/ast"
)

type Kind int

const (
	KindNil Kind = iota
	KindUnit
	KindBool
	KindInteger
	KindFloat
	KindChar
	KindByte
	KindString
	KindList
	KindTuple
	KindObject
	KindHashMap
	KindHashSet
	KindRange
	KindEnumVariant
	KindFunction
	KindLambda
	KindDataFrame
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindChar:
		return "char"
	case KindByte:
		return "byte"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindTuple:
		return "tuple"
	case KindObject:
		return "object"
	case KindHashMap:
		return "hashmap"
	case KindHashSet:
		return "hashset"
	case KindRange:
		return "range"
	case KindEnumVariant:
		return "enum_variant"
	case KindFunction:
		return "function"
	case KindLambda:
		return "lambda"
	case KindDataFrame:
		return "dataframe"
	}
	return "unknown"
}

// Cell is a shared-mutable binding slot. Closures capture the *Cell, not
// the value, so a mutation through one function value is visible through
// every other value that captured the same binding (spec.md Design
// Notes §9).
type Cell struct {
	Value     Value
	IsMutable bool
}

// Env is a lexical scope frame: name -> binding cell, with a parent
// pointer. Mirrors the teacher's scope.Scope but stores cells instead of
// raw values, since Ruchy closures must share mutations across captures.
type Env struct {
	vars   map[string]*Cell
	parent *Env
}

func NewEnv(parent *Env) *Env {
	return &Env{vars: make(map[string]*Cell), parent: parent}
}

// Bind installs a new binding in the current frame only, shadowing any
// outer binding of the same name.
func (e *Env) Bind(name string, v Value, mutable bool) {
	e.vars[name] = &Cell{Value: v, IsMutable: mutable}
}

// LookUp walks outward from the current frame to find a binding.
func (e *Env) LookUp(name string) (*Cell, bool) {
	for env := e; env != nil; env = env.parent {
		if c, ok := env.vars[name]; ok {
			return c, true
		}
	}
	return nil, false
}

// Assign mutates an existing binding in whichever frame defines it,
// walking outward. Returns false if no such binding exists.
func (e *Env) Assign(name string, v Value) bool {
	c, ok := e.LookUp(name)
	if !ok {
		return false
	}
	c.Value = v
	return true
}

// TopLevelNames returns the bindings in the outermost (global) frame,
// sorted, for Session's checkpoint/state-hash use. The result-history
// names `_` and `__` are left out: Session rebinds them before each eval
// as a view over its result history, not as state.
func (e *Env) TopLevelNames() []string {
	root := e
	for root.parent != nil {
		root = root.parent
	}
	names := make([]string, 0, len(root.vars))
	for n := range root.vars {
		if n == "_" || n == "__" {
			continue
		}
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Root returns the outermost frame.
func (e *Env) Root() *Env {
	root := e
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// Clear empties this frame's bindings in place (used by Session.ClearBindings).
func (e *Env) Clear() {
	e.vars = make(map[string]*Cell)
}

// Value is a runtime Ruchy value.
type Value struct {
	Kind Kind

	Bool    bool
	Integer int64
	Float   float64
	Char    rune
	Byte    byte
	Str     string

	List  []Value
	Tuple []Value

	// Object: ordered mapping. Keys preserves insertion order for
	// Display; Fields allows O(1) lookup.
	Keys   []string
	Fields map[string]Value

	// HashMap / HashSet
	MapKeys   []Value
	MapValues []Value
	SetItems  []Value

	RangeStart int64
	RangeEnd   int64
	Inclusive  bool

	EnumName    string
	VariantName string
	Payload     []Value

	FuncName   string
	Params     []ast.Param
	Body       *ast.Expr
	Captured   *Env
	IsAsync    bool

	Columns     []string
	ColumnData  map[string][]Value
}

func Nil() Value  { return Value{Kind: KindNil} }
func Unit() Value { return Value{Kind: KindUnit} }
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }
func Int(i int64) Value { return Value{Kind: KindInteger, Integer: i} }
func Float64(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func Str(s string) Value { return Value{Kind: KindString, Str: s} }
func CharVal(r rune) Value { return Value{Kind: KindChar, Char: r} }
func ByteVal(b byte) Value { return Value{Kind: KindByte, Byte: b} }
func List(items []Value) Value { return Value{Kind: KindList, List: items} }
func TupleVal(items []Value) Value { return Value{Kind: KindTuple, Tuple: items} }

func EnumVariant(enumName, variantName string, payload []Value) Value {
	return Value{Kind: KindEnumVariant, EnumName: enumName, VariantName: variantName, Payload: payload}
}

// Some/None/Ok/Err are the constructors named in spec.md §4.3.6; they are
// ordinary EnumVariant values of the built-in Option/Result enums.
func Some(v Value) Value { return EnumVariant("Option", "Some", []Value{v}) }
func None() Value        { return EnumVariant("Option", "None", nil) }
func Ok(v Value) Value   { return EnumVariant("Result", "Ok", []Value{v}) }
func Err(v Value) Value  { return EnumVariant("Result", "Err", []Value{v}) }

// IsTruthy implements the language's boolean coercion for if/while
// conditions: only Bool participates, everything else is an evaluation
// error at the call site — callers should check Kind == KindBool first.
func (v Value) IsTruthy() bool {
	return v.Kind == KindBool && v.Bool
}

// Equal implements structural equality (spec.md §4.3.2): different kinds
// are never equal.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNil, KindUnit:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindInteger:
		return a.Integer == b.Integer
	case KindFloat:
		return a.Float == b.Float
	case KindChar:
		return a.Char == b.Char
	case KindByte:
		return a.Byte == b.Byte
	case KindString:
		return a.Str == b.Str
	case KindList, KindTuple:
		a1, b1 := a.List, b.List
		if a.Kind == KindTuple {
			a1, b1 = a.Tuple, b.Tuple
		}
		if len(a1) != len(b1) {
			return false
		}
		for i := range a1 {
			if !Equal(a1[i], b1[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.Keys) != len(b.Keys) {
			return false
		}
		for _, k := range a.Keys {
			bv, ok := b.Fields[k]
			if !ok || !Equal(a.Fields[k], bv) {
				return false
			}
		}
		return true
	case KindRange:
		return a.RangeStart == b.RangeStart && a.RangeEnd == b.RangeEnd && a.Inclusive == b.Inclusive
	case KindEnumVariant:
		if a.EnumName != b.EnumName || a.VariantName != b.VariantName || len(a.Payload) != len(b.Payload) {
			return false
		}
		for i := range a.Payload {
			if !Equal(a.Payload[i], b.Payload[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Display renders a value canonically and deterministically — nested
// objects/maps sort their keys — so it can round-trip through
// checkpoint/restore and feed the state hash (spec.md §4.4).
func Display(v Value) string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindUnit:
		return "()"
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindInteger:
		return strconv.FormatInt(v.Integer, 10)
	case KindFloat:
		return formatFloat(v.Float)
	case KindChar:
		return "'" + string(v.Char) + "'"
	case KindByte:
		return fmt.Sprintf("b'%c'", v.Byte)
	case KindString:
		return strconv.Quote(v.Str)
	case KindList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = Display(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindTuple:
		parts := make([]string, len(v.Tuple))
		for i, e := range v.Tuple {
			parts[i] = Display(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindObject:
		keys := append([]string(nil), v.Keys...)
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + Display(v.Fields[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindHashMap:
		type kv struct{ k, v string }
		pairs := make([]kv, len(v.MapKeys))
		for i := range v.MapKeys {
			pairs[i] = kv{Display(v.MapKeys[i]), Display(v.MapValues[i])}
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].k < pairs[j].k })
		parts := make([]string, len(pairs))
		for i, p := range pairs {
			parts[i] = p.k + ": " + p.v
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindHashSet:
		items := make([]string, len(v.SetItems))
		for i, e := range v.SetItems {
			items[i] = Display(e)
		}
		sort.Strings(items)
		return "{" + strings.Join(items, ", ") + "}"
	case KindRange:
		sep := ".."
		if v.Inclusive {
			sep = "..="
		}
		return fmt.Sprintf("%d%s%d", v.RangeStart, sep, v.RangeEnd)
	case KindEnumVariant:
		if len(v.Payload) == 0 {
			return v.VariantName
		}
		parts := make([]string, len(v.Payload))
		for i, e := range v.Payload {
			parts[i] = Display(e)
		}
		return v.VariantName + "(" + strings.Join(parts, ", ") + ")"
	case KindFunction:
		if v.FuncName == "" {
			return "<lambda>"
		}
		return "<func " + v.FuncName + ">"
	case KindLambda:
		return "<lambda>"
	case KindDataFrame:
		return fmt.Sprintf("<dataframe cols=%d>", len(v.Columns))
	default:
		return "<unknown>"
	}
}

func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "NaN"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// TypeName reports the Ruchy-visible type name of a value, used for
// method-table dispatch (spec.md Design Notes §9).
func TypeName(v Value) string {
	if v.Kind == KindEnumVariant {
		return v.EnumName
	}
	return v.Kind.String()
}
