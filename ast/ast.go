// Package ast defines the abstract syntax tree and pattern model the
// parser produces and the evaluator consumes.
//
// The teacher interpreter models AST nodes as a family of concrete
// structs behind a pair of marker interfaces (StatementNode,
// ExpressionNode) plus a NodeVisitor. Ruchy's AST is richer (patterns,
// types, many more expression shapes) so instead of a visitor dispatched
// over dozens of concrete types, every node collapses to one Expr struct
// with a Kind tag and a payload — Go's idiomatic answer to a tagged
// union when the set of shapes is this wide, while still giving the
// evaluator a single type switch per call site, the same shape the
// teacher's Accept/Visit pair produces.
package ast

import "github.com/paiml/ruchy-sub007/token"

// Span is a byte-offset range into the source, per the GLOSSARY.
type Span struct {
	Start int
	End   int
}

// Kind tags the shape of an Expr.
type Kind int

const (
	KindLiteral Kind = iota
	KindIdentifier
	KindBinary
	KindUnary
	KindIf
	KindIfLet
	KindMatch
	KindFor
	KindWhile
	KindWhileLet
	KindLoop
	KindBreak
	KindContinue
	KindReturn
	KindThrow
	KindLet
	KindLetPattern
	KindFunction
	KindLambda
	KindAsyncBlock
	KindAsyncLambda
	KindCall
	KindMethodCall
	KindList
	KindTuple
	KindBlock
	KindStruct
	KindTupleStruct
	KindClass
	KindEnum
	KindTrait
	KindImpl
	KindModule
	KindImport
	KindImportAll
	KindExport
	KindExportDefault
	KindExportList
	KindReExport
	KindFormatString
	KindIndex
	KindFieldAccess
	KindTryCatch
	KindGhost
)

// LitKind tags the shape of a Literal payload.
type LitKind int

const (
	LitInt LitKind = iota
	LitFloat
	LitString
	LitChar
	LitByte
	LitBool
	LitUnit
)

// Literal is the payload of a KindLiteral expression.
type Literal struct {
	Kind   LitKind
	Text   string // original text, for ints/floats so suffix and base survive
	Suffix string // i8..i128/u8..usize, empty if none
	Str    string
	Ch     rune
	By     byte
	Bool   bool
}

// MatchArm is one arm of a Match expression.
type MatchArm struct {
	Pattern Pattern
	Guard   *Expr
	Body    *Expr
	Span    Span
}

// Param is a function/lambda parameter.
type Param struct {
	Name    string
	Type    *Type
	Default *Expr
}

// Field is a struct-literal or struct-definition field.
type Field struct {
	Name  string
	Type  *Type
	Value *Expr // only set for struct-literal fields
}

// ImportItem names one identifier imported from a module, with an
// optional alias.
type ImportItem struct {
	Name  string
	Alias string
}

// Expr is every AST expression node. Only the fields relevant to Kind
// are populated; this mirrors the teacher's one-struct-per-node-type
// approach collapsed into one tagged struct, which keeps the evaluator's
// type switch to a single level instead of an interface per node kind.
type Expr struct {
	Kind Kind
	Span Span

	// Attributes carries parser-attached metadata (e.g. derive lists,
	// doc comments) that do not affect evaluation.
	Attributes []string

	Literal *Literal
	Name    string // Identifier, field/method names, function/struct/enum names

	Left  *Expr
	Right *Expr
	Op    token.Type

	Operand *Expr // Unary operand

	Cond *Expr
	Then *Expr
	Else *Expr

	LetPattern Pattern // IfLet/WhileLet pattern

	Scrutinee *Expr
	Arms      []MatchArm

	Label    string
	Iterator *Expr // For: the iterator expression
	LoopVar  string
	ForPat   Pattern // optional destructuring pattern in `for`
	Body     *Expr

	Value *Expr // Break/Return/Throw/Let payload

	// Let
	TypeAnn    *Type
	IsMutable  bool
	LetBody    *Expr // body in which the binding is visible; nil at top level
	ElseBlock  *Expr
	DestructPt Pattern // LetPattern destructuring target

	// Function / Lambda
	TypeParams []string
	Params     []Param
	ReturnType *Type
	IsAsync    bool
	IsPub      bool

	Callee *Expr
	Args   []*Expr

	Object *Expr // MethodCall / FieldAccess receiver
	Method string

	Items []*Expr // List/Tuple/Block elements

	// Struct / Class / Enum / Trait / Impl
	Fields     []Field
	Derives    []string
	Superclass string
	Traits     []string
	Methods    []*Expr
	Constants  []*Expr
	Properties []Field
	Variants   []EnumVariant
	ForType    *Type
	TraitName  string

	// Module / Import
	ModulePath  string
	ImportItems []ImportItem
	Alias       string

	// FormatString
	FormatParts []FormatPart

	// Index
	Index *Expr

	// TryCatch
	TryBody    *Expr
	CatchName  string
	CatchBody  *Expr

	// Ghost nodes from recovery mode
	GhostReason string
}

// EnumVariant is one variant of an Enum definition.
type EnumVariant struct {
	Name   string
	Fields []Field // empty for unit variants, positional types use Field.Type only
}

// FormatPart is either a literal text run or an embedded expression
// inside an f"..." literal.
type FormatPart struct {
	Text string
	Expr *Expr // nil when Text is a literal run
}

// --- Pattern sum type (spec.md §3.2) ---

type PatternKind int

const (
	PatWildcard PatternKind = iota
	PatIdentifier
	PatLiteral
	PatQualifiedName
	PatTuple
	PatList
	PatStruct
	PatTupleVariant
	PatOk
	PatErr
	PatSome
	PatNone
	PatRange
	PatOr
	PatRest
	PatRestNamed
	PatAtBinding
	PatWithDefault
	PatMut
)

// Pattern is the separate sum type used inside match arms, let-destructuring,
// and for-loop destructuring.
type Pattern struct {
	Kind PatternKind
	Span Span

	Name    string  // Identifier / RestNamed / AtBinding binding name
	Literal *Literal

	Path []string // QualifiedName / TupleVariant path segments

	Sub  []Pattern // Tuple / List / Or / TupleVariant element patterns
	Rest bool      // List: whether a rest pattern is present among Sub

	StructFields []PatternField
	HasRest      bool // Struct: trailing `..`

	Inner *Pattern // Ok/Err/Some/AtBinding/Mut/WithDefault inner pattern

	RangeStart *Literal
	RangeEnd   *Literal
	Inclusive  bool

	Default *Expr // WithDefault
}

// PatternField is one field inside a Struct pattern.
type PatternField struct {
	Name    string
	Pattern Pattern
}

// --- Type sum type (spec.md §3.2) ---

type TypeKind int

const (
	TypeNamed TypeKind = iota
	TypeGeneric
	TypeFunction
	TypeList
	TypeArray
	TypeTuple
	TypeReference
	TypeOptional
)

// Type is the type-annotation sum type.
type Type struct {
	Kind TypeKind
	Span Span

	Name string // Named

	Base   *Type   // Generic base
	Params []*Type // Generic / Function params / Tuple members

	Return *Type // Function

	Elem *Type // List / Array / Reference / Optional inner
	Size *Expr // Array size expression

	IsMut    bool   // Reference
	Lifetime string // Reference, optional
}
