// Package interp is the tree-walking evaluator: it turns an ast.Expr and
// a value.Env into a value.Value (spec.md §4.3).
//
// The teacher's Evaluator.Eval(node) GoMixObject propagates errors and
// control-flow signals (ReturnValue, BreakType, ContinueType — see
// eval/eval_loops.go, eval/eval_controls.go) as sentinel values returned
// through the same channel as ordinary results, checked by the caller
// after every recursive Eval call. This evaluator keeps that
// check-after-every-call shape but moves the sentinel out of the value
// channel into a second explicit return, *EvalError, tagged with a Kind
// — the idiomatic Go rendering of the same propagate-and-check pattern.
package interp

import (
	"fmt"
	"time"

	"github.com/paiml/ruchy-sub007/token"
	"github.com/paiml/ruchy-sub007/value"
)

// ErrKind distinguishes a genuine failure from an in-flight control-flow
// signal unwinding the Go call stack.
type ErrKind int

const (
	ErrFailure ErrKind = iota
	ErrReturn
	ErrBreak
	ErrContinue
	ErrThrow
)

// EvalError is both an evaluation failure and, for ErrReturn/ErrBreak/
// ErrContinue/ErrThrow, an in-flight control-flow signal carrying a
// payload value up the Go call stack to whichever frame handles it
// (function call boundary, enclosing loop, or try/catch).
type EvalError struct {
	Kind    ErrKind
	Message string
	Value   value.Value
	Label   string
}

func (e *EvalError) Error() string { return e.Message }

func Fail(format string, args ...any) *EvalError {
	return &EvalError{Kind: ErrFailure, Message: fmt.Sprintf(format, args...)}
}

func returnSignal(v value.Value) *EvalError   { return &EvalError{Kind: ErrReturn, Value: v} }
func breakSignal(label string, v value.Value) *EvalError {
	return &EvalError{Kind: ErrBreak, Label: label, Value: v}
}
func continueSignal(label string) *EvalError { return &EvalError{Kind: ErrContinue, Label: label} }
func throwSignal(v value.Value) *EvalError   { return &EvalError{Kind: ErrThrow, Value: v} }

// Context threads the resource bounds spec.md §4.3.1 requires through
// every recursive call: a wall-clock deadline, a recursion-depth
// counter, and per-loop iteration ceilings.
type Context struct {
	Deadline      time.Time
	Depth         int
	MaxDepth      int
	MaxIterations int
	RangeCap      int
	Rand          *Rand
}

// NewContext builds a Context with spec.md's documented defaults.
func NewContext(deadline time.Time) *Context {
	return &Context{
		Deadline:      deadline,
		MaxDepth:      1000,
		MaxIterations: 100000,
		RangeCap:      10000,
		Rand:          NewRand(defaultSeed),
	}
}

func (c *Context) child() *Context {
	nc := *c
	nc.Depth++
	return &nc
}

func (c *Context) checkBounds() *EvalError {
	if !c.Deadline.IsZero() && timeNow().After(c.Deadline) {
		return Fail("evaluation timeout")
	}
	if c.Depth > c.MaxDepth {
		return Fail("maximum recursion depth exceeded")
	}
	return nil
}

// timeNow wraps time.Now() for checkBounds' deadline test.
func timeNow() time.Time { return time.Now() }

// binOpName renders an operator token for error messages.
func binOpName(op token.Type) string { return string(op) }
