package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvalBindsAndReturnsDisplay(t *testing.T) {
	s := New()
	out, err := s.Eval("let x = 5")
	assert.Nil(t, err)
	assert.Equal(t, "5", out)

	out, err = s.Eval("x")
	assert.Nil(t, err)
	assert.Equal(t, "5", out)
}

func TestEvalTransactionalRollbackOnFailure(t *testing.T) {
	s := New()
	_, err := s.Eval("let x = 1")
	assert.Nil(t, err)

	before := s.ComputeStateHash()
	_, err = s.Eval("let y = x + undefined_name")
	assert.NotNil(t, err)

	after := s.ComputeStateHash()
	assert.Equal(t, before, after, "a failed eval must not mutate session state")

	_, ok := s.Bindings().LookUp("y")
	assert.False(t, ok)
}

func TestCheckpointRestoreRoundTrip(t *testing.T) {
	s := New()
	_, err := s.Eval("let a = 1")
	assert.Nil(t, err)
	cp := s.Checkpoint()

	_, err = s.Eval("let a = 2")
	assert.Nil(t, err)
	out, _ := s.Eval("a")
	assert.Equal(t, "2", out)

	restoreErr := s.Restore(cp)
	assert.Nil(t, restoreErr)
	out, _ = s.Eval("a")
	assert.Equal(t, "1", out)
}

func TestComputeStateHashDeterministicAcrossSessions(t *testing.T) {
	a := New()
	b := New()
	_, _ = a.Eval("let x = 10")
	_, _ = a.Eval("let y = 20")
	_, _ = b.Eval("let y = 20")
	_, _ = b.Eval("let x = 10")

	assert.Equal(t, a.ComputeStateHash(), b.ComputeStateHash(), "binding order must not affect the state hash")
}

func TestValidateDeterminismReportsDivergence(t *testing.T) {
	a := New()
	b := New()
	_, _ = a.Eval("let x = 1")
	_, _ = b.Eval("let x = 2")

	divs, ok := a.ValidateDeterminism(b)
	assert.False(t, ok)
	assert.Len(t, divs, 1)
	assert.Equal(t, "x", divs[0].Name)
}

func TestValidateDeterminismReportsMissingAndExtra(t *testing.T) {
	a := New()
	b := New()
	_, _ = a.Eval("let x = 1")
	_, _ = b.Eval("let x = 1")
	_, _ = b.Eval("let y = 2")

	divs, ok := a.ValidateDeterminism(b)
	assert.False(t, ok)
	assert.Len(t, divs, 1)
	assert.Equal(t, "y", divs[0].Name)
	assert.True(t, divs[0].Missing)
}

func TestClearBindingsEmptiesStateAndHistory(t *testing.T) {
	s := New()
	_, _ = s.Eval("let x = 1")
	s.ClearBindings()
	_, ok := s.Bindings().LookUp("x")
	assert.False(t, ok)

	out, err := s.Eval("1 + 1")
	assert.Nil(t, err)
	assert.Equal(t, "2", out)
}

func TestVirtualHistoryUnderscoreBindings(t *testing.T) {
	s := New()
	_, err := s.Eval("5")
	assert.Nil(t, err)
	out, err := s.Eval("_")
	assert.Nil(t, err)
	assert.Equal(t, "5", out)
}

func TestEvalBoundedRejectsOverHeapBudget(t *testing.T) {
	s := New()
	_, err := s.Eval(`let big = "this string pads out the estimated heap usage"`)
	assert.Nil(t, err)
	_, err = s.EvalBounded("1 + 1", 1, 0)
	assert.NotNil(t, err)
}

func TestEvalBoundedAcceptsWithinHeapBudget(t *testing.T) {
	s := New()
	out, err := s.EvalBounded("1 + 1", 1<<20, 0)
	assert.Nil(t, err)
	assert.Equal(t, "2", out)
}

func TestNeedsContinuationDetectsOpenDelimiters(t *testing.T) {
	s := New()
	assert.True(t, s.NeedsContinuation("fn f() {"))
	assert.False(t, s.NeedsContinuation("1 + 1"))
}

func TestProcessLineSkipsBlankInput(t *testing.T) {
	s := New()
	accepted, err := s.ProcessLine("   ")
	assert.Nil(t, err)
	assert.False(t, accepted)

	accepted, err = s.ProcessLine("let z = 3")
	assert.Nil(t, err)
	assert.True(t, accepted)
}
