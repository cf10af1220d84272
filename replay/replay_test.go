package replay

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/paiml/ruchy-sub007/session"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	sess := session.New()
	r := New(sess, "sess-3", "2026-01-01T00:00:00Z", "0.1.0")
	id := r.RecordInput("2 * 2", ModeInteractive, 3000)
	display, err := sess.Eval("2 * 2")
	r.RecordOutput(id, display, err)

	path := filepath.Join(t.TempDir(), "recording.json")
	assert.Nil(t, r.Save(path))

	loaded, loadErr := Load(path)
	assert.Nil(t, loadErr)
	assert.Equal(t, r.Recording.SessionID, loaded.SessionID)
	assert.Len(t, loaded.Interactions, 1)
	assert.Equal(t, "4", *loaded.Interactions[0].Output.Ok)
}

func TestRecordInputOutputRoundTrip(t *testing.T) {
	sess := session.New()
	r := New(sess, "sess-1", "2026-01-01T00:00:00Z", "0.1.0")

	id := r.RecordInput("1 + 1", ModeInteractive, 1000)
	display, err := sess.Eval("1 + 1")
	r.RecordOutput(id, display, err)

	assert.Len(t, r.Recording.Interactions, 1)
	got := r.Recording.Interactions[0]
	assert.Equal(t, id, got.InputID)
	assert.NotNil(t, got.Output.Ok)
	assert.Equal(t, "2", *got.Output.Ok)
	assert.Nil(t, got.Output.Err)
}

func TestRecordOutputCapturesError(t *testing.T) {
	sess := session.New()
	r := New(sess, "sess-2", "2026-01-01T00:00:00Z", "0.1.0")

	id := r.RecordInput("undefined_name", ModeScripted, 2000)
	_, err := sess.Eval("undefined_name")
	r.RecordOutput(id, "", err)

	got := r.Recording.Interactions[0]
	assert.Nil(t, got.Output.Ok)
	assert.NotNil(t, got.Output.Err)
}

func TestExecuteWithSeedIsDeterministic(t *testing.T) {
	sessA := session.New()
	rA := New(sessA, "a", "2026-01-01T00:00:00Z", "0.1.0")
	outA, hashA, _, errA := rA.ExecuteWithSeed("1 + 2", 42)
	assert.Nil(t, errA)

	sessB := session.New()
	rB := New(sessB, "b", "2026-01-01T00:00:00Z", "0.1.0")
	outB, hashB, _, errB := rB.ExecuteWithSeed("1 + 2", 42)
	assert.Nil(t, errB)

	assert.Equal(t, outA, outB)
	assert.Equal(t, hashA, hashB)
}

func TestReplayAgainstDetectsDivergence(t *testing.T) {
	rec := Recording{
		SessionID: "s", CreatedAt: "2026-01-01T00:00:00Z", RuchyVersion: "0.1.0",
		Interactions: []Interaction{
			{InputID: 0, Text: "1 + 1", Mode: ModeInteractive, Output: Output{Ok: strPtr("3")}},
		},
	}
	divs, ok := ReplayAgainst(rec)
	assert.False(t, ok)
	assert.Len(t, divs, 1)
	assert.Equal(t, "output", divs[0].Kind)
}

func TestReplayAgainstCleanRecordingIsDeterministic(t *testing.T) {
	rec := Recording{
		SessionID: "s", CreatedAt: "2026-01-01T00:00:00Z", RuchyVersion: "0.1.0",
		Interactions: []Interaction{
			{InputID: 0, Text: "let x = 2", Mode: ModeInteractive, Output: Output{Ok: strPtr("2")}},
			{InputID: 1, Text: "x * 3", Mode: ModeInteractive, Output: Output{Ok: strPtr("6")}},
		},
	}
	divs, ok := ReplayAgainst(rec)
	assert.True(t, ok)
	assert.Empty(t, divs)
}

func strPtr(s string) *string { return &s }

func TestNewSeededRNGIsDeterministic(t *testing.T) {
	a := NewSeededRNG(7)
	b := NewSeededRNG(7)
	assert.Equal(t, a.Next(), b.Next())
	assert.Equal(t, a.Next(), b.Next())
}
