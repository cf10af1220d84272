// Package replay wraps a session.Session to record every interaction
// and play recordings back through an independent session, comparing
// each recorded output with the replayed one to validate determinism.
package replay

import (
	"encoding/json"
	"os"
	"time"

	"github.com/paiml/ruchy-sub007/interp"
	"github.com/paiml/ruchy-sub007/session"
	"github.com/paiml/ruchy-sub007/value"
)

// NewSeededRNG exposes the evaluator's deterministic LCG under the
// replay package's own vocabulary, so a caller wiring a future builtin
// random source has a name to reach for without importing interp
// directly.
func NewSeededRNG(seed uint64) *interp.Rand { return interp.NewRand(seed) }

// Mode tags how an interaction's input text arrived.
type Mode string

const (
	ModeInteractive Mode = "interactive"
	ModePaste       Mode = "paste"
	ModeScripted    Mode = "scripted"
)

// Output is the recorded result of one interaction: exactly one of Ok
// or Err is set, matching the on-disk {ok: ...} | {err: ...} shape.
type Output struct {
	Ok  *string `json:"ok,omitempty"`
	Err *string `json:"err,omitempty"`
}

// Interaction is one recorded input/output pair.
type Interaction struct {
	InputID     int    `json:"input_id"`
	Text        string `json:"text"`
	Mode        Mode   `json:"mode"`
	TimestampNs int64  `json:"timestamp_ns"`
	Output      Output `json:"output"`
}

// Recording is the serializable document described in spec.md §6.2.
type Recording struct {
	SessionID     string        `json:"session_id"`
	CreatedAt     string        `json:"created_at"`
	RuchyVersion  string        `json:"ruchy_version"`
	StudentID     string        `json:"student_id,omitempty"`
	AssignmentID  string        `json:"assignment_id,omitempty"`
	Tags          []string      `json:"tags"`
	Interactions  []Interaction `json:"interactions"`
}

// Replay owns one Session and the Recording being built against it.
type Replay struct {
	Session  *session.Session
	Recording Recording

	pending map[int]int // input_id -> index into Interactions awaiting its output
	nextID  int
}

// New wraps sess in a fresh, empty recording.
func New(sess *session.Session, sessionID, createdAtISO8601, ruchyVersion string) *Replay {
	return &Replay{
		Session: sess,
		Recording: Recording{
			SessionID:    sessionID,
			CreatedAt:    createdAtISO8601,
			RuchyVersion: ruchyVersion,
		},
		pending: map[int]int{},
	}
}

// RecordInput appends a new interaction awaiting its output and returns
// its input_id.
func (r *Replay) RecordInput(text string, mode Mode, timestampNs int64) int {
	id := r.nextID
	r.nextID++
	r.Recording.Interactions = append(r.Recording.Interactions, Interaction{
		InputID:     id,
		Text:        text,
		Mode:        mode,
		TimestampNs: timestampNs,
	})
	r.pending[id] = len(r.Recording.Interactions) - 1
	return id
}

// RecordOutput closes the interaction identified by inputID with either
// a successful Display string or an error message.
func (r *Replay) RecordOutput(inputID int, display string, evalErr error) {
	idx, ok := r.pending[inputID]
	if !ok {
		return
	}
	delete(r.pending, inputID)
	if evalErr != nil {
		msg := evalErr.Error()
		r.Recording.Interactions[idx].Output = Output{Err: &msg}
		return
	}
	r.Recording.Interactions[idx].Output = Output{Ok: &display}
}

// Save writes the recording to path as indented JSON, matching the
// on-disk schema every Interaction's struct tags describe.
func (r *Replay) Save(path string) error {
	data, err := json.MarshalIndent(r.Recording, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a Recording back from a file written by Save (or by any
// compatible tool emitting the same schema).
func Load(path string) (Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Recording{}, err
	}
	var rec Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return Recording{}, err
	}
	return rec, nil
}

// ResourceUsage is the {output, state_hash, resource_usage} triple
// execute_with_seed returns.
type ResourceUsage struct {
	HeapBytes  int64
	StackDepth int
}

// ExecuteWithSeed evaluates input after pinning the evaluator's
// built-in pseudo-random source to seed, returning the display output,
// the session's state hash, and a resource-usage snapshot.
func (r *Replay) ExecuteWithSeed(input string, seed int64) (string, string, ResourceUsage, error) {
	v, err := r.Session.EvaluateExprStrSeeded(input, time.Time{}, seed)
	if err != nil {
		return "", r.Session.ComputeStateHash(), ResourceUsage{}, err
	}
	usage := ResourceUsage{
		HeapBytes:  session.EstimateHeapBytes(r.Session.Bindings()),
		StackDepth: session.EstimateStackDepth(r.Session.Bindings()),
	}
	return value.Display(v), r.Session.ComputeStateHash(), usage, nil
}

// Divergence is one entry of a replay-vs-recording comparison.
type Divergence struct {
	Kind     string // "output" | "state" | "missing" | "extra"
	Name     string
	Expected string
	Actual   string
}

// ReplayAgainst feeds every recorded input, in order, through a fresh
// Session and compares each output (or error message) against the
// recording, returning the divergence list. Only "output" divergences
// are produced: the recording stores no state hashes, so session state
// is not compared. Replay is deterministic iff the list is empty.
func ReplayAgainst(rec Recording) ([]Divergence, bool) {
	fresh := session.New()
	var divs []Divergence
	for _, in := range rec.Interactions {
		display, err := fresh.Eval(in.Text)
		switch {
		case in.Output.Ok != nil && err == nil:
			if display != *in.Output.Ok {
				divs = append(divs, Divergence{Kind: "output", Name: in.Text, Expected: *in.Output.Ok, Actual: display})
			}
		case in.Output.Err != nil && err != nil:
			if err.Error() != *in.Output.Err {
				divs = append(divs, Divergence{Kind: "output", Name: in.Text, Expected: *in.Output.Err, Actual: err.Error()})
			}
		case in.Output.Ok != nil && err != nil:
			divs = append(divs, Divergence{Kind: "output", Name: in.Text, Expected: *in.Output.Ok, Actual: err.Error()})
		case in.Output.Err != nil && err == nil:
			divs = append(divs, Divergence{Kind: "output", Name: in.Text, Expected: *in.Output.Err, Actual: display})
		}
	}
	return divs, len(divs) == 0
}
