// Package session owns the evaluator's persistent state across one
// interactive run: the global scope, function table (bound in that
// same scope), bounded result/command history, checkpoint/restore, and
// the state hash used to compare two sessions for determinism.
//
// The teacher's eval.Evaluator keeps its own *scope.Scope alive between
// REPL lines (see repl/repl.go: one Evaluator instance is created once
// and reused for every Readline() iteration). Session generalizes that
// same "one long-lived mutable root, one-shot Parse+Eval per line"
// shape, adding the transactional-eval and checkpoint machinery the
// teacher never needed.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/paiml/ruchy-sub007/interp"
	"github.com/paiml/ruchy-sub007/parser"
	"github.com/paiml/ruchy-sub007/token"
	"github.com/paiml/ruchy-sub007/value"
)

const (
	defaultMaxResultHistory  = 1000
	defaultMaxCommandHistory = 10000
)

// Session is the persistent REPL state.
type Session struct {
	WorkingDirectory string

	root *value.Env

	resultHistory  []value.Value
	commandHistory []string

	maxResultHistory  int
	maxCommandHistory int
}

// New builds an empty session rooted in the current directory.
func New() *Session { return NewWithDir("") }

// NewWithDir builds an empty session rooted at workingDirectory, used
// to resolve relative source/import paths.
func NewWithDir(workingDirectory string) *Session {
	return &Session{
		WorkingDirectory:  workingDirectory,
		root:              value.NewEnv(nil),
		maxResultHistory:  defaultMaxResultHistory,
		maxCommandHistory: defaultMaxCommandHistory,
	}
}

// Bindings exposes the top-level frame for test assertions.
func (s *Session) Bindings() *value.Env { return s.root }

// BindingsMut is the mutable accessor; Go has no const pointers so this
// returns the same Env as Bindings — kept as a distinct method to mirror
// the API's bindings()/bindings_mut() pair.
func (s *Session) BindingsMut() *value.Env { return s.root }

// snapshot captures every top-level binding's canonical Display text,
// used both by checkpoint() and by the transactional-eval rollback.
func (s *Session) snapshot() map[string]string {
	snap := map[string]string{}
	for _, name := range s.root.TopLevelNames() {
		cell, ok := s.root.LookUp(name)
		if !ok {
			continue
		}
		snap[name] = value.Display(cell.Value)
	}
	return snap
}

// restoreSnapshot clears the root frame and reinstalls each entry by
// parsing its canonical Display text back into a value — the same
// technique restore() uses, factored out for rollback-on-failure.
func (s *Session) restoreSnapshot(snap map[string]string) {
	s.root.Clear()
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v, err := parseCanonical(snap[name])
		if err != nil {
			continue
		}
		s.root.Bind(name, v, true)
	}
}

func parseCanonical(text string) (value.Value, error) {
	p := parser.New(text)
	ast := p.Parse()
	if len(p.Diagnostics) > 0 {
		return value.Nil(), fmt.Errorf("%s", p.Diagnostics[0].Message)
	}
	ctx := interp.NewContext(time.Time{})
	v, evErr := interp.Eval(ast, value.NewEnv(nil), ctx)
	if evErr != nil {
		return value.Nil(), evErr
	}
	return v, nil
}

// injectVirtualHistory binds `_`/`__` (last and second-to-last result)
// into the root frame immediately before each eval — they are a view
// over resultHistory, not state of their own, and value.Env's
// TopLevelNames leaves them out of snapshots and the state hash.
func (s *Session) injectVirtualHistory() {
	n := len(s.resultHistory)
	if n >= 1 {
		s.root.Bind("_", s.resultHistory[n-1], false)
	}
	if n >= 2 {
		s.root.Bind("__", s.resultHistory[n-2], false)
	}
}

func (s *Session) pushResult(v value.Value) {
	s.resultHistory = append(s.resultHistory, v)
	if len(s.resultHistory) > s.maxResultHistory {
		s.resultHistory = s.resultHistory[len(s.resultHistory)-s.maxResultHistory:]
	}
}

func (s *Session) pushCommand(text string) {
	s.commandHistory = append(s.commandHistory, text)
	if len(s.commandHistory) > s.maxCommandHistory {
		s.commandHistory = s.commandHistory[len(s.commandHistory)-s.maxCommandHistory:]
	}
}

// Eval parses and evaluates input against the global frame, transactionally:
// a snapshot is taken first, and any failure (parse or eval) restores it,
// so a bad line never corrupts the session (spec.md §4.4.1 in spirit —
// named without the citation per house style).
func (s *Session) Eval(input string) (string, error) {
	v, err := s.evalInternal(input, time.Time{})
	if err != nil {
		return "", err
	}
	return value.Display(v), nil
}

func (s *Session) evalInternal(input string, deadline time.Time) (value.Value, error) {
	return s.evalInternalSeeded(input, deadline, nil)
}

// evalInternalSeeded is evalInternal with an optional pinned random
// seed, used by execute_with_seed-style callers (Replay) that need
// reproducible built-in randomness.
func (s *Session) evalInternalSeeded(input string, deadline time.Time, seed *int64) (value.Value, error) {
	snap := s.snapshot()
	p := parser.New(input)
	tree := p.Parse()
	if len(p.Diagnostics) > 0 {
		return value.Nil(), fmt.Errorf("%s", p.Diagnostics[0].Message)
	}

	s.injectVirtualHistory()
	ctx := interp.NewContext(deadline)
	if seed != nil {
		ctx.Rand = interp.NewRand(uint64(*seed))
	}
	v, evErr := interp.Eval(tree, s.root, ctx)
	if evErr != nil {
		s.restoreSnapshot(snap)
		return value.Nil(), evErr
	}
	s.pushResult(v)
	s.pushCommand(input)
	return v, nil
}

// EvaluateExprStrSeeded is EvaluateExprStr with the evaluator's random
// source pinned to seed.
func (s *Session) EvaluateExprStrSeeded(input string, deadline time.Time, seed int64) (value.Value, error) {
	return s.evalInternalSeeded(input, deadline, &seed)
}

// EvalBounded behaves as Eval but also aborts if the estimated heap
// usage exceeds maxMemoryBytes, polled once before evaluating (§5.3's
// heap estimate is a pre-evaluation approximation, not a live tracker).
func (s *Session) EvalBounded(input string, maxMemoryBytes int64, timeout time.Duration) (string, error) {
	if EstimateHeapBytes(s.root) > maxMemoryBytes {
		return "", fmt.Errorf("estimated heap usage exceeds bound of %d bytes", maxMemoryBytes)
	}
	deadline := time.Time{}
	if timeout > 0 {
		deadline = timeNow().Add(timeout)
	}
	v, err := s.evalInternal(input, deadline)
	if err != nil {
		return "", err
	}
	return value.Display(v), nil
}

// EvaluateExprStr returns the value itself rather than its Display.
func (s *Session) EvaluateExprStr(input string, deadline time.Time) (value.Value, error) {
	return s.evalInternal(input, deadline)
}

// ProcessLine reports whether the line was accepted. Blank input is not
// accepted and is not an error; a parse or eval error is returned along
// with false, and the session state is left as it was before the line.
func (s *Session) ProcessLine(input string) (bool, error) {
	if strings.TrimSpace(input) == "" {
		return false, nil
	}
	_, err := s.Eval(input)
	if err != nil {
		return false, err
	}
	return true, nil
}

// Checkpoint is a point-in-time capture of the session's top-level
// bindings, state hash, and resource counters.
type Checkpoint struct {
	Bindings   map[string]string
	StateHash  string
	ResultLen  int
	CommandLen int
}

func (s *Session) Checkpoint() Checkpoint {
	return Checkpoint{
		Bindings:   s.snapshot(),
		StateHash:  s.ComputeStateHash(),
		ResultLen:  len(s.resultHistory),
		CommandLen: len(s.commandHistory),
	}
}

// Restore clears the global frame then reinstalls every recorded
// binding. Restoring mid-evaluation (inside a nested scope) is
// undefined, as documented.
func (s *Session) Restore(cp Checkpoint) error {
	s.restoreSnapshot(cp.Bindings)
	return nil
}

// ComputeStateHash sorts top-level bindings by name and feeds
// `name, ":", Display(value), ";"` into SHA-256.
func (s *Session) ComputeStateHash() string {
	h := sha256.New()
	for _, name := range s.root.TopLevelNames() {
		cell, ok := s.root.LookUp(name)
		if !ok {
			continue
		}
		h.Write([]byte(name))
		h.Write([]byte(":"))
		h.Write([]byte(value.Display(cell.Value)))
		h.Write([]byte(";"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Divergence is one entry of validate_determinism's comparison.
type Divergence struct {
	Name         string
	ExpectedHash string
	ActualHash   string
	Missing      bool
	Extra        bool
}

// ValidateDeterminism compares this session's top-level bindings
// against other's, returning the divergence list and whether the two
// sessions are deterministic copies of each other.
func (s *Session) ValidateDeterminism(other *Session) ([]Divergence, bool) {
	a := s.snapshot()
	b := other.snapshot()
	var divs []Divergence

	names := map[string]bool{}
	for n := range a {
		names[n] = true
	}
	for n := range b {
		names[n] = true
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	for _, n := range sorted {
		av, aok := a[n]
		bv, bok := b[n]
		switch {
		case aok && !bok:
			divs = append(divs, Divergence{Name: n, Extra: true})
		case !aok && bok:
			divs = append(divs, Divergence{Name: n, Missing: true})
		case av != bv:
			divs = append(divs, Divergence{Name: n, ExpectedHash: hashOne(n, av), ActualHash: hashOne(n, bv)})
		}
	}
	return divs, len(divs) == 0
}

func hashOne(name, display string) string {
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte(":"))
	h.Write([]byte(display))
	h.Write([]byte(";"))
	return hex.EncodeToString(h.Sum(nil))
}

// ClearBindings empties the global frame and the bounded histories.
func (s *Session) ClearBindings() {
	s.root.Clear()
	s.resultHistory = nil
	s.commandHistory = nil
}

// GetPrompt returns the prompt string for the next line, always
// "ruchy> ". The session tracks no pending multi-line input, so there
// is no separate continuation prompt.
func (s *Session) GetPrompt() string {
	return "ruchy> "
}

// NeedsContinuation reports whether partial is an incomplete construct
// still awaiting more input, rather than a genuine syntax error: it
// attempts a parse and treats a diagnostic whose found token is EOF as
// "ran out of tokens, not wrong tokens" — the same test
// original_source's REPL uses to decide whether to keep prompting for
// more lines instead of reporting a parse error immediately.
func (s *Session) NeedsContinuation(partial string) bool {
	p := parser.New(partial)
	p.Parse()
	if len(p.Diagnostics) == 0 {
		return false
	}
	return p.Diagnostics[0].Found.Type == token.EOF
}

// EstimateHeapUsage is the method-form accessor for EstimateHeapBytes,
// named to match the on-disk/API vocabulary (§5.3).
func (s *Session) EstimateHeapUsage() int64 { return EstimateHeapBytes(s.root) }

// EstimateStackDepth mirrors the package-level function of the same
// name as a Session method.
func (s *Session) EstimateStackDepth() int { return EstimateStackDepth(s.root) }

func timeNow() time.Time { return time.Now() }
