// Package state implements the single mutable application state container
// and the entity managers that mutate it. All mutation goes through
// Store.Transition, which replaces the whole AppState atomically; managers
// are Store methods grouped per entity file.
package state

import (
	"sync"
	"time"

	"lifecoach/internal/logging"
	"lifecoach/internal/types"
)

// Feedback is an event emitted after certain user-driven mutations. The
// coach subscribes to it and forwards the text to the model as an
// already-done fact; emission never blocks a state transition.
type Feedback struct {
	Text string
}

// LabelRule decorates check-in session labels when the habit title contains
// one of the keywords. Keyword matching is configurable rather than
// hardcoded so locales can supply their own trigger words.
type LabelRule struct {
	Name     string
	Keywords []string
	Prefix   string
}

// DefaultLabelRules returns the built-in morning/night decorations.
func DefaultLabelRules() []LabelRule {
	return []LabelRule{
		{Name: "morning", Keywords: []string{"morning", "wake"}, Prefix: "☀️ "},
		{Name: "night", Keywords: []string{"night", "sleep", "bed"}, Prefix: "\U0001f319 "},
	}
}

// Store holds the single AppState value. Reads return deep clones;
// Transition applies a pure update function under the write lock and then
// notifies commit hooks outside it. Single-writer discipline is enforced by
// the mutex, not by caller convention.
type Store struct {
	mu    sync.RWMutex
	state types.AppState

	hookMu   sync.Mutex
	onCommit []func()

	feedback   chan Feedback
	labelRules []LabelRule

	// now is injectable for deterministic tests.
	now func() time.Time
}

// NewStore creates a store seeded with the given state.
func NewStore(initial types.AppState) *Store {
	return &Store{
		state:      initial.Clone(),
		feedback:   make(chan Feedback, 16),
		labelRules: DefaultLabelRules(),
		now:        time.Now,
	}
}

// Read returns a deep clone of the current state.
func (s *Store) Read() types.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Transition applies fn to a clone of the latest state and commits the
// result atomically. fn must be pure over its argument; it receives a clone
// and may mutate it freely. Commit hooks fire after the lock is released so
// a hook can call Read without deadlocking.
func (s *Store) Transition(fn func(types.AppState) types.AppState) {
	s.mu.Lock()
	s.state = fn(s.state.Clone())
	s.mu.Unlock()

	s.notifyCommit()
}

// Replace swaps in a whole new state (cloud restore, import). Runs the same
// commit hooks as Transition.
func (s *Store) Replace(next types.AppState) {
	s.mu.Lock()
	s.state = next.Clone()
	s.mu.Unlock()

	logging.State("state replaced wholesale")
	s.notifyCommit()
}

// OnCommit registers a hook runs after every committed transition.
// Persistence and sync debouncers register here.
func (s *Store) OnCommit(fn func()) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.onCommit = append(s.onCommit, fn)
}

func (s *Store) notifyCommit() {
	s.hookMu.Lock()
	hooks := append([]func(){}, s.onCommit...)
	s.hookMu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}

// Feedback returns the event channel the coach consumes.
func (s *Store) Feedback() <-chan Feedback {
	return s.feedback
}

// emitFeedback sends a feedback event without ever blocking the mutation
// path. If no consumer is draining the channel the event is dropped.
func (s *Store) emitFeedback(text string) {
	select {
	case s.feedback <- Feedback{Text: text}:
	default:
		logging.StateWarn("feedback channel full, dropping event")
	}
}

// SetLabelRules replaces the check-in label decoration rules.
func (s *Store) SetLabelRules(rules []LabelRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(rules) > 0 {
		s.labelRules = rules
	}
}

// SetClock overrides the time source. Tests only.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) nowMillis() int64 {
	s.mu.RLock()
	clock := s.now
	s.mu.RUnlock()
	return clock().UnixMilli()
}

func (s *Store) nowTime() time.Time {
	s.mu.RLock()
	clock := s.now
	s.mu.RUnlock()
	return clock()
}
