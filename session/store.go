package session

import (
	"errors"
	"sync"
)

// ErrPendingOccupied is returned by SetPending when a suggestion is
// already waiting to be drained.
var ErrPendingOccupied = errors.New("a suggestion is already pending")

// Store holds the ordered turns and UI state of one session.
//
// Every method is safe for concurrent use. The TUI runs backend calls
// in tea.Cmd goroutines and the HTTP server may see overlapping
// requests for one session, so the store locks even though a session
// has a single logical thread of control.
type Store struct {
	mu     sync.Mutex
	turns  []Turn
	state  State
	extras map[string]any
}

// NewStore returns an empty store in the default state.
func NewStore() *Store {
	return &Store{state: DefaultState(), extras: make(map[string]any)}
}

// Append adds a turn to the end of the conversation.
func (s *Store) Append(t Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, copyTurn(t))
}

// Clear discards all turns, the pending suggestion and the last error.
// Mode and preferences survive.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
	s.state.PendingSuggestion = ""
	s.state.LastError = ""
	s.state.Typing = false
}

// All returns a copy of the turns in order.
func (s *Store) All() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	for i, t := range s.turns {
		out[i] = copyTurn(t)
	}
	return out
}

// Len returns the number of turns.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// Turn returns the i-th turn.
func (s *Store) Turn(i int) (Turn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.turns) {
		return Turn{}, false
	}
	return copyTurn(s.turns[i]), true
}

// SetFlag sets a named flag. Known flags with a value of the wrong type
// are ignored. The pending suggestion is only set when the slot is
// empty; use SetPending to learn whether it was accepted.
func (s *Store) SetFlag(name string, v any) {
	if name == FlagPendingSuggestion {
		if str, ok := v.(string); ok {
			_ = s.SetPending(str)
		}
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, known := s.state.get(name); known {
		s.state.set(name, v)
		return
	}
	s.extras[name] = v
}

// Flag returns the value of a named flag, or def when it was never set.
func (s *Store) Flag(name string, def any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.state.get(name); ok {
		return v
	}
	if v, ok := s.extras[name]; ok {
		return v
	}
	return def
}

// BoolFlag is Flag for boolean flags.
func (s *Store) BoolFlag(name string, def bool) bool {
	b, ok := s.Flag(name, def).(bool)
	if !ok {
		return def
	}
	return b
}

// SetPending stores a clicked suggestion. It never overwrites one that
// has not been drained yet.
func (s *Store) SetPending(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.PendingSuggestion != "" {
		return ErrPendingOccupied
	}
	s.state.PendingSuggestion = text
	return nil
}

// TakePending empties the pending slot and returns what it held.
func (s *Store) TakePending() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.state.PendingSuggestion
	s.state.PendingSuggestion = ""
	return p, p != ""
}

// Pending returns the pending suggestion without consuming it.
func (s *Store) Pending() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.PendingSuggestion
}

// State returns a snapshot of the UI state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Mode returns the current chat mode.
func (s *Store) Mode() Mode {
	return s.State().ChatMode
}
