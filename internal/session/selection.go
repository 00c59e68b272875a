// Package session holds the dashboard's selection state as an explicit
// object passed to the chart service, so it can be exercised in tests
// without a running UI.
package session

import (
	"fmt"
	"sort"
	"sync"

	"naepdash/internal/dataset"
)

// Mode selects between rendering every state and an explicit subset.
type Mode string

const (
	ModeAllStates      Mode = "all_states"
	ModeSelectedStates Mode = "selected_states"
)

// ParseMode normalizes a mode value from the API.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAllStates, ModeSelectedStates:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown display mode %q", s)
	}
}

// Selection is the single process-wide selection state. The dashboard
// is a one-user local tool, but the HTTP server is concurrent, so
// access is serialized; semantics stay last-writer-wins.
type Selection struct {
	mu       sync.Mutex
	subject  dataset.Subject
	grade    dataset.Grade
	mode     Mode
	selected map[string]struct{}
}

// New creates a selection for the given context in all-states mode.
func New(subject dataset.Subject, grade dataset.Grade) *Selection {
	return &Selection{
		subject:  subject,
		grade:    grade,
		mode:     ModeAllStates,
		selected: make(map[string]struct{}),
	}
}

// SetContext switches the active subject/grade. Changing either resets
// the mode to all-states and clears the selected set, so a stale
// selection can never reference a different data context.
func (s *Selection) SetContext(subject dataset.Subject, grade dataset.Grade) (changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subject == subject && s.grade == grade {
		return false
	}

	s.subject = subject
	s.grade = grade
	s.mode = ModeAllStates
	s.selected = make(map[string]struct{})
	return true
}

// SetMode switches between all-states and selected-states display.
func (s *Selection) SetMode(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
}

// UpdateSelection replaces the selected state set. States without data
// for the active context are kept; they are silently omitted at render
// time rather than rejected here.
func (s *Selection) UpdateSelection(states []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = make(map[string]struct{}, len(states))
	for _, state := range states {
		s.selected[state] = struct{}{}
	}
}

// Includes reports whether a state should be rendered under the current mode.
func (s *Selection) Includes(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeAllStates {
		return true
	}
	_, ok := s.selected[state]
	return ok
}

// Snapshot is an immutable copy of the selection state.
type Snapshot struct {
	Subject  dataset.Subject `json:"subject"`
	Grade    dataset.Grade   `json:"grade"`
	Mode     Mode            `json:"mode"`
	Selected []string        `json:"selected"`
}

// Snapshot returns a copy of the current state with a sorted selected list.
func (s *Selection) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	selected := make([]string, 0, len(s.selected))
	for state := range s.selected {
		selected = append(selected, state)
	}
	sort.Strings(selected)

	return Snapshot{
		Subject:  s.subject,
		Grade:    s.grade,
		Mode:     s.mode,
		Selected: selected,
	}
}
