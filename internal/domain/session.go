// Package domain contains the core transform pipeline: scanning registration
// call sites, classifying server-function declarations and rewriting them to
// consult the mock registry.
package domain

import (
	"sort"

	m "github.com/EugenEistrach/mockfn/internal/model"
)

// Session is the explicit context threaded through one build/test session.
// It accumulates the names discovered as mocked so far; a registration
// scanned in one unit is visible when declarations are classified in the same
// unit and in every unit processed after it. State only ever grows — there is
// no per-name removal.
type Session struct {
	opts   m.Options
	mocked map[string]struct{}
}

// NewSession creates a session with the given options.
func NewSession(opts m.Options) *Session {
	return &Session{
		opts:   opts,
		mocked: make(map[string]struct{}),
	}
}

// Options returns the session configuration.
func (s *Session) Options() m.Options {
	return s.opts
}

// MarkMocked records name as having a registered mock.
func (s *Session) MarkMocked(name string) {
	s.mocked[name] = struct{}{}
}

// IsMocked reports whether name has been seen in a registration call.
func (s *Session) IsMocked(name string) bool {
	_, ok := s.mocked[name]
	return ok
}

// MockedNames returns the known mocked names in sorted order.
func (s *Session) MockedNames() []string {
	names := make([]string, 0, len(s.mocked))
	for name := range s.mocked {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
