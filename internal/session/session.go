// Package session carries the authenticated user and their effective
// permissions as an explicitly injected context object rather than
// ambient global state. A session is set once after login and cleared on
// logout; the wizard and access gate only ever read it.
package session

import (
	"fmt"
	"strings"

	"github.com/conveydesk/convey-cli/internal/access"
	"github.com/conveydesk/convey-cli/internal/credentials"
)

type Session struct {
	user   *access.User
	tokens *credentials.TokenSet
	gate   *access.Gate
}

// New creates an empty (logged-out) session over the given gate.
func New(gate *access.Gate) *Session {
	return &Session{gate: gate}
}

// Begin installs the authenticated user. Called once after a successful
// login or credential load.
func (s *Session) Begin(user *access.User, tokens *credentials.TokenSet) {
	s.user = user
	s.tokens = tokens
}

// End clears the session on logout.
func (s *Session) End() {
	s.user = nil
	s.tokens = nil
}

// User returns the current user, or nil when logged out.
func (s *Session) User() *access.User {
	return s.user
}

// Tokens returns the token set owned by the auth collaborator. The core
// never mutates it.
func (s *Session) Tokens() *credentials.TokenSet {
	return s.tokens
}

// Gate returns the authorization gate bound to this session.
func (s *Session) Gate() *access.Gate {
	return s.gate
}

// Permissions returns the user's effective permission set.
func (s *Session) Permissions() []string {
	return s.gate.EffectivePermissions(s.user)
}

// Can is a convenience for gating a single action.
func (s *Session) Can(permission string) bool {
	return s.gate.HasPermission(s.user, permission)
}

// CheckPermission reports which of the required permissions are missing.
func (s *Session) CheckPermission(required []string) access.Decision {
	return s.gate.CheckPermission(s.user, required)
}

// Require returns an error naming every missing permission, or nil when
// the user holds all of them. Commands call this before doing any work.
func (s *Session) Require(required ...string) error {
	decision := s.CheckPermission(required)
	if decision.Granted {
		return nil
	}
	return fmt.Errorf("permission denied: missing %s", strings.Join(decision.Missing, ", "))
}
