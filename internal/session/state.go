package session

import (
	"net/http"

	"github.com/hongminglow/rta-portal/internal/models"
)

// State is the authenticated session as seen by a single request.
type State struct {
	// User is nil when nobody is logged in.
	User *models.User
	// Loading is set while session state cannot be established yet.
	Loading bool
	// SessionID identifies the backing session record, when there is one.
	SessionID string
}

// LoggedIn reports whether a user is attached.
func (s State) LoggedIn() bool {
	return s.User != nil
}

// Role returns the user's role, or the empty role when logged out.
func (s State) Role() models.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// Provider is the single accessor for session state. Consumers never read tokens themselves.
type Provider interface {
	Resolve(r *http.Request) State
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(r *http.Request) State

// Resolve calls f(r).
func (f ProviderFunc) Resolve(r *http.Request) State {
	return f(r)
}
