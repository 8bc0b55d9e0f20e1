package auth

import (
	"context"

	"tailor-backend/internal/models"
)

// State is the authentication phase of a session.
type State int

const (
	// StateLoading means identity is not yet known; readers show a pending state.
	StateLoading State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Session is the caller identity handed to readers and services. User and
// Profile are set only when State is StateAuthenticated; Profile may be nil
// for a user who has not saved one yet.
type Session struct {
	State   State
	User    *models.User
	Profile *models.UserProfile
}

func Loading() Session { return Session{State: StateLoading} }

func Anonymous() Session { return Session{State: StateAnonymous} }

func Authenticated(user *models.User, profile *models.UserProfile) Session {
	if user == nil {
		return Anonymous()
	}
	return Session{State: StateAuthenticated, User: user, Profile: profile}
}

// UserID returns the signed-in user's id, or "".
func (s Session) UserID() string {
	if s.State != StateAuthenticated || s.User == nil {
		return ""
	}
	return s.User.ID
}

func (s Session) IsAuthenticated() bool { return s.UserID() != "" }

// SameIdentity reports whether two sessions describe the same caller.
// Profile edits do not change identity.
func (s Session) SameIdentity(o Session) bool {
	return s.State == o.State && s.UserID() == o.UserID()
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored on ctx, or an anonymous session.
func FromContext(ctx context.Context) Session {
	if s, ok := ctx.Value(sessionKey{}).(Session); ok {
		return s
	}
	return Anonymous()
}
