package domain

import "time"

// SessionStatus represents the lifecycle state of a session.
//
//	created -> active -> expired | revoked
//
// Revoked sessions are deleted from the store, so only active and expired
// are observable on a persisted row.
type SessionStatus string

const (
	SessionCreated SessionStatus = "created"
	SessionActive  SessionStatus = "active"
	SessionExpired SessionStatus = "expired"
	SessionRevoked SessionStatus = "revoked"
)

// Session is a server-side login session identified by an opaque token.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Status reports the state of a persisted session at instant now.
// A session is active iff now < ExpiresAt.
func (s Session) Status(now time.Time) SessionStatus {
	if now.Before(s.ExpiresAt) {
		return SessionActive
	}
	return SessionExpired
}

// IsTerminal reports whether no further transition is possible from st.
func (st SessionStatus) IsTerminal() bool {
	return st == SessionExpired || st == SessionRevoked
}
