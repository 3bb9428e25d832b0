package session

import (
	"context"
	"time"
)

// Session is the server-side record for a logged-in browser. It holds the
// identity shown in the navigation bar and nothing else; all other user
// data lives in Postgres.
type Session struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store defines how sessions are stored and retrieved. Implementations must
// treat a missing session as (nil, nil), not an error.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}
