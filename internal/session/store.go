package session

import (
	"context"
	"time"
)

// Session binds a browser session to a user and their active org.
// It stores identity pointers only; the signed-in user view is
// resolved per request by the auth middleware.
type Session struct {
	SessionID string
	UserID    int64
	OrgID     int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store defines how sessions are stored and retrieved. A nil session
// with a nil error means "not found".
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, s Session) error
	Delete(ctx context.Context, sessionID string) error
}
