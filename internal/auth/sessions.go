package auth

import (
	"context"
	"errors"
	"time"

	"github.com/unilinkhq/unilink/internal/domain/session"
)

var (
	ErrNoSession      = errors.New("invalid session")
	ErrSessionExpired = errors.New("session expired")
)

// SessionStore resolves an opaque bearer token to its session row.
type SessionStore interface {
	GetByToken(ctx context.Context, token string) (session.Session, error)
}

// Sessions turns bearer tokens into user ids. Storage faults are passed
// through unwrapped so callers can tell an outage apart from a bad token.
type Sessions struct {
	store SessionStore
	now   func() time.Time
}

func NewSessions(store SessionStore) *Sessions {
	return &Sessions{store: store, now: time.Now}
}

func (s *Sessions) Verify(ctx context.Context, token string) (string, error) {
	sess, err := s.store.GetByToken(ctx, token)

	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return "", ErrNoSession
		}

		return "", err
	}

	if sess.Expired(s.now().UTC()) {
		return "", ErrSessionExpired
	}

	return sess.UserID, nil
}
