package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/unilinkhq/unilink/internal/auth"
	"github.com/unilinkhq/unilink/internal/domain/session"
)

type fakeSessionStore struct {
	getFn func(ctx context.Context, token string) (session.Session, error)
}

func (f *fakeSessionStore) GetByToken(ctx context.Context, token string) (session.Session, error) {
	if f.getFn != nil {
		return f.getFn(ctx, token)
	}

	return session.Session{}, session.ErrNotFound
}

func TestVerify(t *testing.T) {
	now := time.Now().UTC()
	storeFault := errors.New("connection refused")

	tests := []struct {
		name       string
		store      func(ctx context.Context, token string) (session.Session, error)
		wantUserID string
		wantErr    error
	}{
		{
			name: "valid_session",
			store: func(ctx context.Context, token string) (session.Session, error) {
				return session.Session{
					Token:     token,
					UserID:    "u-1",
					ExpiresAt: now.Add(time.Hour),
				}, nil
			},
			wantUserID: "u-1",
		},
		{
			name: "unknown_token",
			store: func(ctx context.Context, token string) (session.Session, error) {
				return session.Session{}, session.ErrNotFound
			},
			wantErr: auth.ErrNoSession,
		},
		{
			name: "expired_session",
			store: func(ctx context.Context, token string) (session.Session, error) {
				return session.Session{
					Token:     token,
					UserID:    "u-1",
					ExpiresAt: now.Add(-time.Minute),
				}, nil
			},
			wantErr: auth.ErrSessionExpired,
		},
		{
			// a storage fault must surface as itself, never as an auth failure
			name: "store_fault_passes_through",
			store: func(ctx context.Context, token string) (session.Session, error) {
				return session.Session{}, storeFault
			},
			wantErr: storeFault,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			sessions := auth.NewSessions(&fakeSessionStore{getFn: tt.store})

			userID, err := sessions.Verify(context.Background(), "some-token")

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got err %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if userID != tt.wantUserID {
				t.Fatalf("got user id %q, want %q", userID, tt.wantUserID)
			}
		})
	}
}

// A session whose expiry equals the current instant is already unusable.
func TestSessionExpiredAtExactInstant(t *testing.T) {
	now := time.Now().UTC()

	sess := session.Session{ExpiresAt: now}

	if !sess.Expired(now) {
		t.Fatalf("session expiring at now should count as expired")
	}

	if sess.Expired(now.Add(-time.Nanosecond)) {
		t.Fatalf("session should still be live just before expiry")
	}
}
