package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/unilinkhq/unilink/internal/auth"
	"github.com/unilinkhq/unilink/internal/domain/session"
	"github.com/unilinkhq/unilink/internal/domain/user"
	"github.com/unilinkhq/unilink/internal/http/handlers"
	"github.com/unilinkhq/unilink/internal/repo/postgres"
)

// Fake implementation of the handlers.AuthService interface

type fakeAuthService struct {
	signUpFn  func(ctx context.Context, params auth.SignUpParams) (user.User, session.Session, string, error)
	signInFn  func(ctx context.Context, email, password string, ip, ua *string) (user.User, session.Session, error)
	signOutFn func(ctx context.Context, token string) error
	sessionFn func(ctx context.Context, token string) (session.Session, user.User, error)
	verifyFn  func(ctx context.Context, token string) (user.User, error)
}

func (f *fakeAuthService) SignUp(ctx context.Context, params auth.SignUpParams) (user.User, session.Session, string, error) {
	if f.signUpFn != nil {
		return f.signUpFn(ctx, params)
	}
	return user.User{}, session.Session{}, "", nil
}

func (f *fakeAuthService) SignIn(ctx context.Context, email, password string, ip, ua *string) (user.User, session.Session, error) {
	if f.signInFn != nil {
		return f.signInFn(ctx, email, password, ip, ua)
	}
	return user.User{}, session.Session{}, nil
}

func (f *fakeAuthService) SignOut(ctx context.Context, token string) error {
	if f.signOutFn != nil {
		return f.signOutFn(ctx, token)
	}
	return nil
}

func (f *fakeAuthService) Session(ctx context.Context, token string) (session.Session, user.User, error) {
	if f.sessionFn != nil {
		return f.sessionFn(ctx, token)
	}
	return session.Session{}, user.User{}, session.ErrNotFound
}

func (f *fakeAuthService) VerifyEmail(ctx context.Context, token string) (user.User, error) {
	if f.verifyFn != nil {
		return f.verifyFn(ctx, token)
	}
	return user.User{}, nil
}

func setupAuthRouter(svc *fakeAuthService) *gin.Engine {
	r := gin.New()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handlers.NewAuthHandler(svc, log)

	r.POST("/auth/sign-up", h.SignUp)
	r.POST("/auth/sign-in", h.SignIn)
	r.POST("/auth/sign-out", h.SignOut)
	r.GET("/auth/session", h.Session)
	r.GET("/auth/verify-email", h.VerifyEmail)

	return r
}

func TestSignUpHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name       string
		body       string
		svcSetup   func(*fakeAuthService)
		wantStatus int
	}{
		{
			name: "success_with_role_fields",
			body: `{
				"name": "Sam Doe",
				"email": "sam@example.com",
				"password": "password123",
				"role": "alumni",
				"graduationYear": 2019,
				"currentCompany": "Acme"
			}`,
			svcSetup: func(f *fakeAuthService) {
				f.signUpFn = func(ctx context.Context, params auth.SignUpParams) (user.User, session.Session, string, error) {
					if params.Role == nil || *params.Role != "alumni" {
						t.Fatalf("role not passed through: %v", params.Role)
					}
					if params.GraduationYear == nil || *params.GraduationYear != 2019 {
						t.Fatalf("graduationYear not passed through")
					}

					return user.User{ID: "u-1", Name: params.Name, Email: params.Email, CreatedAt: now, UpdatedAt: now},
						session.Session{Token: "tok", ExpiresAt: now.Add(time.Hour)},
						"verify-token",
						nil
				}
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid_role",
			body:       `{"name": "Sam", "email": "sam@example.com", "password": "password123", "role": "admin"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "short_password",
			body:       `{"name": "Sam", "email": "sam@example.com", "password": "short"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "email_taken",
			body: `{"name": "Sam", "email": "sam@example.com", "password": "password123"}`,
			svcSetup: func(f *fakeAuthService) {
				f.signUpFn = func(ctx context.Context, params auth.SignUpParams) (user.User, session.Session, string, error) {
					return user.User{}, session.Session{}, "", postgres.ErrEmailAlreadyUsed
				}
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{}

			if tt.svcSetup != nil {
				tt.svcSetup(svc)
			}

			r := setupAuthRouter(svc)

			req := httptest.NewRequest(http.MethodPost, "/auth/sign-up", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestSignInHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name       string
		body       string
		svcSetup   func(*fakeAuthService)
		wantStatus int
	}{
		{
			name: "success",
			body: `{"email": "sam@example.com", "password": "password123"}`,
			svcSetup: func(f *fakeAuthService) {
				f.signInFn = func(ctx context.Context, email, password string, ip, ua *string) (user.User, session.Session, error) {
					return user.User{ID: "u-1", Email: email},
						session.Session{Token: "tok", ExpiresAt: now.Add(time.Hour)},
						nil
				}
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "bad_credentials",
			body: `{"email": "sam@example.com", "password": "wrong-password"}`,
			svcSetup: func(f *fakeAuthService) {
				f.signInFn = func(ctx context.Context, email, password string, ip, ua *string) (user.User, session.Session, error) {
					return user.User{}, session.Session{}, auth.ErrInvalidCredentials
				}
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing_password",
			body:       `{"email": "sam@example.com"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{}

			if tt.svcSetup != nil {
				tt.svcSetup(svc)
			}

			r := setupAuthRouter(svc)

			req := httptest.NewRequest(http.MethodPost, "/auth/sign-in", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestSignOutHandler(t *testing.T) {
	called := false

	svc := &fakeAuthService{
		signOutFn: func(ctx context.Context, token string) error {
			called = true
			if token != "tok-123" {
				t.Fatalf("got token %q", token)
			}
			return nil
		},
	}

	r := setupAuthRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/sign-out", nil)
	req.Header.Set("Authorization", "Bearer tok-123")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("got status %d, want 204, body=%s", w.Code, w.Body.String())
	}

	if !called {
		t.Fatalf("sign-out never reached the service")
	}
}

func TestSignOutHandler_MissingToken(t *testing.T) {
	r := setupAuthRouter(&fakeAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/sign-out", nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", w.Code)
	}
}

func TestSessionHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name       string
		authHeader string
		svcSetup   func(*fakeAuthService)
		wantStatus int
	}{
		{
			name:       "success",
			authHeader: "Bearer tok",
			svcSetup: func(f *fakeAuthService) {
				f.sessionFn = func(ctx context.Context, token string) (session.Session, user.User, error) {
					return session.Session{Token: token, ExpiresAt: now.Add(time.Hour)},
						user.User{ID: "u-1"},
						nil
				}
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown_token",
			authHeader: "Bearer nope",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired",
			authHeader: "Bearer stale",
			svcSetup: func(f *fakeAuthService) {
				f.sessionFn = func(ctx context.Context, token string) (session.Session, user.User, error) {
					return session.Session{}, user.User{}, auth.ErrSessionExpired
				}
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "no_header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{}

			if tt.svcSetup != nil {
				tt.svcSetup(svc)
			}

			r := setupAuthRouter(svc)

			req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)

			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestVerifyEmailHandler(t *testing.T) {
	r := setupAuthRouter(&fakeAuthService{
		verifyFn: func(ctx context.Context, token string) (user.User, error) {
			return user.User{ID: "u-1", EmailVerified: true}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/verify-email?token=abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Status string `json:"status"`
		User   struct {
			EmailVerified bool `json:"emailVerified"`
		} `json:"user"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Status != "verified" || !resp.User.EmailVerified {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestVerifyEmailHandler_MissingToken(t *testing.T) {
	r := setupAuthRouter(&fakeAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/verify-email", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
}
