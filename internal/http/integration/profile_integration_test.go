package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/unilinkhq/unilink/internal/config"
	"github.com/unilinkhq/unilink/internal/db"
	apphttp "github.com/unilinkhq/unilink/internal/http"
)

func testConfig() config.Config {
	return config.Config{
		Env:                  "test",
		Port:                 0,
		SessionTTLDays:       7,
		VerificationSecret:   "test-secret-key",
		VerificationTTLHours: 24,
		AllowedOrigins:       []string{"http://localhost:3000"},
	}
}

// Spins up the full router against a real postgres. Set TEST_DB_DSN to run;
// these are skipped otherwise so the unit suite stays self-contained.
func setupTestRouter(t *testing.T) (*gin.Engine, *pgxpool.Pool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")

	if dsn == "" {
		t.Skip("TEST_DB_DSN not set; skipping integration test")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)

	if err != nil {
		t.Fatalf("failed to create pgx pool: %v", err)
	}

	if err := db.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	router := apphttp.NewRouter(logger, pool, nil, testConfig())

	return router, pool
}

func resetDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE sessions, users
		RESTART IDENTITY CASCADE
	`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

func doRequest(router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

type signUpResponse struct {
	User struct {
		ID        string    `json:"id"`
		Email     string    `json:"email"`
		UpdatedAt time.Time `json:"updatedAt"`
	} `json:"user"`
	Session struct {
		Token string `json:"token"`
	} `json:"session"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func TestProfileIntegration_FullFlow(t *testing.T) {
	router, pool := setupTestRouter(t)
	resetDB(t, pool)

	defer resetDB(t, pool)

	// sign up

	signUpBody := `{
		"name": "Sam Doe",
		"email": "sam@example.com",
		"password": "password123",
		"role": "alumni",
		"graduationYear": 2019
	}`

	w := doRequest(router, http.MethodPost, "/auth/sign-up", signUpBody, "")

	if w.Code != http.StatusCreated {
		t.Fatalf("sign-up got status %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}

	var signedUp signUpResponse
	mustReadJSON(t, w, &signedUp)

	if signedUp.Session.Token == "" {
		t.Fatalf("sign-up returned empty session token")
	}

	token := signedUp.Session.Token

	// read own profile

	w2 := doRequest(router, http.MethodGet, "/api/profile", "", token)

	if w2.Code != http.StatusOK {
		t.Fatalf("get profile got status %d, want %d, body=%s", w2.Code, http.StatusOK, w2.Body.String())
	}

	var before struct {
		Bio       *string   `json:"bio"`
		UpdatedAt time.Time `json:"updatedAt"`
	}
	mustReadJSON(t, w2, &before)

	if before.Bio != nil {
		t.Fatalf("fresh profile should have no bio, got %q", *before.Bio)
	}

	// partial update with mixed keys: valid, unknown, and a JSON collection

	updateBody := `{
		"bio": "   Builds things.   ",
		"skills": ["go", "sql"],
		"favouriteColor": "teal"
	}`

	w3 := doRequest(router, http.MethodPatch, "/api/profile", updateBody, token)

	if w3.Code != http.StatusOK {
		t.Fatalf("update got status %d, want %d, body=%s", w3.Code, http.StatusOK, w3.Body.String())
	}

	var after struct {
		Bio       *string         `json:"bio"`
		Skills    json.RawMessage `json:"skills"`
		UpdatedAt time.Time       `json:"updatedAt"`
	}
	mustReadJSON(t, w3, &after)

	if after.Bio == nil || *after.Bio != "Builds things." {
		t.Fatalf("bio not trimmed and applied, got %v", after.Bio)
	}

	if string(after.Skills) == "null" || len(after.Skills) == 0 {
		t.Fatalf("skills not persisted, body=%s", w3.Body.String())
	}

	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Fatalf("updatedAt did not advance: before=%v after=%v", before.UpdatedAt, after.UpdatedAt)
	}

	// protected fields are rejected wholesale, even mixed with valid ones

	w4 := doRequest(router, http.MethodPatch, "/api/profile", `{"email":"new@example.com","bio":"x"}`, token)

	if w4.Code != http.StatusBadRequest {
		t.Fatalf("protected update got status %d, want %d, body=%s", w4.Code, http.StatusBadRequest, w4.Body.String())
	}

	var protectedErr errorResponse
	mustReadJSON(t, w4, &protectedErr)

	if protectedErr.Code != "PROTECTED_FIELDS_UPDATE_ATTEMPTED" {
		t.Fatalf("expected PROTECTED_FIELDS_UPDATE_ATTEMPTED, got %q", protectedErr.Code)
	}

	// the rejected write must not have touched the record

	w5 := doRequest(router, http.MethodGet, "/api/profile", "", token)

	var unchanged struct {
		Email string  `json:"email"`
		Bio   *string `json:"bio"`
	}
	mustReadJSON(t, w5, &unchanged)

	if unchanged.Email != "sam@example.com" || unchanged.Bio == nil || *unchanged.Bio != "Builds things." {
		t.Fatalf("record changed after rejected update, body=%s", w5.Body.String())
	}

	// sign out, then the token stops working

	w6 := doRequest(router, http.MethodPost, "/auth/sign-out", "", token)

	if w6.Code != http.StatusNoContent {
		t.Fatalf("sign-out got status %d, want %d, body=%s", w6.Code, http.StatusNoContent, w6.Body.String())
	}

	w7 := doRequest(router, http.MethodGet, "/api/profile", "", token)

	if w7.Code != http.StatusUnauthorized {
		t.Fatalf("get profile after sign-out got status %d, want %d", w7.Code, http.StatusUnauthorized)
	}
}

func TestProfileIntegration_ExpiredSession(t *testing.T) {
	router, pool := setupTestRouter(t)
	resetDB(t, pool)

	defer resetDB(t, pool)

	signUpBody := `{"name": "Sam Doe", "email": "sam2@example.com", "password": "password123"}`

	w := doRequest(router, http.MethodPost, "/auth/sign-up", signUpBody, "")

	if w.Code != http.StatusCreated {
		t.Fatalf("sign-up got status %d, body=%s", w.Code, w.Body.String())
	}

	var signedUp signUpResponse
	mustReadJSON(t, w, &signedUp)

	// age the session out from under the token

	_, err := pool.Exec(context.Background(),
		`UPDATE sessions SET expires_at = $1 WHERE token = $2`,
		time.Now().UTC().Add(-time.Minute), signedUp.Session.Token)
	if err != nil {
		t.Fatalf("failed to expire session: %v", err)
	}

	w2 := doRequest(router, http.MethodGet, "/api/profile", "", signedUp.Session.Token)

	if w2.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d, body=%s", w2.Code, http.StatusUnauthorized, w2.Body.String())
	}

	var e errorResponse
	mustReadJSON(t, w2, &e)

	if e.Error != "Session expired" {
		t.Fatalf("expected expired-session error, got %q", e.Error)
	}
}

func TestProfileIntegration_NoValidFields(t *testing.T) {
	router, pool := setupTestRouter(t)
	resetDB(t, pool)

	defer resetDB(t, pool)

	signUpBody := `{"name": "Sam Doe", "email": "sam3@example.com", "password": "password123"}`

	w := doRequest(router, http.MethodPost, "/auth/sign-up", signUpBody, "")

	if w.Code != http.StatusCreated {
		t.Fatalf("sign-up got status %d, body=%s", w.Code, w.Body.String())
	}

	var signedUp signUpResponse
	mustReadJSON(t, w, &signedUp)

	w2 := doRequest(router, http.MethodPatch, "/api/profile", `{"nonsense": 1}`, signedUp.Session.Token)

	if w2.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w2.Code, http.StatusBadRequest, w2.Body.String())
	}

	var e errorResponse
	mustReadJSON(t, w2, &e)

	if e.Code != "NO_VALID_FIELDS" {
		t.Fatalf("expected NO_VALID_FIELDS, got %q", e.Code)
	}
}
