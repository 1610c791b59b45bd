package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the two tables the service owns. Statements are
// idempotent so repeated boots are safe.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id                     TEXT PRIMARY KEY,
			name                   TEXT NOT NULL,
			email                  TEXT NOT NULL UNIQUE,
			email_verified         BOOLEAN NOT NULL DEFAULT FALSE,
			password_hash          TEXT NOT NULL,
			image                  TEXT,
			created_at             TIMESTAMPTZ NOT NULL,
			updated_at             TIMESTAMPTZ NOT NULL,
			role                   TEXT,
			registration_number    TEXT,
			university             TEXT,
			enrollment_year        INTEGER,
			aadhaar_number         TEXT,
			graduation_year        INTEGER,
			current_company        TEXT,
			current_position       TEXT,
			institution_id         TEXT,
			institution_name       TEXT,
			accreditation_status   TEXT,
			department_id          TEXT,
			department_name        TEXT,
			access_level           TEXT,
			bio                    TEXT,
			phone                  TEXT,
			location               TEXT,
			linkedin_url           TEXT,
			github_url             TEXT,
			portfolio_url          TEXT,
			career_goals           TEXT,
			skills                 JSONB,
			interests              JSONB,
			achievements           JSONB,
			projects               JSONB,
			mentorship_preferences JSONB
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			token      TEXT NOT NULL UNIQUE,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			ip_address TEXT,
			user_agent TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS sessions_expires_at_idx ON sessions (expires_at)`,
		`CREATE INDEX IF NOT EXISTS sessions_user_id_idx ON sessions (user_id)`,
	}

	for _, stmt := range stmts {
		_, err := pool.Exec(ctx, stmt)

		if err != nil {
			return err
		}
	}

	return nil
}
