package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/unilinkhq/unilink/internal/domain/session"
	"github.com/unilinkhq/unilink/internal/observability"
)

type SessionsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewSessionsRepo(pool *pgxpool.Pool, prom *observability.Prom) *SessionsRepo {
	return &SessionsRepo{pool: pool, prom: prom}
}

func (r *SessionsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *SessionsRepo) Create(ctx context.Context, sess session.Session) error {
	return r.observe("sessions.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO sessions (id, token, user_id, expires_at, created_at, updated_at, ip_address, user_agent)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			sess.ID, sess.Token, sess.UserID, sess.ExpiresAt, sess.CreatedAt, sess.UpdatedAt, sess.IPAddress, sess.UserAgent,
		)

		return err
	})
}

func (r *SessionsRepo) GetByToken(ctx context.Context, token string) (session.Session, error) {
	var sess session.Session

	err := r.observe("sessions.get_by_token", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, token, user_id, expires_at, created_at, updated_at, ip_address, user_agent
			FROM sessions
			WHERE token = $1`,
			token,
		).Scan(
			&sess.ID,
			&sess.Token,
			&sess.UserID,
			&sess.ExpiresAt,
			&sess.CreatedAt,
			&sess.UpdatedAt,
			&sess.IPAddress,
			&sess.UserAgent,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.Session{}, session.ErrNotFound
		}

		return session.Session{}, err
	}

	return sess, nil
}

func (r *SessionsRepo) DeleteByToken(ctx context.Context, token string) error {
	var affected int64

	err := r.observe("sessions.delete_by_token", func() error {
		tag, execErr := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)

		if execErr != nil {
			return execErr
		}

		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return session.ErrNotFound
	}

	return nil
}

// DeleteExpired removes every session whose expiry is at or before now.
// Used by the cleanup worker.
func (r *SessionsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var purged int64

	err := r.observe("sessions.delete_expired", func() error {
		tag, execErr := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)

		if execErr != nil {
			return execErr
		}

		purged = tag.RowsAffected()
		return nil
	})

	return purged, err
}
