package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/unilinkhq/unilink/internal/domain/session"
	"github.com/unilinkhq/unilink/internal/observability"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

const sessionKeyPrefix = "session:"

// maxEntryTTL caps how long a cached session may outlive a sign-out performed
// by another process that skipped the cache.
const maxEntryTTL = 5 * time.Minute

type sessionStore interface {
	Create(ctx context.Context, sess session.Session) error
	GetByToken(ctx context.Context, token string) (session.Session, error)
	DeleteByToken(ctx context.Context, token string) error
}

// SessionCache is a read-through cache in front of the sessions repo. Expiry
// is still enforced by the caller; the cache only saves the round trip to
// postgres on the hot auth path. When redis is not configured the router
// wires the repo directly and this type is never constructed.
type SessionCache struct {
	rdb   *redis.Client
	inner sessionStore
	prom  *observability.Prom
}

func NewSessionCache(rdb *redis.Client, inner sessionStore, prom *observability.Prom) *SessionCache {
	return &SessionCache{rdb: rdb, inner: inner, prom: prom}
}

func (c *SessionCache) Create(ctx context.Context, sess session.Session) error {
	err := c.inner.Create(ctx, sess)

	if err != nil {
		return err
	}

	c.prime(ctx, sess)
	return nil
}

func (c *SessionCache) GetByToken(ctx context.Context, token string) (session.Session, error) {
	raw, err := c.rdb.Get(ctx, sessionKeyPrefix+token).Bytes()

	switch {
	case err == nil:
		var sess session.Session

		if jsonErr := json.Unmarshal(raw, &sess); jsonErr == nil {
			c.count("hit")
			return sess, nil
		}

		// corrupt entry, fall through to postgres
		c.count("error")

	case errors.Is(err, redis.Nil):
		c.count("miss")

	default:
		// redis being down must not take auth down with it
		c.count("error")
	}

	sess, err := c.inner.GetByToken(ctx, token)

	if err != nil {
		return session.Session{}, err
	}

	c.prime(ctx, sess)
	return sess, nil
}

func (c *SessionCache) DeleteByToken(ctx context.Context, token string) error {
	// drop the cache entry first so a failed DB delete cannot leave a stale
	// hit behind
	_ = c.rdb.Del(ctx, sessionKeyPrefix+token).Err()

	return c.inner.DeleteByToken(ctx, token)
}

func (c *SessionCache) prime(ctx context.Context, sess session.Session) {
	ttl := time.Until(sess.ExpiresAt)

	if ttl <= 0 {
		return
	}

	if ttl > maxEntryTTL {
		ttl = maxEntryTTL
	}

	raw, err := json.Marshal(sess)

	if err != nil {
		return
	}

	_ = c.rdb.Set(ctx, sessionKeyPrefix+sess.Token, raw, ttl).Err()
}

func (c *SessionCache) count(result string) {
	if c.prom != nil {
		c.prom.SessionCacheLookups.WithLabelValues(result).Inc()
	}
}
