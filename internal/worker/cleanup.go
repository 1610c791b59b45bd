package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/unilinkhq/unilink/internal/observability"
)

type SessionPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Config struct {
	Interval time.Duration
}

// Cleanup sweeps expired sessions out of the store on a fixed interval.
// Expired sessions are already rejected at auth time, so the sweep is purely
// about keeping the table small.
type Cleanup struct {
	cfg      Config
	sessions SessionPurger
	log      *slog.Logger
	prom     *observability.Prom
}

func NewCleanup(cfg Config, sessions SessionPurger, log *slog.Logger, prom *observability.Prom) *Cleanup {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}

	return &Cleanup{
		cfg:      cfg,
		sessions: sessions,
		log:      log,
		prom:     prom,
	}
}

func (c *Cleanup) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("session cleanup received shutdown signal")
			return nil

		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *Cleanup) sweep(ctx context.Context) {
	sctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	purged, err := c.sessions.DeleteExpired(sctx, time.Now().UTC())

	if err != nil {
		if c.prom != nil {
			c.prom.SessionCleanupFailures.Inc()
		}
		c.log.Error("session cleanup sweep failed", "err", err)
		return
	}

	if c.prom != nil {
		c.prom.SessionsPurged.Add(float64(purged))
	}

	if purged > 0 {
		c.log.Info("purged expired sessions", "count", purged)
	}
}
