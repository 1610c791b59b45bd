package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unilinkhq/unilink/internal/config"
	"github.com/unilinkhq/unilink/internal/db"
	"github.com/unilinkhq/unilink/internal/observability"
	"github.com/unilinkhq/unilink/internal/repo/postgres"
	"github.com/unilinkhq/unilink/internal/worker"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("could not connect to postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	sessionsRepo := postgres.NewSessionsRepo(pool, prom)

	cleanup := worker.NewCleanup(worker.Config{
		Interval: 15 * time.Minute,
	}, sessionsRepo, log, prom)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		log.Info("worker shutting down")
		cancel()
	}()

	log.Info("session cleanup worker starting", "env", cfg.Env)

	if err := cleanup.Run(ctx); err != nil {
		log.Error("worker exited with error", "err", err)
		os.Exit(1)
	}

	log.Info("worker stopped")
}
