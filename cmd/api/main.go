package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unilinkhq/unilink/internal/cache"
	"github.com/unilinkhq/unilink/internal/config"
	"github.com/unilinkhq/unilink/internal/db"
	httpx "github.com/unilinkhq/unilink/internal/http"
	"github.com/unilinkhq/unilink/internal/observability"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	// tracing

	otelCtx, otelCancel := context.WithTimeout(context.Background(), 5*time.Second)
	shutdownTracer, err := observability.InitTracer(otelCtx, "unilink-api", cfg.OTLPEndpoint)
	otelCancel()

	if err != nil {
		log.Warn("tracing disabled", "err", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	// storage

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("could not connect to postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	schemaCtx, schemaCancel := config.WithTimeout(10 * time.Second)
	err = db.EnsureSchema(schemaCtx, pool)
	schemaCancel()

	if err != nil {
		log.Error("could not ensure schema", "err", err)
		os.Exit(1)
	}

	// session cache is optional
	var rdb *redis.Client

	if cfg.RedisAddr != "" {
		rdb = cache.NewRedisClient(cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, pingCancel := config.WithTimeout(2 * time.Second)
		err = rdb.Ping(pingCtx).Err()
		pingCancel()

		if err != nil {
			log.Warn("redis unreachable, session cache disabled", "err", err)
			rdb = nil
		}

		if rdb != nil {
			defer rdb.Close()
		}
	}

	router := httpx.NewRouter(log, pool, rdb, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
			return
		}

		_ = shutdownTracer(ctx)
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
