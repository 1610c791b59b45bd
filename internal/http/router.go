package http

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/unilinkhq/unilink/internal/auth"
	"github.com/unilinkhq/unilink/internal/cache"
	"github.com/unilinkhq/unilink/internal/config"
	"github.com/unilinkhq/unilink/internal/http/handlers"
	"github.com/unilinkhq/unilink/internal/http/middlewares"
	"github.com/unilinkhq/unilink/internal/observability"
	"github.com/unilinkhq/unilink/internal/profile"
	"github.com/unilinkhq/unilink/internal/repo/postgres"
)

// metrics register against the default registry exactly once, so building a
// second router in the same process (tests do) cannot double-register
var promOnce = sync.OnceValue(func() *observability.Prom {
	return observability.NewProm(prometheus.DefaultRegisterer)
})

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, rdb *redis.Client, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	prom := promOnce()

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("unilink-api"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(prom.GinHandleMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20)) // 1 MiB is plenty for profile payloads

	// health

	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	health := handlers.NewHealthHandler(ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// wire up repositories

	usersRepo := postgres.NewUsersRepo(pool, prom)
	sessionsRepo := postgres.NewSessionsRepo(pool, prom)

	// session lookups go through redis when configured
	var sessionStore auth.SessionWriter = sessionsRepo

	if rdb != nil {
		sessionStore = cache.NewSessionCache(rdb, sessionsRepo, prom)
	}

	sessions := auth.NewSessions(sessionStore)

	verification := auth.NewVerificationManager(cfg.VerificationSecret, cfg.VerificationTTL())
	authSvc := auth.NewService(usersRepo, sessionStore, verification, cfg.SessionTTL())
	profileSvc := profile.NewService(usersRepo)

	authHandler := handlers.NewAuthHandler(authSvc, log)
	profileHandler := handlers.NewProfileHandler(profileSvc)

	authMW := middlewares.NewAuthMiddleware(sessions)
	signInLimiter := middlewares.NewRateLimiter(10, time.Minute)

	authRoutes := r.Group("/auth", middlewares.RequireJSON())
	{
		authRoutes.POST("/sign-up", signInLimiter.Middleware(middlewares.KeyByIP), authHandler.SignUp)
		authRoutes.POST("/sign-in", signInLimiter.Middleware(middlewares.KeyByIP), authHandler.SignIn)
		authRoutes.POST("/sign-out", authHandler.SignOut)
		authRoutes.GET("/session", authHandler.Session)
		authRoutes.GET("/verify-email", authHandler.VerifyEmail)
	}

	api := r.Group("/api", authMW.RequireSession())
	{
		api.GET("/profile", profileHandler.GetProfile)
		api.PATCH("/profile", middlewares.RequireJSON(), profileHandler.UpdateProfile)
	}

	return r
}
