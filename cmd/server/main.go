package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/velora-api/config"
	"github.com/ErlanBelekov/velora-api/internal/auth"
	"github.com/ErlanBelekov/velora-api/internal/email"
	"github.com/ErlanBelekov/velora-api/internal/health"
	"github.com/ErlanBelekov/velora-api/internal/i18n"
	"github.com/ErlanBelekov/velora-api/internal/infrastructure/store"
	ctxlog "github.com/ErlanBelekov/velora-api/internal/log"
	"github.com/ErlanBelekov/velora-api/internal/metrics"
	"github.com/ErlanBelekov/velora-api/internal/ratelimit"
	httptransport "github.com/ErlanBelekov/velora-api/internal/transport/http"
	"github.com/ErlanBelekov/velora-api/internal/transport/http/handler"
	"github.com/ErlanBelekov/velora-api/internal/transport/http/response"
	"github.com/ErlanBelekov/velora-api/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
)

const rateLimitWindow = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	msgs, err := i18n.New(cfg.Locale)
	if err != nil {
		log.Fatalf("messages: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	db, err := store.Open(ctx, cfg, logger)
	if err != nil {
		stop()
		log.Fatalf("store: %v", err)
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			logger.Error("store close", "error", err)
		}
	}()

	deps := []health.Dependency{{Name: db.Driver, Pinger: db}}

	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter(cfg.RateLimitPerMinute, rateLimitWindow)
	if cfg.RedisURL != "" {
		rdb, err := ratelimit.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			stop()
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.RateLimitPerMinute, rateLimitWindow)
		deps = append(deps, health.Dependency{
			Name:   "redis",
			Pinger: health.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		})
	}

	tokens := auth.NewTokenService([]byte(cfg.JWTSecret))
	resp := response.NewWriter(msgs, cfg.ExposeErrorDetails())

	// Auth
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	authUsecase := usecase.NewAuthUsecase(db.Users, auth.NewHasher(auth.DefaultHashCost), tokens, sender, logger)
	authHandler := handler.NewAuthHandler(authUsecase, resp, logger)

	// Reviews
	reviewUsecase := usecase.NewReviewUsecase(db.Reviews)
	reviewHandler := handler.NewReviewHandler(reviewUsecase, resp, logger)

	metrics.Register(prometheus.DefaultRegisterer)
	checker := health.NewChecker(logger, prometheus.DefaultRegisterer, deps...)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.HealthRefreshSchedule, metrics.RefreshHealth(checker)); err != nil {
		stop()
		log.Fatalf("health refresh schedule: %v", err)
	}
	scheduler.Start()

	router, err := httptransport.NewRouter(httptransport.RouterDeps{
		Logger:         logger,
		Responses:      resp,
		AuthHandler:    authHandler,
		ReviewHandler:  reviewHandler,
		Tokens:         tokens,
		Limiter:        limiter,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		TrustedProxies: cfg.TrustedProxies,
	})
	if err != nil {
		stop()
		log.Fatalf("router: %v", err)
	}

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port, "store", db.Driver, "locale", msgs.Locale())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	<-scheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}

	authUsecase.Wait()
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
