package httptransport

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/velora-api/internal/i18n"
	"github.com/ErlanBelekov/velora-api/internal/ratelimit"
	"github.com/ErlanBelekov/velora-api/internal/transport/http/handler"
	"github.com/ErlanBelekov/velora-api/internal/transport/http/middleware"
	"github.com/ErlanBelekov/velora-api/internal/transport/http/response"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

// RouterDeps groups what NewRouter wires into the engine.
type RouterDeps struct {
	Logger         *slog.Logger
	Responses      *response.Writer
	AuthHandler    *handler.AuthHandler
	ReviewHandler  *handler.ReviewHandler
	Tokens         middleware.TokenVerifier
	Limiter        ratelimit.Limiter
	AllowedOrigins []string
	TrustedProxies []string
}

func NewRouter(d RouterDeps) (*gin.Engine, error) {
	r := gin.New()
	// Without trusted proxies ClientIP is the TCP peer, so X-Forwarded-For
	// cannot be used to dodge the rate limiter.
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		err := fmt.Errorf("panic: %v", recovered)
		d.Logger.ErrorContext(c.Request.Context(), "recovered from panic", "error", err, "path", c.Request.URL.Path)
		d.Responses.Error(c, http.StatusInternalServerError, i18n.InternalError, err)
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(d.Logger))
	r.Use(middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	limit := middleware.RateLimit(d.Limiter, d.Responses, d.Logger)
	authMW := middleware.Auth(d.Tokens, d.Responses)

	api := r.Group("/api")
	api.POST("/register", limit, d.AuthHandler.Register)
	api.POST("/login", limit, d.AuthHandler.Login)
	api.GET("/protected", authMW, d.AuthHandler.Me)
	api.GET("/reviews", d.ReviewHandler.List)
	api.POST("/reviews", d.ReviewHandler.Create)

	r.NoRoute(func(c *gin.Context) {
		d.Responses.Error(c, http.StatusNotFound, i18n.RouteNotFound, nil)
	})

	return r, nil
}
