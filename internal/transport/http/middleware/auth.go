package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ErlanBelekov/velora-api/internal/domain"
	"github.com/ErlanBelekov/velora-api/internal/i18n"
	"github.com/ErlanBelekov/velora-api/internal/metrics"
	"github.com/ErlanBelekov/velora-api/internal/transport/http/response"
	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// TokenVerifier is satisfied by *auth.TokenService.
type TokenVerifier interface {
	Verify(raw string) (*domain.Session, error)
}

// Auth validates a Bearer JWT and stores the resulting session in the gin context.
func Auth(tokens TokenVerifier, resp *response.Writer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			resp.Error(c, http.StatusUnauthorized, i18n.AuthRequired, nil)
			return
		}

		session, err := tokens.Verify(raw)
		if err != nil {
			metrics.AuthEventsTotal.WithLabelValues("verify_token", metrics.OutcomeRejected).Inc()
			if errors.Is(err, domain.ErrTokenExpired) {
				resp.Error(c, http.StatusUnauthorized, i18n.TokenExpired, nil)
				return
			}
			resp.Error(c, http.StatusUnauthorized, i18n.InvalidToken, nil)
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// SessionFrom returns the session Auth stored, if any.
func SessionFrom(c *gin.Context) (*domain.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	session, ok := v.(*domain.Session)
	return session, ok
}
