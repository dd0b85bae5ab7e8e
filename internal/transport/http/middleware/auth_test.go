package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ErlanBelekov/velora-api/internal/auth"
	"github.com/ErlanBelekov/velora-api/internal/i18n"
	"github.com/ErlanBelekov/velora-api/internal/transport/http/middleware"
	"github.com/ErlanBelekov/velora-api/internal/transport/http/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testKey = "middleware-test-secret-32-chars!!"

func init() {
	gin.SetMode(gin.TestMode)
}

func newWriter(t *testing.T) *response.Writer {
	t.Helper()
	msgs, err := i18n.New(i18n.LocaleEN)
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	return response.NewWriter(msgs, false)
}

// newEngine builds a minimal gin engine with the Auth middleware protecting GET /protected.
// The handler writes the session user ID so we can assert it was set.
func newEngine(t *testing.T, tokens *auth.TokenService) *gin.Engine {
	r := gin.New()
	r.GET("/protected", middleware.Auth(tokens, newWriter(t)), func(c *gin.Context) {
		session, ok := middleware.SessionFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, "%s", session.UserID)
	})
	return r
}

func makeJWT(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign jwt: %v", err)
	}
	return s
}

func serve(t *testing.T, engine *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	engine.ServeHTTP(w, req)
	return w
}

func assertUnauthorized(t *testing.T, w *httptest.ResponseRecorder, wantMsg string) {
	t.Helper()
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success || body.Error != wantMsg {
		t.Errorf("body = %+v, want error %q", body, wantMsg)
	}
}

func TestAuth_MissingHeader_Returns401(t *testing.T) {
	w := serve(t, newEngine(t, auth.NewTokenService([]byte(testKey))), "")
	assertUnauthorized(t, w, "Authorization required")
}

func TestAuth_NonBearerScheme_Returns401(t *testing.T) {
	w := serve(t, newEngine(t, auth.NewTokenService([]byte(testKey))), "Basic dXNlcjpwYXNz")
	assertUnauthorized(t, w, "Authorization required")
}

func TestAuth_EmptyBearerToken_Returns401AuthRequired(t *testing.T) {
	engine := newEngine(t, auth.NewTokenService([]byte(testKey)))

	for _, header := range []string{"Bearer ", "Bearer    "} {
		assertUnauthorized(t, serve(t, engine, header), "Authorization required")
	}
}

func TestAuth_InvalidToken_Returns401(t *testing.T) {
	w := serve(t, newEngine(t, auth.NewTokenService([]byte(testKey))), "Bearer not.a.jwt")
	assertUnauthorized(t, w, "Invalid token")
}

func TestAuth_ExpiredToken_Returns401(t *testing.T) {
	tok := makeJWT(t, []byte(testKey), jwt.MapClaims{
		"userId": "user-1",
		"exp":    time.Now().Add(-time.Hour).Unix(),
		"iat":    time.Now().Add(-2 * time.Hour).Unix(),
	})

	w := serve(t, newEngine(t, auth.NewTokenService([]byte(testKey))), "Bearer "+tok)
	assertUnauthorized(t, w, "Token expired")
}

func TestAuth_WrongSigningKey_Returns401(t *testing.T) {
	tok := makeJWT(t, []byte("different-key-that-is-32-chars!!"), jwt.MapClaims{
		"userId": "user-1",
		"exp":    time.Now().Add(time.Hour).Unix(),
	})

	w := serve(t, newEngine(t, auth.NewTokenService([]byte(testKey))), "Bearer "+tok)
	assertUnauthorized(t, w, "Invalid token")
}

func TestAuth_ValidToken_PassesAndSetsSession(t *testing.T) {
	tokens := auth.NewTokenService([]byte(testKey))
	const userID = "user-abc"
	tok, err := tokens.Issue(userID, "Alice", "alice@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	w := serve(t, newEngine(t, tokens), "Bearer "+tok)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != userID {
		t.Errorf("body = %q, want %q", got, userID)
	}
}
