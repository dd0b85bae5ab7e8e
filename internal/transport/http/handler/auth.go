package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/velora-api/internal/domain"
	"github.com/ErlanBelekov/velora-api/internal/i18n"
	"github.com/ErlanBelekov/velora-api/internal/transport/http/middleware"
	"github.com/ErlanBelekov/velora-api/internal/transport/http/response"
	"github.com/ErlanBelekov/velora-api/internal/usecase"
	"github.com/ErlanBelekov/velora-api/internal/validation"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.AuthResult, error)
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.AuthResult, error)
	Identify(ctx context.Context, session *domain.Session) (*domain.PublicUser, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	resp        *response.Writer
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, resp *response.Writer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		resp:        resp,
		logger:      logger.With("component", "auth_handler"),
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		h.resp.Error(c, http.StatusBadRequest, i18n.InvalidRequestBody, nil)
		return
	}

	res, err := h.authUsecase.Register(c.Request.Context(), usecase.RegisterInput(req))
	if err != nil {
		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			h.resp.Error(c, http.StatusBadRequest, verr.Key, nil)
		case errors.Is(err, domain.ErrDuplicateEmail):
			h.resp.Error(c, http.StatusBadRequest, i18n.UserExists, nil)
		default:
			h.logger.ErrorContext(c.Request.Context(), "register", "error", err)
			h.resp.Error(c, http.StatusInternalServerError, i18n.RegisterFailed, err)
		}
		return
	}

	response.OK(c, http.StatusCreated, gin.H{"token": res.Token, "user": res.User})
}

// POST /api/login
// Unknown email and wrong password produce the same body.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		h.resp.Error(c, http.StatusBadRequest, i18n.InvalidRequestBody, nil)
		return
	}

	res, err := h.authUsecase.Login(c.Request.Context(), usecase.LoginInput(req))
	if err != nil {
		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			h.resp.Error(c, http.StatusBadRequest, verr.Key, nil)
		case errors.Is(err, domain.ErrInvalidCredentials):
			h.resp.Error(c, http.StatusBadRequest, i18n.InvalidCredentials, nil)
		default:
			h.logger.ErrorContext(c.Request.Context(), "login", "error", err)
			h.resp.Error(c, http.StatusInternalServerError, i18n.LoginFailed, err)
		}
		return
	}

	response.OK(c, http.StatusOK, gin.H{"token": res.Token, "user": res.User})
}

// GET /api/protected
// Runs behind middleware.Auth.
func (h *AuthHandler) Me(c *gin.Context) {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		h.resp.Error(c, http.StatusUnauthorized, i18n.AuthRequired, nil)
		return
	}

	user, err := h.authUsecase.Identify(c.Request.Context(), session)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			h.resp.Error(c, http.StatusUnauthorized, i18n.UserNotFound, nil)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "identify", "error", err)
		h.resp.Error(c, http.StatusInternalServerError, i18n.VerifyFailed, err)
		return
	}

	response.OK(c, http.StatusOK, gin.H{"user": user})
}
