package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ErlanBelekov/velora-api/internal/auth"
	"github.com/ErlanBelekov/velora-api/internal/domain"
	"github.com/ErlanBelekov/velora-api/internal/email"
	"github.com/ErlanBelekov/velora-api/internal/i18n"
	"github.com/ErlanBelekov/velora-api/internal/metrics"
	"github.com/ErlanBelekov/velora-api/internal/repository"
	"github.com/ErlanBelekov/velora-api/internal/validation"
)

const welcomeEmailTimeout = 5 * time.Second

type AuthUsecase struct {
	users  repository.UserRepository
	hasher *auth.Hasher
	tokens *auth.TokenService
	email  email.Sender
	logger *slog.Logger

	decoyOnce sync.Once
	decoyHash string

	mailers sync.WaitGroup
}

func NewAuthUsecase(users repository.UserRepository, hasher *auth.Hasher, tokens *auth.TokenService, sender email.Sender, logger *slog.Logger) *AuthUsecase {
	return &AuthUsecase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		email:  sender,
		logger: logger.With("component", "auth_usecase"),
	}
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string
	User  domain.PublicUser
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// Register validates the input, stores a new user with a hashed password and
// issues a session token. A taken email yields domain.ErrDuplicateEmail whether
// it is caught by the lookup or by the store's unique index.
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validation.Register(validation.RegisterInput(in)); err != nil {
		recordAuth("register", metrics.OutcomeRejected)
		return nil, err
	}

	if _, err := u.users.FindByEmail(ctx, in.Email); err == nil {
		recordAuth("register", metrics.OutcomeRejected)
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		recordAuth("register", metrics.OutcomeError)
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	digest, err := u.hasher.Hash(in.Password)
	if err != nil {
		recordAuth("register", metrics.OutcomeError)
		return nil, err
	}

	user, err := u.users.Create(ctx, in.Name, in.Email, digest)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			recordAuth("register", metrics.OutcomeRejected)
			return nil, domain.ErrDuplicateEmail
		case errors.Is(err, domain.ErrEmptyField):
			// Whitespace-only values pass validation but are blank once stored.
			recordAuth("register", metrics.OutcomeRejected)
			return nil, &validation.Error{Key: i18n.AllFieldsRequired}
		}
		recordAuth("register", metrics.OutcomeError)
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := u.tokens.Issue(user.ID, user.Name, user.Email)
	if err != nil {
		recordAuth("register", metrics.OutcomeError)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	u.sendWelcome(ctx, user)
	recordAuth("register", metrics.OutcomeSuccess)

	return &AuthResult{Token: token, User: user.Public()}, nil
}

// Login returns domain.ErrInvalidCredentials for both an unknown email and a
// wrong password.
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := validation.Login(validation.LoginInput(in)); err != nil {
		recordAuth("login", metrics.OutcomeRejected)
		return nil, err
	}

	user, err := u.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Spend the same bcrypt work as a real mismatch.
			u.hasher.Verify(u.decoy(), in.Password)
			recordAuth("login", metrics.OutcomeRejected)
			return nil, domain.ErrInvalidCredentials
		}
		recordAuth("login", metrics.OutcomeError)
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !u.hasher.Verify(user.PasswordHash, in.Password) {
		recordAuth("login", metrics.OutcomeRejected)
		return nil, domain.ErrInvalidCredentials
	}

	token, err := u.tokens.Issue(user.ID, user.Name, user.Email)
	if err != nil {
		recordAuth("login", metrics.OutcomeError)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	recordAuth("login", metrics.OutcomeSuccess)
	return &AuthResult{Token: token, User: user.Public()}, nil
}

// Identify loads the user a verified session belongs to.
func (u *AuthUsecase) Identify(ctx context.Context, session *domain.Session) (*domain.PublicUser, error) {
	user, err := u.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			recordAuth("identify", metrics.OutcomeRejected)
			return nil, domain.ErrUserNotFound
		}
		recordAuth("identify", metrics.OutcomeError)
		return nil, fmt.Errorf("find user: %w", err)
	}

	recordAuth("identify", metrics.OutcomeSuccess)
	public := user.Public()
	return &public, nil
}

// sendWelcome delivers in the background so the registration response never
// waits on the mail provider. Failures are only logged.
func (u *AuthUsecase) sendWelcome(ctx context.Context, user *domain.User) {
	sendCtx := context.WithoutCancel(ctx)
	subject, body := email.Welcome(user.Name)

	u.mailers.Add(1)
	go func() {
		defer u.mailers.Done()

		ctx, cancel := context.WithTimeout(sendCtx, welcomeEmailTimeout)
		defer cancel()

		if err := u.email.Send(ctx, user.Email, subject, body); err != nil {
			u.logger.WarnContext(ctx, "send welcome email", "user_id", user.ID, "error", err)
		}
	}()
}

// Wait blocks until in-flight welcome emails finish. Called on shutdown.
func (u *AuthUsecase) Wait() {
	u.mailers.Wait()
}

func (u *AuthUsecase) decoy() string {
	u.decoyOnce.Do(func() {
		// Hashing a constant cannot fail for inputs under 72 bytes.
		u.decoyHash, _ = u.hasher.Hash("decoy-password-for-timing")
	})
	return u.decoyHash
}

func recordAuth(event, outcome string) {
	metrics.AuthEventsTotal.WithLabelValues(event, outcome).Inc()
}
