package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ErlanBelekov/velora-api/internal/auth"
	"github.com/ErlanBelekov/velora-api/internal/domain"
	"github.com/ErlanBelekov/velora-api/internal/i18n"
	"github.com/ErlanBelekov/velora-api/internal/infrastructure/memory"
	"github.com/ErlanBelekov/velora-api/internal/repository"
	"github.com/ErlanBelekov/velora-api/internal/usecase"
	"github.com/ErlanBelekov/velora-api/internal/validation"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ---- fakes ----

type fakeUserRepo struct {
	create      func(ctx context.Context, name, email, passwordHash string) (*domain.User, error)
	findByEmail func(ctx context.Context, email string) (*domain.User, error)
	findByID    func(ctx context.Context, id string) (*domain.User, error)
}

func (r *fakeUserRepo) Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	return r.create(ctx, name, email, passwordHash)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findByID(ctx, id)
}

type fakeEmailSender struct {
	mu      sync.Mutex
	sent    []string
	err     error
	release chan struct{} // when set, Send blocks until it is closed
}

func (s *fakeEmailSender) Send(_ context.Context, to, _, _ string) error {
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to)
	return s.err
}

// ---- helpers ----

const testJWTKey = "test-jwt-secret-at-least-32-chars!!"

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newUsecase(repo repository.UserRepository, sender *fakeEmailSender) *usecase.AuthUsecase {
	if sender == nil {
		sender = &fakeEmailSender{}
	}
	return usecase.NewAuthUsecase(
		repo,
		auth.NewHasher(bcrypt.MinCost),
		auth.NewTokenService([]byte(testJWTKey)),
		sender,
		discardLogger,
	)
}

func validationKey(t *testing.T, err error) i18n.Key {
	t.Helper()
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("want *validation.Error, got %v", err)
	}
	return verr.Key
}

// ---- Register ----

func TestRegister_ReturnsTokenWithMatchingClaims(t *testing.T) {
	sender := &fakeEmailSender{}
	uc := newUsecase(memory.NewUserRepository(), sender)

	res, err := uc.Register(context.Background(), usecase.RegisterInput{
		Name: "Alice", Email: "Alice@Example.com", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.User.ID == "" || res.User.Name != "Alice" || res.User.Email != "alice@example.com" {
		t.Errorf("unexpected user %+v", res.User)
	}

	token, err := jwt.Parse(res.Token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected method")
		}
		return []byte(testJWTKey), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("returned JWT is invalid: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["userId"] != res.User.ID {
		t.Errorf("userId = %v, want %q", claims["userId"], res.User.ID)
	}
	if claims["name"] != "Alice" {
		t.Errorf("name = %v, want Alice", claims["name"])
	}
	if claims["email"] != "alice@example.com" {
		t.Errorf("email = %v, want alice@example.com", claims["email"])
	}

	uc.Wait()
	if len(sender.sent) != 1 || sender.sent[0] != "alice@example.com" {
		t.Errorf("welcome email recipients = %v", sender.sent)
	}
}

func TestRegister_StoresHashNotPassword(t *testing.T) {
	repo := memory.NewUserRepository()
	uc := newUsecase(repo, nil)

	if _, err := uc.Register(context.Background(), usecase.RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "secret1",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u, err := repo.FindByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if u.PasswordHash == "secret1" {
		t.Fatal("password stored in plaintext")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")) != nil {
		t.Fatal("stored hash does not match password")
	}
}

func TestRegister_DuplicateEmailEitherOrder(t *testing.T) {
	uc := newUsecase(memory.NewUserRepository(), nil)
	ctx := context.Background()

	if _, err := uc.Register(ctx, usecase.RegisterInput{Name: "A", Email: "dup@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	_, err := uc.Register(ctx, usecase.RegisterInput{Name: "B", Email: "DUP@Example.com", Password: "secret2"})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("want ErrDuplicateEmail, got %v", err)
	}
}

func TestRegister_ConcurrentDuplicatesOneSucceeds(t *testing.T) {
	uc := newUsecase(memory.NewUserRepository(), nil)
	ctx := context.Background()

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Register(ctx, usecase.RegisterInput{Name: "R", Email: "race@example.com", Password: "secret1"})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case !errors.Is(err, domain.ErrDuplicateEmail):
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("successful registrations = %d, want 1", ok)
	}
}

func TestRegister_StoreRaceMapsToDuplicate(t *testing.T) {
	// The lookup misses but the unique index rejects the insert.
	repo := &fakeUserRepo{
		findByEmail: func(context.Context, string) (*domain.User, error) { return nil, domain.ErrUserNotFound },
		create: func(context.Context, string, string, string) (*domain.User, error) {
			return nil, domain.ErrDuplicateEmail
		},
	}

	_, err := newUsecase(repo, nil).Register(context.Background(), usecase.RegisterInput{
		Name: "A", Email: "a@b.co", Password: "secret1",
	})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("want ErrDuplicateEmail, got %v", err)
	}
}

func TestRegister_ValidationRunsBeforeStore(t *testing.T) {
	repo := &fakeUserRepo{} // any call would panic on a nil func
	uc := newUsecase(repo, nil)

	_, err := uc.Register(context.Background(), usecase.RegisterInput{Name: "A", Email: "a@b.co", Password: "12345"})
	if got := validationKey(t, err); got != i18n.PasswordTooShort {
		t.Errorf("key = %s, want %s", got, i18n.PasswordTooShort)
	}
}

func TestRegister_StoreErrorPropagates(t *testing.T) {
	dbErr := errors.New("db down")
	repo := &fakeUserRepo{
		findByEmail: func(context.Context, string) (*domain.User, error) { return nil, dbErr },
	}

	_, err := newUsecase(repo, nil).Register(context.Background(), usecase.RegisterInput{
		Name: "A", Email: "a@b.co", Password: "secret1",
	})
	if !errors.Is(err, dbErr) {
		t.Fatalf("want wrapped dbErr, got %v", err)
	}
}

func TestRegister_EmailFailureDoesNotFailRegistration(t *testing.T) {
	sender := &fakeEmailSender{err: errors.New("smtp unavailable")}
	uc := newUsecase(memory.NewUserRepository(), sender)

	res, err := uc.Register(context.Background(), usecase.RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Token == "" {
		t.Fatal("expected token")
	}
	uc.Wait()
}

func TestRegister_DoesNotWaitForWelcomeEmail(t *testing.T) {
	sender := &fakeEmailSender{release: make(chan struct{})}
	uc := newUsecase(memory.NewUserRepository(), sender)

	done := make(chan error, 1)
	go func() {
		_, err := uc.Register(context.Background(), usecase.RegisterInput{
			Name: "Alice", Email: "alice@example.com", Password: "secret1",
		})
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Register blocked on the mail provider")
	}

	close(sender.release)
	uc.Wait()
	if len(sender.sent) != 1 {
		t.Errorf("welcome email recipients = %v", sender.sent)
	}
}

func TestRegister_WhitespaceOnlyNameIsRejected(t *testing.T) {
	repo := memory.NewUserRepository()
	uc := newUsecase(repo, nil)

	_, err := uc.Register(context.Background(), usecase.RegisterInput{
		Name: "   ", Email: "blank@example.com", Password: "secret1",
	})
	if got := validationKey(t, err); got != i18n.AllFieldsRequired {
		t.Errorf("key = %s, want %s", got, i18n.AllFieldsRequired)
	}
	if _, err := repo.FindByEmail(context.Background(), "blank@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("user was stored: %v", err)
	}
}

// ---- Login ----

func TestLogin_Success(t *testing.T) {
	uc := newUsecase(memory.NewUserRepository(), nil)
	ctx := context.Background()

	reg, err := uc.Register(ctx, usecase.RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := uc.Login(ctx, usecase.LoginInput{Email: "ALICE@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.User != reg.User {
		t.Errorf("user = %+v, want %+v", res.User, reg.User)
	}
	if res.Token == "" {
		t.Error("expected token")
	}
}

func TestLogin_UnknownEmailAndWrongPasswordAreIndistinguishable(t *testing.T) {
	uc := newUsecase(memory.NewUserRepository(), nil)
	ctx := context.Background()

	if _, err := uc.Register(ctx, usecase.RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, wrongPassword := uc.Login(ctx, usecase.LoginInput{Email: "alice@example.com", Password: "wrong-password"})
	_, unknownEmail := uc.Login(ctx, usecase.LoginInput{Email: "nobody@example.com", Password: "secret1"})

	if !errors.Is(wrongPassword, domain.ErrInvalidCredentials) {
		t.Errorf("wrong password: want ErrInvalidCredentials, got %v", wrongPassword)
	}
	if wrongPassword != unknownEmail {
		t.Errorf("errors differ: %v vs %v", wrongPassword, unknownEmail)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	uc := newUsecase(&fakeUserRepo{}, nil)

	_, err := uc.Login(context.Background(), usecase.LoginInput{Email: "a@b.co"})
	if got := validationKey(t, err); got != i18n.CredentialsRequired {
		t.Errorf("key = %s, want %s", got, i18n.CredentialsRequired)
	}
}

func TestLogin_StoreErrorPropagates(t *testing.T) {
	dbErr := errors.New("db down")
	repo := &fakeUserRepo{
		findByEmail: func(context.Context, string) (*domain.User, error) { return nil, dbErr },
	}

	_, err := newUsecase(repo, nil).Login(context.Background(), usecase.LoginInput{Email: "a@b.co", Password: "x"})
	if !errors.Is(err, dbErr) {
		t.Fatalf("want wrapped dbErr, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatal("store failure must not look like bad credentials")
	}
}

// ---- Identify ----

func TestIdentify_ReturnsPublicUser(t *testing.T) {
	repo := &fakeUserRepo{
		findByID: func(_ context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Name: "Alice", Email: "alice@example.com", CreatedAt: time.Now()}, nil
		},
	}

	u, err := newUsecase(repo, nil).Identify(context.Background(), &domain.Session{UserID: "user-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.PublicUser{ID: "user-1", Name: "Alice", Email: "alice@example.com"}
	if *u != want {
		t.Errorf("user = %+v, want %+v", *u, want)
	}
}

func TestIdentify_DeletedUser(t *testing.T) {
	repo := &fakeUserRepo{
		findByID: func(context.Context, string) (*domain.User, error) { return nil, domain.ErrUserNotFound },
	}

	_, err := newUsecase(repo, nil).Identify(context.Background(), &domain.Session{UserID: "gone"})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
}
