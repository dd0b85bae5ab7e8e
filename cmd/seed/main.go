// seed inserts a demo user and a handful of reviews into the configured store.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ErlanBelekov/velora-api/config"
	"github.com/ErlanBelekov/velora-api/internal/auth"
	"github.com/ErlanBelekov/velora-api/internal/domain"
	"github.com/ErlanBelekov/velora-api/internal/email"
	"github.com/ErlanBelekov/velora-api/internal/infrastructure/store"
	"github.com/ErlanBelekov/velora-api/internal/usecase"
)

const (
	seedName     = "Demo User"
	seedEmail    = "demo@velora.local"
	seedPassword = "velora-demo"
)

var reviews = []usecase.SubmitReviewInput{
	{Author: "Айгерим", Text: "Отличный сервис, всё работает быстро и понятно."},
	{Author: "Mark", Text: "Clean interface and the booking flow took under a minute."},
	{Author: "Дмитрий", Text: "Поддержка ответила за пять минут, вопрос решён."},
	{Author: "Sara", Text: "Would love a dark theme, otherwise great experience."},
	{Author: "Эрлан", Text: "Пользуюсь каждый день, рекомендую коллегам."},
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	db, err := store.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer db.Close(ctx)

	tokens := auth.NewTokenService([]byte(cfg.JWTSecret))
	authUsecase := usecase.NewAuthUsecase(db.Users, auth.NewHasher(auth.DefaultHashCost), tokens,
		email.NewSender("local", "", "", logger), logger)

	var token string
	res, err := authUsecase.Register(ctx, usecase.RegisterInput{Name: seedName, Email: seedEmail, Password: seedPassword})
	switch {
	case err == nil:
		token = res.Token
	case errors.Is(err, domain.ErrDuplicateEmail):
		// Re-run: the user exists already, log in instead.
		res, err = authUsecase.Login(ctx, usecase.LoginInput{Email: seedEmail, Password: seedPassword})
		if err != nil {
			log.Fatalf("login seed user: %v", err)
		}
		token = res.Token
	default:
		log.Fatalf("register seed user: %v", err)
	}

	authUsecase.Wait()

	reviewUsecase := usecase.NewReviewUsecase(db.Reviews)
	for _, in := range reviews {
		if _, err := reviewUsecase.Submit(ctx, in); err != nil {
			log.Fatalf("insert review by %s: %v", in.Author, err)
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Store:    %s\n", db.Driver)
	fmt.Printf("  User:     %s / %s\n", seedEmail, seedPassword)
	fmt.Printf("  User ID:  %s\n", res.User.ID)
	fmt.Printf("  Reviews:  %d inserted\n", len(reviews))
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Printf("    curl -s http://localhost:%s/api/protected -H \"Authorization: Bearer %s\"\n", cfg.Port, token)
	fmt.Printf("    curl -s http://localhost:%s/api/reviews\n", cfg.Port)
	fmt.Println()
	fmt.Println("  Tokens expire after one hour; log in again with:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:%s/api/login \\\n", cfg.Port)
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", seedEmail, seedPassword)
}
