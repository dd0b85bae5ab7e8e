// Package i18n holds the user-facing messages returned in API error bodies.
package i18n

import (
	"fmt"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
)

type Key string

const (
	AllFieldsRequired    Key = "all_fields_required"
	PasswordTooShort     Key = "password_too_short"
	InvalidEmail         Key = "invalid_email"
	UserExists           Key = "user_exists"
	RegisterFailed       Key = "register_failed"
	CredentialsRequired  Key = "credentials_required"
	InvalidCredentials   Key = "invalid_credentials"
	LoginFailed          Key = "login_failed"
	AuthRequired         Key = "auth_required"
	UserNotFound         Key = "user_not_found"
	TokenExpired         Key = "token_expired"
	InvalidToken         Key = "invalid_token"
	VerifyFailed         Key = "verify_failed"
	ReviewFieldsRequired Key = "review_fields_required"
	AuthorTooShort       Key = "author_too_short"
	TextTooShort         Key = "text_too_short"
	ReviewSaveFailed     Key = "review_save_failed"
	ReviewsLoadFailed    Key = "reviews_load_failed"
	RouteNotFound        Key = "route_not_found"
	InternalError        Key = "internal_error"
	InvalidRequestBody   Key = "invalid_request_body"
	RateLimited          Key = "rate_limited"
)

const (
	LocaleRU = "ru"
	LocaleEN = "en"
)

var catalog = map[string]map[Key]string{
	LocaleRU: {
		AllFieldsRequired:    "Все поля обязательны для заполнения",
		PasswordTooShort:     "Пароль должен содержать минимум 6 символов",
		InvalidEmail:         "Неверный формат email",
		UserExists:           "Пользователь с таким email уже существует",
		RegisterFailed:       "Произошла ошибка при регистрации",
		CredentialsRequired:  "Email и пароль обязательны",
		InvalidCredentials:   "Неверные учетные данные",
		LoginFailed:          "Произошла ошибка при авторизации",
		AuthRequired:         "Требуется авторизация",
		UserNotFound:         "Пользователь не найден",
		TokenExpired:         "Срок действия токена истек",
		InvalidToken:         "Неверный токен",
		VerifyFailed:         "Произошла ошибка при проверке токена",
		ReviewFieldsRequired: "Все поля обязательны",
		AuthorTooShort:       "Имя должно содержать минимум 2 символа",
		TextTooShort:         "Текст отзыва должен содержать минимум 10 символов",
		ReviewSaveFailed:     "Не удалось сохранить отзыв",
		ReviewsLoadFailed:    "Не удалось загрузить отзывы",
		RouteNotFound:        "Маршрут не найден",
		InternalError:        "Внутренняя ошибка сервера",
		InvalidRequestBody:   "Некорректное тело запроса",
		RateLimited:          "Слишком много запросов, попробуйте позже",
	},
	LocaleEN: {
		AllFieldsRequired:    "All fields are required",
		PasswordTooShort:     "Password must be at least 6 characters",
		InvalidEmail:         "Invalid email format",
		UserExists:           "User with this email already exists",
		RegisterFailed:       "Registration failed",
		CredentialsRequired:  "Email and password are required",
		InvalidCredentials:   "Invalid credentials",
		LoginFailed:          "Login failed",
		AuthRequired:         "Authorization required",
		UserNotFound:         "User not found",
		TokenExpired:         "Token expired",
		InvalidToken:         "Invalid token",
		VerifyFailed:         "Token verification failed",
		ReviewFieldsRequired: "All fields are required",
		AuthorTooShort:       "Name must be at least 2 characters",
		TextTooShort:         "Review text must be at least 10 characters",
		ReviewSaveFailed:     "Failed to save review",
		ReviewsLoadFailed:    "Failed to load reviews",
		RouteNotFound:        "Route not found",
		InternalError:        "Internal server error",
		InvalidRequestBody:   "Invalid request body",
		RateLimited:          "Too many requests, please try again later",
	},
}

// Translator resolves message keys for a single locale.
type Translator struct {
	locale string
	trans  ut.Translator
}

func New(locale string) (*Translator, error) {
	messages, ok := catalog[locale]
	if !ok {
		return nil, fmt.Errorf("unsupported locale %q", locale)
	}

	uni := ut.New(en.New(), en.New(), ru.New())
	trans, found := uni.GetTranslator(locale)
	if !found {
		return nil, fmt.Errorf("no translator for locale %q", locale)
	}

	for key, text := range messages {
		if err := trans.Add(string(key), text, false); err != nil {
			return nil, fmt.Errorf("add message %s: %w", key, err)
		}
	}

	return &Translator{locale: locale, trans: trans}, nil
}

func (t *Translator) Locale() string { return t.locale }

// T returns the message for key, or the key itself if it is unknown.
func (t *Translator) T(key Key) string {
	msg, err := t.trans.T(string(key))
	if err != nil {
		return string(key)
	}
	return msg
}
