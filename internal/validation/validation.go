// Package validation checks request payloads before any store or crypto work.
// Every check is pure and reports the first failing rule as an i18n key.
package validation

import (
	"errors"
	"regexp"

	"github.com/ErlanBelekov/velora-api/internal/i18n"
	"github.com/go-playground/validator/v10"
)

// nonSpace excludes the full Unicode whitespace set plus "@". RE2's \s alone
// only covers ASCII whitespace and lets NBSP or U+2028 through.
const nonSpace = `[^\s\v\x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}@]`

var emailPattern = regexp.MustCompile(`^` + nonSpace + `+@` + nonSpace + `+\.` + nonSpace + `+$`)

// Error is a client input failure; Key selects the message shown to the caller.
type Error struct {
	Key i18n.Key
}

func (e *Error) Error() string {
	return "validation failed: " + string(e.Key)
}

func fail(key i18n.Key) error {
	return &Error{Key: key}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("basic_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

type RegisterInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,basic_email"`
	Password string `validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type ReviewInput struct {
	Author string `validate:"required,min=2"`
	Text   string `validate:"required,min=10"`
}

// Register checks presence of every field, then password length, then email format.
func Register(in RegisterInput) error {
	failed := failures(validate.Struct(in))
	switch {
	case len(failed) == 0:
		return nil
	case failed.has("", "required"):
		return fail(i18n.AllFieldsRequired)
	case failed.has("Password", "min"):
		return fail(i18n.PasswordTooShort)
	default:
		return fail(i18n.InvalidEmail)
	}
}

func Login(in LoginInput) error {
	if len(failures(validate.Struct(in))) > 0 {
		return fail(i18n.CredentialsRequired)
	}
	return nil
}

// Review checks presence of both fields, then author length, then text length.
// Lengths count runes of the value as sent; trimming happens in the store.
func Review(in ReviewInput) error {
	failed := failures(validate.Struct(in))
	switch {
	case len(failed) == 0:
		return nil
	case failed.has("", "required"):
		return fail(i18n.ReviewFieldsRequired)
	case failed.has("Author", "min"):
		return fail(i18n.AuthorTooShort)
	default:
		return fail(i18n.TextTooShort)
	}
}

type fieldFailures map[string]string

// has matches on tag for any field when field is empty.
func (f fieldFailures) has(field, tag string) bool {
	for name, t := range f {
		if t == tag && (field == "" || field == name) {
			return true
		}
	}
	return false
}

func failures(err error) fieldFailures {
	out := fieldFailures{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out[fe.StructField()] = fe.Tag()
		}
	}
	return out
}
