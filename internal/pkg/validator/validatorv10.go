package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	rePassword = regexp.MustCompile(`^.{8,72}$`)           // NIST 800-63B length bounds
	rePhone    = regexp.MustCompile(`^\+?[1-9]\d{7,14}$`) // E.164, optional leading plus
	reLetter   = regexp.MustCompile(`[A-Za-z]`)
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// customRules are the tags this service adds on top of the built-in ones,
// with their English messages.
var customRules = map[string]string{
	"password": "{0} must be 8-72 characters",
	"contact":  "{0} must be a valid email or phone number",
	"username": "{0} must contain at least one letter",
}

// V10Validator validates with go-playground/validator and English messages.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError maps snake_case field names to messages.
type V10ValidationError map[string]string

func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}
	if b, err := json.Marshal(vs); err == nil {
		return string(b)
	}
	return fmt.Sprintf("validation error on %d fields", len(vs))
}

func (vs V10ValidationError) Values() map[string]string {
	return vs
}

func NewV10Validator() (*V10Validator, error) {
	enLang := en.New()
	trans, ok := ut.New(enLang, enLang).GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	v := &V10Validator{
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		translator: trans,
	}
	if err := enTranslations.RegisterDefaultTranslations(v.validate, trans); err != nil {
		return nil, err
	}
	if err := v.registerRules(); err != nil {
		return nil, err
	}

	return v, nil
}

// Validate returns a V10ValidationError listing every failing field.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(V10ValidationError, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[toSnake(fe.Field())] = fe.Translate(v.translator)
	}
	return out
}

func (v *V10Validator) registerRules() error {
	if err := v.validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		p, ok := fl.Field().Interface().(string)
		return ok && rePassword.MatchString(p)
	}); err != nil {
		return err
	}

	// contact is either an email address or a phone number.
	if err := v.validate.RegisterValidation("contact", func(fl validator.FieldLevel) bool {
		c, ok := fl.Field().Interface().(string)
		switch {
		case !ok:
			return false
		case strings.Contains(c, "@"):
			return v.validate.Var(c, "email") == nil
		default:
			return rePhone.MatchString(c)
		}
	}); err != nil {
		return err
	}

	// username must not be mistakable for a phone number.
	if err := v.validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		u, ok := fl.Field().Interface().(string)
		return ok && reLetter.MatchString(u)
	}); err != nil {
		return err
	}

	for tag, msg := range customRules {
		err := v.validate.RegisterTranslation(tag, v.translator,
			func(t ut.Translator) error { return t.Add(tag, msg, false) },
			func(t ut.Translator, fe validator.FieldError) string {
				text, err := t.T(fe.Tag(), fe.Field())
				if err != nil {
					slog.Warn("validator: missing translation", "tag", fe.Tag(), "error", err)
					return fe.Error()
				}
				return text
			},
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// toSnake converts a Go field name to snake_case, keeping initialisms
// together (UserID -> user_id, HTTPServer -> http_server).
func toSnake(s string) string {
	runes := []rune(s)

	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteRune('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}
