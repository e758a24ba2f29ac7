package validator

import (
	"errors"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/samber/lo"
)

var ErrTranslatorNotFound = errors.New("translator not found")

// customRule is a string-only tag backed by a regular expression.
type customRule struct {
	pattern *regexp.Regexp
	message string
}

var customRules = map[string]customRule{
	// Shape check only; the auth domain canonicalises the number.
	"phone":   {regexp.MustCompile(`^[0-9+()\-./ ]{10,24}$`), "{0} must be a valid phone number"},
	"otpcode": {regexp.MustCompile(`^[0-9]{6}$`), "{0} must be a 6 digit code"},
}

// Messages for built-in tags whose stock English text reads poorly.
var overriddenMessages = map[string]string{
	"alphaspace": "{0} can contain only letters and spaces",
}

type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError maps snake_case field names to English messages.
type V10ValidationError map[string]string

// Error lists the failing fields in a stable order.
func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}
	keys := slices.Sorted(maps.Keys(vs))
	return "validation error: " + strings.Join(lo.Map(keys, func(k string, _ int) string {
		return k + ": " + vs[k]
	}), "; ")
}

func (vs V10ValidationError) Values() map[string]string {
	return vs
}

func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLang := en.New()
	enTrans, ok := ut.New(enLang, enLang).GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}
	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}
	if err := registerCustom(validate, enTrans); err != nil {
		return nil, err
	}

	return &V10Validator{validate: validate, translator: enTrans}, nil
}

// Validate returns V10ValidationError when data breaks a tag.
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
		out[lo.SnakeCase(fe.Field())] = fe.Translate(v.translator)
	}
	return out
}

func registerCustom(validate *validator.Validate, trans ut.Translator) error {
	messages := maps.Clone(overriddenMessages)

	for tag, rule := range customRules {
		pattern := rule.pattern
		if err := validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			s, ok := fl.Field().Interface().(string)
			return ok && pattern.MatchString(s)
		}); err != nil {
			return err
		}
		messages[tag] = rule.message
	}

	for tag, msg := range messages {
		err := validate.RegisterTranslation(tag, trans,
			func(t ut.Translator) error { return t.Add(tag, msg, true) },
			translateField,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func translateField(t ut.Translator, fe validator.FieldError) string {
	msg, err := t.T(fe.Tag(), fe.Field())
	if err != nil {
		slog.Warn("failed to translate validation error", "tag", fe.Tag(), "error", err)
		return fe.Error()
	}
	return msg
}
