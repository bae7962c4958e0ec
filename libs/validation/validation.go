// Package validation wraps go-playground/validator with English messages keyed by JSON field names
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const notBlankTag = "notblank"

var (
	once       sync.Once
	validate   *validator.Validate
	translator ut.Translator
)

func instance() (*validator.Validate, ut.Translator) {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		english := en.New()
		uni := ut.New(english, english)
		translator, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(validate, translator)

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
			if str, ok := fl.Field().Interface().(string); ok {
				return strings.TrimSpace(str) != ""
			}
			return false
		})
		_ = validate.RegisterTranslation(notBlankTag, translator,
			func(ut.Translator) error { return nil },
			func(_ ut.Translator, fe validator.FieldError) string {
				return fe.Field() + " cannot be blank"
			},
		)
	})
	return validate, translator
}

// Errors maps JSON field names to human readable messages
type Errors map[string]string

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Struct validates s using its `validate` tags.
// It returns Errors when a rule fails and nil otherwise.
func Struct(s any) error {
	v, trans := instance()
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fields := make(Errors, len(validationErrs))
	for _, fe := range validationErrs {
		fields[fieldPath(fe)] = fe.Translate(trans)
	}
	return fields
}

// Var validates a single value against a tag expression such as "oneof=a b"
func Var(value any, tag string) error {
	v, _ := instance()
	return v.Var(value, tag)
}

// fieldPath strips the top-level struct name from the namespace, e.g. "Request.preferences.interests[0]"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}
