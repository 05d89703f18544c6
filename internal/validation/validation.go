// Package validation checks request payloads and reports failures as
// field-level messages.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	apperrors "yamdb/internal/errors"
)

const (
	// ReservedUsername is the path segment used for the self-service profile.
	ReservedUsername = "me"

	MaxUsernameLength = 150
	MaxEmailLength    = 254
)

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Validator pairs a validator instance with an English translator.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

var std = New()

// New builds a validator that names fields by their json tag and
// understands the "slug" tag.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})

	english := en.New()
	trans, _ := ut.New(english, english).GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(v, trans); err != nil {
		panic("register translations: " + err.Error())
	}

	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return ValidSlug(fl.Field().String())
	})
	registerMessage(v, trans, "slug", "{0} may contain only latin letters, digits, hyphens and underscores")

	return &Validator{validate: v, trans: trans}
}

func registerMessage(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans, func(t ut.Translator) error {
		return t.Add(tag, text, true)
	}, func(t ut.Translator, fe validator.FieldError) string {
		msg, _ := t.T(tag, fe.Field())
		return msg
	})
}

// Struct validates a tagged struct. Tag violations come back as a
// validation AppError keyed by json field name.
func (v *Validator) Struct(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = append(fields[fe.Field()], fe.Translate(v.trans))
	}
	return apperrors.Validation(fields)
}

// Var validates a single value against tag, reporting it under field.
func (v *Validator) Var(field string, value any, tag string) error {
	err := v.validate.Var(value, tag)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, field+" "+strings.TrimSpace(fe.Translate(v.trans)))
	}
	return apperrors.Validation(map[string][]string{field: msgs})
}

// Struct validates i with the shared validator.
func Struct(i any) error { return std.Struct(i) }

// Var validates a single value with the shared validator.
func Var(field string, value any, tag string) error { return std.Var(field, value, tag) }

// ValidUsername reports whether name is an acceptable username: non-empty,
// at most 150 characters of letters, digits and @.+-_, and not reserved.
func ValidUsername(name string) bool {
	if name == "" || name == ReservedUsername {
		return false
	}
	if utf8.RuneCountInString(name) > MaxUsernameLength {
		return false
	}
	return usernamePattern.MatchString(name)
}

// ValidSlug reports whether s is a non-empty slug of at most 50 characters.
func ValidSlug(s string) bool {
	return s != "" && len(s) <= 50 && slugPattern.MatchString(s)
}
