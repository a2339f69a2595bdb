// Package validation checks request payloads before they reach the store.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/KDDD10/Hooked-on-Books-backend/internal/errors"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// IsUsername reports whether s only uses letters, digits, dots, underscores
// and hyphens. Usernames end up in stored file names.
func IsUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reports fields by their JSON names.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return IsUsername(fl.Field().String())
	})

	return &Validator{v: v}
}

// Validate implements echo.Validator. The first failing field decides the error.
func (v *Validator) Validate(i interface{}) error {
	if err := v.v.Struct(i); err != nil {
		return toDomainError(err)
	}
	return nil
}

func toDomainError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return apperrors.InvalidRequest("invalid request", "")
	}

	fe := validationErrs[0]
	switch fe.Tag() {
	case "required":
		return apperrors.MissingField(fe.Field())
	case "max":
		return apperrors.FieldTooLong(fe.Field())
	case "email":
		return apperrors.InvalidRequest(fe.Field()+" must be a valid email address", fe.Field())
	default:
		return apperrors.InvalidRequest(fe.Field()+" is invalid", fe.Field())
	}
}
