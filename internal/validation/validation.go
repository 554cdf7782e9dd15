// Package validation wraps go-playground/validator with the field rules the
// flight and profile forms share, and converts its failures into
// *domain.ValidationError keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/go-playground/validator/v10"
)

var (
	flightNoRe = regexp.MustCompile(`^[A-Z0-9]{2,8}$`)
	hhmmRe     = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	personRe   = regexp.MustCompile(`^[A-Za-z][A-Za-z' -]*$`)
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared, lazily built validator.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		mustRegister(v, "flightno", func(fl validator.FieldLevel) bool {
			return flightNoRe.MatchString(fl.Field().String())
		})
		mustRegister(v, "hhmm", func(fl validator.FieldLevel) bool {
			return hhmmRe.MatchString(fl.Field().String())
		})
		mustRegister(v, "weekday", func(fl validator.FieldLevel) bool {
			return domain.IsWeekday(fl.Field().String())
		})
		mustRegister(v, "personname", func(fl validator.FieldLevel) bool {
			return personRe.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Struct validates s and returns a *domain.ValidationError or nil.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	ve := &domain.ValidationError{}
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), message(fe))
	}
	return ve
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be %s or more", fe.Param())
	case "flightno":
		return "must be 2 to 8 letters or digits"
	case "hhmm":
		return "must be a 24h time as HH:MM"
	case "weekday":
		return "must be a weekday name such as Monday"
	case "personname":
		return "may contain only letters, spaces, apostrophes and hyphens"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}
