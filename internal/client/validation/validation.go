// Package validation runs the client-side form checks before a request is
// sent, reporting failures as *common.ValidationError keyed by JSON field.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/common"
)

var clockRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})

		_ = v.RegisterValidation("password", passwordStrength)
		_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			return clockRe.MatchString(fl.Field().String())
		})
		v.RegisterStructValidation(registerProviderFields, models.RegisterRequest{})

		instance = v
	})
	return instance
}

// Struct validates v against its `validate` tags.
func Struct(v any) error {
	err := get().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	ve := &common.ValidationError{}
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), message(fe))
	}
	return ve
}

func passwordStrength(fl validator.FieldLevel) bool {
	var lower, upper, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

func registerProviderFields(sl validator.StructLevel) {
	req := sl.Current().Interface().(models.RegisterRequest)
	if !req.NeedsProviderProfile() {
		return
	}
	if strings.TrimSpace(req.Headline) == "" {
		sl.ReportError(req.Headline, "headline", "Headline", "required", "")
	}
	if len([]rune(req.Bio)) < 50 {
		sl.ReportError(req.Bio, "bio", "Bio", "min", "50")
	}
	if req.HourlyRate < 1 {
		sl.ReportError(req.HourlyRate, "hourly_rate", "HourlyRate", "gte", "1")
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email format."
	case "min":
		if fe.Kind() == reflect.String {
			return "Must be at least " + fe.Param() + " characters."
		}
		return "Must be at least " + fe.Param() + "."
	case "max":
		if fe.Kind() == reflect.String {
			return "Must be at most " + fe.Param() + " characters."
		}
		return "Must be at most " + fe.Param() + "."
	case "gt":
		return "Must be greater than " + fe.Param() + "."
	case "gte":
		return "Must be at least " + fe.Param() + "."
	case "gtfield":
		return "Must be after " + fe.Param() + "."
	case "eqfield":
		return "Must match " + fe.Param() + "."
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ") + "."
	case "password":
		return "Must contain upper and lower case letters and a digit."
	case "clock":
		return "Must be a time in HH:MM format."
	default:
		return "Invalid value."
	}
}
