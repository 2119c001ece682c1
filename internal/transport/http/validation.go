package http

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/joshdurbin/linktrack/internal/domain"
)

var aliasPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)

// reservedAliases collide with fixed routes regardless of case
var reservedAliases = map[string]bool{
	"api":     true,
	"health":  true,
	"metrics": true,
}

// IsValidAlias reports whether alias can be used as a custom short code.
// Every valid alias is reachable through the redirect route.
func IsValidAlias(alias string) bool {
	return aliasPattern.MatchString(alias) &&
		!domain.IsReservedCode(alias) &&
		!reservedAliases[strings.ToLower(alias)]
}

// RequestValidator checks request payloads and reports failures per JSON field
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a validator with the alias rule registered
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	_ = v.RegisterValidation("alias", func(fl validator.FieldLevel) bool {
		return IsValidAlias(fl.Field().String())
	})

	return &RequestValidator{validate: v}
}

// Struct validates s and returns one detail per failing field
func (rv *RequestValidator) Struct(s any) []domain.FieldDetail {
	err := rv.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []domain.FieldDetail{{Field: "body", Message: err.Error()}}
	}

	details := make([]domain.FieldDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, domain.FieldDetail{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return details
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "http_url":
		return "must be a valid http or https URL"
	case "alias":
		return "must be 3-20 letters, digits, '-' or '_' and not a reserved word"
	case "gt":
		return "must be a positive integer"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed the %s check", fe.Tag())
	}
}
