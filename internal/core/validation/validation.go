package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Violation describes one field that failed validation.
type Violation struct {
	// Field is the dotted JSON path of the field, e.g. billingAddress.email.
	Field string
	// Message is a human-readable description of the rule that failed.
	Message string
}

// Validator validates request structs tagged with `validate`.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator that reports fields by their json or query tag names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates s and returns one Violation per failed rule, or nil when s is valid.
func (v *Validator) Struct(s any) []Violation {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Violation{{Field: "", Message: err.Error()}}
	}

	violations := make([]Violation, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		violations = append(violations, Violation{
			Field:   fieldPath(e),
			Message: message(e),
		})
	}
	return violations
}

// fieldPath drops the root struct name from the error namespace.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if e.Kind() == reflect.Slice {
			return "must contain at least " + e.Param() + " item(s)"
		}
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}
