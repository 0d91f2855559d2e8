// Package validation checks request payloads against struct tags and turns
// failures into field-level messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a payload field name to a caller-facing message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, f[k]))
	}
	return strings.Join(parts, "; ")
}

// messages holds the wording for known field/tag pairs. Anything else
// falls back to a generic message built from the field name.
var messages = map[string]string{
	"firstName.required":            "First Name is required",
	"lastName.required":             "Last Name is required",
	"password.required":             "Password is required",
	"password.min":                  "Password is too short - should be at least 6 characters",
	"passwordConfirmation.required": "Password Confirmation is required",
	"passwordConfirmation.eqfield":  "Passwords do not match",
	"email.required":                "Email is required",
	"email.email":                   "Not a valid email",
}

// Validator wraps go-playground/validator with payload-aware field naming.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator that reports fields by their json or params tag.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(fieldName)
	return &Validator{validate: v}
}

// Struct validates s and returns FieldErrors on rule violations.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = message(fe)
	}
	return fields
}

func message(fe validator.FieldError) string {
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s is not a valid email", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "params"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}
