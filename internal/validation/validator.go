// Package validation provides request validation using the validator/v10
// library, translating failures into per-field envelope messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/utubapp/utub-server/internal/errors"
)

// Validator wraps go-playground/validator with envelope error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our request forms.
func New() *Validator {
	v := validator.New()

	// Report field names as the front-end knows them.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("form")
		if name == "" {
			name = fld.Tag.Get("json")
		}
		if name == "" {
			return fld.Name
		}
		for i := range len(name) {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})

	return &Validator{v: v}
}

// Validate validates a form struct. Failures come back as a validation error
// whose Fields populate the envelope's "errors" key.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// formatError converts validator errors to a domain validation error.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fields := make(map[string][]string, len(validationErrs))
	for _, e := range validationErrs {
		fields[e.Field()] = append(fields[e.Field()], friendlyMessage(e))
	}
	return apperrors.Validation("Unable to process this request, please check inputs.").
		WithWireCode(1).WithFields(fields)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "min":
		return fmt.Sprintf("Field must be at least %s characters.", e.Param())
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", e.Param())
	case "email":
		return "Field must be a valid email address."
	case "oneof":
		return "Field must be one of: " + e.Param() + "."
	default:
		return "Invalid input, please try again."
	}
}
