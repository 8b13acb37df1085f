// Package validate wraps go-playground/validator for request DTOs.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/peopleflow/peopleflow/internal/platform/httpx"
)

var instance = validator.New(validator.WithRequiredStructEnabled())

// Struct validates tagged struct fields, returning one readable error.
func Struct(v any) error {
	err := instance.Struct(v)
	if err == nil {
		return nil
	}
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return err
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		parts := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			parts = append(parts, fmt.Sprintf("%s fails %q", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", httpx.ErrValidation, strings.Join(parts, "; "))
	}
	return err
}
