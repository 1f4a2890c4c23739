package validator

import (
	ierr "github.com/fakturo/fakturo/internal/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest validates a struct against its `validate` tags and returns
// a marked validation error listing every failed field.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		details := make(map[string]any)
		var validateErrs validator.ValidationErrors
		if ierr.As(err, &validateErrs) {
			for _, err := range validateErrs {
				details[err.Field()] = err.Error()
			}
		}
		return ierr.WithError(err).
			WithHint("Request validation failed").
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}
