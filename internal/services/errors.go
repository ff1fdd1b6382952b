package services

import (
	"errors"
	"fmt"

	"finsimples/internal/core"
)

var (
	// ErrUnauthenticated is returned by writes without an identity.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrDefaultCategory is returned when deleting a default category.
	ErrDefaultCategory = errors.New("default categories cannot be deleted")
	// ErrSubmissionInFlight is returned when the same draft is already being saved.
	ErrSubmissionInFlight = errors.New("an identical submission is already in progress")
)

// ValidationError reports input rejected before any store call.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// fieldOf names the input field a core validation error refers to.
func fieldOf(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyDescription), errors.Is(err, core.ErrDescriptionTooLong):
		return "description"
	case errors.Is(err, core.ErrInvalidAmount):
		return "amount"
	case errors.Is(err, core.ErrEmptyCategory), errors.Is(err, ErrUnknownCategory):
		return "category"
	case errors.Is(err, core.ErrInvalidType):
		return "type"
	case errors.Is(err, core.ErrZeroDate), errors.Is(err, core.ErrInvalidDay), errors.Is(err, core.ErrInvalidMonth):
		return "date"
	case errors.Is(err, core.ErrInvalidFrequency):
		return "frequency"
	case errors.Is(err, core.ErrEndBeforeStart):
		return "endDate"
	case errors.Is(err, core.ErrInvalidInstallment):
		return "installments"
	case errors.Is(err, core.ErrEmptyName):
		return "name"
	}
	return ""
}
