package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors
var (
	ErrReasonTooLong    = errors.New("reason exceeds maximum length")
	ErrMissingField     = errors.New("required field is missing")
	ErrDateRangeTooLong = errors.New("date range exceeds maximum length")
)

// Validation constants
const (
	MaxReasonLength    = 1000
	MaxRequestSpanDays = 366
)

// ValidateReason validates a free-text reason. Empty is allowed unless required.
func ValidateReason(reason string, required bool) error {
	reason = strings.TrimSpace(reason)

	if required && reason == "" {
		return ErrReasonRequired
	}

	if len(reason) > MaxReasonLength {
		return fmt.Errorf("%w: %d characters allowed", ErrReasonTooLong, MaxReasonLength)
	}

	return nil
}

// ValidateDateRange validates a request's start and end dates.
func ValidateDateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidDateRange)
	}

	start, end = StartOfDay(start), StartOfDay(end)
	if end.Before(start) {
		return fmt.Errorf("%w: end date is before start date", ErrInvalidDateRange)
	}

	if end.Sub(start) > MaxRequestSpanDays*24*time.Hour {
		return fmt.Errorf("%w: at most %d days", ErrDateRangeTooLong, MaxRequestSpanDays)
	}

	return nil
}

// Field is a named input value checked by ValidateRequired.
type Field struct {
	Name  string
	Value string
}

// ValidateRequired returns ErrMissingField naming the first empty field in
// argument order.
func ValidateRequired(fields ...Field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.Name)
		}
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
