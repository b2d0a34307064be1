package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateReason(t *testing.T) {
	t.Parallel()

	if err := ValidateReason("", false); err != nil {
		t.Fatalf("expected optional empty reason to pass, got %v", err)
	}

	if err := ValidateReason("  ", true); !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}

	if err := ValidateReason(strings.Repeat("a", MaxReasonLength+1), false); !errors.Is(err, ErrReasonTooLong) {
		t.Fatalf("expected ErrReasonTooLong, got %v", err)
	}
}

func TestValidateDateRange(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	if err := ValidateDateRange(start, start); err != nil {
		t.Fatalf("expected same-day range to pass, got %v", err)
	}

	if err := ValidateDateRange(start, start.AddDate(0, 0, -1)); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}

	if err := ValidateDateRange(time.Time{}, start); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange for zero start, got %v", err)
	}

	if err := ValidateDateRange(start, start.AddDate(2, 0, 0)); !errors.Is(err, ErrDateRangeTooLong) {
		t.Fatalf("expected ErrDateRangeTooLong, got %v", err)
	}
}

func TestValidateRequired(t *testing.T) {
	t.Parallel()

	if err := ValidateRequired(Field{"employee_id", "e1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := ValidateRequired(Field{"employee_id", " "})
	if !errors.Is(err, ErrMissingField) || !strings.Contains(err.Error(), "employee_id") {
		t.Fatalf("expected ErrMissingField naming employee_id, got %v", err)
	}

	// Several empty fields always report the first one.
	for range 20 {
		err := ValidateRequired(
			Field{"employee_id", "e1"},
			Field{"org_id", ""},
			Field{"leave_type_id", ""},
			Field{"reason", ""},
		)
		if err == nil || err.Error() != ErrMissingField.Error()+": org_id" {
			t.Fatalf("expected org_id reported first, got %v", err)
		}
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset, _ := ValidatePagination(0, -1)
	if limit != 50 || offset != 0 {
		t.Fatalf("expected defaults 50/0, got %d/%d", limit, offset)
	}

	limit, _, _ = ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Fatalf("expected max page size 1000, got %d", limit)
	}
}
