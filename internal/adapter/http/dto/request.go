package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/usecase"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// SubmitRequest represents a request to submit leave, PTO or comp-off.
type SubmitRequest struct {
	Kind              string           `json:"kind"`
	CompOffType       string           `json:"comp_off_type,omitempty"`
	EmployeeID        string           `json:"employee_id"`
	OrgID             string           `json:"org_id,omitempty"`
	LeaveTypeID       string           `json:"leave_type_id"`
	TargetLeaveTypeID string           `json:"target_leave_type_id,omitempty"`
	StartDate         string           `json:"start_date,omitempty"`
	EndDate           string           `json:"end_date,omitempty"`
	HalfDayStart      bool             `json:"half_day_start,omitempty"`
	HalfDayEnd        bool             `json:"half_day_end,omitempty"`
	Days              *decimal.Decimal `json:"days,omitempty"`
	Reason            string           `json:"reason,omitempty"`
}

// ToUseCaseInput converts to use case input. OrgID defaults to the actor's.
func (r *SubmitRequest) ToUseCaseInput(actor domain.Actor) (usecase.SubmitRequestInput, error) {
	start, err := parseDate("start_date", r.StartDate)
	if err != nil {
		return usecase.SubmitRequestInput{}, err
	}
	end, err := parseDate("end_date", r.EndDate)
	if err != nil {
		return usecase.SubmitRequestInput{}, err
	}

	input := usecase.SubmitRequestInput{
		Actor:             actor,
		Kind:              domain.RequestKind(r.Kind),
		CompOffType:       r.CompOffType,
		EmployeeID:        r.EmployeeID,
		OrgID:             r.OrgID,
		LeaveTypeID:       r.LeaveTypeID,
		TargetLeaveTypeID: r.TargetLeaveTypeID,
		StartDate:         start,
		EndDate:           end,
		HalfDayStart:      r.HalfDayStart,
		HalfDayEnd:        r.HalfDayEnd,
		Reason:            r.Reason,
	}
	if input.OrgID == "" {
		input.OrgID = actor.OrgID
	}
	if input.EmployeeID == "" {
		input.EmployeeID = actor.ID
	}
	if r.Days != nil {
		if !r.Days.Mul(decimal.NewFromInt(2)).IsInteger() {
			return usecase.SubmitRequestInput{}, fmt.Errorf("%w: days must be a multiple of 0.5", domain.ErrInvalidAmount)
		}
		input.Days = domain.HalfDaysFromDays(*r.Days)
	}

	return input, nil
}

// TransitionRequest carries the comment or reason of a request transition.
type TransitionRequest struct {
	Comment string `json:"comment,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Text returns the reason, falling back to the comment.
func (r *TransitionRequest) Text() string {
	if r.Reason != "" {
		return r.Reason
	}
	return r.Comment
}

// AccrualRequest identifies the balance account an accrual operation targets.
// For carry-forward, Year is the year being closed.
type AccrualRequest struct {
	EmployeeID     string `json:"employee_id"`
	LeaveVariantID string `json:"leave_variant_id"`
	Year           int    `json:"year"`
}

// Validate checks required fields.
func (r *AccrualRequest) Validate() error {
	if err := domain.ValidateRequired(
		domain.Field{Name: "employee_id", Value: r.EmployeeID},
		domain.Field{Name: "leave_variant_id", Value: r.LeaveVariantID},
	); err != nil {
		return err
	}
	if r.Year <= 0 {
		return fmt.Errorf("%w: year", domain.ErrMissingField)
	}
	return nil
}

func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", domain.ErrInvalidDateRange, field)
	}
	return t, nil
}
