// Package seed loads leave configuration (variants, workflows, holidays and
// employees) from a JSON document into a storage backend.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/leaveledger/internal/domain"
)

// Writer stores configuration records.
type Writer interface {
	PutVariant(ctx context.Context, v *domain.LeaveVariant) error
	PutWorkflow(ctx context.Context, def *domain.WorkflowDefinition) error
	PutHoliday(ctx context.Context, h domain.Holiday) error
	PutEmployee(ctx context.Context, e *domain.Employee) error
}

type variantDoc struct {
	ID                   string                  `json:"id"`
	OrgID                string                  `json:"org_id"`
	LeaveTypeID          string                  `json:"leave_type_id"`
	Name                 string                  `json:"name"`
	AnnualEntitlement    decimal.Decimal         `json:"annual_entitlement"`
	AccrualPolicy        domain.AccrualPolicy    `json:"accrual_policy"`
	AccrualFrequency     domain.AccrualFrequency `json:"accrual_frequency"`
	DeductBeforeWorkflow bool                    `json:"deduct_before_workflow"`
	MaxCarryForward      decimal.Decimal         `json:"max_carry_forward"`
}

type workflowDoc struct {
	ID         string                `json:"id"`
	Name       string                `json:"name"`
	Process    string                `json:"process"`
	SubProcess string                `json:"sub_process"`
	OrgID      string                `json:"org_id"`
	Steps      []domain.WorkflowStep `json:"steps"`
}

type holidayDoc struct {
	ID    string `json:"id"`
	OrgID string `json:"org_id"`
	Date  string `json:"date"`
	Name  string `json:"name"`
}

type document struct {
	Variants  []variantDoc       `json:"variants"`
	Workflows []workflowDoc      `json:"workflows"`
	Holidays  []holidayDoc       `json:"holidays"`
	Employees []*domain.Employee `json:"employees"`
}

// Data is a decoded seed document.
type Data struct {
	Variants  []*domain.LeaveVariant
	Workflows []*domain.WorkflowDefinition
	Holidays  []domain.Holiday
	Employees []*domain.Employee
}

// Decode parses a seed document. Day amounts are decimal days and holiday
// dates are YYYY-MM-DD. Variants and workflows are validated.
func Decode(r io.Reader, now time.Time) (*Data, error) {
	var doc document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	data := &Data{Employees: doc.Employees}

	for _, v := range doc.Variants {
		variant := &domain.LeaveVariant{
			ID:                   v.ID,
			OrgID:                v.OrgID,
			LeaveTypeID:          v.LeaveTypeID,
			Name:                 v.Name,
			AnnualEntitlement:    domain.HalfDaysFromDays(v.AnnualEntitlement),
			AccrualPolicy:        v.AccrualPolicy,
			AccrualFrequency:     v.AccrualFrequency,
			DeductBeforeWorkflow: v.DeductBeforeWorkflow,
			MaxCarryForward:      domain.HalfDaysFromDays(v.MaxCarryForward),
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if err := variant.Validate(); err != nil {
			return nil, fmt.Errorf("variant %s: %w", v.ID, err)
		}
		data.Variants = append(data.Variants, variant)
	}

	for _, w := range doc.Workflows {
		def := &domain.WorkflowDefinition{
			ID:         w.ID,
			Name:       w.Name,
			Process:    w.Process,
			SubProcess: w.SubProcess,
			OrgID:      w.OrgID,
			Steps:      w.Steps,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("workflow %s: %w", w.ID, err)
		}
		data.Workflows = append(data.Workflows, def)
	}

	for i, h := range doc.Holidays {
		date, err := time.Parse(time.DateOnly, h.Date)
		if err != nil {
			return nil, fmt.Errorf("holiday %d: %w", i, err)
		}
		id := h.ID
		if id == "" {
			id = fmt.Sprintf("holiday-%s-%s", h.OrgID, h.Date)
		}
		data.Holidays = append(data.Holidays, domain.Holiday{ID: id, OrgID: h.OrgID, Date: date, Name: h.Name})
	}

	for i, e := range data.Employees {
		if e == nil || e.ID == "" || e.OrgID == "" {
			return nil, fmt.Errorf("employee %d: %w: id and org_id", i, domain.ErrMissingField)
		}
	}

	return data, nil
}

// Apply writes every record of d to w.
func (d *Data) Apply(ctx context.Context, w Writer) error {
	for _, v := range d.Variants {
		if err := w.PutVariant(ctx, v); err != nil {
			return fmt.Errorf("variant %s: %w", v.ID, err)
		}
	}
	for _, def := range d.Workflows {
		if err := w.PutWorkflow(ctx, def); err != nil {
			return fmt.Errorf("workflow %s: %w", def.ID, err)
		}
	}
	for _, h := range d.Holidays {
		if err := w.PutHoliday(ctx, h); err != nil {
			return fmt.Errorf("holiday %s: %w", h.ID, err)
		}
	}
	for _, e := range d.Employees {
		if err := w.PutEmployee(ctx, e); err != nil {
			return fmt.Errorf("employee %s: %w", e.ID, err)
		}
	}
	return nil
}

// Load decodes r and applies it to w.
func Load(ctx context.Context, r io.Reader, w Writer) error {
	data, err := Decode(r, time.Now().UTC())
	if err != nil {
		return err
	}
	return data.Apply(ctx, w)
}
