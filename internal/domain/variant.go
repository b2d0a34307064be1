package domain

import (
	"fmt"
	"time"
)

// AccrualPolicy decides when a variant's entitlement becomes available.
type AccrualPolicy string

const (
	// AccrualInAdvance grants the whole (pro-rated) entitlement up front.
	AccrualInAdvance AccrualPolicy = "in_advance"
	// AccrualAfterEarning grants entitlement as months are completed.
	AccrualAfterEarning AccrualPolicy = "after_earning"
)

// AccrualFrequency is the period over which after-earning entitlement accrues.
type AccrualFrequency string

const (
	AccrualMonthly AccrualFrequency = "monthly"
	AccrualYearly  AccrualFrequency = "yearly"
)

// LeaveVariant is the per-org configuration of a leave type.
type LeaveVariant struct {
	ID                   string
	OrgID                string
	LeaveTypeID          string
	Name                 string
	AnnualEntitlement    HalfDays
	AccrualPolicy        AccrualPolicy
	AccrualFrequency     AccrualFrequency
	DeductBeforeWorkflow bool
	MaxCarryForward      HalfDays
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Validate checks the variant configuration.
func (v *LeaveVariant) Validate() error {
	switch v.AccrualPolicy {
	case AccrualInAdvance, AccrualAfterEarning:
	default:
		return fmt.Errorf("%w: variant %s has unknown accrual policy %q", ErrMissingConfiguration, v.ID, v.AccrualPolicy)
	}

	switch v.AccrualFrequency {
	case AccrualMonthly, AccrualYearly, "":
	default:
		return fmt.Errorf("%w: variant %s has unknown accrual frequency %q", ErrMissingConfiguration, v.ID, v.AccrualFrequency)
	}

	if v.AnnualEntitlement < 0 || v.MaxCarryForward < 0 {
		return fmt.Errorf("%w: variant %s has a negative entitlement", ErrMissingConfiguration, v.ID)
	}

	return nil
}

// Employee is the subset of a directory record the ledger needs.
type Employee struct {
	ID        string     `json:"id"`
	OrgID     string     `json:"org_id"`
	JoinDate  *time.Time `json:"join_date,omitempty"`
	ManagerID string     `json:"manager_id,omitempty"`
}
