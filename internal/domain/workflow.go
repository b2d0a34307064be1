package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// Workflow processes.
const (
	ProcessLeave   = "leave"
	ProcessPTO     = "pto"
	ProcessCompOff = "comp_off"
)

// Workflow sub-processes.
const (
	SubProcessApply        = "apply"
	SubProcessWithdraw     = "withdraw-leave"
	SubProcessBankCompOff  = "bank-comp-off"
	SubProcessAvailCompOff = "avail-comp-off"
	SubProcessTransfer     = "transfer-comp-off"
	SubProcessEncash       = "encash-comp-off"
)

// StepKind tags a workflow step.
type StepKind string

const (
	StepKindManual StepKind = "manual"
	StepKindAuto   StepKind = "auto"
)

// ApproverType selects who may act on a manual step.
type ApproverType string

const (
	ApproverAny              ApproverType = "any"
	ApproverRole             ApproverType = "role"
	ApproverUser             ApproverType = "user"
	ApproverReportingManager ApproverType = "reporting_manager"
)

// ApproverRule restricts the actors allowed to approve or reject a step.
type ApproverRule struct {
	Type   ApproverType `json:"type"`
	Values []string     `json:"values,omitempty"`
}

// Allows reports whether actor satisfies the rule. managerID is the requesting
// employee's manager, empty when unknown.
func (r ApproverRule) Allows(actor Actor, managerID string) bool {
	if actor.IsSystem() {
		return true
	}

	switch r.Type {
	case ApproverAny:
		return true
	case ApproverUser:
		return slices.Contains(r.Values, actor.ID)
	case ApproverRole:
		for _, role := range actor.Roles {
			if slices.Contains(r.Values, role) {
				return true
			}
		}
		return false
	case ApproverReportingManager:
		// Unknown manager degrades to any approver.
		return managerID == "" || managerID == actor.ID
	}

	return false
}

// WorkflowStep is one approval step.
type WorkflowStep struct {
	Name             string         `json:"name"`
	Kind             StepKind       `json:"kind"`
	Approver         *ApproverRule  `json:"approver,omitempty"`
	AutoApproveAfter *time.Duration `json:"auto_approve_after,omitempty"`
}

type stepJSON struct {
	Name             string        `json:"name"`
	Kind             StepKind      `json:"kind"`
	Approver         *ApproverRule `json:"approver,omitempty"`
	AutoApproveAfter string        `json:"auto_approve_after,omitempty"`
}

// MarshalJSON writes AutoApproveAfter as a Go duration string ("48h").
func (s WorkflowStep) MarshalJSON() ([]byte, error) {
	out := stepJSON{Name: s.Name, Kind: s.Kind, Approver: s.Approver}
	if s.AutoApproveAfter != nil {
		out.AutoApproveAfter = s.AutoApproveAfter.String()
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the layout written by MarshalJSON.
func (s *WorkflowStep) UnmarshalJSON(data []byte) error {
	var in stepJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*s = WorkflowStep{Name: in.Name, Kind: in.Kind, Approver: in.Approver}
	if in.AutoApproveAfter != "" {
		d, err := time.ParseDuration(in.AutoApproveAfter)
		if err != nil {
			return fmt.Errorf("step %q: auto_approve_after: %w", in.Name, err)
		}
		s.AutoApproveAfter = &d
	}
	return nil
}

// WorkflowDefinition is an ordered list of approval steps for a process.
type WorkflowDefinition struct {
	ID         string
	Name       string
	Process    string
	SubProcess string
	OrgID      string
	Steps      []WorkflowStep
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks the definition once at load time.
func (d *WorkflowDefinition) Validate() error {
	if len(d.Steps) == 0 {
		return fmt.Errorf("%w: workflow %s has no steps", ErrMissingConfiguration, d.ID)
	}

	for i, step := range d.Steps {
		switch step.Kind {
		case StepKindManual:
			if step.Approver == nil {
				return fmt.Errorf("%w: workflow %s step %d has no approver rule", ErrMissingConfiguration, d.ID, i+1)
			}
			switch step.Approver.Type {
			case ApproverAny, ApproverReportingManager:
			case ApproverRole, ApproverUser:
				if len(step.Approver.Values) == 0 {
					return fmt.Errorf("%w: workflow %s step %d approver rule has no values", ErrMissingConfiguration, d.ID, i+1)
				}
			default:
				return fmt.Errorf("%w: workflow %s step %d has unknown approver type %q", ErrMissingConfiguration, d.ID, i+1, step.Approver.Type)
			}
			if step.AutoApproveAfter != nil && *step.AutoApproveAfter <= 0 {
				return fmt.Errorf("%w: workflow %s step %d has a non-positive auto approval delay", ErrMissingConfiguration, d.ID, i+1)
			}
		case StepKindAuto:
			if step.Approver != nil || step.AutoApproveAfter != nil {
				return fmt.Errorf("%w: workflow %s step %d is automatic and cannot carry approver settings", ErrMissingConfiguration, d.ID, i+1)
			}
		default:
			return fmt.Errorf("%w: workflow %s step %d has unknown kind %q", ErrMissingConfiguration, d.ID, i+1, step.Kind)
		}
	}

	return nil
}

// Step returns the 1-based step n.
func (d *WorkflowDefinition) Step(n int) (WorkflowStep, bool) {
	if d == nil || n < 1 || n > len(d.Steps) {
		return WorkflowStep{}, false
	}
	return d.Steps[n-1], true
}

// TotalSteps returns the number of steps, zero for a nil definition.
func (d *WorkflowDefinition) TotalSteps() int {
	if d == nil {
		return 0
	}
	return len(d.Steps)
}
