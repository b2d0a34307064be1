package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/leaveledger/internal/domain"
)

// Transition reports what an engine call did to a request.
type Transition struct {
	// Changed is false when the call was a no-op.
	Changed bool
	// Completed is true when the active workflow finished in this call.
	Completed bool
}

// WorkflowEngine drives requests through their approval workflows. It only
// mutates the request it is given; persistence and ledger effects belong to
// the caller.
type WorkflowEngine struct {
	workflowRepo WorkflowRepository
	employees    employeeLookup
}

// NewWorkflowEngine creates a new WorkflowEngine.
func NewWorkflowEngine(workflowRepo WorkflowRepository, directory EmployeeDirectory, logger zerolog.Logger) *WorkflowEngine {
	return &WorkflowEngine{
		workflowRepo: workflowRepo,
		employees:    employeeLookup{directory: directory, logger: logger},
	}
}

// Start opens the application workflow for (process, subProcess, req.OrgID).
// Without a definition the request is approved immediately.
func (e *WorkflowEngine) Start(ctx context.Context, req *domain.Request, process, subProcess string, actor domain.Actor, now time.Time) (Transition, error) {
	return e.open(ctx, req, domain.ActionSubmitted, process, subProcess, actor, req.Reason, now)
}

// StartWithdrawal opens the withdrawal workflow of an approved request.
// Without a withdrawal definition the request is withdrawn immediately.
func (e *WorkflowEngine) StartWithdrawal(ctx context.Context, req *domain.Request, actor domain.Actor, reason string, now time.Time) (Transition, error) {
	return e.open(ctx, req, domain.ActionWithdrawalRequested, req.Kind.Process(), domain.SubProcessWithdraw, actor, reason, now)
}

// Approve approves the current step as actor.
func (e *WorkflowEngine) Approve(ctx context.Context, req *domain.Request, actor domain.Actor, comment string, now time.Time) (Transition, error) {
	def, step, err := e.currentStep(ctx, req)
	if err != nil {
		return Transition{}, err
	}

	if err := e.authorize(ctx, req, step, actor); err != nil {
		return Transition{}, err
	}

	if err := req.Record(domain.ApprovalEntry{
		StepNumber: req.CurrentStep,
		Action:     domain.ActionApproved,
		UserID:     actor.ID,
		Timestamp:  now,
		Comment:    comment,
	}); err != nil {
		return Transition{}, err
	}

	return e.settle(req, def, now)
}

// Reject rejects the current step as actor. reason is required.
func (e *WorkflowEngine) Reject(ctx context.Context, req *domain.Request, actor domain.Actor, reason string, now time.Time) (Transition, error) {
	if err := domain.ValidateReason(reason, true); err != nil {
		return Transition{}, err
	}

	_, step, err := e.currentStep(ctx, req)
	if err != nil {
		return Transition{}, err
	}

	if err := e.authorize(ctx, req, step, actor); err != nil {
		return Transition{}, err
	}

	if err := req.Record(domain.ApprovalEntry{
		StepNumber: req.CurrentStep,
		Action:     domain.ActionRejected,
		UserID:     actor.ID,
		Timestamp:  now,
		Comment:    reason,
	}); err != nil {
		return Transition{}, err
	}

	req.ScheduledAutoApprovalAt = nil
	return Transition{Changed: true}, nil
}

// Cancel cancels a pending request on behalf of actor.
func (e *WorkflowEngine) Cancel(req *domain.Request, actor domain.Actor, reason string, now time.Time) (Transition, error) {
	if err := req.Record(domain.ApprovalEntry{
		StepNumber: req.CurrentStep,
		Action:     domain.ActionCancelled,
		UserID:     actor.ID,
		Timestamp:  now,
		Comment:    reason,
	}); err != nil {
		return Transition{}, err
	}

	req.ScheduledAutoApprovalAt = nil
	return Transition{Changed: true}, nil
}

// Advance moves the request past automatic steps and past a manual step whose
// scheduled auto approval is due. Anything else is left for an explicit
// approve or reject and reported as unchanged.
func (e *WorkflowEngine) Advance(ctx context.Context, req *domain.Request, now time.Time) (Transition, error) {
	def, step, err := e.currentStep(ctx, req)
	if err != nil {
		return Transition{}, err
	}

	if step.Kind == domain.StepKindAuto {
		return e.settle(req, def, now)
	}

	due := step.AutoApproveAfter != nil && req.ScheduledAutoApprovalAt != nil && !now.Before(*req.ScheduledAutoApprovalAt)
	if !due {
		return Transition{}, nil
	}

	if err := req.Record(domain.ApprovalEntry{
		StepNumber: req.CurrentStep,
		Action:     domain.ActionAutoApproved,
		UserID:     domain.SystemActorID,
		Timestamp:  now,
		Comment:    fmt.Sprintf("auto-approved after %s", *step.AutoApproveAfter),
	}); err != nil {
		return Transition{}, err
	}

	return e.settle(req, def, now)
}

func (e *WorkflowEngine) open(ctx context.Context, req *domain.Request, action domain.ApprovalAction, process, subProcess string, actor domain.Actor, comment string, now time.Time) (Transition, error) {
	def, err := e.workflowRepo.Find(ctx, process, subProcess, req.OrgID)
	switch {
	case errors.Is(err, domain.ErrWorkflowNotFound):
		def = nil
	case err != nil:
		return Transition{}, err
	}

	entry := domain.ApprovalEntry{
		StepNumber: 0,
		Action:     action,
		UserID:     actor.ID,
		Timestamp:  now,
		Comment:    comment,
		TotalSteps: def.TotalSteps(),
	}
	if def != nil {
		entry.WorkflowID = def.ID
	}

	if err := req.Record(entry); err != nil {
		return Transition{}, err
	}

	return e.settle(req, def, now)
}

// settle chains through automatic steps and schedules time-based approval
// for the step the request stops at.
func (e *WorkflowEngine) settle(req *domain.Request, def *domain.WorkflowDefinition, now time.Time) (Transition, error) {
	for req.WorkflowStatus == domain.WorkflowStatusInProgress {
		step, ok := def.Step(req.CurrentStep)
		if !ok || step.Kind != domain.StepKindAuto {
			break
		}

		if err := req.Record(domain.ApprovalEntry{
			StepNumber: req.CurrentStep,
			Action:     domain.ActionAutoApproved,
			UserID:     domain.SystemActorID,
			Timestamp:  now,
			Comment:    "automatic step",
		}); err != nil {
			return Transition{}, err
		}
	}

	req.ScheduledAutoApprovalAt = nil
	if req.WorkflowStatus == domain.WorkflowStatusInProgress {
		if step, ok := def.Step(req.CurrentStep); ok && step.AutoApproveAfter != nil {
			at := now.Add(*step.AutoApproveAfter)
			req.ScheduledAutoApprovalAt = &at
		}
	}

	return Transition{
		Changed:   true,
		Completed: req.WorkflowStatus == domain.WorkflowStatusCompleted,
	}, nil
}

func (e *WorkflowEngine) currentStep(ctx context.Context, req *domain.Request) (*domain.WorkflowDefinition, domain.WorkflowStep, error) {
	if req.WorkflowStatus != domain.WorkflowStatusInProgress {
		return nil, domain.WorkflowStep{}, fmt.Errorf("%w: request %s is %s with workflow %s",
			domain.ErrInvalidTransition, req.ID, req.Status, req.WorkflowStatus)
	}

	def, err := e.workflowRepo.GetByID(ctx, req.WorkflowID)
	if err != nil {
		if errors.Is(err, domain.ErrWorkflowNotFound) {
			return nil, domain.WorkflowStep{}, fmt.Errorf("%w: workflow %s of request %s no longer exists",
				domain.ErrMissingConfiguration, req.WorkflowID, req.ID)
		}
		return nil, domain.WorkflowStep{}, err
	}

	step, ok := def.Step(req.CurrentStep)
	if !ok {
		return nil, domain.WorkflowStep{}, fmt.Errorf("%w: workflow %s has no step %d",
			domain.ErrMissingConfiguration, def.ID, req.CurrentStep)
	}

	return def, step, nil
}

func (e *WorkflowEngine) authorize(ctx context.Context, req *domain.Request, step domain.WorkflowStep, actor domain.Actor) error {
	if actor.IsSystem() {
		return nil
	}

	if actor.ID == req.EmployeeID {
		return fmt.Errorf("%w: requests cannot be decided by their own employee", domain.ErrNotAuthorizedApprover)
	}

	if step.Approver == nil {
		return nil
	}

	var managerID string
	if step.Approver.Type == domain.ApproverReportingManager {
		if employee := e.employees.get(ctx, req.EmployeeID); employee != nil {
			managerID = employee.ManagerID
		}
	}

	if !step.Approver.Allows(actor, managerID) {
		return fmt.Errorf("%w: step %d requires %s", domain.ErrNotAuthorizedApprover, req.CurrentStep, step.Approver.Type)
	}

	return nil
}
