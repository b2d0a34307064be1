package domain

import "fmt"

// WorkflowPhase distinguishes the application workflow from a withdrawal one.
type WorkflowPhase string

const (
	PhaseNone        WorkflowPhase = ""
	PhaseApplication WorkflowPhase = "application"
	PhaseWithdrawal  WorkflowPhase = "withdrawal"
)

// WorkflowState is the state of a request derived from its approval history.
type WorkflowState struct {
	Status         RequestStatus
	WorkflowStatus WorkflowStatus
	CurrentStep    int
	WorkflowID     string
	TotalSteps     int
	Phase          WorkflowPhase

	// approval is the completed application state a withdrawal returns to
	// when it is rejected.
	approval *WorkflowState
}

// InitialState is the state of a request with no history.
func InitialState() WorkflowState {
	return WorkflowState{
		Status:         RequestStatusPending,
		WorkflowStatus: WorkflowStatusBypassed,
	}
}

// Replay folds history from the initial state.
func Replay(history []ApprovalEntry) (WorkflowState, error) {
	state := InitialState()
	for i, entry := range history {
		next, err := state.Apply(entry)
		if err != nil {
			return state, fmt.Errorf("history entry %d: %w", i, err)
		}
		state = next
	}
	return state, nil
}

// AwaitingStep reports whether the state waits on an approval step.
func (s WorkflowState) AwaitingStep() bool {
	return s.WorkflowStatus == WorkflowStatusInProgress
}

// Apply returns the state after entry. It does not modify s.
func (s WorkflowState) Apply(entry ApprovalEntry) (WorkflowState, error) {
	switch entry.Action {
	case ActionSubmitted:
		if s.Phase != PhaseNone {
			return s, invalid(s, entry)
		}
		return s.open(PhaseApplication, entry), nil

	case ActionApproved, ActionAutoApproved:
		if !s.AwaitingStep() || entry.StepNumber != s.CurrentStep {
			return s, invalid(s, entry)
		}
		next := s
		next.CurrentStep++
		if next.CurrentStep > next.TotalSteps {
			next.WorkflowStatus = WorkflowStatusCompleted
			next.Status = RequestStatusApproved
			if s.Phase == PhaseWithdrawal {
				next.Status = RequestStatusWithdrawn
			}
		}
		return next, nil

	case ActionRejected:
		if !s.AwaitingStep() || entry.StepNumber != s.CurrentStep {
			return s, invalid(s, entry)
		}
		if s.Phase == PhaseWithdrawal && s.approval != nil {
			return *s.approval, nil
		}
		next := s
		next.Status = RequestStatusRejected
		next.WorkflowStatus = WorkflowStatusRejected
		return next, nil

	case ActionWithdrawalRequested:
		if s.Status != RequestStatusApproved || s.WorkflowStatus != WorkflowStatusCompleted {
			return s, invalid(s, entry)
		}
		approval := s
		next := s.open(PhaseWithdrawal, entry)
		next.approval = &approval
		return next, nil

	case ActionCancelled:
		if s.Status != RequestStatusPending || s.Phase != PhaseApplication {
			return s, invalid(s, entry)
		}
		next := s
		next.Status = RequestStatusCancelled
		next.WorkflowStatus = WorkflowStatusRejected
		return next, nil
	}

	return s, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, entry.Action)
}

func (s WorkflowState) open(phase WorkflowPhase, entry ApprovalEntry) WorkflowState {
	next := s
	next.Phase = phase
	next.WorkflowID = entry.WorkflowID
	next.TotalSteps = entry.TotalSteps

	if entry.TotalSteps == 0 {
		next.CurrentStep = 0
		next.WorkflowStatus = WorkflowStatusCompleted
		next.Status = RequestStatusApproved
		if phase == PhaseWithdrawal {
			next.Status = RequestStatusWithdrawn
		}
		return next
	}

	next.CurrentStep = 1
	next.WorkflowStatus = WorkflowStatusInProgress
	next.Status = RequestStatusPending
	if phase == PhaseWithdrawal {
		next.Status = RequestStatusWithdrawalPending
	}
	return next
}

func invalid(s WorkflowState, entry ApprovalEntry) error {
	return fmt.Errorf("%w: cannot record %s at step %d while %s/%s at step %d",
		ErrInvalidTransition, entry.Action, entry.StepNumber, s.Status, s.WorkflowStatus, s.CurrentStep)
}
