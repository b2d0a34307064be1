package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type AuditLog struct {
	ID           string             `json:"id"`
	OrgID        string             `json:"org_id"`
	UserID       string             `json:"user_id"`
	Action       string             `json:"action"`
	ResourceType string             `json:"resource_type"`
	ResourceID   string             `json:"resource_id"`
	FromStatus   string             `json:"from_status"`
	ToStatus     string             `json:"to_status"`
	Comment      string             `json:"comment"`
	RequestID    string             `json:"request_id"`
	BeforeState  []byte             `json:"before_state"`
	AfterState   []byte             `json:"after_state"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
}

type BalanceAccount struct {
	EmployeeID       string             `json:"employee_id"`
	LeaveVariantID   string             `json:"leave_variant_id"`
	Year             int32              `json:"year"`
	TotalEntitlement pgtype.Numeric     `json:"total_entitlement"`
	CarryForward     pgtype.Numeric     `json:"carry_forward"`
	UsedBalance      pgtype.Numeric     `json:"used_balance"`
	CurrentBalance   pgtype.Numeric     `json:"current_balance"`
	Version          int64              `json:"version"`
	CreatedAt        pgtype.Timestamptz `json:"created_at"`
	UpdatedAt        pgtype.Timestamptz `json:"updated_at"`
}

type Employee struct {
	ID        string             `json:"id"`
	OrgID     string             `json:"org_id"`
	JoinDate  pgtype.Date        `json:"join_date"`
	ManagerID string             `json:"manager_id"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type Holiday struct {
	ID    string      `json:"id"`
	OrgID string      `json:"org_id"`
	Date  pgtype.Date `json:"date"`
	Name  string      `json:"name"`
}

type LedgerTransaction struct {
	ID             string             `json:"id"`
	Seq            int64              `json:"seq"`
	EmployeeID     string             `json:"employee_id"`
	LeaveVariantID string             `json:"leave_variant_id"`
	Year           int32              `json:"year"`
	Type           string             `json:"type"`
	Amount         pgtype.Numeric     `json:"amount"`
	BalanceAfter   pgtype.Numeric     `json:"balance_after"`
	Description    string             `json:"description"`
	RequestID      pgtype.Text        `json:"request_id"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
}

type LeaveRequest struct {
	ID                      string             `json:"id"`
	Kind                    string             `json:"kind"`
	SubProcess              string             `json:"sub_process"`
	EmployeeID              string             `json:"employee_id"`
	OrgID                   string             `json:"org_id"`
	LeaveTypeID             string             `json:"leave_type_id"`
	LeaveVariantID          string             `json:"leave_variant_id"`
	TargetVariantID         string             `json:"target_variant_id"`
	StartDate               pgtype.Date        `json:"start_date"`
	EndDate                 pgtype.Date        `json:"end_date"`
	HalfDayStart            bool               `json:"half_day_start"`
	HalfDayEnd              bool               `json:"half_day_end"`
	WorkingDays             pgtype.Numeric     `json:"working_days"`
	Reason                  string             `json:"reason"`
	Status                  string             `json:"status"`
	WorkflowID              string             `json:"workflow_id"`
	CurrentStep             int32              `json:"current_step"`
	WorkflowStatus          string             `json:"workflow_status"`
	ScheduledAutoApprovalAt pgtype.Timestamptz `json:"scheduled_auto_approval_at"`
	ApprovalHistory         []byte             `json:"approval_history"`
	Version                 int64              `json:"version"`
	CreatedAt               pgtype.Timestamptz `json:"created_at"`
	UpdatedAt               pgtype.Timestamptz `json:"updated_at"`
}

type LeaveVariant struct {
	ID                   string             `json:"id"`
	OrgID                string             `json:"org_id"`
	LeaveTypeID          string             `json:"leave_type_id"`
	Name                 string             `json:"name"`
	AnnualEntitlement    pgtype.Numeric     `json:"annual_entitlement"`
	AccrualPolicy        string             `json:"accrual_policy"`
	AccrualFrequency     string             `json:"accrual_frequency"`
	DeductBeforeWorkflow bool               `json:"deduct_before_workflow"`
	MaxCarryForward      pgtype.Numeric     `json:"max_carry_forward"`
	CreatedAt            pgtype.Timestamptz `json:"created_at"`
	UpdatedAt            pgtype.Timestamptz `json:"updated_at"`
}

type OutboxEvent struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
	Published     bool               `json:"published"`
}

type WorkflowDefinition struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Process    string             `json:"process"`
	SubProcess string             `json:"sub_process"`
	OrgID      string             `json:"org_id"`
	Steps      []byte             `json:"steps"`
	CreatedAt  pgtype.Timestamptz `json:"created_at"`
	UpdatedAt  pgtype.Timestamptz `json:"updated_at"`
}
