package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/infrastructure/postgres/generated"
)

// VariantRepository implements usecase.VariantRepository.
type VariantRepository struct {
	queries *generated.Queries
}

// NewVariantRepository creates a new VariantRepository.
func NewVariantRepository(db generated.DBTX) *VariantRepository {
	return &VariantRepository{queries: generated.New(db)}
}

// GetByID retrieves a variant.
func (r *VariantRepository) GetByID(ctx context.Context, id string) (*domain.LeaveVariant, error) {
	row, err := r.queries.GetLeaveVariant(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVariantNotFound
		}

		return nil, err
	}

	return rowToVariant(row), nil
}

// GetByLeaveType retrieves the org's variant of a leave type.
func (r *VariantRepository) GetByLeaveType(ctx context.Context, orgID, leaveTypeID string) (*domain.LeaveVariant, error) {
	row, err := r.queries.GetLeaveVariantByLeaveType(ctx, generated.GetLeaveVariantByLeaveTypeParams{
		OrgID:       orgID,
		LeaveTypeID: leaveTypeID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVariantNotFound
		}

		return nil, err
	}

	return rowToVariant(row), nil
}

func rowToVariant(row generated.LeaveVariant) *domain.LeaveVariant {
	return &domain.LeaveVariant{
		ID:                   row.ID,
		OrgID:                row.OrgID,
		LeaveTypeID:          row.LeaveTypeID,
		Name:                 row.Name,
		AnnualEntitlement:    numericToHalfDays(row.AnnualEntitlement),
		AccrualPolicy:        domain.AccrualPolicy(row.AccrualPolicy),
		AccrualFrequency:     domain.AccrualFrequency(row.AccrualFrequency),
		DeductBeforeWorkflow: row.DeductBeforeWorkflow,
		MaxCarryForward:      numericToHalfDays(row.MaxCarryForward),
		CreatedAt:            row.CreatedAt.Time,
		UpdatedAt:            row.UpdatedAt.Time,
	}
}

// WorkflowRepository implements usecase.WorkflowRepository.
type WorkflowRepository struct {
	queries *generated.Queries
}

// NewWorkflowRepository creates a new WorkflowRepository.
func NewWorkflowRepository(db generated.DBTX) *WorkflowRepository {
	return &WorkflowRepository{queries: generated.New(db)}
}

// GetByID retrieves a workflow definition.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*domain.WorkflowDefinition, error) {
	row, err := r.queries.GetWorkflowDefinition(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWorkflowNotFound
		}

		return nil, err
	}

	return rowToWorkflow(row)
}

// Find prefers the org's definition over one with an empty org.
func (r *WorkflowRepository) Find(ctx context.Context, process, subProcess, orgID string) (*domain.WorkflowDefinition, error) {
	row, err := r.queries.FindWorkflowDefinition(ctx, generated.FindWorkflowDefinitionParams{
		Process:    process,
		SubProcess: subProcess,
		OrgID:      orgID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWorkflowNotFound
		}

		return nil, err
	}

	return rowToWorkflow(row)
}

// Stored steps are re-validated so a bad row surfaces as missing configuration.
func rowToWorkflow(row generated.WorkflowDefinition) (*domain.WorkflowDefinition, error) {
	var steps []domain.WorkflowStep
	if err := json.Unmarshal(row.Steps, &steps); err != nil {
		return nil, fmt.Errorf("%w: workflow %s steps: %v", domain.ErrMissingConfiguration, row.ID, err)
	}

	def := &domain.WorkflowDefinition{
		ID:         row.ID,
		Name:       row.Name,
		Process:    row.Process,
		SubProcess: row.SubProcess,
		OrgID:      row.OrgID,
		Steps:      steps,
		CreatedAt:  row.CreatedAt.Time,
		UpdatedAt:  row.UpdatedAt.Time,
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	return def, nil
}

// HolidayRepository implements usecase.HolidayRepository.
type HolidayRepository struct {
	queries *generated.Queries
}

// NewHolidayRepository creates a new HolidayRepository.
func NewHolidayRepository(db generated.DBTX) *HolidayRepository {
	return &HolidayRepository{queries: generated.New(db)}
}

// ListBetween returns holidays of orgID, and those shared by all orgs, within
// [from, to].
func (r *HolidayRepository) ListBetween(ctx context.Context, orgID string, from, to time.Time) ([]domain.Holiday, error) {
	rows, err := r.queries.ListHolidaysBetween(ctx, generated.ListHolidaysBetweenParams{
		OrgID: orgID,
		From:  dateToPg(from),
		To:    dateToPg(to),
	})
	if err != nil {
		return nil, err
	}

	holidays := make([]domain.Holiday, 0, len(rows))
	for _, row := range rows {
		holidays = append(holidays, domain.Holiday{
			ID:    row.ID,
			OrgID: row.OrgID,
			Date:  pgToDate(row.Date),
			Name:  row.Name,
		})
	}

	return holidays, nil
}

// EmployeeRepository serves employee records from the employees table. It
// implements usecase.EmployeeDirectory when no external directory is set.
type EmployeeRepository struct {
	queries *generated.Queries
}

// NewEmployeeRepository creates a new EmployeeRepository.
func NewEmployeeRepository(db generated.DBTX) *EmployeeRepository {
	return &EmployeeRepository{queries: generated.New(db)}
}

// GetEmployee retrieves an employee record.
func (r *EmployeeRepository) GetEmployee(ctx context.Context, employeeID string) (*domain.Employee, error) {
	row, err := r.queries.GetEmployee(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEmployeeNotFound
		}

		return nil, err
	}

	employee := &domain.Employee{
		ID:        row.ID,
		OrgID:     row.OrgID,
		ManagerID: row.ManagerID,
	}
	if row.JoinDate.Valid {
		joined := pgToDate(row.JoinDate)
		employee.JoinDate = &joined
	}

	return employee, nil
}

// ConfigWriter upserts configuration rows. It implements seed.Writer.
type ConfigWriter struct {
	queries *generated.Queries
	now     func() time.Time
}

// NewConfigWriter creates a new ConfigWriter.
func NewConfigWriter(db generated.DBTX) *ConfigWriter {
	return &ConfigWriter{queries: generated.New(db), now: time.Now}
}

// PutVariant validates and upserts a leave variant.
func (w *ConfigWriter) PutVariant(ctx context.Context, v *domain.LeaveVariant) error {
	if err := v.Validate(); err != nil {
		return err
	}

	return w.queries.UpsertLeaveVariant(ctx, generated.UpsertLeaveVariantParams{
		ID:                   v.ID,
		OrgID:                v.OrgID,
		LeaveTypeID:          v.LeaveTypeID,
		Name:                 v.Name,
		AnnualEntitlement:    halfDaysToNumeric(v.AnnualEntitlement),
		AccrualPolicy:        string(v.AccrualPolicy),
		AccrualFrequency:     string(v.AccrualFrequency),
		DeductBeforeWorkflow: v.DeductBeforeWorkflow,
		MaxCarryForward:      halfDaysToNumeric(v.MaxCarryForward),
		UpdatedAt:            timeToPgTimestamptz(w.now()),
	})
}

// PutWorkflow validates and upserts a workflow definition.
func (w *ConfigWriter) PutWorkflow(ctx context.Context, def *domain.WorkflowDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	steps, err := json.Marshal(def.Steps)
	if err != nil {
		return fmt.Errorf("marshal workflow steps: %w", err)
	}

	return w.queries.UpsertWorkflowDefinition(ctx, generated.UpsertWorkflowDefinitionParams{
		ID:         def.ID,
		Name:       def.Name,
		Process:    def.Process,
		SubProcess: def.SubProcess,
		OrgID:      def.OrgID,
		Steps:      steps,
		UpdatedAt:  timeToPgTimestamptz(w.now()),
	})
}

// PutHoliday upserts a holiday.
func (w *ConfigWriter) PutHoliday(ctx context.Context, h domain.Holiday) error {
	return w.queries.UpsertHoliday(ctx, generated.UpsertHolidayParams{
		ID:    h.ID,
		OrgID: h.OrgID,
		Date:  dateToPg(h.Date),
		Name:  h.Name,
	})
}

// PutEmployee upserts an employee record.
func (w *ConfigWriter) PutEmployee(ctx context.Context, e *domain.Employee) error {
	return w.queries.UpsertEmployee(ctx, generated.UpsertEmployeeParams{
		ID:        e.ID,
		OrgID:     e.OrgID,
		JoinDate:  optionalDate(e.JoinDate),
		ManagerID: e.ManagerID,
		UpdatedAt: timeToPgTimestamptz(w.now()),
	})
}
