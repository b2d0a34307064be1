package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/infrastructure/postgres/generated"
	"github.com/iho/leaveledger/internal/usecase"
)

const auditColumns = `id, org_id, user_id, action, resource_type, resource_id,
	from_status, to_status, comment, request_id, before_state, after_state, created_at`

const insertAuditLog = `INSERT INTO audit_logs (` + auditColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

// AuditRepository stores the audit trail of requests and balances.
type AuditRepository struct {
	db generated.DBTX
}

func NewAuditRepository(db generated.DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

// CreateTx writes log inside tx so it commits with the change it records.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	t, ok := tx.(*Tx)
	if !ok {
		return errForeignTransaction
	}

	if log.ID == "" {
		log.ID = uuid.NewString()
	}

	before, err := stateToJSONB(log.BeforeState)
	if err != nil {
		return fmt.Errorf("encode before state: %w", err)
	}
	after, err := stateToJSONB(log.AfterState)
	if err != nil {
		return fmt.Errorf("encode after state: %w", err)
	}

	_, err = t.PgxTx().Exec(ctx, insertAuditLog,
		log.ID, log.OrgID, log.UserID, log.Action, log.ResourceType, log.ResourceID,
		log.FromStatus, log.ToStatus, log.Comment, log.RequestID,
		before, after, log.CreatedAt,
	)
	return err
}

// List returns entries matching filter, oldest first.
func (r *AuditRepository) List(ctx context.Context, filter *domain.AuditFilter) ([]*domain.AuditLog, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, cond+" $"+strconv.Itoa(len(args)))
	}

	for _, f := range []struct {
		column string
		value  string
	}{
		{"org_id =", filter.OrgID},
		{"user_id =", filter.UserID},
		{"action =", filter.Action},
		{"resource_type =", filter.ResourceType},
		{"resource_id =", filter.ResourceID},
	} {
		if f.value != "" {
			add(f.column, f.value)
		}
	}
	if filter.Since != nil {
		add("created_at >=", *filter.Since)
	}
	if filter.Until != nil {
		add("created_at <", *filter.Until)
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + auditColumns + " FROM audit_logs")
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY created_at, id")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		sb.WriteString(" OFFSET $" + strconv.Itoa(len(args)))
	}

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanAuditLog)
}

// GetByResourceID returns the full trail of one resource.
func (r *AuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	return r.List(ctx, &domain.AuditFilter{ResourceType: resourceType, ResourceID: resourceID})
}

func scanAuditLog(row pgx.CollectableRow) (*domain.AuditLog, error) {
	var (
		log           domain.AuditLog
		before, after []byte
	)
	if err := row.Scan(
		&log.ID, &log.OrgID, &log.UserID, &log.Action, &log.ResourceType, &log.ResourceID,
		&log.FromStatus, &log.ToStatus, &log.Comment, &log.RequestID,
		&before, &after, &log.CreatedAt,
	); err != nil {
		return nil, err
	}

	log.BeforeState = jsonbToState(before)
	log.AfterState = jsonbToState(after)
	return &log, nil
}

// stateToJSONB maps a nil snapshot to SQL NULL.
func stateToJSONB(state domain.JSON) ([]byte, error) {
	if state == nil {
		return nil, nil
	}
	return json.Marshal(state)
}

func jsonbToState(raw []byte) domain.JSON {
	if raw == nil {
		return nil
	}
	var state domain.JSON
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.JSON{"error": "unreadable state"}
	}
	return state
}
