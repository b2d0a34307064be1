package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/iho/leaveledger/internal/domain"
	"github.com/iho/leaveledger/internal/usecase"
)

// RequestRepository implements usecase.RequestRepository.
type RequestRepository struct {
	store *Store
}

// NewRequestRepository creates a new RequestRepository.
func NewRequestRepository(store *Store) *RequestRepository {
	return &RequestRepository{store: store}
}

// Create stores a new request.
func (r *RequestRepository) Create(_ context.Context, tx usecase.Transaction, req *domain.Request) error {
	st, err := working(tx)
	if err != nil {
		return err
	}

	stored := copyRequest(req)
	stored.Version = 1
	st.requests[req.ID] = stored
	req.Version = 1

	return nil
}

// GetByID returns a committed request.
func (r *RequestRepository) GetByID(_ context.Context, id string) (*domain.Request, error) {
	var req *domain.Request
	r.store.read(func(st *state) {
		if stored, ok := st.requests[id]; ok {
			req = copyRequest(stored)
		}
	})
	if req == nil {
		return nil, domain.ErrRequestNotFound
	}
	return req, nil
}

// GetByIDForUpdate returns the request as seen by tx.
func (r *RequestRepository) GetByIDForUpdate(_ context.Context, tx usecase.Transaction, id string) (*domain.Request, error) {
	st, err := working(tx)
	if err != nil {
		return nil, err
	}

	stored, ok := st.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	return copyRequest(stored), nil
}

// Update stores req and bumps its version.
func (r *RequestRepository) Update(_ context.Context, tx usecase.Transaction, req *domain.Request) error {
	st, err := working(tx)
	if err != nil {
		return err
	}

	if _, ok := st.requests[req.ID]; !ok {
		return domain.ErrRequestNotFound
	}

	req.Version++
	st.requests[req.ID] = copyRequest(req)

	return nil
}

// List returns matching requests, newest first.
func (r *RequestRepository) List(_ context.Context, filter usecase.RequestFilter) ([]*domain.Request, error) {
	var reqs []*domain.Request
	r.store.read(func(st *state) {
		for _, req := range st.requests {
			if matches(req, filter) {
				reqs = append(reqs, copyRequest(req))
			}
		}
	})

	slices.SortFunc(reqs, func(a, b *domain.Request) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID, b.ID))
	})

	if filter.Offset >= len(reqs) {
		return []*domain.Request{}, nil
	}
	reqs = reqs[filter.Offset:]
	if filter.Limit > 0 && len(reqs) > filter.Limit {
		reqs = reqs[:filter.Limit]
	}

	return reqs, nil
}

// ListDueForAutoApproval returns due requests, earliest schedule first.
func (r *RequestRepository) ListDueForAutoApproval(_ context.Context, now time.Time, limit int) ([]string, error) {
	var due []*domain.Request
	r.store.read(func(st *state) {
		for _, req := range st.requests {
			if req.WorkflowStatus != domain.WorkflowStatusInProgress || req.ScheduledAutoApprovalAt == nil {
				continue
			}
			if req.ScheduledAutoApprovalAt.After(now) {
				continue
			}
			due = append(due, req)
		}
	})

	slices.SortFunc(due, func(a, b *domain.Request) int {
		return cmp.Or(a.ScheduledAutoApprovalAt.Compare(*b.ScheduledAutoApprovalAt), cmp.Compare(a.ID, b.ID))
	})

	ids := make([]string, 0, min(len(due), limit))
	for _, req := range due {
		if len(ids) == limit {
			break
		}
		ids = append(ids, req.ID)
	}

	return ids, nil
}

func matches(req *domain.Request, filter usecase.RequestFilter) bool {
	switch {
	case filter.EmployeeID != "" && req.EmployeeID != filter.EmployeeID:
		return false
	case filter.OrgID != "" && req.OrgID != filter.OrgID:
		return false
	case filter.Status != "" && req.Status != filter.Status:
		return false
	case filter.Kind != "" && req.Kind != filter.Kind:
		return false
	}
	return true
}
