package memory

import (
	"context"
	"slices"
	"time"

	"github.com/iho/leaveledger/internal/domain"
)

// PutVariant validates and stores a leave variant.
func (s *Store) PutVariant(_ context.Context, v *domain.LeaveVariant) error {
	if err := v.Validate(); err != nil {
		return err
	}

	c := *v
	s.configMu.Lock()
	s.variants[v.ID] = &c
	s.configMu.Unlock()

	return nil
}

// PutWorkflow validates and stores a workflow definition.
func (s *Store) PutWorkflow(_ context.Context, def *domain.WorkflowDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	c := *def
	c.Steps = slices.Clone(def.Steps)
	s.configMu.Lock()
	s.workflows[def.ID] = &c
	s.configMu.Unlock()

	return nil
}

// PutHoliday stores an org holiday, replacing one with the same ID.
func (s *Store) PutHoliday(_ context.Context, h domain.Holiday) error {
	h.Date = domain.StartOfDay(h.Date)

	s.configMu.Lock()
	defer s.configMu.Unlock()

	for i := range s.holidays {
		if s.holidays[i].ID == h.ID {
			s.holidays[i] = h
			return nil
		}
	}
	s.holidays = append(s.holidays, h)

	return nil
}

// PutEmployee stores an employee record.
func (s *Store) PutEmployee(_ context.Context, e *domain.Employee) error {
	c := *e
	s.configMu.Lock()
	s.employees[e.ID] = &c
	s.configMu.Unlock()

	return nil
}

// VariantRepository implements usecase.VariantRepository.
type VariantRepository struct {
	store *Store
}

// NewVariantRepository creates a new VariantRepository.
func NewVariantRepository(store *Store) *VariantRepository {
	return &VariantRepository{store: store}
}

// GetByID returns a variant by ID.
func (r *VariantRepository) GetByID(_ context.Context, id string) (*domain.LeaveVariant, error) {
	r.store.configMu.RLock()
	defer r.store.configMu.RUnlock()

	v, ok := r.store.variants[id]
	if !ok {
		return nil, domain.ErrVariantNotFound
	}
	c := *v
	return &c, nil
}

// GetByLeaveType returns the variant configured for leaveTypeID in orgID.
func (r *VariantRepository) GetByLeaveType(_ context.Context, orgID, leaveTypeID string) (*domain.LeaveVariant, error) {
	r.store.configMu.RLock()
	defer r.store.configMu.RUnlock()

	for _, v := range r.store.variants {
		if v.OrgID == orgID && v.LeaveTypeID == leaveTypeID {
			c := *v
			return &c, nil
		}
	}
	return nil, domain.ErrVariantNotFound
}

// WorkflowRepository implements usecase.WorkflowRepository.
type WorkflowRepository struct {
	store *Store
}

// NewWorkflowRepository creates a new WorkflowRepository.
func NewWorkflowRepository(store *Store) *WorkflowRepository {
	return &WorkflowRepository{store: store}
}

// GetByID returns a workflow definition by ID.
func (r *WorkflowRepository) GetByID(_ context.Context, id string) (*domain.WorkflowDefinition, error) {
	r.store.configMu.RLock()
	defer r.store.configMu.RUnlock()

	def, ok := r.store.workflows[id]
	if !ok {
		return nil, domain.ErrWorkflowNotFound
	}
	c := *def
	return &c, nil
}

// Find prefers an org-specific definition over one with an empty org.
func (r *WorkflowRepository) Find(_ context.Context, process, subProcess, orgID string) (*domain.WorkflowDefinition, error) {
	r.store.configMu.RLock()
	defer r.store.configMu.RUnlock()

	var fallback *domain.WorkflowDefinition
	for _, def := range r.store.workflows {
		if def.Process != process || def.SubProcess != subProcess {
			continue
		}
		switch def.OrgID {
		case orgID:
			c := *def
			return &c, nil
		case "":
			fallback = def
		}
	}

	if fallback == nil {
		return nil, domain.ErrWorkflowNotFound
	}
	c := *fallback
	return &c, nil
}

// HolidayRepository implements usecase.HolidayRepository.
type HolidayRepository struct {
	store *Store
}

// NewHolidayRepository creates a new HolidayRepository.
func NewHolidayRepository(store *Store) *HolidayRepository {
	return &HolidayRepository{store: store}
}

// ListBetween returns holidays of orgID, and those shared by all orgs, within
// [from, to].
func (r *HolidayRepository) ListBetween(_ context.Context, orgID string, from, to time.Time) ([]domain.Holiday, error) {
	r.store.configMu.RLock()
	defer r.store.configMu.RUnlock()

	from, to = domain.StartOfDay(from), domain.StartOfDay(to)

	var holidays []domain.Holiday
	for _, h := range r.store.holidays {
		if h.OrgID != orgID && h.OrgID != "" {
			continue
		}
		if h.Date.Before(from) || h.Date.After(to) {
			continue
		}
		holidays = append(holidays, h)
	}
	return holidays, nil
}

// Directory implements usecase.EmployeeDirectory over stored employees.
type Directory struct {
	store *Store
}

// NewDirectory creates a new Directory.
func NewDirectory(store *Store) *Directory {
	return &Directory{store: store}
}

// GetEmployee returns an employee record.
func (d *Directory) GetEmployee(_ context.Context, employeeID string) (*domain.Employee, error) {
	d.store.configMu.RLock()
	defer d.store.configMu.RUnlock()

	e, ok := d.store.employees[employeeID]
	if !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	c := *e
	return &c, nil
}
