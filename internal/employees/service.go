package employees

import (
	"context"
	"fmt"
	"time"

	"github.com/assetdesk/assetdesk-backend/internal/refs"
	"github.com/assetdesk/assetdesk-backend/pkg/db"
	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// BranchRef is the branch slice of an employee view.
type BranchRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// View is the API shape of an employee.
type View struct {
	ID                uuid.UUID  `json:"id"`
	EmpID             string     `json:"empId"`
	Name              string     `json:"name"`
	Email             *string    `json:"email"`
	Position          *string    `json:"position"`
	Department        *string    `json:"department"`
	Branch            *BranchRef `json:"branch,omitempty"`
	ActiveAssignments int64      `json:"activeAssignments"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func newView(e models.Employee, activeAssignments int64) View {
	view := View{
		ID:                e.ID,
		EmpID:             e.EmpID,
		Name:              e.Name,
		Email:             e.Email,
		Position:          e.Position,
		Department:        e.Department,
		ActiveAssignments: activeAssignments,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
	if e.Branch != nil {
		view.Branch = &BranchRef{ID: e.Branch.ID, Name: e.Branch.Name}
	}
	return view
}

// CreateInput captures a new employee record.
type CreateInput struct {
	EmpID      string
	Name       string
	Email      *string
	Position   *string
	Department *string
	BranchID   uuid.UUID
}

// UpdateInput carries the editable employee fields. Nil means unchanged.
type UpdateInput struct {
	EmpID      *string
	Name       *string
	Email      *string
	Position   *string
	Department *string
	BranchID   *uuid.UUID
}

// Service owns employee records.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*View, error)
	Get(ctx context.Context, id uuid.UUID) (*View, error)
	List(ctx context.Context, query ListQuery) ([]View, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*View, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo    Repository
	checker refs.Checker
	tx      txRunner
}

// NewService wires the employee service.
func NewService(repo Repository, checker refs.Checker, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("employee repository required")
	}
	if checker == nil {
		return nil, fmt.Errorf("reference checker required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, checker: checker, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*View, error) {
	if input.EmpID == "" || input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee id and name are required")
	}
	if input.BranchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}

	var created *models.Employee
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.checker.WithTx(tx).Branch(ctx, input.BranchID); err != nil {
			return err
		}

		employee := &models.Employee{
			ID:         uuid.New(),
			EmpID:      input.EmpID,
			Name:       input.Name,
			Email:      input.Email,
			Position:   input.Position,
			Department: input.Department,
			BranchID:   input.BranchID,
		}
		if err := s.repo.WithTx(tx).Create(ctx, employee); err != nil {
			if db.IsUniqueViolation(err, "uq_employees_emp_id") {
				return pkgerrors.New(pkgerrors.CodeConflict, "employee id already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert employee")
		}
		created = employee
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, created.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee id required")
	}
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load employee")
	}

	open, err := s.repo.OpenAssignmentCount(ctx, employee.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open assignments")
	}
	view := newView(*employee, open)
	return &view, nil
}

func (s *service) List(ctx context.Context, query ListQuery) ([]View, error) {
	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	counts, err := s.repo.OpenAssignmentCounts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open assignments")
	}

	views := make([]View, 0, len(rows))
	for _, row := range rows {
		views = append(views, newView(row, counts[row.ID]))
	}
	return views, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*View, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee id required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		employee, err := repo.FindByID(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load employee")
		}

		if input.BranchID != nil {
			if _, err := s.checker.WithTx(tx).Branch(ctx, *input.BranchID); err != nil {
				return err
			}
			employee.BranchID = *input.BranchID
		}
		if input.EmpID != nil {
			if *input.EmpID == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "employee id cannot be empty")
			}
			employee.EmpID = *input.EmpID
		}
		if input.Name != nil {
			if *input.Name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
			}
			employee.Name = *input.Name
		}
		if input.Email != nil {
			employee.Email = input.Email
		}
		if input.Position != nil {
			employee.Position = input.Position
		}
		if input.Department != nil {
			employee.Department = input.Department
		}

		employee.Branch = nil
		if err := repo.Save(ctx, employee); err != nil {
			if db.IsUniqueViolation(err, "uq_employees_emp_id") {
				return pkgerrors.New(pkgerrors.CodeConflict, "employee id already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update employee")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete soft-deletes an employee. Employees holding equipment cannot be
// removed until everything is returned.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "employee id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindByID(ctx, id); err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load employee")
		}

		open, err := repo.OpenAssignmentCount(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open assignments")
		}
		if open > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "cannot delete employee with active assignments")
		}

		if err := repo.SoftDelete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete employee")
		}
		return nil
	})
}
