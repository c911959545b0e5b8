package assignments

import (
	"context"
	"fmt"
	"time"

	"github.com/assetdesk/assetdesk-backend/internal/refs"
	"github.com/assetdesk/assetdesk-backend/internal/stock"
	"github.com/assetdesk/assetdesk-backend/pkg/db"
	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type unitLedger interface {
	SelectForAssignment(ctx context.Context, tx *gorm.DB, productID uuid.UUID, unitID *uuid.UUID) (*models.InventoryUnit, error)
	MarkAssigned(ctx context.Context, tx *gorm.DB, unit *models.InventoryUnit) error
	MarkReturned(ctx context.Context, tx *gorm.DB, unitID uuid.UUID, disposition, condition string) (*models.InventoryUnit, error)
}

// Service orchestrates the assignment lifecycle. Assign and Return run as
// single transactions covering the assignment row, the unit status, and the
// stock log, so the three can never drift apart.
type Service interface {
	Assign(ctx context.Context, input AssignInput) (*View, error)
	Return(ctx context.Context, id uuid.UUID, input ReturnInput) (*View, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*View, error)
	Get(ctx context.Context, id uuid.UUID) (*View, error)
	ListActive(ctx context.Context, query ActiveQuery) ([]View, int64, error)
	ListHistory(ctx context.Context, query HistoryQuery) ([]View, int64, error)
	ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]View, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]View, error)
	Analytics(ctx context.Context, query AnalyticsQuery) (*Analytics, error)
}

// AssignInput captures a request to hand a unit to an employee. A nil
// InventoryUnitID means the oldest available unit of the product is used.
type AssignInput struct {
	ProductID        uuid.UUID
	InventoryUnitID  *uuid.UUID
	EmployeeID       uuid.UUID
	AssignedByID     uuid.UUID
	PCName           *string
	ExpectedReturnAt *time.Time
	Notes            *string
}

// ReturnInput captures a unit coming back. InventoryStatus decides where the
// unit lands (DAMAGED, MAINTENANCE, anything else means AVAILABLE);
// Condition is the free-form state the employee reported.
type ReturnInput struct {
	InventoryStatus string
	Condition       string
	Notes           *string
	ActingUserID    *uuid.UUID
}

// UpdateInput carries the editable fields of an open assignment.
type UpdateInput struct {
	PCName           *string
	ExpectedReturnAt *time.Time
	Notes            *string
}

type service struct {
	repo    Repository
	units   unitLedger
	stock   stock.Service
	checker refs.Checker
	tx      txRunner
	now     func() time.Time
}

// NewService wires the assignment service.
func NewService(repo Repository, units unitLedger, stockSvc stock.Service, checker refs.Checker, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("assignment repository required")
	}
	if units == nil {
		return nil, fmt.Errorf("unit ledger required")
	}
	if stockSvc == nil {
		return nil, fmt.Errorf("stock service required")
	}
	if checker == nil {
		return nil, fmt.Errorf("reference checker required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{
		repo:    repo,
		units:   units,
		stock:   stockSvc,
		checker: checker,
		tx:      tx,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Assign hands a unit to an employee. The unit flip, the assignment row, and
// the OUT log entry commit together or not at all.
func (s *service) Assign(ctx context.Context, input AssignInput) (*View, error) {
	if input.AssignedByID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "acting user required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.EmployeeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee id required")
	}
	now := s.now()
	if input.ExpectedReturnAt != nil && input.ExpectedReturnAt.Before(now) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expected return date is in the past")
	}

	var created *models.Assignment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		checker := s.checker.WithTx(tx)
		if _, err := checker.Product(ctx, input.ProductID); err != nil {
			return err
		}
		employee, err := checker.Employee(ctx, input.EmployeeID)
		if err != nil {
			return err
		}
		if _, err := checker.User(ctx, input.AssignedByID); err != nil {
			return err
		}

		unit, err := s.units.SelectForAssignment(ctx, tx, input.ProductID, input.InventoryUnitID)
		if err != nil {
			return err
		}
		if err := s.units.MarkAssigned(ctx, tx, unit); err != nil {
			return err
		}

		assignment := &models.Assignment{
			ID:              uuid.New(),
			ProductID:       input.ProductID,
			InventoryUnitID: unit.ID,
			EmployeeID:      input.EmployeeID,
			AssignedByID:    input.AssignedByID,
			PCName:          input.PCName,
			Status:          enums.AssignmentStatusAssigned,
			AssignedAt:      now,
			ExpectedReturn:  input.ExpectedReturnAt,
			Notes:           input.Notes,
		}
		if err := s.repo.WithTx(tx).Create(ctx, assignment); err != nil {
			if db.IsUniqueViolation(err, "uq_assignments_open_unit") {
				return pkgerrors.New(pkgerrors.CodeConflict, "unit is already assigned")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert assignment")
		}

		actor := input.AssignedByID
		if _, err := s.stock.Record(ctx, tx, stock.RecordInput{
			InventoryUnitID: unit.ID,
			Type:            enums.StockTransactionTypeOut,
			Reason:          fmt.Sprintf("Assigned to %s", employee.Name),
			Reference:       stock.AssignmentReference(assignment.ID),
			ActingUserID:    &actor,
		}); err != nil {
			return err
		}

		created = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, created.ID)
}

// Return closes an assignment. The unit's next status follows the reported
// disposition; returning twice is a conflict.
func (s *service) Return(ctx context.Context, id uuid.UUID, input ReturnInput) (*View, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		assignment, err := repo.FindByID(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
		}
		if !assignment.Open() {
			return pkgerrors.New(pkgerrors.CodeConflict, "assignment has already been returned")
		}

		now := s.now()
		assignment.ReturnedAt = &now
		assignment.Status = enums.AssignmentStatusReturned
		if input.Condition != "" {
			condition := input.Condition
			assignment.ReturnCondition = &condition
		}
		if input.Notes != nil {
			assignment.Notes = input.Notes
		}
		if err := repo.Save(ctx, assignment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close assignment")
		}

		if _, err := s.units.MarkReturned(ctx, tx, assignment.InventoryUnitID, input.InventoryStatus, input.Condition); err != nil {
			return err
		}

		disposition := enums.ReturnDisposition(input.InventoryStatus)
		reason := fmt.Sprintf("Returned - Status: %s", disposition)
		if assignment.Employee != nil {
			reason = fmt.Sprintf("Returned by %s - Status: %s", assignment.Employee.Name, disposition)
		}
		if _, err := s.stock.Record(ctx, tx, stock.RecordInput{
			InventoryUnitID: assignment.InventoryUnitID,
			Type:            enums.StockTransactionTypeIn,
			Reason:          reason,
			Reference:       stock.ReturnReference(assignment.ID),
			ActingUserID:    input.ActingUserID,
		}); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Update edits an open assignment's metadata. Closed assignments are frozen.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*View, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	if input.ExpectedReturnAt != nil && input.ExpectedReturnAt.Before(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expected return date is in the past")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		assignment, err := repo.FindByID(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
		}
		if !assignment.Open() {
			return pkgerrors.New(pkgerrors.CodeConflict, "cannot edit a returned assignment")
		}

		if input.PCName != nil {
			assignment.PCName = input.PCName
		}
		if input.ExpectedReturnAt != nil {
			assignment.ExpectedReturn = input.ExpectedReturnAt
		}
		if input.Notes != nil {
			assignment.Notes = input.Notes
		}
		if err := repo.Save(ctx, assignment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update assignment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id required")
	}
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
	}
	view := NewView(*assignment, s.now())
	return &view, nil
}

func (s *service) ListActive(ctx context.Context, query ActiveQuery) ([]View, int64, error) {
	now := s.now()
	if query.Now.IsZero() {
		query.Now = now
	}
	rows, total, err := s.repo.ListActive(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return NewViews(rows, now), total, nil
}

func (s *service) ListHistory(ctx context.Context, query HistoryQuery) ([]View, int64, error) {
	rows, total, err := s.repo.ListHistory(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return NewViews(rows, s.now()), total, nil
}

func (s *service) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]View, error) {
	if _, err := s.checker.Employee(ctx, employeeID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return NewViews(rows, s.now()), nil
}

func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID) ([]View, error) {
	if _, err := s.checker.Product(ctx, productID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return NewViews(rows, s.now()), nil
}

// Analytics computes assignment figures in one read transaction so the
// counts come from a single consistent snapshot. The optional date range
// narrows the total and the rankings by assignedAt; the active and overdue
// counts always describe the present.
func (s *service) Analytics(ctx context.Context, query AnalyticsQuery) (*Analytics, error) {
	if query.From != nil && query.To != nil && query.To.Before(*query.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range end precedes start")
	}

	var result Analytics
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now()

		total, err := repo.CountAll(ctx, query)
		if err != nil {
			return err
		}
		active, err := repo.CountOpen(ctx)
		if err != nil {
			return err
		}
		overdue, err := repo.CountOverdue(ctx, now)
		if err != nil {
			return err
		}
		topEmployees, err := repo.TopEmployees(ctx, 5, query)
		if err != nil {
			return err
		}
		topProducts, err := repo.TopProducts(ctx, 5, query)
		if err != nil {
			return err
		}

		result = Analytics{
			TotalAssignments:   total,
			ActiveAssignments:  active,
			OverdueAssignments: overdue,
			TopEmployees:       topEmployees,
			TopProducts:        topProducts,
		}
		if total > 0 {
			result.ReturnRate = float64(total-active) / float64(total) * 100
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute assignment analytics")
	}
	return &result, nil
}
