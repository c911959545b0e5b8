package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/assetdesk/assetdesk-backend/internal/refs"
	"github.com/assetdesk/assetdesk-backend/internal/stock"
	"github.com/assetdesk/assetdesk-backend/pkg/db"
	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaxUnitsPerRequest caps how many units a single add call may create.
const MaxUnitsPerRequest = 100

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns inventory unit lifecycle: intake, status transitions, and
// permanent removal. Every stock movement it performs lands in the
// transaction log.
type Service interface {
	AddUnits(ctx context.Context, input AddUnitsInput) ([]models.InventoryUnit, error)
	AddUnitsTx(ctx context.Context, tx *gorm.DB, input AddUnitsInput) ([]models.InventoryUnit, error)
	GetUnit(ctx context.Context, id uuid.UUID) (*models.InventoryUnit, error)
	ListUnits(ctx context.Context, query ListQuery) ([]models.InventoryUnit, int64, error)
	UpdateUnit(ctx context.Context, id uuid.UUID, input UpdateUnitInput) (*models.InventoryUnit, error)
	RetireUnit(ctx context.Context, id uuid.UUID, input RetireInput) (*models.InventoryUnit, error)
	DeleteUnit(ctx context.Context, id uuid.UUID) error
	DeleteUnits(ctx context.Context, ids []uuid.UUID) error
	StatusCounts(ctx context.Context, productID uuid.UUID) (StatusCounts, error)
	PublicUnitInfo(ctx context.Context, id uuid.UUID) (*PublicUnitView, error)
	SelectForAssignment(ctx context.Context, tx *gorm.DB, productID uuid.UUID, unitID *uuid.UUID) (*models.InventoryUnit, error)
	MarkAssigned(ctx context.Context, tx *gorm.DB, unit *models.InventoryUnit) error
	MarkReturned(ctx context.Context, tx *gorm.DB, unitID uuid.UUID, disposition, condition string) (*models.InventoryUnit, error)
}

// AddUnitsInput captures a batch intake of units for one product.
type AddUnitsInput struct {
	ProductID     uuid.UUID
	Quantity      int
	SerialNumbers []string
	Condition     string
	PurchaseDate  time.Time
	PurchasePrice *decimal.Decimal
	Location      *string
	Notes         *string
	ActingUserID  *uuid.UUID
	// Initial marks intake that happens while the product itself is being
	// created, which changes the log reference prefix.
	Initial bool
}

// UpdateUnitInput carries the editable fields of a unit. Nil means unchanged.
type UpdateUnitInput struct {
	SerialNumber  *string
	Status        *enums.UnitStatus
	Condition     *string
	PurchaseDate  *time.Time
	PurchasePrice *decimal.Decimal
	Location      *string
	Notes         *string
	Reason        string
	ActingUserID  *uuid.UUID
}

// RetireInput carries the audit fields for taking a unit out of service.
type RetireInput struct {
	Reason       string
	ActingUserID *uuid.UUID
}

type service struct {
	repo    Repository
	stock   stock.Service
	checker refs.Checker
	tx      txRunner
}

// NewService wires the inventory service.
func NewService(repo Repository, stockSvc stock.Service, checker refs.Checker, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
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
	return &service{repo: repo, stock: stockSvc, checker: checker, tx: tx}, nil
}

// AddUnits creates units in their own transaction.
func (s *service) AddUnits(ctx context.Context, input AddUnitsInput) ([]models.InventoryUnit, error) {
	var created []models.InventoryUnit
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		units, err := s.AddUnitsTx(ctx, tx, input)
		if err != nil {
			return err
		}
		created = units
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AddUnitsTx creates units inside the caller's transaction. Each unit gets
// an IN log entry; the warranty expiry is derived from the product.
func (s *service) AddUnitsTx(ctx context.Context, tx *gorm.DB, input AddUnitsInput) ([]models.InventoryUnit, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if input.Quantity > MaxUnitsPerRequest {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "quantity exceeds the limit of %d units per request", MaxUnitsPerRequest)
	}
	if len(input.SerialNumbers) > input.Quantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "more serial numbers than units")
	}
	if input.PurchaseDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase date required")
	}

	product, err := s.checker.WithTx(tx).Product(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	condition := input.Condition
	if condition == "" {
		condition = enums.UnitConditionNew
	}
	warranty := product.WarrantyExpiryFrom(input.PurchaseDate)

	units := make([]*models.InventoryUnit, 0, input.Quantity)
	for i := 0; i < input.Quantity; i++ {
		unit := &models.InventoryUnit{
			ID:            uuid.New(),
			ProductID:     product.ID,
			Status:        enums.UnitStatusAvailable,
			Condition:     condition,
			PurchaseDate:  input.PurchaseDate,
			PurchasePrice: input.PurchasePrice,
			WarrantyExp:   warranty,
			Location:      input.Location,
			Notes:         input.Notes,
		}
		if i < len(input.SerialNumbers) && input.SerialNumbers[i] != "" {
			serial := input.SerialNumbers[i]
			unit.SerialNumber = &serial
		}
		units = append(units, unit)
	}

	repo := s.repo.WithTx(tx)
	if err := repo.CreateUnits(ctx, units); err != nil {
		if db.IsUniqueViolation(err, "uq_inventory_units_serial") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "serial number already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert inventory units")
	}

	now := time.Now().UTC()
	created := make([]models.InventoryUnit, 0, len(units))
	for i, unit := range units {
		reference := stock.AdditionReference(now, i+1)
		reason := "Stock added"
		if input.Initial {
			reference = stock.InitialReference(product.ID, i+1)
			reason = "Initial stock"
		}
		if _, err := s.stock.Record(ctx, tx, stock.RecordInput{
			InventoryUnitID: unit.ID,
			Type:            enums.StockTransactionTypeIn,
			Reason:          reason,
			Reference:       reference,
			ActingUserID:    input.ActingUserID,
		}); err != nil {
			return nil, err
		}
		created = append(created, *unit)
	}
	return created, nil
}

func (s *service) GetUnit(ctx context.Context, id uuid.UUID) (*models.InventoryUnit, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit id required")
	}
	unit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory unit not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory unit")
	}
	return unit, nil
}

func (s *service) ListUnits(ctx context.Context, query ListQuery) ([]models.InventoryUnit, int64, error) {
	if query.Status != nil && !query.Status.IsValid() {
		return nil, 0, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid unit status %q", *query.Status)
	}
	return s.repo.List(ctx, query)
}

// UpdateUnit edits a unit. A manual status change is refused while the unit
// has an open assignment and is logged as an ADJUSTMENT entry.
func (s *service) UpdateUnit(ctx context.Context, id uuid.UUID, input UpdateUnitInput) (*models.InventoryUnit, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit id required")
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid unit status %q", *input.Status)
		}
		if *input.Status == enums.UnitStatusAssigned {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "status ASSIGNED can only be set by creating an assignment")
		}
	}

	var updated *models.InventoryUnit
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		unit, err := repo.FindByID(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inventory unit not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory unit")
		}

		statusChanged := input.Status != nil && *input.Status != unit.Status
		if statusChanged {
			open, err := repo.HasOpenAssignment(ctx, unit.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check open assignment")
			}
			if open {
				return pkgerrors.New(pkgerrors.CodeConflict, "unit has an open assignment")
			}
		}

		previous := unit.Status
		if input.Status != nil {
			unit.Status = *input.Status
		}
		if input.SerialNumber != nil {
			unit.SerialNumber = input.SerialNumber
		}
		if input.Condition != nil {
			unit.Condition = *input.Condition
		}
		if input.PurchaseDate != nil {
			unit.PurchaseDate = *input.PurchaseDate
			unit.WarrantyExp = nil
			if unit.Product != nil {
				unit.WarrantyExp = unit.Product.WarrantyExpiryFrom(*input.PurchaseDate)
			}
		}
		if input.PurchasePrice != nil {
			unit.PurchasePrice = input.PurchasePrice
		}
		if input.Location != nil {
			unit.Location = input.Location
		}
		if input.Notes != nil {
			unit.Notes = input.Notes
		}

		if err := repo.Save(ctx, unit); err != nil {
			if db.IsUniqueViolation(err, "uq_inventory_units_serial") {
				return pkgerrors.New(pkgerrors.CodeConflict, "serial number already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inventory unit")
		}

		if statusChanged {
			reason := input.Reason
			if reason == "" {
				reason = fmt.Sprintf("Status changed %s to %s", previous, unit.Status)
			}
			if _, err := s.stock.Record(ctx, tx, stock.RecordInput{
				InventoryUnitID: unit.ID,
				Type:            enums.StockTransactionTypeAdjustment,
				Reason:          reason,
				Reference:       stock.UpdateReference(time.Now().UTC()),
				ActingUserID:    input.ActingUserID,
			}); err != nil {
				return err
			}
		}

		updated = unit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RetireUnit takes a unit permanently out of service while keeping its rows.
func (s *service) RetireUnit(ctx context.Context, id uuid.UUID, input RetireInput) (*models.InventoryUnit, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit id required")
	}

	var retired *models.InventoryUnit
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		unit, err := repo.FindByID(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inventory unit not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory unit")
		}
		if unit.Status == enums.UnitStatusRetired {
			return pkgerrors.New(pkgerrors.CodeConflict, "unit is already retired")
		}

		open, err := repo.HasOpenAssignment(ctx, unit.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check open assignment")
		}
		if open {
			return pkgerrors.New(pkgerrors.CodeConflict, "unit has an open assignment")
		}

		unit.Status = enums.UnitStatusRetired
		if err := repo.Save(ctx, unit); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retire inventory unit")
		}

		reason := input.Reason
		if reason == "" {
			reason = "Unit retired"
		}
		if _, err := s.stock.Record(ctx, tx, stock.RecordInput{
			InventoryUnitID: unit.ID,
			Type:            enums.StockTransactionTypeRetired,
			Reason:          reason,
			Reference:       stock.UpdateReference(time.Now().UTC()),
			ActingUserID:    input.ActingUserID,
		}); err != nil {
			return err
		}

		retired = unit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return retired, nil
}

// DeleteUnit permanently removes a unit together with its assignment history
// and stock log. There is no undo.
func (s *service) DeleteUnit(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		unit, err := repo.FindByID(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inventory unit not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory unit")
		}

		open, err := repo.HasOpenAssignment(ctx, unit.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check open assignment")
		}
		if open {
			return pkgerrors.New(pkgerrors.CodeConflict, "unit has an open assignment")
		}

		if err := s.stock.PurgeByUnit(ctx, tx, unit.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge stock log")
		}
		if err := repo.PurgeAssignmentsByUnit(ctx, unit.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge assignments")
		}
		if err := repo.HardDelete(ctx, unit.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete inventory unit")
		}
		return nil
	})
}

// DeleteUnits permanently removes a batch of units with their history in one
// transaction. The batch is all or nothing: a single missing or openly
// assigned unit fails the whole call and deletes nothing.
func (s *service) DeleteUnits(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit ids required")
	}
	for _, id := range ids {
		if id == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "unit id required")
		}
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		units, err := repo.FindByIDs(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory units")
		}
		if len(units) != len(ids) {
			found := make(map[uuid.UUID]bool, len(units))
			for _, unit := range units {
				found[unit.ID] = true
			}
			var missing []string
			for _, id := range ids {
				if !found[id] {
					missing = append(missing, id.String())
				}
			}
			return pkgerrors.Newf(pkgerrors.CodeNotFound, "inventory units not found: %s", strings.Join(missing, ", "))
		}

		open, err := repo.UnitsWithOpenAssignments(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check open assignments")
		}
		if len(open) > 0 {
			return pkgerrors.Newf(pkgerrors.CodeConflict, "%d of the units have an open assignment", len(open))
		}

		if err := s.stock.PurgeByUnits(ctx, tx, ids); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge stock log")
		}
		if err := repo.PurgeAssignmentsByUnits(ctx, ids); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge assignments")
		}
		if err := repo.HardDeleteMany(ctx, ids); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete inventory units")
		}
		return nil
	})
}

func (s *service) StatusCounts(ctx context.Context, productID uuid.UUID) (StatusCounts, error) {
	if _, err := s.checker.Product(ctx, productID); err != nil {
		return StatusCounts{}, err
	}
	return s.repo.StatusCounts(ctx, productID)
}

// PublicUnitInfo builds the unauthenticated view of a unit: the unit itself,
// its product, and whoever currently holds it.
func (s *service) PublicUnitInfo(ctx context.Context, id uuid.UUID) (*PublicUnitView, error) {
	unit, err := s.GetUnit(ctx, id)
	if err != nil {
		return nil, err
	}
	open, err := s.repo.OpenAssignment(ctx, id)
	if err != nil && !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load open assignment")
	}
	view := NewPublicUnitView(*unit, open)
	return &view, nil
}

// SelectForAssignment picks the unit an assignment should use. An explicit
// unit must still be AVAILABLE; without one the oldest available unit wins.
func (s *service) SelectForAssignment(ctx context.Context, tx *gorm.DB, productID uuid.UUID, unitID *uuid.UUID) (*models.InventoryUnit, error) {
	repo := s.repo.WithTx(tx)

	if unitID != nil {
		unit, err := repo.FindByID(ctx, *unitID)
		if err != nil {
			if db.IsNotFound(err) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory unit not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory unit")
		}
		if unit.ProductID != productID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit does not belong to the product")
		}
		switch unit.Status {
		case enums.UnitStatusAvailable:
		case enums.UnitStatusAssigned:
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "unit is already assigned")
		default:
			return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "unit is not available for assignment (status %s)", unit.Status)
		}
		return unit, nil
	}

	unit, err := repo.OldestAvailable(ctx, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "no available units in stock")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "select available unit")
	}
	return unit, nil
}

// MarkAssigned flips the unit to ASSIGNED inside the caller's transaction.
func (s *service) MarkAssigned(ctx context.Context, tx *gorm.DB, unit *models.InventoryUnit) error {
	unit.Status = enums.UnitStatusAssigned
	if err := s.repo.WithTx(tx).Save(ctx, unit); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark unit assigned")
	}
	return nil
}

// MarkReturned resolves the unit's post-return status from the disposition
// and persists it inside the caller's transaction. The condition only
// overwrites the unit's own condition when the caller reported one.
func (s *service) MarkReturned(ctx context.Context, tx *gorm.DB, unitID uuid.UUID, disposition, condition string) (*models.InventoryUnit, error) {
	repo := s.repo.WithTx(tx)

	unit, err := repo.FindByID(ctx, unitID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory unit not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory unit")
	}

	unit.Status = enums.ReturnDisposition(disposition)
	if condition != "" {
		unit.Condition = condition
	}
	if err := repo.Save(ctx, unit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark unit returned")
	}
	return unit, nil
}
