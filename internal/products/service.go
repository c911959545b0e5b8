package products

import (
	"context"
	"fmt"
	"time"

	"github.com/assetdesk/assetdesk-backend/internal/inventory"
	"github.com/assetdesk/assetdesk-backend/internal/refs"
	"github.com/assetdesk/assetdesk-backend/pkg/db"
	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type unitIntake interface {
	AddUnitsTx(ctx context.Context, tx *gorm.DB, input inventory.AddUnitsInput) ([]models.InventoryUnit, error)
}

// Service owns product templates. Creating a product can seed its first
// units in the same transaction; deleting cascades to the units.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*View, error)
	Get(ctx context.Context, id uuid.UUID) (*View, error)
	List(ctx context.Context, query ListQuery) ([]View, int64, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*View, error)
	Delete(ctx context.Context, id uuid.UUID) error
	LowStock(ctx context.Context) ([]LowStockRow, error)
}

// CreateInput captures a new product template plus optional initial stock.
type CreateInput struct {
	Name             string
	Model            string
	CategoryID       uuid.UUID
	BranchID         uuid.UUID
	DepartmentID     *uuid.UUID
	WarrantyMonths   *int
	ComplianceStatus bool
	MinStockLevel    int
	Description      *string

	InitialStock  int
	SerialNumbers []string
	PurchaseDate  *time.Time
	PurchasePrice *decimal.Decimal
	Location      *string
	ActingUserID  *uuid.UUID
}

// UpdateInput carries the editable product fields. Nil means unchanged.
type UpdateInput struct {
	Name             *string
	Model            *string
	CategoryID       *uuid.UUID
	BranchID         *uuid.UUID
	DepartmentID     *uuid.UUID
	ClearDepartment  bool
	WarrantyMonths   *int
	ComplianceStatus *bool
	MinStockLevel    *int
	Description      *string
}

type service struct {
	repo    Repository
	units   unitIntake
	checker refs.Checker
	tx      txRunner
}

// NewService wires the product service.
func NewService(repo Repository, units unitIntake, checker refs.Checker, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if units == nil {
		return nil, fmt.Errorf("unit intake required")
	}
	if checker == nil {
		return nil, fmt.Errorf("reference checker required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, units: units, checker: checker, tx: tx}, nil
}

// Create validates references, inserts the template, and seeds initial units
// with their IN log entries in one transaction.
func (s *service) Create(ctx context.Context, input CreateInput) (*View, error) {
	if input.Name == "" || input.Model == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and model are required")
	}
	if input.CategoryID == uuid.Nil || input.BranchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category and branch are required")
	}
	if input.InitialStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial stock cannot be negative")
	}
	if input.MinStockLevel < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum stock level cannot be negative")
	}

	var created *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		checker := s.checker.WithTx(tx)
		if _, err := checker.Category(ctx, input.CategoryID); err != nil {
			return err
		}
		if _, err := checker.Branch(ctx, input.BranchID); err != nil {
			return err
		}
		if input.DepartmentID != nil {
			if _, err := checker.Department(ctx, *input.DepartmentID); err != nil {
				return err
			}
		}

		product := &models.Product{
			ID:               uuid.New(),
			Name:             input.Name,
			Model:            input.Model,
			CategoryID:       input.CategoryID,
			BranchID:         input.BranchID,
			DepartmentID:     input.DepartmentID,
			WarrantyMonths:   input.WarrantyMonths,
			ComplianceStatus: input.ComplianceStatus,
			MinStockLevel:    input.MinStockLevel,
			Description:      input.Description,
		}
		if err := s.repo.WithTx(tx).Create(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert product")
		}

		if input.InitialStock > 0 {
			purchaseDate := time.Now().UTC()
			if input.PurchaseDate != nil {
				purchaseDate = *input.PurchaseDate
			}
			_, err := s.units.AddUnitsTx(ctx, tx, inventory.AddUnitsInput{
				ProductID:     product.ID,
				Quantity:      input.InitialStock,
				SerialNumbers: input.SerialNumbers,
				PurchaseDate:  purchaseDate,
				PurchasePrice: input.PurchasePrice,
				Location:      input.Location,
				ActingUserID:  input.ActingUserID,
				Initial:       true,
			})
			if err != nil {
				return err
			}
		}

		created = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, created.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	stocks, err := s.repo.StockInfoByProduct(ctx, []uuid.UUID{product.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock info")
	}
	view := NewView(*product, stocks[product.ID])
	return &view, nil
}

func (s *service) List(ctx context.Context, query ListQuery) ([]View, int64, error) {
	switch query.StockStatus {
	case "", "out", "low", "available":
	default:
		return nil, 0, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid stock status filter %q", query.StockStatus)
	}

	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	stocks, err := s.repo.StockInfoByProduct(ctx, ids)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock info")
	}

	views := make([]View, 0, len(rows))
	for _, row := range rows {
		views = append(views, NewView(row, stocks[row.ID]))
	}
	return views, total, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*View, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.MinStockLevel != nil && *input.MinStockLevel < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum stock level cannot be negative")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		checker := s.checker.WithTx(tx)

		product, err := repo.FindByID(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		if input.CategoryID != nil {
			if _, err := checker.Category(ctx, *input.CategoryID); err != nil {
				return err
			}
			product.CategoryID = *input.CategoryID
		}
		if input.BranchID != nil {
			if _, err := checker.Branch(ctx, *input.BranchID); err != nil {
				return err
			}
			product.BranchID = *input.BranchID
		}
		switch {
		case input.ClearDepartment:
			product.DepartmentID = nil
		case input.DepartmentID != nil:
			if _, err := checker.Department(ctx, *input.DepartmentID); err != nil {
				return err
			}
			product.DepartmentID = input.DepartmentID
		}

		if input.Name != nil {
			product.Name = *input.Name
		}
		if input.Model != nil {
			product.Model = *input.Model
		}
		if input.WarrantyMonths != nil {
			product.WarrantyMonths = input.WarrantyMonths
		}
		if input.ComplianceStatus != nil {
			product.ComplianceStatus = *input.ComplianceStatus
		}
		if input.MinStockLevel != nil {
			product.MinStockLevel = *input.MinStockLevel
		}
		if input.Description != nil {
			product.Description = input.Description
		}

		// Preloaded relations may be stale after the ID swaps; drop them so
		// Save does not write the old rows back.
		product.Category = nil
		product.Branch = nil
		product.Department = nil

		if err := repo.Save(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete soft-deletes the product and all of its units. Products with open
// assignments cannot be removed.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindByID(ctx, id); err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		open, err := repo.OpenAssignmentCount(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count open assignments")
		}
		if open > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "cannot delete product with active assignments")
		}

		if err := repo.SoftDeleteUnits(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete inventory units")
		}
		if err := repo.SoftDelete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
		}
		return nil
	})
}

func (s *service) LowStock(ctx context.Context) ([]LowStockRow, error) {
	return s.repo.LowStock(ctx)
}
