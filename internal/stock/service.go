package stock

import (
	"context"
	"fmt"

	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes read and append access to the stock transaction log.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.StockTransaction, error)
	List(ctx context.Context, query ListQuery) ([]models.StockTransaction, int64, error)
	ListByUnit(ctx context.Context, unitID uuid.UUID) ([]models.StockTransaction, error)
	PurgeByUnit(ctx context.Context, tx *gorm.DB, unitID uuid.UUID) error
	PurgeByUnits(ctx context.Context, tx *gorm.DB, unitIDs []uuid.UUID) error
}

// RecordInput captures the immutable data a log entry requires.
type RecordInput struct {
	InventoryUnitID uuid.UUID
	Type            enums.StockTransactionType
	Reason          string
	Reference       string
	ActingUserID    *uuid.UUID
}

type service struct {
	repo Repository
}

// NewService wires a stock log service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	return &service{repo: repo}, nil
}

// Record appends an entry, inside the caller's transaction when one is given.
func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.StockTransaction, error) {
	if input.InventoryUnitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory unit id required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid stock transaction type %q", input.Type)
	}
	if input.Reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reference required")
	}

	repo := s.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}

	txn := &models.StockTransaction{
		InventoryUnitID: input.InventoryUnitID,
		Type:            input.Type,
		Quantity:        1,
		Reason:          input.Reason,
		Reference:       input.Reference,
		ActingUserID:    input.ActingUserID,
	}
	if err := repo.Create(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert stock transaction")
	}
	return txn, nil
}

func (s *service) List(ctx context.Context, query ListQuery) ([]models.StockTransaction, int64, error) {
	if query.Type != nil && !query.Type.IsValid() {
		return nil, 0, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid stock transaction type %q", *query.Type)
	}
	if query.From != nil && query.To != nil && query.To.Before(*query.From) {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "date range end precedes start")
	}
	return s.repo.List(ctx, query)
}

func (s *service) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]models.StockTransaction, error) {
	if unitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory unit id required")
	}
	return s.repo.ListByUnit(ctx, unitID)
}

// PurgeByUnit drops the log for a unit being permanently deleted. This is the
// only path that removes entries.
func (s *service) PurgeByUnit(ctx context.Context, tx *gorm.DB, unitID uuid.UUID) error {
	if unitID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "inventory unit id required")
	}
	repo := s.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	return repo.DeleteByUnit(ctx, unitID)
}

// PurgeByUnits drops the log for a batch of units being permanently deleted.
func (s *service) PurgeByUnits(ctx context.Context, tx *gorm.DB, unitIDs []uuid.UUID) error {
	if len(unitIDs) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "inventory unit ids required")
	}
	repo := s.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	return repo.DeleteByUnits(ctx, unitIDs)
}
