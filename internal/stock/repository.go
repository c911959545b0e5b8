package stock

import (
	"context"
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	"github.com/assetdesk/assetdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence for the stock transaction log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, txn *models.StockTransaction) error
	List(ctx context.Context, query ListQuery) ([]models.StockTransaction, int64, error)
	ListByUnit(ctx context.Context, unitID uuid.UUID) ([]models.StockTransaction, error)
	DeleteByUnit(ctx context.Context, unitID uuid.UUID) error
	DeleteByUnits(ctx context.Context, unitIDs []uuid.UUID) error
}

// ListQuery narrows and pages the transaction log.
type ListQuery struct {
	Pagination pagination.Params
	UnitID     *uuid.UUID
	ProductID  *uuid.UUID
	Type       *enums.StockTransactionType
	From       *time.Time
	To         *time.Time
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

// WithTx returns a repository bound to the provided transaction.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// Create appends a log entry. Entries are never updated afterwards.
func (r *repository) Create(ctx context.Context, txn *models.StockTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// List returns matching entries newest first with the total match count.
func (r *repository) List(ctx context.Context, query ListQuery) ([]models.StockTransaction, int64, error) {
	params := query.Pagination.Normalize()

	qb := r.db.WithContext(ctx).Model(&models.StockTransaction{})
	if query.UnitID != nil {
		qb = qb.Where("stock_transactions.inventory_unit_id = ?", *query.UnitID)
	}
	if query.ProductID != nil {
		qb = qb.Joins("JOIN inventory_units iu ON iu.id = stock_transactions.inventory_unit_id").
			Where("iu.product_id = ?", *query.ProductID)
	}
	if query.Type != nil {
		qb = qb.Where("stock_transactions.type = ?", *query.Type)
	}
	if query.From != nil {
		qb = qb.Where("stock_transactions.created_at >= ?", *query.From)
	}
	if query.To != nil {
		qb = qb.Where("stock_transactions.created_at <= ?", *query.To)
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.StockTransaction
	err := qb.
		Preload("InventoryUnit").
		Preload("InventoryUnit.Product").
		Preload("ActingUser").
		Order("stock_transactions.created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).
		Error
	return rows, total, err
}

// ListByUnit returns the full log for one unit, newest first.
func (r *repository) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]models.StockTransaction, error) {
	var rows []models.StockTransaction
	err := r.db.WithContext(ctx).
		Where("inventory_unit_id = ?", unitID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// DeleteByUnit removes the log for a unit that is being permanently deleted.
func (r *repository) DeleteByUnit(ctx context.Context, unitID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("inventory_unit_id = ?", unitID).
		Delete(&models.StockTransaction{}).
		Error
}

// DeleteByUnits removes the log for a batch of units being permanently deleted.
func (r *repository) DeleteByUnits(ctx context.Context, unitIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("inventory_unit_id IN ?", unitIDs).
		Delete(&models.StockTransaction{}).
		Error
}
