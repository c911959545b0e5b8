package inventory

import (
	"context"
	"strings"

	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	"github.com/assetdesk/assetdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence for inventory units.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateUnits(ctx context.Context, units []*models.InventoryUnit) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryUnit, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.InventoryUnit, error)
	OldestAvailable(ctx context.Context, productID uuid.UUID) (*models.InventoryUnit, error)
	Save(ctx context.Context, unit *models.InventoryUnit) error
	List(ctx context.Context, query ListQuery) ([]models.InventoryUnit, int64, error)
	StatusCounts(ctx context.Context, productID uuid.UUID) (StatusCounts, error)
	HasOpenAssignment(ctx context.Context, unitID uuid.UUID) (bool, error)
	UnitsWithOpenAssignments(ctx context.Context, unitIDs []uuid.UUID) ([]uuid.UUID, error)
	OpenAssignment(ctx context.Context, unitID uuid.UUID) (*models.Assignment, error)
	PurgeAssignmentsByUnit(ctx context.Context, unitID uuid.UUID) error
	PurgeAssignmentsByUnits(ctx context.Context, unitIDs []uuid.UUID) error
	HardDelete(ctx context.Context, unitID uuid.UUID) error
	HardDeleteMany(ctx context.Context, unitIDs []uuid.UUID) error
	SoftDeleteByProduct(ctx context.Context, productID uuid.UUID) error
}

// ListQuery narrows and pages unit listings.
type ListQuery struct {
	Pagination pagination.Params
	ProductID  *uuid.UUID
	Status     *enums.UnitStatus
	Search     string
}

// StatusCounts aggregates a product's units by status.
type StatusCounts struct {
	Total       int64 `json:"total"`
	Available   int64 `json:"available"`
	Assigned    int64 `json:"assigned"`
	Damaged     int64 `json:"damaged"`
	Maintenance int64 `json:"maintenance"`
	Retired     int64 `json:"retired"`
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

// CreateUnits inserts all units in one statement.
func (r *repository) CreateUnits(ctx context.Context, units []*models.InventoryUnit) error {
	if len(units) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&units).Error
}

// FindByID loads the unit with its product.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryUnit, error) {
	var unit models.InventoryUnit
	if err := r.db.WithContext(ctx).Preload("Product").First(&unit, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

// FindByIDs loads the live units among ids, without relations.
func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.InventoryUnit, error) {
	var units []models.InventoryUnit
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&units).Error
	return units, err
}

// OldestAvailable returns the available unit that has been in stock longest.
// Ties on created_at break on id so the pick is deterministic.
func (r *repository) OldestAvailable(ctx context.Context, productID uuid.UUID) (*models.InventoryUnit, error) {
	var unit models.InventoryUnit
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND status = ?", productID, enums.UnitStatusAvailable).
		Order("created_at ASC").
		Order("id ASC").
		First(&unit).
		Error
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

// Save persists all fields of an existing unit row.
func (r *repository) Save(ctx context.Context, unit *models.InventoryUnit) error {
	return r.db.WithContext(ctx).Save(unit).Error
}

// List returns matching units, oldest first, with the total match count.
func (r *repository) List(ctx context.Context, query ListQuery) ([]models.InventoryUnit, int64, error) {
	params := query.Pagination.Normalize()

	qb := r.db.WithContext(ctx).Model(&models.InventoryUnit{})
	if query.ProductID != nil {
		qb = qb.Where("product_id = ?", *query.ProductID)
	}
	if query.Status != nil {
		qb = qb.Where("status = ?", *query.Status)
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(serial_number) LIKE ? OR LOWER(location) LIKE ?)", pattern, pattern)
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.InventoryUnit
	err := qb.
		Preload("Product").
		Order("created_at ASC").
		Order("id ASC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).
		Error
	return rows, total, err
}

// StatusCounts aggregates the product's live units by status.
func (r *repository) StatusCounts(ctx context.Context, productID uuid.UUID) (StatusCounts, error) {
	type row struct {
		Status enums.UnitStatus
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.InventoryUnit{}).
		Select("status, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Group("status").
		Scan(&rows).
		Error
	if err != nil {
		return StatusCounts{}, err
	}

	var counts StatusCounts
	for _, r := range rows {
		counts.Total += r.Count
		switch r.Status {
		case enums.UnitStatusAvailable:
			counts.Available = r.Count
		case enums.UnitStatusAssigned:
			counts.Assigned = r.Count
		case enums.UnitStatusDamaged:
			counts.Damaged = r.Count
		case enums.UnitStatusMaintenance:
			counts.Maintenance = r.Count
		case enums.UnitStatusRetired:
			counts.Retired = r.Count
		}
	}
	return counts, nil
}

// HasOpenAssignment reports whether the unit is currently out with someone.
func (r *repository) HasOpenAssignment(ctx context.Context, unitID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("inventory_unit_id = ? AND returned_at IS NULL", unitID).
		Count(&count).
		Error
	return count > 0, err
}

// UnitsWithOpenAssignments returns the subset of unitIDs currently out.
func (r *repository) UnitsWithOpenAssignments(ctx context.Context, unitIDs []uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("inventory_unit_id IN ? AND returned_at IS NULL", unitIDs).
		Distinct().
		Pluck("inventory_unit_id", &out).
		Error
	return out, err
}

// OpenAssignment loads the unit's open assignment with its employee.
func (r *repository) OpenAssignment(ctx context.Context, unitID uuid.UUID) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("inventory_unit_id = ? AND returned_at IS NULL", unitID).
		First(&assignment).
		Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// PurgeAssignmentsByUnit permanently removes the unit's assignment history.
func (r *repository) PurgeAssignmentsByUnit(ctx context.Context, unitID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Unscoped().
		Where("inventory_unit_id = ?", unitID).
		Delete(&models.Assignment{}).
		Error
}

// PurgeAssignmentsByUnits removes the assignment history for a batch of units.
func (r *repository) PurgeAssignmentsByUnits(ctx context.Context, unitIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).
		Unscoped().
		Where("inventory_unit_id IN ?", unitIDs).
		Delete(&models.Assignment{}).
		Error
}

// HardDelete permanently removes the unit row.
func (r *repository) HardDelete(ctx context.Context, unitID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Unscoped().
		Where("id = ?", unitID).
		Delete(&models.InventoryUnit{}).
		Error
}

// HardDeleteMany permanently removes a batch of unit rows.
func (r *repository) HardDeleteMany(ctx context.Context, unitIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).
		Unscoped().
		Where("id IN ?", unitIDs).
		Delete(&models.InventoryUnit{}).
		Error
}

// SoftDeleteByProduct soft-deletes every unit of a product being removed.
func (r *repository) SoftDeleteByProduct(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.InventoryUnit{}).
		Error
}
