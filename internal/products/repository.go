package products

import (
	"context"
	"strings"

	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	"github.com/assetdesk/assetdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// availableCountExpr counts a product's live AVAILABLE units. Used both to
// filter by stock status and to rank low stock.
const availableCountExpr = `(SELECT COUNT(*) FROM inventory_units u
 WHERE u.product_id = products.id AND u.status = 'AVAILABLE' AND u.deleted_at IS NULL)`

// Repository defines persistence for product templates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Save(ctx context.Context, product *models.Product) error
	List(ctx context.Context, query ListQuery) ([]models.Product, int64, error)
	StockInfoByProduct(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]StockInfo, error)
	OpenAssignmentCount(ctx context.Context, productID uuid.UUID) (int64, error)
	SoftDelete(ctx context.Context, productID uuid.UUID) error
	SoftDeleteUnits(ctx context.Context, productID uuid.UUID) error
	LowStock(ctx context.Context) ([]LowStockRow, error)
}

// ListQuery narrows and pages product listings.
type ListQuery struct {
	Pagination   pagination.Params
	Search       string
	CategoryID   *uuid.UUID
	BranchID     *uuid.UUID
	DepartmentID *uuid.UUID
	StockStatus  string
}

// LowStockRow is one product at or below its minimum stock level.
type LowStockRow struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Model        string    `json:"model"`
	CurrentStock int64     `json:"currentStock"`
	MinStock     int       `json:"minStock"`
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

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// FindByID loads the product with its reference relations.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Branch").
		Preload("Department").
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// List returns matching products, newest first, with the total match count.
func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Product, int64, error) {
	params := query.Pagination.Normalize()

	qb := r.db.WithContext(ctx).Model(&models.Product{})
	if search := strings.TrimSpace(query.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(products.name) LIKE ? OR LOWER(products.model) LIKE ?)", pattern, pattern)
	}
	if query.CategoryID != nil {
		qb = qb.Where("products.category_id = ?", *query.CategoryID)
	}
	if query.BranchID != nil {
		qb = qb.Where("products.branch_id = ?", *query.BranchID)
	}
	if query.DepartmentID != nil {
		qb = qb.Where("products.department_id = ?", *query.DepartmentID)
	}
	switch query.StockStatus {
	case "out":
		qb = qb.Where(availableCountExpr + " = 0")
	case "low":
		qb = qb.Where(availableCountExpr + " > 0 AND " + availableCountExpr + " <= products.min_stock_level")
	case "available":
		qb = qb.Where(availableCountExpr + " > products.min_stock_level")
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	err := qb.
		Preload("Category").
		Preload("Branch").
		Preload("Department").
		Order("products.created_at DESC").
		Order("products.id DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).
		Error
	return rows, total, err
}

// StockInfoByProduct aggregates unit counts for the given products in one
// query.
func (r *repository) StockInfoByProduct(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]StockInfo, error) {
	result := make(map[uuid.UUID]StockInfo, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	type row struct {
		ProductID uuid.UUID
		Status    enums.UnitStatus
		Count     int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.InventoryUnit{}).
		Select("product_id, status, COUNT(*) AS count").
		Where("product_id IN ?", productIDs).
		Group("product_id, status").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		info := result[row.ProductID]
		info.Total += row.Count
		switch row.Status {
		case enums.UnitStatusAvailable:
			info.Available = row.Count
		case enums.UnitStatusAssigned:
			info.Assigned = row.Count
		case enums.UnitStatusDamaged:
			info.Damaged = row.Count
		case enums.UnitStatusMaintenance:
			info.Maintenance = row.Count
		case enums.UnitStatusRetired:
			info.Retired = row.Count
		}
		result[row.ProductID] = info
	}
	return result, nil
}

// OpenAssignmentCount counts units of the product currently out.
func (r *repository) OpenAssignmentCount(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("product_id = ? AND returned_at IS NULL", productID).
		Count(&count).
		Error
	return count, err
}

// SoftDelete marks the product deleted.
func (r *repository) SoftDelete(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", productID).
		Delete(&models.Product{}).
		Error
}

// SoftDeleteUnits marks all of the product's units deleted.
func (r *repository) SoftDeleteUnits(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.InventoryUnit{}).
		Error
}

// LowStock returns products whose available unit count does not exceed their
// minimum stock level.
func (r *repository) LowStock(ctx context.Context) ([]LowStockRow, error) {
	var rows []LowStockRow
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("products.id, products.name, products.model, " + availableCountExpr + " AS current_stock, products.min_stock_level AS min_stock").
		Where(availableCountExpr + " > 0 AND " + availableCountExpr + " <= products.min_stock_level").
		Order("current_stock ASC").
		Scan(&rows).
		Error
	return rows, err
}
