package assignments

import (
	"context"
	"strings"
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence for assignments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, assignment *models.Assignment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	Save(ctx context.Context, assignment *models.Assignment) error
	ListActive(ctx context.Context, query ActiveQuery) ([]models.Assignment, int64, error)
	ListHistory(ctx context.Context, query HistoryQuery) ([]models.Assignment, int64, error)
	ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]models.Assignment, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Assignment, error)
	CountAll(ctx context.Context, query AnalyticsQuery) (int64, error)
	CountOpen(ctx context.Context) (int64, error)
	CountOverdue(ctx context.Context, now time.Time) (int64, error)
	TopEmployees(ctx context.Context, limit int, query AnalyticsQuery) ([]EmployeeUsage, error)
	TopProducts(ctx context.Context, limit int, query AnalyticsQuery) ([]ProductUsage, error)
}

// ActiveQuery narrows the open assignment listing.
type ActiveQuery struct {
	Pagination  pagination.Params
	EmployeeID  *uuid.UUID
	ProductID   *uuid.UUID
	Search      string
	OverdueOnly bool
	Now         time.Time
}

// AnalyticsQuery narrows the analytics total and rankings by assignedAt.
type AnalyticsQuery struct {
	From *time.Time
	To   *time.Time
}

// HistoryQuery narrows the closed assignment listing.
type HistoryQuery struct {
	Pagination pagination.Params
	EmployeeID *uuid.UUID
	ProductID  *uuid.UUID
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

func (r *repository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

// FindByID loads the assignment with every relation the API renders.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("InventoryUnit").
		Preload("Employee").
		Preload("AssignedBy").
		First(&assignment, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *repository) Save(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

// ListActive returns open assignments, most recent first.
func (r *repository) ListActive(ctx context.Context, query ActiveQuery) ([]models.Assignment, int64, error) {
	params := query.Pagination.Normalize()

	qb := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("assignments.returned_at IS NULL")

	if query.EmployeeID != nil {
		qb = qb.Where("assignments.employee_id = ?", *query.EmployeeID)
	}
	if query.ProductID != nil {
		qb = qb.Where("assignments.product_id = ?", *query.ProductID)
	}
	if query.OverdueOnly {
		now := query.Now
		if now.IsZero() {
			now = time.Now().UTC()
		}
		qb = qb.Where("assignments.expected_return_at IS NOT NULL AND assignments.expected_return_at < ?", now)
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.
			Joins("JOIN employees e ON e.id = assignments.employee_id").
			Joins("JOIN products p ON p.id = assignments.product_id").
			Joins("JOIN inventory_units iu ON iu.id = assignments.inventory_unit_id").
			Where("(LOWER(e.name) LIKE ? OR LOWER(e.emp_id) LIKE ? OR LOWER(p.name) LIKE ? OR LOWER(p.model) LIKE ? OR LOWER(iu.serial_number) LIKE ? OR LOWER(assignments.pc_name) LIKE ?)",
				pattern, pattern, pattern, pattern, pattern, pattern)
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Assignment
	err := qb.
		Preload("Product").
		Preload("InventoryUnit").
		Preload("Employee").
		Preload("AssignedBy").
		Order("assignments.assigned_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).
		Error
	return rows, total, err
}

// ListHistory returns closed assignments, most recently returned first.
func (r *repository) ListHistory(ctx context.Context, query HistoryQuery) ([]models.Assignment, int64, error) {
	params := query.Pagination.Normalize()

	qb := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("returned_at IS NOT NULL")

	if query.EmployeeID != nil {
		qb = qb.Where("employee_id = ?", *query.EmployeeID)
	}
	if query.ProductID != nil {
		qb = qb.Where("product_id = ?", *query.ProductID)
	}
	if query.From != nil {
		qb = qb.Where("returned_at >= ?", *query.From)
	}
	if query.To != nil {
		qb = qb.Where("returned_at <= ?", *query.To)
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Assignment
	err := qb.
		Preload("Product").
		Preload("InventoryUnit").
		Preload("Employee").
		Preload("AssignedBy").
		Order("returned_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).
		Error
	return rows, total, err
}

// ListByEmployee returns the employee's full assignment record, newest first.
func (r *repository) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]models.Assignment, error) {
	var rows []models.Assignment
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("InventoryUnit").
		Preload("AssignedBy").
		Where("employee_id = ?", employeeID).
		Order("assigned_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// ListByProduct returns the product's full assignment record, newest first.
func (r *repository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Assignment, error) {
	var rows []models.Assignment
	err := r.db.WithContext(ctx).
		Preload("InventoryUnit").
		Preload("Employee").
		Preload("AssignedBy").
		Where("product_id = ?", productID).
		Order("assigned_at DESC").
		Find(&rows).
		Error
	return rows, err
}

func (r *repository) CountAll(ctx context.Context, query AnalyticsQuery) (int64, error) {
	qb := r.db.WithContext(ctx).Model(&models.Assignment{})
	if query.From != nil {
		qb = qb.Where("assigned_at >= ?", *query.From)
	}
	if query.To != nil {
		qb = qb.Where("assigned_at <= ?", *query.To)
	}
	var count int64
	err := qb.Count(&count).Error
	return count, err
}

func (r *repository) CountOpen(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("returned_at IS NULL").
		Count(&count).
		Error
	return count, err
}

func (r *repository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("returned_at IS NULL AND expected_return_at IS NOT NULL AND expected_return_at < ?", now).
		Count(&count).
		Error
	return count, err
}

// TopEmployees ranks employees by assignments received in the window.
func (r *repository) TopEmployees(ctx context.Context, limit int, query AnalyticsQuery) ([]EmployeeUsage, error) {
	qb := r.db.WithContext(ctx).
		Table("assignments").
		Select("assignments.employee_id AS employee_id, e.emp_id AS emp_id, e.name AS name, COUNT(*) AS count").
		Joins("JOIN employees e ON e.id = assignments.employee_id").
		Where("assignments.deleted_at IS NULL")
	if query.From != nil {
		qb = qb.Where("assignments.assigned_at >= ?", *query.From)
	}
	if query.To != nil {
		qb = qb.Where("assignments.assigned_at <= ?", *query.To)
	}

	var rows []EmployeeUsage
	err := qb.
		Group("assignments.employee_id, e.emp_id, e.name").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).
		Error
	return rows, err
}

// TopProducts ranks products by assignments created in the window.
func (r *repository) TopProducts(ctx context.Context, limit int, query AnalyticsQuery) ([]ProductUsage, error) {
	qb := r.db.WithContext(ctx).
		Table("assignments").
		Select("assignments.product_id AS product_id, p.name AS name, p.model AS model, COUNT(*) AS count").
		Joins("JOIN products p ON p.id = assignments.product_id").
		Where("assignments.deleted_at IS NULL")
	if query.From != nil {
		qb = qb.Where("assignments.assigned_at >= ?", *query.From)
	}
	if query.To != nil {
		qb = qb.Where("assignments.assigned_at <= ?", *query.To)
	}

	var rows []ProductUsage
	err := qb.
		Group("assignments.product_id, p.name, p.model").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).
		Error
	return rows, err
}
