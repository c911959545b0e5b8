package dashboard

import (
	"context"
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes the aggregate reads the dashboard is built from.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CountProducts(ctx context.Context) (int64, error)
	CountOpenAssignments(ctx context.Context) (int64, error)
	CountCategories(ctx context.Context) (int64, error)
	CountBranches(ctx context.Context) (int64, error)
	CountEmployees(ctx context.Context) (int64, error)
	CountUnits(ctx context.Context) (int64, error)
	UnitCountsByStatus(ctx context.Context) (map[enums.UnitStatus]int64, error)
	AssignmentTimesBetween(ctx context.Context, from, to time.Time) ([]time.Time, error)
	RecentAssignments(ctx context.Context, limit int) ([]models.Assignment, error)
	CategoryDistribution(ctx context.Context) ([]CategoryCount, error)
}

// CategoryCount is one slice of the category distribution chart.
type CategoryCount struct {
	CategoryID string `gorm:"column:category_id" json:"categoryId"`
	Name       string `gorm:"column:name" json:"name"`
	Count      int64  `gorm:"column:count" json:"count"`
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

func (r *repository) count(ctx context.Context, model any) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(model).Count(&count).Error
	return count, err
}

func (r *repository) CountProducts(ctx context.Context) (int64, error) {
	return r.count(ctx, &models.Product{})
}

func (r *repository) CountOpenAssignments(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("returned_at IS NULL").
		Count(&count).
		Error
	return count, err
}

func (r *repository) CountCategories(ctx context.Context) (int64, error) {
	return r.count(ctx, &models.Category{})
}

func (r *repository) CountBranches(ctx context.Context) (int64, error) {
	return r.count(ctx, &models.Branch{})
}

func (r *repository) CountEmployees(ctx context.Context) (int64, error) {
	return r.count(ctx, &models.Employee{})
}

func (r *repository) CountUnits(ctx context.Context) (int64, error) {
	return r.count(ctx, &models.InventoryUnit{})
}

func (r *repository) UnitCountsByStatus(ctx context.Context) (map[enums.UnitStatus]int64, error) {
	type row struct {
		Status enums.UnitStatus
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.InventoryUnit{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	result := make(map[enums.UnitStatus]int64, len(rows))
	for _, row := range rows {
		result[row.Status] = row.Count
	}
	return result, nil
}

// AssignmentTimesBetween returns the assigned_at instants in [from, to);
// bucketing happens in the service so the query stays portable.
func (r *repository) AssignmentTimesBetween(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("assigned_at >= ? AND assigned_at < ?", from, to).
		Pluck("assigned_at", &times).
		Error
	return times, err
}

func (r *repository) RecentAssignments(ctx context.Context, limit int) ([]models.Assignment, error) {
	var rows []models.Assignment
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Employee").
		Order("assigned_at DESC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

func (r *repository) CategoryDistribution(ctx context.Context) ([]CategoryCount, error) {
	var rows []CategoryCount
	err := r.db.WithContext(ctx).
		Table("products").
		Select("categories.id AS category_id, categories.name AS name, COUNT(*) AS count").
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("products.deleted_at IS NULL AND categories.deleted_at IS NULL").
		Group("categories.id, categories.name").
		Order("count DESC").
		Scan(&rows).
		Error
	return rows, err
}
