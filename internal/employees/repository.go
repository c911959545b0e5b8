package employees

import (
	"context"
	"strings"

	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence for employees.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, employee *models.Employee) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	Save(ctx context.Context, employee *models.Employee) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query ListQuery) ([]models.Employee, error)
	OpenAssignmentCounts(ctx context.Context, employeeIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	OpenAssignmentCount(ctx context.Context, employeeID uuid.UUID) (int64, error)
}

// ListQuery narrows the employee listing.
type ListQuery struct {
	Search     string
	BranchID   *uuid.UUID
	Department string
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

func (r *repository) Create(ctx context.Context, employee *models.Employee) error {
	return r.db.WithContext(ctx).Create(employee).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	var employee models.Employee
	err := r.db.WithContext(ctx).
		Preload("Branch").
		First(&employee, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *repository) Save(ctx context.Context, employee *models.Employee) error {
	return r.db.WithContext(ctx).Save(employee).Error
}

func (r *repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Employee{}).
		Error
}

// List returns matching employees ordered by name.
func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Employee, error) {
	qb := r.db.WithContext(ctx).Model(&models.Employee{})
	if search := strings.TrimSpace(query.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(emp_id) LIKE ? OR LOWER(email) LIKE ?)", pattern, pattern, pattern)
	}
	if query.BranchID != nil {
		qb = qb.Where("branch_id = ?", *query.BranchID)
	}
	if department := strings.TrimSpace(query.Department); department != "" {
		qb = qb.Where("LOWER(department) LIKE ?", "%"+strings.ToLower(department)+"%")
	}

	var rows []models.Employee
	err := qb.
		Preload("Branch").
		Order("name ASC").
		Find(&rows).
		Error
	return rows, err
}

// OpenAssignmentCounts counts open assignments per employee in one query.
func (r *repository) OpenAssignmentCounts(ctx context.Context, employeeIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	result := make(map[uuid.UUID]int64, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return result, nil
	}

	type row struct {
		EmployeeID uuid.UUID
		Count      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Select("employee_id, COUNT(*) AS count").
		Where("employee_id IN ? AND returned_at IS NULL", employeeIDs).
		Group("employee_id").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.EmployeeID] = row.Count
	}
	return result, nil
}

func (r *repository) OpenAssignmentCount(ctx context.Context, employeeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("employee_id = ? AND returned_at IS NULL", employeeID).
		Count(&count).
		Error
	return count, err
}
