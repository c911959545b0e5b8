package orgs

import (
	"context"

	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence for branches, categories and departments.
// The three entities share one repository because they are structurally
// identical lookup tables differing only in their delete guards.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateBranch(ctx context.Context, branch *models.Branch) error
	FindBranch(ctx context.Context, id uuid.UUID) (*models.Branch, error)
	FindBranchByName(ctx context.Context, name string) (*models.Branch, error)
	ListBranches(ctx context.Context) ([]models.Branch, error)
	SaveBranch(ctx context.Context, branch *models.Branch) error
	SoftDeleteBranch(ctx context.Context, id uuid.UUID) error

	CreateCategory(ctx context.Context, category *models.Category) error
	FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindCategoryByName(ctx context.Context, name string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	SaveCategory(ctx context.Context, category *models.Category) error
	SoftDeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateDepartment(ctx context.Context, department *models.Department) error
	FindDepartment(ctx context.Context, id uuid.UUID) (*models.Department, error)
	FindDepartmentByName(ctx context.Context, name string) (*models.Department, error)
	ListDepartments(ctx context.Context) ([]models.Department, error)
	SaveDepartment(ctx context.Context, department *models.Department) error
	SoftDeleteDepartment(ctx context.Context, id uuid.UUID) error

	ProductCountByBranch(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error)
	EmployeeCountByBranch(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error)
	ProductCountByCategory(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error)
	ProductCountByDepartment(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error)
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

func (r *repository) CreateBranch(ctx context.Context, branch *models.Branch) error {
	return r.db.WithContext(ctx).Create(branch).Error
}

func (r *repository) FindBranch(ctx context.Context, id uuid.UUID) (*models.Branch, error) {
	var branch models.Branch
	if err := r.db.WithContext(ctx).First(&branch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *repository) FindBranchByName(ctx context.Context, name string) (*models.Branch, error) {
	var branch models.Branch
	if err := r.db.WithContext(ctx).First(&branch, "LOWER(name) = LOWER(?)", name).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *repository) ListBranches(ctx context.Context) ([]models.Branch, error) {
	var rows []models.Branch
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) SaveBranch(ctx context.Context, branch *models.Branch) error {
	return r.db.WithContext(ctx).Save(branch).Error
}

func (r *repository) SoftDeleteBranch(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Branch{}).Error
}

func (r *repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "LOWER(name) = LOWER(?)", name).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) SaveCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *repository) SoftDeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{}).Error
}

func (r *repository) CreateDepartment(ctx context.Context, department *models.Department) error {
	return r.db.WithContext(ctx).Create(department).Error
}

func (r *repository) FindDepartment(ctx context.Context, id uuid.UUID) (*models.Department, error) {
	var department models.Department
	if err := r.db.WithContext(ctx).First(&department, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *repository) FindDepartmentByName(ctx context.Context, name string) (*models.Department, error) {
	var department models.Department
	if err := r.db.WithContext(ctx).First(&department, "LOWER(name) = LOWER(?)", name).Error; err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *repository) ListDepartments(ctx context.Context) ([]models.Department, error) {
	var rows []models.Department
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) SaveDepartment(ctx context.Context, department *models.Department) error {
	return r.db.WithContext(ctx).Save(department).Error
}

func (r *repository) SoftDeleteDepartment(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Department{}).Error
}

func (r *repository) countBy(ctx context.Context, model any, column string, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	result := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	type row struct {
		GroupID uuid.UUID
		Count   int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(model).
		Select(column+" AS group_id, COUNT(*) AS count").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.GroupID] = row.Count
	}
	return result, nil
}

func (r *repository) ProductCountByBranch(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.countBy(ctx, &models.Product{}, "branch_id", ids)
}

func (r *repository) EmployeeCountByBranch(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.countBy(ctx, &models.Employee{}, "branch_id", ids)
}

func (r *repository) ProductCountByCategory(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.countBy(ctx, &models.Product{}, "category_id", ids)
}

func (r *repository) ProductCountByDepartment(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.countBy(ctx, &models.Product{}, "department_id", ids)
}
