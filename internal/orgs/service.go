package orgs

import (
	"context"
	"fmt"
	"strings"

	"github.com/assetdesk/assetdesk-backend/pkg/db"
	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// BranchInput carries branch fields for create and update. On update, nil
// means unchanged.
type BranchInput struct {
	Name    *string
	Address *string
}

// NamedInput carries the fields shared by categories and departments.
type NamedInput struct {
	Name        *string
	Description *string
}

// Service owns the organizational lookup tables products and employees hang
// off of.
type Service interface {
	CreateBranch(ctx context.Context, input BranchInput) (*BranchView, error)
	GetBranch(ctx context.Context, id uuid.UUID) (*BranchView, error)
	ListBranches(ctx context.Context) ([]BranchView, error)
	UpdateBranch(ctx context.Context, id uuid.UUID, input BranchInput) (*BranchView, error)
	DeleteBranch(ctx context.Context, id uuid.UUID) error

	CreateCategory(ctx context.Context, input NamedInput) (*CategoryView, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*CategoryView, error)
	ListCategories(ctx context.Context) ([]CategoryView, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input NamedInput) (*CategoryView, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateDepartment(ctx context.Context, input NamedInput) (*DepartmentView, error)
	GetDepartment(ctx context.Context, id uuid.UUID) (*DepartmentView, error)
	ListDepartments(ctx context.Context) ([]DepartmentView, error)
	UpdateDepartment(ctx context.Context, id uuid.UUID, input NamedInput) (*DepartmentView, error)
	DeleteDepartment(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService wires the org service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("org repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// requireFreshName enforces case-insensitive name uniqueness among live rows.
// exclude skips the row being renamed.
func requireFreshName(err error, existingID, exclude uuid.UUID, entity string) error {
	if err != nil {
		if db.IsNotFound(err) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check "+entity+" name")
	}
	if existingID == exclude {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeConflict, entity+" name already exists")
}

func cleanName(name *string) (string, error) {
	if name == nil || strings.TrimSpace(*name) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	return strings.TrimSpace(*name), nil
}

func (s *service) CreateBranch(ctx context.Context, input BranchInput) (*BranchView, error) {
	name, err := cleanName(input.Name)
	if err != nil {
		return nil, err
	}

	branch := &models.Branch{ID: uuid.New(), Name: name, Address: input.Address}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, findErr := repo.FindBranchByName(ctx, name)
		var existingID uuid.UUID
		if existing != nil {
			existingID = existing.ID
		}
		if err := requireFreshName(findErr, existingID, uuid.Nil, "branch"); err != nil {
			return err
		}
		if err := repo.CreateBranch(ctx, branch); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert branch")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetBranch(ctx, branch.ID)
}

func (s *service) GetBranch(ctx context.Context, id uuid.UUID) (*BranchView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}
	branch, err := s.repo.FindBranch(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
	}

	ids := []uuid.UUID{branch.ID}
	products, err := s.repo.ProductCountByBranch(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count branch products")
	}
	employees, err := s.repo.EmployeeCountByBranch(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count branch employees")
	}
	view := newBranchView(*branch, products[branch.ID], employees[branch.ID])
	return &view, nil
}

func (s *service) ListBranches(ctx context.Context) ([]BranchView, error) {
	rows, err := s.repo.ListBranches(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list branches")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	products, err := s.repo.ProductCountByBranch(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count branch products")
	}
	employees, err := s.repo.EmployeeCountByBranch(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count branch employees")
	}

	views := make([]BranchView, 0, len(rows))
	for _, row := range rows {
		views = append(views, newBranchView(row, products[row.ID], employees[row.ID]))
	}
	return views, nil
}

func (s *service) UpdateBranch(ctx context.Context, id uuid.UUID, input BranchInput) (*BranchView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		branch, err := repo.FindBranch(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
		}

		if input.Name != nil {
			name, err := cleanName(input.Name)
			if err != nil {
				return err
			}
			existing, findErr := repo.FindBranchByName(ctx, name)
			var existingID uuid.UUID
			if existing != nil {
				existingID = existing.ID
			}
			if err := requireFreshName(findErr, existingID, id, "branch"); err != nil {
				return err
			}
			branch.Name = name
		}
		if input.Address != nil {
			branch.Address = input.Address
		}

		if err := repo.SaveBranch(ctx, branch); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update branch")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetBranch(ctx, id)
}

// DeleteBranch soft-deletes a branch. Branches still holding products or
// employees cannot be removed.
func (s *service) DeleteBranch(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindBranch(ctx, id); err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
		}

		ids := []uuid.UUID{id}
		products, err := repo.ProductCountByBranch(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count branch products")
		}
		if products[id] > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "cannot delete branch with products")
		}
		employees, err := repo.EmployeeCountByBranch(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count branch employees")
		}
		if employees[id] > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "cannot delete branch with employees")
		}

		if err := repo.SoftDeleteBranch(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete branch")
		}
		return nil
	})
}

func (s *service) CreateCategory(ctx context.Context, input NamedInput) (*CategoryView, error) {
	name, err := cleanName(input.Name)
	if err != nil {
		return nil, err
	}

	category := &models.Category{ID: uuid.New(), Name: name, Description: input.Description}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, findErr := repo.FindCategoryByName(ctx, name)
		var existingID uuid.UUID
		if existing != nil {
			existingID = existing.ID
		}
		if err := requireFreshName(findErr, existingID, uuid.Nil, "category"); err != nil {
			return err
		}
		if err := repo.CreateCategory(ctx, category); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert category")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCategory(ctx, category.ID)
}

func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}
	category, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	products, err := s.repo.ProductCountByCategory(ctx, []uuid.UUID{category.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category products")
	}
	view := newCategoryView(*category, products[category.ID])
	return &view, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryView, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	products, err := s.repo.ProductCountByCategory(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category products")
	}

	views := make([]CategoryView, 0, len(rows))
	for _, row := range rows {
		views = append(views, newCategoryView(row, products[row.ID]))
	}
	return views, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, input NamedInput) (*CategoryView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		category, err := repo.FindCategory(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
		}

		if input.Name != nil {
			name, err := cleanName(input.Name)
			if err != nil {
				return err
			}
			existing, findErr := repo.FindCategoryByName(ctx, name)
			var existingID uuid.UUID
			if existing != nil {
				existingID = existing.ID
			}
			if err := requireFreshName(findErr, existingID, id, "category"); err != nil {
				return err
			}
			category.Name = name
		}
		if input.Description != nil {
			category.Description = input.Description
		}

		if err := repo.SaveCategory(ctx, category); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCategory(ctx, id)
}

// DeleteCategory soft-deletes a category unless products still reference it.
func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindCategory(ctx, id); err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
		}

		products, err := repo.ProductCountByCategory(ctx, []uuid.UUID{id})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category products")
		}
		if products[id] > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "cannot delete category with products")
		}

		if err := repo.SoftDeleteCategory(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
		}
		return nil
	})
}

func (s *service) CreateDepartment(ctx context.Context, input NamedInput) (*DepartmentView, error) {
	name, err := cleanName(input.Name)
	if err != nil {
		return nil, err
	}

	department := &models.Department{ID: uuid.New(), Name: name, Description: input.Description}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, findErr := repo.FindDepartmentByName(ctx, name)
		var existingID uuid.UUID
		if existing != nil {
			existingID = existing.ID
		}
		if err := requireFreshName(findErr, existingID, uuid.Nil, "department"); err != nil {
			return err
		}
		if err := repo.CreateDepartment(ctx, department); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert department")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetDepartment(ctx, department.ID)
}

func (s *service) GetDepartment(ctx context.Context, id uuid.UUID) (*DepartmentView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "department id required")
	}
	department, err := s.repo.FindDepartment(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "department not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load department")
	}

	products, err := s.repo.ProductCountByDepartment(ctx, []uuid.UUID{department.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count department products")
	}
	view := newDepartmentView(*department, products[department.ID])
	return &view, nil
}

func (s *service) ListDepartments(ctx context.Context) ([]DepartmentView, error) {
	rows, err := s.repo.ListDepartments(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list departments")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	products, err := s.repo.ProductCountByDepartment(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count department products")
	}

	views := make([]DepartmentView, 0, len(rows))
	for _, row := range rows {
		views = append(views, newDepartmentView(row, products[row.ID]))
	}
	return views, nil
}

func (s *service) UpdateDepartment(ctx context.Context, id uuid.UUID, input NamedInput) (*DepartmentView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "department id required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		department, err := repo.FindDepartment(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "department not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load department")
		}

		if input.Name != nil {
			name, err := cleanName(input.Name)
			if err != nil {
				return err
			}
			existing, findErr := repo.FindDepartmentByName(ctx, name)
			var existingID uuid.UUID
			if existing != nil {
				existingID = existing.ID
			}
			if err := requireFreshName(findErr, existingID, id, "department"); err != nil {
				return err
			}
			department.Name = name
		}
		if input.Description != nil {
			department.Description = input.Description
		}

		if err := repo.SaveDepartment(ctx, department); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update department")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetDepartment(ctx, id)
}

// DeleteDepartment soft-deletes a department unless products still reference
// it.
func (s *service) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "department id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindDepartment(ctx, id); err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "department not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load department")
		}

		products, err := repo.ProductCountByDepartment(ctx, []uuid.UUID{id})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count department products")
		}
		if products[id] > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "cannot delete department with products")
		}

		if err := repo.SoftDeleteDepartment(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete department")
		}
		return nil
	})
}
