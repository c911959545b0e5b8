package orgs

import (
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/google/uuid"
)

// BranchView is the API shape of a branch, with usage counts.
type BranchView struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Address       *string   `json:"address"`
	ProductCount  int64     `json:"productCount"`
	EmployeeCount int64     `json:"employeeCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func newBranchView(b models.Branch, products, employees int64) BranchView {
	return BranchView{
		ID:            b.ID,
		Name:          b.Name,
		Address:       b.Address,
		ProductCount:  products,
		EmployeeCount: employees,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// CategoryView is the API shape of a category.
type CategoryView struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	ProductCount int64     `json:"productCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func newCategoryView(c models.Category, products int64) CategoryView {
	return CategoryView{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		ProductCount: products,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// DepartmentView is the API shape of a department.
type DepartmentView struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	ProductCount int64     `json:"productCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func newDepartmentView(d models.Department, products int64) DepartmentView {
	return DepartmentView{
		ID:           d.ID,
		Name:         d.Name,
		Description:  d.Description,
		ProductCount: products,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
