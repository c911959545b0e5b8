package inventory

import (
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRef is the product slice embedded in a unit view.
type ProductRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Model string    `json:"model"`
}

// View is the API shape of an inventory unit.
type View struct {
	ID             uuid.UUID        `json:"id"`
	ProductID      uuid.UUID        `json:"productId"`
	Product        *ProductRef      `json:"product,omitempty"`
	SerialNumber   *string          `json:"serialNumber"`
	Status         enums.UnitStatus `json:"status"`
	Condition      string           `json:"condition"`
	PurchaseDate   time.Time        `json:"purchaseDate"`
	PurchasePrice  *decimal.Decimal `json:"purchasePrice"`
	WarrantyExpiry *time.Time       `json:"warrantyExpiry"`
	Location       *string          `json:"location"`
	Notes          *string          `json:"notes"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// NewView converts a unit row into its API shape.
func NewView(unit models.InventoryUnit) View {
	view := View{
		ID:             unit.ID,
		ProductID:      unit.ProductID,
		SerialNumber:   unit.SerialNumber,
		Status:         unit.Status,
		Condition:      unit.Condition,
		PurchaseDate:   unit.PurchaseDate,
		PurchasePrice:  unit.PurchasePrice,
		WarrantyExpiry: unit.WarrantyExp,
		Location:       unit.Location,
		Notes:          unit.Notes,
		CreatedAt:      unit.CreatedAt,
		UpdatedAt:      unit.UpdatedAt,
	}
	if unit.Product != nil {
		view.Product = &ProductRef{ID: unit.Product.ID, Name: unit.Product.Name, Model: unit.Product.Model}
	}
	return view
}

// HolderRef identifies the employee currently holding a unit.
type HolderRef struct {
	ID         uuid.UUID `json:"id"`
	EmpID      string    `json:"empId"`
	Name       string    `json:"name"`
	Email      *string   `json:"email"`
	Department *string   `json:"department"`
	Position   *string   `json:"position"`
}

// OpenAssignmentRef is the open-assignment slice of the public unit view.
type OpenAssignmentRef struct {
	ID               uuid.UUID  `json:"id"`
	AssignedAt       time.Time  `json:"assignedAt"`
	ExpectedReturnAt *time.Time `json:"expectedReturnAt"`
	Employee         *HolderRef `json:"employee,omitempty"`
}

// PublicUnitView is the unauthenticated shape of a unit. CurrentAssignment is
// nil while the unit sits in stock.
type PublicUnitView struct {
	View
	CurrentAssignment *OpenAssignmentRef `json:"currentAssignment"`
}

// NewPublicUnitView builds the public shape from a unit and its open
// assignment, when one exists.
func NewPublicUnitView(unit models.InventoryUnit, open *models.Assignment) PublicUnitView {
	view := PublicUnitView{View: NewView(unit)}
	if open == nil {
		return view
	}
	ref := &OpenAssignmentRef{
		ID:               open.ID,
		AssignedAt:       open.AssignedAt,
		ExpectedReturnAt: open.ExpectedReturn,
	}
	if open.Employee != nil {
		ref.Employee = &HolderRef{
			ID:         open.Employee.ID,
			EmpID:      open.Employee.EmpID,
			Name:       open.Employee.Name,
			Email:      open.Employee.Email,
			Department: open.Employee.Department,
			Position:   open.Employee.Position,
		}
	}
	view.CurrentAssignment = ref
	return view
}

// NewViews converts a page of unit rows.
func NewViews(units []models.InventoryUnit) []View {
	views := make([]View, 0, len(units))
	for _, unit := range units {
		views = append(views, NewView(unit))
	}
	return views
}
