package assignments

import (
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	"github.com/google/uuid"
)

// ProductRef is the product slice of an assignment view.
type ProductRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Model string    `json:"model"`
}

// UnitRef is the inventory unit slice of an assignment view.
type UnitRef struct {
	ID           uuid.UUID        `json:"id"`
	SerialNumber *string          `json:"serialNumber"`
	Status       enums.UnitStatus `json:"status"`
	Condition    string           `json:"condition"`
}

// EmployeeRef is the employee slice of an assignment view.
type EmployeeRef struct {
	ID    uuid.UUID `json:"id"`
	EmpID string    `json:"empId"`
	Name  string    `json:"name"`
}

// UserRef identifies the user who performed the assignment.
type UserRef struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// View is the API shape of an assignment. The overdue fields are computed
// against the clock at render time, never stored.
type View struct {
	ID               uuid.UUID              `json:"id"`
	Product          *ProductRef            `json:"product,omitempty"`
	InventoryUnit    *UnitRef               `json:"inventoryUnit,omitempty"`
	Employee         *EmployeeRef           `json:"employee,omitempty"`
	AssignedBy       *UserRef               `json:"assignedBy,omitempty"`
	PCName           *string                `json:"pcName"`
	Status           enums.AssignmentStatus `json:"status"`
	AssignedAt       time.Time              `json:"assignedAt"`
	ExpectedReturnAt *time.Time             `json:"expectedReturnAt"`
	ReturnedAt       *time.Time             `json:"returnedAt"`
	ReturnCondition  *string                `json:"returnCondition"`
	Notes            *string                `json:"notes"`
	IsOverdue        bool                   `json:"isOverdue"`
	DaysOverdue      int                    `json:"daysOverdue"`
	DurationDays     int                    `json:"durationDays"`
	WasOverdue       bool                   `json:"wasOverdue"`
}

// NewView builds the response shape for one assignment at the given instant.
func NewView(a models.Assignment, now time.Time) View {
	view := View{
		ID:               a.ID,
		PCName:           a.PCName,
		Status:           a.Status,
		AssignedAt:       a.AssignedAt,
		ExpectedReturnAt: a.ExpectedReturn,
		ReturnedAt:       a.ReturnedAt,
		ReturnCondition:  a.ReturnCondition,
		Notes:            a.Notes,
		DurationDays:     a.DurationDays(now),
		WasOverdue:       a.WasOverdue(),
	}
	if a.OverdueAt(now) {
		view.IsOverdue = true
		view.DaysOverdue = daysBetween(*a.ExpectedReturn, now)
	}
	if a.Product != nil {
		view.Product = &ProductRef{ID: a.Product.ID, Name: a.Product.Name, Model: a.Product.Model}
	}
	if a.InventoryUnit != nil {
		view.InventoryUnit = &UnitRef{
			ID:           a.InventoryUnit.ID,
			SerialNumber: a.InventoryUnit.SerialNumber,
			Status:       a.InventoryUnit.Status,
			Condition:    a.InventoryUnit.Condition,
		}
	}
	if a.Employee != nil {
		view.Employee = &EmployeeRef{ID: a.Employee.ID, EmpID: a.Employee.EmpID, Name: a.Employee.Name}
	}
	if a.AssignedBy != nil {
		view.AssignedBy = &UserRef{ID: a.AssignedBy.ID, Username: a.AssignedBy.Username}
	}
	return view
}

// NewViews maps a page of assignments at one shared instant.
func NewViews(rows []models.Assignment, now time.Time) []View {
	views := make([]View, 0, len(rows))
	for _, row := range rows {
		views = append(views, NewView(row, now))
	}
	return views
}

func daysBetween(from, to time.Time) int {
	days := int(to.Sub(from).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// EmployeeUsage is one row of the most-active-employees ranking.
type EmployeeUsage struct {
	EmployeeID uuid.UUID `json:"employeeId"`
	EmpID      string    `json:"empId"`
	Name       string    `json:"name"`
	Count      int64     `json:"count"`
}

// ProductUsage is one row of the most-assigned-products ranking.
type ProductUsage struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Model     string    `json:"model"`
	Count     int64     `json:"count"`
}

// Analytics summarizes assignment activity across the whole system.
type Analytics struct {
	TotalAssignments   int64           `json:"totalAssignments"`
	ActiveAssignments  int64           `json:"activeAssignments"`
	OverdueAssignments int64           `json:"overdueAssignments"`
	ReturnRate         float64         `json:"returnRate"`
	TopEmployees       []EmployeeUsage `json:"topEmployees"`
	TopProducts        []ProductUsage  `json:"topProducts"`
}
