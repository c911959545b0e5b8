package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/assetdesk/assetdesk-backend/pkg/enums"
)

// Assignment is the record of a unit handed to an employee. ReturnedAt is
// null exactly while the assignment is open; a partial unique index on
// (inventory_unit_id) WHERE returned_at IS NULL guarantees at most one open
// assignment per unit.
type Assignment struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID       uuid.UUID              `gorm:"column:product_id;type:uuid;not null;index"`
	InventoryUnitID uuid.UUID              `gorm:"column:inventory_unit_id;type:uuid;not null;index"`
	EmployeeID      uuid.UUID              `gorm:"column:employee_id;type:uuid;not null;index"`
	AssignedByID    uuid.UUID              `gorm:"column:assigned_by_id;type:uuid;not null"`
	PCName          *string                `gorm:"column:pc_name"`
	Status          enums.AssignmentStatus `gorm:"column:status;not null;default:ASSIGNED"`
	AssignedAt      time.Time              `gorm:"column:assigned_at;not null;autoCreateTime"`
	ExpectedReturn  *time.Time             `gorm:"column:expected_return_at"`
	ReturnedAt      *time.Time             `gorm:"column:returned_at"`
	ReturnCondition *string                `gorm:"column:return_condition"`
	Notes           *string                `gorm:"column:notes"`
	Product         *Product               `gorm:"foreignKey:ProductID"`
	InventoryUnit   *InventoryUnit         `gorm:"foreignKey:InventoryUnitID"`
	Employee        *Employee              `gorm:"foreignKey:EmployeeID"`
	AssignedBy      *User                  `gorm:"foreignKey:AssignedByID"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt       gorm.DeletedAt         `gorm:"column:deleted_at;index"`
}

// Open reports whether the unit is still out with the employee.
func (a Assignment) Open() bool {
	return a.ReturnedAt == nil
}

// OverdueAt reports whether the assignment is overdue at the given instant.
// Equal timestamps are not overdue.
func (a Assignment) OverdueAt(now time.Time) bool {
	return a.ReturnedAt == nil && a.ExpectedReturn != nil && now.After(*a.ExpectedReturn)
}

// DurationDays is the number of whole days between assignment and return,
// using now for assignments still open.
func (a Assignment) DurationDays(now time.Time) int {
	end := now
	if a.ReturnedAt != nil {
		end = *a.ReturnedAt
	}
	days := int(end.Sub(a.AssignedAt).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// WasOverdue reports whether a closed assignment came back late.
func (a Assignment) WasOverdue() bool {
	return a.ReturnedAt != nil && a.ExpectedReturn != nil && a.ReturnedAt.After(*a.ExpectedReturn)
}
