package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is the asset template that individual inventory units belong to.
type Product struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string          `gorm:"column:name;not null"`
	Model            string          `gorm:"column:model;not null"`
	CategoryID       uuid.UUID       `gorm:"column:category_id;type:uuid;not null"`
	BranchID         uuid.UUID       `gorm:"column:branch_id;type:uuid;not null"`
	DepartmentID     *uuid.UUID      `gorm:"column:department_id;type:uuid"`
	WarrantyMonths   *int            `gorm:"column:warranty_months"`
	ComplianceStatus bool            `gorm:"column:compliance_status;not null;default:false"`
	MinStockLevel    int             `gorm:"column:min_stock_level;not null;default:0"`
	Description      *string         `gorm:"column:description"`
	Category         *Category       `gorm:"foreignKey:CategoryID"`
	Branch           *Branch         `gorm:"foreignKey:BranchID"`
	Department       *Department     `gorm:"foreignKey:DepartmentID"`
	Units            []InventoryUnit `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Assignments      []Assignment    `gorm:"foreignKey:ProductID"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt        gorm.DeletedAt  `gorm:"column:deleted_at;index"`
}

// WarrantyExpiryFrom derives the warranty expiry for a unit purchased at the
// given time, or nil when the product has no warranty duration.
func (p Product) WarrantyExpiryFrom(purchasedAt time.Time) *time.Time {
	if p.WarrantyMonths == nil || *p.WarrantyMonths <= 0 {
		return nil
	}
	expiry := purchasedAt.AddDate(0, *p.WarrantyMonths, 0)
	return &expiry
}
