package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/assetdesk/assetdesk-backend/pkg/enums"
)

// InventoryUnit is one physically trackable instance of a Product.
//
// The serial number uniqueness and the one-open-assignment-per-unit rule are
// enforced by database constraints (see migrations); status transitions are
// owned by internal/inventory.
type InventoryUnit struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID     uuid.UUID        `gorm:"column:product_id;type:uuid;not null;index"`
	SerialNumber  *string          `gorm:"column:serial_number;uniqueIndex:uq_inventory_units_serial,where:deleted_at IS NULL"`
	Status        enums.UnitStatus `gorm:"column:status;not null;default:AVAILABLE"`
	Condition     string           `gorm:"column:condition;not null;default:NEW"`
	PurchaseDate  time.Time        `gorm:"column:purchase_date;not null"`
	PurchasePrice *decimal.Decimal `gorm:"column:purchase_price;type:numeric(12,2)"`
	WarrantyExp   *time.Time       `gorm:"column:warranty_expiry"`
	Location      *string          `gorm:"column:location"`
	Notes         *string          `gorm:"column:notes"`
	Product       *Product         `gorm:"foreignKey:ProductID"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt     gorm.DeletedAt   `gorm:"column:deleted_at;index"`
}
