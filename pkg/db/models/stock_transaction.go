package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/assetdesk/assetdesk-backend/pkg/enums"
)

// StockTransaction is one append-only entry in the stock movement audit
// trail. Rows are never updated; quantity is always 1 because every unit is
// tracked individually.
type StockTransaction struct {
	ID              uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InventoryUnitID uuid.UUID                  `gorm:"column:inventory_unit_id;type:uuid;not null;index"`
	Type            enums.StockTransactionType `gorm:"column:type;not null"`
	Quantity        int                        `gorm:"column:quantity;not null;default:1"`
	Reason          string                     `gorm:"column:reason;not null"`
	Reference       string                     `gorm:"column:reference;not null"`
	ActingUserID    *uuid.UUID                 `gorm:"column:acting_user_id;type:uuid"`
	InventoryUnit   *InventoryUnit             `gorm:"foreignKey:InventoryUnitID"`
	ActingUser      *User                      `gorm:"foreignKey:ActingUserID"`
	CreatedAt       time.Time                  `gorm:"column:created_at;autoCreateTime"`
}
