package stock

import (
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	"github.com/google/uuid"
)

// UnitRef is the unit slice embedded in a log entry view.
type UnitRef struct {
	ID           uuid.UUID `json:"id"`
	SerialNumber *string   `json:"serialNumber"`
}

// ProductRef is the product slice embedded in a log entry view.
type ProductRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Model string    `json:"model"`
}

// UserRef is the acting user slice embedded in a log entry view.
type UserRef struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// View is the API shape of a stock transaction log entry.
type View struct {
	ID              uuid.UUID                  `json:"id"`
	InventoryUnitID uuid.UUID                  `json:"inventoryUnitId"`
	Unit            *UnitRef                   `json:"unit,omitempty"`
	Product         *ProductRef                `json:"product,omitempty"`
	Type            enums.StockTransactionType `json:"type"`
	Quantity        int                        `json:"quantity"`
	Reason          string                     `json:"reason"`
	Reference       string                     `json:"reference"`
	ActingUser      *UserRef                   `json:"actingUser,omitempty"`
	CreatedAt       time.Time                  `json:"createdAt"`
}

// NewView converts a log entry into its API shape.
func NewView(entry models.StockTransaction) View {
	view := View{
		ID:              entry.ID,
		InventoryUnitID: entry.InventoryUnitID,
		Type:            entry.Type,
		Quantity:        entry.Quantity,
		Reason:          entry.Reason,
		Reference:       entry.Reference,
		CreatedAt:       entry.CreatedAt,
	}
	if entry.InventoryUnit != nil {
		view.Unit = &UnitRef{ID: entry.InventoryUnit.ID, SerialNumber: entry.InventoryUnit.SerialNumber}
		if entry.InventoryUnit.Product != nil {
			p := entry.InventoryUnit.Product
			view.Product = &ProductRef{ID: p.ID, Name: p.Name, Model: p.Model}
		}
	}
	if entry.ActingUser != nil {
		view.ActingUser = &UserRef{ID: entry.ActingUser.ID, Username: entry.ActingUser.Username}
	}
	return view
}

// NewViews converts a page of log entries.
func NewViews(entries []models.StockTransaction) []View {
	views := make([]View, 0, len(entries))
	for _, entry := range entries {
		views = append(views, NewView(entry))
	}
	return views
}
