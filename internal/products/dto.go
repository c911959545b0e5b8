package products

import (
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/google/uuid"
)

// Stock status labels derived from available unit counts.
const (
	StockStatusOut       = "OUT_OF_STOCK"
	StockStatusLow       = "LOW_STOCK"
	StockStatusAvailable = "AVAILABLE"
)

// NameRef is a minimal reference to a named entity.
type NameRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// StockInfo aggregates a product's units for read paths.
type StockInfo struct {
	Total       int64  `json:"total"`
	Available   int64  `json:"available"`
	Assigned    int64  `json:"assigned"`
	Damaged     int64  `json:"damaged"`
	Maintenance int64  `json:"maintenance"`
	Retired     int64  `json:"retired"`
	StockStatus string `json:"stockStatus"`
}

// Status derives the stock label the dashboard and list filters use.
func (s StockInfo) status(minStockLevel int) string {
	switch {
	case s.Available == 0:
		return StockStatusOut
	case s.Available <= int64(minStockLevel):
		return StockStatusLow
	default:
		return StockStatusAvailable
	}
}

// View is the API shape of a product.
type View struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Model            string    `json:"model"`
	Category         *NameRef  `json:"category,omitempty"`
	Branch           *NameRef  `json:"branch,omitempty"`
	Department       *NameRef  `json:"department,omitempty"`
	WarrantyMonths   *int      `json:"warrantyMonths"`
	ComplianceStatus bool      `json:"complianceStatus"`
	MinStockLevel    int       `json:"minStockLevel"`
	Description      *string   `json:"description"`
	StockInfo        StockInfo `json:"stockInfo"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// NewView builds the response shape for one product with its stock rollup.
func NewView(p models.Product, stock StockInfo) View {
	stock.StockStatus = stock.status(p.MinStockLevel)

	view := View{
		ID:               p.ID,
		Name:             p.Name,
		Model:            p.Model,
		WarrantyMonths:   p.WarrantyMonths,
		ComplianceStatus: p.ComplianceStatus,
		MinStockLevel:    p.MinStockLevel,
		Description:      p.Description,
		StockInfo:        stock,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.Category != nil {
		view.Category = &NameRef{ID: p.Category.ID, Name: p.Category.Name}
	}
	if p.Branch != nil {
		view.Branch = &NameRef{ID: p.Branch.ID, Name: p.Branch.Name}
	}
	if p.Department != nil {
		view.Department = &NameRef{ID: p.Department.ID, Name: p.Department.Name}
	}
	return view
}
