package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/assetdesk/assetdesk-backend/api/responses"
	"github.com/assetdesk/assetdesk-backend/api/validators"
	inventorysvc "github.com/assetdesk/assetdesk-backend/internal/inventory"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/assetdesk/assetdesk-backend/pkg/logger"
	"github.com/assetdesk/assetdesk-backend/pkg/pagination"
)

type addUnitsRequest struct {
	Quantity      int              `json:"quantity" validate:"required,min=1,max=100"`
	SerialNumbers []string         `json:"serialNumbers,omitempty"`
	Condition     string           `json:"condition,omitempty"`
	PurchaseDate  *time.Time       `json:"purchaseDate,omitempty"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice,omitempty"`
	Location      *string          `json:"location,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

func AddUnits(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload addUnitsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchaseDate := time.Now().UTC()
		if payload.PurchaseDate != nil {
			purchaseDate = *payload.PurchaseDate
		}
		units, err := svc.AddUnits(r.Context(), inventorysvc.AddUnitsInput{
			ProductID:     productID,
			Quantity:      payload.Quantity,
			SerialNumbers: payload.SerialNumbers,
			Condition:     payload.Condition,
			PurchaseDate:  purchaseDate,
			PurchasePrice: payload.PurchasePrice,
			Location:      payload.Location,
			Notes:         payload.Notes,
			ActingUserID:  actingUser(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, inventorysvc.NewViews(units))
	}
}

func ListUnits(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.QueryUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *enums.UnitStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			parsed, err := enums.ParseUnitStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
				return
			}
			status = &parsed
		}

		units, total, err := svc.ListUnits(r.Context(), inventorysvc.ListQuery{
			Pagination: params,
			ProductID:  productID,
			Status:     status,
			Search:     r.URL.Query().Get("search"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessPage(w, inventorysvc.NewViews(units), pagination.NewPage(params, total))
	}
}

// AvailableUnits lists a product's units still free to hand out, oldest
// intake first.
func AvailableUnits(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := enums.UnitStatusAvailable
		units, total, err := svc.ListUnits(r.Context(), inventorysvc.ListQuery{
			Pagination: params,
			ProductID:  &productID,
			Status:     &status,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessPage(w, inventorysvc.NewViews(units), pagination.NewPage(params, total))
	}
}

func GetUnit(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "unitID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unit, err := svc.GetUnit(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, inventorysvc.NewView(*unit))
	}
}

type updateUnitRequest struct {
	SerialNumber  *string          `json:"serialNumber,omitempty"`
	Status        *string          `json:"status,omitempty"`
	Condition     *string          `json:"condition,omitempty"`
	PurchaseDate  *time.Time       `json:"purchaseDate,omitempty"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice,omitempty"`
	Location      *string          `json:"location,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
	Reason        string           `json:"reason,omitempty"`
}

func UpdateUnit(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "unitID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateUnitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *enums.UnitStatus
		if payload.Status != nil {
			parsed, err := enums.ParseUnitStatus(*payload.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
				return
			}
			status = &parsed
		}

		unit, err := svc.UpdateUnit(r.Context(), id, inventorysvc.UpdateUnitInput{
			SerialNumber:  payload.SerialNumber,
			Status:        status,
			Condition:     payload.Condition,
			PurchaseDate:  payload.PurchaseDate,
			PurchasePrice: payload.PurchasePrice,
			Location:      payload.Location,
			Notes:         payload.Notes,
			Reason:        payload.Reason,
			ActingUserID:  actingUser(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, inventorysvc.NewView(*unit))
	}
}

type retireUnitRequest struct {
	Reason string `json:"reason,omitempty"`
}

func RetireUnit(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "unitID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload retireUnitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unit, err := svc.RetireUnit(r.Context(), id, inventorysvc.RetireInput{
			Reason:       payload.Reason,
			ActingUserID: actingUser(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, inventorysvc.NewView(*unit))
	}
}

func DeleteUnit(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "unitID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteUnit(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "unit deleted")
	}
}

type bulkDeleteUnitsRequest struct {
	UnitIDs []uuid.UUID `json:"unitIds" validate:"required,min=1"`
}

// BulkDeleteUnits removes a batch of units permanently. One bad id fails the
// whole batch.
func BulkDeleteUnits(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload bulkDeleteUnitsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteUnits(r.Context(), payload.UnitIDs); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, fmt.Sprintf("%d inventory units deleted", len(payload.UnitIDs)))
	}
}

func ProductStockCounts(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		counts, err := svc.StatusCounts(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, counts)
	}
}

// PublicUnitLookup serves the unauthenticated check screen reached by
// scanning the label on a unit, including whoever currently holds it.
func PublicUnitLookup(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "unitID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.PublicUnitInfo(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
