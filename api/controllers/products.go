package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/assetdesk/assetdesk-backend/api/responses"
	"github.com/assetdesk/assetdesk-backend/api/validators"
	productsvc "github.com/assetdesk/assetdesk-backend/internal/products"
	"github.com/assetdesk/assetdesk-backend/pkg/logger"
	"github.com/assetdesk/assetdesk-backend/pkg/pagination"
)

type createProductRequest struct {
	Name             string           `json:"name" validate:"required"`
	Model            string           `json:"model" validate:"required"`
	CategoryID       uuid.UUID        `json:"categoryId" validate:"required"`
	BranchID         uuid.UUID        `json:"branchId" validate:"required"`
	DepartmentID     *uuid.UUID       `json:"departmentId,omitempty"`
	WarrantyMonths   *int             `json:"warrantyMonths,omitempty" validate:"omitempty,min=0"`
	ComplianceStatus bool             `json:"complianceStatus"`
	MinStockLevel    int              `json:"minStockLevel" validate:"omitempty,min=0"`
	Description      *string          `json:"description,omitempty"`
	InitialStock     int              `json:"initialStock" validate:"omitempty,min=0,max=100"`
	SerialNumbers    []string         `json:"serialNumbers,omitempty"`
	PurchaseDate     *time.Time       `json:"purchaseDate,omitempty"`
	PurchasePrice    *decimal.Decimal `json:"purchasePrice,omitempty"`
	Location         *string          `json:"location,omitempty"`
}

func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Create(r.Context(), productsvc.CreateInput{
			Name:             payload.Name,
			Model:            payload.Model,
			CategoryID:       payload.CategoryID,
			BranchID:         payload.BranchID,
			DepartmentID:     payload.DepartmentID,
			WarrantyMonths:   payload.WarrantyMonths,
			ComplianceStatus: payload.ComplianceStatus,
			MinStockLevel:    payload.MinStockLevel,
			Description:      payload.Description,
			InitialStock:     payload.InitialStock,
			SerialNumbers:    payload.SerialNumbers,
			PurchaseDate:     payload.PurchaseDate,
			PurchasePrice:    payload.PurchasePrice,
			Location:         payload.Location,
			ActingUserID:     actingUser(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categoryID, err := validators.QueryUUID(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		branchID, err := validators.QueryUUID(r, "branchId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		departmentID, err := validators.QueryUUID(r, "departmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views, total, err := svc.List(r.Context(), productsvc.ListQuery{
			Pagination:   params,
			Search:       r.URL.Query().Get("search"),
			CategoryID:   categoryID,
			BranchID:     branchID,
			DepartmentID: departmentID,
			StockStatus:  r.URL.Query().Get("stockStatus"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessPage(w, views, pagination.NewPage(params, total))
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type updateProductRequest struct {
	Name             *string    `json:"name,omitempty"`
	Model            *string    `json:"model,omitempty"`
	CategoryID       *uuid.UUID `json:"categoryId,omitempty"`
	BranchID         *uuid.UUID `json:"branchId,omitempty"`
	DepartmentID     *uuid.UUID `json:"departmentId,omitempty"`
	ClearDepartment  bool       `json:"clearDepartment,omitempty"`
	WarrantyMonths   *int       `json:"warrantyMonths,omitempty" validate:"omitempty,min=0"`
	ComplianceStatus *bool      `json:"complianceStatus,omitempty"`
	MinStockLevel    *int       `json:"minStockLevel,omitempty" validate:"omitempty,min=0"`
	Description      *string    `json:"description,omitempty"`
}

func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Update(r.Context(), id, productsvc.UpdateInput{
			Name:             payload.Name,
			Model:            payload.Model,
			CategoryID:       payload.CategoryID,
			BranchID:         payload.BranchID,
			DepartmentID:     payload.DepartmentID,
			ClearDepartment:  payload.ClearDepartment,
			WarrantyMonths:   payload.WarrantyMonths,
			ComplianceStatus: payload.ComplianceStatus,
			MinStockLevel:    payload.MinStockLevel,
			Description:      payload.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "product deleted")
	}
}

func LowStockProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.LowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
