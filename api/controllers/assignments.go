package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/assetdesk/assetdesk-backend/api/middleware"
	"github.com/assetdesk/assetdesk-backend/api/responses"
	"github.com/assetdesk/assetdesk-backend/api/validators"
	assignsvc "github.com/assetdesk/assetdesk-backend/internal/assignments"
	"github.com/assetdesk/assetdesk-backend/pkg/logger"
	"github.com/assetdesk/assetdesk-backend/pkg/pagination"
)

type assignRequest struct {
	ProductID        uuid.UUID  `json:"productId" validate:"required"`
	InventoryUnitID  *uuid.UUID `json:"inventoryUnitId,omitempty"`
	EmployeeID       uuid.UUID  `json:"employeeId" validate:"required"`
	PCName           *string    `json:"pcName,omitempty"`
	ExpectedReturnAt *time.Time `json:"expectedReturnAt,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
}

func CreateAssignment(svc assignsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload assignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Assign(r.Context(), assignsvc.AssignInput{
			ProductID:        payload.ProductID,
			InventoryUnitID:  payload.InventoryUnitID,
			EmployeeID:       payload.EmployeeID,
			AssignedByID:     middleware.UserIDFromContext(r.Context()),
			PCName:           payload.PCName,
			ExpectedReturnAt: payload.ExpectedReturnAt,
			Notes:            payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

type returnRequest struct {
	Condition       string  `json:"condition,omitempty"`
	InventoryStatus string  `json:"inventoryStatus,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

func ReturnAssignment(svc assignsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "assignmentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload returnRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Return(r.Context(), id, assignsvc.ReturnInput{
			InventoryStatus: payload.InventoryStatus,
			Condition:       payload.Condition,
			Notes:           payload.Notes,
			ActingUserID:    actingUser(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type updateAssignmentRequest struct {
	PCName           *string    `json:"pcName,omitempty"`
	ExpectedReturnAt *time.Time `json:"expectedReturnAt,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
}

func UpdateAssignment(svc assignsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "assignmentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateAssignmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Update(r.Context(), id, assignsvc.UpdateInput{
			PCName:           payload.PCName,
			ExpectedReturnAt: payload.ExpectedReturnAt,
			Notes:            payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func GetAssignment(svc assignsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "assignmentID")
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

func ListActiveAssignments(svc assignsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		employeeID, err := validators.QueryUUID(r, "employeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.QueryUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		overdueOnly, err := validators.QueryBool(r, "overdue")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views, total, err := svc.ListActive(r.Context(), assignsvc.ActiveQuery{
			Pagination:  params,
			EmployeeID:  employeeID,
			ProductID:   productID,
			Search:      r.URL.Query().Get("search"),
			OverdueOnly: overdueOnly,
			Now:         time.Now().UTC(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessPage(w, views, pagination.NewPage(params, total))
	}
}

func ListAssignmentHistory(svc assignsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		employeeID, err := validators.QueryUUID(r, "employeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.QueryUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := validators.QueryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.QueryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views, total, err := svc.ListHistory(r.Context(), assignsvc.HistoryQuery{
			Pagination: params,
			EmployeeID: employeeID,
			ProductID:  productID,
			From:       from,
			To:         to,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessPage(w, views, pagination.NewPage(params, total))
	}
}

func ListEmployeeAssignments(svc assignsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		employeeID, err := validators.PathUUID(r, "employeeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views, err := svc.ListByEmployee(r.Context(), employeeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

func ListProductAssignments(svc assignsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.PathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views, err := svc.ListByProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

func AssignmentAnalytics(svc assignsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := validators.QueryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.QueryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		analytics, err := svc.Analytics(r.Context(), assignsvc.AnalyticsQuery{From: from, To: to})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, analytics)
	}
}

// PublicAssignmentLookup serves the unauthenticated check screen reached by
// scanning the label on a unit. It exposes the assignment view without
// requiring a login.
func PublicAssignmentLookup(svc assignsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "assignmentID")
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
