package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/assetdesk/assetdesk-backend/api/responses"
	"github.com/assetdesk/assetdesk-backend/api/validators"
	"github.com/assetdesk/assetdesk-backend/internal/employees"
	"github.com/assetdesk/assetdesk-backend/pkg/logger"
)

type createEmployeeRequest struct {
	EmpID      string    `json:"empId" validate:"required"`
	Name       string    `json:"name" validate:"required"`
	Email      *string   `json:"email,omitempty" validate:"omitempty,email"`
	Position   *string   `json:"position,omitempty"`
	Department *string   `json:"department,omitempty"`
	BranchID   uuid.UUID `json:"branchId" validate:"required"`
}

func CreateEmployee(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createEmployeeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Create(r.Context(), employees.CreateInput{
			EmpID:      payload.EmpID,
			Name:       payload.Name,
			Email:      payload.Email,
			Position:   payload.Position,
			Department: payload.Department,
			BranchID:   payload.BranchID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

func ListEmployees(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID, err := validators.QueryUUID(r, "branchId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views, err := svc.List(r.Context(), employees.ListQuery{
			Search:     r.URL.Query().Get("search"),
			BranchID:   branchID,
			Department: r.URL.Query().Get("department"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

func GetEmployee(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "employeeID")
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

type updateEmployeeRequest struct {
	EmpID      *string    `json:"empId,omitempty"`
	Name       *string    `json:"name,omitempty"`
	Email      *string    `json:"email,omitempty" validate:"omitempty,email"`
	Position   *string    `json:"position,omitempty"`
	Department *string    `json:"department,omitempty"`
	BranchID   *uuid.UUID `json:"branchId,omitempty"`
}

func UpdateEmployee(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "employeeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateEmployeeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Update(r.Context(), id, employees.UpdateInput{
			EmpID:      payload.EmpID,
			Name:       payload.Name,
			Email:      payload.Email,
			Position:   payload.Position,
			Department: payload.Department,
			BranchID:   payload.BranchID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func DeleteEmployee(svc employees.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "employeeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "employee deleted")
	}
}
