package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/assetdesk/assetdesk-backend/api/middleware"
)

// actingUser returns the authenticated user id as an optional pointer for
// audit fields, nil on anonymous requests.
func actingUser(r *http.Request) *uuid.UUID {
	if id := middleware.UserIDFromContext(r.Context()); id != uuid.Nil {
		return &id
	}
	return nil
}
