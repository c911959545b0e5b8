package types

import "github.com/assetdesk/assetdesk-backend/pkg/pagination"

// SuccessEnvelope is the wire shape every successful response uses.
type SuccessEnvelope struct {
	Success    bool             `json:"success"`
	Data       any              `json:"data,omitempty"`
	Message    string           `json:"message,omitempty"`
	Pagination *pagination.Page `json:"pagination,omitempty"`
}

// ErrorEnvelope is the wire shape every failed response uses. Internal
// detail never travels in it; only the public message and machine code.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}
