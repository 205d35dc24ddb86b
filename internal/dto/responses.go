package dto

import (
	"github.com/navipay/port-requests/internal/model"
)

type RequestListResponse struct {
	Data       []model.Request `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

type AttachmentResponse struct {
	Kind      model.AttachmentKind `json:"kind"`
	Reference string               `json:"reference"`
	Status    model.RequestStatus  `json:"status"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorListResponse struct {
	Error  string            `json:"error"`
	Errors []ValidationError `json:"errors,omitempty"`
}
