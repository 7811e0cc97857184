package server

import (
	"time"

	"github.com/Kopoklesz/EmployeeManager/internal/model"
)

// InvoiceResponse is one invoice as the API reports it. DisplayStatus
// substitutes OVERDUE where the deadline has passed; the persisted status is
// still present on the embedded invoice.
type InvoiceResponse struct {
	*model.Invoice
	DisplayStatus model.InvoiceStatus `json:"display_status"`
}

// IssueResponse is the outcome of an issue or resend call.
type IssueResponse struct {
	Invoice     InvoiceResponse `json:"invoice"`
	ExternalID  string          `json:"external_id,omitempty"`
	DocumentURL string          `json:"document_url,omitempty"`
	Message     string          `json:"message,omitempty"`
}

// BackendResponse reports one registered billing backend.
type BackendResponse struct {
	Kind      string `json:"kind"`
	Available bool   `json:"available"`
	Active    bool   `json:"active"`
}

// PayRequest optionally carries the payment date; defaults to now.
type PayRequest struct {
	PaidAt *time.Time `json:"paid_at"`
}

// CancelRequest carries the cancellation reason passed on to the vendor.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
