// Package backend defines the pluggable billing backend abstraction: one
// capability set implemented by the local compliance exporter and the two
// online invoicing vendors. Callers invoke Issue exactly once per transition;
// retries are the orchestrator's decision, never hidden inside an adapter.
package backend

import (
	"context"

	"github.com/samber/lo"

	ierr "github.com/Kopoklesz/EmployeeManager/internal/errors"
	"github.com/Kopoklesz/EmployeeManager/internal/model"
)

// Kind identifies a billing backend.
type Kind string

const (
	// KindLocalXML is the NAV XML exporter, the only backend needing no credential
	KindLocalXML Kind = "local_xml"
	// KindSzamlazz is the Számlázz.hu XML agent
	KindSzamlazz Kind = "szamlazz"
	// KindBillingo is the Billingo JSON API
	KindBillingo Kind = "billingo"
)

func (k Kind) String() string {
	return string(k)
}

func (k Kind) Validate() error {
	allowed := []Kind{KindLocalXML, KindSzamlazz, KindBillingo}
	if !lo.Contains(allowed, k) {
		return ierr.NewError("invalid billing backend").
			WithHint("Please configure a known billing backend").
			WithReportableDetails(map[string]any{
				"backend": k,
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Result is the normalized outcome of an issue call. A vendor rejection is a
// Result with Success=false carrying the vendor's raw error text, not a Go
// error; errors are reserved for transport and local failures.
type Result struct {
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	ExternalID  string `json:"external_id,omitempty"`
	DocumentURL string `json:"document_url,omitempty"`
	Document    []byte `json:"-"`
}

// Backend is the uniform contract over all billing strategies.
type Backend interface {
	// Issue renders/transmits the invoice. Called exactly once per issuance
	// attempt; the invoice number is already allocated and durable.
	Issue(ctx context.Context, inv *model.Invoice) (*Result, error)

	// Cancel voids the document at the vendor (or locally).
	Cancel(ctx context.Context, inv *model.Invoice, reason string) (bool, error)

	// DownloadDocument fetches the rendered artifact.
	DownloadDocument(ctx context.Context, inv *model.Invoice) ([]byte, error)

	// IsAvailable reports whether the required credential is configured.
	IsAvailable() bool

	// Kind identifies the backend.
	Kind() Kind
}
