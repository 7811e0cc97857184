package backend

import (
	"context"

	"github.com/Kopoklesz/EmployeeManager/internal/export/navxml"
	"github.com/Kopoklesz/EmployeeManager/internal/model"
)

// Local renders the NAV compliance XML instead of transmitting anywhere.
// It is always available and is the fallback for misconfigured systems.
type Local struct {
	exporter *navxml.Exporter
	settings *model.CompanySettings
}

// NewLocal creates the local XML export backend.
func NewLocal(settings *model.CompanySettings) *Local {
	return &Local{exporter: navxml.NewExporter(), settings: settings}
}

func (l *Local) Kind() Kind { return KindLocalXML }

// IsAvailable is always true; no external credential is involved.
func (l *Local) IsAvailable() bool { return true }

// Issue renders the export artifact. The only failure mode is malformed
// input, which surfaces as a render error.
func (l *Local) Issue(_ context.Context, inv *model.Invoice) (*Result, error) {
	data, err := l.exporter.Render(inv, l.settings)
	if err != nil {
		return nil, err
	}
	return &Result{
		Success:    true,
		Message:    "compliance XML generated",
		ExternalID: inv.Number,
		Document:   data,
	}, nil
}

// Cancel needs no remote action for a locally exported document.
func (l *Local) Cancel(context.Context, *model.Invoice, string) (bool, error) {
	return true, nil
}

// DownloadDocument re-renders the artifact; rendering is deterministic, so
// this returns the same bytes as the original issue.
func (l *Local) DownloadDocument(_ context.Context, inv *model.Invoice) ([]byte, error) {
	return l.exporter.Render(inv, l.settings)
}
