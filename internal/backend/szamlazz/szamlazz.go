// Package szamlazz implements the Számlázz.hu agent adapter: the invoice is
// translated into the vendor's XML request, POSTed, and the outcome read back
// from the szlahu_* response headers. Customer data travels inline in the
// request, so no separate partner call is needed.
package szamlazz

import (
	"context"
	"net/http"

	"github.com/beevik/etree"

	"github.com/Kopoklesz/EmployeeManager/internal/backend"
	ierr "github.com/Kopoklesz/EmployeeManager/internal/errors"
	"github.com/Kopoklesz/EmployeeManager/internal/httpclient"
	"github.com/Kopoklesz/EmployeeManager/internal/logger"
	"github.com/Kopoklesz/EmployeeManager/internal/model"
	"github.com/Kopoklesz/EmployeeManager/internal/money"
)

const (
	// DefaultBaseURL is the vendor agent endpoint.
	DefaultBaseURL = "https://www.szamlazz.hu/szamla/"

	namespaceInvoice = "http://www.szamlazz.hu/xmlszamla"
	namespaceStorno  = "http://www.szamlazz.hu/xmlszamlast"
	namespacePDF     = "http://www.szamlazz.hu/xmlszamlapdf"

	headerError  = "szlahu_error"
	headerNumber = "szlahu_szamlaszam"
	headerURL    = "szlahu_vevoifiokurl"
)

// Config holds the adapter configuration.
type Config struct {
	AgentKey string
	BaseURL  string
}

// Adapter is the Számlázz.hu billing backend.
type Adapter struct {
	config   Config
	settings *model.CompanySettings
	client   httpclient.Client
	log      *logger.Logger
}

// New creates the adapter. The base URL defaults to the production endpoint.
func New(config Config, settings *model.CompanySettings, client httpclient.Client, log *logger.Logger) *Adapter {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Adapter{config: config, settings: settings, client: client, log: log}
}

func (a *Adapter) Kind() backend.Kind { return backend.KindSzamlazz }

// IsAvailable reports whether the agent key is configured.
func (a *Adapter) IsAvailable() bool { return a.config.AgentKey != "" }

func paymentMethodLabel(m model.PaymentMethod) string {
	switch m {
	case model.PaymentMethodTransfer:
		return "átutalás"
	case model.PaymentMethodCash:
		return "készpénz"
	case model.PaymentMethodCard:
		return "bankkártya"
	default:
		return "egyéb"
	}
}

func vatLabel(vat money.VatTreatment) string {
	if vat.IsExempt() {
		return vat.ExemptionCode()
	}
	return vat.Rate().StringFixed(0)
}

func addText(parent *etree.Element, tag, value string) {
	parent.CreateElement(tag).SetText(value)
}

// buildIssueRequest renders the xmlszamla agent document. The amounts come
// verbatim from the calculator so the vendor's document matches ours.
func (a *Adapter) buildIssueRequest(inv *model.Invoice) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("xmlszamla")
	root.CreateAttr("xmlns", namespaceInvoice)

	settings := root.CreateElement("beallitasok")
	addText(settings, "szamlaagentkulcs", a.config.AgentKey)
	addText(settings, "eszamla", "true")
	addText(settings, "szamlaLetoltes", "true")

	header := root.CreateElement("fejlec")
	addText(header, "keltDatum", inv.IssueDate.Format("2006-01-02"))
	addText(header, "teljesitesDatum", inv.DeliveryDate.Format("2006-01-02"))
	addText(header, "fizetesiHataridoDatum", inv.PaymentDeadline.Format("2006-01-02"))
	addText(header, "fizmod", paymentMethodLabel(inv.PaymentMethod))
	addText(header, "penznem", inv.Currency)
	addText(header, "arfolyam", inv.ExchangeRate.StringFixed(6))
	addText(header, "rendelesSzam", inv.Number)
	if inv.Notes != "" {
		addText(header, "megjegyzes", inv.Notes)
	}
	if inv.ReverseCharge {
		addText(header, "forditottAdozas", "true")
	}

	seller := root.CreateElement("elado")
	if a.settings.BankName != "" {
		addText(seller, "bank", a.settings.BankName)
	}
	if a.settings.BankAccount != "" {
		addText(seller, "bankszamlaszam", a.settings.BankAccount)
	}

	buyer := root.CreateElement("vevo")
	addText(buyer, "nev", inv.Customer.Name)
	addText(buyer, "irsz", inv.Customer.PostalCode)
	addText(buyer, "telepules", inv.Customer.City)
	addText(buyer, "cim", inv.Customer.Address)
	if inv.Customer.Email != "" {
		addText(buyer, "email", inv.Customer.Email)
	}
	if inv.Customer.TaxNumber != "" {
		addText(buyer, "adoszam", inv.Customer.TaxNumber)
	}

	items := root.CreateElement("tetelek")
	for i := range inv.Items {
		it := &inv.Items[i]
		item := items.CreateElement("tetel")
		addText(item, "megnevezes", it.Description)
		addText(item, "mennyiseg", it.Quantity.String())
		addText(item, "mennyisegiEgyseg", it.Unit)
		addText(item, "nettoEgysegar", it.UnitPrice.StringFixed(2))
		addText(item, "afakulcs", vatLabel(it.Vat))
		addText(item, "nettoErtek", it.Amounts.Net.StringFixed(2))
		addText(item, "afaErtek", it.Amounts.VAT.StringFixed(2))
		addText(item, "bruttoErtek", it.Amounts.Gross.StringFixed(2))
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

func (a *Adapter) post(ctx context.Context, body []byte) (*httpclient.Response, error) {
	return a.client.Send(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    a.config.BaseURL,
		Headers: map[string]string{
			"Content-Type": "application/xml; charset=utf-8",
		},
		Body: body,
	})
}

// vendorFailure normalizes a vendor rejection: the raw vendor text is carried
// to the caller, never swallowed into a local error.
func vendorFailure(resp *httpclient.Response) *backend.Result {
	msg := resp.Header(headerError)
	if msg == "" {
		msg = string(resp.Body)
	}
	return &backend.Result{Success: false, Message: msg}
}

// Issue transmits the invoice. Called exactly once per issuance attempt; a
// rejection is a failed Result, a transport problem is an error, and neither
// triggers a hidden retry.
func (a *Adapter) Issue(ctx context.Context, inv *model.Invoice) (*backend.Result, error) {
	body, err := a.buildIssueRequest(inv)
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrRender)
	}

	resp, err := a.post(ctx, body)
	if err != nil {
		return nil, err
	}
	if !resp.Success() || resp.Header(headerError) != "" {
		a.log.Warnw("szamlazz rejected the invoice",
			"invoice", inv.Number, "status", resp.StatusCode, "error", resp.Header(headerError))
		return vendorFailure(resp), nil
	}

	return &backend.Result{
		Success:     true,
		Message:     "invoice transmitted",
		ExternalID:  resp.Header(headerNumber),
		DocumentURL: resp.Header(headerURL),
		Document:    resp.Body,
	}, nil
}

// Cancel posts a storno request for the vendor-side document.
func (a *Adapter) Cancel(ctx context.Context, inv *model.Invoice, reason string) (bool, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("xmlszamlast")
	root.CreateAttr("xmlns", namespaceStorno)

	settings := root.CreateElement("beallitasok")
	addText(settings, "szamlaagentkulcs", a.config.AgentKey)
	header := root.CreateElement("fejlec")
	addText(header, "szamlaszam", inv.ExternalID)
	if reason != "" {
		addText(header, "megjegyzes", reason)
	}

	doc.Indent(2)
	body, err := doc.WriteToBytes()
	if err != nil {
		return false, ierr.WithError(err).Mark(ierr.ErrRender)
	}

	resp, err := a.post(ctx, body)
	if err != nil {
		return false, err
	}
	if !resp.Success() || resp.Header(headerError) != "" {
		return false, ierr.NewError("szamlazz cancel rejected").
			WithHint("The vendor refused to cancel the invoice").
			WithReportableDetails(map[string]any{
				"invoice": inv.Number,
				"vendor":  resp.Header(headerError),
				"status":  resp.StatusCode,
			}).
			Mark(ierr.ErrBackend)
	}
	return true, nil
}

// DownloadDocument fetches the vendor PDF for an already-transmitted invoice.
func (a *Adapter) DownloadDocument(ctx context.Context, inv *model.Invoice) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("xmlszamlapdf")
	root.CreateAttr("xmlns", namespacePDF)
	addText(root, "szamlaagentkulcs", a.config.AgentKey)
	addText(root, "szamlaszam", inv.ExternalID)

	doc.Indent(2)
	body, err := doc.WriteToBytes()
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrRender)
	}

	resp, err := a.post(ctx, body)
	if err != nil {
		return nil, err
	}
	if !resp.Success() || resp.Header(headerError) != "" {
		return nil, ierr.NewError("szamlazz document download failed").
			WithReportableDetails(map[string]any{
				"invoice": inv.Number,
				"vendor":  resp.Header(headerError),
				"status":  resp.StatusCode,
			}).
			Mark(ierr.ErrBackend)
	}
	return resp.Body, nil
}
