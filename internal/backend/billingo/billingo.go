// Package billingo implements the Billingo v3 adapter: JSON over HTTP with an
// X-API-KEY header. Billingo has no partner upsert, so the adapter searches
// partners by name first and creates one only on a miss.
package billingo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Kopoklesz/EmployeeManager/internal/backend"
	ierr "github.com/Kopoklesz/EmployeeManager/internal/errors"
	"github.com/Kopoklesz/EmployeeManager/internal/httpclient"
	"github.com/Kopoklesz/EmployeeManager/internal/logger"
	"github.com/Kopoklesz/EmployeeManager/internal/model"
	"github.com/Kopoklesz/EmployeeManager/internal/money"
)

// DefaultBaseURL is the vendor API root.
const DefaultBaseURL = "https://api.billingo.hu/v3"

// Config holds the adapter configuration. BlockID selects the vendor-side
// document block (their numbering range) the documents are created in.
type Config struct {
	APIKey  string
	BaseURL string
	BlockID int
}

// Adapter is the Billingo billing backend.
type Adapter struct {
	config Config
	client httpclient.Client
	log    *logger.Logger
}

// New creates the adapter. The base URL defaults to the production API.
func New(config Config, client httpclient.Client, log *logger.Logger) *Adapter {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Adapter{config: config, client: client, log: log}
}

func (a *Adapter) Kind() backend.Kind { return backend.KindBillingo }

// IsAvailable reports whether the API key is configured.
func (a *Adapter) IsAvailable() bool { return a.config.APIKey != "" }

func (a *Adapter) send(ctx context.Context, method, path string, payload any) (*httpclient.Response, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, ierr.WithError(err).Mark(ierr.ErrHTTPClient)
		}
	}
	return a.client.Send(ctx, &httpclient.Request{
		Method: method,
		URL:    a.config.BaseURL + path,
		Headers: map[string]string{
			"X-API-KEY":    a.config.APIKey,
			"Content-Type": "application/json",
		},
		Body: body,
	})
}

type partner struct {
	ID      int            `json:"id,omitempty"`
	Name    string         `json:"name"`
	Emails  []string       `json:"emails,omitempty"`
	Taxcode string         `json:"taxcode,omitempty"`
	Address partnerAddress `json:"address"`
}

type partnerAddress struct {
	CountryCode string `json:"country_code"`
	PostCode    string `json:"post_code"`
	City        string `json:"city"`
	Address     string `json:"address"`
}

type partnerList struct {
	Data []partner `json:"data"`
}

func toPartner(c *model.Customer) partner {
	p := partner{
		Name:    c.Name,
		Taxcode: c.TaxNumber,
		Address: partnerAddress{
			CountryCode: c.Country,
			PostCode:    c.PostalCode,
			City:        c.City,
			Address:     c.Address,
		},
	}
	if p.Address.CountryCode == "" {
		p.Address.CountryCode = "HU"
	}
	if c.Email != "" {
		p.Emails = []string{c.Email}
	}
	return p
}

// ensurePartner returns the vendor partner id for the customer, searching by
// name before creating. Search-then-create is the idempotency strategy this
// vendor supports.
func (a *Adapter) ensurePartner(ctx context.Context, c *model.Customer) (int, error) {
	resp, err := a.send(ctx, http.MethodGet, "/partners?query="+url.QueryEscape(c.Name), nil)
	if err != nil {
		return 0, err
	}
	if resp.Success() {
		var list partnerList
		if err := json.Unmarshal(resp.Body, &list); err == nil {
			for _, p := range list.Data {
				if p.Name == c.Name {
					return p.ID, nil
				}
			}
		}
	}

	resp, err = a.send(ctx, http.MethodPost, "/partners", toPartner(c))
	if err != nil {
		return 0, err
	}
	if !resp.Success() {
		return 0, ierr.NewError("billingo partner creation rejected").
			WithReportableDetails(map[string]any{
				"status": resp.StatusCode,
				"vendor": string(resp.Body),
			}).
			Mark(ierr.ErrBackend)
	}

	var created partner
	if err := json.Unmarshal(resp.Body, &created); err != nil {
		return 0, ierr.WithError(err).Mark(ierr.ErrBackend)
	}
	return created.ID, nil
}

type documentItem struct {
	Name          string `json:"name"`
	UnitPrice     string `json:"unit_price"`
	UnitPriceType string `json:"unit_price_type"`
	Quantity      string `json:"quantity"`
	Unit          string `json:"unit"`
	Vat           string `json:"vat"`
	Comment       string `json:"comment,omitempty"`
}

type documentRequest struct {
	PartnerID       int            `json:"partner_id"`
	BlockID         int            `json:"block_id"`
	Type            string         `json:"type"`
	FulfillmentDate string         `json:"fulfillment_date"`
	DueDate         string         `json:"due_date"`
	PaymentMethod   string         `json:"payment_method"`
	Currency        string         `json:"currency"`
	ConversionRate  string         `json:"conversion_rate"`
	Comment         string         `json:"comment,omitempty"`
	Items           []documentItem `json:"items"`
}

type documentResponse struct {
	ID            int    `json:"id"`
	InvoiceNumber string `json:"invoice_number"`
	PublicURL     string `json:"public_url"`
}

func paymentMethodLabel(m model.PaymentMethod) string {
	switch m {
	case model.PaymentMethodTransfer:
		return "wire_transfer"
	case model.PaymentMethodCash:
		return "cash"
	case model.PaymentMethodCard:
		return "bankcard"
	default:
		return "other"
	}
}

func vatLabel(vat money.VatTreatment) string {
	if vat.IsExempt() {
		return vat.ExemptionCode()
	}
	return vat.Rate().StringFixed(0) + "%"
}

func (a *Adapter) toDocument(inv *model.Invoice, partnerID int) documentRequest {
	items := make([]documentItem, len(inv.Items))
	for i := range inv.Items {
		it := &inv.Items[i]
		comment := ""
		if it.Vat.IsExempt() {
			comment = it.Vat.ExemptionReason()
		}
		items[i] = documentItem{
			Name:          it.Description,
			UnitPrice:     it.UnitPrice.StringFixed(2),
			UnitPriceType: "net",
			Quantity:      it.Quantity.String(),
			Unit:          it.Unit,
			Vat:           vatLabel(it.Vat),
			Comment:       comment,
		}
	}

	return documentRequest{
		PartnerID:       partnerID,
		BlockID:         a.config.BlockID,
		Type:            "invoice",
		FulfillmentDate: inv.DeliveryDate.Format("2006-01-02"),
		DueDate:         inv.PaymentDeadline.Format("2006-01-02"),
		PaymentMethod:   paymentMethodLabel(inv.PaymentMethod),
		Currency:        inv.Currency,
		ConversionRate:  inv.ExchangeRate.StringFixed(6),
		Comment:         inv.Notes,
		Items:           items,
	}
}

// Issue creates the document at the vendor. A non-2xx answer is a failed
// Result carrying the vendor's raw body; the adapter never retries.
func (a *Adapter) Issue(ctx context.Context, inv *model.Invoice) (*backend.Result, error) {
	partnerID, err := a.ensurePartner(ctx, inv.Customer)
	if err != nil {
		return nil, err
	}

	resp, err := a.send(ctx, http.MethodPost, "/documents", a.toDocument(inv, partnerID))
	if err != nil {
		return nil, err
	}
	if !resp.Success() {
		a.log.Warnw("billingo rejected the invoice",
			"invoice", inv.Number, "status", resp.StatusCode)
		return &backend.Result{Success: false, Message: string(resp.Body)}, nil
	}

	var doc documentResponse
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return nil, ierr.WithError(err).
			WithHint("The vendor returned an unreadable document response").
			Mark(ierr.ErrBackend)
	}

	return &backend.Result{
		Success:     true,
		Message:     "invoice transmitted",
		ExternalID:  fmt.Sprintf("%d", doc.ID),
		DocumentURL: doc.PublicURL,
	}, nil
}

// Cancel voids the vendor-side document.
func (a *Adapter) Cancel(ctx context.Context, inv *model.Invoice, reason string) (bool, error) {
	payload := map[string]string{}
	if reason != "" {
		payload["reason"] = reason
	}
	resp, err := a.send(ctx, http.MethodPost, "/documents/"+inv.ExternalID+"/cancel", payload)
	if err != nil {
		return false, err
	}
	if !resp.Success() {
		return false, ierr.NewError("billingo cancel rejected").
			WithReportableDetails(map[string]any{
				"invoice": inv.Number,
				"status":  resp.StatusCode,
				"vendor":  string(resp.Body),
			}).
			Mark(ierr.ErrBackend)
	}
	return true, nil
}

// DownloadDocument fetches the vendor PDF.
func (a *Adapter) DownloadDocument(ctx context.Context, inv *model.Invoice) ([]byte, error) {
	resp, err := a.send(ctx, http.MethodGet, "/documents/"+inv.ExternalID+"/download", nil)
	if err != nil {
		return nil, err
	}
	if !resp.Success() {
		return nil, ierr.NewError("billingo document download failed").
			WithReportableDetails(map[string]any{
				"invoice": inv.Number,
				"status":  resp.StatusCode,
				"vendor":  string(resp.Body),
			}).
			Mark(ierr.ErrBackend)
	}
	return resp.Body, nil
}
