package model

import "time"

// Customer is the billed party as the invoice engine sees it. CRUD lives
// outside this core; the engine only reads these fields.
type Customer struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	TaxNumber  string    `json:"tax_number,omitempty"`
	Email      string    `json:"email,omitempty"`
	PostalCode string    `json:"postal_code"`
	City       string    `json:"city"`
	Address    string    `json:"address"`
	Country    string    `json:"country"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}
