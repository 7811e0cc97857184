package model

// CompanySettings holds the seller identity and the billing configuration the
// engine reads: which backend to use, vendor credentials, and the invoice
// number sequence.
type CompanySettings struct {
	// Seller identity, rendered into every document
	CompanyName string `json:"company_name"`
	TaxNumber   string `json:"tax_number"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	Address     string `json:"address"`
	Country     string `json:"country"`
	BankName    string `json:"bank_name,omitempty"`
	BankAccount string `json:"bank_account,omitempty"`
	Email       string `json:"email,omitempty"`

	// Backend selection and credentials. Backend is the configured backend
	// identifier; unknown values fall back to the local XML exporter.
	Backend          string `json:"backend"`
	SzamlazzAgentKey string `json:"szamlazz_agent_key,omitempty"`
	BillingoAPIKey   string `json:"billingo_api_key,omitempty"`
	BillingoBlockID  int    `json:"billingo_block_id,omitempty"`

	// Invoice number sequence; mutated only through the sequencer.
	SequenceKey    string `json:"sequence_key"`
	SequencePrefix string `json:"sequence_prefix"`

	// DefaultDeadlineDays is applied when a draft has no payment deadline.
	DefaultDeadlineDays int `json:"default_deadline_days,omitempty"`
}

// SequenceCounter is the singleton counter record behind invoice numbering.
// Next is the next value to hand out; Version backs optimistic concurrency
// for stores without row locks.
type SequenceCounter struct {
	Key     string `json:"key"`
	Prefix  string `json:"prefix"`
	Next    int64  `json:"next"`
	Version int64  `json:"version"`
}
