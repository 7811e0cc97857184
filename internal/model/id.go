package model

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// ID prefixes for the billing domain entities.
const (
	IDPrefixInvoice     = "inv"
	IDPrefixInvoiceItem = "item"
	IDPrefixCustomer    = "cust"
)

// GenerateID returns a k-sortable unique identifier, e.g. inv_01J9ZK....
func GenerateID(prefix string) string {
	if prefix == "" {
		return ulid.Make().String()
	}
	return fmt.Sprintf("%s_%s", prefix, ulid.Make().String())
}
