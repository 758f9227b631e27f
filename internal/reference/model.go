// Package reference caches backend reference data locally so draft
// screens can populate account, product, and party pickers without a
// round trip per keystroke. The books backend stays authoritative.
package reference

// Account is a ledger account as published by the backend.
type Account struct {
	ID     int64  `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Active bool   `json:"active"`
}

// Product is a sellable or purchasable item.
type Product struct {
	ID             int64   `json:"id"`
	SKU            string  `json:"sku"`
	Name           string  `json:"name"`
	UnitPrice      float64 `json:"unit_price"`
	TaxRatePercent float64 `json:"tax_rate_percent"`
	HSNCode        string  `json:"hsn_code,omitempty"`
	Active         bool    `json:"active"`
}

// Party is a customer or supplier.
type Party struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	GSTIN string `json:"gstin,omitempty"`
	State string `json:"state,omitempty"`
}
