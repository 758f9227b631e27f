package gateway

import (
	"github.com/shopspring/decimal"

	"github.com/draftdesk/draftdesk/internal/documents"
)

// Round2 rounds a monetary amount to two decimals for the wire. The
// engine carries full float64 precision internally; rounding happens only
// here, when a submission payload is built.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// VoucherLinePayload mirrors one ledger line of the submission request.
type VoucherLinePayload struct {
	AccountID      int64   `json:"account_id"`
	Debit          float64 `json:"debit"`
	Credit         float64 `json:"credit"`
	Description    string  `json:"description,omitempty"`
	GSTRatePercent float64 `json:"gst_rate_percent,omitempty"`
	GSTAmount      float64 `json:"gst_amount,omitempty"`
	CostCenterID   *int64  `json:"cost_center_id,omitempty"`
}

// VoucherPayload is the outbound request body for ledger voucher types.
type VoucherPayload struct {
	VoucherNumber string               `json:"voucher_number"`
	VoucherDate   string               `json:"voucher_date"`
	TenantID      int64                `json:"tenant_id"`
	Narration     string               `json:"narration,omitempty"`
	TotalAmount   float64              `json:"total_amount"`
	Lines         []VoucherLinePayload `json:"lines"`
}

// ItemPayload mirrors one product line of an item document submission.
type ItemPayload struct {
	ReferenceID     int64   `json:"reference_id"`
	Description     string  `json:"description,omitempty"`
	Quantity        float64 `json:"quantity"`
	FreeQuantity    float64 `json:"free_quantity,omitempty"`
	UnitPrice       float64 `json:"unit_price"`
	DiscountPercent float64 `json:"discount_percent"`
	DiscountAmount  float64 `json:"discount_amount"`
	TaxableAmount   float64 `json:"taxable_amount"`
	CGSTRatePercent float64 `json:"cgst_rate_percent"`
	SGSTRatePercent float64 `json:"sgst_rate_percent"`
	IGSTRatePercent float64 `json:"igst_rate_percent"`
	CessRatePercent float64 `json:"cess_rate_percent"`
	CGSTAmount      float64 `json:"cgst_amount"`
	SGSTAmount      float64 `json:"sgst_amount"`
	IGSTAmount      float64 `json:"igst_amount"`
	CessAmount      float64 `json:"cess_amount"`
	TotalTaxAmount  float64 `json:"total_tax_amount"`
	LineTotal       float64 `json:"line_total"`
}

// OrderPayload is the outbound request body for item document types
// (orders and credit/debit notes).
type OrderPayload struct {
	DocumentNumber        string        `json:"document_number"`
	DocumentDate          string        `json:"document_date"`
	TenantID              int64         `json:"tenant_id"`
	PartyID               int64         `json:"party_id"`
	Currency              string        `json:"currency,omitempty"`
	SubtotalAmount        float64       `json:"subtotal_amount"`
	HeaderDiscountPercent float64       `json:"header_discount_percent"`
	HeaderDiscountAmount  float64       `json:"header_discount_amount"`
	TaxableAmount         float64       `json:"taxable_amount"`
	CGSTAmount            float64       `json:"cgst_amount"`
	SGSTAmount            float64       `json:"sgst_amount"`
	IGSTAmount            float64       `json:"igst_amount"`
	CessAmount            float64       `json:"cess_amount"`
	TotalTaxAmount        float64       `json:"total_tax_amount"`
	RoundOff              float64       `json:"roundoff"`
	NetAmount             float64       `json:"net_amount"`
	Items                 []ItemPayload `json:"items"`
}

// NewItemPayload converts an engine line to its wire form, rounding each
// monetary amount to two decimals.
func NewItemPayload(line documents.LineItem) ItemPayload {
	item := ItemPayload{
		ReferenceID:     line.ReferenceID,
		Quantity:        line.Quantity,
		FreeQuantity:    line.FreeQuantity,
		UnitPrice:       Round2(line.UnitPrice),
		DiscountPercent: line.DiscountPercent,
		DiscountAmount:  Round2(line.DiscountAmount),
		TaxableAmount:   Round2(line.TaxableAmount),
		CGSTRatePercent: line.CGSTRatePercent,
		SGSTRatePercent: line.SGSTRatePercent,
		IGSTRatePercent: line.IGSTRatePercent,
		CessRatePercent: line.CessRatePercent,
		CGSTAmount:      Round2(line.CGSTAmount),
		SGSTAmount:      Round2(line.SGSTAmount),
		IGSTAmount:      Round2(line.IGSTAmount),
		CessAmount:      Round2(line.CessAmount),
		TotalTaxAmount:  Round2(line.TotalTaxAmount),
		LineTotal:       Round2(line.LineTotal),
	}
	if line.Description != nil {
		item.Description = *line.Description
	}
	return item
}
