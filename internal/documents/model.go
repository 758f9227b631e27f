package documents

// DocumentType enumerates the draft document kinds the engine supports.
type DocumentType string

const (
	TypeJournal       DocumentType = "JOURNAL"
	TypePayment       DocumentType = "PAYMENT"
	TypeReceipt       DocumentType = "RECEIPT"
	TypeContra        DocumentType = "CONTRA"
	TypePurchaseOrder DocumentType = "PURCHASE_ORDER"
	TypeSalesOrder    DocumentType = "SALES_ORDER"
	TypeCreditNote    DocumentType = "CREDIT_NOTE"
	TypeDebitNote     DocumentType = "DEBIT_NOTE"
)

// RateMode selects which GST components apply to a document.
type RateMode string

const (
	// RateModeIntraState splits the combined rate into CGST and SGST.
	RateModeIntraState RateMode = "INTRA_STATE"
	// RateModeInterState applies the combined rate as IGST.
	RateModeInterState RateMode = "INTER_STATE"
)

// TypeConfig carries the per-document-type knobs that vary across screens:
// number prefix, whether the draft number carries a millisecond suffix,
// the minimum number of retained lines, and whether the document is a
// ledger voucher (debit/credit lines) or an item document (quantity/price).
type TypeConfig struct {
	Prefix       string
	MinLines     int
	NumberMillis bool
	Ledger       bool
}

var typeConfigs = map[DocumentType]TypeConfig{
	TypeJournal:       {Prefix: "JV", MinLines: 2, NumberMillis: true, Ledger: true},
	TypePayment:       {Prefix: "PV", MinLines: 2, NumberMillis: true, Ledger: true},
	TypeReceipt:       {Prefix: "RV", MinLines: 2, NumberMillis: true, Ledger: true},
	TypeContra:        {Prefix: "CV", MinLines: 2, NumberMillis: true, Ledger: true},
	TypePurchaseOrder: {Prefix: "PO", MinLines: 1, Ledger: false},
	TypeSalesOrder:    {Prefix: "SO", MinLines: 1, Ledger: false},
	TypeCreditNote:    {Prefix: "CN", MinLines: 1, Ledger: false},
	TypeDebitNote:     {Prefix: "DN", MinLines: 1, Ledger: false},
}

// ConfigFor returns the configuration for a document type.
func ConfigFor(t DocumentType) (TypeConfig, bool) {
	cfg, ok := typeConfigs[t]
	return cfg, ok
}

// LineItem is one product or account row in an item document. Derived
// fields are never user-edited; Recompute keeps them consistent with the
// editable inputs.
type LineItem struct {
	ReferenceID     int64   `json:"reference_id" db:"reference_id"`
	Description     *string `json:"description,omitempty" db:"description"`
	Quantity        float64 `json:"quantity" db:"quantity"`
	FreeQuantity    float64 `json:"free_quantity" db:"free_quantity"`
	UnitPrice       float64 `json:"unit_price" db:"unit_price"`
	DiscountPercent float64 `json:"discount_percent" db:"discount_percent"`
	CGSTRatePercent float64 `json:"cgst_rate_percent" db:"cgst_rate_percent"`
	SGSTRatePercent float64 `json:"sgst_rate_percent" db:"sgst_rate_percent"`
	IGSTRatePercent float64 `json:"igst_rate_percent" db:"igst_rate_percent"`
	CessRatePercent float64 `json:"cess_rate_percent" db:"cess_rate_percent"`

	DiscountAmount float64 `json:"discount_amount" db:"discount_amount"`
	TaxableAmount  float64 `json:"taxable_amount" db:"taxable_amount"`
	CGSTAmount     float64 `json:"cgst_amount" db:"cgst_amount"`
	SGSTAmount     float64 `json:"sgst_amount" db:"sgst_amount"`
	IGSTAmount     float64 `json:"igst_amount" db:"igst_amount"`
	CessAmount     float64 `json:"cess_amount" db:"cess_amount"`
	TotalTaxAmount float64 `json:"total_tax_amount" db:"total_tax_amount"`
	LineTotal      float64 `json:"line_total" db:"line_total"`

	LineOrder int `json:"line_order" db:"line_order"`
}

// Valid reports whether the line refers to a real product or account.
func (l LineItem) Valid() bool {
	return l.ReferenceID > 0
}

// Totals is the header-level aggregate over a document's lines.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalTotal     float64 `json:"final_total"`
}
