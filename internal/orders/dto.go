package orders

import (
	"time"

	"github.com/draftdesk/draftdesk/internal/documents"
)

type CreateDraftRequest struct {
	TenantID     int64                  `json:"tenant_id" validate:"required,gt=0"`
	Type         documents.DocumentType `json:"type" validate:"required,oneof=PURCHASE_ORDER SALES_ORDER CREDIT_NOTE DEBIT_NOTE"`
	PartyID      int64                  `json:"party_id" validate:"gte=0"`
	Currency     string                 `json:"currency,omitempty" validate:"omitempty,len=3"`
	RateMode     documents.RateMode     `json:"rate_mode,omitempty" validate:"omitempty,oneof=INTRA_STATE INTER_STATE"`
	DocumentDate *time.Time             `json:"document_date,omitempty"`
}

// LineRequest is one editable product row. A reference id of zero is an
// empty row: tolerated while drafting, skipped at validation time.
type LineRequest struct {
	ReferenceID    int64   `json:"reference_id" validate:"gte=0"`
	Description    *string `json:"description,omitempty"`
	Quantity       float64 `json:"quantity" validate:"gte=0"`
	FreeQuantity   float64 `json:"free_quantity" validate:"gte=0"`
	UnitPrice      float64 `json:"unit_price" validate:"gte=0"`
	DiscountPct    float64 `json:"discount_percent" validate:"gte=0,lte=100"`
	TaxRatePercent float64 `json:"tax_rate_percent" validate:"gte=0,lte=100"`
	CessRatePct    float64 `json:"cess_rate_percent" validate:"gte=0,lte=100"`
}

type ReplaceLinesRequest struct {
	Lines []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

type UpdateHeaderRequest struct {
	PartyID               *int64     `json:"party_id,omitempty" validate:"omitempty,gt=0"`
	DocumentDate          *time.Time `json:"document_date,omitempty"`
	HeaderDiscountPercent *float64   `json:"header_discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	RoundOff              *float64   `json:"roundoff,omitempty"`
}

// DraftResponse wraps a draft with its live validation state and totals.
type DraftResponse struct {
	Draft      *Draft           `json:"draft"`
	Totals     documents.Totals `json:"totals"`
	Validation ValidationResult `json:"validation"`
}

func newDraftResponse(draft *Draft) DraftResponse {
	resp := DraftResponse{Draft: draft}
	if draft != nil {
		resp.Totals = draft.Totals()
		resp.Validation = Validate(*draft)
	}
	return resp
}

func (r LineRequest) toInput() LineInput {
	return LineInput{
		ReferenceID:    r.ReferenceID,
		Description:    r.Description,
		Quantity:       r.Quantity,
		FreeQuantity:   r.FreeQuantity,
		UnitPrice:      r.UnitPrice,
		DiscountPct:    r.DiscountPct,
		TaxRatePercent: r.TaxRatePercent,
		CessRatePct:    r.CessRatePct,
	}
}
