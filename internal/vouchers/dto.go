package vouchers

import (
	"time"

	"github.com/draftdesk/draftdesk/internal/documents"
)

type CreateDraftRequest struct {
	TenantID     int64                  `json:"tenant_id" validate:"required,gt=0"`
	Type         documents.DocumentType `json:"type" validate:"required,oneof=JOURNAL PAYMENT RECEIPT CONTRA"`
	DocumentDate *time.Time             `json:"document_date,omitempty"`
	Narration    *string                `json:"narration,omitempty"`
}

// DraftLineRequest is one editable voucher row. An account id of zero is
// an empty row: tolerated while drafting, skipped at validation time.
type DraftLineRequest struct {
	AccountID      int64    `json:"account_id" validate:"gte=0"`
	Debit          float64  `json:"debit" validate:"gte=0"`
	Credit         float64  `json:"credit" validate:"gte=0"`
	Description    *string  `json:"description,omitempty"`
	GSTRatePercent *float64 `json:"gst_rate_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	CostCenterID   *int64   `json:"cost_center_id,omitempty"`
}

type ReplaceLinesRequest struct {
	Lines []DraftLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type CreateContraRequest struct {
	TenantID      int64      `json:"tenant_id" validate:"required,gt=0"`
	FromAccountID int64      `json:"from_account_id" validate:"required,gt=0"`
	ToAccountID   int64      `json:"to_account_id" validate:"required,gt=0,nefield=FromAccountID"`
	Amount        float64    `json:"amount"`
	DocumentDate  *time.Time `json:"document_date,omitempty"`
	Narration     *string    `json:"narration,omitempty"`
}

// DraftResponse wraps a draft with its live validation state and totals.
type DraftResponse struct {
	Draft      *Draft           `json:"draft"`
	Validation ValidationResult `json:"validation"`
}

func newDraftResponse(draft *Draft) DraftResponse {
	resp := DraftResponse{Draft: draft}
	if draft != nil {
		result := Validate(*draft)
		result.Lines = nil
		resp.Validation = result
	}
	return resp
}

func (r DraftLineRequest) toLine() VoucherLine {
	return VoucherLine{
		AccountID:      r.AccountID,
		Debit:          r.Debit,
		Credit:         r.Credit,
		Description:    r.Description,
		GSTRatePercent: r.GSTRatePercent,
		CostCenterID:   r.CostCenterID,
	}
}
