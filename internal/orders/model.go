package orders

import (
	"time"

	"github.com/draftdesk/draftdesk/internal/documents"
)

// DraftStatus enumerates item document draft lifecycle values.
type DraftStatus string

const (
	StatusDraft        DraftStatus = "DRAFT"
	StatusPendingRetry DraftStatus = "PENDING_RETRY"
	StatusSubmitted    DraftStatus = "SUBMITTED"
	StatusRejected     DraftStatus = "REJECTED"
)

// Draft is an in-progress item document: purchase or sales order, credit
// or debit note. Lines are priced product rows; header discount and
// round-off apply at the aggregate level.
type Draft struct {
	ID                    int64                  `json:"id" db:"id"`
	TenantID              int64                  `json:"tenant_id" db:"tenant_id"`
	Type                  documents.DocumentType `json:"type" db:"doc_type"`
	DraftNumber           string                 `json:"draft_number" db:"draft_number"`
	ServerNumber          *string                `json:"server_number,omitempty" db:"server_number"`
	DocumentDate          time.Time              `json:"document_date" db:"document_date"`
	PartyID               int64                  `json:"party_id" db:"party_id"`
	Currency              string                 `json:"currency" db:"currency"`
	RateMode              documents.RateMode     `json:"rate_mode" db:"rate_mode"`
	HeaderDiscountPercent float64                `json:"header_discount_percent" db:"header_discount_percent"`
	RoundOff              float64                `json:"roundoff" db:"roundoff"`
	Subtotal              float64                `json:"subtotal" db:"subtotal"`
	DiscountAmount        float64                `json:"discount_amount" db:"discount_amount"`
	FinalTotal            float64                `json:"final_total" db:"final_total"`
	Status                DraftStatus            `json:"status" db:"status"`
	SubmissionToken       string                 `json:"submission_token" db:"submission_token"`
	LastError             *string                `json:"last_error,omitempty" db:"last_error"`
	CreatedBy             int64                  `json:"created_by" db:"created_by"`
	CreatedAt             time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at" db:"updated_at"`
	Lines                 []documents.LineItem   `json:"lines,omitempty" db:"-"`
}

// Editable reports whether the draft can still be mutated.
func (d Draft) Editable() bool {
	return d.Status != StatusSubmitted
}

// Totals returns the stored header aggregate.
func (d Draft) Totals() documents.Totals {
	return documents.Totals{
		Subtotal:       d.Subtotal,
		DiscountAmount: d.DiscountAmount,
		FinalTotal:     d.FinalTotal,
	}
}
