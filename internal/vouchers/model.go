package vouchers

import (
	"time"

	"github.com/draftdesk/draftdesk/internal/documents"
)

// DraftStatus enumerates draft lifecycle values.
type DraftStatus string

const (
	StatusDraft        DraftStatus = "DRAFT"
	StatusPendingRetry DraftStatus = "PENDING_RETRY"
	StatusSubmitted    DraftStatus = "SUBMITTED"
	StatusRejected     DraftStatus = "REJECTED"
)

// VoucherLine is one debit/credit row of a ledger voucher draft. A line
// may carry both a debit and a credit; only the aggregate balance is
// enforced at validation time.
type VoucherLine struct {
	ID             int64    `json:"id" db:"id"`
	DraftID        int64    `json:"draft_id" db:"draft_id"`
	AccountID      int64    `json:"account_id" db:"account_id"`
	Debit          float64  `json:"debit" db:"debit"`
	Credit         float64  `json:"credit" db:"credit"`
	Description    *string  `json:"description,omitempty" db:"description"`
	GSTRatePercent *float64 `json:"gst_rate_percent,omitempty" db:"gst_rate_percent"`
	GSTAmount      *float64 `json:"gst_amount,omitempty" db:"gst_amount"`
	CostCenterID   *int64   `json:"cost_center_id,omitempty" db:"cost_center_id"`
	LineOrder      int      `json:"line_order" db:"line_order"`
}

// Valid reports whether the line counts toward the double-entry minimum:
// an account is selected and at least one side carries an amount.
func (l VoucherLine) Valid() bool {
	return l.AccountID > 0 && (l.Debit > 0 || l.Credit > 0)
}

// Draft is an in-progress ledger voucher. The drafting service owns it
// exclusively until submission; after a successful submit the books
// backend owns the posted record and the draft becomes immutable.
type Draft struct {
	ID              int64                  `json:"id" db:"id"`
	TenantID        int64                  `json:"tenant_id" db:"tenant_id"`
	Type            documents.DocumentType `json:"type" db:"doc_type"`
	DraftNumber     string                 `json:"draft_number" db:"draft_number"`
	ServerNumber    *string                `json:"server_number,omitempty" db:"server_number"`
	DocumentDate    time.Time              `json:"document_date" db:"document_date"`
	Narration       *string                `json:"narration,omitempty" db:"narration"`
	Status          DraftStatus            `json:"status" db:"status"`
	SubmissionToken string                 `json:"submission_token" db:"submission_token"`
	LastError       *string                `json:"last_error,omitempty" db:"last_error"`
	CreatedBy       int64                  `json:"created_by" db:"created_by"`
	CreatedAt       time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at" db:"updated_at"`
	Lines           []VoucherLine          `json:"lines,omitempty" db:"-"`
}

// Editable reports whether the draft can still be mutated.
func (d Draft) Editable() bool {
	return d.Status != StatusSubmitted
}
