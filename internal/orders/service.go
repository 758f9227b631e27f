package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/draftdesk/draftdesk/internal/documents"
	"github.com/draftdesk/draftdesk/internal/gateway"
	"github.com/draftdesk/draftdesk/internal/shared"
)

// Submitter delivers a finished item document to the books backend.
type Submitter interface {
	SubmitOrder(ctx context.Context, docType documents.DocumentType, payload gateway.OrderPayload, token string) (gateway.SubmitResult, error)
}

// TokenStore claims submission tokens so a draft posts at most once.
type TokenStore interface {
	CheckAndInsert(ctx context.Context, token, docType string) error
	Delete(ctx context.Context, token string) error
}

// RetryScheduler queues a background retry after a transport failure.
type RetryScheduler interface {
	ScheduleSubmitRetry(ctx context.Context, draftID int64) error
}

// AuditPort records draft lifecycle actions.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

type Service struct {
	repo      Repository
	backend   Submitter
	tokens    TokenStore
	scheduler RetryScheduler
	audit     AuditPort
	now       func() time.Time
}

func NewService(repo Repository, backend Submitter, tokens TokenStore, scheduler RetryScheduler, audit AuditPort) *Service {
	return &Service{
		repo:      repo,
		backend:   backend,
		tokens:    tokens,
		scheduler: scheduler,
		audit:     audit,
		now:       time.Now,
	}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateDraftInput groups fields required to open a new item draft.
type CreateDraftInput struct {
	TenantID     int64
	Type         documents.DocumentType
	PartyID      int64
	Currency     string
	RateMode     documents.RateMode
	DocumentDate *time.Time
	CreatedBy    int64
}

// CreateDraft opens a fresh item draft with a generated number, a new
// submission token, and one empty row.
func (s *Service) CreateDraft(ctx context.Context, in CreateDraftInput) (*Draft, error) {
	cfg, ok := documents.ConfigFor(in.Type)
	if !ok || cfg.Ledger {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownDocumentType, in.Type)
	}
	now := s.now()
	date := now
	if in.DocumentDate != nil {
		date = *in.DocumentDate
	}
	rateMode := in.RateMode
	if rateMode == "" {
		rateMode = documents.RateModeIntraState
	}

	draft := Draft{
		TenantID:        in.TenantID,
		Type:            in.Type,
		DraftNumber:     documents.GenerateNumber(cfg.Prefix, in.TenantID, now, cfg.NumberMillis),
		DocumentDate:    date,
		PartyID:         in.PartyID,
		Currency:        in.Currency,
		RateMode:        rateMode,
		Status:          StatusDraft,
		SubmissionToken: uuid.NewString(),
		CreatedBy:       in.CreatedBy,
		Lines:           emptyLines(cfg.MinLines),
	}

	id, err := s.repo.Create(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Draft, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListDraftsRequest) ([]Draft, int, error) {
	return s.repo.List(ctx, req)
}

// LineInput is one editable product row with its combined tax rate; the
// draft's rate mode decides how that rate lands on the GST components.
type LineInput struct {
	ReferenceID    int64
	Description    *string
	Quantity       float64
	FreeQuantity   float64
	UnitPrice      float64
	DiscountPct    float64
	TaxRatePercent float64
	CessRatePct    float64
}

// ReplaceLines swaps the draft's rows, recomputes every derived line
// field, and refreshes the header totals in one pass.
func (s *Service) ReplaceLines(ctx context.Context, id int64, inputs []LineInput) (*Draft, error) {
	draft, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !draft.Editable() {
		return nil, shared.ErrDraftSubmitted
	}
	cfg, _ := documents.ConfigFor(draft.Type)
	if len(inputs) < cfg.MinLines {
		return nil, shared.ErrMinimumLines
	}

	lines := make([]documents.LineItem, 0, len(inputs))
	for i, in := range inputs {
		line := documents.LineItem{
			ReferenceID:     in.ReferenceID,
			Description:     in.Description,
			Quantity:        in.Quantity,
			FreeQuantity:    in.FreeQuantity,
			UnitPrice:       in.UnitPrice,
			DiscountPercent: in.DiscountPct,
			CessRatePercent: in.CessRatePct,
			LineOrder:       i + 1,
		}
		documents.ApplyRate(&line, in.TaxRatePercent, draft.RateMode)
		documents.Recompute(&line)
		lines = append(lines, line)
	}

	totals := documents.Aggregate(lines, draft.HeaderDiscountPercent, draft.RoundOff)
	if err := s.repo.ReplaceLines(ctx, id, lines, totals); err != nil {
		return nil, fmt.Errorf("replace lines: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// HeaderInput carries the aggregate-level adjustments.
type HeaderInput struct {
	PartyID               *int64
	DocumentDate          *time.Time
	HeaderDiscountPercent *float64
	RoundOff              *float64
}

// UpdateHeader applies header changes and synchronously re-aggregates
// the totals from the current lines.
func (s *Service) UpdateHeader(ctx context.Context, id int64, in HeaderInput) (*Draft, error) {
	draft, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !draft.Editable() {
		return nil, shared.ErrDraftSubmitted
	}

	if in.PartyID != nil {
		draft.PartyID = *in.PartyID
	}
	if in.DocumentDate != nil {
		draft.DocumentDate = *in.DocumentDate
	}
	if in.HeaderDiscountPercent != nil {
		draft.HeaderDiscountPercent = *in.HeaderDiscountPercent
	}
	if in.RoundOff != nil {
		draft.RoundOff = *in.RoundOff
	}

	totals := documents.Aggregate(draft.Lines, draft.HeaderDiscountPercent, draft.RoundOff)
	if err := s.repo.UpdateHeader(ctx, id, *draft, totals); err != nil {
		return nil, fmt.Errorf("update header: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// RemoveLine deletes one row by display order, keeping at least one row
// and resequencing the remainder.
func (s *Service) RemoveLine(ctx context.Context, id int64, lineOrder int) (*Draft, error) {
	draft, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !draft.Editable() {
		return nil, shared.ErrDraftSubmitted
	}
	cfg, _ := documents.ConfigFor(draft.Type)
	if len(draft.Lines) <= cfg.MinLines {
		return nil, shared.ErrMinimumLines
	}

	kept := make([]documents.LineItem, 0, len(draft.Lines)-1)
	removed := false
	for _, line := range draft.Lines {
		if !removed && line.LineOrder == lineOrder {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	if !removed {
		return nil, shared.ErrNotFound
	}
	for i := range kept {
		kept[i].LineOrder = i + 1
	}

	totals := documents.Aggregate(kept, draft.HeaderDiscountPercent, draft.RoundOff)
	if err := s.repo.ReplaceLines(ctx, id, kept, totals); err != nil {
		return nil, fmt.Errorf("remove line: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// ValidateDraft runs required-field validation without side effects.
func (s *Service) ValidateDraft(ctx context.Context, id int64) (ValidationResult, error) {
	draft, err := s.repo.Get(ctx, id)
	if err != nil {
		return ValidationResult{}, err
	}
	return Validate(*draft), nil
}

// Reset rebuilds the draft in place: fresh number, fresh submission
// token, today's date, zeroed header adjustments and cleared rows.
func (s *Service) Reset(ctx context.Context, id int64, actorID int64) (*Draft, error) {
	draft, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !draft.Editable() {
		return nil, shared.ErrDraftSubmitted
	}
	cfg, _ := documents.ConfigFor(draft.Type)
	now := s.now()
	number := documents.GenerateNumber(cfg.Prefix, draft.TenantID, now, cfg.NumberMillis)
	token := uuid.NewString()

	if err := s.repo.ResetDraft(ctx, id, number, token, now, emptyLines(cfg.MinLines)); err != nil {
		return nil, fmt.Errorf("reset draft: %w", err)
	}
	s.record(ctx, actorID, "order.reset", id, map[string]any{"draft_number": number})
	return s.repo.Get(ctx, id)
}

// Submit validates the draft and delivers it to the books backend,
// with the same rejection/retry semantics as ledger vouchers.
func (s *Service) Submit(ctx context.Context, id int64, actorID int64) (*Draft, ValidationResult, error) {
	draft, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, ValidationResult{}, err
	}
	if !draft.Editable() {
		return nil, ValidationResult{}, shared.ErrDraftSubmitted
	}

	result := Validate(*draft)
	if !result.OK {
		return draft, result, nil
	}

	if err := s.tokens.CheckAndInsert(ctx, draft.SubmissionToken, string(draft.Type)); err != nil {
		return nil, ValidationResult{}, err
	}

	payload := buildPayload(*draft)
	res, err := s.backend.SubmitOrder(ctx, draft.Type, payload, draft.SubmissionToken)
	switch {
	case errors.Is(err, gateway.ErrRejected):
		_ = s.tokens.Delete(ctx, draft.SubmissionToken)
		message := err.Error()
		if uerr := s.repo.UpdateStatus(ctx, id, StatusRejected, nil, &message); uerr != nil {
			return nil, ValidationResult{}, uerr
		}
		draft, _ = s.repo.Get(ctx, id)
		return draft, result, err
	case err != nil:
		_ = s.tokens.Delete(ctx, draft.SubmissionToken)
		message := err.Error()
		if uerr := s.repo.UpdateStatus(ctx, id, StatusPendingRetry, nil, &message); uerr != nil {
			return nil, ValidationResult{}, uerr
		}
		if s.scheduler != nil {
			if serr := s.scheduler.ScheduleSubmitRetry(ctx, id); serr != nil {
				return nil, ValidationResult{}, fmt.Errorf("schedule retry: %w", serr)
			}
		}
		draft, _ = s.repo.Get(ctx, id)
		return draft, result, err
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusSubmitted, res.ServerNumber, nil); err != nil {
		return nil, ValidationResult{}, err
	}
	s.record(ctx, actorID, "order.submit", id, map[string]any{
		"draft_number": draft.DraftNumber,
		"net_amount":   result.FinalTotal,
	})
	draft, err = s.repo.Get(ctx, id)
	return draft, result, err
}

// Delete discards an unsubmitted draft.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	draft, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !draft.Editable() {
		return shared.ErrDraftSubmitted
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actorID, "order.delete", id, map[string]any{"draft_number": draft.DraftNumber})
	return nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, draftID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "order_draft",
		EntityID: fmt.Sprintf("%d", draftID),
		Meta:     meta,
		At:       s.now(),
	})
}

func buildPayload(draft Draft) gateway.OrderPayload {
	payload := gateway.OrderPayload{
		DocumentNumber:        draft.DraftNumber,
		DocumentDate:          draft.DocumentDate.Format("2006-01-02"),
		TenantID:              draft.TenantID,
		PartyID:               draft.PartyID,
		Currency:              draft.Currency,
		HeaderDiscountPercent: draft.HeaderDiscountPercent,
		SubtotalAmount:        gateway.Round2(draft.Subtotal),
		HeaderDiscountAmount:  gateway.Round2(draft.DiscountAmount),
		RoundOff:              gateway.Round2(draft.RoundOff),
		NetAmount:             gateway.Round2(draft.FinalTotal),
	}

	var taxable, cgst, sgst, igst, cess, totalTax float64
	for _, line := range draft.Lines {
		if !line.Valid() {
			continue
		}
		taxable += line.TaxableAmount
		cgst += line.CGSTAmount
		sgst += line.SGSTAmount
		igst += line.IGSTAmount
		cess += line.CessAmount
		totalTax += line.TotalTaxAmount
		payload.Items = append(payload.Items, gateway.NewItemPayload(line))
	}
	payload.TaxableAmount = gateway.Round2(taxable)
	payload.CGSTAmount = gateway.Round2(cgst)
	payload.SGSTAmount = gateway.Round2(sgst)
	payload.IGSTAmount = gateway.Round2(igst)
	payload.CessAmount = gateway.Round2(cess)
	payload.TotalTaxAmount = gateway.Round2(totalTax)
	return payload
}

func emptyLines(n int) []documents.LineItem {
	lines := make([]documents.LineItem, n)
	for i := range lines {
		lines[i].LineOrder = i + 1
	}
	return lines
}
