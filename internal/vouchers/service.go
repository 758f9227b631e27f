package vouchers

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

// Submitter delivers a finished voucher to the books backend.
type Submitter interface {
	SubmitVoucher(ctx context.Context, docType documents.DocumentType, payload gateway.VoucherPayload, token string) (gateway.SubmitResult, error)
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

// CreateDraftInput groups fields required to open a new voucher draft.
type CreateDraftInput struct {
	TenantID     int64
	Type         documents.DocumentType
	DocumentDate *time.Time
	Narration    *string
	CreatedBy    int64
}

// CreateDraft opens a fresh draft with a generated number, a new
// submission token, and the minimum number of empty rows for its type.
func (s *Service) CreateDraft(ctx context.Context, in CreateDraftInput) (*Draft, error) {
	cfg, ok := documents.ConfigFor(in.Type)
	if !ok || !cfg.Ledger {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownDocumentType, in.Type)
	}
	now := s.now()
	date := now
	if in.DocumentDate != nil {
		date = *in.DocumentDate
	}

	draft := Draft{
		TenantID:        in.TenantID,
		Type:            in.Type,
		DraftNumber:     documents.GenerateNumber(cfg.Prefix, in.TenantID, now, cfg.NumberMillis),
		DocumentDate:    date,
		Narration:       in.Narration,
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

// ContraInput describes a transfer between two cash/bank accounts.
type ContraInput struct {
	TenantID      int64
	FromAccountID int64
	ToAccountID   int64
	Amount        float64
	DocumentDate  *time.Time
	Narration     *string
	CreatedBy     int64
}

// CreateContra opens a contra voucher draft pre-filled with the balanced
// transfer pair. A non-positive amount fails with InvalidAmount before
// anything is stored.
func (s *Service) CreateContra(ctx context.Context, in ContraInput) (*Draft, ValidationResult, error) {
	lines, result := ContraLines(in.FromAccountID, in.ToAccountID, in.Amount)
	if !result.OK {
		return nil, result, nil
	}

	draft, err := s.CreateDraft(ctx, CreateDraftInput{
		TenantID:     in.TenantID,
		Type:         documents.TypeContra,
		DocumentDate: in.DocumentDate,
		Narration:    in.Narration,
		CreatedBy:    in.CreatedBy,
	})
	if err != nil {
		return nil, ValidationResult{}, err
	}

	if err := s.repo.ReplaceLines(ctx, draft.ID, lines); err != nil {
		return nil, ValidationResult{}, fmt.Errorf("store contra lines: %w", err)
	}
	draft, err = s.repo.Get(ctx, draft.ID)
	return draft, result, err
}

func (s *Service) Get(ctx context.Context, id int64) (*Draft, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListDraftsRequest) ([]Draft, int, error) {
	return s.repo.List(ctx, req)
}

// ReplaceLines swaps the draft's rows for the given set and resequences
// line order. Submitted drafts are immutable.
func (s *Service) ReplaceLines(ctx context.Context, id int64, lines []VoucherLine) (*Draft, error) {
	draft, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !draft.Editable() {
		return nil, shared.ErrDraftSubmitted
	}
	cfg, _ := documents.ConfigFor(draft.Type)
	if len(lines) < cfg.MinLines {
		return nil, shared.ErrMinimumLines
	}
	if err := s.repo.ReplaceLines(ctx, id, normalizeLines(lines)); err != nil {
		return nil, fmt.Errorf("replace lines: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// RemoveLine deletes one row by its display order, keeping the type's
// minimum row count and resequencing the remainder.
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

	kept := make([]VoucherLine, 0, len(draft.Lines)-1)
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
	if err := s.repo.ReplaceLines(ctx, id, normalizeLines(kept)); err != nil {
		return nil, fmt.Errorf("remove line: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// ValidateDraft runs double-entry validation without side effects.
func (s *Service) ValidateDraft(ctx context.Context, id int64) (ValidationResult, error) {
	draft, err := s.repo.Get(ctx, id)
	if err != nil {
		return ValidationResult{}, err
	}
	return Validate(*draft), nil
}

// Reset rebuilds the draft in place: fresh number, fresh submission
// token, today's date, and cleared rows.
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
	s.record(ctx, actorID, "voucher.reset", id, map[string]any{"draft_number": number})
	return s.repo.Get(ctx, id)
}

// Submit validates the draft and delivers it to the books backend. A
// failed validation or a backend rejection leaves the draft content
// untouched so the user can correct and resubmit. Transport failures
// park the draft for a background retry under the same token.
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

	payload := buildPayload(*draft, result)
	res, err := s.backend.SubmitVoucher(ctx, draft.Type, payload, draft.SubmissionToken)
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
	s.record(ctx, actorID, "voucher.submit", id, map[string]any{
		"draft_number": draft.DraftNumber,
		"total_amount": result.TotalAmount,
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
	s.record(ctx, actorID, "voucher.delete", id, map[string]any{"draft_number": draft.DraftNumber})
	return nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, draftID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "voucher_draft",
		EntityID: fmt.Sprintf("%d", draftID),
		Meta:     meta,
		At:       s.now(),
	})
}

func buildPayload(draft Draft, result ValidationResult) gateway.VoucherPayload {
	lines := make([]gateway.VoucherLinePayload, 0, len(result.Lines))
	for _, line := range result.Lines {
		p := gateway.VoucherLinePayload{
			AccountID:    line.AccountID,
			Debit:        gateway.Round2(line.Debit),
			Credit:       gateway.Round2(line.Credit),
			CostCenterID: line.CostCenterID,
		}
		if line.Description != nil {
			p.Description = *line.Description
		}
		if line.GSTRatePercent != nil {
			p.GSTRatePercent = *line.GSTRatePercent
		}
		if line.GSTAmount != nil {
			p.GSTAmount = gateway.Round2(*line.GSTAmount)
		}
		lines = append(lines, p)
	}
	payload := gateway.VoucherPayload{
		VoucherNumber: draft.DraftNumber,
		VoucherDate:   draft.DocumentDate.Format("2006-01-02"),
		TenantID:      draft.TenantID,
		TotalAmount:   gateway.Round2(result.TotalAmount),
		Lines:         lines,
	}
	if draft.Narration != nil {
		payload.Narration = *draft.Narration
	}
	return payload
}

// normalizeLines resequences display order and derives the optional GST
// amount from the line's rate when one is set.
func normalizeLines(lines []VoucherLine) []VoucherLine {
	out := make([]VoucherLine, len(lines))
	copy(out, lines)
	for i := range out {
		out[i].LineOrder = i + 1
		if out[i].GSTRatePercent != nil {
			amount := (out[i].Debit + out[i].Credit) * *out[i].GSTRatePercent / 100
			out[i].GSTAmount = &amount
		}
	}
	return out
}

func emptyLines(n int) []VoucherLine {
	lines := make([]VoucherLine, n)
	for i := range lines {
		lines[i].LineOrder = i + 1
	}
	return lines
}
