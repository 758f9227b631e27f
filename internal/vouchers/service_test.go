package vouchers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftdesk/draftdesk/internal/documents"
	"github.com/draftdesk/draftdesk/internal/gateway"
	"github.com/draftdesk/draftdesk/internal/shared"
)

type mockRepository struct {
	drafts map[int64]*Draft
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{drafts: make(map[int64]*Draft), nextID: 1}
}

func (m *mockRepository) Create(ctx context.Context, draft Draft) (int64, error) {
	id := m.nextID
	m.nextID++
	draft.ID = id
	draft.CreatedAt = time.Now()
	draft.UpdatedAt = draft.CreatedAt
	for i := range draft.Lines {
		draft.Lines[i].DraftID = id
	}
	m.drafts[id] = &draft
	return id, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Draft, error) {
	d, ok := m.drafts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *d
	clone.Lines = append([]VoucherLine(nil), d.Lines...)
	return &clone, nil
}

func (m *mockRepository) List(ctx context.Context, req ListDraftsRequest) ([]Draft, int, error) {
	var out []Draft
	for _, d := range m.drafts {
		if d.TenantID == req.TenantID {
			out = append(out, *d)
		}
	}
	return out, len(out), nil
}

func (m *mockRepository) ListByStatus(ctx context.Context, status DraftStatus, limit int) ([]Draft, error) {
	var out []Draft
	for _, d := range m.drafts {
		if d.Status == status {
			out = append(out, Draft{ID: d.ID})
		}
	}
	return out, nil
}

func (m *mockRepository) ReplaceLines(ctx context.Context, draftID int64, lines []VoucherLine) error {
	d, ok := m.drafts[draftID]
	if !ok {
		return shared.ErrNotFound
	}
	d.Lines = append([]VoucherLine(nil), lines...)
	return nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id int64, status DraftStatus, serverNumber *string, lastError *string) error {
	d, ok := m.drafts[id]
	if !ok {
		return shared.ErrNotFound
	}
	d.Status = status
	if serverNumber != nil {
		d.ServerNumber = serverNumber
	}
	d.LastError = lastError
	return nil
}

func (m *mockRepository) ResetDraft(ctx context.Context, id int64, number, token string, date time.Time, lines []VoucherLine) error {
	d, ok := m.drafts[id]
	if !ok {
		return shared.ErrNotFound
	}
	d.DraftNumber = number
	d.SubmissionToken = token
	d.DocumentDate = date
	d.Status = StatusDraft
	d.ServerNumber = nil
	d.LastError = nil
	d.Lines = append([]VoucherLine(nil), lines...)
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.drafts[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.drafts, id)
	return nil
}

type fakeBackend struct {
	calls   int
	lastPay gateway.VoucherPayload
	result  gateway.SubmitResult
	err     error
}

func (f *fakeBackend) SubmitVoucher(ctx context.Context, docType documents.DocumentType, payload gateway.VoucherPayload, token string) (gateway.SubmitResult, error) {
	f.calls++
	f.lastPay = payload
	return f.result, f.err
}

type fakeTokens struct {
	claimed map[string]bool
}

func newFakeTokens() *fakeTokens { return &fakeTokens{claimed: make(map[string]bool)} }

func (f *fakeTokens) CheckAndInsert(ctx context.Context, token, docType string) error {
	if f.claimed[token] {
		return shared.ErrIdempotencyConflict
	}
	f.claimed[token] = true
	return nil
}

func (f *fakeTokens) Delete(ctx context.Context, token string) error {
	delete(f.claimed, token)
	return nil
}

type fakeScheduler struct {
	retries []int64
}

func (f *fakeScheduler) ScheduleSubmitRetry(ctx context.Context, draftID int64) error {
	f.retries = append(f.retries, draftID)
	return nil
}

func newTestService(backend *fakeBackend) (*Service, *mockRepository, *fakeTokens, *fakeScheduler) {
	repo := newMockRepository()
	tokens := newFakeTokens()
	scheduler := &fakeScheduler{}
	svc := NewService(repo, backend, tokens, scheduler, nil)
	svc.WithNow(func() time.Time {
		return time.Date(2024, 3, 5, 14, 9, 2, 123*int(time.Millisecond), time.UTC)
	})
	return svc, repo, tokens, scheduler
}

func balancedDraft(t *testing.T, svc *Service) *Draft {
	t.Helper()
	draft, err := svc.CreateDraft(context.Background(), CreateDraftInput{TenantID: 7, Type: documents.TypeJournal, CreatedBy: 1})
	require.NoError(t, err)
	draft, err = svc.ReplaceLines(context.Background(), draft.ID, []VoucherLine{
		{AccountID: 1, Debit: 500},
		{AccountID: 2, Credit: 500},
	})
	require.NoError(t, err)
	return draft
}

func TestCreateDraftSeedsLedgerDefaults(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeBackend{})

	draft, err := svc.CreateDraft(context.Background(), CreateDraftInput{TenantID: 7, Type: documents.TypeJournal, CreatedBy: 3})
	require.NoError(t, err)

	assert.Equal(t, "JV-705032024140902123", draft.DraftNumber)
	assert.Equal(t, StatusDraft, draft.Status)
	assert.NotEmpty(t, draft.SubmissionToken)
	require.Len(t, draft.Lines, 2)
	assert.Equal(t, 1, draft.Lines[0].LineOrder)
	assert.Equal(t, 2, draft.Lines[1].LineOrder)
}

func TestCreateDraftRejectsItemTypes(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeBackend{})

	_, err := svc.CreateDraft(context.Background(), CreateDraftInput{TenantID: 7, Type: documents.TypeSalesOrder})
	require.ErrorIs(t, err, shared.ErrUnknownDocumentType)
}

func TestCreateContra(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeBackend{})

	draft, result, err := svc.CreateContra(context.Background(), ContraInput{
		TenantID: 7, FromAccountID: 10, ToAccountID: 20, Amount: 900, CreatedBy: 1,
	})
	require.NoError(t, err)
	require.True(t, result.OK)
	require.Len(t, draft.Lines, 2)
	assert.Equal(t, documents.TypeContra, draft.Type)
	assert.Equal(t, int64(20), draft.Lines[0].AccountID)
	assert.Equal(t, 900.0, draft.Lines[0].Debit)
	assert.Equal(t, int64(10), draft.Lines[1].AccountID)
	assert.Equal(t, 900.0, draft.Lines[1].Credit)
}

func TestCreateContraInvalidAmount(t *testing.T) {
	svc, repo, _, _ := newTestService(&fakeBackend{})

	draft, result, err := svc.CreateContra(context.Background(), ContraInput{
		TenantID: 7, FromAccountID: 10, ToAccountID: 20, Amount: 0,
	})
	require.NoError(t, err)
	assert.Nil(t, draft)
	assert.Equal(t, CodeInvalidAmount, result.Code)
	assert.Empty(t, repo.drafts, "nothing should be stored for an invalid transfer")
}

func TestReplaceLinesKeepsMinimum(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeBackend{})
	draft := balancedDraft(t, svc)

	_, err := svc.ReplaceLines(context.Background(), draft.ID, []VoucherLine{{AccountID: 1, Debit: 10}})
	require.ErrorIs(t, err, shared.ErrMinimumLines)
}

func TestReplaceLinesNormalizes(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeBackend{})
	draft := balancedDraft(t, svc)

	rate := 18.0
	updated, err := svc.ReplaceLines(context.Background(), draft.ID, []VoucherLine{
		{AccountID: 1, Debit: 200, GSTRatePercent: &rate, LineOrder: 9},
		{AccountID: 2, Credit: 200, LineOrder: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Lines[0].LineOrder)
	assert.Equal(t, 2, updated.Lines[1].LineOrder)
	require.NotNil(t, updated.Lines[0].GSTAmount)
	assert.InDelta(t, 36.0, *updated.Lines[0].GSTAmount, 1e-9)
}

func TestRemoveLineFloor(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeBackend{})
	draft := balancedDraft(t, svc)

	_, err := svc.RemoveLine(context.Background(), draft.ID, 1)
	require.ErrorIs(t, err, shared.ErrMinimumLines)

	draft, err = svc.ReplaceLines(context.Background(), draft.ID, []VoucherLine{
		{AccountID: 1, Debit: 500},
		{AccountID: 2, Credit: 300},
		{AccountID: 3, Credit: 200},
	})
	require.NoError(t, err)

	updated, err := svc.RemoveLine(context.Background(), draft.ID, 2)
	require.NoError(t, err)
	require.Len(t, updated.Lines, 2)
	assert.Equal(t, int64(1), updated.Lines[0].AccountID)
	assert.Equal(t, int64(3), updated.Lines[1].AccountID)
	assert.Equal(t, []int{1, 2}, []int{updated.Lines[0].LineOrder, updated.Lines[1].LineOrder})
}

func TestSubmitSuccess(t *testing.T) {
	serverNumber := "JV-2024-000815"
	backend := &fakeBackend{result: gateway.SubmitResult{ServerNumber: &serverNumber}}
	svc, _, tokens, _ := newTestService(backend)
	draft := balancedDraft(t, svc)

	submitted, result, err := svc.Submit(context.Background(), draft.ID, 1)
	require.NoError(t, err)
	require.True(t, result.OK)
	assert.Equal(t, StatusSubmitted, submitted.Status)
	require.NotNil(t, submitted.ServerNumber)
	assert.Equal(t, serverNumber, *submitted.ServerNumber)
	assert.Equal(t, 1, backend.calls)
	assert.True(t, tokens.claimed[draft.SubmissionToken])
	assert.Equal(t, 500.0, backend.lastPay.TotalAmount)
}

func TestSubmitInvalidDraftSkipsBackend(t *testing.T) {
	backend := &fakeBackend{}
	svc, _, tokens, _ := newTestService(backend)
	draft, err := svc.CreateDraft(context.Background(), CreateDraftInput{TenantID: 7, Type: documents.TypeJournal})
	require.NoError(t, err)

	_, result, err := svc.Submit(context.Background(), draft.ID, 1)
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, CodeInsufficientLines, result.Code)
	assert.Zero(t, backend.calls)
	assert.Empty(t, tokens.claimed)
}

func TestSubmitBackendRejection(t *testing.T) {
	backend := &fakeBackend{err: fmt.Errorf("%w: account 2 is inactive", gateway.ErrRejected)}
	svc, _, tokens, _ := newTestService(backend)
	draft := balancedDraft(t, svc)

	rejected, _, err := svc.Submit(context.Background(), draft.ID, 1)
	require.ErrorIs(t, err, gateway.ErrRejected)
	assert.Equal(t, StatusRejected, rejected.Status)
	require.NotNil(t, rejected.LastError)
	assert.Empty(t, tokens.claimed, "token should be released for resubmission")

	// Resubmission after the backend recovers claims a fresh token.
	backend.err = nil
	resubmitted, result, err := svc.Submit(context.Background(), draft.ID, 1)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, StatusSubmitted, resubmitted.Status)
}

func TestSubmitTransportFailureSchedulesRetry(t *testing.T) {
	backend := &fakeBackend{err: errors.New("connection refused")}
	svc, _, _, scheduler := newTestService(backend)
	draft := balancedDraft(t, svc)

	parked, _, err := svc.Submit(context.Background(), draft.ID, 1)
	require.Error(t, err)
	require.NotErrorIs(t, err, gateway.ErrRejected)
	assert.Equal(t, StatusPendingRetry, parked.Status)
	assert.Equal(t, []int64{draft.ID}, scheduler.retries)
}

func TestSubmittedDraftIsImmutable(t *testing.T) {
	backend := &fakeBackend{}
	svc, _, _, _ := newTestService(backend)
	draft := balancedDraft(t, svc)

	_, _, err := svc.Submit(context.Background(), draft.ID, 1)
	require.NoError(t, err)

	_, err = svc.ReplaceLines(context.Background(), draft.ID, []VoucherLine{
		{AccountID: 1, Debit: 1}, {AccountID: 2, Credit: 1},
	})
	require.ErrorIs(t, err, shared.ErrDraftSubmitted)

	_, _, err = svc.Submit(context.Background(), draft.ID, 1)
	require.ErrorIs(t, err, shared.ErrDraftSubmitted)

	err = svc.Delete(context.Background(), draft.ID, 1)
	require.ErrorIs(t, err, shared.ErrDraftSubmitted)
}

func TestResetRegeneratesNumberAndToken(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeBackend{})
	draft := balancedDraft(t, svc)
	oldToken := draft.SubmissionToken

	svc.WithNow(func() time.Time {
		return time.Date(2024, 3, 6, 9, 0, 0, 1*int(time.Millisecond), time.UTC)
	})
	reset, err := svc.Reset(context.Background(), draft.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, "JV-706032024090000001", reset.DraftNumber)
	assert.NotEqual(t, oldToken, reset.SubmissionToken)
	assert.Equal(t, StatusDraft, reset.Status)
	require.Len(t, reset.Lines, 2)
	assert.Zero(t, reset.Lines[0].AccountID)
	assert.Zero(t, reset.Lines[1].AccountID)
}
