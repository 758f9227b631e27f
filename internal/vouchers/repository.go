package vouchers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/draftdesk/draftdesk/internal/platform/db"
	"github.com/draftdesk/draftdesk/internal/shared"
)

// ListDraftsRequest filters the draft listing.
type ListDraftsRequest struct {
	TenantID int64
	Type     *string
	Status   *DraftStatus
	Limit    int
	Offset   int
}

// Repository encapsulates DB operations for voucher drafts.
type Repository interface {
	Create(ctx context.Context, draft Draft) (int64, error)
	Get(ctx context.Context, id int64) (*Draft, error)
	List(ctx context.Context, req ListDraftsRequest) ([]Draft, int, error)
	ReplaceLines(ctx context.Context, draftID int64, lines []VoucherLine) error
	UpdateStatus(ctx context.Context, id int64, status DraftStatus, serverNumber *string, lastError *string) error
	ResetDraft(ctx context.Context, id int64, number, token string, date time.Time, lines []VoucherLine) error
	Delete(ctx context.Context, id int64) error
	ListByStatus(ctx context.Context, status DraftStatus, limit int) ([]Draft, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, draft Draft) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `INSERT INTO voucher_drafts
(tenant_id, doc_type, draft_number, document_date, narration, status, submission_token, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
			draft.TenantID, draft.Type, draft.DraftNumber, draft.DocumentDate, draft.Narration,
			draft.Status, draft.SubmissionToken, draft.CreatedBy)
		if err := row.Scan(&id); err != nil {
			return err
		}
		return insertLines(ctx, tx, id, draft.Lines)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Draft, error) {
	var d Draft
	err := r.pool.QueryRow(ctx, `SELECT id, tenant_id, doc_type, draft_number, server_number, document_date,
narration, status, submission_token, last_error, created_by, created_at, updated_at
FROM voucher_drafts WHERE id=$1`, id).
		Scan(&d.ID, &d.TenantID, &d.Type, &d.DraftNumber, &d.ServerNumber, &d.DocumentDate,
			&d.Narration, &d.Status, &d.SubmissionToken, &d.LastError, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, draft_id, account_id, debit, credit, description,
gst_rate_percent, gst_amount, cost_center_id, line_order
FROM voucher_draft_lines WHERE draft_id=$1 ORDER BY line_order`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var line VoucherLine
		if err := rows.Scan(&line.ID, &line.DraftID, &line.AccountID, &line.Debit, &line.Credit,
			&line.Description, &line.GSTRatePercent, &line.GSTAmount, &line.CostCenterID, &line.LineOrder); err != nil {
			return nil, err
		}
		d.Lines = append(d.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) List(ctx context.Context, req ListDraftsRequest) ([]Draft, int, error) {
	conditions := []string{"tenant_id = $1"}
	args := []interface{}{req.TenantID}
	argPos := 2

	if req.Type != nil {
		conditions = append(conditions, fmt.Sprintf("doc_type = $%d", argPos))
		args = append(args, *req.Type)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM voucher_drafts %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT id, tenant_id, doc_type, draft_number, server_number, document_date,
narration, status, submission_token, last_error, created_by, created_at, updated_at
FROM voucher_drafts %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var drafts []Draft
	for rows.Next() {
		var d Draft
		if err := rows.Scan(&d.ID, &d.TenantID, &d.Type, &d.DraftNumber, &d.ServerNumber, &d.DocumentDate,
			&d.Narration, &d.Status, &d.SubmissionToken, &d.LastError, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		drafts = append(drafts, d)
	}
	return drafts, total, rows.Err()
}

func (r *repository) ListByStatus(ctx context.Context, status DraftStatus, limit int) ([]Draft, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `SELECT id FROM voucher_drafts WHERE status=$1 ORDER BY updated_at LIMIT $2`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drafts []Draft
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		drafts = append(drafts, Draft{ID: id})
	}
	return drafts, rows.Err()
}

func (r *repository) ReplaceLines(ctx context.Context, draftID int64, lines []VoucherLine) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM voucher_draft_lines WHERE draft_id=$1`, draftID); err != nil {
			return err
		}
		if err := insertLines(ctx, tx, draftID, lines); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE voucher_drafts SET updated_at=NOW() WHERE id=$1`, draftID)
		return err
	})
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status DraftStatus, serverNumber *string, lastError *string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE voucher_drafts
SET status=$2, server_number=COALESCE($3, server_number), last_error=$4, updated_at=NOW()
WHERE id=$1`, id, status, serverNumber, lastError)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ResetDraft(ctx context.Context, id int64, number, token string, date time.Time, lines []VoucherLine) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE voucher_drafts
SET draft_number=$2, submission_token=$3, document_date=$4, status=$5, server_number=NULL, last_error=NULL, updated_at=NOW()
WHERE id=$1`, id, number, token, date, StatusDraft)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM voucher_draft_lines WHERE draft_id=$1`, id); err != nil {
			return err
		}
		return insertLines(ctx, tx, id, lines)
	})
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM voucher_draft_lines WHERE draft_id=$1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM voucher_drafts WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func insertLines(ctx context.Context, tx pgx.Tx, draftID int64, lines []VoucherLine) error {
	for _, line := range lines {
		if _, err := tx.Exec(ctx, `INSERT INTO voucher_draft_lines
(draft_id, account_id, debit, credit, description, gst_rate_percent, gst_amount, cost_center_id, line_order)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			draftID, line.AccountID, line.Debit, line.Credit, line.Description,
			line.GSTRatePercent, line.GSTAmount, line.CostCenterID, line.LineOrder); err != nil {
			return err
		}
	}
	return nil
}
