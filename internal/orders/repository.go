package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/draftdesk/draftdesk/internal/documents"
	"github.com/draftdesk/draftdesk/internal/platform/db"
	"github.com/draftdesk/draftdesk/internal/shared"
)

// ListDraftsRequest filters the draft listing.
type ListDraftsRequest struct {
	TenantID int64
	Type     *string
	Status   *DraftStatus
	PartyID  *int64
	Limit    int
	Offset   int
}

// Repository encapsulates DB operations for item document drafts.
type Repository interface {
	Create(ctx context.Context, draft Draft) (int64, error)
	Get(ctx context.Context, id int64) (*Draft, error)
	List(ctx context.Context, req ListDraftsRequest) ([]Draft, int, error)
	ReplaceLines(ctx context.Context, draftID int64, lines []documents.LineItem, totals documents.Totals) error
	UpdateHeader(ctx context.Context, id int64, draft Draft, totals documents.Totals) error
	UpdateStatus(ctx context.Context, id int64, status DraftStatus, serverNumber *string, lastError *string) error
	ResetDraft(ctx context.Context, id int64, number, token string, date time.Time, lines []documents.LineItem) error
	Delete(ctx context.Context, id int64) error
	ListByStatus(ctx context.Context, status DraftStatus, limit int) ([]Draft, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const draftColumns = `id, tenant_id, doc_type, draft_number, server_number, document_date, party_id,
currency, rate_mode, header_discount_percent, roundoff, subtotal, discount_amount, final_total,
status, submission_token, last_error, created_by, created_at, updated_at`

func scanDraft(row pgx.Row) (*Draft, error) {
	var d Draft
	err := row.Scan(&d.ID, &d.TenantID, &d.Type, &d.DraftNumber, &d.ServerNumber, &d.DocumentDate,
		&d.PartyID, &d.Currency, &d.RateMode, &d.HeaderDiscountPercent, &d.RoundOff,
		&d.Subtotal, &d.DiscountAmount, &d.FinalTotal,
		&d.Status, &d.SubmissionToken, &d.LastError, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *repository) Create(ctx context.Context, draft Draft) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `INSERT INTO order_drafts
(tenant_id, doc_type, draft_number, document_date, party_id, currency, rate_mode,
 header_discount_percent, roundoff, subtotal, discount_amount, final_total,
 status, submission_token, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15) RETURNING id`,
			draft.TenantID, draft.Type, draft.DraftNumber, draft.DocumentDate, draft.PartyID,
			draft.Currency, draft.RateMode, draft.HeaderDiscountPercent, draft.RoundOff,
			draft.Subtotal, draft.DiscountAmount, draft.FinalTotal,
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
	d, err := scanDraft(r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM order_drafts WHERE id=$1`, draftColumns), id))
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT reference_id, description, quantity, free_quantity, unit_price,
discount_percent, cgst_rate_percent, sgst_rate_percent, igst_rate_percent, cess_rate_percent,
discount_amount, taxable_amount, cgst_amount, sgst_amount, igst_amount, cess_amount,
total_tax_amount, line_total, line_order
FROM order_draft_lines WHERE draft_id=$1 ORDER BY line_order`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var line documents.LineItem
		if err := rows.Scan(&line.ReferenceID, &line.Description, &line.Quantity, &line.FreeQuantity,
			&line.UnitPrice, &line.DiscountPercent, &line.CGSTRatePercent, &line.SGSTRatePercent,
			&line.IGSTRatePercent, &line.CessRatePercent, &line.DiscountAmount, &line.TaxableAmount,
			&line.CGSTAmount, &line.SGSTAmount, &line.IGSTAmount, &line.CessAmount,
			&line.TotalTaxAmount, &line.LineTotal, &line.LineOrder); err != nil {
			return nil, err
		}
		d.Lines = append(d.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return d, nil
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
	if req.PartyID != nil {
		conditions = append(conditions, fmt.Sprintf("party_id = $%d", argPos))
		args = append(args, *req.PartyID)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM order_drafts %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM order_drafts %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		draftColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var drafts []Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, 0, err
		}
		drafts = append(drafts, *d)
	}
	return drafts, total, rows.Err()
}

func (r *repository) ListByStatus(ctx context.Context, status DraftStatus, limit int) ([]Draft, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `SELECT id FROM order_drafts WHERE status=$1 ORDER BY updated_at LIMIT $2`, status, limit)
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

func (r *repository) ReplaceLines(ctx context.Context, draftID int64, lines []documents.LineItem, totals documents.Totals) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM order_draft_lines WHERE draft_id=$1`, draftID); err != nil {
			return err
		}
		if err := insertLines(ctx, tx, draftID, lines); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `UPDATE order_drafts SET subtotal=$2, discount_amount=$3, final_total=$4, updated_at=NOW() WHERE id=$1`,
			draftID, totals.Subtotal, totals.DiscountAmount, totals.FinalTotal)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *repository) UpdateHeader(ctx context.Context, id int64, draft Draft, totals documents.Totals) error {
	tag, err := r.pool.Exec(ctx, `UPDATE order_drafts
SET party_id=$2, document_date=$3, header_discount_percent=$4, roundoff=$5,
    subtotal=$6, discount_amount=$7, final_total=$8, updated_at=NOW()
WHERE id=$1`,
		id, draft.PartyID, draft.DocumentDate, draft.HeaderDiscountPercent, draft.RoundOff,
		totals.Subtotal, totals.DiscountAmount, totals.FinalTotal)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status DraftStatus, serverNumber *string, lastError *string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE order_drafts
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

func (r *repository) ResetDraft(ctx context.Context, id int64, number, token string, date time.Time, lines []documents.LineItem) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE order_drafts
SET draft_number=$2, submission_token=$3, document_date=$4, status=$5,
    header_discount_percent=0, roundoff=0, subtotal=0, discount_amount=0, final_total=0,
    server_number=NULL, last_error=NULL, updated_at=NOW()
WHERE id=$1`, id, number, token, date, StatusDraft)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM order_draft_lines WHERE draft_id=$1`, id); err != nil {
			return err
		}
		return insertLines(ctx, tx, id, lines)
	})
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM order_draft_lines WHERE draft_id=$1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM order_drafts WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func insertLines(ctx context.Context, tx pgx.Tx, draftID int64, lines []documents.LineItem) error {
	for _, line := range lines {
		if _, err := tx.Exec(ctx, `INSERT INTO order_draft_lines
(draft_id, reference_id, description, quantity, free_quantity, unit_price, discount_percent,
 cgst_rate_percent, sgst_rate_percent, igst_rate_percent, cess_rate_percent,
 discount_amount, taxable_amount, cgst_amount, sgst_amount, igst_amount, cess_amount,
 total_tax_amount, line_total, line_order)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
			draftID, line.ReferenceID, line.Description, line.Quantity, line.FreeQuantity,
			line.UnitPrice, line.DiscountPercent, line.CGSTRatePercent, line.SGSTRatePercent,
			line.IGSTRatePercent, line.CessRatePercent, line.DiscountAmount, line.TaxableAmount,
			line.CGSTAmount, line.SGSTAmount, line.IGSTAmount, line.CessAmount,
			line.TotalTaxAmount, line.LineTotal, line.LineOrder); err != nil {
			return err
		}
	}
	return nil
}
