package shared

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IdempotencyStore persists submission tokens so a draft is posted to the
// books backend at most once, regardless of double-clicks or worker retries.
type IdempotencyStore struct {
	pool *pgxpool.Pool
}

// NewIdempotencyStore constructs the store.
func NewIdempotencyStore(pool *pgxpool.Pool) *IdempotencyStore {
	return &IdempotencyStore{pool: pool}
}

// ErrIdempotencyConflict indicates a duplicate submission token.
var ErrIdempotencyConflict = errors.New("submission already processed")

// CheckAndInsert ensures token uniqueness per document type.
func (s *IdempotencyStore) CheckAndInsert(ctx context.Context, token, docType string) error {
	if s == nil {
		return errors.New("idempotency store not initialised")
	}
	if token == "" {
		return errors.New("submission token required")
	}
	if docType == "" {
		return errors.New("document type required")
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO idempotency_keys (token, doc_type, created_at) VALUES ($1, $2, $3)`, token, docType, time.Now())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrIdempotencyConflict
		}
		return err
	}
	return nil
}

// Delete removes a token, used to roll back a submission that never
// reached the backend so a retry can claim it again.
func (s *IdempotencyStore) Delete(ctx context.Context, token string) error {
	if s == nil {
		return nil
	}
	if token == "" {
		return errors.New("submission token required")
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE token=$1`, token)
	return err
}

// Cleanup removes entries older than retention.
func (s *IdempotencyStore) Cleanup(ctx context.Context, olderThan time.Duration) error {
	if s == nil {
		return nil
	}
	cutoff := time.Now().Add(-olderThan)
	_, err := s.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE created_at < $1`, cutoff)
	return err
}
