package quota

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	id "tradegate/pkg/domain"
	"tradegate/pkg/requestcontext"
)

// PostgresStore keeps quota counters in PostgreSQL. The reserve is a single
// conditional upsert, so the row lock taken by the statement serializes
// concurrent reserves for the same buyer.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// windowStart buckets usage rows. Lifetime mode uses the zero time so every
// reserve lands on one row per buyer.
func windowStart(ctx context.Context, window time.Duration) time.Time {
	if window <= 0 {
		return time.Time{}
	}
	return requestcontext.Now(ctx).UTC().Truncate(window)
}

func (s *PostgresStore) Reserve(ctx context.Context, buyerID id.BuyerID, limit int, window time.Duration) (*Result, error) {
	query := `
		INSERT INTO lead_quota_usage (buyer_id, window_start, used)
		VALUES ($1, $2, 1)
		ON CONFLICT (buyer_id, window_start) DO UPDATE
			SET used = lead_quota_usage.used + 1
			WHERE lead_quota_usage.used < $3
		RETURNING used
	`
	var used int
	err := s.db.QueryRowContext(ctx, query, buyerID.String(), windowStart(ctx, window), limit).Scan(&used)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Conditional update matched nothing: the cap is reached.
			current, uerr := s.Usage(ctx, buyerID, window)
			if uerr != nil {
				return nil, uerr
			}
			return &Result{Allowed: false, Used: current, Limit: limit}, nil
		}
		return nil, fmt.Errorf("reserve quota slot: %w", err)
	}
	return &Result{Allowed: true, Used: used, Limit: limit, Remaining: limit - used}, nil
}

func (s *PostgresStore) Release(ctx context.Context, buyerID id.BuyerID, window time.Duration) error {
	query := `
		UPDATE lead_quota_usage
		SET used = GREATEST(used - 1, 0)
		WHERE buyer_id = $1 AND window_start = $2
	`
	if _, err := s.db.ExecContext(ctx, query, buyerID.String(), windowStart(ctx, window)); err != nil {
		return fmt.Errorf("release quota slot: %w", err)
	}
	return nil
}

func (s *PostgresStore) Usage(ctx context.Context, buyerID id.BuyerID, window time.Duration) (int, error) {
	query := `
		SELECT used FROM lead_quota_usage
		WHERE buyer_id = $1 AND window_start = $2
	`
	var used int
	err := s.db.QueryRowContext(ctx, query, buyerID.String(), windowStart(ctx, window)).Scan(&used)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("read quota usage: %w", err)
	}
	return used, nil
}
