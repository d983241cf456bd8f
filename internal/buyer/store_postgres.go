package buyer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "tradegate/pkg/domain"
)

// PostgresStore persists buyer accounts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, buyerID id.BuyerID) (*Account, error) {
	query := `
		SELECT id, email, name, phone, company, claimed_domain,
		       verification_state, verified_at, created_at
		FROM buyer_accounts
		WHERE id = $1
	`
	var a Account
	var rawID, rawState string
	var verifiedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, buyerID.String()).Scan(
		&rawID, &a.Email, &a.Name, &a.Phone, &a.Company, &a.ClaimedDomain,
		&rawState, &verifiedAt, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get buyer account: %w", err)
	}

	u, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse buyer id: %w", err)
	}
	a.ID = id.BuyerID(u)
	state, err := id.ParseVerificationState(rawState)
	if err != nil {
		return nil, fmt.Errorf("buyer %s: %w", rawID, err)
	}
	a.State = state
	if verifiedAt.Valid {
		t := verifiedAt.Time
		a.VerifiedAt = &t
	}
	return &a, nil
}

// MarkVerified flips the account to verified once. The WHERE clause keeps the
// transition idempotent: a second call matches no rows and verified_at is
// never rewritten.
func (s *PostgresStore) MarkVerified(ctx context.Context, buyerID id.BuyerID, verifiedAt time.Time) error {
	query := `
		UPDATE buyer_accounts
		SET verification_state = $2, verified_at = $3
		WHERE id = $1 AND verification_state <> $2
	`
	_, err := s.db.ExecContext(ctx, query, buyerID.String(), string(id.VerificationVerified), verifiedAt)
	if err != nil {
		return fmt.Errorf("mark buyer verified: %w", err)
	}
	return nil
}
