//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// schema mirrors the production tables the Postgres stores expect. Integration
// tests run against a throwaway container, so the DDL lives here rather than
// in a migration tool.
const schema = `
CREATE TABLE IF NOT EXISTS buyer_accounts (
	id                 UUID PRIMARY KEY,
	email              TEXT NOT NULL,
	name               TEXT NOT NULL DEFAULT '',
	phone              TEXT NOT NULL DEFAULT '',
	company            TEXT NOT NULL DEFAULT '',
	claimed_domain     TEXT NOT NULL DEFAULT '',
	verification_state TEXT NOT NULL,
	verified_at        TIMESTAMPTZ,
	created_at         TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS membership_plans (
	id                 UUID PRIMARY KEY,
	name               TEXT NOT NULL,
	monthly_price_cents BIGINT NOT NULL DEFAULT 0,
	leads_per_month    INT NOT NULL DEFAULT 0,
	verification_badge BOOLEAN NOT NULL DEFAULT FALSE,
	contact_reveal     BOOLEAN NOT NULL DEFAULT FALSE,
	quote_access       BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS seller_subscriptions (
	seller_id UUID NOT NULL,
	plan_id   UUID NOT NULL REFERENCES membership_plans (id),
	active    BOOLEAN NOT NULL DEFAULT TRUE,
	PRIMARY KEY (seller_id, plan_id)
);

CREATE TABLE IF NOT EXISTS products (
	id          UUID PRIMARY KEY,
	seller_id   UUID NOT NULL,
	category_id UUID NOT NULL,
	name        TEXT NOT NULL,
	active      BOOLEAN NOT NULL DEFAULT TRUE,
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS leads (
	id              UUID PRIMARY KEY,
	buyer_id        UUID NOT NULL,
	product_id      UUID NOT NULL,
	seller_id       UUID NOT NULL,
	category_id     UUID NOT NULL,
	message         TEXT NOT NULL DEFAULT '',
	quantity        INT NOT NULL DEFAULT 0,
	contact_name    TEXT NOT NULL DEFAULT '',
	contact_email   TEXT NOT NULL DEFAULT '',
	contact_phone   TEXT NOT NULL DEFAULT '',
	contact_company TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL,
	is_read         BOOLEAN NOT NULL DEFAULT FALSE,
	created_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS requirements (
	id           UUID PRIMARY KEY,
	buyer_id     UUID NOT NULL,
	product_name TEXT NOT NULL,
	quantity     INT NOT NULL,
	trade_terms  TEXT NOT NULL DEFAULT '',
	target_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	currency     TEXT NOT NULL DEFAULT '',
	max_budget   DOUBLE PRECISION NOT NULL DEFAULT 0,
	details      TEXT NOT NULL DEFAULT '',
	categories   UUID[] NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS rfqs (
	id                  UUID PRIMARY KEY,
	requirement_id      UUID NOT NULL,
	buyer_id            UUID NOT NULL,
	seller_id           UUID NOT NULL,
	product_id          UUID NOT NULL,
	category_id         UUID NOT NULL,
	message             TEXT NOT NULL DEFAULT '',
	quantity            INT NOT NULL DEFAULT 0,
	contact_name        TEXT NOT NULL DEFAULT '',
	contact_email       TEXT NOT NULL DEFAULT '',
	contact_phone       TEXT NOT NULL DEFAULT '',
	contact_company     TEXT NOT NULL DEFAULT '',
	status              TEXT NOT NULL,
	quote_price         DOUBLE PRECISION,
	quote_currency      TEXT,
	quote_quantity      INT,
	quote_delivery_terms TEXT,
	quote_submitted_at  TIMESTAMPTZ,
	created_at          TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS lead_quota_usage (
	buyer_id     UUID NOT NULL,
	window_start TIMESTAMPTZ NOT NULL,
	used         INT NOT NULL DEFAULT 0,
	UNIQUE (buyer_id, window_start)
);
`

// PostgresContainer wraps a testcontainers Postgres instance with the schema
// already applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a Postgres container, applies the schema, and
// returns an open connection. Everything is torn down via t.Cleanup.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("tradegate_test"),
		tcpostgres.WithUsername("tradegate"),
		tcpostgres.WithPassword("tradegate"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("failed to ping postgres: %v", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{
		Container: container,
		DSN:       dsn,
		DB:        db,
	}
}

// TruncateTables empties the given tables. Use between tests to ensure
// isolation without paying for a fresh container.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	stmt := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", "))
	if _, err := p.DB.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}
