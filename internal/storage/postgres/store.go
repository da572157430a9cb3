package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hongminglow/rta-portal/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store provides Postgres-backed persistence for users, schemes, folios and transactions.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store and runs migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE SEQUENCE IF NOT EXISTS investor_id_seq;`,
		`CREATE SEQUENCE IF NOT EXISTS folio_number_seq;`,
		`CREATE SEQUENCE IF NOT EXISTS transaction_id_seq;`,
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			full_name TEXT NOT NULL,
			phone_number TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'investor',
			sub_role TEXT NOT NULL DEFAULT '',
			permissions TEXT[] NOT NULL DEFAULT '{}',
			investor_id TEXT UNIQUE,
			amc_id TEXT NOT NULL DEFAULT '',
			distributor_id TEXT NOT NULL DEFAULT '',
			employee_id TEXT UNIQUE,
			status TEXT NOT NULL DEFAULT 'active',
			failed_login_attempts INT NOT NULL DEFAULT 0,
			last_login TIMESTAMPTZ,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_users_role ON users (role);`,
		`CREATE TABLE IF NOT EXISTS schemes (
			scheme_id TEXT PRIMARY KEY,
			scheme_name TEXT NOT NULL,
			scheme_type TEXT NOT NULL,
			plan_type TEXT NOT NULL,
			option_type TEXT NOT NULL,
			amc_id TEXT NOT NULL,
			current_nav NUMERIC(10,4) NOT NULL,
			nav_date DATE NOT NULL,
			minimum_investment NUMERIC(12,2) NOT NULL DEFAULT 100,
			exit_load_percentage NUMERIC(5,2) NOT NULL DEFAULT 0,
			exit_load_period_days INT NOT NULL DEFAULT 0,
			is_open_for_investment BOOLEAN NOT NULL DEFAULT TRUE,
			is_open_for_redemption BOOLEAN NOT NULL DEFAULT TRUE,
			risk_category TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS folios (
			folio_number TEXT PRIMARY KEY,
			investor_id TEXT NOT NULL,
			amc_id TEXT NOT NULL,
			scheme_id TEXT NOT NULL REFERENCES schemes(scheme_id),
			total_units NUMERIC(15,4) NOT NULL DEFAULT 0,
			current_nav NUMERIC(10,4) NOT NULL,
			total_value NUMERIC(15,2) NOT NULL DEFAULT 0,
			total_investment NUMERIC(15,2) NOT NULL DEFAULT 0,
			average_cost_per_unit NUMERIC(10,4) NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active',
			is_locked BOOLEAN NOT NULL DEFAULT FALSE,
			transaction_count INT NOT NULL DEFAULT 0,
			last_transaction_date DATE,
			CONSTRAINT uq_folio_investor_amc_scheme UNIQUE (investor_id, amc_id, scheme_id)
		);`,
		`CREATE TABLE IF NOT EXISTS transactions (
			transaction_id TEXT PRIMARY KEY,
			investor_id TEXT NOT NULL,
			folio_number TEXT NOT NULL REFERENCES folios(folio_number),
			scheme_id TEXT NOT NULL,
			amc_id TEXT NOT NULL,
			transaction_type TEXT NOT NULL,
			transaction_date DATE NOT NULL,
			amount NUMERIC(15,2) NOT NULL,
			nav_per_unit NUMERIC(10,4) NOT NULL,
			units NUMERIC(15,4) NOT NULL,
			status TEXT NOT NULL,
			payment_mode TEXT NOT NULL DEFAULT '',
			plan TEXT NOT NULL DEFAULT '',
			exit_load_amount NUMERIC(15,2) NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`ALTER TABLE transactions ADD COLUMN IF NOT EXISTS linked_transaction_id TEXT NOT NULL DEFAULT '';`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_investor ON transactions (investor_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_amc ON transactions (amc_id, created_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return s.seedSchemes(ctx)
}

func (s *Store) seedSchemes(ctx context.Context) error {
	const stmt = `
		INSERT INTO schemes (scheme_id, scheme_name, scheme_type, plan_type, option_type, amc_id, current_nav, nav_date,
			minimum_investment, exit_load_percentage, exit_load_period_days, is_open_for_investment, is_open_for_redemption, risk_category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (scheme_id) DO NOTHING;`
	for _, sc := range storage.SeedSchemes(time.Now().UTC()) {
		if _, err := s.pool.Exec(ctx, stmt, sc.SchemeID, sc.Name, sc.SchemeType, sc.PlanType, sc.OptionType, sc.AMCID,
			sc.CurrentNAV, sc.NAVDate, sc.MinimumInvestment, sc.ExitLoadPercentage, sc.ExitLoadPeriodDays,
			sc.OpenForInvestment, sc.OpenForRedemption, sc.RiskCategory); err != nil {
			return fmt.Errorf("seed schemes: %w", err)
		}
	}
	return nil
}

// classify maps driver errors onto the storage sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return storage.ErrAlreadyExists
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return err
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
