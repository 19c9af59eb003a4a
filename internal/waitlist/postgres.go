package waitlist

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Compile-time interface assertion.
var _ Store = (*PostgresStore)(nil)

// Schema bootstrap. The unique constraint on identity_id is what makes
// Upsert's ON CONFLICT clause atomic.
const createTableSQL = `
CREATE TABLE IF NOT EXISTS waitlist (
	id SERIAL PRIMARY KEY,
	identity_id VARCHAR(255) UNIQUE NOT NULL,
	username VARCHAR(255) NOT NULL,
	display_name VARCHAR(255),
	wallet_address VARCHAR(42),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const upsertSQL = `
INSERT INTO waitlist (identity_id, username, display_name)
VALUES ($1, $2, $3)
ON CONFLICT (identity_id) DO UPDATE
SET username = $2, display_name = $3, updated_at = NOW()`

const updateWalletSQL = `
UPDATE waitlist
SET wallet_address = $1, updated_at = NOW()
WHERE username = $2`

const countSQL = `SELECT COUNT(*) FROM waitlist`

const listSQL = `
SELECT username, COALESCE(display_name, username), wallet_address, created_at
FROM waitlist
ORDER BY created_at DESC`

// PostgresStore is a Postgres-backed implementation of Store on a pgx
// connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds database connection configuration.
type PostgresConfig struct {
	// URL is the database connection string.
	URL string

	// InsecureTLS skips certificate verification toward the database.
	// Managed Postgres offerings commonly terminate TLS with certificates
	// that do not verify against the system roots.
	InsecureTLS bool
}

// NewPostgresStore connects to Postgres, bootstraps the schema, and returns
// the store. The pool is owned by the caller's lifecycle; release it with
// Close on shutdown.
func NewPostgresStore(ctx context.Context, cfg *PostgresConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}

	if cfg.InsecureTLS {
		poolCfg.ConnConfig.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := pool.Exec(initCtx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Upsert inserts or updates the entry for identityID.
func (s *PostgresStore) Upsert(ctx context.Context, identityID, username, displayName string) error {
	if _, err := s.pool.Exec(ctx, upsertSQL, identityID, username, displayName); err != nil {
		return fmt.Errorf("upserting entry: %w", err)
	}
	return nil
}

// UpdateWallet sets the wallet address for the entry matching username.
func (s *PostgresStore) UpdateWallet(ctx context.Context, username, walletAddress string) (int64, error) {
	tag, err := s.pool.Exec(ctx, updateWalletSQL, walletAddress, username)
	if err != nil {
		return 0, fmt.Errorf("updating wallet: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the total number of entries.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, countSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return count, nil
}

// List returns all entries, newest first.
func (s *PostgresStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, listSQL)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Username, &e.DisplayName, &e.WalletAddress, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading entries: %w", err)
	}

	return entries, nil
}
