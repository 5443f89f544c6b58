package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"merchant-orders/internal/features/credentials/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	createCredentialsTable = `CREATE TABLE IF NOT EXISTS provider_credentials (
	namespace  TEXT NOT NULL,
	provider   TEXT NOT NULL,
	token      TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (namespace, provider)
)`

	selectCredential = `SELECT token, expires_at FROM provider_credentials WHERE namespace = $1 AND provider = $2`

	upsertCredential = `INSERT INTO provider_credentials (namespace, provider, token, expires_at, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (namespace, provider) DO UPDATE
SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at, updated_at = now()`
)

// PostgresStore implements ports.CredentialStore on a provider_credentials table.
// Each row is a complete credential document; writes replace both columns at once.
type PostgresStore struct {
	db        *sql.DB
	namespace string
}

// OpenPostgres opens a database/sql handle backed by the pgx driver.
func OpenPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return db, nil
}

// NewPostgresStore creates a PostgresStore on an open database handle.
func NewPostgresStore(db *sql.DB, namespace string) *PostgresStore {
	return &PostgresStore{
		db:        db,
		namespace: namespace,
	}
}

// EnsureSchema creates the credentials table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createCredentialsTable); err != nil {
		return fmt.Errorf("failed to create provider_credentials table: %w", err)
	}
	return nil
}

// Get returns the credential row of provider, or nil when none exists.
func (s *PostgresStore) Get(ctx context.Context, provider string) (*domain.Credential, error) {
	var cred domain.Credential

	err := s.db.QueryRowContext(ctx, selectCredential, s.namespace, provider).Scan(&cred.Token, &cred.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query credential: %w", err)
	}

	return &cred, nil
}

// Put upserts the credential row of provider.
func (s *PostgresStore) Put(ctx context.Context, provider string, cred domain.Credential) error {
	if _, err := s.db.ExecContext(ctx, upsertCredential, s.namespace, provider, cred.Token, cred.ExpiresAt); err != nil {
		return fmt.Errorf("failed to upsert credential: %w", err)
	}
	return nil
}
