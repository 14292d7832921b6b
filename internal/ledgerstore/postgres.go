// Package ledgerstore provides concrete ports.Persistence implementations
// for the Ledger snapshot and the Discovery cache: a Postgres-backed store
// for production and a console/no-op store for local runs.
package ledgerstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Postgres implements ports.Persistence on top of a single key/blob table.
type Postgres struct {
	db     *sql.DB
	logger *zap.Logger
}

// Config holds Postgres connection configuration.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgres opens a connection and ensures the snapshot table exists.
func NewPostgres(cfg Config) (*Postgres, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(createSnapshotTable); err != nil {
		return nil, fmt.Errorf("ensure snapshot table: %w", err)
	}

	cfg.Logger.Info("postgres-ledgerstore-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &Postgres{db: db, logger: cfg.Logger}, nil
}

const createSnapshotTable = `
CREATE TABLE IF NOT EXISTS ledger_snapshots (
	key        TEXT PRIMARY KEY,
	blob       BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// SaveSnapshot upserts blob under key.
func (p *Postgres) SaveSnapshot(ctx context.Context, key string, blob []byte) error {
	const query = `
		INSERT INTO ledger_snapshots (key, blob, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET blob = EXCLUDED.blob, updated_at = now()
	`
	if _, err := p.db.ExecContext(ctx, query, key, blob); err != nil {
		return fmt.Errorf("upsert snapshot %q: %w", key, err)
	}
	p.logger.Debug("snapshot-saved", zap.String("key", key), zap.Int("bytes", len(blob)))
	return nil
}

// LoadSnapshot returns the blob stored under key, or nil with no error if
// no such key has been saved yet.
func (p *Postgres) LoadSnapshot(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT blob FROM ledger_snapshots WHERE key = $1`
	var blob []byte
	err := p.db.QueryRowContext(ctx, query, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot %q: %w", key, err)
	}
	return blob, nil
}

// Close closes the underlying database connection.
func (p *Postgres) Close() error {
	p.logger.Info("closing-postgres-ledgerstore")
	return p.db.Close()
}
