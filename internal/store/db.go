package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return &DB{Client: db}, db.PingContext(context.Background())
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

// PostgresBlob keeps the serialized event collection in a single upserted
// row keyed by the fixed slot name. Alternative to RedisBlob, selected via
// STORAGE_BACKEND.
type PostgresBlob struct {
	db  *sql.DB
	key string
}

// NewPostgresBlob ensures the slot table exists and returns the blob.
func NewPostgresBlob(ctx context.Context, db *sql.DB, key string) (*PostgresBlob, error) {
	if key == "" {
		key = DefaultSlotKey
	}
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv_slots (
			key        TEXT PRIMARY KEY,
			data       BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return nil, err
	}
	return &PostgresBlob{db: db, key: key}, nil
}

// Load returns the stored bytes, nil when the slot has never been written.
func (b *PostgresBlob) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx, `SELECT data FROM kv_slots WHERE key = $1`, b.key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save rewrites the slot in full.
func (b *PostgresBlob) Save(ctx context.Context, data []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO kv_slots (key, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, b.key, data)
	return err
}
