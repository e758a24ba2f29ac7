package storage

import (
	"context"
	"errors"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var reTableName = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// ErrInvalidTable indicates an unsafe table name.
var ErrInvalidTable = errors.New("storage: invalid postgres table name")

// Postgres stores blobs in a key/value table.
type Postgres struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgres ensures the blob table exists and returns a Postgres backend.
// The pool is owned by the caller.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool, table string) (*Postgres, error) {
	if table == "" {
		table = "storage_blobs"
	}
	if !reTableName.MatchString(table) {
		return nil, ErrInvalidTable
	}

	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+table+` (
		key TEXT PRIMARY KEY,
		content_type TEXT NOT NULL DEFAULT '',
		value BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return nil, err
	}

	return &Postgres{pool: pool, table: table}, nil
}

// Put upserts data under key.
func (p *Postgres) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO `+p.table+` (key, content_type, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (key) DO UPDATE SET content_type = EXCLUDED.content_type, value = EXCLUDED.value, updated_at = now()`,
		key, contentType, data)
	return err
}

// Get returns the blob stored under key.
func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := p.pool.QueryRow(ctx, `SELECT value FROM `+p.table+` WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrObjectNotFound
	}
	return data, err
}

// Delete removes key.
func (p *Postgres) Delete(ctx context.Context, key string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM `+p.table+` WHERE key = $1`, key)
	return err
}

// Close is a no-op; the pool is closed by its owner.
func (p *Postgres) Close() error {
	return nil
}
