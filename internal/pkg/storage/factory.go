package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	// DriverFile selects the local filesystem backend.
	DriverFile = "file"
	// DriverRedis selects the Redis backend.
	DriverRedis = "redis"
	// DriverPostgres selects the PostgreSQL backend.
	DriverPostgres = "postgres"
	// DriverS3 selects the AWS S3 backend.
	DriverS3 = "s3"
	// DriverGCS selects the Google Cloud Storage backend.
	DriverGCS = "gcs"
	// DriverMinIO selects the MinIO backend.
	DriverMinIO = "minio"
)

var (
	ErrUnknownDriver = errors.New("storage: unknown driver")
	// ErrClientRequired means a connection-backed driver was selected without a connection.
	ErrClientRequired = errors.New("storage: client is required")
)

// FactoryOptions groups configuration for storage drivers.
type FactoryOptions struct {
	// File configures the filesystem backend.
	File FileOptions
	// Redis configures the Redis backend.
	Redis RedisOptions
	// Postgres configures the PostgreSQL backend.
	Postgres PostgresOptions
	// S3 configures the S3 backend.
	S3 S3Options
	// GCS configures the GCS backend.
	GCS GCSOptions
	// MinIO configures the MinIO backend.
	MinIO MinIOOptions
}

// RedisOptions configures the Redis backend.
type RedisOptions struct {
	// Client is an established Redis client.
	Client redis.UniversalClient
	// Prefix is prepended to every key.
	Prefix string
}

// PostgresOptions configures the PostgreSQL backend.
type PostgresOptions struct {
	// Pool is an established connection pool.
	Pool *pgxpool.Pool
	// Table is the blob table name.
	Table string
}

// NewFromDriver opens the blob store that holds the auth snapshot. An empty
// driver selects the filesystem. Redis and Postgres reuse connections the
// caller already opened.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Storage, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))

	var (
		s   Storage
		err error
	)
	switch driver {
	case DriverFile, "":
		s, err = NewFile(opts.File)
	case DriverRedis:
		if opts.Redis.Client == nil {
			return nil, fmt.Errorf("storage: init %s: %w", driver, ErrClientRequired)
		}
		s = NewRedis(opts.Redis.Client, opts.Redis.Prefix)
	case DriverPostgres:
		if opts.Postgres.Pool == nil {
			return nil, fmt.Errorf("storage: init %s: %w", driver, ErrClientRequired)
		}
		s, err = NewPostgres(ctx, opts.Postgres.Pool, opts.Postgres.Table)
	case DriverS3:
		s, err = NewS3(ctx, opts.S3)
	case DriverGCS:
		s, err = NewGCS(ctx, opts.GCS)
	case DriverMinIO:
		s, err = NewMinIO(ctx, opts.MinIO)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: init %s: %w", driver, err)
	}
	return s, nil
}
