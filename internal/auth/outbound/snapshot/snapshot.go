package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/cipher"
	"github.com/shandysiswandi/easymed/internal/pkg/instrument"
	"github.com/shandysiswandi/easymed/internal/pkg/storage"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	formatVersion = 1

	contentTypeJSON      = "application/json"
	contentTypeEncrypted = "application/octet-stream"
)

const cipherPurpose = "auth.snapshot"

type clocker interface {
	Now() time.Time
}

// Snapshot persists the whole user directory as one object in blob storage.
type Snapshot struct {
	store     storage.Storage
	key       string
	encryptor cipher.Encryptor
	clock     clocker
	ins       instrument.Instrumentation
}

// Config configures a Snapshot.
type Config struct {
	// Key is the fixed storage key of the snapshot object.
	Key string
	// Encryptor seals the payload at rest when set.
	Encryptor cipher.Encryptor
}

func New(store storage.Storage, clk clocker, ins instrument.Instrumentation, cfg Config) *Snapshot {
	if cfg.Key == "" {
		cfg.Key = "easymed/users.json"
	}
	return &Snapshot{store: store, key: cfg.Key, encryptor: cfg.Encryptor, clock: clk, ins: ins}
}

func (s *Snapshot) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.outbound.snapshot").Start(ctx, name)
}

func (s *Snapshot) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Snapshot) scope() cipher.Scope {
	return cipher.Scope{Purpose: cipherPurpose, Subject: s.key}
}

// Load returns the persisted users. A missing, unreadable or corrupt snapshot
// is logged and yields an empty set.
func (s *Snapshot) Load(ctx context.Context) ([]entity.User, error) {
	ctx, span := s.startSpan(ctx, "Load")
	var err error
	defer func() { s.endSpan(span, err) }()

	raw, err := s.store.Get(ctx, s.key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		slog.InfoContext(ctx, "user snapshot not found, starting empty", "key", s.key)
		err = nil
		return []entity.User{}, nil
	}
	if err != nil {
		slog.WarnContext(ctx, "failed to read user snapshot, starting empty", "key", s.key, "error", err)
		return []entity.User{}, nil
	}

	if s.encryptor != nil {
		raw, err = s.encryptor.Decrypt(raw, s.scope())
		if err != nil {
			slog.WarnContext(ctx, "failed to decrypt user snapshot, starting empty", "key", s.key, "error", err)
			return []entity.User{}, nil
		}
	}

	users, err := decode(raw)
	if err != nil {
		slog.WarnContext(ctx, "user snapshot is malformed, starting empty", "key", s.key, "error", err)
		return []entity.User{}, nil
	}

	return users, nil
}

// Save overwrites the snapshot with users.
func (s *Snapshot) Save(ctx context.Context, users []entity.User) (err error) {
	ctx, span := s.startSpan(ctx, "Save")
	defer func() { s.endSpan(span, err) }()

	raw, err := encode(users, s.clock.Now())
	if err != nil {
		return err
	}

	contentType := contentTypeJSON
	if s.encryptor != nil {
		raw, err = s.encryptor.Encrypt(raw, s.scope())
		if err != nil {
			return fmt.Errorf("encrypt snapshot: %w", err)
		}
		contentType = contentTypeEncrypted
	}

	err = s.store.Put(ctx, s.key, raw, contentType)
	return err
}
