package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	// missing key
	if _, err := s.Get(ctx, "easymed/users.json"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrObjectNotFound", err)
	}

	// put then get
	payload := []byte(`{"version":1,"users":[]}`)
	if err := s.Put(ctx, "easymed/users.json", payload, "application/json"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := s.Get(ctx, "easymed/users.json")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("Get() = %s, want %s", got, payload)
	}

	// overwrite
	if err := s.Put(ctx, "easymed/users.json", []byte("v2"), "application/json"); err != nil {
		t.Fatalf("Put(overwrite) error = %v", err)
	}
	got, err = s.Get(ctx, "easymed/users.json")
	if err != nil || string(got) != "v2" {
		t.Fatalf("Get(after overwrite) = %q, %v", got, err)
	}

	// delete is idempotent
	if err := s.Delete(ctx, "easymed/users.json"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, "easymed/users.json"); err != nil {
		t.Fatalf("Delete(again) error = %v", err)
	}
	if _, err := s.Get(ctx, "easymed/users.json"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("Get(after delete) error = %v, want ErrObjectNotFound", err)
	}
}

func TestFile(t *testing.T) {
	s, err := NewFile(FileOptions{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}

	exerciseStorage(t, s)
}

func TestFile_RejectsTraversal(t *testing.T) {
	s, err := NewFile(FileOptions{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}

	if err := s.Put(context.Background(), "../escape", []byte("x"), ""); err == nil {
		t.Fatalf("expected error for path traversal")
	}
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := NewRedis(client, "blob:")

	exerciseStorage(t, s)
}

func TestNewFromDriver(t *testing.T) {
	s, err := NewFromDriver(context.Background(), DriverFile, FactoryOptions{File: FileOptions{Dir: t.TempDir()}})
	if err != nil {
		t.Fatalf("NewFromDriver(file) error = %v", err)
	}
	if _, ok := s.(*File); !ok {
		t.Fatalf("expected *File, got %T", s)
	}

	if _, err := NewFromDriver(context.Background(), "ftp", FactoryOptions{}); !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("expected ErrUnknownDriver, got %v", err)
	}
}

func TestNewFromDriver_RequiresConnection(t *testing.T) {
	for _, driver := range []string{DriverRedis, DriverPostgres} {
		if _, err := NewFromDriver(context.Background(), driver, FactoryOptions{}); !errors.Is(err, ErrClientRequired) {
			t.Fatalf("NewFromDriver(%s) error = %v, want ErrClientRequired", driver, err)
		}
	}
}
