package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
)

func TestDirectory_InsertAndLookup(t *testing.T) {
	// Arrange
	ctx := context.Background()
	d := NewDirectory()
	u := entity.User{ID: "u-1", Phone: "+919876543210", Email: "Doc@EasyMed.in", Role: entity.RoleDoctor}

	// Act
	err := d.Insert(ctx, u)

	// Assert
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if got, err := d.FindByPhone(ctx, "+919876543210"); err != nil || got.ID != "u-1" {
		t.Fatalf("FindByPhone() = %v, %v", got, err)
	}
	if got, err := d.FindByEmail(ctx, "doc@easymed.in"); err != nil || got.ID != "u-1" {
		t.Fatalf("FindByEmail() = %v, %v", got, err)
	}
	if _, err := d.GetByID(ctx, "missing"); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDirectory_InsertDuplicatePhone(t *testing.T) {
	ctx := context.Background()
	d := NewDirectory()
	_ = d.Insert(ctx, entity.User{ID: "u-1", Phone: "+919876543210"})

	err := d.Insert(ctx, entity.User{ID: "u-2", Phone: "+919876543210"})

	if !errors.Is(err, goerror.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestDirectory_EmptyKeysNotIndexed(t *testing.T) {
	ctx := context.Background()
	d := NewDirectory()

	if err := d.Insert(ctx, entity.User{ID: "a", Email: "admin@easymed.in"}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := d.Insert(ctx, entity.User{ID: "b", Email: "other@easymed.in"}); err != nil {
		t.Fatalf("second user without phone should insert, got %v", err)
	}
	if _, err := d.FindByPhone(ctx, ""); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("empty phone must not resolve, got %v", err)
	}
}

func TestDirectory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	d := NewDirectory()
	_ = d.Insert(ctx, entity.User{ID: "u-1", Name: "Original", HealthProfile: &entity.HealthProfile{Data: map[string]any{"a": 1}}})

	got, _ := d.GetByID(ctx, "u-1")
	got.Name = "Mutated"
	got.HealthProfile.Data["a"] = 2

	again, _ := d.GetByID(ctx, "u-1")
	if again.Name != "Original" || again.HealthProfile.Data["a"] != 1 {
		t.Fatalf("store was mutated through returned value: %+v", again)
	}
}

func TestDirectory_UpdateReindexes(t *testing.T) {
	ctx := context.Background()
	d := NewDirectory()
	_ = d.Insert(ctx, entity.User{ID: "u-1", Email: "old@easymed.in"})

	if err := d.Update(ctx, entity.User{ID: "u-1", Email: "new@easymed.in"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if _, err := d.FindByEmail(ctx, "old@easymed.in"); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("stale email index, got %v", err)
	}
	if _, err := d.FindByEmail(ctx, "new@easymed.in"); err != nil {
		t.Fatalf("new email not indexed: %v", err)
	}
	if err := d.Update(ctx, entity.User{ID: "ghost"}); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDirectory_AllSortedReplaceClear(t *testing.T) {
	ctx := context.Background()
	d := NewDirectory()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_ = d.Replace(ctx, []entity.User{
		{ID: "c", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "a", CreatedAt: base},
		{ID: "b", CreatedAt: base.Add(time.Hour)},
	})

	all, _ := d.All(ctx)
	if len(all) != 3 || all[0].ID != "a" || all[2].ID != "c" {
		t.Fatalf("unexpected order: %+v", all)
	}

	_ = d.Clear(ctx)
	if n, _ := d.Count(ctx); n != 0 {
		t.Fatalf("Count() after Clear = %d", n)
	}
}

func TestDirectory_ConcurrentInsert(t *testing.T) {
	ctx := context.Background()
	d := NewDirectory()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = d.Insert(ctx, entity.User{ID: fmt.Sprintf("u-%d", i), Phone: entity.Phone(fmt.Sprintf("+9190000000%02d", i))})
		}()
	}
	wg.Wait()

	if n, _ := d.Count(ctx); n != 50 {
		t.Fatalf("Count() = %d, want 50", n)
	}
}

func TestState_ExpiryAndSweep(t *testing.T) {
	// Arrange
	ctx := context.Background()
	s := NewState()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	phone := entity.Phone("+919876543210")
	other := entity.Phone("+919876543211")

	_ = s.SaveOTP(ctx, entity.OTPEntry{Phone: phone, CodeHash: "h", ExpiresAt: now.Add(5 * time.Minute)})
	_ = s.SaveSession(ctx, entity.VerificationSession{Phone: phone, StartedAt: now, ExpiresAt: now.Add(5 * time.Minute)})
	_ = s.SaveSession(ctx, entity.VerificationSession{Phone: other, StartedAt: now, ExpiresAt: now.Add(time.Minute)})
	_ = s.SavePending(ctx, entity.PendingRegistration{Phone: phone, ExpiresAt: now.Add(24 * time.Hour)})

	// Act
	later := now.Add(2 * time.Minute)
	live, _ := s.CountSessions(ctx, later)
	removed, _ := s.DeleteExpired(ctx, later)

	// Assert
	if live != 1 {
		t.Fatalf("CountSessions() = %d, want 1", live)
	}
	if removed != 1 {
		t.Fatalf("DeleteExpired() = %d, want 1", removed)
	}
	if _, err := s.GetSession(ctx, other); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("expired session should be swept, got %v", err)
	}
	if _, err := s.GetOTP(ctx, phone); err != nil {
		t.Fatalf("live otp should remain: %v", err)
	}
	if n, _ := s.CountPending(ctx, later); n != 1 {
		t.Fatalf("CountPending() = %d, want 1", n)
	}
}

func TestState_OverwriteAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewState()
	phone := entity.Phone("+919876543210")

	_ = s.SaveOTP(ctx, entity.OTPEntry{Phone: phone, CodeHash: "first"})
	_ = s.SaveOTP(ctx, entity.OTPEntry{Phone: phone, CodeHash: "second"})

	got, _ := s.GetOTP(ctx, phone)
	if got.CodeHash != "second" {
		t.Fatalf("expected overwrite, got %q", got.CodeHash)
	}

	_ = s.DeleteOTP(ctx, phone)
	if _, err := s.GetOTP(ctx, phone); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
