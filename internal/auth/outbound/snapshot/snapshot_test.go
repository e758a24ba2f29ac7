package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/cipher"
	"github.com/shandysiswandi/easymed/internal/pkg/clock"
	"github.com/shandysiswandi/easymed/internal/pkg/instrument"
	"github.com/shandysiswandi/easymed/internal/pkg/storage"
)

type failingStorage struct {
	storage.Storage
}

func (failingStorage) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func newFileStore(t *testing.T) *storage.File {
	t.Helper()

	st, err := storage.NewFile(storage.FileOptions{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	return st
}

func sampleUsers() []entity.User {
	// Non-UTC zone and nanoseconds exercise the instant round trip.
	ist := time.FixedZone("IST", 5*3600+1800)
	created := time.Date(2025, 2, 3, 9, 30, 15, 123456789, ist)

	return []entity.User{
		{
			ID: "u-1", Name: "Patient 3210", Phone: "+919876543210",
			Role: entity.RolePatient, Profile: entity.PatientProfile{},
			Verified: true, CreatedAt: created, LastLogin: created.Add(time.Minute),
		},
		{
			ID: "u-2", Name: "Asha Devi", Phone: "+919876543211",
			Role: entity.RoleAshaWorker, Profile: entity.AshaWorkerProfile{Village: "Rampur"},
			CreatedAt: created.Add(time.Hour),
			HealthProfile: &entity.HealthProfile{
				Reference: "91-1234-5678-9012",
				Data:      map[string]any{"name": "Asha Devi", "gender": "F"},
				LinkedAt:  created.Add(2 * time.Hour),
			},
			Verified: true,
		},
		{
			ID: "u-3", Name: "Admin", Email: "admin@easymed.in",
			Role: entity.RoleAdmin, Profile: entity.AdminProfile{Organization: "EasyMed"},
			CreatedAt: created.Add(3 * time.Hour),
		},
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	// Arrange
	ctx := context.Background()
	snap := New(newFileStore(t), clock.New(), instrument.NewNoop(), Config{})
	users := sampleUsers()

	// Act
	if err := snap.Save(ctx, users); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := snap.Load(ctx)

	// Assert
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != len(users) {
		t.Fatalf("Load() returned %d users, want %d", len(got), len(users))
	}
	for i := range users {
		want := users[i]
		if got[i].ID != want.ID || got[i].Role != want.Role || got[i].Profile != want.Profile {
			t.Fatalf("user %d mismatch: got %+v, want %+v", i, got[i], want)
		}
		if !got[i].CreatedAt.Equal(want.CreatedAt) || !got[i].LastLogin.Equal(want.LastLogin) {
			t.Fatalf("user %d timestamps differ: got %v/%v want %v/%v", i, got[i].CreatedAt, got[i].LastLogin, want.CreatedAt, want.LastLogin)
		}
	}
	hp := got[1].HealthProfile
	if hp == nil || hp.Reference != "91-1234-5678-9012" || hp.Data.GetString("gender") != "F" || !hp.LinkedAt.Equal(users[1].HealthProfile.LinkedAt) {
		t.Fatalf("health profile mismatch: %+v", hp)
	}
}

func TestSnapshot_LoadTolerance(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		setup func(t *testing.T) *Snapshot
	}{
		{
			name: "missing object",
			setup: func(t *testing.T) *Snapshot {
				return New(newFileStore(t), clock.New(), instrument.NewNoop(), Config{})
			},
		},
		{
			name: "malformed payload",
			setup: func(t *testing.T) *Snapshot {
				st := newFileStore(t)
				_ = st.Put(ctx, "easymed/users.json", []byte("{not json"), contentTypeJSON)
				return New(st, clock.New(), instrument.NewNoop(), Config{})
			},
		},
		{
			name: "unknown version",
			setup: func(t *testing.T) *Snapshot {
				st := newFileStore(t)
				_ = st.Put(ctx, "easymed/users.json", []byte(`{"version":99,"users":[]}`), contentTypeJSON)
				return New(st, clock.New(), instrument.NewNoop(), Config{})
			},
		},
		{
			name: "backend failure",
			setup: func(t *testing.T) *Snapshot {
				return New(failingStorage{}, clock.New(), instrument.NewNoop(), Config{})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := tt.setup(t).Load(ctx)

			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if len(users) != 0 {
				t.Fatalf("expected empty set, got %d users", len(users))
			}
		})
	}
}

func TestSnapshot_Encrypted(t *testing.T) {
	// Arrange
	ctx := context.Background()
	st := newFileStore(t)
	key := cipher.StaticKey([]byte("0123456789abcdef0123456789abcdef"))
	wrong := cipher.StaticKey([]byte("fedcba9876543210fedcba9876543210"))
	snap := New(st, clock.New(), instrument.NewNoop(), Config{Encryptor: cipher.NewAESGCM(key)})

	// Act
	if err := snap.Save(ctx, sampleUsers()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Assert
	raw, _ := st.Get(ctx, "easymed/users.json")
	if len(raw) == 0 || raw[0] == '{' {
		t.Fatalf("payload is not encrypted")
	}
	got, _ := snap.Load(ctx)
	if len(got) != 3 {
		t.Fatalf("Load() with right key returned %d users", len(got))
	}

	other := New(st, clock.New(), instrument.NewNoop(), Config{Encryptor: cipher.NewAESGCM(wrong)})
	got, err := other.Load(ctx)
	if err != nil || len(got) != 0 {
		t.Fatalf("Load() with wrong key = %d users, %v; want empty", len(got), err)
	}
}
