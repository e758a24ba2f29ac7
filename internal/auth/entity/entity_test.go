package entity

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Phone
		wantErr bool
	}{
		{name: "ten digits", raw: "9876543210", want: "+919876543210"},
		{name: "ten digits with separators", raw: "98765 43210", want: "+919876543210"},
		{name: "twelve digits with country code", raw: "919876543210", want: "+919876543210"},
		{name: "canonical", raw: "+919876543210", want: "+919876543210"},
		{name: "thirteen digits with trunk zero", raw: "0919876543210", want: "+919876543210"},
		{name: "dashed", raw: "+91-98765-43210", want: "+919876543210"},
		{name: "ten digits bad prefix", raw: "1234567890", wantErr: true},
		{name: "too short", raw: "98765", wantErr: true},
		{name: "twelve digits wrong country", raw: "449876543210", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "letters only", raw: "phone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got, err := NormalizePhone(tt.raw)

			// Assert
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPhone) {
					t.Fatalf("expected ErrInvalidPhone, got %v", err)
				}
				if got != "" {
					t.Fatalf("expected no value, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	for _, raw := range []string{"9876543210", "919876543210", "0919876543210", "7000000001"} {
		first, err := NormalizePhone(raw)
		if err != nil {
			t.Fatalf("NormalizePhone(%q) error = %v", raw, err)
		}

		second, err := NormalizePhone(first.String())
		if err != nil {
			t.Fatalf("NormalizePhone(%q) error = %v", first, err)
		}

		if first != second {
			t.Fatalf("not idempotent: %q -> %q", first, second)
		}
		if !IsE164(second.String()) {
			t.Fatalf("%q is not E.164", second)
		}
	}
}

func TestIsE164(t *testing.T) {
	tests := map[string]bool{
		"+919876543210":     true,
		"+12":               true,
		"+123456789012345":  true,
		"+1234567890123456": false,
		"+0919876543210":    false,
		"919876543210":      false,
		"+91 98765":         false,
	}

	for in, want := range tests {
		if got := IsE164(in); got != want {
			t.Fatalf("IsE164(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPhone_Last4(t *testing.T) {
	if got := Phone("+919876543210").Last4(); got != "3210" {
		t.Fatalf("Last4() = %q", got)
	}
	if got := Phone("+12").Last4(); got != "12" {
		t.Fatalf("Last4() = %q", got)
	}
}

func TestRole(t *testing.T) {
	tests := []struct {
		raw  string
		want Role
	}{
		{"", RolePatient},
		{"Patient", RolePatient},
		{"asha-worker", RoleAshaWorker},
		{"doctor", RoleDoctor},
		{"admin", RoleAdmin},
		{"nurse", RoleUnknown},
	}

	for _, tt := range tests {
		got := RoleFromString(tt.raw)
		if got != tt.want {
			t.Fatalf("RoleFromString(%q) = %v, want %v", tt.raw, got, tt.want)
		}
		if !got.IsUnknown() && RoleFromString(got.String()) != got {
			t.Fatalf("round trip failed for %v", got)
		}
	}

	if Role(42).Ensure() != RoleUnknown {
		t.Fatalf("expected unknown role to ensure to RoleUnknown")
	}
}

func TestProfileEncoding(t *testing.T) {
	profiles := []RoleProfile{
		PatientProfile{},
		AshaWorkerProfile{Village: "Rampur"},
		DoctorProfile{Specialty: "Cardiology"},
		AdminProfile{Organization: "EasyMed"},
	}

	for _, p := range profiles {
		// Act
		enc, err := EncodeProfile(p)
		if err != nil {
			t.Fatalf("EncodeProfile(%T) error = %v", p, err)
		}
		dec, err := DecodeProfile(enc)

		// Assert
		if err != nil {
			t.Fatalf("DecodeProfile(%T) error = %v", p, err)
		}
		if dec != p {
			t.Fatalf("got %#v, want %#v", dec, p)
		}
	}

	if _, err := DecodeProfile(EncodedProfile{Role: "nurse"}); !errors.Is(err, ErrProfileRoleMismatch) {
		t.Fatalf("expected ErrProfileRoleMismatch, got %v", err)
	}
}

func TestNewRoleProfile_DropsForeignAttributes(t *testing.T) {
	attrs := ProfileAttributes{Specialty: "ENT", Village: "Rampur", Organization: "Org"}

	if got := NewRoleProfile(RoleDoctor, attrs); got != (DoctorProfile{Specialty: "ENT"}) {
		t.Fatalf("got %#v", got)
	}
	if got := NewRoleProfile(RolePatient, attrs); got != (PatientProfile{}) {
		t.Fatalf("got %#v", got)
	}
}

func TestPendingRegistration_Materialize(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	p := PendingRegistration{
		Phone:     "+919876543210",
		Name:      "Asha Devi",
		Role:      RoleAshaWorker,
		Profile:   AshaWorkerProfile{Village: "Rampur"},
		ExpiresAt: now.Add(time.Hour),
	}

	u := p.Materialize("u-1", now)

	if u.ID != "u-1" || u.Role != RoleAshaWorker || !u.Verified || !u.CreatedAt.Equal(now) {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.Profile != (AshaWorkerProfile{Village: "Rampur"}) {
		t.Fatalf("unexpected profile: %#v", u.Profile)
	}
	if p.IsExpired(now) || !p.IsExpired(now.Add(2*time.Hour)) {
		t.Fatalf("unexpected expiry evaluation")
	}
}

func TestDefaultPatient(t *testing.T) {
	u := DefaultPatient("u-2", "+919876543210", time.Now())

	if u.Name != "Patient 3210" || u.Role != RolePatient {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestUser_CloneIsDeep(t *testing.T) {
	u := User{ID: "u-1", HealthProfile: &HealthProfile{Reference: "abha", Data: map[string]any{"k": "v"}}}

	c := u.Clone()
	c.HealthProfile.Data["k"] = "changed"
	c.HealthProfile.Reference = "other"

	if u.HealthProfile.Data["k"] != "v" || u.HealthProfile.Reference != "abha" {
		t.Fatalf("clone shares state with original")
	}
}
