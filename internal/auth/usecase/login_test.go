package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
)

func TestSendCode(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		wantErr  goerror.Code
		wantOK   bool
		wantNorm entity.Phone
	}{
		{name: "TenDigits", phone: "9876543210", wantOK: true, wantNorm: phoneA},
		{name: "WithCountryCode", phone: "+91 98765-43210", wantOK: true, wantNorm: phoneA},
		{name: "LeadingZeroCountryCode", phone: "0919876543210", wantOK: true, wantNorm: phoneA},
		{name: "ParenthesizedCountryCode", phone: "(+91) 98765 43210", wantOK: true, wantNorm: phoneA},
		{name: "SlashSeparated", phone: "+91/98765/43210", wantOK: true, wantNorm: phoneA},
		{name: "InvalidLeadingDigit", phone: "5876543210", wantErr: goerror.CodeInvalidInput},
		{name: "Empty", phone: "", wantErr: goerror.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			h := newHarness(t, testConfig)

			// Act
			out, err := h.uc.SendCode(context.Background(), SendCodeInput{Phone: tt.phone})

			// Assert
			if !tt.wantOK {
				assertCode(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Status != StatusOTPSent || out.Phone != tt.wantNorm || out.IssuanceID == "" {
				t.Fatalf("unexpected output: %+v", out)
			}
			session, err := h.state.GetSession(context.Background(), tt.wantNorm)
			if err != nil || !session.StartedAt.Equal(h.clock.Now()) {
				t.Fatalf("session not opened: %+v, %v", session, err)
			}
		})
	}
}

func TestVerifyAndLogin(t *testing.T) {
	t.Run("FirstLoginCreatesDefaultPatient", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)

		// Act
		out := h.login(t, "9876543210")

		// Assert
		if !out.Created || out.AccessToken == "" {
			t.Fatalf("unexpected output: %+v", out)
		}
		u := out.User
		if u.Name != "Patient 3210" || u.Role != entity.RolePatient || u.Phone != phoneA || !u.Verified {
			t.Fatalf("unexpected user: %+v", u)
		}
		if !u.LastLogin.Equal(h.clock.Now()) {
			t.Fatalf("last login not touched: %v", u.LastLogin)
		}
		if len(h.mq.registered) != 1 || len(h.mq.loggedIn) != 1 {
			t.Fatalf("events registered=%d loggedIn=%d", len(h.mq.registered), len(h.mq.loggedIn))
		}
		if h.snapshot.saves == 0 || len(h.snapshot.users) != 1 {
			t.Fatalf("snapshot not persisted: saves=%d users=%d", h.snapshot.saves, len(h.snapshot.users))
		}
		clm, err := h.jwt.Verify(out.AccessToken)
		if err != nil || clm.UserID != u.ID || clm.Role != "patient" {
			t.Fatalf("token claims %+v, %v", clm, err)
		}
	})

	t.Run("SecondLoginReusesUser", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)
		first := h.login(t, "9876543210")
		h.clock.Advance(time.Hour)

		// Act
		second := h.login(t, "+919876543210")

		// Assert
		if second.Created || second.User.ID != first.User.ID {
			t.Fatalf("expected same user, got %+v", second)
		}
		if !second.User.LastLogin.Equal(h.clock.Now()) {
			t.Fatalf("last login not refreshed")
		}
		if n, _ := h.directory.Count(context.Background()); n != 1 {
			t.Fatalf("directory size %d", n)
		}
		if len(h.mq.registered) != 1 || len(h.mq.loggedIn) != 2 {
			t.Fatalf("events registered=%d loggedIn=%d", len(h.mq.registered), len(h.mq.loggedIn))
		}
	})

	t.Run("NoSession", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)

		// Act
		_, err := h.uc.VerifyAndLogin(context.Background(), VerifyAndLoginInput{Phone: "9876543210", Code: "123456"})

		// Assert
		assertCode(t, err, goerror.CodeNotFound)
	})

	t.Run("SessionWindowDefaultsToFiveMinutes", func(t *testing.T) {
		tests := []struct {
			name    string
			elapsed time.Duration
			wantErr bool
		}{
			{name: "AtBoundary", elapsed: 5 * time.Minute},
			{name: "PastBoundary", elapsed: 5*time.Minute + time.Second, wantErr: true},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				// Arrange
				h := newHarness(t, "modules:\n  auth:\n    otp:\n      ttl_minutes: 30\n")
				ctx := context.Background()
				_, _ = h.uc.SendCode(ctx, SendCodeInput{Phone: "9876543210"})
				code := h.lastCode(t, phoneA.String())
				h.clock.Advance(tt.elapsed)

				// Act
				_, err := h.uc.VerifyAndLogin(ctx, VerifyAndLoginInput{Phone: "9876543210", Code: code})

				// Assert
				if !tt.wantErr {
					if err != nil {
						t.Fatalf("unexpected error: %v", err)
					}
					return
				}
				assertCode(t, err, goerror.CodeExpired)
				if _, err := h.state.GetSession(ctx, phoneA); !errors.Is(err, goerror.ErrNotFound) {
					t.Fatalf("stale session kept: %v", err)
				}
			})
		}
	})

	t.Run("StaleSessionIsCleared", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)
		ctx := context.Background()
		_, _ = h.uc.SendCode(ctx, SendCodeInput{Phone: "9876543210"})
		code := h.lastCode(t, phoneA.String())
		h.clock.Advance(11 * time.Minute)

		// Act
		_, err := h.uc.VerifyAndLogin(ctx, VerifyAndLoginInput{Phone: "9876543210", Code: code})

		// Assert
		assertCode(t, err, goerror.CodeExpired)
		if _, err := h.state.GetSession(ctx, phoneA); !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("stale session kept: %v", err)
		}
	})

	t.Run("ExpiredCodeClearsSession", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)
		ctx := context.Background()
		_, _ = h.uc.SendCode(ctx, SendCodeInput{Phone: "9876543210"})
		code := h.lastCode(t, phoneA.String())
		h.clock.Advance(6 * time.Minute)

		// Act
		_, err := h.uc.VerifyAndLogin(ctx, VerifyAndLoginInput{Phone: "9876543210", Code: code})

		// Assert
		assertCode(t, err, goerror.CodeExpired)
		if _, err := h.state.GetSession(ctx, phoneA); !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("session kept after code expiry: %v", err)
		}
	})

	t.Run("WrongCodeIsUnauthorizedAndRetryable", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)
		ctx := context.Background()
		_, _ = h.uc.SendCode(ctx, SendCodeInput{Phone: "9876543210"})
		code := h.lastCode(t, phoneA.String())

		// Act
		_, err := h.uc.VerifyAndLogin(ctx, VerifyAndLoginInput{Phone: "9876543210", Code: wrongCode(code)})
		out, retryErr := h.uc.VerifyAndLogin(ctx, VerifyAndLoginInput{Phone: "9876543210", Code: code})

		// Assert
		assertCode(t, err, goerror.CodeUnauthorized)
		if retryErr != nil || out.AccessToken == "" {
			t.Fatalf("retry failed: %v", retryErr)
		}
	})

	t.Run("ReplayAfterSuccessFails", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)
		ctx := context.Background()
		_, _ = h.uc.SendCode(ctx, SendCodeInput{Phone: "9876543210"})
		code := h.lastCode(t, phoneA.String())
		if _, err := h.uc.VerifyAndLogin(ctx, VerifyAndLoginInput{Phone: "9876543210", Code: code}); err != nil {
			t.Fatalf("first verify: %v", err)
		}

		// Act
		_, err := h.uc.VerifyAndLogin(ctx, VerifyAndLoginInput{Phone: "9876543210", Code: code})

		// Assert
		assertCode(t, err, goerror.CodeNotFound)
	})

	t.Run("MalformedCode", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)

		// Act
		_, err := h.uc.VerifyAndLogin(context.Background(), VerifyAndLoginInput{Phone: "9876543210", Code: "12ab"})

		// Assert
		assertCode(t, err, goerror.CodeInvalidInput)
	})

	t.Run("AdminPhoneSignsInAsAdmin", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)

		// Act
		out := h.login(t, "9060328119")

		// Assert
		if out.User.Role != entity.RoleAdmin {
			t.Fatalf("expected admin role, got %v", out.User.Role)
		}
		if p, ok := out.User.Profile.(entity.AdminProfile); !ok || p.Organization != "EasyMed Ops" {
			t.Fatalf("unexpected profile %#v", out.User.Profile)
		}
	})
}

func TestRegister(t *testing.T) {
	t.Run("DoctorDraftMaterializesOnVerify", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)
		ctx := context.Background()

		// Act
		sent, err := h.uc.Register(ctx, RegisterInput{
			Phone:     "9876543210",
			Name:      "Asha Rao",
			Email:     "Asha@Example.com",
			Role:      "doctor",
			Specialty: "Pediatrics",
			Village:   "ignored",
		})
		if err != nil {
			t.Fatalf("register: %v", err)
		}
		out, err := h.uc.VerifyAndLogin(ctx, VerifyAndLoginInput{Phone: "9876543210", Code: h.lastCode(t, phoneA.String())})

		// Assert
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if sent.Status != StatusOTPSent || !out.Created {
			t.Fatalf("unexpected outputs %+v %+v", sent, out)
		}
		u := out.User
		if u.Name != "Asha Rao" || u.Email != "asha@example.com" || u.Role != entity.RoleDoctor {
			t.Fatalf("unexpected user %+v", u)
		}
		if p, ok := u.Profile.(entity.DoctorProfile); !ok || p.Specialty != "Pediatrics" {
			t.Fatalf("unexpected profile %#v", u.Profile)
		}
		if _, err := h.state.GetPending(ctx, phoneA); !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("pending registration kept: %v", err)
		}
	})

	t.Run("AlreadyRegistered", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)
		h.login(t, "9876543210")

		// Act
		_, err := h.uc.Register(context.Background(), RegisterInput{Phone: "9876543210", Name: "Someone Else"})

		// Assert
		assertCode(t, err, goerror.CodeConflict)
	})

	t.Run("LaterDraftOverwritesEarlier", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)
		ctx := context.Background()
		_, _ = h.uc.Register(ctx, RegisterInput{Phone: "9876543210", Name: "First Name", Role: "doctor"})
		_, _ = h.uc.Register(ctx, RegisterInput{Phone: "9876543210", Name: "Second Name", Role: "asha-worker", Village: "Hosur"})

		// Act
		out, err := h.uc.VerifyAndLogin(ctx, VerifyAndLoginInput{Phone: "9876543210", Code: h.lastCode(t, phoneA.String())})

		// Assert
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if out.User.Name != "Second Name" || out.User.Role != entity.RoleAshaWorker {
			t.Fatalf("unexpected user %+v", out.User)
		}
	})

	t.Run("ExpiredDraftFallsBackToDefaultPatient", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)
		ctx := context.Background()
		_, _ = h.uc.Register(ctx, RegisterInput{Phone: "9876543210", Name: "Late Doctor", Role: "doctor"})
		h.clock.Advance(2 * time.Hour)
		_, _ = h.uc.SendCode(ctx, SendCodeInput{Phone: "9876543210"})

		// Act
		out, err := h.uc.VerifyAndLogin(ctx, VerifyAndLoginInput{Phone: "9876543210", Code: h.lastCode(t, phoneA.String())})

		// Assert
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if out.User.Role != entity.RolePatient || out.User.Name != "Patient 3210" {
			t.Fatalf("expected default patient, got %+v", out.User)
		}
	})

	t.Run("InvalidInput", func(t *testing.T) {
		tests := []struct {
			name string
			in   RegisterInput
		}{
			{name: "MissingName", in: RegisterInput{Phone: "9876543210"}},
			{name: "BadEmail", in: RegisterInput{Phone: "9876543210", Name: "Asha Rao", Email: "nope"}},
			{name: "UnknownRole", in: RegisterInput{Phone: "9876543210", Name: "Asha Rao", Role: "nurse"}},
			{name: "BadPhone", in: RegisterInput{Phone: "12345", Name: "Asha Rao"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				// Arrange
				h := newHarness(t, testConfig)

				// Act
				_, err := h.uc.Register(context.Background(), tt.in)

				// Assert
				assertCode(t, err, goerror.CodeInvalidInput)
			})
		}
	})
}
