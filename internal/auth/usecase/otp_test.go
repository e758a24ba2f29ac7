package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/easymed/internal/auth/entity"
	"github.com/shandysiswandi/easymed/internal/pkg/goerror"
	"github.com/shandysiswandi/easymed/internal/pkg/sms"
)

const phoneA = entity.Phone("+919876543210")

type failingSMS struct{}

func (failingSMS) Send(context.Context, string, string) (sms.Message, error) {
	return sms.Message{}, errors.New("provider down")
}

func (failingSMS) Mode() string { return sms.ModeTwilio }

func TestIssueOTP(t *testing.T) {
	t.Run("RejectsNonCanonicalPhone", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)

		// Act
		_, err := h.uc.IssueOTP(context.Background(), entity.Phone("9876543210"))

		// Assert
		assertCode(t, err, goerror.CodeInvalidInput)
	})

	t.Run("StoresHashAndSendsCode", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)
		ctx := context.Background()

		// Act
		issued, err := h.uc.IssueOTP(ctx, phoneA)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if issued.IssuanceID == "" || issued.Phone != phoneA {
			t.Fatalf("unexpected issuance: %+v", issued)
		}
		if want := h.clock.Now().Add(5 * time.Minute); !issued.ExpiresAt.Equal(want) {
			t.Fatalf("expires at %v, want %v", issued.ExpiresAt, want)
		}

		code := h.lastCode(t, phoneA.String())
		entry, err := h.state.GetOTP(ctx, phoneA)
		if err != nil {
			t.Fatalf("entry missing: %v", err)
		}
		if entry.CodeHash == code {
			t.Fatalf("code stored in plaintext")
		}
	})

	t.Run("DeletesEntryWhenDeliveryFails", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)
		h.uc.sms = failingSMS{}

		// Act
		_, err := h.uc.IssueOTP(context.Background(), phoneA)

		// Assert
		assertCode(t, err, goerror.CodeInternal)
		if _, err := h.state.GetOTP(context.Background(), phoneA); !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("expected entry to be removed, got %v", err)
		}
	})
}

func TestVerifyOTP(t *testing.T) {
	t.Run("NoEntry", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)

		// Act
		outcome, err := h.uc.VerifyOTP(context.Background(), phoneA, "123456")

		// Assert
		if err != nil || outcome != entity.OutcomeNoEntry {
			t.Fatalf("got %v, %v", outcome, err)
		}
	})

	t.Run("ApprovedIsSingleUse", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)
		ctx := context.Background()
		if _, err := h.uc.IssueOTP(ctx, phoneA); err != nil {
			t.Fatalf("issue: %v", err)
		}
		code := h.lastCode(t, phoneA.String())

		// Act
		first, _ := h.uc.VerifyOTP(ctx, phoneA, code)
		second, _ := h.uc.VerifyOTP(ctx, phoneA, code)

		// Assert
		if first != entity.OutcomeApproved || second != entity.OutcomeNoEntry {
			t.Fatalf("got %v then %v", first, second)
		}
	})

	t.Run("ReissueReplacesPreviousCode", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)
		ctx := context.Background()
		_, _ = h.uc.IssueOTP(ctx, phoneA)
		old := h.lastCode(t, phoneA.String())
		_, _ = h.uc.IssueOTP(ctx, phoneA)
		fresh := h.lastCode(t, phoneA.String())
		if old == fresh {
			t.Skip("generator produced the same code twice")
		}

		// Act
		outcome, _ := h.uc.VerifyOTP(ctx, phoneA, old)

		// Assert
		if outcome != entity.OutcomeInvalid {
			t.Fatalf("old code outcome %v", outcome)
		}
		if outcome, _ := h.uc.VerifyOTP(ctx, phoneA, fresh); outcome != entity.OutcomeApproved {
			t.Fatalf("fresh code outcome %v", outcome)
		}
	})

	t.Run("ExpiredEntryIsRemoved", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)
		ctx := context.Background()
		_, _ = h.uc.IssueOTP(ctx, phoneA)
		code := h.lastCode(t, phoneA.String())
		h.clock.Advance(5*time.Minute + time.Second)

		// Act
		outcome, err := h.uc.VerifyOTP(ctx, phoneA, code)

		// Assert
		if err != nil || outcome != entity.OutcomeExpired {
			t.Fatalf("got %v, %v", outcome, err)
		}
		if again, _ := h.uc.VerifyOTP(ctx, phoneA, code); again != entity.OutcomeNoEntry {
			t.Fatalf("expected no entry after expiry, got %v", again)
		}
	})

	t.Run("ValidAtExactExpiry", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)
		ctx := context.Background()
		_, _ = h.uc.IssueOTP(ctx, phoneA)
		code := h.lastCode(t, phoneA.String())
		h.clock.Advance(5 * time.Minute)

		// Act
		outcome, _ := h.uc.VerifyOTP(ctx, phoneA, code)

		// Assert
		if outcome != entity.OutcomeApproved {
			t.Fatalf("got %v", outcome)
		}
	})

	t.Run("AttemptLimitInvalidatesCode", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)
		ctx := context.Background()
		_, _ = h.uc.IssueOTP(ctx, phoneA)
		code := h.lastCode(t, phoneA.String())

		// Act
		for i := 0; i < 3; i++ {
			if outcome, _ := h.uc.VerifyOTP(ctx, phoneA, wrongCode(code)); outcome != entity.OutcomeInvalid {
				t.Fatalf("attempt %d outcome %v", i, outcome)
			}
		}
		outcome, _ := h.uc.VerifyOTP(ctx, phoneA, code)

		// Assert
		if outcome != entity.OutcomeNoEntry {
			t.Fatalf("expected no entry after limit, got %v", outcome)
		}
	})

	t.Run("WrongCodeBelowLimitKeepsEntry", func(t *testing.T) {
		// Arrange
		h := newHarness(t, testConfig)
		ctx := context.Background()
		_, _ = h.uc.IssueOTP(ctx, phoneA)
		code := h.lastCode(t, phoneA.String())

		// Act
		_, _ = h.uc.VerifyOTP(ctx, phoneA, wrongCode(code))
		outcome, _ := h.uc.VerifyOTP(ctx, phoneA, code)

		// Assert
		if outcome != entity.OutcomeApproved {
			t.Fatalf("got %v", outcome)
		}
	})
}
