package validator

import (
	"errors"
	"testing"

	"github.com/shandysiswandi/easymed/internal/pkg/otp"
)

type sendInput struct {
	Phone string `validate:"required,phone"`
}

type verifyInput struct {
	Phone string `validate:"required,phone"`
	Code  string `validate:"required,otpcode"`
}

type nameInput struct {
	FullName string `validate:"required,alphaspace"`
}

func newValidator(t *testing.T) *V10Validator {
	t.Helper()
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}
	return v
}

func TestV10Validator_Phone(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name    string
		phone   string
		wantErr bool
	}{
		{name: "local", phone: "9876543210"},
		{name: "formatted", phone: "+91 98765-43210"},
		{name: "with parens", phone: "(+91) 98765 43210"},
		{name: "with slashes", phone: "+91/98765/43210"},
		{name: "too short", phone: "12345", wantErr: true},
		{name: "letters", phone: "98765abcde", wantErr: true},
		{name: "empty", phone: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(sendInput{Phone: tt.phone})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestV10Validator_OTPCode(t *testing.T) {
	// Arrange
	v := newValidator(t)

	// Act
	err := v.Validate(verifyInput{Phone: "9876543210", Code: "12a456"})

	// Assert
	var verr V10ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected V10ValidationError, got %T", err)
	}
	if verr.Values()["code"] != "Code must be a 6 digit code" {
		t.Fatalf("unexpected message: %v", verr.Values())
	}

	if err := v.Validate(verifyInput{Phone: "9876543210", Code: "012345"}); err != nil {
		t.Fatalf("Validate() unexpected error = %v", err)
	}
}

func TestV10Validator_OTPCodeAcceptsIssuedCodes(t *testing.T) {
	v := newValidator(t)

	for _, name := range []string{"random", "hotp"} {
		gen, err := otp.New(name, otp.DefaultDigits)
		if err != nil {
			t.Fatalf("otp.New(%q) error = %v", name, err)
		}
		for range 20 {
			code, err := gen.Generate()
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if err := v.Validate(verifyInput{Phone: "9876543210", Code: code}); err != nil {
				t.Fatalf("%s code %q rejected: %v", name, code, err)
			}
		}
	}
}

func TestV10Validator_AlphaSpace(t *testing.T) {
	v := newValidator(t)

	err := v.Validate(nameInput{FullName: "Asha 99"})

	var verr V10ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected V10ValidationError, got %T", err)
	}
	if verr.Values()["full_name"] != "FullName can contain only letters and spaces" {
		t.Fatalf("unexpected message: %v", verr.Values())
	}
}
