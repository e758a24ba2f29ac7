package cipher

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
)

func testKey(b byte) StaticKey {
	return StaticKey(bytes.Repeat([]byte{b}, 32))
}

func TestAESGCM_RoundTrip(t *testing.T) {
	// Arrange
	enc := NewAESGCM(testKey(1))
	scope := Scope{Purpose: "user_directory", Subject: "easymed/users.json"}

	// Act
	sealed, err := enc.Encrypt([]byte(`{"users":[]}`), scope)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	plain, err := enc.Decrypt(sealed, scope)

	// Assert
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if string(plain) != `{"users":[]}` {
		t.Fatalf("Decrypt() = %s", plain)
	}
}

func TestAESGCM_Failures(t *testing.T) {
	enc := NewAESGCM(testKey(1))
	scope := Scope{Purpose: "user_directory"}
	sealed, err := enc.Encrypt([]byte("payload"), scope)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	tampered := append([]byte(nil), sealed...)
	tampered[len(tampered)-1] ^= 0xff

	badVersion := append([]byte(nil), sealed...)
	badVersion[1] = 9

	tests := []struct {
		name  string
		enc   *AESGCM
		data  []byte
		scope Scope
		want  error
	}{
		{name: "wrong key", enc: NewAESGCM(testKey(2)), data: sealed, scope: scope, want: ErrDecryptFailed},
		{name: "wrong scope", enc: enc, data: sealed, scope: Scope{Purpose: "other"}, want: ErrDecryptFailed},
		{name: "tampered", enc: enc, data: tampered, scope: scope, want: ErrDecryptFailed},
		{name: "too short", enc: enc, data: []byte{0, 1}, scope: scope, want: ErrCiphertextTooShort},
		{name: "bad version", enc: enc, data: badVersion, scope: scope, want: ErrUnsupportedVersion},
		{name: "not configured", enc: &AESGCM{}, data: sealed, scope: scope, want: ErrNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.enc.Decrypt(tt.data, tt.scope)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Decrypt() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseBase64Key(t *testing.T) {
	if _, err := ParseBase64Key(base64.StdEncoding.EncodeToString(make([]byte, 32))); err != nil {
		t.Fatalf("ParseBase64Key() error = %v", err)
	}
	if _, err := ParseBase64Key(base64.StdEncoding.EncodeToString(make([]byte, 16))); !errors.Is(err, ErrInvalidKeyLength) {
		t.Fatalf("expected ErrInvalidKeyLength, got %v", err)
	}
	if _, err := ParseBase64Key("%%%"); err == nil {
		t.Fatalf("expected decode error")
	}
}
