// Package cipher encrypts data at rest with AES-256-GCM.
//
// Ciphertexts are bound to a Scope through the GCM additional data, so a blob
// sealed for one purpose cannot be opened as another.
package cipher

import (
	"crypto/aes"
	stdcipher "crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Ciphertext layout: [0..1] uint16 version, [2..13] nonce, [14..] sealed data + tag.
const (
	version   uint16 = 1
	nonceSize        = 12
	keySize          = 32
)

var (
	// ErrNotConfigured indicates a missing key provider.
	ErrNotConfigured = errors.New("cipher: encryptor not configured")
	// ErrInvalidKeyLength indicates the key is not 32 bytes.
	ErrInvalidKeyLength = errors.New("cipher: invalid key length")
	// ErrCiphertextTooShort indicates a truncated ciphertext.
	ErrCiphertextTooShort = errors.New("cipher: ciphertext too short")
	// ErrUnsupportedVersion indicates an unknown ciphertext version.
	ErrUnsupportedVersion = errors.New("cipher: unsupported ciphertext version")
	// ErrDecryptFailed indicates a wrong key, wrong scope or tampered data.
	ErrDecryptFailed = errors.New("cipher: decrypt failed")
)

// Scope names what a ciphertext protects.
type Scope struct {
	// Purpose separates unrelated uses of the same key.
	Purpose string
	// Subject optionally narrows the scope, for example to a storage key.
	Subject string
}

// Encryptor seals and opens data for a scope.
type Encryptor interface {
	Encrypt(plaintext []byte, scope Scope) ([]byte, error)
	Decrypt(ciphertext []byte, scope Scope) ([]byte, error)
}

// KeyProvider returns the AES-256 key for a scope.
type KeyProvider interface {
	Key(scope Scope) ([]byte, error)
}

// StaticKey returns the same key for every scope.
type StaticKey []byte

// Key returns a copy of the static key.
func (k StaticKey) Key(Scope) ([]byte, error) {
	if len(k) != keySize {
		return nil, ErrInvalidKeyLength
	}
	out := make([]byte, len(k))
	copy(out, k)
	return out, nil
}

// ParseBase64Key decodes a base64 AES-256 key.
func ParseBase64Key(s string) (StaticKey, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(raw) != keySize {
		return nil, ErrInvalidKeyLength
	}
	return StaticKey(raw), nil
}

// AESGCM implements Encryptor with AES-256-GCM.
type AESGCM struct {
	keys KeyProvider
}

// NewAESGCM returns an AESGCM encryptor.
func NewAESGCM(keys KeyProvider) *AESGCM {
	return &AESGCM{keys: keys}
}

// Encrypt seals plaintext for scope.
func (e *AESGCM) Encrypt(plaintext []byte, scope Scope) ([]byte, error) {
	gcm, err := e.gcm(scope)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("cipher: nonce generation failed: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, plaintext, scopeAAD(scope))

	out := make([]byte, 2+nonceSize+len(sealed))
	binary.BigEndian.PutUint16(out[0:2], version)
	copy(out[2:2+nonceSize], nonce)
	copy(out[2+nonceSize:], sealed)
	return out, nil
}

// Decrypt opens ciphertext sealed for scope.
func (e *AESGCM) Decrypt(ciphertext []byte, scope Scope) ([]byte, error) {
	if len(ciphertext) < 2+nonceSize+1 {
		return nil, ErrCiphertextTooShort
	}
	if v := binary.BigEndian.Uint16(ciphertext[0:2]); v != version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	gcm, err := e.gcm(scope)
	if err != nil {
		return nil, err
	}

	plain, err := gcm.Open(nil, ciphertext[2:2+nonceSize], ciphertext[2+nonceSize:], scopeAAD(scope))
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plain, nil
}

func (e *AESGCM) gcm(scope Scope) (stdcipher.AEAD, error) {
	if e == nil || e.keys == nil {
		return nil, ErrNotConfigured
	}

	key, err := e.keys.Key(scope)
	if err != nil {
		return nil, fmt.Errorf("cipher: key provider error: %w", err)
	}
	if len(key) != keySize {
		return nil, ErrInvalidKeyLength
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher: aes init failed: %w", err)
	}
	return stdcipher.NewGCMWithNonceSize(block, nonceSize)
}

// scopeAAD hashes the labelled scope so the AAD has a fixed length and no separator ambiguity.
func scopeAAD(s Scope) []byte {
	sum := sha256.Sum256([]byte("purpose=" + s.Purpose + "\nsubject=" + s.Subject + "\n"))
	return sum[:]
}
