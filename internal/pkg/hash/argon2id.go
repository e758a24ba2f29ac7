package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var errMalformedArgon2id = errors.New("hash: malformed argon2id encoding")

type argon2Params struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
}

// Argon2id hashes into the PHC string format
// $argon2id$v=19$m=<kib>,t=<iterations>,p=<threads>$<salt>$<key>.
type Argon2id struct {
	params     argon2Params
	saltLength uint32
	keyLength  uint32
	pepper     string
}

func NewArgon2id(pepper string) *Argon2id {
	return &Argon2id{
		params:     argon2Params{memory: 32 * 1024, iterations: 3, parallelism: 2},
		saltLength: 16,
		keyLength:  32,
		pepper:     pepper,
	}
}

func (a *Argon2id) Hash(str string) ([]byte, error) {
	salt := make([]byte, a.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	p := a.params
	key := argon2.IDKey([]byte(str+a.pepper), salt, p.iterations, p.memory, p.parallelism, a.keyLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.iterations, p.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return []byte(encoded), nil
}

// Verify recomputes the key with the parameters recorded in hashed, so entries
// produced with other cost settings still verify.
func (a *Argon2id) Verify(hashed, str string) bool {
	if hashed == "" || str == "" {
		return false
	}

	p, salt, want, err := decodeArgon2id(hashed)
	if err != nil {
		return false
	}

	got := argon2.IDKey([]byte(str+a.pepper), salt, p.iterations, p.memory, p.parallelism, uint32(len(want)))
	return subtle.ConstantTimeCompare(want, got) == 1
}

func decodeArgon2id(encoded string) (argon2Params, []byte, []byte, error) {
	var p argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, errMalformedArgon2id
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, errMalformedArgon2id
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return p, nil, nil, errMalformedArgon2id
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, errMalformedArgon2id
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, errMalformedArgon2id
	}

	return p, salt, key, nil
}
