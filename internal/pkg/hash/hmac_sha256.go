package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSHA256 produces hex encoded HMAC-SHA256 digests. It is deterministic,
// which suits short-lived values such as OTP codes that are checked by equality.
type HMACSHA256 struct {
	secret []byte
}

func NewHMACSHA256(secret string) *HMACSHA256 {
	return &HMACSHA256{secret: []byte(secret)}
}

func (s *HMACSHA256) Hash(str string) ([]byte, error) {
	return s.digest(str), nil
}

func (s *HMACSHA256) Verify(hashed, str string) bool {
	if hashed == "" {
		return false
	}
	return hmac.Equal([]byte(hashed), s.digest(str))
}

func (s *HMACSHA256) digest(str string) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(str))
	sum := mac.Sum(nil)

	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum)
	return out
}
