package otp

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"io"
	"math/big"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// DefaultDigits is the length of every code the service issues. The otpcode
// validation rule accepts exactly this many digits.
const DefaultDigits = 6

// ErrUnknownGenerator is returned by New for an unrecognized generator name.
var ErrUnknownGenerator = errors.New("otp: unknown generator")

// Generator produces numeric one-time codes.
type Generator interface {
	Generate() (string, error)
}

// New returns the generator registered under name ("random" or "hotp").
func New(name string, digits int) (Generator, error) {
	switch name {
	case "", "random":
		return NewRandom(digits), nil
	case "hotp":
		return NewHOTP(digits), nil
	default:
		return nil, ErrUnknownGenerator
	}
}

// Random draws every digit uniformly from a cryptographic source.
type Random struct {
	digits int
	max    *big.Int
	reader io.Reader
}

// NewRandom returns a Random generator producing codes of the given length.
func NewRandom(digits int) *Random {
	if digits < 4 || digits > 10 {
		digits = DefaultDigits
	}

	return &Random{
		digits: digits,
		max:    new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil),
		reader: rand.Reader,
	}
}

// Generate returns a zero padded code in [0, 10^digits).
func (r *Random) Generate() (string, error) {
	n, err := rand.Int(r.reader, r.max)
	if err != nil {
		return "", err
	}

	return pad(n.Uint64(), r.digits), nil
}

// HOTP derives codes with RFC 4226 from a fresh secret and counter per call.
type HOTP struct {
	digits otp.Digits
	reader io.Reader
}

// NewHOTP returns an HOTP generator producing 6 or 8 digit codes.
func NewHOTP(digits int) *HOTP {
	d := otp.DigitsSix
	if digits == 8 {
		d = otp.DigitsEight
	}

	return &HOTP{digits: d, reader: rand.Reader}
}

// Generate returns a new code.
func (h *HOTP) Generate() (string, error) {
	var buf [28]byte
	if _, err := io.ReadFull(h.reader, buf[:]); err != nil {
		return "", err
	}

	secret := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf[:20])
	counter := binary.BigEndian.Uint64(buf[20:])

	return hotp.GenerateCodeCustom(secret, counter, hotp.ValidateOpts{
		Digits:    h.digits,
		Algorithm: otp.AlgorithmSHA1,
	})
}

func pad(n uint64, digits int) string {
	b := make([]byte, digits)
	for i := digits - 1; i >= 0; i-- {
		b[i] = byte('0' + n%10)
		n /= 10
	}
	return string(b)
}
