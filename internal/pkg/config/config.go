// Package config exposes typed read access to the service configuration.
package config

import (
	"io"
	"time"
)

// Config reads configuration values by dotted key, e.g. "modules.auth.otp.ttl_minutes".
// Missing keys yield the zero value of the requested type.
type Config interface {
	io.Closer

	GetInt(key string) int
	GetInt32(key string) int32
	GetUint(key string) uint
	GetUint16(key string) uint16
	GetFloat64(key string) float64
	GetBool(key string) bool
	GetString(key string) string

	// GetSecond and GetMinute read an integer and scale it to a duration.
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration

	// GetBinary decodes a base64 value. Invalid input yields nil.
	GetBinary(key string) []byte

	// GetArray splits a comma separated value. Entries are trimmed and blanks dropped.
	GetArray(key string) []string
}
