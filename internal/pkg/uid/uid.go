// Package uid provides identifier generators used across modules.
//
// Snowflake ids key records that are listed in creation order, such as users
// and notification deliveries. UUIDs are used for token ids and correlation ids.
package uid

import "github.com/google/uuid"

// NumberID generates unique numeric identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}

// UUID generates time-ordered version 7 UUIDs.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

// Generate falls back to a random version 4 UUID if the v7 clock read fails.
func (*UUID) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
