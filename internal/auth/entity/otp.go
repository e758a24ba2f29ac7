package entity

import "time"

// OTPEntry is the single outstanding code for a phone.
type OTPEntry struct {
	Phone     Phone
	CodeHash  string
	ExpiresAt time.Time
	Attempts  int
}

// IsExpired reports whether the code lapsed at now.
func (e OTPEntry) IsExpired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// PendingIssuance is returned after a code has been stored and sent.
type PendingIssuance struct {
	IssuanceID string
	Phone      Phone
	ExpiresAt  time.Time
}

// VerificationOutcome is the result of checking a submitted code.
type VerificationOutcome int8

const (
	OutcomeNoEntry VerificationOutcome = iota
	OutcomeApproved
	OutcomeInvalid
	OutcomeExpired
)

func (o VerificationOutcome) String() string {
	switch o {
	case OutcomeApproved:
		return "approved"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeExpired:
		return "expired"
	default:
		return "no_entry"
	}
}

// VerificationSession marks that a code was requested for a phone.
type VerificationSession struct {
	Phone     Phone
	StartedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the session window closed at now.
func (s VerificationSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Status summarizes the live state of the auth module.
type Status struct {
	TotalUsers           int
	PendingRegistrations int
	ActiveSessions       int
	SMSMode              string
}
