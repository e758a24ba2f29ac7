package entity

import "strings"

// Role is the portal role of a user.
type Role int16

const (
	// RoleUnknown is a role that is not set or not recognized.
	RoleUnknown Role = 0

	// RolePatient is the default role created by phone sign-in.
	RolePatient Role = 1

	// RoleAshaWorker is a community health worker attached to a village.
	RoleAshaWorker Role = 2

	// RoleDoctor is a practitioner with a specialty.
	RoleDoctor Role = 3

	// RoleAdmin is a portal administrator.
	RoleAdmin Role = 4
)

func (r Role) String() string {
	switch r {
	case RolePatient:
		return "patient"
	case RoleAshaWorker:
		return "asha-worker"
	case RoleDoctor:
		return "doctor"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

func (r Role) IsUnknown() bool {
	switch r {
	case RolePatient, RoleAshaWorker, RoleDoctor, RoleAdmin:
		return false
	default:
		return true
	}
}

func (r Role) Ensure() Role {
	if r.IsUnknown() {
		return RoleUnknown
	}
	return r
}

// RoleFromString parses the wire name of a role. Empty input maps to patient.
func RoleFromString(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "patient":
		return RolePatient
	case "asha-worker", "asha_worker", "asha":
		return RoleAshaWorker
	case "doctor":
		return RoleDoctor
	case "admin":
		return RoleAdmin
	default:
		return RoleUnknown
	}
}
