package event

import "time"

const (
	UserRegisteredDestination = "auth.user_registered"
	UserLoggedInDestination   = "auth.user_logged_in"
	AdminSignedInDestination  = "auth.admin_signed_in"
)

// HeaderCorrelationID carries the request correlation id across the broker.
const HeaderCorrelationID = "cID"

type UserRegisteredMessage struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type UserLoggedInMessage struct {
	UserID     string    `json:"user_id"`
	Phone      string    `json:"phone,omitempty"`
	Role       string    `json:"role"`
	LoggedInAt time.Time `json:"logged_in_at"`
}

type AdminSignedInMessage struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	SignedInAt time.Time `json:"signed_in_at"`
}
