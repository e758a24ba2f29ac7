// Package entity holds the notification records: templates keyed by trigger
// and channel, and the delivery log kept for administrators.
package entity

import "time"

// Channel is how a notification reaches the user.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

func (c Channel) String() string { return string(c) }

// DeliveryStatus moves from queued to exactly one of sent or failed.
type DeliveryStatus string

const (
	DeliveryStatusQueued DeliveryStatus = "queued"
	DeliveryStatusSent   DeliveryStatus = "sent"
	DeliveryStatusFailed DeliveryStatus = "failed"
)

func (s DeliveryStatus) String() string { return string(s) }

// TriggerKey names the event that caused a notification.
type TriggerKey string

const (
	TriggerKeyUserWelcome TriggerKey = "user_welcome"
	TriggerKeyAdminAlert  TriggerKey = "admin_sign_in_alert"
)

func (tk TriggerKey) String() string { return string(tk) }

type Template struct {
	TriggerKey TriggerKey
	Channel    Channel
	Subject    string
	Body       string
}

// DeliveryLog records one attempt to deliver a notification.
type DeliveryLog struct {
	ID         int64
	TriggerKey TriggerKey
	Channel    Channel
	UserID     string
	Recipient  string
	Status     DeliveryStatus
	// Error is the transport error text when Status is failed.
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
