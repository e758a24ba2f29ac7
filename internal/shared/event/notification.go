package event

// Consumer groups owned by the notification module.
const (
	UserRegisteredConsumerNotification = "notification.user_registered"
	AdminSignedInConsumerNotification  = "notification.admin_signed_in"
)
