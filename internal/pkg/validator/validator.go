package validator

// Validator validates a struct using its field tags.
type Validator interface {
	Validate(data any) error
}
