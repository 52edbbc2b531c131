package validator

// Validator is the request validator handed to services and handlers.
type Validator = BusinessValidator

// New creates the shared validator instance
func New() *Validator {
	return NewBusinessValidator()
}
