package validator

// Validator validates structs tagged with `validate:"..."`.
type Validator interface {
	// Validate returns nil or an error whose Values map snake_case field
	// names to human messages.
	Validate(data any) error
}
