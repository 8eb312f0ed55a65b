// Package validator checks request inputs and consumed event payloads against
// their `validate` struct tags and reports failures as field errors.
package validator
