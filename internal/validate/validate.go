// Package validate checks inbound email records before they reach the
// generation calls.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"mailtriage/internal/model"
)

var (
	ErrMissingField = errors.New("missing field")
	ErrInvalidValue = errors.New("invalid value")
)

// ValidationError names the offending field. It matches ErrMissingField or
// ErrInvalidValue with errors.Is.
type ValidationError struct {
	Field string
	Value string
	kind  error
}

func (e *ValidationError) Error() string {
	if e.kind == ErrInvalidValue {
		return fmt.Sprintf("%s: %s %q", e.kind, e.Field, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.Field)
}

func (e *ValidationError) Unwrap() error { return e.kind }

func missing(field string) error {
	return &ValidationError{Field: field, kind: ErrMissingField}
}

// Email checks that every field is present and that the sender is
// plausible. Checks run in the order id, from, sender, subject, body,
// timestamp; the first failure is returned.
func Email(e model.Email) error {
	if e.ID == "" {
		return missing("id")
	}
	if e.From == "" {
		return missing("from")
	}
	if !SenderPlausible(e.From) {
		return &ValidationError{Field: "from", Value: e.From, kind: ErrInvalidValue}
	}
	if e.Subject == "" {
		return missing("subject")
	}
	if e.Body == "" {
		return missing("body")
	}
	if e.Timestamp == "" {
		return missing("timestamp")
	}
	return nil
}

// SenderPlausible accepts addresses containing "@" whose text after the
// last "." is exactly "com". Other top-level domains are rejected.
func SenderPlausible(addr string) bool {
	if !strings.Contains(addr, "@") || !strings.Contains(addr, ".") {
		return false
	}
	return addr[strings.LastIndex(addr, ".")+1:] == "com"
}
