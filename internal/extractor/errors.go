package extractor

import "fmt"

// MissingFieldError reports a required selector or attribute with no match.
type MissingFieldError struct {
	Field    string
	Selector string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %s: no match for %q", e.Field, e.Selector)
}

// FormatError reports numeric text that could not be parsed.
type FormatError struct {
	Field string
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
