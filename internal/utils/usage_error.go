package utils

import "errors"

// UsageError reports a malformed invocation. Command-line entry points print the usage synopsis alongside it.
type UsageError struct {
	Message string
}

// Error returns the usage problem description.
func (usageError UsageError) Error() string {
	return usageError.Message
}

// NewUsageError constructs a UsageError with the provided message.
func NewUsageError(message string) UsageError {
	return UsageError{Message: message}
}

// IsUsageError reports whether the error chain contains a UsageError.
func IsUsageError(candidate error) bool {
	var usageError UsageError
	return errors.As(candidate, &usageError)
}
