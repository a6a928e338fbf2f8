package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is wrapped by a ProviderError when an upstream call succeeded
// but returned no usable text.
var ErrEmptyResponse = errors.New("empty response from provider")

// ProviderError describes a failed call to an AI provider: transport failure,
// non-2xx status, quota exhaustion or a malformed payload.
type ProviderError struct {
	Provider   string
	StatusCode int // 0 when no HTTP response was received
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: %s", e.Provider, msg)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps err as a ProviderError for provider.
func NewProviderError(provider string, statusCode int, err error) *ProviderError {
	pe := &ProviderError{Provider: provider, StatusCode: statusCode, Err: err}
	if err != nil {
		pe.Message = err.Error()
	}
	return pe
}

// IsProviderError reports whether err is or wraps a *ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// InputError is returned when a required argument (subject reference or question)
// is missing or malformed. It is the only error the agents surface to their callers for
// analysis requests.
type InputError struct {
	Field  string
	Reason string // empty means the field was missing
}

func (e *InputError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s is required", e.Field)
}

// IsInputError reports whether err is or wraps an *InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
