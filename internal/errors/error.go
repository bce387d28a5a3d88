package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryCore     Category = "core"
	CategoryConfig   Category = "config"
	CategoryDocument Category = "document"
	CategoryServer   Category = "server"
	CategoryCLI      Category = "cli"
)

// TabdeckError is a coded error with an explanation and a suggested fix.
type TabdeckError struct {
	// Code is a unique error identifier (e.g., "E201").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *TabdeckError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *TabdeckError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *TabdeckError) WithSuggestion(s string) *TabdeckError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *TabdeckError) WithDetail(d string) *TabdeckError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *TabdeckError) Wrap(err error) *TabdeckError {
	e.Wrapped = err
	return e
}

// New creates a TabdeckError from a registered error code.
func New(code string) *TabdeckError {
	template, ok := registry[code]
	if !ok {
		return &TabdeckError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &TabdeckError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new TabdeckError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *TabdeckError {
	return &TabdeckError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a TabdeckError.
func FromError(err error, code string) *TabdeckError {
	if err == nil {
		return nil
	}
	if te, ok := err.(*TabdeckError); ok {
		return te
	}
	return New(code).Wrap(err)
}
