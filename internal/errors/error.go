package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryRoute  Category = "route"
	CategoryConfig Category = "config"
	CategoryBridge Category = "bridge"
	CategoryCLI    Category = "cli"
)

// Location represents a source location. Page files are reported without a
// line number.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	switch {
	case l.Line <= 0:
		return l.File
	case l.Column > 0:
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	default:
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
}

// PagekitError is a structured error with a code, location and suggestion.
type PagekitError struct {
	// Code is a unique error identifier (e.g., "E200").
	Code string

	// Category is the error type (route, config, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is where the error occurred, usually a page file path.
	Location *Location

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *PagekitError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Location != nil {
		msg += " (" + e.Location.String() + ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *PagekitError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a PagekitError with the same code. This lets
// callers test for a class of error with sentinel values such as
// errors.Is(err, errors.New("E202")).
func (e *PagekitError) Is(target error) bool {
	t, ok := target.(*PagekitError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithPath records the page or config file the error refers to.
func (e *PagekitError) WithPath(path string) *PagekitError {
	e.Location = &Location{File: path}
	return e
}

// WithLocation adds a source location to the error.
func (e *PagekitError) WithLocation(file string, line, column int) *PagekitError {
	e.Location = &Location{File: file, Line: line, Column: column}
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *PagekitError) WithSuggestion(s string) *PagekitError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *PagekitError) WithDetail(d string) *PagekitError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *PagekitError) Wrap(err error) *PagekitError {
	e.Wrapped = err
	return e
}

// New creates a PagekitError from a registered error code.
func New(code string) *PagekitError {
	template, ok := registry[code]
	if !ok {
		return &PagekitError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &PagekitError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new PagekitError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *PagekitError {
	return &PagekitError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a PagekitError.
func FromError(err error, code string) *PagekitError {
	if err == nil {
		return nil
	}
	var pe *PagekitError
	if stderrors.As(err, &pe) {
		return pe
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err, or any error in its tree, is a PagekitError
// with the given code.
func HasCode(err error, code string) bool {
	return stderrors.Is(err, &PagekitError{Code: code})
}
