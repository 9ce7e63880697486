package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Code classifies an error so callers can react without string matching
type Code int

const (
	// Internal indicates a bug or corrupted state within the engine
	Internal Code = http.StatusInternalServerError
	// NotFound indicates a missing document or collection
	NotFound Code = http.StatusNotFound
	// Forbidden indicates the caller may not perform the operation
	Forbidden Code = http.StatusForbidden
	// Validation indicates a caller contract violation (bad page request, invalid document)
	Validation Code = http.StatusBadRequest
	// Unavailable indicates the backing store failed or timed out - the engine never retries
	Unavailable Code = http.StatusServiceUnavailable
)

// Error is a coded error
type Error struct {
	Code     Code     `json:"code"`
	Messages []string `json:"messages"`
	Err      error    `json:"err,omitempty"`
}

// Error returns the Error as a json string
func (e *Error) Error() string {
	if e.Code == 0 {
		e.Code = http.StatusOK
	}
	bits, _ := json.Marshal(e)
	return string(bits)
}

// Unwrap returns the wrapped error (if any)
func (e *Error) Unwrap() error {
	return e.Err
}

// RemoveError removes the wrapped error from the Error and leaves its messages and code
func (e *Error) RemoveError() *Error {
	return &Error{
		Code:     e.Code,
		Messages: e.Messages,
		Err:      nil,
	}
}

// New creates a new coded error
func New(code Code, msg string, args ...any) error {
	err := &Error{
		Code: code,
	}
	if msg != "" {
		err.Messages = append(err.Messages, fmt.Sprintf(msg, args...))
	}
	return err
}

// Wrap wraps the given error with a code and message. Wrapping a nil error returns nil.
func Wrap(err error, code Code, msg string, args ...any) error {
	if err == nil {
		return nil
	}
	e, ok := err.(*Error)
	if ok {
		// never point Err back at e itself - a self referential chain would
		// make Unwrap loop and json encoding cycle
		if msg != "" {
			e.Messages = append(e.Messages, fmt.Sprintf(msg, args...))
		}
		if code > 0 {
			e.Code = code
		}
		return e
	}
	e = &Error{
		Code: code,
		Err:  err,
	}
	if msg != "" {
		e.Messages = append(e.Messages, fmt.Sprintf(msg, args...))
	}
	return e
}

// Extract extracts the coded Error from the given error
func Extract(err error) *Error {
	e, ok := err.(*Error)
	if !ok {
		return &Error{
			Code:     0,
			Messages: nil,
			Err:      err,
		}
	}
	return e
}
