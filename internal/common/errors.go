// Package common holds the error taxonomy shared by the workflow engine and
// its transports.
package common

import (
	"errors"
	"fmt"
)

// Code classifies an Error so transports can map it to a status.
type Code string

const (
	CodeNotFound   Code = "not_found"
	CodeValidation Code = "validation"
	CodeForbidden  Code = "forbidden"
	CodeConflict   Code = "conflict"
	CodeInternal   Code = "internal"
)

// Error is the engine's typed error. Message is safe to show to callers;
// Err carries the underlying cause, if any.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an Error with the given code.
func NewError(code Code, msg string, err error) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// NewValidationError builds a validation Error carrying per-field messages.
func NewValidationError(msg string, fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Fields: fields}
}

// NotFound reports a missing entity, e.g. NotFound("offer", id).
func NotFound(entity, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// Validation is shorthand for a validation Error with a formatted message.
func Validation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Forbidden reports an actor acting on a resource it does not own.
func Forbidden(format string, args ...any) *Error {
	return &Error{Code: CodeForbidden, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err (or anything it wraps) is an *Error with code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
