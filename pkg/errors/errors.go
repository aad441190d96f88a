// Package errors defines the coded errors shared by the ledger reader, the
// flow pipeline, the CLI and the HTTP API.
//
// Every [Error] carries a [Code]. Codes fall into a few [Class]es, and
// callers branch on the class instead of listing codes: the CLI picks its
// exit status from it and the HTTP API its response status.
//
//	err := errors.New(errors.ErrCodeInvalidAmount, "cannot parse amount %q", raw)
//	errors.Is(err, errors.ErrCodeInvalidAmount) // true
//	errors.ClassOf(err)                         // errors.ClassValidation
//
// Empty results (NO_DATA, NO_MATCH) are codes too, but the pipeline reports
// them as result statuses and only uses the codes for messages.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidAmount    Code = "INVALID_AMOUNT"
	ErrCodeInvalidDate      Code = "INVALID_DATE"
	ErrCodeInvalidThreshold Code = "INVALID_THRESHOLD"
	ErrCodeInvalidStrategy  Code = "INVALID_STRATEGY"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"
	ErrCodeInvalidPath      Code = "INVALID_PATH"

	ErrCodeNoData  Code = "NO_DATA"
	ErrCodeNoMatch Code = "NO_MATCH"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	ErrCodeUnsupported Code = "UNSUPPORTED"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
)

// Class groups codes by how a caller should react to them.
type Class int

const (
	ClassUnknown    Class = iota // not a coded error
	ClassValidation              // bad input, the caller can fix it
	ClassEmpty                   // nothing to show
	ClassNotFound                // a named resource does not exist
	ClassInternal
)

// Class returns the class of c. INVALID_* codes and UNSUPPORTED are
// validation failures, NO_* codes are empty results and *NOT_FOUND codes are
// missing resources.
func (c Code) Class() Class {
	switch {
	case c == "":
		return ClassUnknown
	case strings.HasPrefix(string(c), "INVALID_"), c == ErrCodeUnsupported:
		return ClassValidation
	case strings.HasPrefix(string(c), "NO_"):
		return ClassEmpty
	case strings.HasSuffix(string(c), "NOT_FOUND"):
		return ClassNotFound
	default:
		return ClassInternal
	}
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is like New but keeps cause in the chain.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// when there is none.
func GetCode(err error) Code {
	if e := as(err); e != nil {
		return e.Code
	}
	return ""
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// ClassOf returns the class of err's code.
func ClassOf(err error) Class { return GetCode(err).Class() }

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return ClassOf(err) == ClassValidation }

// UserMessage returns the message without the code prefix and cause, or
// err.Error() for uncoded errors.
func UserMessage(err error) string {
	if e := as(err); e != nil {
		return e.Message
	}
	return err.Error()
}

func as(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
