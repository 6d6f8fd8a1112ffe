// Package failure provides the coded error types raised by the export pipeline.
package failure

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Code identifies the kind of failure.
type Code string

const (
	CodeSourceUnavailable Code = "SOURCE_UNAVAILABLE"
	CodeMalformedResponse Code = "MALFORMED_RESPONSE"
	CodeInvalidTemplate   Code = "INVALID_TEMPLATE"
	CodeWriteFailure      Code = "WRITE_FAILURE"
	CodeConfigInvalid     Code = "CONFIG_INVALID"
)

// Error is a failure raised by one of the pipeline components.
type Error struct {
	Code  Code
	What  string
	Cause error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.What)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns a coded error with a stack attached.
func New(code Code, what string, cause error) error {
	return errors.WithStack(&Error{Code: code, What: what, Cause: cause})
}

// Newf is like New but formats the message.
func Newf(code Code, cause error, format string, args ...any) error {
	return New(code, fmt.Sprintf(format, args...), cause)
}

func SourceUnavailable(what string, cause error) error {
	return New(CodeSourceUnavailable, what, cause)
}

func MalformedResponse(what string, cause error) error {
	return New(CodeMalformedResponse, what, cause)
}

func InvalidTemplate(what string, cause error) error {
	return New(CodeInvalidTemplate, what, cause)
}

func WriteFailure(what string, cause error) error {
	return New(CodeWriteFailure, what, cause)
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there is none.
func CodeOf(err error) Code {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
