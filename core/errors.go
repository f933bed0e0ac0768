/*
Package core holds the error model shared by all wemoji packages.

Errors crossing package boundaries carry an error code and a message meant
for users. Codes survive wrapping with fmt.Errorf("…: %w", err).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package core

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrCode classifies application errors.
type ErrCode int

// Error codes. Codes start above the range of common exit codes, which
// lets the CLI use them as exit status.
const (
	NOERROR       ErrCode = 0
	EMISSING      ErrCode = 122 // resource or setting does not exist
	EINVALID      ErrCode = 123 // validation failed
	ENOTSUPPORTED ErrCode = 124 // host capability not available
	EINTERNAL     ErrCode = 125 // internal error
)

func (c ErrCode) String() string {
	switch c {
	case NOERROR:
		return "OK"
	case EMISSING:
		return "not found"
	case EINVALID:
		return "invalid"
	case ENOTSUPPORTED:
		return "not supported"
	case EINTERNAL:
		return "internal error"
	}
	return fmt.Sprintf("undefined error %d", int(c))
}

// AppError is an error with an associated error code and a user-message.
type AppError interface {
	error
	ErrorCode() ErrCode
	UserMessage() string
}

type appError struct {
	cause error
	code  ErrCode
	msg   string
}

var _ AppError = appError{}

func (e appError) Unwrap() error {
	return e.cause
}

func (e appError) Error() string {
	if e.msg == "" || e.msg == e.cause.Error() {
		return fmt.Sprintf("[%d] %v", e.code, e.cause)
	}
	return fmt.Sprintf("[%d] %s: %v", e.code, e.msg, e.cause)
}

func (e appError) ErrorCode() ErrCode {
	return e.code
}

func (e appError) UserMessage() string {
	return e.msg
}

func newError(cause error, code ErrCode, msg string) error {
	if cause == nil {
		cause = errors.New(code.String())
	}
	return appError{cause: cause, code: code, msg: msg}
}

// Error creates an error with an error code and a user-message.
func Error(code ErrCode, format string, v ...interface{}) error {
	return newError(nil, code, fmt.Sprintf(format, v...))
}

// WrapError wraps err, adding an error code and a user message.
// A nil err is replaced by an error carrying the code's text.
func WrapError(err error, code ErrCode, format string, v ...interface{}) error {
	return newError(err, code, fmt.Sprintf(format, v...))
}

// ErrorWithCode adds an error code to err, using the code's text as
// user message.
func ErrorWithCode(err error, code ErrCode) error {
	return newError(err, code, code.String())
}

// Code returns the error code found in err's chain. Errors without a code
// are internal errors; nil is NOERROR.
func Code(err error) ErrCode {
	if err == nil {
		return NOERROR
	}
	if e := AppError(nil); errors.As(err, &e) {
		return e.ErrorCode()
	}
	return EINTERNAL
}

// UserMessage returns the user message found in err's chain, or the text
// of err's code.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if e := AppError(nil); errors.As(err, &e) {
		return e.UserMessage()
	}
	return Code(err).String()
}

// ReportError writes err for users to w and returns the error code.
func ReportError(w io.Writer, err error) ErrCode {
	if err == nil {
		return NOERROR
	}
	code := Code(err)
	if e := AppError(nil); errors.As(err, &e) {
		fmt.Fprintf(w, "[%d] %s\n", code, e.UserMessage())
	} else {
		fmt.Fprintf(w, "Error: %s\n", err.Error())
	}
	return code
}

// UserError reports err on stderr.
func UserError(err error) {
	ReportError(os.Stderr, err)
}
