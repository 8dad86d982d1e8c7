package apperrors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Error is a coded failure returned by every public factory operation.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code to an underlying cause, keeping its stack.
func Wrap(code Code, message string, cause error) *Error {
	if cause == nil {
		return New(code, message)
	}
	return &Error{Code: code, Message: message, Cause: errors.WithStack(cause)}
}

// CodeOf extracts the code of the first coded error in err's chain.
// Uncoded errors report CodeInternal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries code anywhere in its chain.
func HasCode(err error, code Code) bool {
	return errors.Is(err, &Error{Code: code})
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidConfiguration   = New(CodeInvalidConfiguration, "invalid configuration")
	ErrInsufficientServiceFee = New(CodeInsufficientServiceFee, "insufficient service fee")
	ErrSymbolAlreadyExists    = New(CodeSymbolAlreadyExists, "symbol already exists")
	ErrAddressInUse           = New(CodeAddressInUse, "address already in use")
	ErrTemplateNotFound       = New(CodeTemplateNotFound, "template not found")
	ErrAssetNotFound          = New(CodeAssetNotFound, "asset not found")
	ErrUnauthorized           = New(CodeUnauthorized, "unauthorized")
	ErrZeroAddress            = New(CodeZeroAddress, "zero address")
	ErrInvalidInput           = New(CodeInvalidInput, "invalid input")
	ErrAlreadyInitialized     = New(CodeAlreadyInitialized, "already initialized")
	ErrNotInitialized         = New(CodeNotInitialized, "not initialized")
	ErrFeatureDisabled        = New(CodeFeatureDisabled, "feature disabled")
	ErrCapExceeded            = New(CodeCapExceeded, "cap exceeded")
	ErrInsufficientBalance    = New(CodeInsufficientBalance, "insufficient balance")
	ErrInsufficientAllowance  = New(CodeInsufficientAllowance, "insufficient allowance")
	ErrPaused                 = New(CodePaused, "paused")
	ErrNotPaused              = New(CodeNotPaused, "not paused")
	ErrOverflow               = New(CodeOverflow, "arithmetic overflow")
	ErrUnsupportedVersion     = New(CodeUnsupportedVersion, "unsupported version")
)
