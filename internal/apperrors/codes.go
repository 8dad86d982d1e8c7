// Package apperrors carries the factory's error taxonomy.
package apperrors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	CodeInternal Code = "INTERNAL"

	// Validation
	CodeInvalidConfiguration Code = "INVALID_CONFIGURATION"

	// Payment
	CodeInsufficientServiceFee Code = "INSUFFICIENT_SERVICE_FEE"

	// Conflict
	CodeSymbolAlreadyExists Code = "SYMBOL_ALREADY_EXISTS"
	CodeAddressInUse        Code = "ADDRESS_IN_USE"

	// Reference
	CodeTemplateNotFound Code = "TEMPLATE_NOT_FOUND"
	CodeAssetNotFound    Code = "ASSET_NOT_FOUND"

	// Authorization
	CodeUnauthorized Code = "UNAUTHORIZED"

	// Input
	CodeZeroAddress  Code = "ZERO_ADDRESS"
	CodeInvalidInput Code = "INVALID_INPUT"

	// Blueprint state
	CodeAlreadyInitialized    Code = "ALREADY_INITIALIZED"
	CodeNotInitialized        Code = "NOT_INITIALIZED"
	CodeFeatureDisabled       Code = "FEATURE_DISABLED"
	CodeCapExceeded           Code = "CAP_EXCEEDED"
	CodeInsufficientBalance   Code = "INSUFFICIENT_BALANCE"
	CodeInsufficientAllowance Code = "INSUFFICIENT_ALLOWANCE"
	CodePaused                Code = "PAUSED"
	CodeNotPaused             Code = "NOT_PAUSED"
	CodeOverflow              Code = "ARITHMETIC_OVERFLOW"
	CodeUnsupportedVersion    Code = "UNSUPPORTED_VERSION"
)

// Kind groups codes by how a caller is expected to recover.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindPayment       Kind = "payment"
	KindConflict      Kind = "conflict"
	KindReference     Kind = "reference"
	KindAuthorization Kind = "authorization"
	KindInput         Kind = "input"
	KindState         Kind = "state"
	KindInternal      Kind = "internal"
)

func (c Code) Kind() Kind {
	switch c {
	case CodeInvalidConfiguration:
		return KindValidation
	case CodeInsufficientServiceFee:
		return KindPayment
	case CodeSymbolAlreadyExists, CodeAddressInUse:
		return KindConflict
	case CodeTemplateNotFound, CodeAssetNotFound:
		return KindReference
	case CodeUnauthorized:
		return KindAuthorization
	case CodeZeroAddress, CodeInvalidInput:
		return KindInput
	case CodeAlreadyInitialized, CodeNotInitialized, CodeFeatureDisabled, CodeCapExceeded,
		CodeInsufficientBalance, CodeInsufficientAllowance, CodePaused, CodeNotPaused,
		CodeOverflow, CodeUnsupportedVersion:
		return KindState
	default:
		return KindInternal
	}
}

// HTTPStatus maps a code to the status the HTTP surface answers with.
func (c Code) HTTPStatus() int {
	switch c.Kind() {
	case KindValidation, KindInput:
		return http.StatusBadRequest
	case KindPayment:
		return http.StatusPaymentRequired
	case KindConflict, KindState:
		return http.StatusConflict
	case KindReference:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
