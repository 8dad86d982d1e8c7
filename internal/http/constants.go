package http

import "time"

// Context keys set by middleware.
const (
	ctxKeyCaller = "tf.caller"
)

const (
	HTTPErrorInvalidJSONText    = "invalid JSON"
	HTTPErrorUnauthorizedText   = "unauthorized"
	HTTPErrorRequestTooLargeTxt = "request body too large"
)

const (
	// MaxBodyBytes bounds every signed request body.
	MaxBodyBytes = 1 << 20

	DefaultEventPageSize = 100
	MaxEventPageSize     = 1000

	DefaultSignatureWindow = 5 * time.Minute
)
