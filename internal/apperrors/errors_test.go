package apperrors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesByCode(t *testing.T) {
	err := Newf(CodeUnauthorized, "caller %s is not the owner", "0xabc")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrZeroAddress)

	wrapped := fmt.Errorf("factory: add template: %w", err)
	require.ErrorIs(t, wrapped, ErrUnauthorized)
	assert.Equal(t, CodeUnauthorized, CodeOf(wrapped))
	assert.True(t, HasCode(wrapped, CodeUnauthorized))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodeInternal, "commit batch", cause)

	assert.Equal(t, "commit batch: disk full", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, CodeInternal, CodeOf(err))
}

func TestCodeOfUncoded(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(nil))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}

func TestKindAndStatus(t *testing.T) {
	cases := []struct {
		code   Code
		kind   Kind
		status int
	}{
		{CodeInvalidConfiguration, KindValidation, http.StatusBadRequest},
		{CodeInsufficientServiceFee, KindPayment, http.StatusPaymentRequired},
		{CodeSymbolAlreadyExists, KindConflict, http.StatusConflict},
		{CodeTemplateNotFound, KindReference, http.StatusNotFound},
		{CodeUnauthorized, KindAuthorization, http.StatusForbidden},
		{CodeZeroAddress, KindInput, http.StatusBadRequest},
		{CodeCapExceeded, KindState, http.StatusConflict},
		{CodeInternal, KindInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			assert.Equal(t, tc.kind, tc.code.Kind())
			assert.Equal(t, tc.status, tc.code.HTTPStatus())
		})
	}
}
