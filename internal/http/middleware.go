package http

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/XTakerDAO/token-factory-sub001/internal/apperrors"
	"github.com/XTakerDAO/token-factory-sub001/internal/auth"
)

// requireSignature authenticates the request and stores the recovered
// caller in the context. The body is restored for the handler. A signed
// request is accepted once.
func requireSignature(v *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, MaxBodyBytes+1))
		if err != nil {
			badRequest(c, err)
			return
		}
		if len(body) > MaxBodyBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, response{OK: false, Error: HTTPErrorRequestTooLargeTxt})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		caller, err := v.Verify(
			c.Request.Method,
			c.Request.URL.Path,
			body,
			c.GetHeader(auth.HeaderAddress),
			c.GetHeader(auth.HeaderSignature),
			c.GetHeader(auth.HeaderTimestamp),
			c.GetHeader(auth.HeaderNonce),
		)
		if err != nil {
			log.Warn("signature rejected", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, response{
				OK:    false,
				Error: HTTPErrorUnauthorizedText,
				Code:  string(apperrors.CodeUnauthorized),
			})
			return
		}
		c.Set(ctxKeyCaller, caller)
		c.Next()
	}
}
