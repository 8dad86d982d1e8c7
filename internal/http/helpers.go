package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"

	"github.com/XTakerDAO/token-factory-sub001/internal/apperrors"
	"github.com/XTakerDAO/token-factory-sub001/internal/registry"
)

func writeOK(c *gin.Context, status int, data any) {
	c.JSON(status, response{OK: true, Data: data})
}

// writeErr answers with the status a coded error maps to. Uncoded errors are
// internal and their text is not echoed.
func writeErr(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)
	msg := err.Error()
	if code == apperrors.CodeInternal {
		msg = http.StatusText(http.StatusInternalServerError)
	}
	c.AbortWithStatusJSON(code.HTTPStatus(), response{OK: false, Error: msg, Code: string(code)})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, response{OK: false, Error: err.Error(), Code: string(apperrors.CodeInvalidInput)})
}

func parseAddr(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.Address{}, fmt.Errorf("missing address")
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address: %q", s)
	}
	return common.HexToAddress(s), nil
}

// parseAmount reads a decimal wei string. Empty means zero.
func parseAmount(field, s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", field, s)
	}
	return v, nil
}

// parseTemplate accepts a 32-byte hex id or a label such as BASIC_ERC20.
func parseTemplate(s string) (common.Hash, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.Hash{}, fmt.Errorf("missing template")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		b, err := hexutil.Decode(s)
		if err != nil || len(b) != common.HashLength {
			return common.Hash{}, fmt.Errorf("invalid template id: %q", s)
		}
		return common.BytesToHash(b), nil
	}
	return registry.TemplateID(s), nil
}

func callerOf(c *gin.Context) common.Address {
	v, _ := c.Get(ctxKeyCaller)
	addr, _ := v.(common.Address)
	return addr
}

func dec(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}
