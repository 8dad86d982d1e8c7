package token

import (
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"

	"github.com/XTakerDAO/token-factory-sub001/internal/apperrors"
)

const (
	MaxNameLength   = 50
	MaxSymbolLength = 10
	MaxDecimals     = 18
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// SymbolLookup reports whether a symbol is already bound to a deployed asset.
type SymbolLookup func(symbol string) bool

// Validation is the outcome of checking a Config. Reason names the first
// violated rule and is empty when Valid.
type Validation struct {
	Valid  bool           `json:"valid"`
	Reason string         `json:"reason"`
	Code   apperrors.Code `json:"-"`
}

// Err converts a failed validation into a coded error.
func (v Validation) Err() error {
	if v.Valid {
		return nil
	}
	return apperrors.New(v.Code, v.Reason)
}

func ok() Validation { return Validation{Valid: true} }

func fail(code apperrors.Code, format string, args ...any) Validation {
	return Validation{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks cfg rule by rule and stops at the first violation.
// A nil lookup skips the symbol uniqueness rule.
func Validate(cfg Config, taken SymbolLookup) Validation {
	if v := checkName(cfg.Name); !v.Valid {
		return v
	}
	if v := checkSymbol(cfg.Symbol); !v.Valid {
		return v
	}
	if taken != nil && taken(cfg.Symbol) {
		return fail(apperrors.CodeSymbolAlreadyExists, "symbol %s is already deployed", cfg.Symbol)
	}
	return checkSupply(cfg)
}

// ValidateShape applies every rule except symbol uniqueness.
func ValidateShape(cfg Config) Validation {
	return Validate(cfg, nil)
}

func checkName(name string) Validation {
	if name == "" {
		return fail(apperrors.CodeInvalidConfiguration, "name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fail(apperrors.CodeInvalidConfiguration, "name exceeds %d characters", MaxNameLength)
	}
	if !utf8.ValidString(name) {
		return fail(apperrors.CodeInvalidConfiguration, "name is not valid utf-8")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fail(apperrors.CodeInvalidConfiguration, "name contains control characters")
		}
	}
	return ok()
}

func checkSymbol(symbol string) Validation {
	if symbol == "" {
		return fail(apperrors.CodeInvalidConfiguration, "symbol is required")
	}
	if len(symbol) > MaxSymbolLength {
		return fail(apperrors.CodeInvalidConfiguration, "symbol exceeds %d characters", MaxSymbolLength)
	}
	if !symbolPattern.MatchString(symbol) {
		return fail(apperrors.CodeInvalidConfiguration, "symbol must be uppercase alphanumeric")
	}
	return ok()
}

func checkSupply(cfg Config) Validation {
	if cfg.Decimals > MaxDecimals {
		return fail(apperrors.CodeInvalidConfiguration, "decimals exceed %d", MaxDecimals)
	}
	if cfg.TotalSupply == nil || cfg.TotalSupply.IsZero() {
		return fail(apperrors.CodeInvalidConfiguration, "total supply must be greater than zero")
	}
	if cfg.Capped {
		if cfg.MaxSupply == nil || cfg.MaxSupply.IsZero() {
			return fail(apperrors.CodeInvalidConfiguration, "max supply is required when capped")
		}
		if cfg.MaxSupply.Lt(cfg.TotalSupply) {
			return fail(apperrors.CodeInvalidConfiguration, "max supply must be at least total supply")
		}
	}
	if cfg.InitialOwner == (common.Address{}) {
		return fail(apperrors.CodeInvalidConfiguration, "initial owner must not be the zero address")
	}
	return ok()
}
