package token

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/XTakerDAO/token-factory-sub001/internal/apperrors"
)

var ownerA = common.HexToAddress("0x00000000000000000000000000000000000000a1")

func validConfig() Config {
	return Config{
		Name:         "My Token",
		Symbol:       "MT",
		TotalSupply:  uint256.MustFromDecimal("1000000000000000000000000"),
		Decimals:     18,
		InitialOwner: ownerA,
		Mintable:     true,
	}
}

func TestValidateRules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		reason string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty name", func(c *Config) { c.Name = "" }, "name is required"},
		{"long name", func(c *Config) { c.Name = strings.Repeat("a", 51) }, "name exceeds 50 characters"},
		{"name at limit", func(c *Config) { c.Name = strings.Repeat("é", 50) }, ""},
		{"control char", func(c *Config) { c.Name = "My\x07Token" }, "name contains control characters"},
		{"empty symbol", func(c *Config) { c.Symbol = "" }, "symbol is required"},
		{"long symbol", func(c *Config) { c.Symbol = "ABCDEFGHIJK" }, "symbol exceeds 10 characters"},
		{"lowercase symbol", func(c *Config) { c.Symbol = "mt" }, "symbol must be uppercase alphanumeric"},
		{"punctuated symbol", func(c *Config) { c.Symbol = "M-T" }, "symbol must be uppercase alphanumeric"},
		{"decimals", func(c *Config) { c.Decimals = 19 }, "decimals exceed 18"},
		{"zero supply", func(c *Config) { c.TotalSupply = new(uint256.Int) }, "total supply must be greater than zero"},
		{"nil supply", func(c *Config) { c.TotalSupply = nil }, "total supply must be greater than zero"},
		{"capped without max", func(c *Config) { c.Capped = true }, "max supply is required when capped"},
		{"zero owner", func(c *Config) { c.InitialOwner = common.Address{} }, "initial owner must not be the zero address"},
		{"first rule wins", func(c *Config) { c.Name = ""; c.Decimals = 30 }, "name is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			got := Validate(cfg, nil)
			if tc.reason == "" {
				assert.True(t, got.Valid, got.Reason)
				assert.NoError(t, got.Err())
				return
			}
			assert.False(t, got.Valid)
			assert.Equal(t, tc.reason, got.Reason)
			assert.ErrorIs(t, got.Err(), apperrors.ErrInvalidConfiguration)
		})
	}
}

func TestValidateCapInvariant(t *testing.T) {
	cfg := validConfig()
	cfg.Capped = true
	cfg.TotalSupply = uint256.NewInt(1000)

	cfg.MaxSupply = uint256.NewInt(500)
	assert.False(t, Validate(cfg, nil).Valid)

	cfg.MaxSupply = uint256.NewInt(2000)
	assert.True(t, Validate(cfg, nil).Valid)

	cfg.MaxSupply = uint256.NewInt(1000)
	assert.True(t, Validate(cfg, nil).Valid)
}

func TestValidateSymbolTaken(t *testing.T) {
	taken := func(s string) bool { return s == "MT" }

	got := Validate(validConfig(), taken)
	assert.False(t, got.Valid)
	assert.Equal(t, apperrors.CodeSymbolAlreadyExists, got.Code)
	assert.ErrorIs(t, got.Err(), apperrors.ErrSymbolAlreadyExists)

	// malformed symbols are reported before uniqueness
	cfg := validConfig()
	cfg.Symbol = "mt"
	assert.Equal(t, apperrors.CodeInvalidConfiguration, Validate(cfg, func(string) bool { return true }).Code)

	assert.True(t, ValidateShape(validConfig()).Valid)
}
