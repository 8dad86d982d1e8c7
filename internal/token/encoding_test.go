package token

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeInitRoundTrip(t *testing.T) {
	cfg := validConfig()
	cfg.Capped = true
	cfg.MaxSupply = uint256.MustFromDecimal("2000000000000000000000000")

	data, err := EncodeInit(cfg)
	require.NoError(t, err)
	assert.Equal(t, funcInitialize.Selector[:], data[:4])

	got, err := DecodeInit(data)
	require.NoError(t, err)
	assert.Equal(t, cfg.Name, got.Name)
	assert.Equal(t, cfg.Symbol, got.Symbol)
	assert.Equal(t, cfg.Decimals, got.Decimals)
	assert.Equal(t, cfg.InitialOwner, got.InitialOwner)
	assert.Equal(t, cfg.Features(), got.Features())
	assert.True(t, cfg.TotalSupply.Eq(got.TotalSupply))
	assert.True(t, cfg.MaxSupply.Eq(got.MaxSupply))
}

func TestDecodeInitRejectsForeignCalldata(t *testing.T) {
	_, err := DecodeInit([]byte{0xde, 0xad, 0xbe, 0xef})
	assert.Error(t, err)
}

func TestHashDependsOnEveryField(t *testing.T) {
	base, err := Hash(validConfig())
	require.NoError(t, err)

	again, err := Hash(validConfig())
	require.NoError(t, err)
	assert.Equal(t, base, again)

	mutations := map[string]func(*Config){
		"name":     func(c *Config) { c.Name = "Other" },
		"symbol":   func(c *Config) { c.Symbol = "OT" },
		"supply":   func(c *Config) { c.TotalSupply = uint256.NewInt(1) },
		"decimals": func(c *Config) { c.Decimals = 6 },
		"owner":    func(c *Config) { c.InitialOwner[19] ^= 0xff },
		"mintable": func(c *Config) { c.Mintable = false },
		"burnable": func(c *Config) { c.Burnable = true },
		"pausable": func(c *Config) { c.Pausable = true },
		"capped":   func(c *Config) { c.Capped = true },
		"max":      func(c *Config) { c.MaxSupply = uint256.NewInt(7) },
	}
	for field, mutate := range mutations {
		cfg := validConfig()
		mutate(&cfg)
		h, err := Hash(cfg)
		require.NoError(t, err)
		assert.NotEqual(t, base, h, field)
	}
}
