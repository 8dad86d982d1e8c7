// Package token holds the asset configuration, its validator and the
// feature-flagged token instance cloned from a blueprint.
package token

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Config is the parameter set a token instance is initialized with.
type Config struct {
	Name         string
	Symbol       string
	TotalSupply  *uint256.Int
	Decimals     uint8
	InitialOwner common.Address
	Mintable     bool
	Burnable     bool
	Pausable     bool
	Capped       bool
	MaxSupply    *uint256.Int
}

// Features are the capability flags baked into an instance at initialization.
type Features struct {
	Mintable bool `json:"mintable"`
	Burnable bool `json:"burnable"`
	Pausable bool `json:"pausable"`
	Capped   bool `json:"capped"`
}

func (c Config) Features() Features {
	return Features{
		Mintable: c.Mintable,
		Burnable: c.Burnable,
		Pausable: c.Pausable,
		Capped:   c.Capped,
	}
}

// Any reports whether at least one optional capability is enabled.
func (f Features) Any() bool {
	return f.Mintable || f.Burnable || f.Pausable || f.Capped
}

// Clone returns a copy that shares no amount pointers with c.
func (c Config) Clone() Config {
	out := c
	out.TotalSupply = cloneAmount(c.TotalSupply)
	out.MaxSupply = cloneAmount(c.MaxSupply)
	return out
}

func cloneAmount(v *uint256.Int) *uint256.Int {
	if v == nil {
		return nil
	}
	return new(uint256.Int).Set(v)
}

func amountOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}
