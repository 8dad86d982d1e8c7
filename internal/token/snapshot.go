package token

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Snapshot is the persisted form of a Token. Amounts are decimal strings.
type Snapshot struct {
	Address        common.Address                               `json:"address"`
	Implementation common.Address                               `json:"implementation"`
	Initialized    bool                                         `json:"initialized"`
	Name           string                                       `json:"name"`
	Symbol         string                                       `json:"symbol"`
	Decimals       uint8                                        `json:"decimals"`
	Owner          common.Address                               `json:"owner"`
	Features       Features                                     `json:"features"`
	MaxSupply      string                                       `json:"maxSupply"`
	TotalSupply    string                                       `json:"totalSupply"`
	Paused         bool                                         `json:"paused"`
	Balances       map[common.Address]string                    `json:"balances"`
	Allowances     map[common.Address]map[common.Address]string `json:"allowances,omitempty"`
}

func (t *Token) Snapshot() Snapshot {
	s := Snapshot{
		Address:        t.address,
		Implementation: t.implementation,
		Initialized:    t.initialized,
		Name:           t.name,
		Symbol:         t.symbol,
		Decimals:       t.decimals,
		Owner:          t.owner,
		Features:       t.features,
		MaxSupply:      t.maxSupply.Dec(),
		TotalSupply:    t.totalSupply.Dec(),
		Paused:         t.paused,
		Balances:       make(map[common.Address]string, len(t.balances)),
	}
	for holder, bal := range t.balances {
		s.Balances[holder] = bal.Dec()
	}
	if len(t.allowances) > 0 {
		s.Allowances = make(map[common.Address]map[common.Address]string, len(t.allowances))
		for holder, spenders := range t.allowances {
			m := make(map[common.Address]string, len(spenders))
			for spender, v := range spenders {
				m[spender] = v.Dec()
			}
			s.Allowances[holder] = m
		}
	}
	return s
}

// FromSnapshot rebuilds a Token from its persisted form.
func FromSnapshot(s Snapshot) (*Token, error) {
	t := New(s.Address, s.Implementation)
	t.initialized = s.Initialized
	t.name = s.Name
	t.symbol = s.Symbol
	t.decimals = s.Decimals
	t.owner = s.Owner
	t.features = s.Features
	t.paused = s.Paused

	var err error
	if t.maxSupply, err = ParseAmount(s.MaxSupply); err != nil {
		return nil, fmt.Errorf("token: %s max supply: %w", s.Address.Hex(), err)
	}
	if t.totalSupply, err = ParseAmount(s.TotalSupply); err != nil {
		return nil, fmt.Errorf("token: %s total supply: %w", s.Address.Hex(), err)
	}
	for holder, raw := range s.Balances {
		v, err := ParseAmount(raw)
		if err != nil {
			return nil, fmt.Errorf("token: %s balance of %s: %w", s.Address.Hex(), holder.Hex(), err)
		}
		t.setBalance(holder, v)
	}
	for holder, spenders := range s.Allowances {
		for spender, raw := range spenders {
			v, err := ParseAmount(raw)
			if err != nil {
				return nil, fmt.Errorf("token: %s allowance %s/%s: %w", s.Address.Hex(), holder.Hex(), spender.Hex(), err)
			}
			t.setAllowance(holder, spender, v)
		}
	}
	return t, nil
}

// ParseAmount parses a decimal amount string, treating "" as zero.
func ParseAmount(raw string) (*uint256.Int, error) {
	if raw == "" {
		return new(uint256.Int), nil
	}
	return uint256.FromDecimal(raw)
}
