// Package blueprint tracks the implementations token clones delegate to.
package blueprint

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/XTakerDAO/token-factory-sub001/internal/token"
)

const StandardTokenName = "FeatureFlaggedERC20"

// Blueprint is a deployed implementation that clones can delegate to.
type Blueprint struct {
	Name           string         `json:"name"`
	Version        uint64         `json:"version"`
	Implementation common.Address `json:"implementation"`
	CodeHash       common.Hash    `json:"codeHash"`
}

// Instantiate returns an uninitialized clone of b living at address.
func (b Blueprint) Instantiate(address common.Address) *token.Token {
	return token.New(address, b.Implementation)
}

// Catalogue maps implementation addresses to blueprints.
type Catalogue struct {
	mu     sync.RWMutex
	byImpl map[common.Address]Blueprint
}

func NewCatalogue() *Catalogue {
	return &Catalogue{byImpl: map[common.Address]Blueprint{}}
}

// StandardImplementation is the address the factory deployed its first
// implementation to, i.e. CREATE(factory, nonce 1).
func StandardImplementation(factory common.Address) common.Address {
	return crypto.CreateAddress(factory, 1)
}

// Standard describes the feature-flagged token implementation owned by factory.
func Standard(factory common.Address) Blueprint {
	return Blueprint{
		Name:           StandardTokenName,
		Version:        1,
		Implementation: StandardImplementation(factory),
		CodeHash:       crypto.Keccak256Hash([]byte(StandardTokenName), []byte(token.InitializeSignature)),
	}
}

// NewStandardCatalogue returns a catalogue holding the standard blueprint.
// It panics if the standard blueprint cannot be registered.
func NewStandardCatalogue(factory common.Address) *Catalogue {
	c := NewCatalogue()
	if err := c.Register(Standard(factory)); err != nil {
		panic(err)
	}
	return c
}

func (c *Catalogue) Register(b Blueprint) error {
	if b.Implementation == (common.Address{}) {
		return fmt.Errorf("blueprint: implementation must not be the zero address")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.byImpl[b.Implementation]; ok && existing.CodeHash != b.CodeHash {
		return fmt.Errorf("blueprint: %s already holds %s", b.Implementation.Hex(), existing.Name)
	}
	c.byImpl[b.Implementation] = b
	return nil
}

// Lookup resolves the code behind an implementation address.
func (c *Catalogue) Lookup(impl common.Address) (Blueprint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.byImpl[impl]
	return b, ok
}

func (c *Catalogue) List() []Blueprint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Blueprint, 0, len(c.byImpl))
	for _, b := range c.byImpl {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Implementation.Hex() < out[j].Implementation.Hex()
	})
	return out
}
