package blueprint

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var factoryAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

func TestCloneInitCode(t *testing.T) {
	impl := common.HexToAddress("0xbebebebebebebebebebebebebebebebebebebebe")
	code := CloneInitCode(impl)

	want := common.FromHex("0x3d602d80600a3d3981f3363d3d373d3d3d363d73" +
		"bebebebebebebebebebebebebebebebebebebebe" +
		"5af43d82803e903d91602b57fd5bf3")
	assert.Equal(t, want, code)
	assert.Len(t, code, 55)
	assert.Equal(t, crypto.Keccak256Hash(want), CloneInitCodeHash(impl))
}

func TestStandardCatalogue(t *testing.T) {
	c := NewStandardCatalogue(factoryAddr)

	impl := StandardImplementation(factoryAddr)
	assert.Equal(t, crypto.CreateAddress(factoryAddr, 1), impl)

	b, ok := c.Lookup(impl)
	require.True(t, ok)
	assert.Equal(t, StandardTokenName, b.Name)

	tok := b.Instantiate(common.HexToAddress("0x01"))
	assert.False(t, tok.Initialized())
	assert.Equal(t, impl, tok.Implementation())

	_, ok = c.Lookup(common.HexToAddress("0x02"))
	assert.False(t, ok)
	assert.Len(t, c.List(), 1)
}

func TestRegisterRejectsConflicts(t *testing.T) {
	c := NewStandardCatalogue(factoryAddr)
	require.Error(t, c.Register(Blueprint{Name: "zero"}))

	clash := Standard(factoryAddr)
	clash.CodeHash = common.HexToHash("0x01")
	require.Error(t, c.Register(clash))

	require.NoError(t, c.Register(Standard(factoryAddr)))
}

func TestStandardCatalogueRegistersForAnyFactory(t *testing.T) {
	for _, f := range []common.Address{{}, factoryAddr, common.HexToAddress("0xffffffffffffffffffffffffffffffffffffffff")} {
		var c *Catalogue
		require.NotPanics(t, func() { c = NewStandardCatalogue(f) })
		_, ok := c.Lookup(StandardImplementation(f))
		assert.True(t, ok, f.Hex())
	}
}
