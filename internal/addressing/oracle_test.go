package addressing

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XTakerDAO/token-factory-sub001/internal/blueprint"
	"github.com/XTakerDAO/token-factory-sub001/internal/token"
)

var (
	factoryAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	creatorA    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	creatorB    = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func sampleConfig() token.Config {
	return token.Config{
		Name:         "My Token",
		Symbol:       "MT",
		TotalSupply:  uint256.NewInt(1_000_000),
		Decimals:     18,
		InitialOwner: creatorA,
	}
}

func TestSaltMatchesABIEncoding(t *testing.T) {
	h := common.HexToHash("0x1234")
	salt := Salt(creatorA, h, 7)

	want := crypto.Keccak256Hash(
		common.LeftPadBytes(creatorA.Bytes(), 32),
		h.Bytes(),
		common.LeftPadBytes(big.NewInt(7).Bytes(), 32),
	)
	assert.Equal(t, want, salt)
}

func TestCreate2MatchesGethDerivation(t *testing.T) {
	impl := blueprint.StandardImplementation(factoryAddr)
	salt := common.HexToHash("0x01")

	want := crypto.CreateAddress2(factoryAddr, salt, crypto.Keccak256(blueprint.CloneInitCode(impl)))
	assert.Equal(t, want, Create2(factoryAddr, impl, salt))
}

func TestPredictIsDeterministicAndCollisionFree(t *testing.T) {
	o := NewOracle(factoryAddr)
	impl := blueprint.StandardImplementation(factoryAddr)

	p1, err := o.Predict(creatorA, sampleConfig(), impl, 0)
	require.NoError(t, err)
	p2, err := o.Predict(creatorA, sampleConfig(), impl, 0)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)

	seen := map[common.Address]string{p1.Address: "base"}
	variants := map[string]func() (Prediction, error){
		"next nonce": func() (Prediction, error) { return o.Predict(creatorA, sampleConfig(), impl, 1) },
		"creator":    func() (Prediction, error) { return o.Predict(creatorB, sampleConfig(), impl, 0) },
		"config": func() (Prediction, error) {
			cfg := sampleConfig()
			cfg.Symbol = "MT2"
			return o.Predict(creatorA, cfg, impl, 0)
		},
		"implementation": func() (Prediction, error) {
			return o.Predict(creatorA, sampleConfig(), common.HexToAddress("0xdead"), 0)
		},
	}
	for name, predict := range variants {
		p, err := predict()
		require.NoError(t, err)
		prev, clash := seen[p.Address]
		assert.False(t, clash, "%s collides with %s", name, prev)
		seen[p.Address] = name
	}
}
