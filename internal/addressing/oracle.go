// Package addressing computes where a token clone will be deployed before
// the deployment runs.
package addressing

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/XTakerDAO/token-factory-sub001/internal/blueprint"
	"github.com/XTakerDAO/token-factory-sub001/internal/token"
)

var saltArgs = abi.Arguments{
	{Type: mustType("address")},
	{Type: mustType("bytes32")},
	{Type: mustType("uint256")},
}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// Salt is keccak256(abi.encode(creator, configHash, nonce)). The nonce is the
// creator's count of prior deployments, so repeating a config never collides.
func Salt(creator common.Address, configHash common.Hash, nonce uint64) common.Hash {
	packed, err := saltArgs.Pack(creator, [32]byte(configHash), new(big.Int).SetUint64(nonce))
	if err != nil {
		// static types only; packing cannot fail
		panic(fmt.Sprintf("addressing: pack salt: %v", err))
	}
	return crypto.Keccak256Hash(packed)
}

// Create2 is the CREATE2 address of a minimal proxy for impl.
func Create2(factory, impl common.Address, salt common.Hash) common.Address {
	return crypto.CreateAddress2(factory, salt, blueprint.CloneInitCodeHash(impl).Bytes())
}

// Prediction is everything the engine needs to land a clone deterministically.
type Prediction struct {
	Address    common.Address `json:"address"`
	Salt       common.Hash    `json:"salt"`
	ConfigHash common.Hash    `json:"configHash"`
	Nonce      uint64         `json:"nonce"`
}

// Oracle predicts clone addresses for one factory.
type Oracle struct {
	factory common.Address
}

func NewOracle(factory common.Address) Oracle {
	return Oracle{factory: factory}
}

func (o Oracle) Factory() common.Address { return o.factory }

func (o Oracle) Predict(creator common.Address, cfg token.Config, impl common.Address, nonce uint64) (Prediction, error) {
	configHash, err := token.Hash(cfg)
	if err != nil {
		return Prediction{}, err
	}
	salt := Salt(creator, configHash, nonce)
	return Prediction{
		Address:    Create2(o.factory, impl, salt),
		Salt:       salt,
		ConfigHash: configHash,
		Nonce:      nonce,
	}, nil
}
