package token

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/lmittmann/w3"
)

// InitializeSignature is the one-time initializer every blueprint clone exposes.
const InitializeSignature = "initialize(string,string,uint256,uint8,address,bool,bool,bool,bool,uint256)"

var funcInitialize = w3.MustNewFunc(InitializeSignature, "")

var configArgs = abi.Arguments{
	{Type: mustType("string")},
	{Type: mustType("string")},
	{Type: mustType("uint256")},
	{Type: mustType("uint8")},
	{Type: mustType("address")},
	{Type: mustType("bool")},
	{Type: mustType("bool")},
	{Type: mustType("bool")},
	{Type: mustType("bool")},
	{Type: mustType("uint256")},
}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// Hash is keccak256(abi.encode(config fields in declaration order)).
func Hash(cfg Config) (common.Hash, error) {
	packed, err := configArgs.Pack(
		cfg.Name,
		cfg.Symbol,
		amountOrZero(cfg.TotalSupply).ToBig(),
		cfg.Decimals,
		cfg.InitialOwner,
		cfg.Mintable,
		cfg.Burnable,
		cfg.Pausable,
		cfg.Capped,
		amountOrZero(cfg.MaxSupply).ToBig(),
	)
	if err != nil {
		return common.Hash{}, fmt.Errorf("token: pack config: %w", err)
	}
	return crypto.Keccak256Hash(packed), nil
}

// EncodeInit builds the initialize calldata for cfg.
func EncodeInit(cfg Config) ([]byte, error) {
	data, err := funcInitialize.EncodeArgs(
		cfg.Name,
		cfg.Symbol,
		amountOrZero(cfg.TotalSupply).ToBig(),
		cfg.Decimals,
		cfg.InitialOwner,
		cfg.Mintable,
		cfg.Burnable,
		cfg.Pausable,
		cfg.Capped,
		amountOrZero(cfg.MaxSupply).ToBig(),
	)
	if err != nil {
		return nil, fmt.Errorf("token: encode initialize: %w", err)
	}
	return data, nil
}

// DecodeInit parses initialize calldata back into a Config.
func DecodeInit(data []byte) (Config, error) {
	var (
		cfg         Config
		totalSupply big.Int
		maxSupply   big.Int
	)
	if err := funcInitialize.DecodeArgs(data,
		&cfg.Name,
		&cfg.Symbol,
		&totalSupply,
		&cfg.Decimals,
		&cfg.InitialOwner,
		&cfg.Mintable,
		&cfg.Burnable,
		&cfg.Pausable,
		&cfg.Capped,
		&maxSupply,
	); err != nil {
		return Config{}, fmt.Errorf("token: decode initialize: %w", err)
	}

	var overflow bool
	if cfg.TotalSupply, overflow = uint256.FromBig(&totalSupply); overflow {
		return Config{}, fmt.Errorf("token: decode initialize: total supply overflows uint256")
	}
	if cfg.MaxSupply, overflow = uint256.FromBig(&maxSupply); overflow {
		return Config{}, fmt.Errorf("token: decode initialize: max supply overflows uint256")
	}
	return cfg, nil
}
