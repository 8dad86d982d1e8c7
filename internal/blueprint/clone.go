package blueprint

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// EIP-1167 minimal proxy creation code around a 20-byte implementation address.
var (
	clonePrefix = common.FromHex("0x3d602d80600a3d3981f3363d3d373d3d3d363d73")
	cloneSuffix = common.FromHex("0x5af43d82803e903d91602b57fd5bf3")
)

// CloneInitCode returns the creation code of a minimal proxy delegating to impl.
func CloneInitCode(impl common.Address) []byte {
	code := make([]byte, 0, len(clonePrefix)+common.AddressLength+len(cloneSuffix))
	code = append(code, clonePrefix...)
	code = append(code, impl.Bytes()...)
	code = append(code, cloneSuffix...)
	return code
}

// CloneInitCodeHash is keccak256 of CloneInitCode(impl), the CREATE2 code digest.
func CloneInitCodeHash(impl common.Address) common.Hash {
	return crypto.Keccak256Hash(CloneInitCode(impl))
}
