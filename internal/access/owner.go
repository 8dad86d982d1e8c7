// Package access gates every registry-wide mutation behind a single owner.
package access

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/XTakerDAO/token-factory-sub001/internal/apperrors"
)

// Owner is the identity allowed to mutate templates, fees and the version.
// The zero value is a renounced owner that authorizes nobody.
type Owner struct {
	addr common.Address
}

func NewOwner(addr common.Address) Owner {
	return Owner{addr: addr}
}

func (o Owner) Address() common.Address { return o.addr }

func (o Owner) Renounced() bool { return o.addr == (common.Address{}) }

// Authorize fails with UNAUTHORIZED unless caller is the current owner.
// The error never names the owner.
func (o Owner) Authorize(caller common.Address) error {
	if o.Renounced() || caller != o.addr {
		return apperrors.ErrUnauthorized
	}
	return nil
}

// Transfer hands ownership to next.
func (o Owner) Transfer(caller, next common.Address) (Owner, error) {
	if err := o.Authorize(caller); err != nil {
		return o, err
	}
	if next == (common.Address{}) {
		return o, apperrors.New(apperrors.CodeZeroAddress, "new owner must not be the zero address")
	}
	return Owner{addr: next}, nil
}

// Renounce leaves the registry without an owner for good.
func (o Owner) Renounce(caller common.Address) (Owner, error) {
	if err := o.Authorize(caller); err != nil {
		return o, err
	}
	return Owner{}, nil
}
