package factory

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/XTakerDAO/token-factory-sub001/internal/apperrors"
	"github.com/XTakerDAO/token-factory-sub001/internal/events"
	"github.com/XTakerDAO/token-factory-sub001/internal/ledger"
	"github.com/XTakerDAO/token-factory-sub001/internal/token"
)

// onToken runs fn against a writable copy of the instance at asset and
// commits it together with the events fn emits.
func (f *Facade) onToken(ctx context.Context, op string, caller, asset common.Address, fn func(tx *ledger.Tx, t *token.Token) error) error {
	_, err := f.commit(ctx, op, caller, func(tx *ledger.Tx) error {
		t, ok := tx.Token(asset)
		if !ok {
			return apperrors.ErrAssetNotFound
		}
		return fn(tx, t)
	})
	if err != nil {
		return err
	}
	log.Info("token operation", "op", op, "asset", asset.Hex(), "caller", caller.Hex())
	return nil
}

func emitTransfer(tx *ledger.Tx, asset, from, to common.Address, amount *uint256.Int) error {
	_, err := tx.Emit(events.Transfer, asset, events.TransferPayload{
		From:  from,
		To:    to,
		Value: amountOrZero(amount).Dec(),
	})
	return err
}

func (f *Facade) Transfer(ctx context.Context, caller, asset, to common.Address, amount *uint256.Int) error {
	return f.onToken(ctx, "transfer", caller, asset, func(tx *ledger.Tx, t *token.Token) error {
		if err := t.Transfer(caller, to, amount); err != nil {
			return err
		}
		return emitTransfer(tx, asset, caller, to, amount)
	})
}

func (f *Facade) Approve(ctx context.Context, caller, asset, spender common.Address, amount *uint256.Int) error {
	return f.onToken(ctx, "approve", caller, asset, func(tx *ledger.Tx, t *token.Token) error {
		if err := t.Approve(caller, spender, amount); err != nil {
			return err
		}
		_, err := tx.Emit(events.Approval, asset, events.ApprovalPayload{
			Owner:   caller,
			Spender: spender,
			Value:   amountOrZero(amount).Dec(),
		})
		return err
	})
}

func (f *Facade) TransferFrom(ctx context.Context, caller, asset, from, to common.Address, amount *uint256.Int) error {
	return f.onToken(ctx, "transferFrom", caller, asset, func(tx *ledger.Tx, t *token.Token) error {
		if err := t.TransferFrom(caller, from, to, amount); err != nil {
			return err
		}
		return emitTransfer(tx, asset, from, to, amount)
	})
}

func (f *Facade) Mint(ctx context.Context, caller, asset, to common.Address, amount *uint256.Int) error {
	return f.onToken(ctx, "mint", caller, asset, func(tx *ledger.Tx, t *token.Token) error {
		if err := t.Mint(caller, to, amount); err != nil {
			return err
		}
		return emitTransfer(tx, asset, common.Address{}, to, amount)
	})
}

func (f *Facade) Burn(ctx context.Context, caller, asset common.Address, amount *uint256.Int) error {
	return f.onToken(ctx, "burn", caller, asset, func(tx *ledger.Tx, t *token.Token) error {
		if err := t.Burn(caller, amount); err != nil {
			return err
		}
		return emitTransfer(tx, asset, caller, common.Address{}, amount)
	})
}

func (f *Facade) BurnFrom(ctx context.Context, caller, asset, from common.Address, amount *uint256.Int) error {
	return f.onToken(ctx, "burnFrom", caller, asset, func(tx *ledger.Tx, t *token.Token) error {
		if err := t.BurnFrom(caller, from, amount); err != nil {
			return err
		}
		return emitTransfer(tx, asset, from, common.Address{}, amount)
	})
}

func (f *Facade) Pause(ctx context.Context, caller, asset common.Address) error {
	return f.onToken(ctx, "pause", caller, asset, func(tx *ledger.Tx, t *token.Token) error {
		if err := t.Pause(caller); err != nil {
			return err
		}
		_, err := tx.Emit(events.Paused, asset, events.PausePayload{Account: caller})
		return err
	})
}

func (f *Facade) Unpause(ctx context.Context, caller, asset common.Address) error {
	return f.onToken(ctx, "unpause", caller, asset, func(tx *ledger.Tx, t *token.Token) error {
		if err := t.Unpause(caller); err != nil {
			return err
		}
		_, err := tx.Emit(events.Unpaused, asset, events.PausePayload{Account: caller})
		return err
	})
}

// TransferTokenOwnership hands the instance's owner role to next.
func (f *Facade) TransferTokenOwnership(ctx context.Context, caller, asset, next common.Address) error {
	return f.onToken(ctx, "transferTokenOwnership", caller, asset, func(tx *ledger.Tx, t *token.Token) error {
		if err := t.TransferOwnership(caller, next); err != nil {
			return err
		}
		_, err := tx.Emit(events.TokenOwnershipTransferred, asset, events.OwnershipTransferredPayload{
			PreviousOwner: caller,
			NewOwner:      next,
		})
		return err
	})
}
