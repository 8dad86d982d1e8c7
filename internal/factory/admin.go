package factory

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/XTakerDAO/token-factory-sub001/internal/apperrors"
	"github.com/XTakerDAO/token-factory-sub001/internal/events"
	"github.com/XTakerDAO/token-factory-sub001/internal/ledger"
)

// Owner-gated operations check authorization before any argument, so a
// rejected caller learns nothing about the state behind the gate.

// AddTemplate binds id to impl, replacing any previous binding.
func (f *Facade) AddTemplate(ctx context.Context, caller common.Address, id common.Hash, impl common.Address) error {
	_, err := f.commit(ctx, "addTemplate", caller, func(tx *ledger.Tx) error {
		if err := f.authorize(tx, caller); err != nil {
			return err
		}
		if err := tx.PutTemplate(id, impl); err != nil {
			return err
		}
		_, err := tx.Emit(events.TemplateUpdated, f.address, events.TemplateUpdatedPayload{
			ID:             id,
			Implementation: impl,
		})
		return err
	})
	if err != nil {
		return err
	}
	log.Info("template updated", "id", id.Hex(), "implementation", impl.Hex())
	return nil
}

// RemoveTemplate unbinds id. Assets already deployed from it are untouched.
func (f *Facade) RemoveTemplate(ctx context.Context, caller common.Address, id common.Hash) error {
	_, err := f.commit(ctx, "removeTemplate", caller, func(tx *ledger.Tx) error {
		if err := f.authorize(tx, caller); err != nil {
			return err
		}
		if err := tx.RemoveTemplate(id); err != nil {
			return err
		}
		_, err := tx.Emit(events.TemplateUpdated, f.address, events.TemplateUpdatedPayload{ID: id})
		return err
	})
	if err != nil {
		return err
	}
	log.Info("template removed", "id", id.Hex())
	return nil
}

func (f *Facade) SetServiceFee(ctx context.Context, caller common.Address, amount *uint256.Int) error {
	_, err := f.commit(ctx, "setServiceFee", caller, func(tx *ledger.Tx) error {
		if err := f.authorize(tx, caller); err != nil {
			return err
		}
		if amount == nil {
			return apperrors.New(apperrors.CodeInvalidInput, "service fee amount is required")
		}
		next := tx.View().Fees().WithAmount(amount)
		tx.SetFees(next)
		_, err := tx.Emit(events.ServiceFeeUpdated, f.address, events.ServiceFeeUpdatedPayload{
			Amount:    next.Fee().Dec(),
			Recipient: next.Recipient,
		})
		return err
	})
	if err != nil {
		return err
	}
	log.Info("service fee updated", "amount", amount.Dec())
	return nil
}

func (f *Facade) SetFeeRecipient(ctx context.Context, caller, recipient common.Address) error {
	_, err := f.commit(ctx, "setFeeRecipient", caller, func(tx *ledger.Tx) error {
		if err := f.authorize(tx, caller); err != nil {
			return err
		}
		next, err := tx.View().Fees().WithRecipient(recipient)
		if err != nil {
			return err
		}
		tx.SetFees(next)
		_, err = tx.Emit(events.FeeRecipientUpdated, f.address, events.FeeRecipientUpdatedPayload{
			Recipient: recipient,
		})
		return err
	})
	if err != nil {
		return err
	}
	log.Info("fee recipient updated", "recipient", recipient.Hex())
	return nil
}

func (f *Facade) TransferOwnership(ctx context.Context, caller, next common.Address) error {
	_, err := f.commit(ctx, "transferOwnership", caller, func(tx *ledger.Tx) error {
		owner, err := tx.View().Owner().Transfer(caller, next)
		if err != nil {
			return err
		}
		tx.SetOwner(owner)
		_, err = tx.Emit(events.OwnershipTransferred, f.address, events.OwnershipTransferredPayload{
			PreviousOwner: caller,
			NewOwner:      next,
		})
		return err
	})
	if err != nil {
		return err
	}
	log.Info("ownership transferred", "from", caller.Hex(), "to", next.Hex())
	return nil
}

// RenounceOwnership leaves the factory without an owner. Every owner-gated
// operation fails afterwards.
func (f *Facade) RenounceOwnership(ctx context.Context, caller common.Address) error {
	_, err := f.commit(ctx, "renounceOwnership", caller, func(tx *ledger.Tx) error {
		owner, err := tx.View().Owner().Renounce(caller)
		if err != nil {
			return err
		}
		tx.SetOwner(owner)
		_, err = tx.Emit(events.OwnershipTransferred, f.address, events.OwnershipTransferredPayload{
			PreviousOwner: caller,
		})
		return err
	})
	if err != nil {
		return err
	}
	log.Info("ownership renounced", "by", caller.Hex())
	return nil
}

// WithdrawPayout releases the fees accrued to caller.
func (f *Facade) WithdrawPayout(ctx context.Context, caller common.Address) (*uint256.Int, error) {
	var amount *uint256.Int
	_, err := f.commit(ctx, "withdrawPayout", caller, func(tx *ledger.Tx) error {
		if tx.View().Payout(caller).IsZero() {
			return apperrors.New(apperrors.CodeInvalidInput, "nothing to withdraw")
		}
		amount = tx.DrainPayout(caller)
		_, err := tx.Emit(events.FeeWithdrawn, f.address, events.FeeWithdrawnPayload{
			Recipient: caller,
			Amount:    amount.Dec(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Info("payout withdrawn", "recipient", caller.Hex(), "amount", amount.Dec())
	return amount, nil
}
