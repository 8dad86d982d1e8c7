// Package fees holds the service fee schedule and deployment cost quotes.
package fees

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/XTakerDAO/token-factory-sub001/internal/apperrors"
)

// Schedule is the service fee charged per deployment and who receives it.
type Schedule struct {
	Amount    *uint256.Int
	Recipient common.Address
}

func NewSchedule(amount *uint256.Int, recipient common.Address) Schedule {
	return Schedule{Amount: clone(amount), Recipient: recipient}
}

func (s Schedule) Fee() *uint256.Int { return clone(s.Amount) }

// Charge splits payment into the fee kept and the excess refunded to the payer.
func (s Schedule) Charge(payment *uint256.Int) (fee, refund *uint256.Int, err error) {
	fee = s.Fee()
	if payment == nil {
		payment = new(uint256.Int)
	}
	if payment.Lt(fee) {
		return nil, nil, apperrors.Newf(apperrors.CodeInsufficientServiceFee,
			"payment %s is below the service fee %s", payment.Dec(), fee.Dec())
	}
	return fee, new(uint256.Int).Sub(payment, fee), nil
}

func (s Schedule) WithAmount(amount *uint256.Int) Schedule {
	return Schedule{Amount: clone(amount), Recipient: s.Recipient}
}

func (s Schedule) WithRecipient(recipient common.Address) (Schedule, error) {
	if recipient == (common.Address{}) {
		return s, apperrors.New(apperrors.CodeZeroAddress, "fee recipient must not be the zero address")
	}
	return Schedule{Amount: s.Fee(), Recipient: recipient}, nil
}

func clone(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(v)
}
