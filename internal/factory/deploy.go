package factory

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/XTakerDAO/token-factory-sub001/internal/apperrors"
	"github.com/XTakerDAO/token-factory-sub001/internal/events"
	"github.com/XTakerDAO/token-factory-sub001/internal/ledger"
	"github.com/XTakerDAO/token-factory-sub001/internal/registry"
	"github.com/XTakerDAO/token-factory-sub001/internal/storage"
	"github.com/XTakerDAO/token-factory-sub001/internal/token"
)

// Receipt describes a committed deployment. Refund is the part of the
// payment above the service fee, returned to the caller.
type Receipt struct {
	Address    common.Address `json:"address"`
	Creator    common.Address `json:"creator"`
	FeePaid    *uint256.Int   `json:"-"`
	Refund     *uint256.Int   `json:"-"`
	ConfigHash common.Hash    `json:"configHash"`
	TemplateID common.Hash    `json:"templateId"`
	Salt       common.Hash    `json:"salt"`
	Nonce      uint64         `json:"nonce"`
}

// CreateAsset deploys cfg from the template its feature flags select.
func (f *Facade) CreateAsset(ctx context.Context, caller common.Address, cfg token.Config, payment *uint256.Int) (Receipt, error) {
	return f.CreateAssetWithTemplate(ctx, caller, cfg, registry.SelectTemplate(cfg), payment)
}

// CreateAssetWithTemplate deploys cfg from an explicitly named template.
// Every check runs against the state being committed; on any failure
// nothing is recorded, counted or charged.
func (f *Facade) CreateAssetWithTemplate(ctx context.Context, caller common.Address, cfg token.Config, templateID common.Hash, payment *uint256.Int) (Receipt, error) {
	var receipt Receipt
	_, err := f.commit(ctx, "createAsset", caller, func(tx *ledger.Tx) error {
		r, err := f.deploy(tx, caller, cfg.Clone(), templateID, payment)
		receipt = r
		return err
	})
	if err != nil {
		return Receipt{}, err
	}
	log.Info("asset created",
		"asset", receipt.Address.Hex(),
		"creator", caller.Hex(),
		"symbol", cfg.Symbol,
		"fee", receipt.FeePaid.Dec(),
	)
	return receipt, nil
}

func (f *Facade) deploy(tx *ledger.Tx, caller common.Address, cfg token.Config, templateID common.Hash, payment *uint256.Int) (Receipt, error) {
	view := tx.View()

	if v := token.ValidateShape(cfg); !v.Valid {
		return Receipt{}, apperrors.New(apperrors.CodeInvalidConfiguration, v.Reason)
	}

	impl, ok := view.Templates().Get(templateID)
	if !ok {
		return Receipt{}, apperrors.ErrTemplateNotFound
	}
	bp, ok := f.catalogue.Lookup(impl)
	if !ok {
		return Receipt{}, apperrors.ErrTemplateNotFound
	}

	fee, refund, err := view.Fees().Charge(payment)
	if err != nil {
		return Receipt{}, err
	}

	if view.SymbolDeployed(symbolKey(view, cfg.Symbol)) {
		return Receipt{}, apperrors.Newf(apperrors.CodeSymbolAlreadyExists, "symbol %s is already deployed", cfg.Symbol)
	}

	nonce := view.Stats().CreatedBy(caller)
	pred, err := f.oracle.Predict(caller, cfg, impl, nonce)
	if err != nil {
		return Receipt{}, apperrors.Wrap(apperrors.CodeInternal, "predict address", err)
	}
	if view.Occupied(pred.Address) {
		return Receipt{}, apperrors.Newf(apperrors.CodeAddressInUse, "address %s is already in use", pred.Address.Hex())
	}

	inst := bp.Instantiate(pred.Address)
	if err := tx.PutToken(inst); err != nil {
		return Receipt{}, err
	}
	calldata, err := token.EncodeInit(cfg)
	if err != nil {
		return Receipt{}, apperrors.Wrap(apperrors.CodeInternal, "encode initialize", err)
	}
	if err := inst.InitializeCalldata(calldata); err != nil {
		return Receipt{}, err
	}

	recipient := view.Fees().Recipient
	if err := tx.CreditPayout(recipient, fee); err != nil {
		return Receipt{}, err
	}
	if err := tx.AddRecord(storage.Record{
		Address:        pred.Address,
		Creator:        caller,
		Symbol:         cfg.Symbol,
		ConfigHash:     pred.ConfigHash,
		TemplateID:     templateID,
		Implementation: impl,
		Salt:           pred.Salt,
		Nonce:          nonce,
		FeePaid:        fee,
		Index:          view.Stats().TotalCreated() + 1,
		CreatedAt:      tx.Now(),
	}); err != nil {
		return Receipt{}, err
	}
	tx.CountDeployment(caller, fee)

	if _, err := tx.Emit(events.Transfer, pred.Address, events.TransferPayload{
		To:    cfg.InitialOwner,
		Value: amountOrZero(cfg.TotalSupply).Dec(),
	}); err != nil {
		return Receipt{}, err
	}
	if _, err := tx.Emit(events.AssetCreated, f.address, events.AssetCreatedPayload{
		Asset:       pred.Address,
		Creator:     caller,
		Name:        cfg.Name,
		Symbol:      cfg.Symbol,
		TotalSupply: amountOrZero(cfg.TotalSupply).Dec(),
		Decimals:    cfg.Decimals,
		ConfigHash:  pred.ConfigHash,
		TemplateID:  templateID,
		FeePaid:     fee.Dec(),
	}); err != nil {
		return Receipt{}, err
	}

	return Receipt{
		Address:    pred.Address,
		Creator:    caller,
		FeePaid:    fee,
		Refund:     refund,
		ConfigHash: pred.ConfigHash,
		TemplateID: templateID,
		Salt:       pred.Salt,
		Nonce:      nonce,
	}, nil
}
