package factory

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/XTakerDAO/token-factory-sub001/internal/addressing"
	"github.com/XTakerDAO/token-factory-sub001/internal/apperrors"
	"github.com/XTakerDAO/token-factory-sub001/internal/blueprint"
	"github.com/XTakerDAO/token-factory-sub001/internal/fees"
	"github.com/XTakerDAO/token-factory-sub001/internal/registry"
	"github.com/XTakerDAO/token-factory-sub001/internal/token"
)

// Queries read the latest committed state and never wait on a mutation.

func (f *Facade) Owner() common.Address {
	return f.ledger.View().Owner().Address()
}

// GetTemplate returns the implementation bound to id, or the zero address.
func (f *Facade) GetTemplate(id common.Hash) common.Address {
	impl, _ := f.ledger.View().Templates().Get(id)
	return impl
}

func (f *Facade) ListTemplates() []common.Hash {
	return f.ledger.View().Templates().List()
}

func (f *Facade) Blueprints() []blueprint.Blueprint {
	return f.catalogue.List()
}

func (f *Facade) GetServiceFee() *uint256.Int {
	return f.ledger.View().Fees().Fee()
}

func (f *Facade) GetFeeRecipient() common.Address {
	return f.ledger.View().Fees().Recipient
}

func (f *Facade) GetPayout(recipient common.Address) *uint256.Int {
	return f.ledger.View().Payout(recipient)
}

func (f *Facade) GetAssetsByCreator(creator common.Address) []common.Address {
	return f.ledger.View().AssetsByCreator(creator)
}

func (f *Facade) IsSymbolDeployed(symbol string) bool {
	view := f.ledger.View()
	return view.SymbolDeployed(symbolKey(view, symbol))
}

// QuoteDeploymentCost is advisory. The fee actually charged is the one in
// force when the deployment commits.
func (f *Facade) QuoteDeploymentCost(cfg token.Config) fees.Quote {
	return f.estimator.Quote(f.ledger.View().Fees(), cfg)
}

// ValidateConfiguration runs every rule, including symbol uniqueness
// against committed deployments.
func (f *Facade) ValidateConfiguration(cfg token.Config) token.Validation {
	view := f.ledger.View()
	return token.Validate(cfg, func(sym string) bool {
		return view.SymbolDeployed(symbolKey(view, sym))
	})
}

// PredictAssetAddress is where CreateAsset by creator would place cfg if
// nothing else commits first.
func (f *Facade) PredictAssetAddress(cfg token.Config, creator common.Address) (addressing.Prediction, error) {
	return f.PredictAssetAddressWithTemplate(cfg, creator, registry.SelectTemplate(cfg))
}

func (f *Facade) PredictAssetAddressWithTemplate(cfg token.Config, creator common.Address, templateID common.Hash) (addressing.Prediction, error) {
	view := f.ledger.View()
	if v := token.ValidateShape(cfg); !v.Valid {
		return addressing.Prediction{}, apperrors.New(apperrors.CodeInvalidConfiguration, v.Reason)
	}
	impl, ok := view.Templates().Get(templateID)
	if !ok {
		return addressing.Prediction{}, apperrors.ErrTemplateNotFound
	}
	pred, err := f.oracle.Predict(creator, cfg, impl, view.Stats().CreatedBy(creator))
	if err != nil {
		return addressing.Prediction{}, apperrors.Wrap(apperrors.CodeInternal, "predict address", err)
	}
	return pred, nil
}

func (f *Facade) GetNetworkId() uint64 { return f.chainID }

// IsNetworkSupported accepts the factory's own chain and any chain in the
// configured network set.
func (f *Facade) IsNetworkSupported(chainID uint64) bool {
	if chainID == f.chainID {
		return true
	}
	return f.networks != nil && f.networks.IsSupported(chainID)
}

func (f *Facade) GetTotalCreated() uint64 {
	return f.ledger.View().Stats().TotalCreated()
}

func (f *Facade) GetCreatedCountByUser(creator common.Address) uint64 {
	return f.ledger.View().Stats().CreatedBy(creator)
}

func (f *Facade) GetTotalFeesCollected() *uint256.Int {
	return f.ledger.View().Stats().TotalFeesCollected()
}

// AssetInfo joins a deployment record with the live instance state.
type AssetInfo struct {
	Address     common.Address `json:"address"`
	Creator     common.Address `json:"creator"`
	Name        string         `json:"name"`
	Symbol      string         `json:"symbol"`
	Decimals    uint8          `json:"decimals"`
	TotalSupply string         `json:"totalSupply"`
	MaxSupply   string         `json:"maxSupply"`
	Owner       common.Address `json:"owner"`
	Features    token.Features `json:"features"`
	Paused      bool           `json:"paused"`
	ConfigHash  common.Hash    `json:"configHash"`
	TemplateID  common.Hash    `json:"templateId"`
	Index       uint64         `json:"index"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func (f *Facade) Asset(addr common.Address) (AssetInfo, error) {
	view := f.ledger.View()
	rec, ok := view.Record(addr)
	if !ok {
		return AssetInfo{}, apperrors.ErrAssetNotFound
	}
	tok, ok := view.Token(addr)
	if !ok {
		return AssetInfo{}, apperrors.ErrAssetNotFound
	}
	return AssetInfo{
		Address:     addr,
		Creator:     rec.Creator,
		Name:        tok.Name(),
		Symbol:      tok.Symbol(),
		Decimals:    tok.Decimals(),
		TotalSupply: tok.TotalSupply().Dec(),
		MaxSupply:   tok.MaxSupply().Dec(),
		Owner:       tok.Owner(),
		Features:    tok.Features(),
		Paused:      tok.Paused(),
		ConfigHash:  rec.ConfigHash,
		TemplateID:  rec.TemplateID,
		Index:       rec.Index,
		CreatedAt:   rec.CreatedAt,
	}, nil
}

func (f *Facade) BalanceOf(asset, holder common.Address) (*uint256.Int, error) {
	tok, ok := f.ledger.View().Token(asset)
	if !ok {
		return nil, apperrors.ErrAssetNotFound
	}
	return tok.BalanceOf(holder), nil
}

func (f *Facade) Allowance(asset, holder, spender common.Address) (*uint256.Int, error) {
	tok, ok := f.ledger.View().Token(asset)
	if !ok {
		return nil, apperrors.ErrAssetNotFound
	}
	return tok.Allowance(holder, spender), nil
}
