package http

import (
	"fmt"
	"math"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/XTakerDAO/token-factory-sub001/internal/token"
)

type response struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// assetConfigReq is the wire form of token.Config; amounts are decimal strings.
type assetConfigReq struct {
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	TotalSupply  string `json:"totalSupply"`
	Decimals     int    `json:"decimals"`
	InitialOwner string `json:"initialOwner"`
	Mintable     bool   `json:"mintable"`
	Burnable     bool   `json:"burnable"`
	Pausable     bool   `json:"pausable"`
	Capped       bool   `json:"capped"`
	MaxSupply    string `json:"maxSupply,omitempty"`
}

type createAssetReq struct {
	Config   assetConfigReq `json:"config"`
	Template string         `json:"template,omitempty"` // id or label
	Value    string         `json:"value"`
}

type predictReq struct {
	Config   assetConfigReq `json:"config"`
	Creator  string         `json:"creator"`
	Template string         `json:"template,omitempty"`
}

type configReq struct {
	Config assetConfigReq `json:"config"`
}

type receiptOut struct {
	Address    common.Address `json:"address"`
	Creator    common.Address `json:"creator"`
	FeePaid    string         `json:"feePaid"`
	Refund     string         `json:"refund"`
	ConfigHash common.Hash    `json:"configHash"`
	TemplateID common.Hash    `json:"templateId"`
	Salt       common.Hash    `json:"salt"`
	Nonce      uint64         `json:"nonce"`
}

type quoteOut struct {
	GasEstimate   uint64 `json:"gasEstimate"`
	GasPrice      string `json:"gasPrice"`
	EstimatedCost string `json:"estimatedCost"`
	ServiceFee    string `json:"serviceFee"`
	Total         string `json:"total"`
}

type validationOut struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
	Code   string `json:"code,omitempty"`
}

type factoryOut struct {
	Address            common.Address `json:"address"`
	Owner              common.Address `json:"owner"`
	Version            uint64         `json:"version"`
	NetworkID          uint64         `json:"networkId"`
	ServiceFee         string         `json:"serviceFee"`
	FeeRecipient       common.Address `json:"feeRecipient"`
	TotalCreated       uint64         `json:"totalCreated"`
	TotalFeesCollected string         `json:"totalFeesCollected"`
}

type templateOut struct {
	ID             common.Hash    `json:"id"`
	Implementation common.Address `json:"implementation"`
}

type templateReq struct {
	Implementation string `json:"implementation"`
}

type amountReq struct {
	Amount string `json:"amount"`
}

type addressReq struct {
	Address string `json:"address"`
}

type versionReq struct {
	Version uint64 `json:"version"`
}

type transferReq struct {
	From   string `json:"from,omitempty"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type approveReq struct {
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

type creatorAssetsOut struct {
	Creator common.Address   `json:"creator"`
	Count   uint64           `json:"count"`
	Assets  []common.Address `json:"assets"`
}

type networkOut struct {
	Name       string `json:"name"`
	ChainID    uint64 `json:"chainId"`
	ChainIDHex string `json:"chainIdHex"`
	Explorer   string `json:"explorer,omitempty"`
	Current    bool   `json:"current"`
}

type healthOut struct {
	Status  string    `json:"status"`
	Version uint64    `json:"version"`
	Time    time.Time `json:"time"`
}

func (r assetConfigReq) toConfig() (token.Config, error) {
	supply, err := parseAmount("totalSupply", r.TotalSupply)
	if err != nil {
		return token.Config{}, err
	}
	var maxSupply *uint256.Int
	if r.MaxSupply != "" {
		if maxSupply, err = parseAmount("maxSupply", r.MaxSupply); err != nil {
			return token.Config{}, err
		}
	}
	if r.Decimals < 0 {
		return token.Config{}, fmt.Errorf("invalid decimals: %d", r.Decimals)
	}
	var owner common.Address
	if r.InitialOwner != "" {
		if owner, err = parseAddr(r.InitialOwner); err != nil {
			return token.Config{}, err
		}
	}
	return token.Config{
		Name:         r.Name,
		Symbol:       r.Symbol,
		TotalSupply:  supply,
		Decimals:     decimals(r.Decimals),
		InitialOwner: owner,
		Mintable:     r.Mintable,
		Burnable:     r.Burnable,
		Pausable:     r.Pausable,
		Capped:       r.Capped,
		MaxSupply:    maxSupply,
	}, nil
}

// decimals saturates at the uint8 maximum so oversized values reach the
// validator and fail its decimals rule.
func decimals(d int) uint8 {
	if d > math.MaxUint8 {
		return math.MaxUint8
	}
	return uint8(d)
}
