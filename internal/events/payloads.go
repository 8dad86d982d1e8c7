package events

import "github.com/ethereum/go-ethereum/common"

// Amounts are decimal strings so payloads survive JSON without precision loss.

type AssetCreatedPayload struct {
	Asset       common.Address `json:"asset"`
	Creator     common.Address `json:"creator"`
	Name        string         `json:"name"`
	Symbol      string         `json:"symbol"`
	TotalSupply string         `json:"totalSupply"`
	Decimals    uint8          `json:"decimals"`
	ConfigHash  common.Hash    `json:"configHash"`
	TemplateID  common.Hash    `json:"templateId"`
	FeePaid     string         `json:"feePaid"`
}

// TemplateUpdatedPayload carries a zero implementation when the template was removed.
type TemplateUpdatedPayload struct {
	ID             common.Hash    `json:"id"`
	Implementation common.Address `json:"implementation"`
}

type ServiceFeeUpdatedPayload struct {
	Amount    string         `json:"amount"`
	Recipient common.Address `json:"recipient"`
}

type FeeRecipientUpdatedPayload struct {
	Recipient common.Address `json:"recipient"`
}

type FeeWithdrawnPayload struct {
	Recipient common.Address `json:"recipient"`
	Amount    string         `json:"amount"`
}

type OwnershipTransferredPayload struct {
	PreviousOwner common.Address `json:"previousOwner"`
	NewOwner      common.Address `json:"newOwner"`
}

type UpgradedPayload struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

type TransferPayload struct {
	From  common.Address `json:"from"`
	To    common.Address `json:"to"`
	Value string         `json:"value"`
}

type ApprovalPayload struct {
	Owner   common.Address `json:"owner"`
	Spender common.Address `json:"spender"`
	Value   string         `json:"value"`
}

type PausePayload struct {
	Account common.Address `json:"account"`
}
