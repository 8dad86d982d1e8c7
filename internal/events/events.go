// Package events defines what the factory emits and the in-process feed
// subscribers read committed events from.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3"
)

type Name string

const (
	AssetCreated              Name = "AssetCreated"
	TemplateUpdated           Name = "TemplateUpdated"
	ServiceFeeUpdated         Name = "ServiceFeeUpdated"
	FeeRecipientUpdated       Name = "FeeRecipientUpdated"
	OwnershipTransferred      Name = "OwnershipTransferred"
	Upgraded                  Name = "Upgraded"
	Transfer                  Name = "Transfer"
	Approval                  Name = "Approval"
	Paused                    Name = "Paused"
	Unpaused                  Name = "Unpaused"
	FeeWithdrawn              Name = "FeeWithdrawn"
	TokenOwnershipTransferred Name = "TokenOwnershipTransferred"
)

var signatures = map[Name]*w3.Event{
	AssetCreated:              w3.MustNewEvent("AssetCreated(address indexed asset, address indexed creator, string name, string symbol, uint256 totalSupply, uint8 decimals, bytes32 configHash)"),
	TemplateUpdated:           w3.MustNewEvent("TemplateUpdated(bytes32 indexed id, address implementation)"),
	ServiceFeeUpdated:         w3.MustNewEvent("ServiceFeeUpdated(uint256 amount, address recipient)"),
	FeeRecipientUpdated:       w3.MustNewEvent("FeeRecipientUpdated(address indexed recipient)"),
	OwnershipTransferred:      w3.MustNewEvent("OwnershipTransferred(address indexed previousOwner, address indexed newOwner)"),
	Upgraded:                  w3.MustNewEvent("Upgraded(uint256 version)"),
	Transfer:                  w3.MustNewEvent("Transfer(address indexed from, address indexed to, uint256 value)"),
	Approval:                  w3.MustNewEvent("Approval(address indexed owner, address indexed spender, uint256 value)"),
	Paused:                    w3.MustNewEvent("Paused(address account)"),
	Unpaused:                  w3.MustNewEvent("Unpaused(address account)"),
	FeeWithdrawn:              w3.MustNewEvent("FeeWithdrawn(address indexed recipient, uint256 amount)"),
	TokenOwnershipTransferred: w3.MustNewEvent("OwnershipTransferred(address indexed previousOwner, address indexed newOwner)"),
}

// Topic is the keccak256 of the event's canonical signature.
func Topic(name Name) (common.Hash, bool) {
	ev, ok := signatures[name]
	if !ok {
		return common.Hash{}, false
	}
	return ev.Topic0, true
}

// Event is one journal entry. Seq is assigned at commit and strictly increases.
type Event struct {
	Seq     uint64          `json:"seq"`
	OpID    string          `json:"opId"`
	Name    Name            `json:"name"`
	Topic   common.Hash     `json:"topic"`
	Emitter common.Address  `json:"emitter"`
	Payload json.RawMessage `json:"payload"`
	Time    time.Time       `json:"time"`
}

// New builds an unsequenced event from one of the payload types below.
func New(name Name, emitter common.Address, payload any) (Event, error) {
	topic, ok := Topic(name)
	if !ok {
		return Event{}, fmt.Errorf("events: unknown event %q", name)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("events: marshal %s: %w", name, err)
	}
	return Event{Name: name, Topic: topic, Emitter: emitter, Payload: raw}, nil
}

// Decode unmarshals the payload into dst.
func (e Event) Decode(dst any) error {
	if err := json.Unmarshal(e.Payload, dst); err != nil {
		return fmt.Errorf("events: decode %s: %w", e.Name, err)
	}
	return nil
}
