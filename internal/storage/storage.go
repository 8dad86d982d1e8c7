// Package storage defines how committed factory state is persisted.
// Implementations live in the memory and sqlite subpackages.
package storage

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/XTakerDAO/token-factory-sub001/internal/events"
	"github.com/XTakerDAO/token-factory-sub001/internal/fees"
	"github.com/XTakerDAO/token-factory-sub001/internal/registry"
	"github.com/XTakerDAO/token-factory-sub001/internal/token"
)

// Record is written once per successful deployment and never changes. Index
// is the 1-based position of the deployment in the factory's history.
type Record struct {
	Address        common.Address `json:"address"`
	Creator        common.Address `json:"creator"`
	Symbol         string         `json:"symbol"`
	ConfigHash     common.Hash    `json:"configHash"`
	TemplateID     common.Hash    `json:"templateId"`
	Implementation common.Address `json:"implementation"`
	Salt           common.Hash    `json:"salt"`
	Nonce          uint64         `json:"nonce"`
	FeePaid        *uint256.Int   `json:"-"`
	Index          uint64         `json:"index"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Header is the singleton factory state, rewritten by every commit.
type Header struct {
	Version      uint64
	Owner        common.Address
	Fee          fees.Schedule
	TotalCreated uint64
	TotalFees    *uint256.Int
	LastSeq      uint64
}

// Snapshot is the full committed state as loaded at startup.
type Snapshot struct {
	Header        Header
	Templates     []registry.Template
	Records       []Record
	CreatorCounts map[common.Address]uint64
	Payouts       map[common.Address]*uint256.Int
	Tokens        []token.Snapshot
}

// Batch is everything one operation changed. It is committed all or nothing.
type Batch struct {
	ID              string
	Header          Header
	TemplatePuts    []registry.Template
	TemplateDeletes []common.Hash
	Records         []Record
	CreatorCounts   map[common.Address]uint64
	Payouts         map[common.Address]*uint256.Int
	Tokens          []token.Snapshot
	Events          []events.Event
}

// Store persists batches atomically.
type Store interface {
	// Load returns nil, nil when nothing has been committed yet.
	Load(ctx context.Context) (*Snapshot, error)
	Commit(ctx context.Context, b *Batch) error
	// Events pages the journal by sequence number.
	Events(ctx context.Context, afterSeq uint64, limit int) ([]events.Event, error)
	Close() error
}

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)
