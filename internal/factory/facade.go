// Package factory is the public operation surface of the token factory:
// deployments, owner administration, upgrades and read-only queries, all
// committed through one ledger.
package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/holiman/uint256"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/XTakerDAO/token-factory-sub001/internal/addressing"
	"github.com/XTakerDAO/token-factory-sub001/internal/apperrors"
	"github.com/XTakerDAO/token-factory-sub001/internal/blueprint"
	"github.com/XTakerDAO/token-factory-sub001/internal/events"
	"github.com/XTakerDAO/token-factory-sub001/internal/fees"
	"github.com/XTakerDAO/token-factory-sub001/internal/ledger"
	"github.com/XTakerDAO/token-factory-sub001/internal/registry"
	"github.com/XTakerDAO/token-factory-sub001/internal/storage"
)

// Config describes one factory instance.
type Config struct {
	Address   common.Address
	ChainID   uint64
	Owner     common.Address
	Fees      fees.Schedule
	Estimator fees.Estimator
}

// NetworkSet answers which chains this deployment serves.
type NetworkSet interface {
	IsSupported(chainID uint64) bool
}

type Facade struct {
	address    common.Address
	chainID    uint64
	ledger     *ledger.Ledger
	catalogue  *blueprint.Catalogue
	oracle     addressing.Oracle
	estimator  fees.Estimator
	networks   NetworkSet
	bus        *events.Bus
	migrations map[uint64]Migration
	clock      func() time.Time
}

type Option func(*Facade)

func WithNetworks(n NetworkSet) Option {
	return func(f *Facade) { f.networks = n }
}

func WithCatalogue(c *blueprint.Catalogue) Option {
	return func(f *Facade) { f.catalogue = c }
}

// WithMigration registers the procedure that upgrades to version.
func WithMigration(version uint64, m Migration) Option {
	return func(f *Facade) { f.migrations[version] = m }
}

func WithClock(now func() time.Time) Option {
	return func(f *Facade) { f.clock = now }
}

// Open restores the factory from store. An empty store is seeded with the
// owner, fee schedule and the two default templates pointing at the
// standard blueprint.
func Open(ctx context.Context, store storage.Store, cfg Config, opts ...Option) (*Facade, error) {
	if cfg.Address == (common.Address{}) {
		return nil, fmt.Errorf("factory: address is required")
	}
	f := &Facade{
		address:    cfg.Address,
		chainID:    cfg.ChainID,
		oracle:     addressing.NewOracle(cfg.Address),
		estimator:  cfg.Estimator,
		bus:        events.NewBus(),
		migrations: defaultMigrations(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.catalogue == nil {
		f.catalogue = blueprint.NewStandardCatalogue(cfg.Address)
	}

	impl := blueprint.StandardImplementation(cfg.Address)
	genesis := ledger.Genesis{
		Emitter: cfg.Address,
		Version: 1,
		Owner:   cfg.Owner,
		Fees:    cfg.Fees,
		Templates: []registry.Template{
			{ID: registry.BasicTemplateID, Implementation: impl},
			{ID: registry.FeaturedTemplateID, Implementation: impl},
		},
	}
	var ledgerOpts []ledger.Option
	if f.clock != nil {
		ledgerOpts = append(ledgerOpts, ledger.WithClock(f.clock))
	}
	l, err := ledger.Open(ctx, store, genesis, ledgerOpts...)
	if err != nil {
		return nil, err
	}
	f.ledger = l
	return f, nil
}

// Close stops event delivery to subscribers.
func (f *Facade) Close() {
	f.bus.Close()
}

func (f *Facade) Address() common.Address { return f.address }

// Subscribe delivers every event committed after the call.
func (f *Facade) Subscribe(ch chan<- events.Event) event.Subscription {
	return f.bus.Subscribe(ch)
}

// Events pages the committed event journal.
func (f *Facade) Events(ctx context.Context, afterSeq uint64, limit int) ([]events.Event, error) {
	return f.ledger.Events(ctx, afterSeq, limit)
}

// commit runs fn as one atomic operation and publishes its events.
func (f *Facade) commit(ctx context.Context, op string, caller common.Address, fn func(tx *ledger.Tx) error) ([]events.Event, error) {
	evs, err := f.ledger.Apply(ctx, fn)
	if err != nil {
		log.Warn("operation rejected",
			"op", op,
			"caller", caller.Hex(),
			"code", apperrors.CodeOf(err),
			"error", err,
		)
		return nil, err
	}
	f.bus.Publish(evs)
	return evs, nil
}

func (f *Facade) authorize(tx *ledger.Tx, caller common.Address) error {
	return tx.View().Owner().Authorize(caller)
}

func amountOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}
