package ledger

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/XTakerDAO/token-factory-sub001/internal/access"
	"github.com/XTakerDAO/token-factory-sub001/internal/apperrors"
	"github.com/XTakerDAO/token-factory-sub001/internal/events"
	"github.com/XTakerDAO/token-factory-sub001/internal/fees"
	"github.com/XTakerDAO/token-factory-sub001/internal/registry"
	"github.com/XTakerDAO/token-factory-sub001/internal/storage"
)

// Genesis seeds an empty store the first time a ledger opens it.
type Genesis struct {
	Emitter   common.Address
	Version   uint64
	Owner     common.Address
	Fees      fees.Schedule
	Templates []registry.Template
}

// Ledger serializes mutations and publishes each committed State atomically.
// Reads go through View and never wait on a mutation in progress.
type Ledger struct {
	mu      sync.Mutex
	current atomic.Pointer[State]
	store   storage.Store
	now     func() time.Time
}

type Option func(*Ledger)

// WithClock overrides the time source stamped on events and records.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// Open loads committed state from store, or commits genesis if the store is empty.
func Open(ctx context.Context, store storage.Store, genesis Genesis, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}

	snap, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger: load: %w", err)
	}
	if snap != nil {
		state, err := fromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		l.current.Store(state)
		log.Info("ledger restored",
			"version", state.Version(),
			"assets", state.Stats().TotalCreated(),
			"last_seq", state.LastSeq(),
		)
		return l, nil
	}

	if genesis.Owner == (common.Address{}) {
		return nil, fmt.Errorf("ledger: genesis owner is required")
	}
	l.current.Store(emptyState())
	if _, err := l.Apply(ctx, func(tx *Tx) error {
		return applyGenesis(tx, genesis)
	}); err != nil {
		return nil, fmt.Errorf("ledger: genesis: %w", err)
	}
	log.Info("ledger initialized", "owner", genesis.Owner.Hex(), "templates", len(genesis.Templates))
	return l, nil
}

func applyGenesis(tx *Tx, g Genesis) error {
	version := g.Version
	if version == 0 {
		version = 1
	}
	tx.SetVersion(version)
	tx.SetOwner(access.NewOwner(g.Owner))
	tx.SetFees(g.Fees)
	if _, err := tx.Emit(events.OwnershipTransferred, g.Emitter, events.OwnershipTransferredPayload{
		NewOwner: g.Owner,
	}); err != nil {
		return err
	}
	for _, t := range g.Templates {
		if err := tx.PutTemplate(t.ID, t.Implementation); err != nil {
			return err
		}
		if _, err := tx.Emit(events.TemplateUpdated, g.Emitter, events.TemplateUpdatedPayload{
			ID:             t.ID,
			Implementation: t.Implementation,
		}); err != nil {
			return err
		}
	}
	return nil
}

// View returns the latest committed state.
func (l *Ledger) View() *State {
	return l.current.Load()
}

// Apply runs fn against a fresh transaction and commits what it staged.
// If fn or the store fails, nothing is published and the error is returned.
func (l *Ledger) Apply(ctx context.Context, fn func(tx *Tx) error) ([]events.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := newTx(uuid.NewString(), l.now(), l.current.Load())
	if err := fn(tx); err != nil {
		return nil, err
	}

	if err := l.store.Commit(ctx, tx.batch()); err != nil {
		if apperrors.CodeOf(err) != apperrors.CodeInternal {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "commit "+tx.id, err)
	}
	l.current.Store(tx.next)
	return tx.Events(), nil
}

// Events pages the committed journal.
func (l *Ledger) Events(ctx context.Context, afterSeq uint64, limit int) ([]events.Event, error) {
	evs, err := l.store.Events(ctx, afterSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger: events: %w", err)
	}
	return evs, nil
}
