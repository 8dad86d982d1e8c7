package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XTakerDAO/token-factory-sub001/internal/apperrors"
	"github.com/XTakerDAO/token-factory-sub001/internal/events"
	"github.com/XTakerDAO/token-factory-sub001/internal/fees"
	"github.com/XTakerDAO/token-factory-sub001/internal/registry"
	"github.com/XTakerDAO/token-factory-sub001/internal/storage"
	"github.com/XTakerDAO/token-factory-sub001/internal/storage/memory"
	"github.com/XTakerDAO/token-factory-sub001/internal/token"
)

var (
	factory  = common.HexToAddress("0xfa")
	owner    = common.HexToAddress("0xa1")
	treasury = common.HexToAddress("0xfe")
	impl     = common.HexToAddress("0xb1")
	creator  = common.HexToAddress("0xc0")
)

type failingStore struct {
	storage.Store
	fail bool
}

func (s *failingStore) Commit(ctx context.Context, b *storage.Batch) error {
	if s.fail {
		return errors.New("disk full")
	}
	return s.Store.Commit(ctx, b)
}

func testGenesis() Genesis {
	return Genesis{
		Emitter: factory,
		Owner:   owner,
		Fees:    fees.NewSchedule(uint256.NewInt(10), treasury),
		Templates: []registry.Template{
			{ID: registry.BasicTemplateID, Implementation: impl},
		},
	}
}

func openLedger(t *testing.T, store storage.Store) *Ledger {
	t.Helper()
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	l, err := Open(context.Background(), store, testGenesis(), WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)
	return l
}

func deploy(tx *Tx, symbol string, addr common.Address) error {
	tok := token.New(addr, impl)
	if err := tok.Initialize(token.Config{
		Name:         symbol,
		Symbol:       symbol,
		TotalSupply:  uint256.NewInt(100),
		InitialOwner: creator,
	}); err != nil {
		return err
	}
	if err := tx.PutToken(tok); err != nil {
		return err
	}
	if err := tx.AddRecord(storage.Record{Address: addr, Creator: creator, Symbol: symbol}); err != nil {
		return err
	}
	tx.CountDeployment(creator, uint256.NewInt(10))
	if err := tx.CreditPayout(treasury, uint256.NewInt(10)); err != nil {
		return err
	}
	_, err := tx.Emit(events.AssetCreated, factory, events.AssetCreatedPayload{Asset: addr, Symbol: symbol})
	return err
}

func TestGenesisIsCommittedOnce(t *testing.T) {
	store := memory.New()
	l := openLedger(t, store)

	v := l.View()
	assert.Equal(t, uint64(1), v.Version())
	require.NoError(t, v.Owner().Authorize(owner))
	assert.Equal(t, uint64(10), v.Fees().Fee().Uint64())
	got, ok := v.Templates().Get(registry.BasicTemplateID)
	require.True(t, ok)
	assert.Equal(t, impl, got)

	evs, err := l.Events(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, events.OwnershipTransferred, evs[0].Name)
	assert.Equal(t, events.TemplateUpdated, evs[1].Name)

	// reopening restores rather than re-seeding
	again := openLedger(t, store)
	assert.Equal(t, uint64(2), again.View().LastSeq())
	evs, err = again.Events(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, evs, 2)
}

func TestGenesisRequiresOwner(t *testing.T) {
	g := testGenesis()
	g.Owner = common.Address{}
	_, err := Open(context.Background(), memory.New(), g)
	require.Error(t, err)
}

func TestApplyCommitsAndRestores(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	l := openLedger(t, store)
	addr := common.HexToAddress("0x01")

	evs, err := l.Apply(ctx, func(tx *Tx) error { return deploy(tx, "AAA", addr) })
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, uint64(3), evs[0].Seq)
	assert.NotEmpty(t, evs[0].OpID)

	v := l.View()
	assert.True(t, v.SymbolDeployed("AAA"))
	assert.Equal(t, []common.Address{addr}, v.AssetsByCreator(creator))
	assert.Equal(t, uint64(1), v.Stats().TotalCreated())
	assert.Equal(t, uint64(10), v.Payout(treasury).Uint64())

	restored := openLedger(t, store).View()
	assert.True(t, restored.SymbolDeployed("AAA"))
	assert.Equal(t, uint64(1), restored.Stats().CreatedBy(creator))
	assert.Equal(t, uint64(10), restored.Stats().TotalFeesCollected().Uint64())
	tok, ok := restored.Token(addr)
	require.True(t, ok)
	assert.Equal(t, uint64(100), tok.BalanceOf(creator).Uint64())
}

func TestFailedOperationLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t, memory.New())
	before := l.View()

	_, err := l.Apply(ctx, func(tx *Tx) error {
		if err := deploy(tx, "AAA", common.HexToAddress("0x01")); err != nil {
			return err
		}
		return apperrors.ErrInsufficientServiceFee
	})
	require.ErrorIs(t, err, apperrors.ErrInsufficientServiceFee)

	after := l.View()
	assert.Same(t, before, after)
	assert.False(t, after.SymbolDeployed("AAA"))
	assert.Zero(t, after.Stats().TotalCreated())
	assert.True(t, after.Payout(treasury).IsZero())
	_, ok := after.Token(common.HexToAddress("0x01"))
	assert.False(t, ok)
}

func TestStoreFailureDiscardsCommit(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: memory.New()}
	l := openLedger(t, store)
	store.fail = true

	_, err := l.Apply(ctx, func(tx *Tx) error { return deploy(tx, "AAA", common.HexToAddress("0x01")) })
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInternal, apperrors.CodeOf(err))
	assert.False(t, l.View().SymbolDeployed("AAA"))

	store.fail = false
	_, err = l.Apply(ctx, func(tx *Tx) error { return deploy(tx, "AAA", common.HexToAddress("0x01")) })
	require.NoError(t, err)
	assert.Equal(t, uint64(3), l.View().LastSeq())
}

func TestUniquenessCheckedAgainstStagedState(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t, memory.New())

	_, err := l.Apply(ctx, func(tx *Tx) error { return deploy(tx, "AAA", common.HexToAddress("0x01")) })
	require.NoError(t, err)

	_, err = l.Apply(ctx, func(tx *Tx) error { return deploy(tx, "AAA", common.HexToAddress("0x02")) })
	require.ErrorIs(t, err, apperrors.ErrSymbolAlreadyExists)

	_, err = l.Apply(ctx, func(tx *Tx) error { return deploy(tx, "BBB", common.HexToAddress("0x01")) })
	require.ErrorIs(t, err, apperrors.ErrAddressInUse)
}

func TestReadersKeepTheirSnapshot(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t, memory.New())
	addr := common.HexToAddress("0x01")
	_, err := l.Apply(ctx, func(tx *Tx) error { return deploy(tx, "AAA", addr) })
	require.NoError(t, err)

	held := l.View()
	_, err = l.Apply(ctx, func(tx *Tx) error {
		tok, ok := tx.Token(addr)
		require.True(t, ok)
		return tok.Transfer(creator, owner, uint256.NewInt(40))
	})
	require.NoError(t, err)

	oldTok, _ := held.Token(addr)
	newTok, _ := l.View().Token(addr)
	assert.Equal(t, uint64(100), oldTok.BalanceOf(creator).Uint64())
	assert.Equal(t, uint64(60), newTok.BalanceOf(creator).Uint64())
}

func TestTemplateAndPayoutStaging(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	l := openLedger(t, store)
	id := registry.TemplateID("CUSTOM")

	_, err := l.Apply(ctx, func(tx *Tx) error {
		if err := tx.PutTemplate(id, impl); err != nil {
			return err
		}
		return tx.RemoveTemplate(registry.BasicTemplateID)
	})
	require.NoError(t, err)

	_, err = l.Apply(ctx, func(tx *Tx) error { return deploy(tx, "AAA", common.HexToAddress("0x01")) })
	require.NoError(t, err)

	var drained *uint256.Int
	_, err = l.Apply(ctx, func(tx *Tx) error {
		drained = tx.DrainPayout(treasury)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(10), drained.Uint64())

	restored := openLedger(t, store).View()
	assert.Equal(t, []common.Hash{id}, restored.Templates().List())
	assert.True(t, restored.Payout(treasury).IsZero())
	assert.Equal(t, uint64(10), restored.Stats().TotalFeesCollected().Uint64())
}

func TestRebuildSymbolIndex(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t, memory.New())
	_, err := l.Apply(ctx, func(tx *Tx) error { return deploy(tx, "AAA", common.HexToAddress("0x01")) })
	require.NoError(t, err)

	_, err = l.Apply(ctx, func(tx *Tx) error {
		tx.RebuildSymbolIndex(func(s string) string { return "X" + s })
		return nil
	})
	require.NoError(t, err)
	assert.True(t, l.View().SymbolDeployed("XAAA"))
	assert.False(t, l.View().SymbolDeployed("AAA"))
}
