// Package storagetest runs the same behavioural checks against every Store.
package storagetest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XTakerDAO/token-factory-sub001/internal/events"
	"github.com/XTakerDAO/token-factory-sub001/internal/fees"
	"github.com/XTakerDAO/token-factory-sub001/internal/registry"
	"github.com/XTakerDAO/token-factory-sub001/internal/storage"
	"github.com/XTakerDAO/token-factory-sub001/internal/token"
)

var (
	Owner    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	Treasury = common.HexToAddress("0x00000000000000000000000000000000000000fe")
	Impl     = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	Asset    = common.HexToAddress("0x00000000000000000000000000000000000000c1")
)

// Genesis is the first batch a factory commits.
func Genesis() *storage.Batch {
	return &storage.Batch{
		ID: "genesis",
		Header: storage.Header{
			Version:   1,
			Owner:     Owner,
			Fee:       fees.NewSchedule(uint256.NewInt(100), Treasury),
			TotalFees: new(uint256.Int),
		},
		TemplatePuts: []registry.Template{
			{ID: registry.BasicTemplateID, Implementation: Impl},
			{ID: registry.FeaturedTemplateID, Implementation: Impl},
		},
	}
}

// Deployment is a batch recording one deployed asset at event seq.
func Deployment(t *testing.T, seq uint64, symbol string, addr common.Address) *storage.Batch {
	t.Helper()
	tok := token.New(addr, Impl)
	require.NoError(t, tok.Initialize(token.Config{
		Name:         "Token " + symbol,
		Symbol:       symbol,
		TotalSupply:  uint256.NewInt(1000),
		Decimals:     18,
		InitialOwner: Owner,
	}))
	ev, err := events.New(events.AssetCreated, common.HexToAddress("0xfa"), events.AssetCreatedPayload{Asset: addr, Symbol: symbol})
	require.NoError(t, err)
	ev.Seq = seq
	ev.OpID = "op-" + symbol
	ev.Time = time.UnixMilli(1_700_000_000_000).UTC()

	return &storage.Batch{
		ID: "op-" + symbol,
		Header: storage.Header{
			Version:      1,
			Owner:        Owner,
			Fee:          fees.NewSchedule(uint256.NewInt(100), Treasury),
			TotalCreated: seq,
			TotalFees:    uint256.NewInt(100 * seq),
			LastSeq:      seq,
		},
		Records: []storage.Record{{
			Address:        addr,
			Creator:        Owner,
			Symbol:         symbol,
			ConfigHash:     common.HexToHash("0xc0"),
			TemplateID:     registry.BasicTemplateID,
			Implementation: Impl,
			Salt:           common.HexToHash("0x5a"),
			Nonce:          seq - 1,
			FeePaid:        uint256.NewInt(100),
			Index:          seq,
			CreatedAt:      time.UnixMilli(1_700_000_000_000).UTC(),
		}},
		CreatorCounts: map[common.Address]uint64{Owner: seq},
		Payouts:       map[common.Address]*uint256.Int{Treasury: uint256.NewInt(100 * seq)},
		Tokens:        []token.Snapshot{tok.Snapshot()},
		Events:        []events.Event{ev},
	}
}

// Run exercises a fresh store produced by open.
func Run(t *testing.T, open func(t *testing.T) storage.Store) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		s := open(t)
		snap, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, snap)

		evs, err := s.Events(ctx, 0, 10)
		require.NoError(t, err)
		assert.Empty(t, evs)
	})

	t.Run("round trip", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Commit(ctx, Genesis()))
		require.NoError(t, s.Commit(ctx, Deployment(t, 1, "AAA", Asset)))

		snap, err := s.Load(ctx)
		require.NoError(t, err)
		require.NotNil(t, snap)

		assert.Equal(t, uint64(1), snap.Header.Version)
		assert.Equal(t, Owner, snap.Header.Owner)
		assert.Equal(t, uint64(100), snap.Header.Fee.Fee().Uint64())
		assert.Equal(t, Treasury, snap.Header.Fee.Recipient)
		assert.Equal(t, uint64(1), snap.Header.TotalCreated)
		assert.Equal(t, uint64(1), snap.Header.LastSeq)
		assert.Len(t, snap.Templates, 2)

		require.Len(t, snap.Records, 1)
		rec := snap.Records[0]
		assert.Equal(t, Asset, rec.Address)
		assert.Equal(t, "AAA", rec.Symbol)
		assert.Equal(t, common.HexToHash("0x5a"), rec.Salt)
		assert.Equal(t, uint64(100), rec.FeePaid.Uint64())

		assert.Equal(t, uint64(1), snap.CreatorCounts[Owner])
		assert.Equal(t, uint64(100), snap.Payouts[Treasury].Uint64())

		require.Len(t, snap.Tokens, 1)
		restored, err := token.FromSnapshot(snap.Tokens[0])
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), restored.BalanceOf(Owner).Uint64())
	})

	t.Run("template delete", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Commit(ctx, Genesis()))
		require.NoError(t, s.Commit(ctx, &storage.Batch{
			ID:              "rm",
			Header:          Genesis().Header,
			TemplateDeletes: []common.Hash{registry.BasicTemplateID},
		}))
		snap, err := s.Load(ctx)
		require.NoError(t, err)
		require.Len(t, snap.Templates, 1)
		assert.Equal(t, registry.FeaturedTemplateID, snap.Templates[0].ID)
	})

	t.Run("events page", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Commit(ctx, Genesis()))
		require.NoError(t, s.Commit(ctx, Deployment(t, 1, "AAA", common.HexToAddress("0xc1"))))
		require.NoError(t, s.Commit(ctx, Deployment(t, 2, "BBB", common.HexToAddress("0xc2"))))
		require.NoError(t, s.Commit(ctx, Deployment(t, 3, "CCC", common.HexToAddress("0xc3"))))

		page, err := s.Events(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, uint64(2), page[0].Seq)
		assert.Equal(t, events.AssetCreated, page[0].Name)
		assert.Equal(t, "op-BBB", page[0].OpID)

		var p events.AssetCreatedPayload
		require.NoError(t, json.Unmarshal(page[0].Payload, &p))
		assert.Equal(t, "BBB", p.Symbol)

		all, err := s.Events(ctx, 0, 0)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}
