package factory

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XTakerDAO/token-factory-sub001/internal/apperrors"
	"github.com/XTakerDAO/token-factory-sub001/internal/blueprint"
	"github.com/XTakerDAO/token-factory-sub001/internal/events"
	"github.com/XTakerDAO/token-factory-sub001/internal/ledger"
	"github.com/XTakerDAO/token-factory-sub001/internal/registry"
	"github.com/XTakerDAO/token-factory-sub001/internal/storage/sqlite"
)

func TestAdminRequiresOwner(t *testing.T) {
	ctx := context.Background()
	f := newFacade(t)
	before := f.ledger.View()
	id := registry.TemplateID("CUSTOM")

	ops := map[string]func() error{
		"addTemplate":     func() error { return f.AddTemplate(ctx, bob, id, alice) },
		"removeTemplate":  func() error { return f.RemoveTemplate(ctx, bob, registry.BasicTemplateID) },
		"setServiceFee":   func() error { return f.SetServiceFee(ctx, bob, uint256.NewInt(1)) },
		"setFeeRecipient": func() error { return f.SetFeeRecipient(ctx, bob, bob) },
		"transferOwner":   func() error { return f.TransferOwnership(ctx, bob, bob) },
		"renounceOwner":   func() error { return f.RenounceOwnership(ctx, bob) },
		"upgradeTo":       func() error { return f.UpgradeTo(ctx, bob, 2) },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			err := op()
			require.ErrorIs(t, err, apperrors.ErrUnauthorized)
			assert.Same(t, before, f.ledger.View())
		})
	}

	assert.Equal(t, serviceFee, f.GetServiceFee())
	assert.Equal(t, treasury, f.GetFeeRecipient())
	assert.Equal(t, ownerAddr, f.Owner())
	assert.Equal(t, uint64(1), f.Version())
}

func TestUnauthorizedErrorsRevealNothing(t *testing.T) {
	ctx := context.Background()
	f := newFacade(t)

	// a missing template and an existing one fail the same way for a stranger
	errMissing := f.RemoveTemplate(ctx, bob, registry.TemplateID("NOPE"))
	errPresent := f.RemoveTemplate(ctx, bob, registry.BasicTemplateID)
	require.Error(t, errMissing)
	assert.Equal(t, errMissing.Error(), errPresent.Error())
	assert.NotContains(t, errMissing.Error(), ownerAddr.Hex())
}

func TestTemplateRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFacade(t)
	id := registry.TemplateID("CUSTOM")
	impl := blueprint.StandardImplementation(factoryAddr)

	require.NoError(t, f.AddTemplate(ctx, ownerAddr, id, impl))
	assert.Equal(t, impl, f.GetTemplate(id))
	assert.Contains(t, f.ListTemplates(), id)

	receipt, err := f.CreateAssetWithTemplate(ctx, alice, basic("CUS", alice), id, fee())
	require.NoError(t, err)
	assert.Equal(t, id, receipt.TemplateID)

	require.NoError(t, f.RemoveTemplate(ctx, ownerAddr, id))
	assert.Equal(t, common.Address{}, f.GetTemplate(id))
	assert.NotContains(t, f.ListTemplates(), id)

	_, err = f.CreateAssetWithTemplate(ctx, alice, basic("CUS2", alice), id, fee())
	require.ErrorIs(t, err, apperrors.ErrTemplateNotFound)
	_, err = f.PredictAssetAddressWithTemplate(basic("CUS2", alice), alice, id)
	require.ErrorIs(t, err, apperrors.ErrTemplateNotFound)

	// the asset deployed from the removed template keeps working
	require.NoError(t, f.Transfer(ctx, alice, receipt.Address, bob, uint256.NewInt(10)))

	err = f.RemoveTemplate(ctx, ownerAddr, id)
	require.ErrorIs(t, err, apperrors.ErrTemplateNotFound)
}

func TestTemplateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFacade(t)

	err := f.AddTemplate(ctx, ownerAddr, registry.TemplateID("ZERO"), common.Address{})
	require.ErrorIs(t, err, apperrors.ErrZeroAddress)

	// an implementation with no known code cannot be cloned
	id := registry.TemplateID("UNKNOWN")
	require.NoError(t, f.AddTemplate(ctx, ownerAddr, id, common.HexToAddress("0xdead")))
	_, err = f.CreateAssetWithTemplate(ctx, alice, basic("UNK", alice), id, fee())
	require.ErrorIs(t, err, apperrors.ErrTemplateNotFound)
	assert.Zero(t, f.GetTotalCreated())
}

func TestRemovingFeaturedTemplateOnlyBlocksFeaturedAssets(t *testing.T) {
	ctx := context.Background()
	f := newFacade(t)
	require.NoError(t, f.RemoveTemplate(ctx, ownerAddr, registry.FeaturedTemplateID))

	_, err := f.CreateAsset(ctx, alice, myToken(alice), fee())
	require.ErrorIs(t, err, apperrors.ErrTemplateNotFound)

	_, err = f.CreateAsset(ctx, alice, basic("OK", alice), fee())
	require.NoError(t, err)
}

func TestFeeAdministration(t *testing.T) {
	ctx := context.Background()
	f := newFacade(t)
	cheaper := uint256.NewInt(5)

	require.NoError(t, f.SetServiceFee(ctx, ownerAddr, cheaper))
	assert.Equal(t, cheaper, f.GetServiceFee())

	err := f.SetFeeRecipient(ctx, ownerAddr, common.Address{})
	require.ErrorIs(t, err, apperrors.ErrZeroAddress)
	require.NoError(t, f.SetFeeRecipient(ctx, ownerAddr, bob))
	assert.Equal(t, bob, f.GetFeeRecipient())

	receipt, err := f.CreateAsset(ctx, alice, basic("FEE", alice), uint256.NewInt(7))
	require.NoError(t, err)
	assert.Equal(t, cheaper, receipt.FeePaid)
	assert.Equal(t, uint64(2), receipt.Refund.Uint64())
	assert.Equal(t, cheaper, f.GetPayout(bob))
	assert.True(t, f.GetPayout(treasury).IsZero())

	evs, err := f.Events(ctx, 0, 0)
	require.NoError(t, err)
	var names []events.Name
	for _, ev := range evs {
		names = append(names, ev.Name)
	}
	assert.Contains(t, names, events.ServiceFeeUpdated)
	assert.Contains(t, names, events.FeeRecipientUpdated)
}

func TestWithdrawPayout(t *testing.T) {
	ctx := context.Background()
	f := newFacade(t)

	_, err := f.WithdrawPayout(ctx, treasury)
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = f.CreateAsset(ctx, alice, basic("W1", alice), fee())
	require.NoError(t, err)
	_, err = f.CreateAsset(ctx, alice, basic("W2", alice), fee())
	require.NoError(t, err)

	amount, err := f.WithdrawPayout(ctx, treasury)
	require.NoError(t, err)
	assert.Equal(t, new(uint256.Int).Mul(serviceFee, uint256.NewInt(2)), amount)
	assert.True(t, f.GetPayout(treasury).IsZero())
	// the collected total is history, not a balance
	assert.Equal(t, amount, f.GetTotalFeesCollected())
}

func TestOwnershipLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFacade(t)

	err := f.TransferOwnership(ctx, ownerAddr, common.Address{})
	require.ErrorIs(t, err, apperrors.ErrZeroAddress)

	require.NoError(t, f.TransferOwnership(ctx, ownerAddr, alice))
	assert.Equal(t, alice, f.Owner())
	require.ErrorIs(t, f.SetServiceFee(ctx, ownerAddr, uint256.NewInt(1)), apperrors.ErrUnauthorized)
	require.NoError(t, f.SetServiceFee(ctx, alice, uint256.NewInt(1)))

	require.NoError(t, f.RenounceOwnership(ctx, alice))
	assert.Equal(t, common.Address{}, f.Owner())
	require.ErrorIs(t, f.SetServiceFee(ctx, alice, uint256.NewInt(2)), apperrors.ErrUnauthorized)
	require.ErrorIs(t, f.AddTemplate(ctx, alice, registry.TemplateID("X"), alice), apperrors.ErrUnauthorized)
	require.ErrorIs(t, f.UpgradeTo(ctx, alice, 2), apperrors.ErrUnauthorized)

	// deployments stay open without an owner
	_, err = f.CreateAsset(ctx, bob, basic("FREE", bob), uint256.NewInt(1))
	require.NoError(t, err)
}

func TestUpgrade(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	f := newFacade(t, WithMigration(3, func(tx *ledger.Tx) error {
		tx.SetVersion(99)
		return boom
	}))

	receipt, err := f.CreateAsset(ctx, alice, myToken(alice), fee())
	require.NoError(t, err)
	assert.False(t, f.IsSymbolDeployed("mt"))

	require.ErrorIs(t, f.UpgradeTo(ctx, ownerAddr, 3), apperrors.ErrUnsupportedVersion)
	require.NoError(t, f.UpgradeTo(ctx, ownerAddr, 2))
	assert.Equal(t, uint64(2), f.Version())
	require.ErrorIs(t, f.UpgradeTo(ctx, ownerAddr, 2), apperrors.ErrUnsupportedVersion)

	// lookups are case-insensitive from version 2 on
	assert.True(t, f.IsSymbolDeployed("mt"))
	assert.True(t, f.IsSymbolDeployed(" MT "))
	assert.False(t, f.ValidateConfiguration(myToken(bob)).Valid)

	// a failing migration leaves the version alone
	require.ErrorIs(t, f.UpgradeTo(ctx, ownerAddr, 3), boom)
	assert.Equal(t, uint64(2), f.Version())

	// instances are untouched by upgrades
	info, err := f.Asset(receipt.Address)
	require.NoError(t, err)
	assert.Equal(t, "MT", info.Symbol)

	evs, err := f.Events(ctx, 0, 0)
	require.NoError(t, err)
	var up events.UpgradedPayload
	for _, ev := range evs {
		if ev.Name == events.Upgraded {
			require.NoError(t, ev.Decode(&up))
		}
	}
	assert.Equal(t, events.UpgradedPayload{From: 1, To: 2}, up)
}

func TestUpgradeKeepsSymbolIndexAndPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "factory.db")

	store, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	f := openFacade(t, store)
	first, err := f.CreateAsset(ctx, alice, myToken(alice), fee())
	require.NoError(t, err)
	second, err := f.CreateAsset(ctx, bob, basic("BT2", bob), fee())
	require.NoError(t, err)

	before := f.ledger.View()
	require.NoError(t, f.UpgradeTo(ctx, ownerAddr, 2))
	after := f.ledger.View()
	for _, sym := range []string{"MT", "BT2"} {
		want, ok := before.RecordBySymbol(sym)
		require.True(t, ok)
		got, ok := after.RecordBySymbol(sym)
		require.True(t, ok)
		assert.Equal(t, want.Address, got.Address)
	}
	require.NoError(t, store.Close())

	store, err = sqlite.Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	f = openFacade(t, store)

	assert.Equal(t, uint64(2), f.Version())
	assert.True(t, f.IsSymbolDeployed("mt"))
	assert.True(t, f.IsSymbolDeployed("bt2 "))
	assert.Equal(t, []common.Address{first.Address}, f.GetAssetsByCreator(alice))
	assert.Equal(t, []common.Address{second.Address}, f.GetAssetsByCreator(bob))
	require.ErrorIs(t, f.UpgradeTo(ctx, ownerAddr, 2), apperrors.ErrUnsupportedVersion)
}
