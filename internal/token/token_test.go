package token

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XTakerDAO/token-factory-sub001/internal/apperrors"
)

var (
	cloneAddr = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	implAddr  = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	alice     = common.HexToAddress("0x00000000000000000000000000000000000000e1")
	bob       = common.HexToAddress("0x00000000000000000000000000000000000000e2")
)

func newToken(t *testing.T, mutate func(*Config)) *Token {
	t.Helper()
	cfg := validConfig()
	cfg.TotalSupply = uint256.NewInt(1000)
	cfg.Mintable = false
	if mutate != nil {
		mutate(&cfg)
	}
	tok := New(cloneAddr, implAddr)
	require.NoError(t, tok.Initialize(cfg))
	return tok
}

func TestInitializeOnce(t *testing.T) {
	tok := newToken(t, nil)

	assert.True(t, tok.Initialized())
	assert.Equal(t, "My Token", tok.Name())
	assert.Equal(t, ownerA, tok.Owner())
	assert.Equal(t, uint64(1000), tok.BalanceOf(ownerA).Uint64())
	assert.Equal(t, uint64(1000), tok.TotalSupply().Uint64())

	err := tok.Initialize(validConfig())
	require.ErrorIs(t, err, apperrors.ErrAlreadyInitialized)
	assert.Equal(t, "MT", tok.Symbol())
}

func TestInitializeCalldata(t *testing.T) {
	data, err := EncodeInit(validConfig())
	require.NoError(t, err)

	tok := New(cloneAddr, implAddr)
	require.NoError(t, tok.InitializeCalldata(data))
	assert.True(t, tok.Features().Mintable)
	require.ErrorIs(t, tok.InitializeCalldata(data), apperrors.ErrAlreadyInitialized)
}

func TestUninitializedRejectsOperations(t *testing.T) {
	tok := New(cloneAddr, implAddr)
	require.ErrorIs(t, tok.Transfer(alice, bob, uint256.NewInt(1)), apperrors.ErrNotInitialized)
	require.ErrorIs(t, tok.Mint(alice, bob, uint256.NewInt(1)), apperrors.ErrNotInitialized)
}

func TestTransferAndAllowance(t *testing.T) {
	tok := newToken(t, nil)

	require.NoError(t, tok.Transfer(ownerA, alice, uint256.NewInt(300)))
	assert.Equal(t, uint64(700), tok.BalanceOf(ownerA).Uint64())
	assert.Equal(t, uint64(300), tok.BalanceOf(alice).Uint64())

	require.ErrorIs(t, tok.Transfer(alice, bob, uint256.NewInt(301)), apperrors.ErrInsufficientBalance)
	require.ErrorIs(t, tok.Transfer(alice, common.Address{}, uint256.NewInt(1)), apperrors.ErrZeroAddress)

	require.NoError(t, tok.Approve(alice, bob, uint256.NewInt(100)))
	require.ErrorIs(t, tok.TransferFrom(bob, alice, bob, uint256.NewInt(101)), apperrors.ErrInsufficientAllowance)
	require.NoError(t, tok.TransferFrom(bob, alice, bob, uint256.NewInt(60)))
	assert.Equal(t, uint64(40), tok.Allowance(alice, bob).Uint64())
	assert.Equal(t, uint64(60), tok.BalanceOf(bob).Uint64())
	assert.Equal(t, uint64(1000), tok.TotalSupply().Uint64())

	require.NoError(t, tok.Approve(ownerA, bob, maxAllowance))
	require.NoError(t, tok.TransferFrom(bob, ownerA, bob, uint256.NewInt(10)))
	assert.True(t, tok.Allowance(ownerA, bob).Eq(maxAllowance))
}

func TestMintRequiresFeatureOwnerAndCap(t *testing.T) {
	plain := newToken(t, nil)
	require.ErrorIs(t, plain.Mint(ownerA, alice, uint256.NewInt(1)), apperrors.ErrFeatureDisabled)

	capped := newToken(t, func(c *Config) {
		c.Mintable = true
		c.Capped = true
		c.MaxSupply = uint256.NewInt(1500)
	})
	require.ErrorIs(t, capped.Mint(alice, alice, uint256.NewInt(1)), apperrors.ErrUnauthorized)
	require.NoError(t, capped.Mint(ownerA, alice, uint256.NewInt(500)))
	assert.Equal(t, uint64(1500), capped.TotalSupply().Uint64())
	require.ErrorIs(t, capped.Mint(ownerA, alice, uint256.NewInt(1)), apperrors.ErrCapExceeded)
	assert.Equal(t, uint64(1500), capped.TotalSupply().Uint64())

	uncapped := newToken(t, func(c *Config) { c.Mintable = true })
	require.NoError(t, uncapped.Mint(ownerA, bob, uint256.NewInt(1_000_000)))
	assert.Equal(t, uint64(1_001_000), uncapped.TotalSupply().Uint64())
}

func TestBurn(t *testing.T) {
	plain := newToken(t, nil)
	require.ErrorIs(t, plain.Burn(ownerA, uint256.NewInt(1)), apperrors.ErrFeatureDisabled)

	tok := newToken(t, func(c *Config) { c.Burnable = true })
	require.NoError(t, tok.Burn(ownerA, uint256.NewInt(100)))
	assert.Equal(t, uint64(900), tok.TotalSupply().Uint64())
	require.ErrorIs(t, tok.Burn(alice, uint256.NewInt(1)), apperrors.ErrInsufficientBalance)

	require.NoError(t, tok.Approve(ownerA, alice, uint256.NewInt(50)))
	require.NoError(t, tok.BurnFrom(alice, ownerA, uint256.NewInt(50)))
	assert.Equal(t, uint64(850), tok.TotalSupply().Uint64())
	require.ErrorIs(t, tok.BurnFrom(alice, ownerA, uint256.NewInt(1)), apperrors.ErrInsufficientAllowance)
}

func TestPauseGatesTransfers(t *testing.T) {
	tok := newToken(t, func(c *Config) {
		c.Pausable = true
		c.Burnable = true
	})

	require.ErrorIs(t, tok.Pause(alice), apperrors.ErrUnauthorized)
	require.NoError(t, tok.Pause(ownerA))
	require.ErrorIs(t, tok.Pause(ownerA), apperrors.ErrPaused)

	require.ErrorIs(t, tok.Transfer(ownerA, alice, uint256.NewInt(1)), apperrors.ErrPaused)
	require.ErrorIs(t, tok.Burn(ownerA, uint256.NewInt(1)), apperrors.ErrPaused)
	require.NoError(t, tok.Approve(ownerA, alice, uint256.NewInt(1)))

	require.NoError(t, tok.Unpause(ownerA))
	require.ErrorIs(t, tok.Unpause(ownerA), apperrors.ErrNotPaused)
	require.NoError(t, tok.Transfer(ownerA, alice, uint256.NewInt(1)))

	plain := newToken(t, nil)
	require.ErrorIs(t, plain.Pause(ownerA), apperrors.ErrFeatureDisabled)
}

func TestOwnership(t *testing.T) {
	tok := newToken(t, func(c *Config) { c.Mintable = true })

	require.ErrorIs(t, tok.TransferOwnership(ownerA, common.Address{}), apperrors.ErrZeroAddress)
	require.NoError(t, tok.TransferOwnership(ownerA, alice))
	require.ErrorIs(t, tok.Mint(ownerA, ownerA, uint256.NewInt(1)), apperrors.ErrUnauthorized)
	require.NoError(t, tok.Mint(alice, alice, uint256.NewInt(1)))

	require.NoError(t, tok.RenounceOwnership(alice))
	require.ErrorIs(t, tok.Mint(alice, alice, uint256.NewInt(1)), apperrors.ErrUnauthorized)
}

func TestCloneIsIndependent(t *testing.T) {
	tok := newToken(t, nil)
	cp := tok.Clone()

	require.NoError(t, cp.Transfer(ownerA, alice, uint256.NewInt(10)))
	assert.Equal(t, uint64(1000), tok.BalanceOf(ownerA).Uint64())
	assert.Equal(t, uint64(990), cp.BalanceOf(ownerA).Uint64())
}

func TestSnapshotRestore(t *testing.T) {
	tok := newToken(t, func(c *Config) {
		c.Capped = true
		c.MaxSupply = uint256.NewInt(5000)
	})
	require.NoError(t, tok.Transfer(ownerA, alice, uint256.NewInt(10)))
	require.NoError(t, tok.Approve(alice, bob, uint256.NewInt(3)))

	restored, err := FromSnapshot(tok.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, tok.Snapshot(), restored.Snapshot())
	assert.Equal(t, uint64(5000), restored.MaxSupply().Uint64())
	require.ErrorIs(t, restored.Initialize(validConfig()), apperrors.ErrAlreadyInitialized)
}
