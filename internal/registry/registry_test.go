package registry

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XTakerDAO/token-factory-sub001/internal/apperrors"
	"github.com/XTakerDAO/token-factory-sub001/internal/token"
)

var (
	implA = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	implB = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func TestPutGetRemove(t *testing.T) {
	r := New()
	id := TemplateID("CUSTOM")

	next, err := r.Put(id, implA)
	require.NoError(t, err)
	_, ok := r.Get(id)
	assert.False(t, ok, "original registry must stay untouched")

	impl, ok := next.Get(id)
	require.True(t, ok)
	assert.Equal(t, implA, impl)

	replaced, err := next.Put(id, implB)
	require.NoError(t, err)
	impl, _ = replaced.Get(id)
	assert.Equal(t, implB, impl)

	removed, err := replaced.Remove(id)
	require.NoError(t, err)
	_, ok = removed.Get(id)
	assert.False(t, ok)

	_, err = removed.Remove(id)
	require.ErrorIs(t, err, apperrors.ErrTemplateNotFound)
}

func TestPutRejectsZero(t *testing.T) {
	_, err := New().Put(TemplateID("X"), common.Address{})
	require.ErrorIs(t, err, apperrors.ErrZeroAddress)

	_, err = New().Put(common.Hash{}, implA)
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestListIsSorted(t *testing.T) {
	r := New(
		Template{ID: BasicTemplateID, Implementation: implA},
		Template{ID: FeaturedTemplateID, Implementation: implA},
		Template{ID: common.HexToHash("0x01"), Implementation: implB},
	)
	ids := r.List()
	require.Len(t, ids, 3)
	assert.Equal(t, common.HexToHash("0x01"), ids[0])
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1].Hex(), ids[i].Hex())
	}
	assert.Len(t, r.Templates(), 3)
}

func TestSelectTemplate(t *testing.T) {
	assert.Equal(t, crypto.Keccak256Hash([]byte("BASIC_ERC20")), BasicTemplateID)

	cfg := token.Config{Name: "Plain", Symbol: "PL", TotalSupply: uint256.NewInt(1)}
	assert.Equal(t, BasicTemplateID, SelectTemplate(cfg))

	cfg.Pausable = true
	assert.Equal(t, FeaturedTemplateID, SelectTemplate(cfg))
}
