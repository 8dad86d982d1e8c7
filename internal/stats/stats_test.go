package stats

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestRecordIsMonotonicAndCopyOnWrite(t *testing.T) {
	a := common.HexToAddress("0xa1")
	b := common.HexToAddress("0xb2")

	s0 := New()
	s1 := s0.Record(a, uint256.NewInt(10))
	s2 := s1.Record(a, uint256.NewInt(5)).Record(b, nil)

	assert.Equal(t, uint64(0), s0.TotalCreated())
	assert.Equal(t, uint64(1), s1.TotalCreated())
	assert.Equal(t, uint64(3), s2.TotalCreated())

	assert.Equal(t, uint64(1), s1.CreatedBy(a))
	assert.Equal(t, uint64(2), s2.CreatedBy(a))
	assert.Equal(t, uint64(1), s2.CreatedBy(b))

	assert.Equal(t, uint64(10), s1.TotalFeesCollected().Uint64())
	assert.Equal(t, uint64(15), s2.TotalFeesCollected().Uint64())
	assert.True(t, s0.TotalFeesCollected().IsZero())
}

func TestRestore(t *testing.T) {
	a := common.HexToAddress("0xa1")
	counts := map[common.Address]uint64{a: 4}
	s := Restore(4, counts, uint256.NewInt(40))
	counts[a] = 99

	assert.Equal(t, uint64(4), s.CreatedBy(a))
	assert.Equal(t, map[common.Address]uint64{a: 4}, s.Creators())
	assert.Equal(t, uint64(40), s.TotalFeesCollected().Uint64())
}
