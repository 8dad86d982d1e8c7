// Package stats tracks the monotonic deployment counters.
package stats

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Statistics only grow; Record returns an updated copy.
type Statistics struct {
	totalCreated uint64
	perCreator   map[common.Address]uint64
	totalFees    *uint256.Int
}

func New() Statistics {
	return Statistics{perCreator: map[common.Address]uint64{}, totalFees: new(uint256.Int)}
}

// Restore rebuilds counters from persisted values.
func Restore(total uint64, perCreator map[common.Address]uint64, fees *uint256.Int) Statistics {
	s := New()
	s.totalCreated = total
	for k, v := range perCreator {
		s.perCreator[k] = v
	}
	if fees != nil {
		s.totalFees.Set(fees)
	}
	return s
}

func (s Statistics) TotalCreated() uint64 { return s.totalCreated }

func (s Statistics) CreatedBy(creator common.Address) uint64 { return s.perCreator[creator] }

func (s Statistics) TotalFeesCollected() *uint256.Int {
	if s.totalFees == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(s.totalFees)
}

// Creators returns a copy of the per-creator counts.
func (s Statistics) Creators() map[common.Address]uint64 {
	out := make(map[common.Address]uint64, len(s.perCreator))
	for k, v := range s.perCreator {
		out[k] = v
	}
	return out
}

// Record counts one successful deployment by creator that paid fee.
func (s Statistics) Record(creator common.Address, fee *uint256.Int) Statistics {
	next := Restore(s.totalCreated+1, s.perCreator, s.totalFees)
	next.perCreator[creator]++
	if fee != nil {
		next.totalFees.Add(next.totalFees, fee)
	}
	return next
}
