// Package ledger holds the committed factory state and applies mutations
// to it one at a time, all or nothing.
package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/XTakerDAO/token-factory-sub001/internal/access"
	"github.com/XTakerDAO/token-factory-sub001/internal/fees"
	"github.com/XTakerDAO/token-factory-sub001/internal/registry"
	"github.com/XTakerDAO/token-factory-sub001/internal/stats"
	"github.com/XTakerDAO/token-factory-sub001/internal/storage"
	"github.com/XTakerDAO/token-factory-sub001/internal/token"
)

// State is an immutable view of committed state. Readers may hold on to a
// *State for as long as they like; commits publish a new one.
type State struct {
	version   uint64
	owner     access.Owner
	fees      fees.Schedule
	templates registry.Registry
	stats     stats.Statistics
	lastSeq   uint64

	records   map[common.Address]storage.Record
	order     []common.Address
	bySymbol  map[string]common.Address
	byCreator map[common.Address][]common.Address
	payouts   map[common.Address]*uint256.Int
	tokens    map[common.Address]*token.Token
}

func emptyState() *State {
	return &State{
		templates: registry.New(),
		stats:     stats.New(),
		records:   map[common.Address]storage.Record{},
		bySymbol:  map[string]common.Address{},
		byCreator: map[common.Address][]common.Address{},
		payouts:   map[common.Address]*uint256.Int{},
		tokens:    map[common.Address]*token.Token{},
	}
}

// fromSnapshot rebuilds indexes from a persisted snapshot.
func fromSnapshot(snap *storage.Snapshot) (*State, error) {
	s := emptyState()
	s.version = snap.Header.Version
	s.owner = access.NewOwner(snap.Header.Owner)
	s.fees = fees.NewSchedule(snap.Header.Fee.Amount, snap.Header.Fee.Recipient)
	s.templates = registry.New(snap.Templates...)
	s.stats = stats.Restore(snap.Header.TotalCreated, snap.CreatorCounts, snap.Header.TotalFees)
	s.lastSeq = snap.Header.LastSeq

	for _, r := range snap.Records {
		if _, dup := s.bySymbol[r.Symbol]; dup {
			return nil, fmt.Errorf("ledger: symbol %s recorded twice", r.Symbol)
		}
		s.records[r.Address] = r
		s.order = append(s.order, r.Address)
		s.bySymbol[r.Symbol] = r.Address
		s.byCreator[r.Creator] = append(s.byCreator[r.Creator], r.Address)
	}
	for k, v := range snap.Payouts {
		s.payouts[k] = new(uint256.Int).Set(v)
	}
	for _, ts := range snap.Tokens {
		tok, err := token.FromSnapshot(ts)
		if err != nil {
			return nil, fmt.Errorf("ledger: restore token: %w", err)
		}
		s.tokens[tok.Address()] = tok
	}
	return s, nil
}

func (s *State) Version() uint64              { return s.version }
func (s *State) Owner() access.Owner          { return s.owner }
func (s *State) Fees() fees.Schedule          { return fees.NewSchedule(s.fees.Amount, s.fees.Recipient) }
func (s *State) Templates() registry.Registry { return s.templates }
func (s *State) Stats() stats.Statistics      { return s.stats }
func (s *State) LastSeq() uint64              { return s.lastSeq }

func (s *State) SymbolDeployed(sym string) bool {
	_, ok := s.bySymbol[sym]
	return ok
}

func (s *State) Record(addr common.Address) (storage.Record, bool) {
	r, ok := s.records[addr]
	return r, ok
}

// RecordBySymbol resolves a deployed symbol to its record.
func (s *State) RecordBySymbol(sym string) (storage.Record, bool) {
	addr, ok := s.bySymbol[sym]
	if !ok {
		return storage.Record{}, false
	}
	return s.Record(addr)
}

// Records lists every deployment in creation order.
func (s *State) Records() []storage.Record {
	out := make([]storage.Record, 0, len(s.order))
	for _, addr := range s.order {
		out = append(out, s.records[addr])
	}
	return out
}

// AssetsByCreator lists a creator's deployments in creation order.
func (s *State) AssetsByCreator(creator common.Address) []common.Address {
	return append([]common.Address(nil), s.byCreator[creator]...)
}

func (s *State) Payout(recipient common.Address) *uint256.Int {
	if v, ok := s.payouts[recipient]; ok {
		return new(uint256.Int).Set(v)
	}
	return new(uint256.Int)
}

// Token returns the committed instance at addr. Callers must not mutate it.
func (s *State) Token(addr common.Address) (*token.Token, bool) {
	t, ok := s.tokens[addr]
	return t, ok
}

// Occupied reports whether anything already lives at addr.
func (s *State) Occupied(addr common.Address) bool {
	if _, ok := s.tokens[addr]; ok {
		return true
	}
	_, ok := s.records[addr]
	return ok
}
