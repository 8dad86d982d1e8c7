// Package memory is a Store kept entirely in process memory.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/XTakerDAO/token-factory-sub001/internal/events"
	"github.com/XTakerDAO/token-factory-sub001/internal/fees"
	"github.com/XTakerDAO/token-factory-sub001/internal/registry"
	"github.com/XTakerDAO/token-factory-sub001/internal/storage"
	"github.com/XTakerDAO/token-factory-sub001/internal/token"
)

type Store struct {
	mu        sync.RWMutex
	committed bool
	header    storage.Header
	templates map[common.Hash]common.Address
	records   []storage.Record
	counts    map[common.Address]uint64
	payouts   map[common.Address]*uint256.Int
	tokens    map[common.Address]token.Snapshot
	journal   []events.Event
}

func New() *Store {
	return &Store{
		templates: map[common.Hash]common.Address{},
		counts:    map[common.Address]uint64{},
		payouts:   map[common.Address]*uint256.Int{},
		tokens:    map[common.Address]token.Snapshot{},
	}
}

func (s *Store) Load(ctx context.Context) (*storage.Snapshot, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.committed {
		return nil, nil
	}

	snap := &storage.Snapshot{
		Header:        copyHeader(s.header),
		Records:       append([]storage.Record(nil), s.records...),
		CreatorCounts: make(map[common.Address]uint64, len(s.counts)),
		Payouts:       make(map[common.Address]*uint256.Int, len(s.payouts)),
		Tokens:        make([]token.Snapshot, 0, len(s.tokens)),
	}
	for id, impl := range s.templates {
		snap.Templates = append(snap.Templates, registry.Template{ID: id, Implementation: impl})
	}
	for k, v := range s.counts {
		snap.CreatorCounts[k] = v
	}
	for k, v := range s.payouts {
		snap.Payouts[k] = new(uint256.Int).Set(v)
	}
	for _, t := range s.tokens {
		snap.Tokens = append(snap.Tokens, t)
	}
	sort.Slice(snap.Tokens, func(i, j int) bool {
		return snap.Tokens[i].Address.Hex() < snap.Tokens[j].Address.Hex()
	})
	return snap, nil
}

func (s *Store) Commit(ctx context.Context, b *storage.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("memory: nil batch")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range b.Events {
		if n := len(s.journal); n > 0 && ev.Seq <= s.journal[n-1].Seq {
			return fmt.Errorf("memory: event seq %d is not after %d", ev.Seq, s.journal[n-1].Seq)
		}
	}

	s.committed = true
	s.header = copyHeader(b.Header)
	for _, t := range b.TemplatePuts {
		s.templates[t.ID] = t.Implementation
	}
	for _, id := range b.TemplateDeletes {
		delete(s.templates, id)
	}
	s.records = append(s.records, b.Records...)
	for k, v := range b.CreatorCounts {
		s.counts[k] = v
	}
	for k, v := range b.Payouts {
		s.payouts[k] = new(uint256.Int).Set(v)
	}
	for _, t := range b.Tokens {
		s.tokens[t.Address] = t
	}
	s.journal = append(s.journal, b.Events...)
	return nil
}

func (s *Store) Events(ctx context.Context, afterSeq uint64, limit int) ([]events.Event, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := sort.Search(len(s.journal), func(i int) bool { return s.journal[i].Seq > afterSeq })
	end := len(s.journal)
	if limit > 0 && i+limit < end {
		end = i + limit
	}
	return append([]events.Event(nil), s.journal[i:end]...), nil
}

func (s *Store) Close() error { return nil }

func copyHeader(h storage.Header) storage.Header {
	out := h
	out.Fee = fees.NewSchedule(h.Fee.Amount, h.Fee.Recipient)
	if h.TotalFees != nil {
		out.TotalFees = new(uint256.Int).Set(h.TotalFees)
	}
	return out
}
