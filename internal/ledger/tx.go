package ledger

import (
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/XTakerDAO/token-factory-sub001/internal/access"
	"github.com/XTakerDAO/token-factory-sub001/internal/apperrors"
	"github.com/XTakerDAO/token-factory-sub001/internal/events"
	"github.com/XTakerDAO/token-factory-sub001/internal/fees"
	"github.com/XTakerDAO/token-factory-sub001/internal/registry"
	"github.com/XTakerDAO/token-factory-sub001/internal/storage"
	"github.com/XTakerDAO/token-factory-sub001/internal/token"
)

// Tx stages one operation on top of a committed State. Nothing it does is
// visible to readers until the ledger commits it; a discarded Tx leaves no trace.
type Tx struct {
	id   string
	now  time.Time
	base *State
	next *State

	indexesOwned bool
	payoutsOwned bool
	tokensOwned  bool

	templatePuts    map[common.Hash]common.Address
	templateDeletes map[common.Hash]struct{}
	records         []storage.Record
	dirtyCreators   map[common.Address]struct{}
	dirtyPayouts    map[common.Address]struct{}
	dirtyTokens     map[common.Address]struct{}
	events          []events.Event
}

func newTx(id string, now time.Time, base *State) *Tx {
	next := *base
	return &Tx{
		id:              id,
		now:             now,
		base:            base,
		next:            &next,
		templatePuts:    map[common.Hash]common.Address{},
		templateDeletes: map[common.Hash]struct{}{},
		dirtyCreators:   map[common.Address]struct{}{},
		dirtyPayouts:    map[common.Address]struct{}{},
		dirtyTokens:     map[common.Address]struct{}{},
	}
}

func (tx *Tx) ID() string { return tx.id }

// View is the staged state including this transaction's own writes.
func (tx *Tx) View() *State { return tx.next }

func (tx *Tx) Now() time.Time { return tx.now }

func (tx *Tx) SetVersion(v uint64) { tx.next.version = v }

func (tx *Tx) SetOwner(o access.Owner) { tx.next.owner = o }

func (tx *Tx) SetFees(s fees.Schedule) {
	tx.next.fees = fees.NewSchedule(s.Amount, s.Recipient)
}

func (tx *Tx) PutTemplate(id common.Hash, impl common.Address) error {
	r, err := tx.next.templates.Put(id, impl)
	if err != nil {
		return err
	}
	tx.next.templates = r
	tx.templatePuts[id] = impl
	delete(tx.templateDeletes, id)
	return nil
}

func (tx *Tx) RemoveTemplate(id common.Hash) error {
	r, err := tx.next.templates.Remove(id)
	if err != nil {
		return err
	}
	tx.next.templates = r
	tx.templateDeletes[id] = struct{}{}
	delete(tx.templatePuts, id)
	return nil
}

// AddRecord indexes a new deployment. The symbol and address are checked
// against the staged state, which already includes every earlier commit.
func (tx *Tx) AddRecord(r storage.Record) error {
	if tx.next.SymbolDeployed(r.Symbol) {
		return apperrors.Newf(apperrors.CodeSymbolAlreadyExists, "symbol %s is already deployed", r.Symbol)
	}
	if _, ok := tx.next.records[r.Address]; ok {
		return apperrors.Newf(apperrors.CodeAddressInUse, "address %s is already in use", r.Address.Hex())
	}
	tx.ownIndexes()
	tx.next.records[r.Address] = r
	tx.next.order = append(slices.Clip(tx.next.order), r.Address)
	tx.next.bySymbol[r.Symbol] = r.Address
	tx.next.byCreator[r.Creator] = append(slices.Clip(tx.next.byCreator[r.Creator]), r.Address)
	tx.records = append(tx.records, r)
	return nil
}

// CountDeployment bumps the statistics for one successful deployment.
func (tx *Tx) CountDeployment(creator common.Address, fee *uint256.Int) {
	tx.next.stats = tx.next.stats.Record(creator, fee)
	tx.dirtyCreators[creator] = struct{}{}
}

// RebuildSymbolIndex recomputes the symbol index from the records.
func (tx *Tx) RebuildSymbolIndex(normalize func(string) string) {
	tx.ownIndexes()
	idx := make(map[string]common.Address, len(tx.next.records))
	for _, addr := range tx.next.order {
		idx[normalize(tx.next.records[addr].Symbol)] = addr
	}
	tx.next.bySymbol = idx
}

func (tx *Tx) CreditPayout(recipient common.Address, amount *uint256.Int) error {
	tx.ownPayouts()
	cur := tx.next.Payout(recipient)
	next, overflow := new(uint256.Int).AddOverflow(cur, amount)
	if overflow {
		return apperrors.ErrOverflow
	}
	tx.next.payouts[recipient] = next
	tx.dirtyPayouts[recipient] = struct{}{}
	return nil
}

// DrainPayout zeroes a recipient's accrued balance and returns what it held.
func (tx *Tx) DrainPayout(recipient common.Address) *uint256.Int {
	tx.ownPayouts()
	amount := tx.next.Payout(recipient)
	tx.next.payouts[recipient] = new(uint256.Int)
	tx.dirtyPayouts[recipient] = struct{}{}
	return amount
}

// Token returns a private, writable copy of the instance at addr.
func (tx *Tx) Token(addr common.Address) (*token.Token, bool) {
	t, ok := tx.next.tokens[addr]
	if !ok {
		return nil, false
	}
	if _, dirty := tx.dirtyTokens[addr]; dirty {
		return t, true
	}
	tx.ownTokens()
	cp := t.Clone()
	tx.next.tokens[addr] = cp
	tx.dirtyTokens[addr] = struct{}{}
	return cp, true
}

// PutToken places a new instance. It fails if the address is occupied.
func (tx *Tx) PutToken(t *token.Token) error {
	if tx.next.Occupied(t.Address()) {
		return apperrors.Newf(apperrors.CodeAddressInUse, "address %s is already in use", t.Address().Hex())
	}
	tx.ownTokens()
	tx.next.tokens[t.Address()] = t
	tx.dirtyTokens[t.Address()] = struct{}{}
	return nil
}

// Emit stages an event and assigns it the next sequence number.
func (tx *Tx) Emit(name events.Name, emitter common.Address, payload any) (events.Event, error) {
	ev, err := events.New(name, emitter, payload)
	if err != nil {
		return events.Event{}, apperrors.Wrap(apperrors.CodeInternal, "build event", err)
	}
	tx.next.lastSeq++
	ev.Seq = tx.next.lastSeq
	ev.OpID = tx.id
	ev.Time = tx.now
	tx.events = append(tx.events, ev)
	return ev, nil
}

func (tx *Tx) Events() []events.Event {
	return append([]events.Event(nil), tx.events...)
}

func (tx *Tx) ownIndexes() {
	if tx.indexesOwned {
		return
	}
	tx.next.records = maps.Clone(tx.base.records)
	tx.next.bySymbol = maps.Clone(tx.base.bySymbol)
	tx.next.byCreator = maps.Clone(tx.base.byCreator)
	tx.indexesOwned = true
}

func (tx *Tx) ownPayouts() {
	if tx.payoutsOwned {
		return
	}
	tx.next.payouts = maps.Clone(tx.base.payouts)
	tx.payoutsOwned = true
}

func (tx *Tx) ownTokens() {
	if tx.tokensOwned {
		return
	}
	tx.next.tokens = maps.Clone(tx.base.tokens)
	tx.tokensOwned = true
}

// batch collects what changed into one storage batch.
func (tx *Tx) batch() *storage.Batch {
	s := tx.next
	b := &storage.Batch{
		ID: tx.id,
		Header: storage.Header{
			Version:      s.version,
			Owner:        s.owner.Address(),
			Fee:          s.Fees(),
			TotalCreated: s.stats.TotalCreated(),
			TotalFees:    s.stats.TotalFeesCollected(),
			LastSeq:      s.lastSeq,
		},
		Records: append([]storage.Record(nil), tx.records...),
		Events:  tx.Events(),
	}
	for id, impl := range tx.templatePuts {
		b.TemplatePuts = append(b.TemplatePuts, registry.Template{ID: id, Implementation: impl})
	}
	for id := range tx.templateDeletes {
		b.TemplateDeletes = append(b.TemplateDeletes, id)
	}
	if len(tx.dirtyCreators) > 0 {
		b.CreatorCounts = make(map[common.Address]uint64, len(tx.dirtyCreators))
		for c := range tx.dirtyCreators {
			b.CreatorCounts[c] = s.stats.CreatedBy(c)
		}
	}
	if len(tx.dirtyPayouts) > 0 {
		b.Payouts = make(map[common.Address]*uint256.Int, len(tx.dirtyPayouts))
		for r := range tx.dirtyPayouts {
			b.Payouts[r] = s.Payout(r)
		}
	}
	for addr := range tx.dirtyTokens {
		b.Tokens = append(b.Tokens, s.tokens[addr].Snapshot())
	}
	sort.Slice(b.Tokens, func(i, j int) bool {
		return b.Tokens[i].Address.Hex() < b.Tokens[j].Address.Hex()
	})
	return b
}
