package token

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/XTakerDAO/token-factory-sub001/internal/apperrors"
)

var maxAllowance = new(uint256.Int).SetAllOne()

// Token is one clone of a blueprint. It starts uninitialized and receives
// its parameters exactly once through Initialize.
type Token struct {
	address        common.Address
	implementation common.Address
	initialized    bool

	name     string
	symbol   string
	decimals uint8
	owner    common.Address
	features Features

	maxSupply   *uint256.Int
	totalSupply *uint256.Int
	paused      bool

	balances   map[common.Address]*uint256.Int
	allowances map[common.Address]map[common.Address]*uint256.Int
}

// New returns an uninitialized clone living at address and delegating to implementation.
func New(address, implementation common.Address) *Token {
	return &Token{
		address:        address,
		implementation: implementation,
		maxSupply:      new(uint256.Int),
		totalSupply:    new(uint256.Int),
		balances:       map[common.Address]*uint256.Int{},
		allowances:     map[common.Address]map[common.Address]*uint256.Int{},
	}
}

// Initialize applies cfg and mints the initial supply to the initial owner.
// A second call fails with ALREADY_INITIALIZED.
func (t *Token) Initialize(cfg Config) error {
	if t.initialized {
		return apperrors.Newf(apperrors.CodeAlreadyInitialized, "token %s is already initialized", t.address.Hex())
	}
	if v := ValidateShape(cfg); !v.Valid {
		return v.Err()
	}

	t.name = cfg.Name
	t.symbol = cfg.Symbol
	t.decimals = cfg.Decimals
	t.owner = cfg.InitialOwner
	t.features = cfg.Features()
	if cfg.Capped {
		t.maxSupply = cloneAmount(cfg.MaxSupply)
	}
	t.initialized = true

	t.totalSupply = cloneAmount(cfg.TotalSupply)
	t.balances[cfg.InitialOwner] = cloneAmount(cfg.TotalSupply)
	return nil
}

// InitializeCalldata decodes initialize calldata and applies it.
func (t *Token) InitializeCalldata(data []byte) error {
	if t.initialized {
		return apperrors.Newf(apperrors.CodeAlreadyInitialized, "token %s is already initialized", t.address.Hex())
	}
	cfg, err := DecodeInit(data)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "decode initialize calldata", err)
	}
	return t.Initialize(cfg)
}

func (t *Token) Address() common.Address        { return t.address }
func (t *Token) Implementation() common.Address { return t.implementation }
func (t *Token) Initialized() bool              { return t.initialized }
func (t *Token) Name() string                   { return t.name }
func (t *Token) Symbol() string                 { return t.symbol }
func (t *Token) Decimals() uint8                { return t.decimals }
func (t *Token) Owner() common.Address          { return t.owner }
func (t *Token) Features() Features             { return t.features }
func (t *Token) Paused() bool                   { return t.paused }

func (t *Token) TotalSupply() *uint256.Int { return cloneAmount(t.totalSupply) }

// MaxSupply is zero for uncapped tokens.
func (t *Token) MaxSupply() *uint256.Int { return cloneAmount(t.maxSupply) }

func (t *Token) BalanceOf(holder common.Address) *uint256.Int {
	if b, ok := t.balances[holder]; ok {
		return cloneAmount(b)
	}
	return new(uint256.Int)
}

func (t *Token) Allowance(holder, spender common.Address) *uint256.Int {
	if a, ok := t.allowances[holder][spender]; ok {
		return cloneAmount(a)
	}
	return new(uint256.Int)
}

func (t *Token) Transfer(caller, to common.Address, amount *uint256.Int) error {
	if err := t.requireLive(); err != nil {
		return err
	}
	return t.move(caller, to, amountOrZero(amount))
}

func (t *Token) Approve(caller, spender common.Address, amount *uint256.Int) error {
	if !t.initialized {
		return apperrors.ErrNotInitialized
	}
	if spender == (common.Address{}) {
		return apperrors.New(apperrors.CodeZeroAddress, "spender must not be the zero address")
	}
	t.setAllowance(caller, spender, cloneAmount(amountOrZero(amount)))
	return nil
}

func (t *Token) TransferFrom(caller, from, to common.Address, amount *uint256.Int) error {
	if err := t.requireLive(); err != nil {
		return err
	}
	amount = amountOrZero(amount)
	if err := t.spendAllowance(from, caller, amount); err != nil {
		return err
	}
	return t.move(from, to, amount)
}

// Mint is owner-only, requires the mintable flag and respects the cap.
func (t *Token) Mint(caller, to common.Address, amount *uint256.Int) error {
	if err := t.requireFeature(t.features.Mintable, "mint"); err != nil {
		return err
	}
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if to == (common.Address{}) {
		return apperrors.New(apperrors.CodeZeroAddress, "mint recipient must not be the zero address")
	}
	if t.paused {
		return apperrors.ErrPaused
	}
	amount = amountOrZero(amount)

	next, overflow := new(uint256.Int).AddOverflow(t.totalSupply, amount)
	if overflow {
		return apperrors.ErrOverflow
	}
	if t.features.Capped && next.Gt(t.maxSupply) {
		return apperrors.Newf(apperrors.CodeCapExceeded, "supply %s would exceed cap %s", next.Dec(), t.maxSupply.Dec())
	}
	t.totalSupply = next
	t.credit(to, amount)
	return nil
}

// Burn destroys amount of the caller's own balance.
func (t *Token) Burn(caller common.Address, amount *uint256.Int) error {
	if err := t.requireFeature(t.features.Burnable, "burn"); err != nil {
		return err
	}
	if t.paused {
		return apperrors.ErrPaused
	}
	return t.destroy(caller, amountOrZero(amount))
}

// BurnFrom destroys amount of from's balance using the caller's allowance.
func (t *Token) BurnFrom(caller, from common.Address, amount *uint256.Int) error {
	if err := t.requireFeature(t.features.Burnable, "burn"); err != nil {
		return err
	}
	if t.paused {
		return apperrors.ErrPaused
	}
	amount = amountOrZero(amount)
	if err := t.spendAllowance(from, caller, amount); err != nil {
		return err
	}
	return t.destroy(from, amount)
}

func (t *Token) Pause(caller common.Address) error {
	if err := t.requireFeature(t.features.Pausable, "pause"); err != nil {
		return err
	}
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if t.paused {
		return apperrors.ErrPaused
	}
	t.paused = true
	return nil
}

func (t *Token) Unpause(caller common.Address) error {
	if err := t.requireFeature(t.features.Pausable, "unpause"); err != nil {
		return err
	}
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if !t.paused {
		return apperrors.ErrNotPaused
	}
	t.paused = false
	return nil
}

func (t *Token) TransferOwnership(caller, next common.Address) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if next == (common.Address{}) {
		return apperrors.New(apperrors.CodeZeroAddress, "new owner must not be the zero address")
	}
	t.owner = next
	return nil
}

// RenounceOwnership leaves the token without an owner; owner-only
// operations fail from then on.
func (t *Token) RenounceOwnership(caller common.Address) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	t.owner = common.Address{}
	return nil
}

// Clone returns a deep copy.
func (t *Token) Clone() *Token {
	out := *t
	out.maxSupply = cloneAmount(t.maxSupply)
	out.totalSupply = cloneAmount(t.totalSupply)
	out.balances = make(map[common.Address]*uint256.Int, len(t.balances))
	for k, v := range t.balances {
		out.balances[k] = cloneAmount(v)
	}
	out.allowances = make(map[common.Address]map[common.Address]*uint256.Int, len(t.allowances))
	for holder, spenders := range t.allowances {
		m := make(map[common.Address]*uint256.Int, len(spenders))
		for k, v := range spenders {
			m[k] = cloneAmount(v)
		}
		out.allowances[holder] = m
	}
	return &out
}

func (t *Token) requireLive() error {
	if !t.initialized {
		return apperrors.ErrNotInitialized
	}
	if t.paused {
		return apperrors.ErrPaused
	}
	return nil
}

func (t *Token) requireFeature(enabled bool, op string) error {
	if !t.initialized {
		return apperrors.ErrNotInitialized
	}
	if !enabled {
		return apperrors.Newf(apperrors.CodeFeatureDisabled, "%s is not enabled for %s", op, t.symbol)
	}
	return nil
}

func (t *Token) requireOwner(caller common.Address) error {
	if !t.initialized {
		return apperrors.ErrNotInitialized
	}
	if t.owner == (common.Address{}) || caller != t.owner {
		return apperrors.ErrUnauthorized
	}
	return nil
}

func (t *Token) move(from, to common.Address, amount *uint256.Int) error {
	if from == (common.Address{}) || to == (common.Address{}) {
		return apperrors.New(apperrors.CodeZeroAddress, "transfer endpoints must not be the zero address")
	}
	bal := t.BalanceOf(from)
	if bal.Lt(amount) {
		return apperrors.Newf(apperrors.CodeInsufficientBalance, "balance %s is below %s", bal.Dec(), amount.Dec())
	}
	t.setBalance(from, bal.Sub(bal, amount))
	t.credit(to, amount)
	return nil
}

func (t *Token) destroy(from common.Address, amount *uint256.Int) error {
	bal := t.BalanceOf(from)
	if bal.Lt(amount) {
		return apperrors.Newf(apperrors.CodeInsufficientBalance, "balance %s is below %s", bal.Dec(), amount.Dec())
	}
	t.setBalance(from, bal.Sub(bal, amount))
	t.totalSupply = new(uint256.Int).Sub(t.totalSupply, amount)
	return nil
}

func (t *Token) credit(to common.Address, amount *uint256.Int) {
	bal := t.BalanceOf(to)
	t.setBalance(to, bal.Add(bal, amount))
}

func (t *Token) setBalance(holder common.Address, v *uint256.Int) {
	if v.IsZero() {
		delete(t.balances, holder)
		return
	}
	t.balances[holder] = v
}

func (t *Token) spendAllowance(holder, spender common.Address, amount *uint256.Int) error {
	current := t.Allowance(holder, spender)
	if current.Eq(maxAllowance) {
		return nil
	}
	if current.Lt(amount) {
		return apperrors.Newf(apperrors.CodeInsufficientAllowance, "allowance %s is below %s", current.Dec(), amount.Dec())
	}
	t.setAllowance(holder, spender, current.Sub(current, amount))
	return nil
}

func (t *Token) setAllowance(holder, spender common.Address, v *uint256.Int) {
	spenders, ok := t.allowances[holder]
	if !ok {
		if v.IsZero() {
			return
		}
		spenders = map[common.Address]*uint256.Int{}
		t.allowances[holder] = spenders
	}
	if v.IsZero() {
		delete(spenders, spender)
		if len(spenders) == 0 {
			delete(t.allowances, holder)
		}
		return
	}
	spenders[spender] = v
}
