package token

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// MemToken is an in-memory ERC20-style token.
type MemToken struct {
	mu         sync.RWMutex
	symbol     string
	supply     uint256.Int
	balances   map[common.Address]*uint256.Int
	allowances map[common.Address]map[common.Address]*uint256.Int
}

// NewMemToken creates an empty token.
func NewMemToken(symbol string) *MemToken {
	return &MemToken{
		symbol:     symbol,
		balances:   make(map[common.Address]*uint256.Int),
		allowances: make(map[common.Address]map[common.Address]*uint256.Int),
	}
}

func (t *MemToken) Symbol() string { return t.symbol }

// TotalSupply returns the minted supply.
func (t *MemToken) TotalSupply() *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.supply.Clone()
}

func (t *MemToken) BalanceOf(owner common.Address) *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if b, ok := t.balances[owner]; ok {
		return b.Clone()
	}
	return new(uint256.Int)
}

// Allowance returns what spender may still move out of owner's balance.
func (t *MemToken) Allowance(owner, spender common.Address) *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if a, ok := t.allowances[owner][spender]; ok {
		return a.Clone()
	}
	return new(uint256.Int)
}

// Approve sets spender's allowance over owner's balance, replacing any previous value.
func (t *MemToken) Approve(owner, spender common.Address, amount *uint256.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.allowances[owner]
	if !ok {
		m = make(map[common.Address]*uint256.Int)
		t.allowances[owner] = m
	}
	m[spender] = amount.Clone()
}

// Mint credits amount to owner.
func (t *MemToken) Mint(owner common.Address, amount *uint256.Int) error {
	if owner == (common.Address{}) {
		return ErrZeroAddress
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	supply, overflow := new(uint256.Int).AddOverflow(&t.supply, amount)
	if overflow {
		return errors.New("total supply overflows uint256")
	}
	t.supply = *supply
	t.credit(owner, amount)
	return nil
}

func (t *MemToken) Transfer(sender, to common.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.move(sender, to, amount)
}

func (t *MemToken) TransferFrom(spender, from, to common.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	allowance, ok := t.allowances[from][spender]
	if !ok || allowance.Lt(amount) {
		return errors.Wrapf(ErrInsufficientAllowance, "%s allowance of %s", t.symbol, spender.Hex())
	}
	if err := t.move(from, to, amount); err != nil {
		return err
	}
	allowance.Sub(allowance, amount)
	return nil
}

func (t *MemToken) move(from, to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	bal, ok := t.balances[from]
	if !ok || bal.Lt(amount) {
		return errors.Wrapf(ErrInsufficientBalance, "%s balance of %s", t.symbol, from.Hex())
	}
	bal.Sub(bal, amount)
	t.credit(to, amount)
	return nil
}

func (t *MemToken) credit(owner common.Address, amount *uint256.Int) {
	if b, ok := t.balances[owner]; ok {
		b.Add(b, amount)
		return
	}
	t.balances[owner] = amount.Clone()
}
