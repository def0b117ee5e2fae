package token

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// State is the serializable form of a MemToken. Amounts are decimal strings.
type State struct {
	Symbol     string                       `json:"symbol"`
	Supply     string                       `json:"supply"`
	Balances   map[string]string            `json:"balances"`
	Allowances map[string]map[string]string `json:"allowances,omitempty"`
}

// Snapshot captures the token's balances and allowances.
func (t *MemToken) Snapshot() *State {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := &State{
		Symbol:     t.symbol,
		Supply:     t.supply.Dec(),
		Balances:   make(map[string]string, len(t.balances)),
		Allowances: make(map[string]map[string]string, len(t.allowances)),
	}
	for addr, b := range t.balances {
		s.Balances[addr.Hex()] = b.Dec()
	}
	for owner, m := range t.allowances {
		inner := make(map[string]string, len(m))
		for spender, a := range m {
			inner[spender.Hex()] = a.Dec()
		}
		s.Allowances[owner.Hex()] = inner
	}
	return s
}

// Restore replaces the token's contents with s.
func (t *MemToken) Restore(s *State) error {
	supply, err := uint256.FromDecimal(s.Supply)
	if err != nil {
		return errors.Wrap(err, "parse supply")
	}
	balances := make(map[common.Address]*uint256.Int, len(s.Balances))
	for addr, v := range s.Balances {
		b, err := uint256.FromDecimal(v)
		if err != nil {
			return errors.Wrapf(err, "parse balance of %s", addr)
		}
		balances[common.HexToAddress(addr)] = b
	}
	allowances := make(map[common.Address]map[common.Address]*uint256.Int, len(s.Allowances))
	for owner, m := range s.Allowances {
		inner := make(map[common.Address]*uint256.Int, len(m))
		for spender, v := range m {
			a, err := uint256.FromDecimal(v)
			if err != nil {
				return errors.Wrapf(err, "parse allowance %s/%s", owner, spender)
			}
			inner[common.HexToAddress(spender)] = a
		}
		allowances[common.HexToAddress(owner)] = inner
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if s.Symbol != "" {
		t.symbol = s.Symbol
	}
	t.supply = *supply
	t.balances = balances
	t.allowances = allowances
	return nil
}
