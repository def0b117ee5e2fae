package token

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var (
	ErrInsufficientBalance   = errors.New("transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("transfer amount exceeds allowance")
	ErrZeroAddress           = errors.New("transfer to the zero address")
)

// Token is the fungible-token surface the staking ledger consumes.
// Every call is all-or-nothing: a returned error means no balance moved.
type Token interface {
	Symbol() string
	BalanceOf(owner common.Address) *uint256.Int
	// Transfer moves amount from the sender's own balance.
	Transfer(sender, to common.Address, amount *uint256.Int) error
	// TransferFrom moves amount from `from` on behalf of spender, consuming allowance.
	TransferFrom(spender, from, to common.Address, amount *uint256.Int) error
}
