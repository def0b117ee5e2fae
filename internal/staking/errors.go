package staking

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error codes surfaced by ledger operations.
const (
	CodeInvalidAmount          = "InvalidAmount"
	CodePoolClosed             = "PoolClosed"
	CodeInsufficientStake      = "InsufficientStake"
	CodeNothingToClaim         = "NothingToClaim"
	CodeInsufficientRewardPool = "InsufficientRewardPool"
	CodeTransferFailed         = "TransferFailed"
)

// Error is a ledger failure tagged with a stable code.
// Two errors match under errors.Is when their codes are equal.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

var (
	ErrInvalidAmount          = newError(CodeInvalidAmount, "amount must be positive", nil)
	ErrPoolClosed             = newError(CodePoolClosed, "staking has ended", nil)
	ErrInsufficientStake      = newError(CodeInsufficientStake, "amount exceeds staked balance", nil)
	ErrNothingToClaim         = newError(CodeNothingToClaim, "no reward due", nil)
	ErrInsufficientRewardPool = newError(CodeInsufficientRewardPool, "reward pool cannot cover payout", nil)
	ErrTransferFailed         = newError(CodeTransferFailed, "token transfer failed", nil)
)

// Code returns the ledger error code carried by err, or "" if there is none.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
