package calculator

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"StakingLedger/internal/model"
	"StakingLedger/internal/rate"
)

// ErrOverflow is returned when an intermediate product exceeds 256 bits.
var ErrOverflow = errors.New("reward calculation overflows uint256")

// PendingReward computes amount * rateBps * elapsed / (yearSeconds * 10000), rounded down.
// All multiplications happen before the single division.
func PendingReward(amount *uint256.Int, rateBps uint64, elapsed, yearSeconds int64) (*uint256.Int, error) {
	if amount.IsZero() || rateBps == 0 || elapsed <= 0 {
		return new(uint256.Int), nil
	}
	if yearSeconds <= 0 {
		return nil, errors.New("year seconds must be positive")
	}
	num, overflow := new(uint256.Int).MulOverflow(amount, uint256.NewInt(rateBps))
	if overflow {
		return nil, ErrOverflow
	}
	if _, overflow = num.MulOverflow(num, uint256.NewInt(uint64(elapsed))); overflow {
		return nil, ErrOverflow
	}
	den := new(uint256.Int).Mul(uint256.NewInt(uint64(yearSeconds)), uint256.NewInt(rate.BasisPoints))
	return num.Div(num, den), nil
}

// Accrual is the settled result of one window.
type Accrual struct {
	Elapsed int64
	RateBps uint64
	Reward  uint256.Int
}

// Accrue evaluates the reward of a stake over (checkpoint, min(now, end)).
// qualifying is the amount compared against the schedule's amount bands; it is usually the stake itself.
func Accrue(s rate.Schedule, amount, qualifying *uint256.Int, checkpoint, now, end int64) (Accrual, error) {
	elapsed := Elapsed(checkpoint, now, end)
	bps := s.Rate(elapsed, qualifying)
	reward, err := PendingReward(amount, bps, elapsed, s.YearSeconds)
	if err != nil {
		return Accrual{}, err
	}
	return Accrual{Elapsed: elapsed, RateBps: bps, Reward: *reward}, nil
}

// maxDecimals is the largest exponent with 10^n below 2^256.
const maxDecimals = 77

// Notional values amount at price: amount * price / 10^decimals.
func Notional(amount *uint256.Int, price *model.Price) (*uint256.Int, error) {
	if price.Decimals > maxDecimals {
		return nil, ErrOverflow
	}
	out, overflow := new(uint256.Int).MulOverflow(amount, &price.Value)
	if overflow {
		return nil, ErrOverflow
	}
	scale := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(price.Decimals)))
	return out.Div(out, scale), nil
}
