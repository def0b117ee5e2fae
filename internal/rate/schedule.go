package rate

import (
	"sort"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// BasisPoints is the denominator of every rate in this package.
const BasisPoints = 10000

// DurationBand grants BonusBps once a stake has been held for at least MinSeconds.
type DurationBand struct {
	Label      string
	MinSeconds int64
	BonusBps   uint64
}

// AmountBand grants BonusBps once the staked amount reaches MinAmount.
type AmountBand struct {
	Label     string
	MinAmount uint256.Int
	BonusBps  uint64
}

// Schedule maps (elapsed, amount) to an annual rate in basis points.
// Bands are inclusive at their lower bound; the highest qualifying band of each kind applies
// and the two bonuses are added to the base rate.
type Schedule struct {
	BaseBps     uint64
	YearSeconds int64
	Duration    []DurationBand // sorted by MinSeconds, descending
	Amount      []AmountBand   // sorted by MinAmount, descending
}

// NewSchedule builds a schedule and orders its bands for first-match lookup.
func NewSchedule(baseBps uint64, yearSeconds int64, duration []DurationBand, amount []AmountBand) (Schedule, error) {
	s := Schedule{
		BaseBps:     baseBps,
		YearSeconds: yearSeconds,
		Duration:    append([]DurationBand(nil), duration...),
		Amount:      append([]AmountBand(nil), amount...),
	}
	sort.Slice(s.Duration, func(i, j int) bool { return s.Duration[i].MinSeconds > s.Duration[j].MinSeconds })
	sort.Slice(s.Amount, func(i, j int) bool { return s.Amount[i].MinAmount.Gt(&s.Amount[j].MinAmount) })
	if err := s.Validate(); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

// Default returns the stock schedule with one day lasting daySeconds:
// 3% base, +2% from 60 days, +4% from 180 days, +7% from 365 days, +2% from 100 tokens (18 decimals).
func Default(daySeconds int64) Schedule {
	hundredTokens := new(uint256.Int).Mul(uint256.NewInt(100), uint256.NewInt(1e18))
	s, _ := NewSchedule(300, 365*daySeconds,
		[]DurationBand{
			{Label: "2 months", MinSeconds: 60 * daySeconds, BonusBps: 200},
			{Label: "6 months", MinSeconds: 180 * daySeconds, BonusBps: 400},
			{Label: "12 months", MinSeconds: 365 * daySeconds, BonusBps: 700},
		},
		[]AmountBand{
			{Label: "100+ tokens", MinAmount: *hundredTokens, BonusBps: 200},
		},
	)
	return s
}

// Validate checks the schedule is usable.
func (s Schedule) Validate() error {
	if s.YearSeconds <= 0 {
		return errors.Errorf("year seconds must be positive, got %d", s.YearSeconds)
	}
	for i, b := range s.Duration {
		if b.MinSeconds < 0 {
			return errors.Errorf("duration band %q: negative threshold", b.Label)
		}
		if i > 0 && s.Duration[i-1].MinSeconds == b.MinSeconds {
			return errors.Errorf("duration band %q: duplicate threshold %d", b.Label, b.MinSeconds)
		}
	}
	for i, b := range s.Amount {
		if i > 0 && s.Amount[i-1].MinAmount.Eq(&b.MinAmount) {
			return errors.Errorf("amount band %q: duplicate threshold %s", b.Label, b.MinAmount.Dec())
		}
	}
	return nil
}

// Breakdown itemizes the rate applied to one accrual window.
type Breakdown struct {
	BaseBps       uint64
	DurationBps   uint64
	DurationLabel string
	AmountBps     uint64
	AmountLabel   string
}

// Total is the effective annual rate in basis points.
func (b Breakdown) Total() uint64 {
	return b.BaseBps + b.DurationBps + b.AmountBps
}

// Explain returns the itemized rate for a window of elapsed seconds on amount.
func (s Schedule) Explain(elapsed int64, amount *uint256.Int) Breakdown {
	b := Breakdown{BaseBps: s.BaseBps}
	for _, d := range s.Duration {
		if elapsed >= d.MinSeconds {
			b.DurationBps, b.DurationLabel = d.BonusBps, d.Label
			break
		}
	}
	for _, a := range s.Amount {
		if !amount.Lt(&a.MinAmount) {
			b.AmountBps, b.AmountLabel = a.BonusBps, a.Label
			break
		}
	}
	return b
}

// Rate returns the effective annual rate in basis points.
func (s Schedule) Rate(elapsed int64, amount *uint256.Int) uint64 {
	return s.Explain(elapsed, amount).Total()
}
