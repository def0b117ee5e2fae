package calculator

import (
	"github.com/holiman/uint256"

	"StakingLedger/internal/rate"
)

// Projection is the expected outcome of staking amount from start for a number of seconds.
type Projection struct {
	Seconds   int64 // effective seconds, clamped to the pool end
	Breakdown rate.Breakdown
	Reward    uint256.Int
}

// Project estimates the reward of a fresh stake held without intermediate claims.
// qualifying is matched against amount bands, as in Accrue.
func Project(s rate.Schedule, amount, qualifying *uint256.Int, start, seconds, end int64) (Projection, error) {
	if seconds < 0 {
		seconds = 0
	}
	if remaining := end - start; remaining < seconds {
		seconds = max(remaining, 0)
	}
	elapsed := Elapsed(start, start+seconds, end)
	b := s.Explain(elapsed, qualifying)
	reward, err := PendingReward(amount, b.Total(), elapsed, s.YearSeconds)
	if err != nil {
		return Projection{}, err
	}
	return Projection{Seconds: elapsed, Breakdown: b, Reward: *reward}, nil
}
