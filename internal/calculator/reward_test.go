package calculator

import (
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StakingLedger/internal/model"
	"StakingLedger/internal/rate"
)

func TestElapsed(t *testing.T) {
	tests := []struct {
		checkpoint, now, end, want int64
	}{
		{0, 30, 365, 30},
		{10, 30, 365, 20},
		{10, 400, 365, 355},
		{30, 30, 365, 0},
		{400, 500, 365, 0},
		{50, 40, 365, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Elapsed(tt.checkpoint, tt.now, tt.end), "%+v", tt)
	}
}

func TestPendingReward_Exact(t *testing.T) {
	// 365 units at 10% for a full year is 36.5, floored to 36.
	got, err := PendingReward(uint256.NewInt(365), 1000, 365, 365)
	require.NoError(t, err)
	assert.Equal(t, uint64(36), got.Uint64())

	got, err = PendingReward(uint256.NewInt(1e18), 300, 31536000, 31536000)
	require.NoError(t, err)
	assert.Equal(t, uint64(3e16), got.Uint64())
}

func TestPendingReward_Zero(t *testing.T) {
	for _, tc := range []struct {
		amount  uint64
		bps     uint64
		elapsed int64
	}{
		{0, 300, 10},
		{10, 0, 10},
		{10, 300, 0},
		{10, 300, -5},
	} {
		got, err := PendingReward(uint256.NewInt(tc.amount), tc.bps, tc.elapsed, 365)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	}
}

func TestPendingReward_Overflow(t *testing.T) {
	huge := new(uint256.Int).SetAllOne()
	_, err := PendingReward(huge, 300, 10, 365)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestPendingReward_MonotonicInTime(t *testing.T) {
	amount := new(uint256.Int).Mul(uint256.NewInt(90), uint256.NewInt(1e18))
	prev := new(uint256.Int)
	for elapsed := int64(1); elapsed <= 365; elapsed += 7 {
		got, err := PendingReward(amount, 300, elapsed, 365)
		require.NoError(t, err)
		assert.True(t, got.Gt(prev), "elapsed %d", elapsed)
		prev = got
	}
}

func TestAccrue_UsesScheduleAndClamp(t *testing.T) {
	s := rate.Default(1)
	amount := new(uint256.Int).Mul(uint256.NewInt(90), uint256.NewInt(1e18))

	a, err := Accrue(s, amount, amount, 100, 190, 365)
	require.NoError(t, err)
	assert.Equal(t, int64(90), a.Elapsed)
	assert.Equal(t, uint64(500), a.RateBps)

	want, err := PendingReward(amount, 500, 90, 365)
	require.NoError(t, err)
	assert.True(t, want.Eq(&a.Reward))

	// window truncated at the pool end
	a, err = Accrue(s, amount, amount, 350, 1000, 365)
	require.NoError(t, err)
	assert.Equal(t, int64(15), a.Elapsed)
	assert.Equal(t, uint64(300), a.RateBps)
}

func TestNotional(t *testing.T) {
	amount := new(uint256.Int).Mul(uint256.NewInt(150), uint256.NewInt(1e18))
	price := &model.Price{Value: *uint256.NewInt(99_500_000), Decimals: 8}

	got, err := Notional(amount, price)
	require.NoError(t, err)
	want := new(uint256.Int).Mul(uint256.NewInt(14925), uint256.NewInt(1e16))
	assert.True(t, want.Eq(got), "got %s", got.Dec())
}

func TestNotional_RejectsOversizedDecimals(t *testing.T) {
	amount := uint256.NewInt(1)
	_, err := Notional(amount, &model.Price{Value: *uint256.NewInt(1), Decimals: 77})
	require.NoError(t, err)

	_, err = Notional(amount, &model.Price{Value: *uint256.NewInt(1), Decimals: 78})
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestProject(t *testing.T) {
	s := rate.Default(1)
	amount := new(uint256.Int).Mul(uint256.NewInt(150), uint256.NewInt(1e18))

	p, err := Project(s, amount, amount, 0, 90, 365)
	require.NoError(t, err)
	assert.Equal(t, int64(90), p.Seconds)
	assert.Equal(t, uint64(700), p.Breakdown.Total())

	p, err = Project(s, amount, amount, 300, 200, 365)
	require.NoError(t, err)
	assert.Equal(t, int64(65), p.Seconds)
	assert.Equal(t, uint64(700), p.Breakdown.Total())
}

func TestProject_HugeHorizonClampsToEnd(t *testing.T) {
	s := rate.Default(1)
	amount := new(uint256.Int).Mul(uint256.NewInt(150), uint256.NewInt(1e18))

	capped, err := Project(s, amount, amount, 0, 10_000, 365)
	require.NoError(t, err)
	p, err := Project(s, amount, amount, 0, math.MaxInt64, 365)
	require.NoError(t, err)
	assert.Equal(t, int64(365), p.Seconds)
	assert.Equal(t, uint64(1200), p.Breakdown.Total())
	assert.False(t, p.Reward.IsZero())
	assert.True(t, capped.Reward.Eq(&p.Reward))

	p, err = Project(s, amount, amount, 400, math.MaxInt64, 365)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.Seconds)
	assert.True(t, p.Reward.IsZero())
}
