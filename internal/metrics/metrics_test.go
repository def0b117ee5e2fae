package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StakingLedger/internal/model"
)

func TestCounters(t *testing.T) {
	m := New()
	m.ObserveOperation("deposit")
	m.ObserveOperation("deposit")
	m.ObserveFailure("claim", "NothingToClaim")
	m.ObserveFailure("claim", "")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("deposit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("claim", "NothingToClaim")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("claim", "internal")))
}

func TestObservePool(t *testing.T) {
	m := New()
	staked := new(uint256.Int).Mul(uint256.NewInt(150), uint256.NewInt(1e18))
	m.ObservePool(&model.PoolState{TotalStaked: *staked, Participants: 3})

	assert.InDelta(t, 150.0, testutil.ToFloat64(m.totalStaked), 1e-9)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.rewardBalance))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.participants))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveOperation("claim")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `stakingledger_operations_total{op="claim"} 1`)
	assert.Contains(t, string(body), "stakingledger_participants")
}
