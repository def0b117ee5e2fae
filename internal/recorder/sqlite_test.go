package recorder

import (
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StakingLedger/internal/model"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRecordReceipt(t *testing.T) {
	r := openTestRecorder(t)

	hundred, _ := uint256.FromDecimal("100000000000000000000") // exceeds int64
	rc := &model.Receipt{
		Seq:         3,
		Kind:        model.KindDeposit,
		User:        common.HexToAddress("0x00000000000000000000000000000000000000a1"),
		Amount:      *hundred,
		Reward:      *uint256.NewInt(12),
		RateBps:     500,
		Timestamp:   1700000000,
		TotalStaked: *hundred,
	}
	require.NoError(t, r.RecordReceipt(rc))

	var (
		seq             int64
		kind, user, amt string
		reward, total   string
		rateBps, ts     int64
	)
	row := r.db.QueryRow(`SELECT seq, kind, user, amount, reward, rate_bps, timestamp, total_staked FROM staking_events`)
	require.NoError(t, row.Scan(&seq, &kind, &user, &amt, &reward, &rateBps, &ts, &total))
	assert.Equal(t, int64(3), seq)
	assert.Equal(t, "DEPOSIT", kind)
	assert.Equal(t, rc.User.Hex(), user)
	assert.Equal(t, "100000000000000000000", amt)
	assert.Equal(t, "12", reward)
	assert.Equal(t, int64(500), rateBps)
	assert.Equal(t, int64(1700000000), ts)
	assert.Equal(t, "100000000000000000000", total)
}

func TestRecordPriceAndSnapshot(t *testing.T) {
	r := openTestRecorder(t)

	require.NoError(t, r.RecordPrice(&model.Price{
		Value: *uint256.NewInt(99990000), Decimals: 8, Timestamp: 160, Source: "mock",
	}))
	require.NoError(t, r.RecordPoolSnapshot(&PoolSnapshot{
		Pool: model.PoolState{
			TotalStaked:   *uint256.NewInt(10),
			RewardBalance: *uint256.NewInt(20),
			StakingEnd:    999,
			Participants:  2,
			Seq:           5,
		},
		TotalPending: "7",
	}))

	var price float64
	var value string
	require.NoError(t, r.db.QueryRow(`SELECT value, price FROM price_samples`).Scan(&value, &price))
	assert.Equal(t, "99990000", value)
	assert.InDelta(t, 0.9999, price, 1e-9)

	var staked, pending string
	var participants int
	require.NoError(t, r.db.QueryRow(`SELECT total_staked, total_pending, participants FROM pool_snapshots`).
		Scan(&staked, &pending, &participants))
	assert.Equal(t, "10", staked)
	assert.Equal(t, "7", pending)
	assert.Equal(t, 2, participants)
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	r, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.Close())
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordReceipt(&model.Receipt{}))
	assert.NoError(t, r.RecordPrice(&model.Price{}))
	assert.NoError(t, r.RecordPoolSnapshot(&PoolSnapshot{}))
	assert.NoError(t, r.Close())
}
