package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StakingLedger/internal/rate"
	"StakingLedger/internal/staking"
	"StakingLedger/internal/token"
)

var (
	custody = common.HexToAddress("0x0000000000000000000000000000000000005a4e")
	alice   = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	funder  = common.HexToAddress("0x000000000000000000000000000000000000f00d")
)

func tokens(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1e18))
}

type env struct {
	ledger *staking.Ledger
	stake  *token.MemToken
	reward *token.MemToken
	now    int64
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{stake: token.NewMemToken("STK"), reward: token.NewMemToken("RWD"), now: 1000}
	l, err := staking.New(staking.Config{
		Custody:    custody,
		StakingEnd: 1365,
		Schedule:   rate.Default(1),
	}, e.stake, e.reward, staking.WithClock(func() time.Time { return time.Unix(e.now, 0) }))
	require.NoError(t, err)
	e.ledger = l
	return e
}

func TestSaveLoadRoundTrip(t *testing.T) {
	src := newEnv(t)
	require.NoError(t, src.stake.Mint(alice, tokens(500)))
	src.stake.Approve(alice, custody, tokens(500))
	require.NoError(t, src.reward.Mint(funder, tokens(1000)))
	src.reward.Approve(funder, custody, tokens(1000))

	_, err := src.ledger.Deposit(alice, tokens(200))
	require.NoError(t, err)
	_, err = src.ledger.FundRewards(funder, tokens(1000))
	require.NoError(t, err)
	src.now += 100

	path := filepath.Join(t.TempDir(), "nested", "state.json")
	require.NoError(t, Save(path, Capture(src.ledger, src.stake, src.reward)))
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file is renamed away")

	f, err := Load(path)
	require.NoError(t, err)
	require.False(t, f.Empty())

	dst := newEnv(t)
	dst.now = src.now
	require.NoError(t, f.Apply(dst.ledger, dst.stake, dst.reward))

	assert.Equal(t, src.ledger.UserInfo(alice), dst.ledger.UserInfo(alice))
	assert.Equal(t, src.ledger.Pool(), dst.ledger.Pool())
	assert.Equal(t, tokens(300), dst.stake.BalanceOf(alice))
	assert.Equal(t, tokens(300), dst.stake.Allowance(alice, custody))
	assert.Equal(t, tokens(1000), dst.reward.BalanceOf(custody))

	srcPos, err := src.ledger.Position(alice)
	require.NoError(t, err)
	dstPos, err := dst.ledger.Position(alice)
	require.NoError(t, err)
	assert.Equal(t, srcPos, dstPos)
}

func TestLoadMissingFile(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.True(t, f.Empty())

	e := newEnv(t)
	require.NoError(t, f.Apply(e.ledger, e.stake, e.reward))
	assert.Empty(t, e.ledger.Users())
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyRejectsInconsistentLedger(t *testing.T) {
	e := newEnv(t)
	f := &File{
		Ledger: &staking.State{
			TotalStaked: "5",
			Users: map[string]staking.UserState{
				alice.Hex(): {AmountStaked: "4"},
			},
		},
		Stake: &token.State{Symbol: "STK", Supply: "1", Balances: map[string]string{alice.Hex(): "1"}},
	}
	require.Error(t, f.Apply(e.ledger, e.stake, e.reward))
	assert.True(t, e.stake.BalanceOf(alice).IsZero(), "tokens untouched when the ledger is rejected")
}
