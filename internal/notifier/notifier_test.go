package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StakingLedger/internal/model"
)

func tokens(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1e18))
}

func TestSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("token", "42", "")
	n.APIBase = srv.URL
	require.NoError(t, n.Send("hello"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "hello", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestSendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("token", "42", "")
	n.APIBase = srv.URL
	err := n.Send("hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestSendWithRetry(t *testing.T) {
	attempts := 0
	send := func(string) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}
	require.NoError(t, sendWithRetry(context.Background(), send, "x", 3, time.Millisecond))
	assert.Equal(t, 3, attempts)

	attempts = 0
	fail := func(string) error { attempts++; return errors.New("down") }
	err := sendWithRetry(context.Background(), fail, "x", 2, time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "all 3 retries exhausted")
}

func TestSendWithRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sendWithRetry(ctx, func(string) error { return errors.New("down") }, "x", 5, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPollDispatchesCommands(t *testing.T) {
	var mu sync.Mutex
	var sent []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bottoken/getUpdates":
			assert.Equal(t, "5", r.URL.Query().Get("offset"))
			fmt.Fprint(w, `{"ok":true,"result":[
				{"update_id":5,"message":{"text":" /pool "}},
				{"update_id":6},
				{"update_id":7,"message":{"text":"/help"}}]}`)
		case "/bottoken/sendMessage":
			var p map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			mu.Lock()
			sent = append(sent, p["text"])
			mu.Unlock()
			fmt.Fprint(w, `{"ok":true}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	n := NewTelegramNotifier("token", "42", "")
	n.APIBase = srv.URL

	var commands []string
	next, err := n.poll(context.Background(), n.Client, 5, func(cmd string) string {
		commands = append(commands, cmd)
		return "reply to " + cmd
	})
	require.NoError(t, err)
	assert.Equal(t, 8, next)
	assert.Equal(t, []string{"/pool", "/help"}, commands)
	assert.Equal(t, []string{"reply to /pool", "reply to /help"}, sent)
}

func TestFormatPoolStatus(t *testing.T) {
	now := time.Unix(1000, 0)
	pool := &model.PoolState{
		TotalStaked:   *tokens(150),
		RewardBalance: *tokens(1000),
		StakingEnd:    now.Add(48 * time.Hour).Unix(),
		Participants:  2,
	}
	msg := FormatPoolStatus(pool, tokens(3), now)
	assert.Contains(t, msg, "Total staked: 150")
	assert.Contains(t, msg, "Reward balance: 1000")
	assert.Contains(t, msg, "Unpaid rewards: 3")
	assert.Contains(t, msg, "Participants: 2")
	assert.Contains(t, msg, "in 48h0m0s")

	closed := FormatPoolStatus(pool, tokens(3), now.Add(72*time.Hour))
	assert.Contains(t, closed, "Staking ended")
}

func TestFormatUserStatus(t *testing.T) {
	addr := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	empty := FormatUserStatus(&UserStatus{Address: addr, Pending: new(uint256.Int), Claimable: new(uint256.Int)})
	assert.Contains(t, empty, "No staking record")

	msg := FormatUserStatus(&UserStatus{
		Address:   addr,
		Info:      model.UserInfo{AmountStaked: *tokens(100), DepositTimestamp: 1000, RewardEarned: *tokens(1)},
		Pending:   tokens(2),
		RateBps:   500,
		Elapsed:   61,
		Claimable: tokens(3),
	})
	assert.Contains(t, msg, addr.Hex())
	assert.Contains(t, msg, "Staked: 100")
	assert.Contains(t, msg, "5.00% APR")
	assert.Contains(t, msg, "Claimable: 3")
}

func TestFormatRunwayAlert(t *testing.T) {
	msg := FormatRunwayAlert(tokens(5), tokens(10), tokens(8))
	assert.Contains(t, msg, "Reward balance: 5")
	assert.Contains(t, msg, "Alert threshold: 10")
	assert.Contains(t, msg, "Shortfall: 3")

	msg = FormatRunwayAlert(tokens(9), nil, tokens(8))
	assert.NotContains(t, msg, "Shortfall")
	assert.NotContains(t, msg, "threshold")
}

func TestFormatPrice(t *testing.T) {
	assert.Contains(t, FormatPrice(&model.Price{}, false), "No price")
	p := &model.Price{Value: *uint256.NewInt(99990000), Decimals: 8, Source: "mock", Timestamp: 1}
	assert.Contains(t, FormatPrice(p, true), "0.999900 (mock)")
}

func TestNoopNotifier(t *testing.T) {
	var n Notifier = NewNoopNotifier()
	assert.NoError(t, n.Send("x"))
	assert.NoError(t, n.SendWithRetry(context.Background(), "x", 3))
}
