package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StakingLedger/internal/rate"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, int64(86400), cfg.Pool.DaySeconds)
	assert.Equal(t, "mock", cfg.Oracle.Kind)
	assert.Equal(t, 1.0, cfg.Oracle.MockPrice)
	assert.Equal(t, "0 */5 * * * *", cfg.Schedule.PriceCron)
	assert.Equal(t, "localhost:8669", cfg.API.Addr)
	assert.Equal(t, common.HexToAddress(DefaultCustody), cfg.CustodyAddress())
	assert.Equal(t, common.Address{}, cfg.OracleAddress())
	assert.False(t, cfg.TelegramEnabled())

	// staking_end has no default
	assert.EqualError(t, cfg.Validate(), "pool.staking_end is required")
}

func TestLoadYAMLAndEnv(t *testing.T) {
	path := writeConfig(t, `
pool:
  staking_end: 1700000000
  day_seconds: 1
  oracle: "0x8fFfFfd4AfB6115b954Bd326cbe7B4BA576818f6"
oracle:
  kind: chainlink
  rpc_url: http://localhost:8545
telegram:
  bot_token: from-file
alerts:
  min_reward_balance: "250.5"
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("API_ADDR", ":9000")
	t.Setenv("STAKING_END", "1800000000")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "from-env", cfg.Telegram.BotToken)
	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, ":9000", cfg.API.Addr)
	assert.Equal(t, int64(1800000000), cfg.Pool.StakingEnd)
	assert.Equal(t, common.HexToAddress("0x8fFfFfd4AfB6115b954Bd326cbe7B4BA576818f6"), cfg.OracleAddress())

	threshold, err := cfg.MinRewardBalance()
	require.NoError(t, err)
	assert.Equal(t, "250500000000000000000", threshold.Dec())

	s, err := cfg.RateSchedule()
	require.NoError(t, err)
	assert.Equal(t, rate.Default(1), s)
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("DAY_SECONDS", "one")
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCustomRateSchedule(t *testing.T) {
	path := writeConfig(t, `
pool:
  staking_end: 100
  day_seconds: 10
rates:
  base_bps: 100
  duration_bands:
    - {label: short, days: 1, bonus_bps: 50}
    - {label: long, days: 30, bonus_bps: 150}
  amount_bands:
    - {label: whale, min_tokens: "1000", bonus_bps: 25}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	s, err := cfg.RateSchedule()
	require.NoError(t, err)
	assert.Equal(t, uint64(100), s.BaseBps)
	assert.Equal(t, int64(3650), s.YearSeconds)
	require.Len(t, s.Duration, 2)
	assert.Equal(t, "long", s.Duration[0].Label)
	assert.Equal(t, int64(300), s.Duration[0].MinSeconds)
	require.Len(t, s.Amount, 1)
	assert.Equal(t, "1000000000000000000000", s.Amount[0].MinAmount.Dec())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(c *Config) {}, ""},
		{"bad custody", func(c *Config) { c.Pool.Custody = "nope" }, "pool.custody"},
		{"same symbols", func(c *Config) { c.Pool.RewardSymbol = "stk" }, "must differ"},
		{"unknown oracle", func(c *Config) { c.Oracle.Kind = "pyth" }, "oracle.kind"},
		{"chainlink without rpc", func(c *Config) { c.Oracle.Kind = "chainlink" }, "oracle.rpc_url"},
		{"http without url", func(c *Config) { c.Oracle.Kind = "http" }, "oracle.base_url"},
		{"bad threshold", func(c *Config) { c.Alerts.MinRewardBalance = "x" }, "alerts.min_reward_balance"},
		{"duplicate bands", func(c *Config) {
			c.Rates.DurationBands = []DurationBand{{Label: "a", Days: 1}, {Label: "b", Days: 1}}
		}, "duplicate threshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			require.NoError(t, err)
			cfg.Pool.StakingEnd = 1
			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
