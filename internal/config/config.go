package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"StakingLedger/internal/model"
	"StakingLedger/internal/rate"
)

// DefaultCustody holds pool funds when no custody address is configured.
const DefaultCustody = "0x000000000000000000000000000000005374616b"

// DurationBand is a duration bonus expressed in days.
type DurationBand struct {
	Label    string `yaml:"label"`
	Days     int64  `yaml:"days"`
	BonusBps uint64 `yaml:"bonus_bps"`
}

// AmountBand is an amount bonus expressed in whole tokens, e.g. "100" or "2.5".
type AmountBand struct {
	Label     string `yaml:"label"`
	MinTokens string `yaml:"min_tokens"`
	BonusBps  uint64 `yaml:"bonus_bps"`
}

// Config holds all application configuration.
type Config struct {
	Pool struct {
		Custody               string `yaml:"custody"`
		Oracle                string `yaml:"oracle"` // price aggregator address, read only
		StakingEnd            int64  `yaml:"staking_end"`
		DaySeconds            int64  `yaml:"day_seconds"`
		StakeSymbol           string `yaml:"stake_symbol"`
		RewardSymbol          string `yaml:"reward_symbol"`
		PriceDenominatedBonus bool   `yaml:"price_denominated_bonus"`
		MaxPriceAge           int64  `yaml:"max_price_age"` // seconds
	} `yaml:"pool"`
	Rates struct {
		BaseBps       *uint64        `yaml:"base_bps"`
		DurationBands []DurationBand `yaml:"duration_bands"`
		AmountBands   []AmountBand   `yaml:"amount_bands"`
	} `yaml:"rates"`
	Oracle struct {
		Kind      string  `yaml:"kind"` // chainlink, http, yahoo or mock
		RPCURL    string  `yaml:"rpc_url"`
		BaseURL   string  `yaml:"base_url"`
		APIKey    string  `yaml:"api_key"`
		Symbol    string  `yaml:"symbol"`
		MockPrice float64 `yaml:"mock_price"`
	} `yaml:"oracle"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		PriceCron    string `yaml:"price_cron"`
		SnapshotCron string `yaml:"snapshot_cron"`
		ReportCron   string `yaml:"report_cron"`
		RunwayCron   string `yaml:"runway_cron"`
	} `yaml:"schedule"`
	Alerts struct {
		MinRewardBalance string `yaml:"min_reward_balance"` // whole tokens
	} `yaml:"alerts"`
	API struct {
		Addr        string   `yaml:"addr"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"api"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	State struct {
		File string `yaml:"file"`
	} `yaml:"state"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Dev struct {
		Faucet bool `yaml:"faucet"` // exposes token minting over the API
	} `yaml:"dev"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "read config")
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "parse config")
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("ORACLE_RPC_URL"); v != "" {
		c.Oracle.RPCURL = v
	}
	if v := os.Getenv("ORACLE_API_KEY"); v != "" {
		c.Oracle.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("STATE_FILE"); v != "" {
		c.State.File = v
	}
	if v := os.Getenv("API_ADDR"); v != "" {
		c.API.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("STAKING_END"); v != "" {
		end, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrap(err, "STAKING_END")
		}
		c.Pool.StakingEnd = end
	}
	if v := os.Getenv("DAY_SECONDS"); v != "" {
		day, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrap(err, "DAY_SECONDS")
		}
		c.Pool.DaySeconds = day
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Pool.Custody == "" {
		c.Pool.Custody = DefaultCustody
	}
	if c.Pool.DaySeconds == 0 {
		c.Pool.DaySeconds = 86400
	}
	if c.Pool.StakeSymbol == "" {
		c.Pool.StakeSymbol = "STK"
	}
	if c.Pool.RewardSymbol == "" {
		c.Pool.RewardSymbol = "RWD"
	}
	if c.Pool.MaxPriceAge == 0 {
		c.Pool.MaxPriceAge = 3600
	}
	if c.Oracle.Kind == "" {
		c.Oracle.Kind = "mock"
	}
	if c.Oracle.Symbol == "" {
		c.Oracle.Symbol = "USDC"
	}
	if c.Oracle.Kind == "mock" && c.Oracle.MockPrice == 0 {
		c.Oracle.MockPrice = 1
	}
	if c.Schedule.PriceCron == "" {
		c.Schedule.PriceCron = "0 */5 * * * *"
	}
	if c.Schedule.SnapshotCron == "" {
		c.Schedule.SnapshotCron = "0 */10 * * * *"
	}
	if c.Schedule.ReportCron == "" {
		c.Schedule.ReportCron = "0 0 9 * * *"
	}
	if c.Schedule.RunwayCron == "" {
		c.Schedule.RunwayCron = "0 0 * * * *"
	}
	if c.API.Addr == "" {
		c.API.Addr = "localhost:8669"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/staking_ledger.db"
	}
	if c.State.File == "" {
		c.State.File = "data/ledger_state.json"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Pool.StakingEnd <= 0 {
		return errors.New("pool.staking_end is required")
	}
	if c.Pool.DaySeconds <= 0 {
		return errors.New("pool.day_seconds must be positive")
	}
	if !common.IsHexAddress(c.Pool.Custody) {
		return errors.Errorf("pool.custody %q is not an address", c.Pool.Custody)
	}
	if c.Pool.Oracle != "" && !common.IsHexAddress(c.Pool.Oracle) {
		return errors.Errorf("pool.oracle %q is not an address", c.Pool.Oracle)
	}
	if strings.EqualFold(c.Pool.StakeSymbol, c.Pool.RewardSymbol) {
		return errors.New("pool.stake_symbol and pool.reward_symbol must differ")
	}
	switch c.Oracle.Kind {
	case "mock":
	case "chainlink":
		if c.Oracle.RPCURL == "" {
			return errors.New("oracle.rpc_url is required for chainlink")
		}
		if c.Pool.Oracle == "" {
			return errors.New("pool.oracle is required for chainlink")
		}
	case "http":
		if c.Oracle.BaseURL == "" {
			return errors.New("oracle.base_url is required for http")
		}
	case "yahoo":
	default:
		return errors.Errorf("oracle.kind %q is not one of chainlink, http, yahoo, mock", c.Oracle.Kind)
	}
	if _, err := c.MinRewardBalance(); err != nil {
		return err
	}
	if _, err := c.RateSchedule(); err != nil {
		return err
	}
	return nil
}

// TelegramEnabled reports whether reports can be delivered.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// CustodyAddress is the address holding staked principal and reward funds.
func (c *Config) CustodyAddress() common.Address {
	return common.HexToAddress(c.Pool.Custody)
}

// OracleAddress is the price aggregator address, zero if unset.
func (c *Config) OracleAddress() common.Address {
	if c.Pool.Oracle == "" {
		return common.Address{}
	}
	return common.HexToAddress(c.Pool.Oracle)
}

// MinRewardBalance is the runway alert threshold in base units; zero disables it.
func (c *Config) MinRewardBalance() (*uint256.Int, error) {
	if c.Alerts.MinRewardBalance == "" {
		return new(uint256.Int), nil
	}
	v, err := model.ParseUnits(c.Alerts.MinRewardBalance, model.TokenDecimals)
	if err != nil {
		return nil, errors.Wrap(err, "alerts.min_reward_balance")
	}
	return v, nil
}

// RateSchedule builds the reward schedule. Without configured rates the stock schedule applies.
func (c *Config) RateSchedule() (rate.Schedule, error) {
	r := c.Rates
	if r.BaseBps == nil && len(r.DurationBands) == 0 && len(r.AmountBands) == 0 {
		return rate.Default(c.Pool.DaySeconds), nil
	}
	var base uint64 = 300
	if r.BaseBps != nil {
		base = *r.BaseBps
	}
	duration := make([]rate.DurationBand, 0, len(r.DurationBands))
	for _, b := range r.DurationBands {
		duration = append(duration, rate.DurationBand{
			Label:      b.Label,
			MinSeconds: b.Days * c.Pool.DaySeconds,
			BonusBps:   b.BonusBps,
		})
	}
	amount := make([]rate.AmountBand, 0, len(r.AmountBands))
	for _, b := range r.AmountBands {
		threshold, err := model.ParseUnits(b.MinTokens, model.TokenDecimals)
		if err != nil {
			return rate.Schedule{}, errors.Wrapf(err, "rates.amount_bands %q", b.Label)
		}
		amount = append(amount, rate.AmountBand{Label: b.Label, MinAmount: *threshold, BonusBps: b.BonusBps})
	}
	s, err := rate.NewSchedule(base, 365*c.Pool.DaySeconds, duration, amount)
	if err != nil {
		return rate.Schedule{}, errors.Wrap(err, "rates")
	}
	return s, nil
}
