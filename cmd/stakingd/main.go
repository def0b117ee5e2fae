package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"StakingLedger/internal/api"
	"StakingLedger/internal/config"
	"StakingLedger/internal/logger"
	"StakingLedger/internal/metrics"
	"StakingLedger/internal/notifier"
	"StakingLedger/internal/oracle"
	"StakingLedger/internal/recorder"
	"StakingLedger/internal/scheduler"
	"StakingLedger/internal/snapshot"
	"StakingLedger/internal/staking"
	"StakingLedger/internal/token"
)

var version = "dev"

func main() {
	app := cli.App{
		Name:    "stakingd",
		Usage:   "staking ledger and reward engine daemon",
		Version: version,
		Flags: []cli.Flag{
			configFlag,
			runOnStartFlag,
		},
		Action: defaultAction,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.String(configFlag.Name))
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "config validation")
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		return errors.Wrap(err, "init logger")
	}
	logger.Info("stakingd starting...")

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Price feed
	orc, closeOracle, err := newOracle(runCtx, cfg)
	if err != nil {
		return errors.Wrap(err, "init oracle")
	}
	defer closeOracle()
	feed := oracle.NewFeed(orc)
	logger.Infof("price source: %s", orc.Name())

	// Tokens and ledger
	stake := token.NewMemToken(cfg.Pool.StakeSymbol)
	reward := token.NewMemToken(cfg.Pool.RewardSymbol)
	schedule, err := cfg.RateSchedule()
	if err != nil {
		return err
	}
	ledger, err := staking.New(staking.Config{
		Custody:          cfg.CustodyAddress(),
		Oracle:           cfg.OracleAddress(),
		StakingEnd:       cfg.Pool.StakingEnd,
		Schedule:         schedule,
		PriceDenominated: cfg.Pool.PriceDenominatedBonus,
		MaxPriceAge:      cfg.Pool.MaxPriceAge,
	}, stake, reward, staking.WithPriceFeed(feed))
	if err != nil {
		return errors.Wrap(err, "init ledger")
	}

	state, err := snapshot.Load(cfg.State.File)
	if err != nil {
		return err
	}
	if err := state.Apply(ledger, stake, reward); err != nil {
		return err
	}
	if !state.Empty() {
		logger.Infof("ledger state restored from %s (seq %d)", cfg.State.File, ledger.Pool().Seq)
	}
	persist := func() error {
		return snapshot.Save(cfg.State.File, snapshot.Capture(ledger, stake, reward))
	}
	defer func() {
		if err := persist(); err != nil {
			logger.Errorf("save ledger state: %v", err)
		}
	}()

	// Recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		if err := os.MkdirAll(dirOf(cfg.Database.SQLitePath), 0o755); err != nil {
			logger.Warnf("create database dir: %v", err)
		}
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			logger.Warnf("init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Notifier
	var n notifier.Notifier = notifier.NewNoopNotifier()
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	} else {
		logger.Warn("telegram not configured, reports go to the log only")
	}

	m := metrics.New()
	pool := ledger.Pool()
	m.ObservePool(&pool)

	// Scheduler
	minReward, err := cfg.MinRewardBalance()
	if err != nil {
		return err
	}
	sched := scheduler.NewScheduler(runCtx, ledger, feed, n, rec, persist)
	sched.Metrics = m
	sched.MinRewardBalance = minReward
	if err := sched.RegisterAll(scheduler.Crons{
		Price:    cfg.Schedule.PriceCron,
		Snapshot: cfg.Schedule.SnapshotCron,
		Report:   cfg.Schedule.ReportCron,
		Runway:   cfg.Schedule.RunwayCron,
	}); err != nil {
		return errors.Wrap(err, "register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(runCtx, sched.HandleCommand)
		logger.Info("telegram polling started")
	}

	if ctx.Bool(runOnStartFlag.Name) {
		logger.Info("run-on-start enabled, executing jobs now")
		go sched.RunNow()
	} else if _, err := feed.Refresh(runCtx); err != nil {
		logger.WithError(err).Warn("initial price refresh failed")
	}

	// API server
	srv := &http.Server{
		Addr: cfg.API.Addr,
		Handler: api.New(ledger, stake, reward, rec, m, api.Options{
			AllowedOrigins: cfg.API.CORSOrigins,
			Faucet:         cfg.Dev.Faucet,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on %s", cfg.API.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	logger.Info("stakingd is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		logger.Info("shutdown signal received, stopping...")
	case err := <-errCh:
		logger.WithError(err).Error("API server failed")
	}

	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("stop API server: %v", err)
	}
	logger.Info("stakingd stopped")
	return nil
}
