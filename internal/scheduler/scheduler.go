package scheduler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"StakingLedger/internal/logger"
	"StakingLedger/internal/metrics"
	"StakingLedger/internal/model"
	"StakingLedger/internal/notifier"
	"StakingLedger/internal/recorder"
	"StakingLedger/internal/staking"
)

// PriceFeed is a refreshable price cache.
type PriceFeed interface {
	Refresh(ctx context.Context) (model.Price, error)
	Latest() (model.Price, bool)
}

// Crons holds the cron expressions (with seconds) of the periodic jobs.
type Crons struct {
	Price    string
	Snapshot string
	Report   string
	Runway   string
}

// Scheduler runs the daemon's periodic jobs. Reward accrual never depends on it.
type Scheduler struct {
	Cron     *cron.Cron
	Ledger   *staking.Ledger
	Feed     PriceFeed
	Notifier notifier.Notifier
	Recorder recorder.Recorder
	Metrics  *metrics.Metrics
	Persist  func() error

	// MinRewardBalance triggers the runway alert when the reward balance drops below it; zero disables it.
	MinRewardBalance *uint256.Int
	Ctx              context.Context

	mu        sync.Mutex
	runwayLow bool
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, ledger *staking.Ledger, feed PriceFeed, n notifier.Notifier, rec recorder.Recorder, persist func() error) *Scheduler {
	return &Scheduler{
		Cron:             cron.New(cron.WithSeconds()),
		Ledger:           ledger,
		Feed:             feed,
		Notifier:         n,
		Recorder:         rec,
		Persist:          persist,
		MinRewardBalance: new(uint256.Int),
		Ctx:              ctx,
	}
}

// RegisterAll registers the price, snapshot, report and runway jobs.
func (s *Scheduler) RegisterAll(c Crons) error {
	jobs := []struct {
		name string
		spec string
		fn   func()
	}{
		{"price", c.Price, s.refreshPrice},
		{"snapshot", c.Snapshot, s.snapshot},
		{"report", c.Report, s.report},
		{"runway", c.Runway, func() { s.checkRunway() }},
	}
	for _, j := range jobs {
		if _, err := s.Cron.AddFunc(j.spec, j.fn); err != nil {
			return errors.Wrapf(err, "register %s task", j.name)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Info("scheduler stopped")
}

// RunNow refreshes the price and sends a report immediately (manual trigger / --run-on-start).
func (s *Scheduler) RunNow() {
	s.refreshPrice()
	s.report()
	s.checkRunway()
}

func (s *Scheduler) refreshPrice() {
	if s.Feed == nil {
		return
	}
	p, err := s.Feed.Refresh(s.Ctx)
	if err != nil {
		logger.WithError(err).Warn("price refresh failed, keeping cached price")
		return
	}
	if err := s.Recorder.RecordPrice(&p); err != nil {
		logger.Errorf("record price: %v", err)
	}
}

func (s *Scheduler) snapshot() {
	if s.Persist != nil {
		if err := s.Persist(); err != nil {
			logger.Errorf("persist ledger state: %v", err)
		}
	}
	pool := s.Ledger.Pool()
	pending, err := s.Ledger.TotalPending()
	if err != nil {
		logger.Errorf("total pending: %v", err)
		return
	}
	if s.Metrics != nil {
		s.Metrics.ObservePool(&pool)
	}
	if err := s.Recorder.RecordPoolSnapshot(&recorder.PoolSnapshot{Pool: pool, TotalPending: pending.Dec()}); err != nil {
		logger.Errorf("record pool snapshot: %v", err)
	}
}

func (s *Scheduler) poolStatus() string {
	pool := s.Ledger.Pool()
	pending, err := s.Ledger.TotalPending()
	if err != nil {
		return "❌ " + err.Error()
	}
	return notifier.FormatPoolStatus(&pool, pending, time.Unix(s.Ledger.Now(), 0))
}

func (s *Scheduler) report() {
	logger.Info("sending pool report")
	s.trySend(s.poolStatus())
}

// checkRunway alerts once when the reward pool falls below the threshold or below what is owed,
// and rearms after it recovers. It reports whether an alert was sent.
func (s *Scheduler) checkRunway() bool {
	pool := s.Ledger.Pool()
	pending, err := s.Ledger.TotalPending()
	if err != nil {
		logger.Errorf("total pending: %v", err)
		return false
	}
	low := pool.RewardBalance.Lt(pending)
	if s.MinRewardBalance != nil && !s.MinRewardBalance.IsZero() && pool.RewardBalance.Lt(s.MinRewardBalance) {
		low = true
	}

	s.mu.Lock()
	alert := low && !s.runwayLow
	s.runwayLow = low
	s.mu.Unlock()

	if !alert {
		return false
	}
	logger.WithFields(logrus.Fields{
		"reward_balance": pool.RewardBalance.Dec(),
		"total_pending":  pending.Dec(),
	}).Warn("reward pool running low")
	s.trySend(notifier.FormatRunwayAlert(&pool.RewardBalance, s.MinRewardBalance, pending))
	return true
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	switch fields[0] {
	case "/pool":
		return s.poolStatus()
	case "/user":
		if len(fields) < 2 || !common.IsHexAddress(fields[1]) {
			return "Usage: /user &lt;address&gt;"
		}
		return s.userStatus(common.HexToAddress(fields[1]))
	case "/price":
		if s.Feed == nil {
			return notifier.FormatPrice(nil, false)
		}
		p, ok := s.Feed.Latest()
		return notifier.FormatPrice(&p, ok)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) userStatus(addr common.Address) string {
	pos, err := s.Ledger.Position(addr)
	if err != nil {
		return "❌ " + err.Error()
	}
	return notifier.FormatUserStatus(&notifier.UserStatus{
		Address:   addr,
		Info:      pos.Info,
		Pending:   &pos.Pending.Reward,
		RateBps:   pos.Pending.RateBps,
		Elapsed:   pos.Pending.Elapsed,
		Claimable: &pos.Claimable,
	})
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		logger.Errorf("send notification: %v", err)
	}
}
