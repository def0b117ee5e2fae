package staking

import (
	"bytes"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"StakingLedger/internal/calculator"
	"StakingLedger/internal/logger"
	"StakingLedger/internal/model"
	"StakingLedger/internal/rate"
	"StakingLedger/internal/token"
)

// PriceFeed serves the most recent cached oracle price without blocking.
type PriceFeed interface {
	Latest() (model.Price, bool)
}

// Config is fixed at construction.
type Config struct {
	Custody    common.Address // address holding staked principal and reward funds
	Oracle     common.Address
	StakingEnd int64 // unix seconds
	Schedule   rate.Schedule

	// PriceDenominated values the stake through the price feed before matching amount bands.
	PriceDenominated bool
	MaxPriceAge      int64 // seconds; 0 accepts any age
}

// Option customizes a Ledger.
type Option func(*Ledger)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithPriceFeed attaches the feed used for price-denominated amount bands.
func WithPriceFeed(feed PriceFeed) Option {
	return func(l *Ledger) { l.feed = feed }
}

// Ledger tracks stakes and rewards for one pool. Every mutating operation holds the
// ledger lock for its whole duration and commits only after its token transfer succeeded.
type Ledger struct {
	mu          sync.Mutex
	cfg         Config
	stake       token.Token
	reward      token.Token
	feed        PriceFeed
	now         func() time.Time
	users       map[common.Address]*model.UserInfo
	totalStaked uint256.Int
	seq         uint64
}

// New creates an empty ledger.
func New(cfg Config, stake, reward token.Token, opts ...Option) (*Ledger, error) {
	if stake == nil || reward == nil {
		return nil, errors.New("stake and reward tokens are required")
	}
	if stake == reward {
		return nil, errors.New("stake and reward tokens must be distinct")
	}
	if cfg.Custody == (common.Address{}) {
		return nil, errors.New("custody address is required")
	}
	if cfg.StakingEnd <= 0 {
		return nil, errors.New("staking end timestamp is required")
	}
	if err := cfg.Schedule.Validate(); err != nil {
		return nil, errors.Wrap(err, "rate schedule")
	}
	l := &Ledger{
		cfg:    cfg,
		stake:  stake,
		reward: reward,
		now:    time.Now,
		users:  make(map[common.Address]*model.UserInfo),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Schedule returns the rate schedule in force.
func (l *Ledger) Schedule() rate.Schedule { return l.cfg.Schedule }

// Now is the ledger clock in unix seconds.
func (l *Ledger) Now() int64 { return l.now().Unix() }

// Deposit pulls amount of stake token from user into custody. Pending reward is settled
// at the previous amount before the new principal is added.
func (l *Ledger) Deposit(user common.Address, amount *uint256.Int) (*model.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().Unix()
	if amount == nil || amount.IsZero() {
		return nil, ErrInvalidAmount
	}
	if now >= l.cfg.StakingEnd {
		return nil, ErrPoolClosed
	}

	staged := l.user(user)
	acc, err := l.settle(&staged, now)
	if err != nil {
		return nil, err
	}
	newStake, overflow := new(uint256.Int).AddOverflow(&staged.AmountStaked, amount)
	if overflow {
		return nil, newError(CodeInvalidAmount, "stake overflows uint256", nil)
	}
	newTotal, overflow := new(uint256.Int).AddOverflow(&l.totalStaked, amount)
	if overflow {
		return nil, newError(CodeInvalidAmount, "pool total overflows uint256", nil)
	}

	if err := l.stake.TransferFrom(l.cfg.Custody, user, l.cfg.Custody, amount); err != nil {
		return nil, newError(CodeTransferFailed, "pull stake token", err)
	}

	staged.AmountStaked = *newStake
	l.commit(user, &staged, newTotal)

	r := l.receipt(model.KindDeposit, user, amount, &acc.Reward, acc.RateBps, now)
	l.logReceipt(r)
	return r, nil
}

// Claim settles pending reward and pays out everything earned so far.
func (l *Ledger) Claim(user common.Address) (*model.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().Unix()
	staged := l.user(user)
	acc, err := l.settle(&staged, now)
	if err != nil {
		return nil, err
	}
	payout := staged.RewardEarned
	if payout.IsZero() {
		return nil, ErrNothingToClaim
	}
	if l.reward.BalanceOf(l.cfg.Custody).Lt(&payout) {
		return nil, ErrInsufficientRewardPool
	}

	if err := l.reward.Transfer(l.cfg.Custody, user, &payout); err != nil {
		return nil, newError(CodeTransferFailed, "pay reward token", err)
	}

	staged.RewardEarned.Clear()
	staged.TotalClaimed.Add(&staged.TotalClaimed, &payout)
	total := l.totalStaked
	l.commit(user, &staged, &total)

	r := l.receipt(model.KindClaim, user, new(uint256.Int), &payout, acc.RateBps, now)
	l.logReceipt(r)
	return r, nil
}

// Withdraw returns amount of principal to user. Pending reward is settled into
// RewardEarned, not paid; it stays claimable through Claim.
func (l *Ledger) Withdraw(user common.Address, amount *uint256.Int) (*model.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().Unix()
	if amount == nil || amount.IsZero() {
		return nil, ErrInvalidAmount
	}
	staged := l.user(user)
	if staged.AmountStaked.Lt(amount) {
		return nil, ErrInsufficientStake
	}
	acc, err := l.settle(&staged, now)
	if err != nil {
		return nil, err
	}

	if err := l.stake.Transfer(l.cfg.Custody, user, amount); err != nil {
		return nil, newError(CodeTransferFailed, "return stake token", err)
	}

	staged.AmountStaked.Sub(&staged.AmountStaked, amount)
	if staged.AmountStaked.IsZero() {
		staged.DepositTimestamp = 0
	}
	total := new(uint256.Int).Sub(&l.totalStaked, amount)
	l.commit(user, &staged, total)

	r := l.receipt(model.KindWithdraw, user, amount, &acc.Reward, acc.RateBps, now)
	l.logReceipt(r)
	return r, nil
}

// FundRewards pulls reward tokens from a funder into custody. The funder must have approved custody.
func (l *Ledger) FundRewards(from common.Address, amount *uint256.Int) (*model.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount == nil || amount.IsZero() {
		return nil, ErrInvalidAmount
	}
	if err := l.reward.TransferFrom(l.cfg.Custody, from, l.cfg.Custody, amount); err != nil {
		return nil, newError(CodeTransferFailed, "fund reward token", err)
	}
	r := l.receipt(model.KindFund, from, amount, new(uint256.Int), 0, l.now().Unix())
	l.logReceipt(r)
	return r, nil
}

// Position is a read-only view of a participant at a point in time.
type Position struct {
	Info      model.UserInfo
	Pending   calculator.Accrual // accrued since the checkpoint, not yet settled
	Claimable uint256.Int        // RewardEarned + Pending.Reward
}

// Position evaluates user's record at the current time without mutating it.
func (l *Ledger) Position(user common.Address) (Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.position(user, l.now().Unix())
}

// Pending is the reward accrued since user's checkpoint, excluding RewardEarned.
func (l *Ledger) Pending(user common.Address) (*uint256.Int, error) {
	pos, err := l.Position(user)
	if err != nil {
		return nil, err
	}
	return &pos.Pending.Reward, nil
}

// UserInfo returns a copy of user's stored record; the zero value if it never deposited.
func (l *Ledger) UserInfo(user common.Address) model.UserInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.user(user)
}

// Pool returns the pool totals.
func (l *Ledger) Pool() model.PoolState {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := model.PoolState{
		Custody:     l.cfg.Custody,
		Oracle:      l.cfg.Oracle,
		TotalStaked: l.totalStaked,
		StakingEnd:  l.cfg.StakingEnd,
		Seq:         l.seq,
	}
	p.RewardBalance = *l.reward.BalanceOf(l.cfg.Custody)
	for _, u := range l.users {
		if u.Active() {
			p.Participants++
		}
	}
	return p
}

// TotalPending sums what every participant could claim right now.
func (l *Ledger) TotalPending() (*uint256.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().Unix()
	sum := new(uint256.Int)
	for addr := range l.users {
		pos, err := l.position(addr, now)
		if err != nil {
			return nil, err
		}
		if _, overflow := sum.AddOverflow(sum, &pos.Claimable); overflow {
			return nil, calculator.ErrOverflow
		}
	}
	return sum, nil
}

// Users lists every address holding a record, in byte order.
func (l *Ledger) Users() []common.Address {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]common.Address, 0, len(l.users))
	for addr := range l.users {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	return out
}

// Quote projects the reward of staking amount from now for the given seconds.
func (l *Ledger) Quote(amount *uint256.Int, seconds int64) (calculator.Projection, error) {
	if amount == nil || amount.IsZero() {
		return calculator.Projection{}, ErrInvalidAmount
	}
	l.mu.Lock()
	now := l.now().Unix()
	qualifying := l.qualifying(amount, now)
	l.mu.Unlock()

	return calculator.Project(l.cfg.Schedule, amount, qualifying, now, seconds, l.cfg.StakingEnd)
}

// user returns a copy of the stored record. Callers hold l.mu.
func (l *Ledger) user(addr common.Address) model.UserInfo {
	if u, ok := l.users[addr]; ok {
		return *u
	}
	return model.UserInfo{}
}

func (l *Ledger) position(addr common.Address, now int64) (Position, error) {
	info := l.user(addr)
	acc, err := l.accrue(&info, now)
	if err != nil {
		return Position{}, err
	}
	pos := Position{Info: info, Pending: acc}
	if _, overflow := pos.Claimable.AddOverflow(&info.RewardEarned, &acc.Reward); overflow {
		return Position{}, calculator.ErrOverflow
	}
	return pos, nil
}

func (l *Ledger) accrue(u *model.UserInfo, now int64) (calculator.Accrual, error) {
	if !u.Active() {
		return calculator.Accrual{}, nil
	}
	acc, err := calculator.Accrue(l.cfg.Schedule, &u.AmountStaked, l.qualifying(&u.AmountStaked, now),
		u.DepositTimestamp, now, l.cfg.StakingEnd)
	if err != nil {
		return calculator.Accrual{}, newError(CodeInvalidAmount, "accrue reward", err)
	}
	return acc, nil
}

// settle folds the pending window into RewardEarned and moves the checkpoint to now.
func (l *Ledger) settle(u *model.UserInfo, now int64) (calculator.Accrual, error) {
	acc, err := l.accrue(u, now)
	if err != nil {
		return calculator.Accrual{}, err
	}
	if _, overflow := u.RewardEarned.AddOverflow(&u.RewardEarned, &acc.Reward); overflow {
		return calculator.Accrual{}, newError(CodeInvalidAmount, "reward overflows uint256", nil)
	}
	u.DepositTimestamp = now
	return acc, nil
}

// qualifying is the amount matched against amount bands. Callers hold l.mu.
func (l *Ledger) qualifying(amount *uint256.Int, now int64) *uint256.Int {
	if !l.cfg.PriceDenominated || l.feed == nil {
		return amount
	}
	p, ok := l.feed.Latest()
	if !ok || p.IsZero() {
		logger.Debug("no oracle price, amount bands use face value")
		return amount
	}
	if l.cfg.MaxPriceAge > 0 && now-p.Timestamp > l.cfg.MaxPriceAge {
		logger.WithFields(logrus.Fields{"source": p.Source, "age": now - p.Timestamp}).
			Warn("stale oracle price, amount bands use face value")
		return amount
	}
	n, err := calculator.Notional(amount, &p)
	if err != nil {
		return amount
	}
	return n
}

func (l *Ledger) commit(addr common.Address, staged *model.UserInfo, total *uint256.Int) {
	u, ok := l.users[addr]
	if !ok {
		u = new(model.UserInfo)
		l.users[addr] = u
	}
	*u = *staged
	l.totalStaked = *total
}

func (l *Ledger) receipt(kind model.ReceiptKind, user common.Address, amount, reward *uint256.Int, bps uint64, ts int64) *model.Receipt {
	l.seq++
	return &model.Receipt{
		Seq:         l.seq,
		Kind:        kind,
		User:        user,
		Amount:      *amount,
		Reward:      *reward,
		RateBps:     bps,
		Timestamp:   ts,
		TotalStaked: l.totalStaked,
	}
}

func (l *Ledger) logReceipt(r *model.Receipt) {
	logger.WithFields(logrus.Fields{
		"seq":          r.Seq,
		"user":         r.User.Hex(),
		"amount":       r.Amount.Dec(),
		"reward":       r.Reward.Dec(),
		"rate_bps":     r.RateBps,
		"total_staked": r.TotalStaked.Dec(),
	}).Info(string(r.Kind))
}
