package api

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"StakingLedger/internal/calculator"
	"StakingLedger/internal/model"
	"StakingLedger/internal/staking"
)

// AmountRequest is the body of pool and token mutations. Amounts are decimal base units.
type AmountRequest struct {
	User    string `json:"user"`
	Spender string `json:"spender,omitempty"`
	Amount  string `json:"amount,omitempty"`
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

func parseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, errors.New("amount is required")
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid amount %q", s)
	}
	return v, nil
}

// Receipt is the JSON form of model.Receipt.
type Receipt struct {
	Seq         uint64 `json:"seq"`
	Kind        string `json:"kind"`
	User        string `json:"user"`
	Amount      string `json:"amount"`
	Reward      string `json:"reward"`
	RateBps     uint64 `json:"rateBps"`
	Timestamp   int64  `json:"timestamp"`
	TotalStaked string `json:"totalStaked"`
}

func convertReceipt(r *model.Receipt) *Receipt {
	return &Receipt{
		Seq:         r.Seq,
		Kind:        string(r.Kind),
		User:        r.User.Hex(),
		Amount:      r.Amount.Dec(),
		Reward:      r.Reward.Dec(),
		RateBps:     r.RateBps,
		Timestamp:   r.Timestamp,
		TotalStaked: r.TotalStaked.Dec(),
	}
}

// Pool is the JSON form of model.PoolState.
type Pool struct {
	Custody       string `json:"custody"`
	Oracle        string `json:"oracle"`
	TotalStaked   string `json:"totalStaked"`
	RewardBalance string `json:"rewardBalance"`
	TotalPending  string `json:"totalPending"`
	StakingEnd    int64  `json:"stakingEnd"`
	Closed        bool   `json:"closed"`
	Participants  int    `json:"participants"`
	Seq           uint64 `json:"seq"`
}

func convertPool(p *model.PoolState, totalPending *uint256.Int, now int64) *Pool {
	return &Pool{
		Custody:       p.Custody.Hex(),
		Oracle:        p.Oracle.Hex(),
		TotalStaked:   p.TotalStaked.Dec(),
		RewardBalance: p.RewardBalance.Dec(),
		TotalPending:  totalPending.Dec(),
		StakingEnd:    p.StakingEnd,
		Closed:        p.Closed(now),
		Participants:  p.Participants,
		Seq:           p.Seq,
	}
}

// User is a participant's position.
type User struct {
	Address          string `json:"address"`
	AmountStaked     string `json:"amountStaked"`
	DepositTimestamp int64  `json:"depositTimestamp"`
	RewardEarned     string `json:"rewardEarned"`
	TotalClaimed     string `json:"totalClaimed"`
	Pending          string `json:"pending"`
	PendingElapsed   int64  `json:"pendingElapsed"`
	RateBps          uint64 `json:"rateBps"`
	Claimable        string `json:"claimable"`
}

func convertUser(addr common.Address, pos *staking.Position) *User {
	return &User{
		Address:          addr.Hex(),
		AmountStaked:     pos.Info.AmountStaked.Dec(),
		DepositTimestamp: pos.Info.DepositTimestamp,
		RewardEarned:     pos.Info.RewardEarned.Dec(),
		TotalClaimed:     pos.Info.TotalClaimed.Dec(),
		Pending:          pos.Pending.Reward.Dec(),
		PendingElapsed:   pos.Pending.Elapsed,
		RateBps:          pos.Pending.RateBps,
		Claimable:        pos.Claimable.Dec(),
	}
}

// Quote is a projected reward.
type Quote struct {
	Amount        string `json:"amount"`
	Seconds       int64  `json:"seconds"`
	BaseBps       uint64 `json:"baseBps"`
	DurationBps   uint64 `json:"durationBps"`
	DurationLabel string `json:"durationLabel,omitempty"`
	AmountBps     uint64 `json:"amountBps"`
	AmountLabel   string `json:"amountLabel,omitempty"`
	RateBps       uint64 `json:"rateBps"`
	Reward        string `json:"reward"`
}

func convertQuote(amount *uint256.Int, p *calculator.Projection) *Quote {
	return &Quote{
		Amount:        amount.Dec(),
		Seconds:       p.Seconds,
		BaseBps:       p.Breakdown.BaseBps,
		DurationBps:   p.Breakdown.DurationBps,
		DurationLabel: p.Breakdown.DurationLabel,
		AmountBps:     p.Breakdown.AmountBps,
		AmountLabel:   p.Breakdown.AmountLabel,
		RateBps:       p.Breakdown.Total(),
		Reward:        p.Reward.Dec(),
	}
}

// Balance is a token balance.
type Balance struct {
	Token   string `json:"token"`
	Address string `json:"address"`
	Balance string `json:"balance"`
}
