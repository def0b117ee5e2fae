package model

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// UserInfo is the per-participant staking record.
type UserInfo struct {
	AmountStaked     uint256.Int
	DepositTimestamp int64 // last deposit or reward checkpoint, unix seconds
	RewardEarned     uint256.Int
	TotalClaimed     uint256.Int
}

// Active reports whether the participant currently has principal in the pool.
func (u *UserInfo) Active() bool {
	return !u.AmountStaked.IsZero()
}

// PoolState is a point-in-time view of the pool.
type PoolState struct {
	Custody       common.Address
	Oracle        common.Address
	TotalStaked   uint256.Int
	RewardBalance uint256.Int
	StakingEnd    int64
	Participants  int
	Seq           uint64
}

// Closed reports whether deposits are no longer accepted at ts.
func (p *PoolState) Closed(ts int64) bool {
	return ts >= p.StakingEnd
}
