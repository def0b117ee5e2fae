package model

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ReceiptKind names the operation that produced a receipt.
type ReceiptKind string

const (
	KindDeposit  ReceiptKind = "DEPOSIT"
	KindClaim    ReceiptKind = "CLAIM"
	KindWithdraw ReceiptKind = "WITHDRAW"
	KindFund     ReceiptKind = "FUND"
)

// Receipt describes a committed ledger mutation.
type Receipt struct {
	Seq         uint64
	Kind        ReceiptKind
	User        common.Address
	Amount      uint256.Int // principal moved (deposit, withdraw) or reward funded
	Reward      uint256.Int // reward paid (claim) or settled into RewardEarned (deposit, withdraw)
	RateBps     uint64      // rate applied to the settled window
	Timestamp   int64
	TotalStaked uint256.Int
}
