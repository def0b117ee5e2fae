package staking

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"StakingLedger/internal/model"
)

// State is the serializable form of a ledger. Amounts are decimal strings.
type State struct {
	Seq         uint64               `json:"seq"`
	TotalStaked string               `json:"total_staked"`
	Users       map[string]UserState `json:"users"`
}

// UserState is the serializable form of model.UserInfo.
type UserState struct {
	AmountStaked     string `json:"amount_staked"`
	DepositTimestamp int64  `json:"deposit_timestamp"`
	RewardEarned     string `json:"reward_earned"`
	TotalClaimed     string `json:"total_claimed"`
}

// Snapshot captures the ledger's records.
func (l *Ledger) Snapshot() *State {
	return l.SnapshotWith(nil)
}

// SnapshotWith captures the ledger's records and runs also, if set, before releasing the
// ledger lock. Token snapshots taken in also match the ledger's records.
func (l *Ledger) SnapshotWith(also func()) *State {
	l.mu.Lock()
	defer l.mu.Unlock()

	if also != nil {
		also()
	}
	s := &State{
		Seq:         l.seq,
		TotalStaked: l.totalStaked.Dec(),
		Users:       make(map[string]UserState, len(l.users)),
	}
	for addr, u := range l.users {
		s.Users[addr.Hex()] = UserState{
			AmountStaked:     u.AmountStaked.Dec(),
			DepositTimestamp: u.DepositTimestamp,
			RewardEarned:     u.RewardEarned.Dec(),
			TotalClaimed:     u.TotalClaimed.Dec(),
		}
	}
	return s
}

// Restore replaces the ledger's records with s. It fails without touching the ledger
// if the stored total does not equal the sum of the stored stakes.
func (l *Ledger) Restore(s *State) error {
	users := make(map[common.Address]*model.UserInfo, len(s.Users))
	sum := new(uint256.Int)
	for hex, us := range s.Users {
		if !common.IsHexAddress(hex) {
			return errors.Errorf("invalid address %q", hex)
		}
		u := new(model.UserInfo)
		if err := parseInto(&u.AmountStaked, us.AmountStaked); err != nil {
			return errors.Wrapf(err, "amount staked of %s", hex)
		}
		if err := parseInto(&u.RewardEarned, us.RewardEarned); err != nil {
			return errors.Wrapf(err, "reward earned of %s", hex)
		}
		if err := parseInto(&u.TotalClaimed, us.TotalClaimed); err != nil {
			return errors.Wrapf(err, "total claimed of %s", hex)
		}
		u.DepositTimestamp = us.DepositTimestamp
		if _, overflow := sum.AddOverflow(sum, &u.AmountStaked); overflow {
			return errors.New("stored stakes overflow uint256")
		}
		users[common.HexToAddress(hex)] = u
	}
	var total uint256.Int
	if err := parseInto(&total, s.TotalStaked); err != nil {
		return errors.Wrap(err, "total staked")
	}
	if !total.Eq(sum) {
		return errors.Errorf("total staked %s does not match sum of stakes %s", total.Dec(), sum.Dec())
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.users = users
	l.totalStaked = total
	l.seq = s.Seq
	return nil
}

func parseInto(dst *uint256.Int, dec string) error {
	if dec == "" {
		dst.Clear()
		return nil
	}
	return dst.SetFromDecimal(dec)
}
