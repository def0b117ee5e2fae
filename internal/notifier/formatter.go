package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"StakingLedger/internal/model"
)

func units(v *uint256.Int) string {
	return model.FormatUnits(v, model.TokenDecimals)
}

func percent(bps uint64) string {
	return fmt.Sprintf("%d.%02d%%", bps/100, bps%100)
}

// FormatPoolStatus formats the pool totals for display.
func FormatPoolStatus(pool *model.PoolState, totalPending *uint256.Int, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📦 <b>Staking pool</b> | %s\n\n", now.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Total staked: %s\n", units(&pool.TotalStaked)))
	b.WriteString(fmt.Sprintf("Reward balance: %s\n", units(&pool.RewardBalance)))
	b.WriteString(fmt.Sprintf("Unpaid rewards: %s\n", units(totalPending)))
	b.WriteString(fmt.Sprintf("Participants: %d\n", pool.Participants))

	end := time.Unix(pool.StakingEnd, 0)
	if pool.Closed(now.Unix()) {
		b.WriteString(fmt.Sprintf("Staking ended: %s\n", end.Format("2006-01-02 15:04")))
	} else {
		b.WriteString(fmt.Sprintf("Staking ends: %s (in %s)\n", end.Format("2006-01-02 15:04"),
			end.Sub(now).Truncate(time.Minute)))
	}
	return b.String()
}

// UserStatus is the per-participant view rendered for /user.
type UserStatus struct {
	Address   common.Address
	Info      model.UserInfo
	Pending   *uint256.Int
	RateBps   uint64
	Elapsed   int64
	Claimable *uint256.Int
}

// FormatUserStatus formats one participant's position.
func FormatUserStatus(u *UserStatus) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("👤 <b>%s</b>\n\n", u.Address.Hex()))
	if !u.Info.Active() && u.Info.RewardEarned.IsZero() && u.Info.TotalClaimed.IsZero() {
		b.WriteString("No staking record.\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Staked: %s\n", units(&u.Info.AmountStaked)))
	if u.Info.Active() {
		b.WriteString(fmt.Sprintf("Since: %s\n", time.Unix(u.Info.DepositTimestamp, 0).Format("2006-01-02 15:04")))
		b.WriteString(fmt.Sprintf("Current rate: %s APR (%ds window)\n", percent(u.RateBps), u.Elapsed))
	}
	b.WriteString(fmt.Sprintf("Settled reward: %s\n", units(&u.Info.RewardEarned)))
	b.WriteString(fmt.Sprintf("Pending reward: %s\n", units(u.Pending)))
	b.WriteString(fmt.Sprintf("Claimable: %s\n", units(u.Claimable)))
	b.WriteString(fmt.Sprintf("Claimed to date: %s\n", units(&u.Info.TotalClaimed)))
	return b.String()
}

// FormatPrice formats the cached oracle price.
func FormatPrice(p *model.Price, ok bool) string {
	if !ok {
		return "💱 No price has been fetched yet."
	}
	return fmt.Sprintf("💱 <b>Stake token price</b>\n\n%.6f (%s)\nQuoted: %s\n",
		p.Float64(), p.Source, time.Unix(p.Timestamp, 0).Format("2006-01-02 15:04:05"))
}

// FormatRunwayAlert warns that the reward pool is running low.
func FormatRunwayAlert(balance, threshold, totalPending *uint256.Int) string {
	var b strings.Builder
	b.WriteString("⚠️ <b>Reward pool running low</b>\n\n")
	b.WriteString(fmt.Sprintf("Reward balance: %s\n", units(balance)))
	if threshold != nil && !threshold.IsZero() {
		b.WriteString(fmt.Sprintf("Alert threshold: %s\n", units(threshold)))
	}
	b.WriteString(fmt.Sprintf("Unpaid rewards: %s\n", units(totalPending)))
	if balance.Lt(totalPending) {
		short := new(uint256.Int).Sub(totalPending, balance)
		b.WriteString(fmt.Sprintf("Shortfall: %s\n", units(short)))
	}
	b.WriteString("\nFund the pool to keep claims solvent.")
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "📖 <b>Commands</b>\n\n" +
		"/pool - pool totals\n" +
		"/user &lt;address&gt; - participant position\n" +
		"/price - cached stake token price\n" +
		"/help - this message"
}
