package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"StakingLedger/internal/staking"
	"StakingLedger/internal/token"
)

// File is the on-disk state of a ledger and its two in-memory tokens.
type File struct {
	UpdatedAt time.Time      `json:"updated_at"`
	Ledger    *staking.State `json:"ledger"`
	Stake     *token.State   `json:"stake_token"`
	Reward    *token.State   `json:"reward_token"`
}

// Empty reports whether the file carries no ledger state.
func (f *File) Empty() bool {
	return f.Ledger == nil
}

// Capture takes a consistent snapshot of the ledger and its tokens.
func Capture(l *staking.Ledger, stake, reward *token.MemToken) *File {
	f := &File{UpdatedAt: time.Now()}
	f.Ledger = l.SnapshotWith(func() {
		f.Stake = stake.Snapshot()
		f.Reward = reward.Snapshot()
	})
	return f
}

// Apply restores the ledger and tokens from f. Tokens are restored only after the ledger accepted its state.
func (f *File) Apply(l *staking.Ledger, stake, reward *token.MemToken) error {
	if f.Empty() {
		return nil
	}
	if err := l.Restore(f.Ledger); err != nil {
		return errors.Wrap(err, "restore ledger")
	}
	if f.Stake != nil {
		if err := stake.Restore(f.Stake); err != nil {
			return errors.Wrap(err, "restore stake token")
		}
	}
	if f.Reward != nil {
		if err := reward.Restore(f.Reward); err != nil {
			return errors.Wrap(err, "restore reward token")
		}
	}
	return nil
}

// Load reads a snapshot. A missing file yields an empty snapshot.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, errors.Wrap(err, "read snapshot")
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	return &f, nil
}

// Save writes f to path through a temporary file so a crash never leaves a partial snapshot.
func Save(path string, f *File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode snapshot")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create snapshot dir")
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write snapshot")
	}
	return errors.Wrap(os.Rename(tmp, path), "replace snapshot")
}
