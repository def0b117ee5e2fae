package recorder

import (
	"database/sql"
	"sync"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"StakingLedger/internal/logger"
	"StakingLedger/internal/model"
)

// SQLiteRecorder persists the journal to a SQLite database.
// Token quantities are stored as decimal TEXT since they exceed SQLite's INTEGER range.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	// WAL mode lets dashboards read while the daemon writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "set WAL mode")
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}

	logger.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS staking_events (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			seq          INTEGER NOT NULL,
			kind         TEXT NOT NULL,
			user         TEXT NOT NULL,
			amount       TEXT,
			reward       TEXT,
			rate_bps     INTEGER,
			timestamp    INTEGER NOT NULL,
			total_staked TEXT,
			recorded_at  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_user ON staking_events(user)`,
		`CREATE INDEX IF NOT EXISTS idx_events_ts ON staking_events(timestamp)`,

		`CREATE TABLE IF NOT EXISTS price_samples (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			source      TEXT,
			value       TEXT,
			decimals    INTEGER,
			price       REAL,
			timestamp   INTEGER NOT NULL,
			recorded_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_ts ON price_samples(timestamp)`,

		`CREATE TABLE IF NOT EXISTS pool_snapshots (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			seq            INTEGER,
			total_staked   TEXT,
			reward_balance TEXT,
			total_pending  TEXT,
			participants   INTEGER,
			staking_end    INTEGER,
			recorded_at    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pool_ts ON pool_snapshots(recorded_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return errors.Wrapf(err, "exec %q", s[:40])
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordReceipt(rc *model.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO staking_events
		(seq, kind, user, amount, reward, rate_bps, timestamp, total_staked, recorded_at)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		int64(rc.Seq), string(rc.Kind), rc.User.Hex(),
		rc.Amount.Dec(), rc.Reward.Dec(), int64(rc.RateBps),
		rc.Timestamp, rc.TotalStaked.Dec(), time.Now().Unix(),
	)
	return errors.Wrap(err, "insert staking event")
}

func (r *SQLiteRecorder) RecordPrice(p *model.Price) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO price_samples
		(source, value, decimals, price, timestamp, recorded_at)
		VALUES (?,?,?,?,?,?)`,
		p.Source, p.Value.Dec(), int(p.Decimals), p.Float64(),
		p.Timestamp, time.Now().Unix(),
	)
	return errors.Wrap(err, "insert price sample")
}

func (r *SQLiteRecorder) RecordPoolSnapshot(s *PoolSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO pool_snapshots
		(seq, total_staked, reward_balance, total_pending, participants, staking_end, recorded_at)
		VALUES (?,?,?,?,?,?,?)`,
		int64(s.Pool.Seq), s.Pool.TotalStaked.Dec(), s.Pool.RewardBalance.Dec(),
		s.TotalPending, s.Pool.Participants, s.Pool.StakingEnd, time.Now().Unix(),
	)
	return errors.Wrap(err, "insert pool snapshot")
}

func (r *SQLiteRecorder) Close() error {
	logger.Info("closing sqlite recorder")
	return r.db.Close()
}
