package recorder

import "StakingLedger/internal/model"

// PoolSnapshot is a periodic record of pool totals.
type PoolSnapshot struct {
	Pool         model.PoolState
	TotalPending string // decimal base units
}

// Recorder persists the ledger event journal for later analysis.
type Recorder interface {
	RecordReceipt(r *model.Receipt) error
	RecordPrice(p *model.Price) error
	RecordPoolSnapshot(s *PoolSnapshot) error
	Close() error
}
