package recorder

import "StakingLedger/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordReceipt(_ *model.Receipt) error     { return nil }
func (n *NoopRecorder) RecordPrice(_ *model.Price) error         { return nil }
func (n *NoopRecorder) RecordPoolSnapshot(_ *PoolSnapshot) error { return nil }
func (n *NoopRecorder) Close() error                             { return nil }
