package oracle

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"StakingLedger/internal/logger"
	"StakingLedger/internal/model"
)

// Feed caches the latest price read from an Oracle. Latest never blocks on the network,
// so the ledger can consult it while holding its own lock.
type Feed struct {
	Oracle  Oracle
	Timeout time.Duration

	mu        sync.RWMutex
	latest    model.Price
	ok        bool
	fetchedAt time.Time
}

// NewFeed creates a Feed over oracle.
func NewFeed(o Oracle) *Feed {
	return &Feed{Oracle: o, Timeout: 15 * time.Second}
}

// Refresh reads the oracle and replaces the cached price on success.
// A failed read keeps the previous price.
func (f *Feed) Refresh(ctx context.Context) (model.Price, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	p, err := f.Oracle.LatestPrice(ctx)
	if err != nil {
		return model.Price{}, errors.Wrapf(err, "refresh %s price", f.Oracle.Name())
	}
	if p.IsZero() {
		return model.Price{}, errors.Errorf("refresh %s price: zero price", f.Oracle.Name())
	}

	f.mu.Lock()
	f.latest = p
	f.ok = true
	f.fetchedAt = time.Now()
	f.mu.Unlock()

	logger.WithFields(logrus.Fields{
		"source": p.Source,
		"price":  p.Float64(),
		"ts":     p.Timestamp,
	}).Debug("price refreshed")
	return p, nil
}

// Latest returns the cached price and whether one has been fetched.
func (f *Feed) Latest() (model.Price, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.latest, f.ok
}

// FetchedAt returns the local time of the last successful refresh.
func (f *Feed) FetchedAt() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.fetchedAt
}
