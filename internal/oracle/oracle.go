package oracle

import (
	"context"
	"math"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"StakingLedger/internal/model"
)

// FloatDecimals is the precision used for sources quoting floating-point prices.
const FloatDecimals = 8

// Oracle is a read-only price source.
type Oracle interface {
	LatestPrice(ctx context.Context) (model.Price, error)
	Name() string
}

// MockOracle returns a controllable fixed price for development and testing.
type MockOracle struct {
	mu    sync.Mutex
	Price float64
	Err   error
}

func (m *MockOracle) Name() string { return "mock" }

func (m *MockOracle) Set(price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Price = price
}

func (m *MockOracle) LatestPrice(_ context.Context) (model.Price, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return model.Price{}, m.Err
	}
	return fromFloat(m.Price, time.Now().Unix(), m.Name())
}

// fromFloat converts a floating-point quote into a fixed-point price.
func fromFloat(v float64, ts int64, source string) (model.Price, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return model.Price{}, errors.Errorf("%s: invalid price %v", source, v)
	}
	scaled := math.Round(v * math.Pow10(FloatDecimals))
	if scaled >= math.MaxUint64 {
		return model.Price{}, errors.Errorf("%s: price %v out of range", source, v)
	}
	return model.Price{
		Value:     *uint256.NewInt(uint64(scaled)),
		Decimals:  FloatDecimals,
		Timestamp: ts,
		Source:    source,
	}, nil
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
