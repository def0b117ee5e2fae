package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"StakingLedger/internal/model"
)

const namespace = "stakingledger"

// Metrics holds the ledger's Prometheus meters on a private registry.
type Metrics struct {
	registry      *prometheus.Registry
	operations    *prometheus.CounterVec
	failures      *prometheus.CounterVec
	totalStaked   prometheus.Gauge
	rewardBalance prometheus.Gauge
	participants  prometheus.Gauge
}

// New creates and registers the meters, plus Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Committed ledger operations by kind.",
		}, []string{"op"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Rejected ledger operations by kind and error code.",
		}, []string{"op", "code"}),
		totalStaked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_staked",
			Help:      "Total staked principal in whole tokens.",
		}),
		rewardBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reward_balance",
			Help:      "Reward tokens held by custody in whole tokens.",
		}),
		participants: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "participants",
			Help:      "Participants with a non-zero stake.",
		}),
	}
	m.registry.MustRegister(
		m.operations, m.failures, m.totalStaked, m.rewardBalance, m.participants,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveOperation counts a committed operation.
func (m *Metrics) ObserveOperation(op string) {
	m.operations.WithLabelValues(op).Inc()
}

// ObserveFailure counts a rejected operation. An empty code is reported as "internal".
func (m *Metrics) ObserveFailure(op, code string) {
	if code == "" {
		code = "internal"
	}
	m.failures.WithLabelValues(op, code).Inc()
}

// ObservePool updates the pool gauges.
func (m *Metrics) ObservePool(p *model.PoolState) {
	m.totalStaked.Set(wholeTokens(p.TotalStaked.Float64()))
	m.rewardBalance.Set(wholeTokens(p.RewardBalance.Float64()))
	m.participants.Set(float64(p.Participants))
}

func wholeTokens(baseUnits float64) float64 {
	return baseUnits / 1e18
}

// Handler serves the registry in the Prometheus exposition format.
// Compression is left to the enclosing HTTP stack.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{DisableCompression: true})
}
