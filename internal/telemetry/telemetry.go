// Package telemetry wires the engine's zap logger defaults and the
// prometheus counters/histograms the OMS and TMS report against,
// mirroring the teacher's internal/metrics packages. The registry is
// inert: the engine never starts an HTTP server; a caller wanting
// /metrics mounts promhttp.Handler() against Registry itself.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Registry is the package-level prometheus registry metrics are
// registered against. A fresh one is used (rather than the global
// default registry) so multiple engine instances in one process don't
// collide on metric names.
var Registry = prometheus.NewRegistry()

// Metrics bundles the OMS/TMS instrumentation points.
type Metrics struct {
	OrdersCreated   *prometheus.CounterVec
	OrdersRejected  *prometheus.CounterVec
	TradesFilled    *prometheus.CounterVec
	RuleViolations  *prometheus.CounterVec
	TradeLatency    prometheus.Histogram
	LedgerSize      *prometheus.GaugeVec
}

// NewMetrics registers a fresh Metrics bundle against Registry. Safe
// to call more than once only if each call uses a distinct namespace.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		OrdersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders that passed validation and were submitted.",
		}, []string{"strategy"}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Orders rejected by rule violation or insufficient funds.",
		}, []string{"strategy", "reason"}),
		TradesFilled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_filled_total",
			Help:      "Trades that reached FILLED status.",
		}, []string{"strategy", "symbol", "direction"}),
		RuleViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_violations_total",
			Help:      "Rule-violation rejections by failing rule.",
		}, []string{"rule"}),
		TradeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "trade_execution_seconds",
			Help:      "Wall-clock time to execute one ExecuteTrade call (all of its instructions).",
			Buckets:   prometheus.DefBuckets,
		}),
		LedgerSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ledger_size",
			Help:      "Current trade count in an owner's ledger.",
		}, []string{"owner"}),
	}

	Registry.MustRegister(m.OrdersCreated, m.OrdersRejected, m.TradesFilled, m.RuleViolations, m.TradeLatency, m.LedgerSize)
	return m
}

// ObserveLatency records the duration since start against TradeLatency.
func (m *Metrics) ObserveLatency(start time.Time) {
	m.TradeLatency.Observe(time.Since(start).Seconds())
}

// NewLogger builds the engine's default *zap.Logger. development=true
// yields a console encoder at debug level (matches the teacher's local
// dev config); development=false yields JSON at info level for
// production, the way every teacher cmd/server/main.go's initLogger
// helper switches on environment.
func NewLogger(development bool) (*zap.Logger, error) {
	if development {
		cfg := zap.NewDevelopmentConfig()
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	return cfg.Build()
}
