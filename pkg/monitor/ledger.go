package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LedgerMetrics 账本查询与扫描相关的业务指标
type LedgerMetrics struct {
	RequestDuration  *prometheus.HistogramVec
	RequestErrors    *prometheus.CounterVec
	ScannedAddresses *prometheus.CounterVec
	ResolvedBundles  prometheus.Counter
}

// NewLedgerMetrics 在 reg 上注册指标, 测试里传 prometheus.NewRegistry()
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	factory := promauto.With(reg)
	return &LedgerMetrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tangle_ledger_request_duration_seconds",
			Help:    "Latency of ledger node queries by command",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
		RequestErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tangle_ledger_request_errors_total",
			Help: "Failed ledger node queries by command",
		}, []string{"command"}),
		ScannedAddresses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tangle_scanned_addresses_total",
			Help: "Addresses classified by the usage scanner",
		}, []string{"state"}),
		ResolvedBundles: factory.NewCounter(prometheus.CounterOpts{
			Name: "tangle_resolved_bundles_total",
			Help: "Bundles returned by the bundle resolver",
		}),
	}
}
