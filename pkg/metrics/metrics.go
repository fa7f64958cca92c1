// Package metrics 帳本操作的 Prometheus 指標
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 持有獨立的 Registry，避免污染全域 DefaultRegisterer
type Metrics struct {
	Registry *prometheus.Registry

	operations *prometheus.CounterVec
	accounts   prometheus.Gauge
}

// New 建立並註冊所有 collector
func New(namespace string) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "operations_total",
				Help:      "Ledger operations by outcome.",
			},
			[]string{"op", "result"},
		),
		accounts: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "accounts",
				Help:      "Number of accounts held in the ledger cache.",
			},
		),
	}
	m.Registry.MustRegister(m.operations, m.accounts)
	return m
}

// ObserveOperation 累計一次操作結果
func (m *Metrics) ObserveOperation(op string, result string) {
	m.operations.WithLabelValues(op, result).Inc()
}

// SetAccounts 更新帳戶數
func (m *Metrics) SetAccounts(n int) {
	m.accounts.Set(float64(n))
}

// Handler /metrics 的 HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
