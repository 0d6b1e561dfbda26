// Package metrics exposes Prometheus instrumentation for the polling pipeline.
package metrics

import (
	"time"

	"CoinSentinel/internal/model"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the monitor.
type Metrics struct {
	CyclesTotal        *prometheus.CounterVec // labels: result=ok|failed|skipped
	FetchFailures      prometheus.Counter
	SkippedAssets      prometheus.Counter
	AlertsFired        *prometheus.CounterVec // labels: kind=target|change
	SignalRank         *prometheus.GaugeVec   // labels: asset; 0=strong-buy .. 4=strong-sell
	FetchDuration      prometheus.Histogram
	WSClients          prometheus.Gauge
	BackgroundSyncs    *prometheus.CounterVec // labels: result=ok|failed
	NotificationErrors prometheus.Counter
}

// NewMetrics registers and returns all metrics on reg. A nil reg uses the
// default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coinsentinel_cycles_total",
			Help: "Polling cycles by result",
		}, []string{"result"}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coinsentinel_fetch_failures_total",
			Help: "Cycles whose fetch retries were exhausted",
		}),
		SkippedAssets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coinsentinel_skipped_assets_total",
			Help: "Configured assets missing from a feed response",
		}),
		AlertsFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coinsentinel_alerts_fired_total",
			Help: "Alerts fired by kind",
		}, []string{"kind"}),
		SignalRank: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "coinsentinel_signal_rank",
			Help: "Latest signal per asset (0=strong-buy, 2=hold, 4=strong-sell)",
		}, []string{"asset"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coinsentinel_fetch_duration_seconds",
			Help:    "Feed fetch latency including retries",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "coinsentinel_ws_clients",
			Help: "Connected dashboard websocket clients",
		}),
		BackgroundSyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coinsentinel_background_syncs_total",
			Help: "Background sync runs by result",
		}, []string{"result"}),
		NotificationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coinsentinel_notification_errors_total",
			Help: "Notifications that could not be delivered",
		}),
	}

	reg.MustRegister(
		m.CyclesTotal,
		m.FetchFailures,
		m.SkippedAssets,
		m.AlertsFired,
		m.SignalRank,
		m.FetchDuration,
		m.WSClients,
		m.BackgroundSyncs,
		m.NotificationErrors,
	)
	return m
}

// ObserveSignal records the latest label for an asset.
func (m *Metrics) ObserveSignal(assetID string, label model.SignalLabel) {
	m.SignalRank.WithLabelValues(assetID).Set(float64(label.Rank()))
}

// ObserveAlert counts a fired alert.
func (m *Metrics) ObserveAlert(kind model.AlertKind) {
	m.AlertsFired.WithLabelValues(string(kind)).Inc()
}

// ObserveFetch records fetch latency since start.
func (m *Metrics) ObserveFetch(start time.Time) {
	m.FetchDuration.Observe(time.Since(start).Seconds())
}
