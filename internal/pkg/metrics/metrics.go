package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 保守予定操作の総数（operation: schedule/delete, status: success, already_scheduled, not_found, calendar_error, persist_error）
	MaintenanceOpsTotal *prometheus.CounterVec

	// カレンダーバックエンド呼び出しの所要時間（backend, operation, status）
	CalendarRequestDuration *prometheus.HistogramVec

	// 現在登録されている保守予定の数
	ScheduledEvents prometheus.Gauge
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		MaintenanceOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maintenance_operations_total",
				Help: "Total number of maintenance scheduling operations",
			},
			[]string{"operation", "status"},
		),
		CalendarRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "calendar_request_duration_seconds",
				Help:    "Time spent on calendar backend calls",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"backend", "operation", "status"},
		),
		ScheduledEvents: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "maintenance_scheduled_events",
				Help: "Current number of scheduled maintenance events",
			},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.MaintenanceOpsTotal,
		m.CalendarRequestDuration,
		m.ScheduledEvents,
	)

	return m
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す（未初期化ならnil）
func Get() *Metrics {
	return defaultMetrics
}
