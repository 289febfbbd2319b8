package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MovementsTotal 资金操作次数，按操作类型和结果（ok / 错误种类）统计
	MovementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bank_movements_total",
		Help: "Money movements processed, labeled by operation and outcome",
	}, []string{"operation", "outcome"})

	MovementDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bank_movement_duration_seconds",
		Help:    "Latency of money movement units of work",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"operation"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bank_http_requests_total",
		Help: "HTTP requests processed, labeled by method, route and status",
	}, []string{"method", "route", "status"})

	OutboxPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bank_outbox_published_total",
		Help: "Outbox messages handed to the broker, labeled by result",
	}, []string{"result"})

	// OutboxBacklog 按状态统计的 outbox 积压，由 OutboxMonitor 定期刷新
	OutboxBacklog = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bank_outbox_backlog",
		Help: "Outbox messages waiting for delivery or given up, labeled by status",
	}, []string{"status"})
)
