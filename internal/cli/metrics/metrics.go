// Package metrics — Prometheus-метрики клиента архива: HTTP-вызовы API и операции хранилищ.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome values for StoreOps.
const (
	OutcomeFulfilled = "fulfilled"
	OutcomeRejected  = "rejected"
	OutcomeStale     = "stale"
)

var (
	// APIRequests counts API calls by method and status code ("0" for transport failures).
	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "archive_client_api_requests_total",
		Help: "Количество HTTP-запросов к API архива.",
	}, []string{"method", "code"})

	// APIDuration — длительность HTTP-запросов к API.
	APIDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "archive_client_api_request_duration_seconds",
		Help:    "Длительность HTTP-запросов к API архива.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	// StoreOps counts finished store operations by store, operation and outcome.
	StoreOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "archive_client_store_operations_total",
		Help: "Завершённые операции синхронизации хранилищ.",
	}, []string{"store", "op", "outcome"})
)

// ObserveRequest records one finished API call.
func ObserveRequest(method string, code int, d time.Duration) {
	APIRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	APIDuration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveStoreOp records one finished store operation.
func ObserveStoreOp(store, op, outcome string) {
	StoreOps.WithLabelValues(store, op, outcome).Inc()
}
