package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus метрики. Регистрируются в default registry через promauto,
// отдаются стандартным promhttp handler на /metrics.
var (
	// HTTPRequestsTotal — счётчик HTTP запросов по методу, маршруту и коду.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ensemble_http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration — длительность HTTP запросов.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ensemble_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// ImportsTotal — счётчик импортов по виду сущности и исходу.
	ImportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ensemble_imports_total",
		Help: "Total number of import operations.",
	}, []string{"kind", "outcome"})

	// ImportedItemsTotal — счётчик импортированных сущностей по виду.
	ImportedItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ensemble_imported_items_total",
		Help: "Total number of entities committed by imports.",
	}, []string{"kind"})

	// RunsTotal — счётчик запусков оркестрации по движку и исходу.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ensemble_runs_total",
		Help: "Total number of orchestration runs.",
	}, []string{"engine", "outcome"})

	// RunDuration — длительность запусков оркестрации по движку.
	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ensemble_run_duration_seconds",
		Help:    "Orchestration run duration in seconds.",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"engine"})
)

// Исходы для меток outcome.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)
