// Package telemetry provides application-level observability.
//
// All metrics are registered against the default Prometheus registry and are
// exposed by the side-channel HTTP server started in main.go:
//
//	GET http://<host>:<ORG_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090. The endpoint is not served by the Gin router, so it is
// never reachable through the public API port.
//
// HTTP metrics are labelled by c.FullPath() (the route template, e.g.
// /org/update), never the raw URL, to keep label cardinality bounded.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics, labelled by method, route template, and status code.
//
// Example PromQL:
//   - Request rate:  rate(http_requests_total[5m])
//   - Error rate:    sum(rate(http_requests_total{status=~"5.."}[5m])) / sum(rate(http_requests_total[5m]))
//   - p99 latency:   histogram_quantile(0.99, sum by (path, le) (rate(http_request_duration_seconds_bucket[5m])))
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Organization lifecycle counters. Creation and deletion each cover a full
// transaction including the tenant collection DDL, so a rising failure rate
// here usually points at the database rather than the API.
var (
	OrganizationsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "organizations_created_total",
			Help: "Total number of organizations successfully registered.",
		},
	)

	OrganizationsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "organizations_deleted_total",
			Help: "Total number of organizations deleted, including their data collections.",
		},
	)
)

// LoginAttemptsTotal counts admin login attempts by outcome ("success" or
// "failure"). Alerting on a failure spike is the cheapest brute-force signal
// available without per-IP tracking.
//
// Example PromQL:
//   - Failure ratio:  sum(rate(login_attempts_total{outcome="failure"}[15m])) / sum(rate(login_attempts_total[15m]))
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "Total number of admin login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// DBOpenConnections tracks the open connections held by the sql.DB pool. It
// is sampled every 30 seconds by StartDBStatsCollector rather than
// per-request.
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector launches a goroutine that samples connection pool
// statistics every 30 seconds. A failed ping is logged and the collector keeps
// ticking so a transient outage does not freeze the gauge for the rest of the
// process lifetime. The goroutine dies with the process at shutdown.
func StartDBStatsCollector(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			sampleDBStats(db)
		}
	}()
}

func sampleDBStats(db *sql.DB) {
	if err := db.Ping(); err != nil {
		slog.Warn("db stats collector: database unreachable", "error", err)
		return
	}
	DBOpenConnections.Set(float64(db.Stats().OpenConnections))
}
