package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "agrocore"

// Version is reported through the agrocore_info gauge.
var Version = "1.0.0"

var (
	AuthEventCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Login, registration and logout attempts",
	}, []string{"event"})

	AuthErrorCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_errors_total",
		Help:      "Rejected authentication attempts by cause",
	}, []string{"type"})

	AccessDeniedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Requests rejected by role or tenant checks",
	}, []string{"domain", "reason"})

	OperationCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Completed domain operations",
	}, []string{"domain", "operation"})

	JobRunCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_runs_total",
		Help:      "Scheduled job runs by outcome",
	}, []string{"job", "outcome"})

	HTTPRequestCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status",
	}, []string{"endpoint", "method", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "method", "status"})

	// operation is one of query, insert, update, delete
	DBOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "db_operation_duration_seconds",
		Help:      "Database call latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	ActiveTokensGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_tokens",
		Help:      "Tokens issued minus explicit logouts",
	})

	LowStockGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "low_stock_resources",
		Help:      "Resources at or below their low stock threshold",
	})

	ActiveListingsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_listings",
		Help:      "Active marketplace listings",
	})

	infoGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "info",
		Help:      "Build information",
	}, []string{"version"})
)

func init() {
	infoGauge.WithLabelValues(Version).Set(1)
}

// GetPrometheusHandler serves the default registry.
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation is used as `defer TrackDBOperation("query")(time.Now())`.
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		DBOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// MetricsMiddleware counts and times every request by its route pattern.
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			began := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := strconv.Itoa(c.Response().Status)
			RequestDuration.WithLabelValues(c.Path(), c.Request().Method, status).Observe(time.Since(began).Seconds())
			HTTPRequestCounter.WithLabelValues(c.Path(), c.Request().Method, status).Inc()
			return nil
		}
	}
}

func IncreaseActiveTokens() { ActiveTokensGauge.Inc() }

func DecreaseActiveTokens() { ActiveTokensGauge.Dec() }

// RecordAuthEvent counts a login, register or logout attempt.
func RecordAuthEvent(event string) {
	AuthEventCounter.WithLabelValues(event).Inc()
}

func RecordAuthError(errorType string) {
	AuthErrorCounter.WithLabelValues(errorType).Inc()
}

func RecordAccessDenied(domain, reason string) {
	AccessDeniedCounter.WithLabelValues(domain, reason).Inc()
}

func RecordOperation(domain, operation string) {
	OperationCounter.WithLabelValues(domain, operation).Inc()
}

// RecordJobRun records the outcome of a scheduled job.
func RecordJobRun(job string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	JobRunCounter.WithLabelValues(job, outcome).Inc()
}

func UpdateLowStock(count int64) {
	LowStockGauge.Set(float64(count))
}

func UpdateActiveListings(count int64) {
	ActiveListingsGauge.Set(float64(count))
}
