package prometheus

import (
	"strconv"
	"sync"
	"time"

	"shippingbar-service/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Identity metrics
	IdentityResolutionCounter *prometheus.CounterVec

	// Settings metrics
	SettingsOperationCounter *prometheus.CounterVec

	// Gateway metrics
	GatewayRequestCounter    *prometheus.CounterVec
	TokensRefreshedCounter   prometheus.Counter
	BestEffortFailureCounter *prometheus.CounterVec

	// Store operation metrics
	StoreOperationHistogram *prometheus.HistogramVec

	// Request metrics
	RequestDurationHistogram *prometheus.HistogramVec
	APIRequestCounter        *prometheus.CounterVec
	APIErrorCounter          *prometheus.CounterVec

	namespace string
	initOnce  sync.Once
)

// InitMetrics initializes all Prometheus metrics. Only the first call registers.
func InitMetrics(cfg *config.Config) {
	initOnce.Do(func() {
		namespace = cfg.Metrics.Prefix
		register()
	})
}

func register() {
	IdentityResolutionCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_resolution_total",
			Help:      "Total number of identity resolutions by source",
		},
		[]string{"source"},
	)

	SettingsOperationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settings_operation_total",
			Help:      "Total number of settings operations",
		},
		[]string{"operation"},
	)

	GatewayRequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Total number of requests to the Wix API",
		},
		[]string{"operation", "status"},
	)

	TokensRefreshedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_refreshed_total",
		Help:      "Total number of access tokens refreshed after an auth failure",
	})

	BestEffortFailureCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "best_effort_failures_total",
			Help:      "Total number of swallowed best-effort gateway failures",
		},
		[]string{"operation"},
	)

	StoreOperationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Duration of settings store operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	RequestDurationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	APIRequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "path"},
	)

	APIErrorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total number of API errors",
		},
		[]string{"method", "path", "status"},
	)
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if APIRequestCounter == nil {
				return next(c)
			}
			start := time.Now()

			APIRequestCounter.With(prometheus.Labels{
				"method": c.Request().Method,
				"path":   c.Path(),
			}).Inc()

			err := next(c)

			status := strconv.Itoa(c.Response().Status)
			RequestDurationHistogram.With(prometheus.Labels{
				"method": c.Request().Method,
				"path":   c.Path(),
				"status": status,
			}).Observe(time.Since(start).Seconds())

			if c.Response().Status >= 400 {
				APIErrorCounter.With(prometheus.Labels{
					"method": c.Request().Method,
					"path":   c.Path(),
					"status": status,
				}).Inc()
			}

			return err
		}
	}
}

// HandlerFunc returns a HTTP handler for metrics endpoint
func HandlerFunc() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// TrackStoreOperation returns a function that tracks store operation duration
func TrackStoreOperation(operation string) func(time.Time) {
	return func(startTime time.Time) {
		if StoreOperationHistogram == nil {
			return
		}
		StoreOperationHistogram.With(prometheus.Labels{
			"operation": operation,
		}).Observe(time.Since(startTime).Seconds())
	}
}

// RecordIdentityResolution counts a resolution by source, or "unresolved"
func RecordIdentityResolution(source string) {
	if IdentityResolutionCounter == nil {
		return
	}
	IdentityResolutionCounter.With(prometheus.Labels{"source": source}).Inc()
}

// RecordSettingsOperation counts resolve, create, update and validation_error
func RecordSettingsOperation(operation string) {
	if SettingsOperationCounter == nil {
		return
	}
	SettingsOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordGatewayRequest counts a Wix API call by status class (2xx, 4xx, 5xx, error)
func RecordGatewayRequest(operation string, statusCode int) {
	if GatewayRequestCounter == nil {
		return
	}
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode/100) + "xx"
	}
	GatewayRequestCounter.With(prometheus.Labels{
		"operation": operation,
		"status":    status,
	}).Inc()
}

// RecordTokenRefreshed increments the token refresh counter
func RecordTokenRefreshed() {
	if TokensRefreshedCounter == nil {
		return
	}
	TokensRefreshedCounter.Inc()
}

// RecordBestEffortFailure counts a swallowed gateway failure
func RecordBestEffortFailure(operation string) {
	if BestEffortFailureCounter == nil {
		return
	}
	BestEffortFailureCounter.With(prometheus.Labels{"operation": operation}).Inc()
}
