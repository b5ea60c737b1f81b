// Package metrics builds the tally scope the API reports to and the
// per-endpoint counters recorded by the HTTP layer.
package metrics

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/uber-go/tally/v6"
	"github.com/uber-go/tally/v6/prometheus"

	"mrp/internal/apperr"
)

const reportInterval = 10 * time.Second

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewReporter returns a Prometheus-backed root scope and the handler that
// serves it. When disabled it returns tally.NoopScope and a nil handler.
func NewReporter(enabled bool, serviceName string, log *slog.Logger) (scope tally.Scope, handler http.Handler, closer io.Closer) {
	if !enabled {
		return tally.NoopScope, nil, nopCloser{}
	}

	reporter := prometheus.NewReporter(prometheus.Options{
		OnRegisterError: func(err error) {
			log.Warn("metric registration failed", "error", err)
		},
	})
	scope, closer = tally.NewRootScope(tally.ScopeOptions{
		Tags:            map[string]string{"service": serviceName},
		CachedReporter:  reporter,
		SanitizeOptions: &prometheus.DefaultSanitizerOpts,
	}, reportInterval)

	scope.Counter("service_started").Inc(1)
	return scope, reporter.HTTPHandler(), closer
}

// EndpointMetrics defines an endpoint's call and outcome counters.
type EndpointMetrics struct {
	Calls     tally.Counter
	Successes tally.Counter
	Latency   tally.Timer
	scope     tally.Scope
}

// NewEndpointMetrics creates the counters for one route.
func NewEndpointMetrics(scope tally.Scope, endpoint string) *EndpointMetrics {
	scope = scope.Tagged(map[string]string{
		"component": "handler",
		"endpoint":  endpoint,
	})
	return &EndpointMetrics{
		Calls:     scope.Counter("calls"),
		Successes: scope.Counter("success"),
		Latency:   scope.Timer("latency"),
		scope:     scope,
	}
}

// Error counts one failure under the given label.
func (m *EndpointMetrics) Error(label string) {
	m.scope.Tagged(map[string]string{"error": label}).Counter("error").Inc(1)
}

// Middleware records calls, latency and outcome for every matched route.
func Middleware(scope tally.Scope) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m := NewEndpointMetrics(scope.Tagged(map[string]string{"method": c.Request.Method}), endpoint)
		m.Calls.Inc(1)
		m.Latency.Record(time.Since(start))

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			m.Successes.Inc(1)
			return
		}
		m.Error(errorLabel(status))
	}
}

func errorLabel(status int) string {
	switch status {
	case http.StatusBadRequest:
		return apperr.KindValidation.String()
	case http.StatusUnauthorized:
		return apperr.KindUnauthenticated.String()
	case http.StatusForbidden:
		return apperr.KindForbidden.String()
	case http.StatusNotFound:
		return apperr.KindNotFound.String()
	case http.StatusMethodNotAllowed:
		return apperr.KindMethodNotAllowed.String()
	case http.StatusTooManyRequests:
		return "rate_limited"
	default:
		return apperr.KindInternal.String()
	}
}
