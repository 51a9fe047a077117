package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

type Manager struct {
	CounterLoginAttempts *prometheus.CounterVec
	CounterLogouts       prometheus.Counter
	CounterRequests      *prometheus.CounterVec

	registry *prometheus.Registry
}

func NewTestManager() *Manager {
	return NewManager("login_ui", "test", prometheus.NewRegistry())
}

// SetupPrometheus returns a registry with the Go runtime and process collectors.
func SetupPrometheus() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func NewManager(namespace, subsystem string, reg *prometheus.Registry) *Manager {
	factory := promauto.With(reg)

	counterLoginAttempts := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "login_attempts_total",
		Help:      "The total number of login form submissions by result",
	}, []string{"result"})
	counterLogouts := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "logouts_total",
		Help:      "The total number of logouts",
	})
	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "requests_total",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})

	return &Manager{
		CounterLoginAttempts: counterLoginAttempts,
		CounterLogouts:       counterLogouts,
		CounterRequests:      counterRequests,
		registry:             reg,
	}
}

func (m *Manager) LoginAttempt(ok bool) {
	result := ResultFailure
	if ok {
		result = ResultSuccess
	}
	m.CounterLoginAttempts.WithLabelValues(result).Inc()
}

func (m *Manager) Logout() {
	m.CounterLogouts.Inc()
}

func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RequestMetrics counts served requests by method and status code.
func (m *Manager) RequestMetrics() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resp := &responseWriter{w, http.StatusOK}
			next.ServeHTTP(resp, r)
			m.CounterRequests.With(prometheus.Labels{
				"method": r.Method,
				"status": strconv.Itoa(resp.statusCode),
			}).Inc()
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (r *responseWriter) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.statusCode = statusCode
}
