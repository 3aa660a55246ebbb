// Package metrics provides Prometheus metrics for the lab records service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	ResultsClassified *prometheus.CounterVec
	ResultsRecorded   prometheus.Counter
	ReportsGenerated  prometheus.Counter
	LoginAttempts     *prometheus.CounterVec
	RateLimited       prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "labassist_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "labassist_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "route"}),
		ResultsClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "labassist_results_classified_total",
			Help: "Test results classified against their reference range, by status",
		}, []string{"status"}),
		ResultsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "labassist_results_recorded_total",
			Help: "Test result rows stored",
		}),
		ReportsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "labassist_reports_generated_total",
			Help: "Patient reports generated",
		}),
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "labassist_login_attempts_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "labassist_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.ResultsClassified,
		m.ResultsRecorded,
		m.ReportsGenerated,
		m.LoginAttempts,
		m.RateLimited,
	)

	return m
}

// ObserveClassification counts one classified result.
func (m *Metrics) ObserveClassification(status string) {
	m.ResultsClassified.WithLabelValues(status).Inc()
}

// ObserveResultsRecorded counts stored result rows.
func (m *Metrics) ObserveResultsRecorded(n int) {
	m.ResultsRecorded.Add(float64(n))
}

func (m *Metrics) ObserveReportGenerated() {
	m.ReportsGenerated.Inc()
}

// ObserveLogin counts a login attempt; outcome is success, invalid_email or invalid_password.
func (m *Metrics) ObserveLogin(outcome string) {
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

// Handler returns the Prometheus HTTP handler for the given gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
