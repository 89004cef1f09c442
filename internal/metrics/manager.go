// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login results.
const (
	LoginSuccess           = "success"
	LoginFailed            = "failed"
	LoginLocked            = "locked"
	LoginTwoFactorRequired = "two_factor_required"
)

// Manager groups every collector the service updates.
type Manager struct {
	// counters
	CounterLogins          *prometheus.CounterVec
	CounterLockouts        prometheus.Counter
	CounterRegistrations   prometheus.Counter
	CounterPasswordResets  *prometheus.CounterVec
	CounterTokenChecks     *prometheus.CounterVec
	CounterRateLimited     prometheus.Counter
	CounterProgressReports prometheus.Counter
	CounterRequests        *prometheus.CounterVec

	// histograms
	HistogramRequestDuration *prometheus.HistogramVec
}

// NewTestManager returns a Manager registered on a throwaway registry.
func NewTestManager() *Manager {
	return NewManager("fittrack_test", prometheus.NewRegistry())
}

// NewTestManagerAndRegistry is NewTestManager that also returns the registry.
func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("fittrack_test", reg), reg
}

// NewUnregistered returns a Manager whose collectors are not exported.
// Components given no Manager fall back to it.
func NewUnregistered() *Manager {
	return NewManager("fittrack", prometheus.NewRegistry())
}

// NewManager creates and registers all collectors on reg under namespace.
func NewManager(namespace string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterLogins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by result",
		}, []string{"result"}),
		CounterLockouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "lockouts_total",
			Help:      "Accounts locked after repeated failures",
		}),
		CounterRegistrations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "registrations_total",
			Help:      "Successful registrations",
		}),
		CounterPasswordResets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "password_resets_total",
			Help:      "Password reset operations by stage",
		}, []string{"stage"}),
		CounterTokenChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "token_validations_total",
			Help:      "Session token validations by result code",
		}, []string{"result"}),
		CounterRateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the rate limiter",
		}),
		CounterProgressReports: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "progress",
			Name:      "reports_total",
			Help:      "Progress reports computed",
		}),
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		HistogramRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Histogram of response time for requests in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"route", "method", "status_code"}),
	}
}
