package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for auth operations.
type Metrics struct {
	UsersCreated     prometheus.Counter
	LoginSuccesses   prometheus.Counter
	AuthFailures     *prometheus.CounterVec
	AccountLockouts  prometheus.Counter
	RateLimitedOps   *prometheus.CounterVec
	TokensIssued     *prometheus.CounterVec
	PasswordChanges  prometheus.Counter
	LoginDurationsMs prometheus.Histogram
}

// New registers and returns auth metrics collectors. Call once per process;
// promauto panics on duplicate registration.
func New() *Metrics {
	return &Metrics{
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taskhive_users_created_total",
			Help: "Total number of accounts registered",
		}),
		LoginSuccesses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taskhive_login_successes_total",
			Help: "Total number of successful logins",
		}),
		AuthFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhive_auth_failures_total",
			Help: "Total number of authentication failures, labeled by reason",
		}, []string{"reason"}),
		AccountLockouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taskhive_account_lockouts_total",
			Help: "Total number of accounts locked after repeated failures",
		}),
		RateLimitedOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhive_rate_limited_total",
			Help: "Total number of requests denied by the rate limiter, labeled by operation",
		}, []string{"operation"}),
		TokensIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhive_tokens_issued_total",
			Help: "Total number of tokens issued, labeled by kind",
		}, []string{"kind"}),
		PasswordChanges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taskhive_password_changes_total",
			Help: "Total number of completed password changes",
		}),
		LoginDurationsMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskhive_login_duration_ms",
			Help:    "Duration of login operations in milliseconds",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
	}
}
