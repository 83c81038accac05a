package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks identity counters.
type Metrics struct {
	SignUps         prometheus.Counter
	SignIns         prometheus.Counter
	SignInFailures  prometheus.Counter
	RoleCacheHits   prometheus.Counter
	RoleCacheMisses prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		SignUps: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opsledger_identity_signups_total",
			Help: "Accounts created",
		}),
		SignIns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opsledger_identity_signins_total",
			Help: "Successful sign-ins",
		}),
		SignInFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opsledger_identity_signin_failures_total",
			Help: "Rejected sign-in attempts",
		}),
		RoleCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opsledger_identity_role_cache_hits_total",
			Help: "Role lookups served from the cache",
		}),
		RoleCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opsledger_identity_role_cache_misses_total",
			Help: "Role lookups that fell through to the store",
		}),
	}
}
