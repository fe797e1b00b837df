package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the catalog module.
type Metrics struct {
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	CacheErrors *prometheus.CounterVec
}

// New registers the catalog metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers on reg; tests pass a fresh registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "lms_catalog_cache_hits_total",
			Help: "Course lookups served from Redis",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "lms_catalog_cache_misses_total",
			Help: "Course lookups that fell through to the catalog store",
		}),
		CacheErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_catalog_cache_errors_total",
			Help: "Redis failures by operation; the request falls back to the store",
		}, []string{"op"}), // op: "get", "set", "del", "decode"
	}
}

func (m *Metrics) IncrementCacheHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) IncrementCacheMiss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}

func (m *Metrics) IncrementCacheError(op string) {
	if m != nil {
		m.CacheErrors.WithLabelValues(op).Inc()
	}
}
