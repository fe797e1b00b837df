package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.IncrementCreated()
	m.IncrementConflict("precheck")
	m.IncrementConflict("ledger")
	m.IncrementConflict("ledger")
	m.IncrementIndexSyncFailure()
	m.AddIndexRepairs(3)
	m.AddIndexRepairs(0)
	m.IncrementDanglingDropped()
	m.ObserveListEnrolled(time.Now())

	assert.Equal(t, float64(1), testutil.ToFloat64(m.EnrollmentsCreated))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EnrollConflicts.WithLabelValues("precheck")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.EnrollConflicts.WithLabelValues("ledger")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.IndexSyncFailures))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.IndexRepairs))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DanglingDropped))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ListEnrolledLatency))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementCreated()
		m.IncrementConflict("ledger")
		m.IncrementIndexSyncFailure()
		m.AddIndexRepairs(1)
		m.IncrementDanglingDropped()
		m.IncrementProgressUpdate()
		m.ObserveListEnrolled(time.Now())
	})
}
