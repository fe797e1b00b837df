package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the enrollment module.
type Metrics struct {
	EnrollmentsCreated  prometheus.Counter
	EnrollConflicts     *prometheus.CounterVec
	IndexSyncFailures   prometheus.Counter
	IndexRepairs        prometheus.Counter
	DanglingDropped     prometheus.Counter
	ProgressUpdates     prometheus.Counter
	ListEnrolledLatency prometheus.Histogram
}

// New registers the enrollment metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EnrollmentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "lms_enrollments_created_total",
			Help: "Enrollments written to the ledger",
		}),
		EnrollConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_enroll_conflicts_total",
			Help: "Enroll calls rejected as already enrolled, by where the duplicate was caught",
		}, []string{"stage"}), // stage: "precheck", "ledger"
		IndexSyncFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "lms_course_index_sync_failures_total",
			Help: "Enrollments whose user course-index update failed after the ledger write",
		}),
		IndexRepairs: factory.NewCounter(prometheus.CounterOpts{
			Name: "lms_course_index_repairs_total",
			Help: "Course references replayed into user indexes by reconciliation",
		}),
		DanglingDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "lms_dangling_course_references_total",
			Help: "Enrollments skipped on read because their course no longer exists",
		}),
		ProgressUpdates: factory.NewCounter(prometheus.CounterOpts{
			Name: "lms_progress_updates_total",
			Help: "Successful progress writes",
		}),
		ListEnrolledLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "lms_list_enrolled_courses_duration_seconds",
			Help:    "Duration of the enrollment to catalog join",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementCreated() {
	if m != nil {
		m.EnrollmentsCreated.Inc()
	}
}

func (m *Metrics) IncrementConflict(stage string) {
	if m != nil {
		m.EnrollConflicts.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) IncrementIndexSyncFailure() {
	if m != nil {
		m.IndexSyncFailures.Inc()
	}
}

func (m *Metrics) AddIndexRepairs(n int) {
	if m != nil && n > 0 {
		m.IndexRepairs.Add(float64(n))
	}
}

func (m *Metrics) IncrementDanglingDropped() {
	if m != nil {
		m.DanglingDropped.Inc()
	}
}

func (m *Metrics) IncrementProgressUpdate() {
	if m != nil {
		m.ProgressUpdates.Inc()
	}
}

// ObserveListEnrolled records the join duration. Call with time.Now() at
// the start of the operation.
func (m *Metrics) ObserveListEnrolled(start time.Time) {
	if m != nil {
		m.ListEnrolledLatency.Observe(time.Since(start).Seconds())
	}
}
