package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the user-visible outcomes of the attendance workflow.
type Metrics struct {
	SubmissionsTotal   *prometheus.CounterVec
	EventsCreatedTotal prometheus.Counter
	CSVExportsTotal    prometheus.Counter
}

// New registers the collectors on the default registry.
func New() *Metrics {
	return &Metrics{
		SubmissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_submissions_total",
			Help: "Attendance submissions by outcome",
		}, []string{"outcome"}),
		EventsCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attendance_events_created_total",
			Help: "Events created by admins",
		}),
		CSVExportsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attendance_csv_exports_total",
			Help: "CSV exports generated",
		}),
	}
}

// RecordSubmission increments the submission counter for an outcome label
// (accepted, rejected_validation, rejected_geofence, rejected_duplicate).
func (m *Metrics) RecordSubmission(outcome string) {
	m.SubmissionsTotal.WithLabelValues(outcome).Inc()
}
