package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records attendance, outpass and reconciliation activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Attendance marks by outcome: present, blocked, late_return, unverified, window_closed
	AttendanceMarks *prometheus.CounterVec

	// Outpasses issued by type: Digital, Physical
	OutpassesGenerated *prometheus.CounterVec

	// Mess tokens by action: generated, closed, rejected
	MessTokens *prometheus.CounterVec

	// Residents changed by each heartbeat rule
	ResidentsAffected *prometheus.CounterVec

	JobDuration *prometheus.HistogramVec
	JobFailures *prometheus.CounterVec
}

// New registers every metric with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AttendanceMarks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hms_attendance_marks_total",
			Help: "Fingerprint attendance marks by outcome",
		}, []string{"outcome"}),

		OutpassesGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hms_outpasses_generated_total",
			Help: "Outpasses issued by type",
		}, []string{"type"}),

		MessTokens: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hms_mess_tokens_total",
			Help: "Special food tokens by action",
		}, []string{"action"}),

		ResidentsAffected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hms_reconcile_residents_affected_total",
			Help: "Residents changed by reconciliation rules",
		}, []string{"rule"}),

		JobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hms_cron_job_duration_seconds",
			Help:    "Duration of scheduled job runs",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"job"}),

		JobFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hms_cron_job_failures_total",
			Help: "Scheduled job runs that returned an error",
		}, []string{"job"}),
	}
}

func (m *Metrics) IncAttendanceMark(outcome string) {
	if m != nil {
		m.AttendanceMarks.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncOutpass(outpassType string) {
	if m != nil {
		m.OutpassesGenerated.WithLabelValues(outpassType).Inc()
	}
}

func (m *Metrics) IncMessToken(action string) {
	if m != nil {
		m.MessTokens.WithLabelValues(action).Inc()
	}
}

// AddResidentsAffected records n residents changed by rule. Zero is ignored.
func (m *Metrics) AddResidentsAffected(rule string, n int64) {
	if m != nil && n > 0 {
		m.ResidentsAffected.WithLabelValues(rule).Add(float64(n))
	}
}

// ObserveJob records one run of a scheduled job.
func (m *Metrics) ObserveJob(job string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.JobDuration.WithLabelValues(job).Observe(d.Seconds())
	if err != nil {
		m.JobFailures.WithLabelValues(job).Inc()
	}
}
