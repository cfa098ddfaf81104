package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the circulation batch jobs.
type Metrics struct {
	LoansAnonymized       prometheus.Counter
	AnonymizationSkipped  prometheus.Counter
	AnonymizationConflict prometheus.Counter
	AnonymizationDuration prometheus.Histogram
	FeesCharged           prometheus.Counter
	FeeAssessmentSkipped  prometheus.Counter
	FeeAssessmentDuration prometheus.Histogram
}

var jobBuckets = []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600}

// New creates a Metrics instance registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoansAnonymized: factory.NewCounter(prometheus.CounterOpts{
			Name: "circulation_loans_anonymized_total",
			Help: "Total number of loans anonymized",
		}),
		AnonymizationSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "circulation_anonymization_skipped_total",
			Help: "Anonymization candidates skipped after an error",
		}),
		AnonymizationConflict: factory.NewCounter(prometheus.CounterOpts{
			Name: "circulation_anonymization_conflicts_total",
			Help: "Anonymization writes lost to a concurrent update",
		}),
		AnonymizationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "circulation_anonymization_run_duration_seconds",
			Help:    "Duration of anonymization runs",
			Buckets: jobBuckets,
		}),
		FeesCharged: factory.NewCounter(prometheus.CounterOpts{
			Name: "circulation_overdue_fees_charged_total",
			Help: "Overdue fee transactions created or updated",
		}),
		FeeAssessmentSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "circulation_fee_assessment_skipped_total",
			Help: "Overdue loans skipped after an error",
		}),
		FeeAssessmentDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "circulation_fee_assessment_run_duration_seconds",
			Help:    "Duration of overdue fee assessment runs",
			Buckets: jobBuckets,
		}),
	}
}

// ObserveAnonymization records the duration of an anonymization run.
// Call with time.Now() at the start of the run.
func (m *Metrics) ObserveAnonymization(start time.Time) {
	m.AnonymizationDuration.Observe(time.Since(start).Seconds())
}

// ObserveFeeAssessment records the duration of a fee assessment run.
func (m *Metrics) ObserveFeeAssessment(start time.Time) {
	m.FeeAssessmentDuration.Observe(time.Since(start).Seconds())
}
