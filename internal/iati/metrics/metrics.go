package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the import pipeline.
// Tracks parse/preview/import volumes and critical path durations.
type Metrics struct {
	ActivitiesParsed prometheus.Counter
	ParseFailures    prometheus.Counter
	FieldsWritten    prometheus.Counter
	FieldsSkipped    prometheus.Counter
	ContactsDeduped  prometheus.Counter
	PreviewDuration  prometheus.Histogram
	ImportDuration   prometheus.Histogram
	ValidationErrors prometheus.Counter
}

// New creates a new Metrics instance with all import pipeline metrics registered.
func New() *Metrics {
	return &Metrics{
		ActivitiesParsed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aims_activities_parsed_total",
			Help: "Total number of activities successfully parsed from IATI documents",
		}),
		ParseFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aims_parse_failures_total",
			Help: "Total number of documents rejected as unparseable",
		}),
		FieldsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aims_fields_written_total",
			Help: "Total number of fields written by merge runs",
		}),
		FieldsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aims_fields_skipped_total",
			Help: "Total number of accepted fields and rows skipped by merge runs",
		}),
		ContactsDeduped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aims_contacts_deduplicated_total",
			Help: "Total number of contacts folded into existing ones by identity",
		}),
		PreviewDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "aims_preview_duration_seconds",
			Help:    "Duration of Preview operations (parse, validate, diff)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ImportDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "aims_import_duration_seconds",
			Help:    "Duration of Import operations (full pipeline plus writes)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ValidationErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aims_validation_errors_total",
			Help: "Total number of validation errors raised across all fields",
		}),
	}
}

// ObservePreview records the duration of a Preview operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObservePreview(start time.Time) {
	m.PreviewDuration.Observe(time.Since(start).Seconds())
}

// ObserveImport records the duration of an Import operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveImport(start time.Time) {
	m.ImportDuration.Observe(time.Since(start).Seconds())
}
