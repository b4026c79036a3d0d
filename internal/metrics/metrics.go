package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Ingestion and query counters. Registered on the default registry; the
// router exposes them at /metrics.
var (
	IngestRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventscout",
		Name:      "ingest_records_total",
		Help:      "Feed records processed by ingestion runs, by outcome",
	}, []string{"outcome"})

	IngestRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "eventscout",
		Name:      "ingest_runs_total",
		Help:      "Number of ingestion runs started",
	})

	EventQueries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "eventscout",
		Name:      "event_queries_total",
		Help:      "Number of filtered event list queries served",
	})
)

// Outcome label values for IngestRecords.
const (
	OutcomeInserted  = "inserted"
	OutcomeDuplicate = "duplicate"
	OutcomeMalformed = "malformed"
)

func init() {
	prometheus.MustRegister(IngestRecords, IngestRuns, EventQueries)
}
