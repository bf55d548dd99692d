package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// StatementsExecuted tracks SQL statements executed by script runs
	StatementsExecuted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auscat_sql_statements_total",
			Help: "Number of SQL statements executed by status",
		},
		[]string{"status"},
	)

	// CopyOperations tracks CSV bulk-copy operations
	CopyOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auscat_copy_operations_total",
			Help: "Number of bulk-copy operations by direction and status",
		},
		[]string{"direction", "status"},
	)

	// SparqlRequests tracks SPARQL queries and updates
	SparqlRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auscat_sparql_requests_total",
			Help: "Number of SPARQL requests by kind and status",
		},
		[]string{"kind", "status"},
	)

	// FilesSanitized tracks Pentaho project files rewritten
	FilesSanitized = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auscat_files_sanitized_total",
			Help: "Number of project files with connection metadata removed",
		},
	)
)

func init() {
	prometheus.MustRegister(
		StatementsExecuted,
		CopyOperations,
		SparqlRequests,
		FilesSanitized,
	)
}

// Handler returns the exposition handler for the process metrics registry.
// Long-running modes serve it over HTTP; embedders can mount it themselves.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordStatement records an executed or failed SQL statement
func RecordStatement(status string) {
	StatementsExecuted.WithLabelValues(status).Inc()
}

// RecordCopy records a bulk-copy operation
func RecordCopy(direction, status string) {
	CopyOperations.WithLabelValues(direction, status).Inc()
}

// RecordSparql records a SPARQL request
func RecordSparql(kind, status string) {
	SparqlRequests.WithLabelValues(kind, status).Inc()
}
