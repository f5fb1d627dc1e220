// Metric naming follows Prometheus conventions: helpdesk_ prefix, _total
// suffix for counters, _seconds suffix for duration histograms. All
// metrics register on the default registry served at /metrics.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequestsTotal counts requests by route, method and status code.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helpdesk_http_requests_total",
			Help: "Total HTTP requests served.",
		},
		[]string{"path", "method", "status"},
	)

	// httpRequestDurationSeconds is a histogram of request latency by route.
	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "helpdesk_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"path"},
	)

	// SlaEvaluationsTotal counts breach-state evaluations by outcome status.
	SlaEvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helpdesk_sla_evaluations_total",
			Help: "Total SLA breach-state evaluations by resulting status.",
		},
		[]string{"status"},
	)

	// SlaBreachesTotal counts first observations of a breach.
	SlaBreachesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "helpdesk_sla_breaches_total",
			Help: "Total SLA breaches observed.",
		},
	)

	// SlaRuleAssignmentsTotal counts rule matching passes by outcome.
	SlaRuleAssignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helpdesk_sla_rule_assignments_total",
			Help: "Total SLA rule assignment passes by outcome (matched or unmatched).",
		},
		[]string{"outcome"},
	)

	// SlaDueDateFallbacksTotal counts business-hours calculations that fell
	// back to naive arithmetic because of invalid configuration.
	SlaDueDateFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "helpdesk_sla_due_date_fallbacks_total",
			Help: "Total due-date calculations that fell back to naive arithmetic.",
		},
	)

	// SweepDurationSeconds is a histogram of full sweep passes.
	SweepDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "helpdesk_sla_sweep_duration_seconds",
			Help:    "Duration of periodic SLA sweep passes in seconds.",
			Buckets: []float64{.1, .5, 1, 5, 15, 30, 60, 120, 300},
		},
	)

	// SweepTicketsTotal counts tickets visited by the sweep, by result.
	SweepTicketsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helpdesk_sla_sweep_tickets_total",
			Help: "Total tickets visited by the SLA sweep by result (changed, unchanged, error).",
		},
		[]string{"result"},
	)
)

// RecordHTTPRequest updates the HTTP request counters.
func RecordHTTPRequest(path, method string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	httpRequestDurationSeconds.WithLabelValues(path).Observe(duration.Seconds())
}
