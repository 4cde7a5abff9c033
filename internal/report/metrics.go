package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for the report counter.
const (
	OutcomeGenerated     = "generated"
	OutcomeNoWorkItems   = "no_work_items"
	OutcomeNoDetails     = "no_details"
	OutcomeSummaryFailed = "summary_failed"
)

var (
	reportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devops_report",
		Name:      "reports_total",
		Help:      "Status report requests by outcome.",
	}, []string{"strategy", "outcome"})

	reportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "devops_report",
		Name:      "report_duration_seconds",
		Help:      "End-to-end time to produce a status report.",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
	}, []string{"strategy"})

	itemsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devops_report",
		Name:      "work_items_fetched_total",
		Help:      "Work item records fetched, by type.",
	}, []string{"type"})
)
