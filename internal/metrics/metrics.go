package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	paintWorks = "paint_works"

	estimatesTotal         = "estimates_total"
	estimatedLitersTotal   = "estimated_liters_total"
	assistantRequestsTotal = "assistant_requests_total"

	// Labels
	outcomeLabel = "outcome"
	methodLabel  = "method"

	OutcomeOK            = "ok"
	OutcomeInvalid       = "invalid"
	OutcomeMalformed     = "malformed_catalog"
	OutcomeUpstreamError = "upstream_error"
)

var estimatesTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: paintWorks,
		Name:      estimatesTotal,
		Help:      "number of paint estimates computed, by outcome",
	},
	[]string{outcomeLabel},
)

var estimatedLitersTotalMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: paintWorks,
		Name:      estimatedLitersTotal,
		Help:      "liters of paint across all successful estimates",
	},
)

var assistantRequestsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: paintWorks,
		Name:      assistantRequestsTotal,
		Help:      "requests sent to the assistant reasoning service",
	},
	[]string{methodLabel, outcomeLabel},
)

// Registry holds the service collectors; /metrics serves it.
var Registry = prometheus.NewRegistry()

func IncreaseEstimatesTotalMetric(outcome string) {
	estimatesTotalMetric.With(prometheus.Labels{outcomeLabel: outcome}).Inc()
}

func AddEstimatedLiters(liters float64) {
	if liters > 0 {
		estimatedLitersTotalMetric.Add(liters)
	}
}

func IncreaseAssistantRequestsMetric(method, outcome string) {
	assistantRequestsTotalMetric.With(prometheus.Labels{
		methodLabel:  method,
		outcomeLabel: outcome,
	}).Inc()
}

func init() {
	Registry.MustRegister(
		estimatesTotalMetric,
		estimatedLitersTotalMetric,
		assistantRequestsTotalMetric,
		collectors.NewGoCollector(),
	)
}
