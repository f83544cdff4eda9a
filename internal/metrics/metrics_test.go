package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(estimatesTotalMetric.WithLabelValues(OutcomeOK))
	IncreaseEstimatesTotalMetric(OutcomeOK)
	assert.Equal(t, before+1, testutil.ToFloat64(estimatesTotalMetric.WithLabelValues(OutcomeOK)))

	liters := testutil.ToFloat64(estimatedLitersTotalMetric)
	AddEstimatedLiters(1.5)
	AddEstimatedLiters(-3)
	assert.InDelta(t, liters+1.5, testutil.ToFloat64(estimatedLitersTotalMetric), 1e-9)

	IncreaseAssistantRequestsMetric("query", OutcomeUpstreamError)
	assert.GreaterOrEqual(t, testutil.ToFloat64(assistantRequestsTotalMetric.WithLabelValues("query", OutcomeUpstreamError)), 1.0)
}
