package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCycle(t *testing.T) {
	delivered := testutil.ToFloat64(followUpActions.WithLabelValues("delivered"))
	failed := testutil.ToFloat64(followUpActions.WithLabelValues("failed"))
	cycleErrors := testutil.ToFloat64(followUpCycles.WithLabelValues("error"))

	RecordCycle("error", 2*time.Second, 4, 1)

	assert.Equal(t, 4.0, testutil.ToFloat64(followUpActions.WithLabelValues("delivered"))-delivered)
	assert.Equal(t, 1.0, testutil.ToFloat64(followUpActions.WithLabelValues("failed"))-failed)
	assert.Equal(t, 1.0, testutil.ToFloat64(followUpCycles.WithLabelValues("error"))-cycleErrors)
}

func TestRecordCycleSkipped(t *testing.T) {
	before := testutil.ToFloat64(followUpCyclesSkipped)
	RecordCycleSkipped()
	assert.Equal(t, 1.0, testutil.ToFloat64(followUpCyclesSkipped)-before)
}

func TestClientRegisteredAndStaleGauge(t *testing.T) {
	before := testutil.ToFloat64(clientsRegistered.WithLabelValues("webhook"))
	RecordClientRegistered("webhook")
	assert.Equal(t, 1.0, testutil.ToFloat64(clientsRegistered.WithLabelValues("webhook"))-before)

	SetStalePendingActions(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(stalePendingActions))
}
