package metrics_test

import (
	"bytes"
	"testing"

	"github.com/2beens/gymlog/internal/telemetry/metrics"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteText(t *testing.T) {
	m, reg := metrics.NewTestManagerAndRegistry()
	m.CounterStaleResponses.Inc()
	m.CounterRequests.WithLabelValues("day_data", "200").Inc()

	var buf bytes.Buffer
	require.NoError(t, metrics.WriteText(&buf, reg))
	out := buf.String()
	assert.Contains(t, out, "gymlog_test_client_modal_stale_response 1")
	assert.Contains(t, out, "# TYPE gymlog_test_client_backend_request counter")
}

func TestNewManager_Families(t *testing.T) {
	m, reg := metrics.NewTestManagerAndRegistry()
	m.CounterSubmissions.WithLabelValues("log", "ok").Add(2)
	m.GaugeModalOpen.Set(1)

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}

	submissions := byName["gymlog_test_client_form_submission"]
	require.NotNil(t, submissions)
	assert.Equal(t, dto.MetricType_COUNTER, submissions.GetType())
	require.Len(t, submissions.GetMetric(), 1)
	assert.Equal(t, 2.0, submissions.GetMetric()[0].GetCounter().GetValue())

	modalOpen := byName["gymlog_test_client_modal_open"]
	require.NotNil(t, modalOpen)
	assert.Equal(t, 1.0, modalOpen.GetMetric()[0].GetGauge().GetValue())
}
