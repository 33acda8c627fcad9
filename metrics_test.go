package sapling

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterMetrics(reg))
	assert.Error(t, RegisterMetrics(reg), "duplicate registration")
}

func TestRecalculationMetrics(t *testing.T) {
	e := newTestEngine(t)
	omitKind(e, "hidden")
	ok := recalculations.WithLabelValues("true")
	beforeOK := counterValue(t, ok)
	beforeOmitted := counterValue(t, omittedLayers)

	_, err := e.Init(context.Background(), []*Node{box(0, 0), NewLayer("hidden", Vec2{}, Size{})}, nil)
	require.NoError(t, err)

	assert.Equal(t, beforeOK+1, counterValue(t, ok))
	assert.Equal(t, beforeOmitted+1, counterValue(t, omittedLayers))
}

func TestDepthFailureMetric(t *testing.T) {
	before := counterValue(t, cloneDepthFailures)
	_, err := newTestCloner().Clone(context.Background(), chain(MaxCloneDepth))
	require.ErrorIs(t, err, ErrDepthExceeded)
	assert.Equal(t, before+1, counterValue(t, cloneDepthFailures))
}
