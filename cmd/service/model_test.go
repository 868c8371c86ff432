package main

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-konan-sdk/metrics"
	"github.com/jrsteele09/go-konan-sdk/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageModel(t *testing.T) {
	m := averageModel{}
	ctx := context.Background()

	out, err := m.Predict(ctx, features{Values: []float64{1, 2, 6}})
	require.NoError(t, err)
	assert.Equal(t, 3.0, out)

	_, err = m.Predict(ctx, features{})
	require.Error(t, err)

	ms, err := m.Evaluate(ctx, []service.EvaluationPair[float64]{{Prediction: 1, Target: 4}, {Prediction: 2, Target: 6}})
	require.NoError(t, err)
	rmse, ok := metrics.Find(ms, metrics.NameRMSE)
	require.True(t, ok)
	assert.InDelta(t, 3.5355, rmse.Value(), 0.001)
	mae, ok := metrics.Find(ms, metrics.NameMAE)
	require.True(t, ok)
	assert.Equal(t, 3.5, mae.Value())
}
