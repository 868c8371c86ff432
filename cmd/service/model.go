package main

import (
	"context"
	"errors"
	"math"

	"github.com/jrsteele09/go-konan-sdk/metrics"
	"github.com/jrsteele09/go-konan-sdk/service"
)

type features struct {
	Values []float64 `json:"values"`
}

// averageModel predicts the mean of the input values.
type averageModel struct{}

var _ service.Model[features, float64] = averageModel{}

func (averageModel) Predict(_ context.Context, in features) (float64, error) {
	if len(in.Values) == 0 {
		return 0, errors.New("values must not be empty")
	}
	sum := 0.0
	for _, v := range in.Values {
		sum += v
	}
	return sum / float64(len(in.Values)), nil
}

func (averageModel) Evaluate(_ context.Context, data []service.EvaluationPair[float64]) ([]metrics.Metric, error) {
	if len(data) == 0 {
		return nil, errors.New("no evaluation data")
	}
	var squared, absolute float64
	for _, d := range data {
		diff := d.Prediction - d.Target
		squared += diff * diff
		absolute += math.Abs(diff)
	}
	n := float64(len(data))
	return []metrics.Metric{
		metrics.New(metrics.NameRMSE, math.Sqrt(squared/n)),
		metrics.New(metrics.NameMAE, absolute/n),
	}, nil
}
