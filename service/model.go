// Package service wraps a user model in the HTTP contract the Konan platform
// expects from a deployed container.
package service

import (
	"context"

	"github.com/jrsteele09/go-konan-sdk/metrics"
)

// EvaluationPair is a prediction and the ground truth it is scored against.
type EvaluationPair[Out any] struct {
	Prediction Out `json:"prediction"`
	Target     Out `json:"target"`
}

// Model is implemented by the user's model. In is the decoded /predict body
// and Out is what gets returned.
type Model[In, Out any] interface {
	Predict(ctx context.Context, input In) (Out, error)
	Evaluate(ctx context.Context, data []EvaluationPair[Out]) ([]metrics.Metric, error)
}

type evaluationRequest[Out any] struct {
	Data []EvaluationPair[Out] `json:"data"`
}

type metricResult struct {
	MetricName  string `json:"metric_name"`
	MetricValue any    `json:"metric_value"`
}

type evaluationResponse struct {
	Results []metricResult `json:"results"`
}
