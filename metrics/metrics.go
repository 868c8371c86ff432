// Package metrics describes the evaluation metrics returned by a deployment.
package metrics

import "sort"

// Metric is a named evaluation result.
type Metric interface {
	Name() string
	Value() any
}

// Names of the metrics the platform computes itself.
const (
	NameRMSE                      = "rmse"
	NameMAE                       = "mae"
	NamePrecision                 = "precision"
	NameRecall                    = "recall"
	NameF1Score                   = "f1_score"
	NameConfusionMatrix           = "confusion_matrix"
	NameMultiLabelConfusionMatrix = "multi_label_confusion_matrix"
)

type base struct {
	value any
}

func (b base) Value() any { return b.value }

type RMSE struct{ base }

func (RMSE) Name() string { return NameRMSE }

type MAE struct{ base }

func (MAE) Name() string { return NameMAE }

type Precision struct{ base }

func (Precision) Name() string { return NamePrecision }

type Recall struct{ base }

func (Recall) Name() string { return NameRecall }

type F1Score struct{ base }

func (F1Score) Name() string { return NameF1Score }

type ConfusionMatrix struct{ base }

func (ConfusionMatrix) Name() string { return NameConfusionMatrix }

type MultiLabelConfusionMatrix struct{ base }

func (MultiLabelConfusionMatrix) Name() string { return NameMultiLabelConfusionMatrix }

// Custom is any metric the registry does not know, including user defined ones.
type Custom struct {
	base
	name string
}

func (c Custom) Name() string { return c.name }

// NewCustom builds a Custom metric.
func NewCustom(name string, value any) Custom {
	return Custom{base: base{value: value}, name: name}
}

var registry = map[string]func(any) Metric{
	NameRMSE:                      func(v any) Metric { return RMSE{base{v}} },
	NameMAE:                       func(v any) Metric { return MAE{base{v}} },
	NamePrecision:                 func(v any) Metric { return Precision{base{v}} },
	NameRecall:                    func(v any) Metric { return Recall{base{v}} },
	NameF1Score:                   func(v any) Metric { return F1Score{base{v}} },
	NameConfusionMatrix:           func(v any) Metric { return ConfusionMatrix{base{v}} },
	NameMultiLabelConfusionMatrix: func(v any) Metric { return MultiLabelConfusionMatrix{base{v}} },
}

// New returns the predefined metric for name, or a Custom metric when name is
// not in the registry.
func New(name string, value any) Metric {
	if ctor, ok := registry[name]; ok {
		return ctor(value)
	}
	return NewCustom(name, value)
}

// IsPredefined reports whether name is one of the platform's own metrics.
func IsPredefined(name string) bool {
	_, ok := registry[name]
	return ok
}

// PredefinedNames lists the registry in sorted order.
func PredefinedNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Find returns the first metric called name.
func Find(ms []Metric, name string) (Metric, bool) {
	for _, m := range ms {
		if m.Name() == name {
			return m, true
		}
	}
	return nil, false
}
