// Quality metrics comparing a binarization against a ground truth image
package metrics

import (
	"fmt"
	"sort"

	"document-binarization/internal/core"
)

// Metric defines the interface for quality metrics
type Metric interface {
	// Calculate compares binary against groundTruth. Both must be binary
	// images of the same dimensions.
	Calculate(groundTruth, binary *core.Image) (float64, error)

	GetName() string
	GetDescription() string

	// GetRange returns the value range (min, max)
	GetRange() (float64, float64)

	IsHigherBetter() bool
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates an evaluator with every default metric registered
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}
	e.RegisterDefaultMetrics()
	return e
}

// RegisterDefaultMetrics registers all default metrics
func (e *Evaluator) RegisterDefaultMetrics() {
	e.Register("accuracy", NewAccuracy())
	e.Register("precision", NewPrecision())
	e.Register("recall", NewRecall())
	e.Register("f_measure", NewFMeasure())
	e.Register("pseudo_f_measure", NewPseudoFMeasure())
	e.Register("psnr", NewPSNR())
	e.Register("nrm", NewNRM())
	e.Register("drd", NewDRD())
}

func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Names lists registered metrics alphabetically.
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.metrics))
	for name := range e.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Calculate calculates a specific metric
func (e *Evaluator) Calculate(name string, groundTruth, binary *core.Image) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, fmt.Errorf("metric not found: %s", name)
	}
	return metric.Calculate(groundTruth, binary)
}

// CalculateAll calculates all registered metrics. The first failure aborts.
func (e *Evaluator) CalculateAll(groundTruth, binary *core.Image) (map[string]float64, error) {
	results := make(map[string]float64, len(e.metrics))
	for _, name := range e.Names() {
		value, err := e.metrics[name].Calculate(groundTruth, binary)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		results[name] = value
	}
	return results, nil
}

// MetricInfo provides metadata about a metric
type MetricInfo struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Range        [2]float64 `json:"range"`
	HigherBetter bool       `json:"higher_better"`
}

// GetMetricInfo returns information about all metrics
func (e *Evaluator) GetMetricInfo() map[string]MetricInfo {
	info := make(map[string]MetricInfo, len(e.metrics))
	for name, metric := range e.metrics {
		lo, hi := metric.GetRange()
		info[name] = MetricInfo{
			Name:         metric.GetName(),
			Description:  metric.GetDescription(),
			Range:        [2]float64{lo, hi},
			HigherBetter: metric.IsHigherBetter(),
		}
	}
	return info
}

// Report is the result of a full evaluation.
type Report struct {
	Confusion Confusion          `json:"confusion"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Evaluate computes the confusion counts and every registered metric.
func (e *Evaluator) Evaluate(groundTruth, binary *core.Image) (Report, error) {
	c, err := Compare(groundTruth, binary)
	if err != nil {
		return Report{}, err
	}
	values, err := e.CalculateAll(groundTruth, binary)
	if err != nil {
		return Report{}, err
	}
	return Report{Confusion: c, Metrics: values}, nil
}
