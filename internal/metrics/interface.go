// Difference metrics between the loaded and the edited image
package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gocv.io/x/gocv"
)

// Metric defines the interface for image difference metrics
type Metric interface {
	// Calculate computes the metric value
	Calculate(original, processed gocv.Mat) (float64, error)

	// GetName returns the metric name
	GetName() string
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates an evaluator with MSE, PSNR and SSIM registered
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}
	e.Register("mse", NewMSE())
	e.Register("psnr", NewPSNR())
	e.Register("ssim", NewSSIM())
	return e
}

// Register registers a metric
func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Calculate calculates a specific metric
func (e *Evaluator) Calculate(name string, original, processed gocv.Mat) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, fmt.Errorf("metric not found: %s", name)
	}

	return metric.Calculate(original, processed)
}

// CalculateAll calculates every registered metric, skipping the ones that
// cannot be computed for this pair (e.g. after a resize).
func (e *Evaluator) CalculateAll(original, processed gocv.Mat) map[string]float64 {
	results := make(map[string]float64)

	for name, metric := range e.metrics {
		if value, err := metric.Calculate(original, processed); err == nil {
			results[name] = value
		}
	}

	return results
}

// Summary formats results as "mse=12.30 psnr=37.23dB ssim=0.9731", in name
// order.
func Summary(results map[string]float64) string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		value := results[name]
		switch {
		case name == "psnr" && math.IsInf(value, 1):
			parts = append(parts, "psnr=identical")
		case name == "psnr":
			parts = append(parts, fmt.Sprintf("psnr=%.2fdB", value))
		case name == "ssim":
			parts = append(parts, fmt.Sprintf("ssim=%.4f", value))
		default:
			parts = append(parts, fmt.Sprintf("%s=%.2f", name, value))
		}
	}
	return strings.Join(parts, " ")
}
