package uluse

import (
	"context"
	"math"

	"github.com/oshokin/ulmotion/internal/domain/motion"
	"github.com/oshokin/ulmotion/internal/hysteresis"
	"github.com/oshokin/ulmotion/internal/logger"
)

// FromActivityCounts marks use where the activity count reaches threshold.
// Missing counts give NaN.
func FromActivityCounts(ctx context.Context, counts []float64, threshold float64) ([]float64, error) {
	if err := validateCounts(counts); err != nil {
		return nil, err
	}

	if err := validateThreshold(threshold); err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Classifying activity counts", "samples", len(counts), "threshold", threshold)

	out := make([]float64, len(counts))

	for i, c := range counts {
		switch {
		case math.IsNaN(c):
			out[i] = math.NaN()
		case c >= threshold:
			out[i] = hysteresis.On
		}
	}

	return out, nil
}

// FromActivityCountsHysteresis marks use with two thresholds: counts at or
// above high are use, counts below low are not, and counts in between keep
// the previous decision. The first sample and samples after a missing count
// start from no use. Equal thresholds behave as FromActivityCounts.
func FromActivityCountsHysteresis(ctx context.Context, counts []float64, low, high float64) ([]float64, error) {
	if low > high {
		return nil, motion.InvalidArgument("low threshold %v must not exceed high threshold %v", low, high)
	}

	if low == high {
		logger.InfoKV(ctx, "Both thresholds are equal, using single threshold classification", "threshold", high)

		return FromActivityCounts(ctx, counts, high)
	}

	if err := validateCounts(counts); err != nil {
		return nil, err
	}

	if err := validateThreshold(low); err != nil {
		return nil, err
	}

	if err := validateThreshold(high); err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Classifying activity counts", "samples", len(counts), "low", low, "high", high)

	out := make([]float64, len(counts))

	for i, c := range counts {
		switch {
		case math.IsNaN(c):
			out[i] = math.NaN()
		case c >= high:
			out[i] = hysteresis.On
		case c >= low && i > 0 && out[i-1] == hysteresis.On:
			out[i] = hysteresis.On
		}
	}

	return out, nil
}

func validateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return motion.InvalidArgument("threshold must be finite, got %v", threshold)
	}

	return nil
}

// validateCounts requires a non-empty series of non-negative counts. NaN
// marks a missing count.
func validateCounts(counts []float64) error {
	if len(counts) == 0 {
		return motion.InvalidArgument("activity counts are empty")
	}

	for i, c := range counts {
		if c < 0 {
			return motion.InvalidArgument("activity count at %d is negative: %v", i, c)
		}
	}

	return nil
}
