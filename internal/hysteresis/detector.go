package hysteresis

import (
	"context"
	"math"

	"github.com/oshokin/ulmotion/internal/domain/motion"
	"github.com/oshokin/ulmotion/internal/logger"
)

const (
	// Off is the decision value of the inactive state.
	Off = 0.0
	// On is the decision value of the active state.
	On = 1.0
)

// Pair is a threshold pair defining a dead zone [Low, High].
type Pair struct {
	Low  float64 `json:"low" yaml:"low" msgpack:"low"`
	High float64 `json:"high" yaml:"high" msgpack:"high"`
}

// Threshold returns the switch-on threshold of the pair.
func (p Pair) Threshold() float64 {
	return p.High
}

// Band returns the width of the dead zone.
func (p Pair) Band() float64 {
	return p.High - p.Low
}

// Detect runs the hysteresis scan over signal.
//
// The decision at index 0 is Off (NaN if signal[0] is NaN) and the scan starts
// at index 1. A NaN decision at i-1 counts as Off when deciding index i.
// A zero band falls back to Compare. A signal made only of NaN returns an
// all-NaN decision signal.
func Detect(ctx context.Context, signal []float64, threshold, band float64) ([]float64, error) {
	if err := validate(signal, threshold, band); err != nil {
		return nil, err
	}

	if allNaN(signal) {
		logger.Debug(ctx, "Signal has no valid samples, returning undefined decisions")

		return nanSlice(len(signal)), nil
	}

	if band == 0 {
		logger.InfoKV(ctx, "Zero-width hysteresis band, using single threshold comparator", "threshold", threshold)

		return Compare(signal, threshold), nil
	}

	var (
		out   = make([]float64, len(signal))
		lower = threshold - band
	)

	if math.IsNaN(signal[0]) {
		out[0] = math.NaN()
	}

	for i := 1; i < len(signal); i++ {
		x := signal[i]
		if math.IsNaN(x) {
			out[i] = math.NaN()
			continue
		}

		// NaN compares false, so a NaN previous decision behaves as Off.
		if out[i-1] == On {
			if x >= lower {
				out[i] = On
			}

			continue
		}

		if x > threshold {
			out[i] = On
		}
	}

	return out, nil
}

// DetectPair runs Detect with the threshold and band described by p.
func DetectPair(ctx context.Context, signal []float64, p Pair) ([]float64, error) {
	if p.Low > p.High {
		return nil, motion.InvalidArgument("low threshold %v must not exceed high threshold %v", p.Low, p.High)
	}

	return Detect(ctx, signal, p.Threshold(), p.Band())
}

// Compare is the single threshold comparator: 1 where the sample exceeds
// threshold, 0 elsewhere, NaN where the sample is NaN.
func Compare(signal []float64, threshold float64) []float64 {
	out := make([]float64, len(signal))

	for i, x := range signal {
		switch {
		case math.IsNaN(x):
			out[i] = math.NaN()
		case x > threshold:
			out[i] = On
		}
	}

	return out
}

// And combines two decision signals: 1 only where both are 1, NaN where
// either is NaN. The signals must have equal length.
func And(a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, motion.InvalidArgument("decision signals differ in length: %d and %d", len(a), len(b))
	}

	out := make([]float64, len(a))

	for i := range a {
		switch {
		case math.IsNaN(a[i]) || math.IsNaN(b[i]):
			out[i] = math.NaN()
		default:
			out[i] = a[i] * b[i]
		}
	}

	return out, nil
}

// OnFraction returns the share of defined decisions that are On, or NaN
// when every decision is NaN.
func OnFraction(decisions []float64) float64 {
	var on, defined float64

	for _, d := range decisions {
		if math.IsNaN(d) {
			continue
		}

		defined++
		on += d
	}

	if defined == 0 {
		return math.NaN()
	}

	return on / defined
}

// validate checks the detector preconditions.
func validate(signal []float64, threshold, band float64) error {
	if len(signal) == 0 {
		return motion.InvalidArgument("signal is empty")
	}

	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return motion.InvalidArgument("threshold must be finite, got %v", threshold)
	}

	if math.IsNaN(band) || math.IsInf(band, 0) || band < 0 {
		return motion.InvalidArgument("band must be a finite non-negative number, got %v", band)
	}

	return nil
}

func allNaN(signal []float64) bool {
	for _, x := range signal {
		if !math.IsNaN(x) {
			return false
		}
	}

	return true
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}
