package movement

import (
	"math"

	"github.com/oshokin/ulmotion/internal/domain/motion"
)

// Params controls movement segmentation.
type Params struct {
	// SampleInterval is the sampling interval of the velocity signal in seconds.
	SampleInterval float64
	// SpeedThreshold is the fraction of the peak speed above which a sample is moving.
	SpeedThreshold float64
	// OnThreshold is the bout duration in seconds at or below which a bout is dropped.
	// Zero disables short bout removal.
	OnThreshold float64
	// OffThreshold is the gap duration in seconds at or below which two bouts are merged.
	// Zero disables short gap removal.
	OffThreshold float64
	// RemoveOnBeforeOff drops short bouts before bridging short gaps when true.
	RemoveOnBeforeOff bool
	// DurationTolerance is the fraction of a bout's duration added on each side.
	// Zero disables padding.
	DurationTolerance float64
}

// DefaultParams returns the usual segmentation settings for the given
// sampling interval.
func DefaultParams(sampleInterval float64) Params {
	return Params{
		SampleInterval:    sampleInterval,
		SpeedThreshold:    0.05,
		OnThreshold:       0.1,
		OffThreshold:      0.1,
		RemoveOnBeforeOff: true,
		DurationTolerance: 0.1,
	}
}

// Validate checks the parameter ranges.
func (p Params) Validate() error {
	if !(p.SampleInterval > 0) || math.IsInf(p.SampleInterval, 0) {
		return motion.InvalidArgument("sample interval must be positive, got %v", p.SampleInterval)
	}

	if !(p.SpeedThreshold > 0 && p.SpeedThreshold < 1) {
		return motion.InvalidArgument("speed threshold must be in (0, 1), got %v", p.SpeedThreshold)
	}

	if !(p.OnThreshold >= 0) || math.IsInf(p.OnThreshold, 0) {
		return motion.InvalidArgument("on threshold must be a non-negative duration, got %v", p.OnThreshold)
	}

	if !(p.OffThreshold >= 0) || math.IsInf(p.OffThreshold, 0) {
		return motion.InvalidArgument("off threshold must be a non-negative duration, got %v", p.OffThreshold)
	}

	if !(p.DurationTolerance >= 0 && p.DurationTolerance < 1) {
		return motion.InvalidArgument("duration tolerance must be in [0, 1), got %v", p.DurationTolerance)
	}

	return nil
}

// samples converts a duration in seconds to a whole number of samples,
// truncating toward zero. Durations longer than math.MaxInt samples saturate.
func (p Params) samples(seconds float64) int {
	n := seconds / p.SampleInterval
	if n >= math.MaxInt {
		return math.MaxInt
	}

	return int(n)
}
