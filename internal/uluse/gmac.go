package uluse

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/oshokin/ulmotion/internal/domain/motion"
	"github.com/oshokin/ulmotion/internal/hysteresis"
	"github.com/oshokin/ulmotion/internal/logger"
)

// Default GMAC settings.
const (
	DefaultCutoffFrequency    = 0.01
	DefaultFilterOrder        = 2
	DefaultPitchThreshold     = -45.0
	DefaultPitchBand          = 5.0
	DefaultMagnitudeThreshold = 0.1
	DefaultMagnitudeBand      = 0.05
)

// maxPitch bounds pitch thresholds in degrees.
const maxPitch = 90.0

// GMACParams controls the GMAC classifier.
type GMACParams struct {
	Pitch     PitchParams     `json:"pitch" yaml:"pitch" msgpack:"pitch"`
	Magnitude MagnitudeParams `json:"magnitude" yaml:"magnitude" msgpack:"magnitude"`
	// PitchThreshold and PitchBand drive the pitch hysteresis in degrees.
	PitchThreshold float64 `json:"pitch_threshold" yaml:"pitch_threshold" msgpack:"pitch_threshold"`
	PitchBand      float64 `json:"pitch_band" yaml:"pitch_band" msgpack:"pitch_band"`
	// MagnitudeThreshold and MagnitudeBand drive the magnitude hysteresis.
	MagnitudeThreshold float64 `json:"magnitude_threshold" yaml:"magnitude_threshold" msgpack:"magnitude_threshold"`
	MagnitudeBand      float64 `json:"magnitude_band" yaml:"magnitude_band" msgpack:"magnitude_band"`
}

// DefaultGMACParams returns the usual GMAC settings for acceleration sampled
// at samplingRate Hz: a one second pitch window and a five second magnitude
// window.
func DefaultGMACParams(samplingRate float64) GMACParams {
	return GMACParams{
		Pitch: PitchParams{
			ForearmAxis:    0,
			ElbowToForearm: true,
			Window:         max(1, int(math.Round(samplingRate))),
		},
		Magnitude: MagnitudeParams{
			SamplingRate:    samplingRate,
			CutoffFrequency: DefaultCutoffFrequency,
			FilterOrder:     DefaultFilterOrder,
			Window:          max(1, int(math.Round(defaultWindowSeconds*samplingRate))),
		},
		PitchThreshold:     DefaultPitchThreshold,
		PitchBand:          DefaultPitchBand,
		MagnitudeThreshold: DefaultMagnitudeThreshold,
		MagnitudeBand:      DefaultMagnitudeBand,
	}
}

// Validate checks the threshold pairs. Estimator settings are checked by the
// estimators themselves.
func (p GMACParams) Validate() error {
	if !(p.PitchThreshold > -maxPitch && p.PitchThreshold < maxPitch) {
		return motion.InvalidArgument("pitch threshold must be in (-90, 90) degrees, got %v", p.PitchThreshold)
	}

	if !(p.MagnitudeThreshold > 0) || math.IsInf(p.MagnitudeThreshold, 0) {
		return motion.InvalidArgument("magnitude threshold must be positive, got %v", p.MagnitudeThreshold)
	}

	if !(p.PitchBand >= 0) || !(p.MagnitudeBand >= 0) {
		return motion.InvalidArgument("hysteresis bands must be non-negative, got %v and %v", p.PitchBand, p.MagnitudeBand)
	}

	return nil
}

// GMACResult holds the aligned outputs of GMAC.
type GMACResult struct {
	Pitch        []float64 `json:"pitch" msgpack:"pitch"`
	Magnitude    []float64 `json:"magnitude" msgpack:"magnitude"`
	PitchUse     []float64 `json:"pitch_use" msgpack:"pitch_use"`
	MagnitudeUse []float64 `json:"magnitude_use" msgpack:"magnitude_use"`
	Use          []float64 `json:"use" msgpack:"use"`
}

// GMAC classifies every row of accel, an N-by-3 acceleration matrix, as
// functional use or not. The pitch and magnitude branches run concurrently
// and their hysteresis decisions are combined with a logical AND.
func GMAC(ctx context.Context, accel mat.Matrix, p GMACParams) (*GMACResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	ctx = logger.WithName(ctx, "gmac")

	var (
		result  GMACResult
		g, gctx = errgroup.WithContext(ctx)
	)

	g.Go(func() error {
		pitch, err := EstimatePitch(accel, p.Pitch)
		if err != nil {
			return err
		}

		use, err := hysteresis.Detect(logger.WithKV(gctx, "branch", "pitch"), pitch, p.PitchThreshold, p.PitchBand)
		if err != nil {
			return err
		}

		result.Pitch, result.PitchUse = pitch, use

		return nil
	})

	g.Go(func() error {
		magnitude, err := EstimateMagnitude(gctx, accel, p.Magnitude)
		if err != nil {
			return err
		}

		use, err := hysteresis.Detect(logger.WithKV(gctx, "branch", "magnitude"),
			magnitude, p.MagnitudeThreshold, p.MagnitudeBand)
		if err != nil {
			return err
		}

		result.Magnitude, result.MagnitudeUse = magnitude, use

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	use, err := hysteresis.And(result.PitchUse, result.MagnitudeUse)
	if err != nil {
		return nil, err
	}

	result.Use = use

	logger.DebugKV(ctx, "Use classified", "samples", len(use))

	return &result, nil
}
