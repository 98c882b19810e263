package uluse

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/oshokin/ulmotion/internal/domain/motion"
	"github.com/oshokin/ulmotion/internal/filter"
)

// defaultWindowSeconds is the magnitude averaging window used when none is set.
const defaultWindowSeconds = 5

// MagnitudeParams controls acceleration magnitude estimation.
type MagnitudeParams struct {
	// SamplingRate of the acceleration in Hz.
	SamplingRate float64 `json:"sampling_rate" yaml:"sampling_rate" msgpack:"sampling_rate"`
	// CutoffFrequency of the high-pass filter in Hz.
	CutoffFrequency float64 `json:"cutoff_frequency" yaml:"cutoff_frequency" msgpack:"cutoff_frequency"`
	// FilterOrder of the high-pass filter.
	FilterOrder int `json:"filter_order" yaml:"filter_order" msgpack:"filter_order"`
	// Window is the causal averaging window in samples.
	// Zero means five seconds of samples.
	Window int `json:"window" yaml:"window" msgpack:"window"`
}

// Validate checks the parameter ranges.
func (p MagnitudeParams) Validate() error {
	if !(p.SamplingRate > 0) || math.IsInf(p.SamplingRate, 0) {
		return motion.InvalidArgument("sampling rate must be positive, got %v", p.SamplingRate)
	}

	if !(p.CutoffFrequency > 0) || p.CutoffFrequency >= p.SamplingRate/2 {
		return motion.InvalidArgument("cutoff frequency must be in (0, %v) Hz, got %v",
			p.SamplingRate/2, p.CutoffFrequency)
	}

	if p.FilterOrder < 1 {
		return motion.InvalidArgument("filter order must be a positive integer, got %d", p.FilterOrder)
	}

	if p.Window < 0 {
		return motion.InvalidArgument("magnitude window must be a positive integer, got %d", p.Window)
	}

	return nil
}

// window resolves the averaging window in samples.
func (p MagnitudeParams) window() int {
	if p.Window > 0 {
		return p.Window
	}

	return max(1, int(math.Round(defaultWindowSeconds*p.SamplingRate)))
}

// EstimateMagnitude returns the smoothed magnitude of the high-pass filtered
// acceleration. accel must have exactly three columns.
//
// Each axis goes through a zero-phase Butterworth high-pass filter, the
// filtered axes are combined into a per-sample Euclidean norm and the norm is
// averaged causally over the configured window.
func EstimateMagnitude(ctx context.Context, accel mat.Matrix, p MagnitudeParams) ([]float64, error) {
	rows, cols, err := motion.MatrixDims(accel)
	if err != nil {
		return nil, err
	}

	if cols != maxAxes {
		return nil, motion.InvalidArgument("acceleration must have exactly %d columns, got %d", maxAxes, cols)
	}

	if err = p.Validate(); err != nil {
		return nil, err
	}

	design, err := filter.HighPass(p.FilterOrder, p.CutoffFrequency, p.SamplingRate)
	if err != nil {
		return nil, err
	}

	var (
		filtered = make([][]float64, cols)
		g, gctx  = errgroup.WithContext(ctx)
	)

	for j := range filtered {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			filtered[j] = design.FiltFilt(mat.Col(nil, j, accel))

			return nil
		})
	}

	if err = g.Wait(); err != nil {
		return nil, err
	}

	var (
		magnitude = make([]float64, rows)
		row       = make([]float64, cols)
	)

	for i := range magnitude {
		for j := range row {
			row[j] = filtered[j][i]
		}

		magnitude[i] = floats.Norm(row, 2)
	}

	return filter.CausalMovingAverage(magnitude, p.window())
}
