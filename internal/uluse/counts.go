package uluse

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/oshokin/ulmotion/internal/domain/motion"
	"github.com/oshokin/ulmotion/internal/filter"
	"github.com/oshokin/ulmotion/internal/logger"
)

// Count-based GMAC constants.
const (
	// countCutoff is the published 1 Hz high-pass corner. Recordings must be
	// sampled above twice this rate.
	countCutoff = 1.0
	// countFilterOrder is the high-pass order.
	countFilterOrder = 2
	// countDeadBand zeroes filtered accelerations below it, in g.
	countDeadBand = 0.068
	// countBlocks is the number of one second blocks averaged together.
	countBlocks = 5

	DefaultCountPitchThreshold  = 30.0
	DefaultCountCountsThreshold = 0.0
)

// CountParams controls the count-based GMAC.
type CountParams struct {
	// SamplingRate is the integer sampling rate in Hz. One block spans
	// SamplingRate samples. CountGMAC needs a rate above 2 Hz to place the
	// 1 Hz high-pass corner below the Nyquist frequency.
	SamplingRate int `json:"sampling_rate" yaml:"sampling_rate" msgpack:"sampling_rate"`
	// PitchThreshold in degrees: use requires |pitch| below it.
	PitchThreshold float64 `json:"pitch_threshold" yaml:"pitch_threshold" msgpack:"pitch_threshold"`
	// CountsThreshold: use requires averaged counts above it.
	CountsThreshold float64 `json:"counts_threshold" yaml:"counts_threshold" msgpack:"counts_threshold"`
}

// DefaultCountParams returns the published count-based GMAC settings.
func DefaultCountParams(samplingRate int) CountParams {
	return CountParams{
		SamplingRate:    samplingRate,
		PitchThreshold:  DefaultCountPitchThreshold,
		CountsThreshold: DefaultCountCountsThreshold,
	}
}

// Validate checks the parameter ranges.
func (p CountParams) Validate() error {
	if p.SamplingRate < 1 {
		return motion.InvalidArgument("sampling rate must be a positive integer, got %d", p.SamplingRate)
	}

	if !(p.PitchThreshold > 0 && p.PitchThreshold < maxPitch) {
		return motion.InvalidArgument("pitch threshold must be in (0, 90) degrees, got %v", p.PitchThreshold)
	}

	if !(p.CountsThreshold >= 0) || math.IsInf(p.CountsThreshold, 0) {
		return motion.InvalidArgument("counts threshold must be non-negative, got %v", p.CountsThreshold)
	}

	return nil
}

// CountGMAC returns one use decision per second of acceleration. forearm is
// the axis along the forearm, ortho1 and ortho2 the two orthogonal axes.
//
// The forearm axis is smoothed over one second to estimate pitch. The three
// axes are high-pass filtered, small values are zeroed by a dead band and the
// per-sample norms are summed over one second blocks, then averaged over five
// blocks. A block is use when |pitch| is below PitchThreshold and the averaged
// counts exceed CountsThreshold.
func CountGMAC(ctx context.Context, forearm, ortho1, ortho2 []float64, p CountParams) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if len(forearm) == 0 {
		return nil, motion.InvalidArgument("acceleration is empty")
	}

	if len(forearm) != len(ortho1) || len(ortho1) != len(ortho2) {
		return nil, motion.InvalidArgument("acceleration axes differ in length: %d, %d and %d",
			len(forearm), len(ortho1), len(ortho2))
	}

	design, err := filter.HighPass(countFilterOrder, countCutoff, float64(p.SamplingRate))
	if err != nil {
		return nil, err
	}

	smoothed, err := filter.CausalMovingAverageEdge(forearm, p.SamplingRate)
	if err != nil {
		return nil, err
	}

	pitch := make([]float64, len(smoothed))

	for i, v := range smoothed {
		smoothed[i] = math.Max(-1, math.Min(1, v))
		pitch[i] = maxPitch - degrees(math.Acos(smoothed[i]))
	}

	var (
		axes    = [][]float64{smoothed, ortho1, ortho2}
		g, gctx = errgroup.WithContext(ctx)
	)

	for j, axis := range axes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			axes[j] = deadBand(design.FiltFilt(axis), countDeadBand)

			return nil
		})
	}

	if err = g.Wait(); err != nil {
		return nil, err
	}

	counts, err := filter.CausalMovingAverageEdge(blockCounts(axes, p.SamplingRate), countBlocks)
	if err != nil {
		return nil, err
	}

	use := make([]float64, len(counts))

	for b, c := range counts {
		angle := pitch[b*p.SamplingRate]

		switch {
		case math.IsNaN(angle) || math.IsNaN(c):
			use[b] = math.NaN()
		case math.Abs(angle) < p.PitchThreshold && c > p.CountsThreshold:
			use[b] = 1
		}
	}

	logger.DebugKV(ctx, "Count-based use classified", "samples", len(forearm), "blocks", len(use))

	return use, nil
}

// deadBand zeroes the values of x whose magnitude is below limit, in place.
func deadBand(x []float64, limit float64) []float64 {
	for i, v := range x {
		if math.Abs(v) < limit {
			x[i] = 0
		}
	}

	return x
}

// blockCounts sums the per-sample norm of axes over consecutive blocks of
// size samples. The last block may be shorter.
func blockCounts(axes [][]float64, size int) []float64 {
	var (
		n      = len(axes[0])
		counts = make([]float64, 0, (n+size-1)/size)
		norms  = make([]float64, n)
		row    = make([]float64, len(axes))
	)

	for i := range norms {
		for j, axis := range axes {
			row[j] = axis[i]
		}

		norms[i] = floats.Norm(row, 2)
	}

	for start := 0; start < n; start += size {
		counts = append(counts, floats.Sum(norms[start:min(start+size, n)]))
	}

	return counts
}
