package movement

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/oshokin/ulmotion/internal/domain/motion"
)

// bouts builds an n-by-2 velocity matrix at rest except inside the given
// inclusive index ranges, where the speed is 1.
func bouts(n int, ranges ...[2]int) *mat.Dense {
	vel := mat.NewDense(n, 2, nil)

	for _, r := range ranges {
		for i := r[0]; i <= r[1]; i++ {
			vel.Set(i, 0, 0.6)
			vel.Set(i, 1, 0.8)
		}
	}

	return vel
}

// plain returns parameters with every filter and the padding disabled.
func plain() Params {
	return Params{
		SampleInterval:    0.01,
		SpeedThreshold:    0.05,
		RemoveOnBeforeOff: true,
	}
}

// requireWellFormed asserts ordering, non-overlap and bounds of segments.
func requireWellFormed(t *testing.T, segments []motion.Segment, n int) {
	t.Helper()

	for i, s := range segments {
		require.GreaterOrEqual(t, s.Start, 0)
		require.LessOrEqual(t, s.Stop, n-1)
		require.LessOrEqual(t, s.Start, s.Stop)

		if i > 0 {
			require.Greater(t, s.Start, segments[i-1].Stop, "segment %d overlaps its predecessor", i)
		}
	}
}

// TestExtract_SingleBout reproduces the reference scenario: one bout at samples 30-50.
func TestExtract_SingleBout(t *testing.T) {
	t.Parallel()

	got, err := Extract(context.Background(), bouts(100, [2]int{30, 50}), plain())
	require.NoError(t, err)
	require.Equal(t, []motion.Segment{{Start: 30, Stop: 50}}, got)
}

// TestExtract_NoMovement returns an empty list for a resting or undefined signal.
func TestExtract_NoMovement(t *testing.T) {
	t.Parallel()

	got, err := Extract(context.Background(), bouts(50), plain())
	require.NoError(t, err)
	require.Empty(t, got)

	vel := mat.NewDense(3, 1, []float64{math.NaN(), math.NaN(), math.NaN()})

	got, err = Extract(context.Background(), vel, plain())
	require.NoError(t, err)
	require.Empty(t, got)
}

// TestExtract_WholeSignal accepts a bout spanning every sample.
func TestExtract_WholeSignal(t *testing.T) {
	t.Parallel()

	p := plain()
	p.DurationTolerance = 0.5

	got, err := Extract(context.Background(), bouts(40, [2]int{0, 39}), p)
	require.NoError(t, err)
	require.Equal(t, []motion.Segment{{Start: 0, Stop: 39}}, got)
}

// TestExtract_SpeedThreshold uses a global fraction of the peak speed.
func TestExtract_SpeedThreshold(t *testing.T) {
	t.Parallel()

	speeds := []float64{0, 0.5, 0.5, 0, 10, 10, 0, 0.4, 0}
	vel := mat.NewDense(len(speeds), 1, speeds)

	p := plain()
	p.SpeedThreshold = 0.045

	got, err := Extract(context.Background(), vel, p)
	require.NoError(t, err)
	require.Equal(t, []motion.Segment{{Start: 1, Stop: 2}, {Start: 4, Stop: 5}}, got)
}

// TestExtract_NaNSamplesAreRest treats undefined speed as rest.
func TestExtract_NaNSamplesAreRest(t *testing.T) {
	t.Parallel()

	speeds := []float64{0, 1, 1, math.NaN(), 1, 0}
	vel := mat.NewDense(len(speeds), 1, speeds)

	got, err := Extract(context.Background(), vel, plain())
	require.NoError(t, err)
	require.Equal(t, []motion.Segment{{Start: 1, Stop: 2}, {Start: 4, Stop: 4}}, got)
}

// TestExtract_ShortBoutRemoval drops bouts no longer than the on threshold.
func TestExtract_ShortBoutRemoval(t *testing.T) {
	t.Parallel()

	p := plain()
	p.OnThreshold = 0.05

	got, err := Extract(context.Background(), bouts(100, [2]int{10, 12}, [2]int{40, 60}, [2]int{70, 73}), p)
	require.NoError(t, err)
	require.Equal(t, []motion.Segment{{Start: 40, Stop: 60}}, got)
}

// TestExtract_ShortGapRemoval folds chains of short gaps into one bout.
func TestExtract_ShortGapRemoval(t *testing.T) {
	t.Parallel()

	p := plain()
	p.OffThreshold = 0.05

	got, err := Extract(context.Background(), bouts(100, [2]int{10, 20}, [2]int{23, 30}, [2]int{33, 40}), p)
	require.NoError(t, err)
	require.Equal(t, []motion.Segment{{Start: 10, Stop: 40}}, got)

	got, err = Extract(context.Background(), bouts(100, [2]int{10, 20}, [2]int{23, 30}, [2]int{40, 50}), p)
	require.NoError(t, err)
	require.Equal(t, []motion.Segment{{Start: 10, Stop: 30}, {Start: 40, Stop: 50}}, got)
}

// TestExtract_HugeThresholds removes every bout and bridges every gap when
// the thresholds exceed any representable number of samples.
func TestExtract_HugeThresholds(t *testing.T) {
	t.Parallel()

	p := plain()
	p.OnThreshold = 1e20

	got, err := Extract(context.Background(), bouts(100, [2]int{30, 50}), p)
	require.NoError(t, err)
	require.Empty(t, got)

	p = plain()
	p.OffThreshold = 1e20

	got, err = Extract(context.Background(), bouts(100, [2]int{10, 20}, [2]int{60, 70}), p)
	require.NoError(t, err)
	require.Equal(t, []motion.Segment{{Start: 10, Stop: 70}}, got)

	require.Equal(t, math.MaxInt, p.samples(math.MaxFloat64))
	require.Equal(t, 5, p.samples(0.05))
}

// TestExtract_FilterOrder shows that merging first can rescue bouts that are short on their own.
func TestExtract_FilterOrder(t *testing.T) {
	t.Parallel()

	vel := bouts(60, [2]int{10, 13}, [2]int{16, 19})

	p := plain()
	p.OnThreshold = 0.05
	p.OffThreshold = 0.05

	p.RemoveOnBeforeOff = true

	got, err := Extract(context.Background(), vel, p)
	require.NoError(t, err)
	require.Empty(t, got)

	p.RemoveOnBeforeOff = false

	got, err = Extract(context.Background(), vel, p)
	require.NoError(t, err)
	require.Equal(t, []motion.Segment{{Start: 10, Stop: 19}}, got)
}

// TestExtract_Padding widens bouts symmetrically and clamps at neighbours and edges.
func TestExtract_Padding(t *testing.T) {
	t.Parallel()

	p := plain()
	p.DurationTolerance = 0.1

	got, err := Extract(context.Background(), bouts(100, [2]int{20, 40}), p)
	require.NoError(t, err)
	require.Equal(t, []motion.Segment{{Start: 18, Stop: 42}}, got)

	p.DurationTolerance = 0.5

	got, err = Extract(context.Background(), bouts(100, [2]int{10, 30}, [2]int{33, 53}), p)
	require.NoError(t, err)
	require.Equal(t, []motion.Segment{{Start: 0, Stop: 32}, {Start: 33, Stop: 63}}, got)

	got, err = Extract(context.Background(), bouts(100, [2]int{2, 40}, [2]int{80, 99}), p)
	require.NoError(t, err)
	require.Equal(t, []motion.Segment{{Start: 0, Stop: 59}, {Start: 71, Stop: 99}}, got)
}

// TestExtract_Properties checks ordering, bounds and neighbour spans on random signals.
func TestExtract_Properties(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11))

	for trial := range 50 {
		n := 50 + rng.IntN(400)
		vel := mat.NewDense(n, 3, nil)

		for i := range n {
			if rng.Float64() < 0.4 {
				for j := range 3 {
					vel.Set(i, j, rng.NormFloat64())
				}
			}
		}

		p := Params{
			SampleInterval:    0.01,
			SpeedThreshold:    0.05 + 0.5*rng.Float64(),
			OnThreshold:       0.05 * rng.Float64(),
			OffThreshold:      0.05 * rng.Float64(),
			RemoveOnBeforeOff: rng.IntN(2) == 0,
			DurationTolerance: 0.9 * rng.Float64(),
		}

		padded, err := Extract(context.Background(), vel, p)
		require.NoError(t, err, "trial %d", trial)
		requireWellFormed(t, padded, n)

		p.DurationTolerance = 0

		unpadded, err := Extract(context.Background(), vel, p)
		require.NoError(t, err, "trial %d", trial)
		require.Len(t, padded, len(unpadded))

		for i := range padded {
			require.LessOrEqual(t, padded[i].Start, unpadded[i].Start)
			require.GreaterOrEqual(t, padded[i].Stop, unpadded[i].Stop)

			if i > 0 {
				require.Greater(t, padded[i].Start, unpadded[i-1].Stop)
			}

			if i < len(padded)-1 {
				require.Less(t, padded[i].Stop, unpadded[i+1].Start)
			}
		}
	}
}

// TestExtract_Validation rejects invalid parameters and matrices.
func TestExtract_Validation(t *testing.T) {
	t.Parallel()

	vel := bouts(10, [2]int{2, 5})

	mutations := map[string]func(*Params){
		"zero interval":      func(p *Params) { p.SampleInterval = 0 },
		"speed threshold 0":  func(p *Params) { p.SpeedThreshold = 0 },
		"speed threshold 1":  func(p *Params) { p.SpeedThreshold = 1 },
		"negative on":        func(p *Params) { p.OnThreshold = -0.1 },
		"negative off":       func(p *Params) { p.OffThreshold = -0.1 },
		"tolerance 1":        func(p *Params) { p.DurationTolerance = 1 },
		"negative tolerance": func(p *Params) { p.DurationTolerance = -0.2 },
	}

	for name, mutate := range mutations {
		p := plain()
		mutate(&p)

		_, err := Extract(context.Background(), vel, p)
		require.ErrorIs(t, err, motion.ErrInvalidArgument, name)
	}

	_, err := Extract(context.Background(), nil, plain())
	require.ErrorIs(t, err, motion.ErrInvalidArgument)

	require.NoError(t, DefaultParams(0.01).Validate())
}
