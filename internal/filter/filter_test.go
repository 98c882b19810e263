package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/ulmotion/internal/domain/motion"
)

// TestCausalMovingAverage covers the zero-initial ramp and NaN windows.
func TestCausalMovingAverage(t *testing.T) {
	t.Parallel()

	got, err := CausalMovingAverage([]float64{1, 2, 3, 4}, 2)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{0.5, 1.5, 2.5, 3.5}, got, 1e-12)

	got, err = CausalMovingAverage([]float64{1, math.NaN(), 3, 4, 5}, 2)
	require.NoError(t, err)
	require.InDelta(t, 0.5, got[0], 1e-12)
	require.True(t, math.IsNaN(got[1]))
	require.True(t, math.IsNaN(got[2]))
	require.InDelta(t, 3.5, got[3], 1e-12)
	require.InDelta(t, 4.5, got[4], 1e-12)

	got, err = CausalMovingAverage([]float64{3, 1, 4}, 1)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{3, 1, 4}, got, 0)

	_, err = CausalMovingAverage([]float64{1}, 0)
	require.ErrorIs(t, err, motion.ErrInvalidArgument)
}

// TestCausalMovingAverageEdge verifies padding with the first sample.
func TestCausalMovingAverageEdge(t *testing.T) {
	t.Parallel()

	got, err := CausalMovingAverageEdge([]float64{2, 4, 6, 8}, 3)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{2, 8.0 / 3, 4, 6}, got, 1e-12)

	got, err = CausalMovingAverageEdge(nil, 3)
	require.NoError(t, err)
	require.Empty(t, got)

	_, err = CausalMovingAverageEdge([]float64{1}, -2)
	require.ErrorIs(t, err, motion.ErrInvalidArgument)
}

// TestHighPass_Validation rejects impossible designs.
func TestHighPass_Validation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		order  int
		cutoff float64
		rate   float64
	}{
		{order: 0, cutoff: 1, rate: 100},
		{order: 2, cutoff: 0, rate: 100},
		{order: 2, cutoff: 50, rate: 100},
		{order: 2, cutoff: 1, rate: 0},
		{order: 2, cutoff: math.NaN(), rate: 100},
	}
	for _, tc := range cases {
		_, err := HighPass(tc.order, tc.cutoff, tc.rate)
		require.ErrorIs(t, err, motion.ErrInvalidArgument)
	}
}

// TestHighPass_Response checks the Butterworth magnitude response for several orders.
func TestHighPass_Response(t *testing.T) {
	t.Parallel()

	for order := 1; order <= 6; order++ {
		design, err := HighPass(order, 2, 100)
		require.NoError(t, err)
		require.Len(t, design.Sections, (order+1)/2)

		require.InDelta(t, 1/math.Sqrt2, design.Gain(2), 1e-9, "order %d", order)
		require.InDelta(t, 1.0, design.Gain(50), 1e-9, "order %d", order)
		require.Less(t, design.Gain(0), 1e-9, "order %d", order)
		require.Less(t, design.Gain(0.5), design.Gain(1), "order %d", order)
	}
}

// TestHighPass_Cached returns equal designs for the same parameters and
// keeps the cached design safe from changes made by callers.
func TestHighPass_Cached(t *testing.T) {
	t.Parallel()

	a, err := HighPass(2, 7, 70)
	require.NoError(t, err)

	want := a.Sections[0].B[0]
	a.Sections[0].B[0] = 99

	b, err := HighPass(2, 7, 70)
	require.NoError(t, err)
	require.NotSame(t, a, b)
	require.InDelta(t, want, b.Sections[0].B[0], 0)

	b.Sections[0].A[1] = 99

	c, err := HighPass(2, 7, 70)
	require.NoError(t, err)
	require.Equal(t, designHighPass(2, 7, 70), c)
}

// TestFilter_RemovesDC checks that causal filtering of a constant decays to zero.
func TestFilter_RemovesDC(t *testing.T) {
	t.Parallel()

	design, err := HighPass(2, 5, 100)
	require.NoError(t, err)

	x := make([]float64, 500)
	for i := range x {
		x[i] = 1
	}

	y := design.Filter(x)
	require.InDelta(t, design.Sections[0].B[0], y[0], 1e-12)
	require.InDelta(t, 0.0, y[len(y)-1], 1e-6)
	require.Equal(t, 1.0, x[0], "input must not be modified")
}

// TestFiltFilt_Constant verifies the steady-state start: a constant maps to zero everywhere.
func TestFiltFilt_Constant(t *testing.T) {
	t.Parallel()

	for _, order := range []int{1, 2, 3} {
		design, err := HighPass(order, 1, 100)
		require.NoError(t, err)

		x := make([]float64, 200)
		for i := range x {
			x[i] = 9.81
		}

		y := design.FiltFilt(x)
		require.Len(t, y, len(x))

		for i := range y {
			require.InDelta(t, 0.0, y[i], 1e-9, "order %d index %d", order, i)
		}
	}
}

// TestFiltFilt_ZeroPhase checks that a sinusoid in the pass band passes with no shift.
func TestFiltFilt_ZeroPhase(t *testing.T) {
	t.Parallel()

	const (
		rate = 100.0
		freq = 10.0
	)

	design, err := HighPass(2, 0.5, rate)
	require.NoError(t, err)

	x := make([]float64, 1000)
	for i := range x {
		x[i] = 1.5 + math.Sin(2*math.Pi*freq*float64(i)/rate)
	}

	y := design.FiltFilt(x)

	for i := 200; i < 800; i++ {
		require.InDelta(t, x[i]-1.5, y[i], 1e-2, "index %d", i)
	}
}

// TestFiltFilt_ShortSignals handles signals shorter than the reflection length.
func TestFiltFilt_ShortSignals(t *testing.T) {
	t.Parallel()

	design, err := HighPass(2, 1, 100)
	require.NoError(t, err)

	require.Empty(t, design.FiltFilt(nil))
	require.Len(t, design.FiltFilt([]float64{1}), 1)
	require.Len(t, design.FiltFilt([]float64{1, 2, 3}), 3)
	require.Equal(t, 9, design.padLen())
}
