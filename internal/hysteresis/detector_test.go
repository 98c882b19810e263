package hysteresis

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/oshokin/ulmotion/internal/domain/motion"
	"github.com/oshokin/ulmotion/internal/logger"
)

var nan = math.NaN()

// requireDecisions compares decision signals treating NaN as equal to NaN.
func requireDecisions(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))

	for i := range want {
		if math.IsNaN(want[i]) {
			require.Truef(t, math.IsNaN(got[i]), "index %d: want NaN, got %v", i, got[i])
			continue
		}

		require.Equalf(t, want[i], got[i], "index %d", i)
	}
}

// TestDetect_Scenarios checks the detector on hand-computed sequences.
func TestDetect_Scenarios(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		signal    []float64
		threshold float64
		band      float64
		want      []float64
	}{
		{
			name:      "enter above threshold and leave below the band",
			signal:    []float64{0, 2, 6, 4, 2, 0},
			threshold: 5,
			band:      2,
			want:      []float64{0, 0, 1, 1, 0, 0},
		},
		{
			name:      "first sample is off by convention",
			signal:    []float64{10, 10, 10},
			threshold: 5,
			band:      1,
			want:      []float64{0, 1, 1},
		},
		{
			name:      "dead zone keeps the previous off state",
			signal:    []float64{0, 4, 4.5, 5, 5.1, 4},
			threshold: 5,
			band:      2,
			want:      []float64{0, 0, 0, 0, 1, 1},
		},
		{
			name:      "lower edge of the band is inclusive",
			signal:    []float64{0, 6, 3, 2.999},
			threshold: 5,
			band:      2,
			want:      []float64{0, 1, 1, 0},
		},
		{
			name:      "negative thresholds work for pitch angles",
			signal:    []float64{-80, -50, -40, -48, -52, -30},
			threshold: -45,
			band:      5,
			want:      []float64{0, 0, 1, 1, 0, 1},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Detect(context.Background(), tc.signal, tc.threshold, tc.band)
			require.NoError(t, err)
			requireDecisions(t, tc.want, got)
		})
	}
}

// TestDetect_Monotonic verifies a single 0->1 transition at the first sample above threshold.
func TestDetect_Monotonic(t *testing.T) {
	t.Parallel()

	signal := make([]float64, 50)
	for i := range signal {
		signal[i] = float64(i) * 0.5
	}

	got, err := Detect(context.Background(), signal, 10, 3)
	require.NoError(t, err)

	transitions := 0
	for i := 1; i < len(got); i++ {
		if got[i] != got[i-1] {
			transitions++

			require.Equal(t, On, got[i])
			require.Greater(t, signal[i], 10.0)
			require.LessOrEqual(t, signal[i-1], 10.0)
		}
	}

	require.Equal(t, 1, transitions)
}

// TestDetect_StableInsideBand ensures dips within [threshold-band, threshold] keep the detector ON.
func TestDetect_StableInsideBand(t *testing.T) {
	t.Parallel()

	signal := []float64{0, 12, 9, 8, 10, 7, 9.5, 11}

	got, err := Detect(context.Background(), signal, 10, 3)
	require.NoError(t, err)
	requireDecisions(t, []float64{0, 1, 1, 1, 1, 1, 1, 1}, got)
}

// TestDetect_NaN covers the NaN propagation rule.
func TestDetect_NaN(t *testing.T) {
	t.Parallel()

	// ON before the gap, dead-zone value after it: the NaN counts as OFF.
	signal := []float64{0, 6, nan, 4, 6, nan, 6, 4}

	got, err := Detect(context.Background(), signal, 5, 2)
	require.NoError(t, err)
	requireDecisions(t, []float64{0, 1, nan, 0, 1, nan, 1, 1}, got)

	for i, d := range got {
		if math.IsNaN(signal[i]) {
			require.NotEqual(t, On, d)
		}
	}

	got, err = Detect(context.Background(), []float64{nan, 6, 6}, 5, 2)
	require.NoError(t, err)
	requireDecisions(t, []float64{nan, 1, 1}, got)
}

// TestDetect_AllMissing returns an undefined signal instead of failing.
func TestDetect_AllMissing(t *testing.T) {
	t.Parallel()

	got, err := Detect(context.Background(), []float64{nan, nan, nan}, 5, 2)
	require.NoError(t, err)
	requireDecisions(t, []float64{nan, nan, nan}, got)
}

// TestDetect_DegenerateBand falls back to the comparator and logs a notice.
func TestDetect_DegenerateBand(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core).Sugar())

	signal := []float64{0, 1, 2, 3, 4, 5, 6, 7, 3, 8}

	got, err := Detect(ctx, signal, 4.5, 0)
	require.NoError(t, err)
	requireDecisions(t, Compare(signal, 4.5), got)
	requireDecisions(t, []float64{0, 0, 0, 0, 0, 1, 1, 1, 0, 1}, got)
	require.Equal(t, 1, logs.FilterMessageSnippet("single threshold comparator").Len())
}

// TestDetect_Validation rejects invalid arguments before scanning.
func TestDetect_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := Detect(ctx, nil, 1, 1)
	require.ErrorIs(t, err, motion.ErrInvalidArgument)

	_, err = Detect(ctx, []float64{1}, 1, -1)
	require.ErrorIs(t, err, motion.ErrInvalidArgument)

	_, err = Detect(ctx, []float64{1}, nan, 1)
	require.ErrorIs(t, err, motion.ErrInvalidArgument)

	_, err = Detect(ctx, []float64{1}, 1, math.Inf(1))
	require.ErrorIs(t, err, motion.ErrInvalidArgument)
}

// TestDetectPair maps the pair onto threshold and band.
func TestDetectPair(t *testing.T) {
	t.Parallel()

	p := Pair{Low: 3, High: 5}
	require.InDelta(t, 5.0, p.Threshold(), 0)
	require.InDelta(t, 2.0, p.Band(), 0)

	got, err := DetectPair(context.Background(), []float64{0, 2, 6, 4, 2, 0}, p)
	require.NoError(t, err)
	requireDecisions(t, []float64{0, 0, 1, 1, 0, 0}, got)

	_, err = DetectPair(context.Background(), []float64{1}, Pair{Low: 5, High: 3})
	require.ErrorIs(t, err, motion.ErrInvalidArgument)
}

// TestAnd checks the logical AND composition of decision signals.
func TestAnd(t *testing.T) {
	t.Parallel()

	got, err := And([]float64{0, 1, 1, 0, nan}, []float64{0, 0, 1, 1, 1})
	require.NoError(t, err)
	requireDecisions(t, []float64{0, 0, 1, 0, nan}, got)

	_, err = And([]float64{1}, []float64{1, 0})
	require.ErrorIs(t, err, motion.ErrInvalidArgument)
}

// TestOnFraction ignores undefined decisions.
func TestOnFraction(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 0.5, OnFraction([]float64{1, 0, nan, 1, 0}), 1e-12)
	require.InDelta(t, 0.0, OnFraction([]float64{0, 0}), 1e-12)
	require.True(t, math.IsNaN(OnFraction([]float64{nan})))
	require.True(t, math.IsNaN(OnFraction(nil)))
}
