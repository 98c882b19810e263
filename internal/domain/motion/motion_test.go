package motion

import (
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// TestSegment_DurationContains verifies inclusive index semantics of Segment.
func TestSegment_DurationContains(t *testing.T) {
	t.Parallel()

	s := Segment{Start: 30, Stop: 50}

	require.Equal(t, 20, s.Duration())
	require.True(t, s.Contains(30))
	require.True(t, s.Contains(50))
	require.False(t, s.Contains(29))
	require.False(t, s.Contains(51))
}

// TestRecording_Validate checks the shape and rate preconditions.
func TestRecording_Validate(t *testing.T) {
	t.Parallel()

	var nilRecording *Recording
	require.ErrorIs(t, nilRecording.Validate(), ErrInvalidArgument)

	cases := map[string]*Recording{
		"zero rate":     {SamplingRate: 0, Samples: [][]float64{{1}}},
		"no samples":    {SamplingRate: 10},
		"no channels":   {SamplingRate: 10, Samples: [][]float64{{}}},
		"ragged rows":   {SamplingRate: 10, Samples: [][]float64{{1, 2}, {3}}},
		"column names":  {SamplingRate: 10, Columns: []string{"x"}, Samples: [][]float64{{1, 2}}},
		"negative rate": {SamplingRate: -1, Samples: [][]float64{{1}}},
	}
	for name, r := range cases {
		require.ErrorIs(t, r.Validate(), ErrInvalidArgument, name)
	}

	ok := &Recording{SamplingRate: 100, Columns: []string{"x", "y"}, Samples: [][]float64{{1, 2}, {3, 4}}}
	require.NoError(t, ok.Validate())
	require.InDelta(t, 0.01, ok.SampleInterval(), 1e-15)
}

// TestRecording_MatrixRoundtrip ensures Matrix and RecordingFromMatrix preserve samples.
func TestRecording_MatrixRoundtrip(t *testing.T) {
	t.Parallel()

	r := &Recording{SamplingRate: 50, Samples: [][]float64{{1, 2, 3}, {4, 5, 6}}}

	m, err := r.Matrix()
	require.NoError(t, err)

	rows, cols := m.Dims()
	require.Equal(t, 2, rows)
	require.Equal(t, 3, cols)
	require.InDelta(t, 6.0, m.At(1, 2), 0)

	back := RecordingFromMatrix(m, 50, "x", "y", "z")
	require.Equal(t, r.Samples, back.Samples)
	require.Equal(t, []float64{2, 5}, back.Column(1))
}

// TestMatrixDims rejects unset and empty matrices.
func TestMatrixDims(t *testing.T) {
	t.Parallel()

	_, _, err := MatrixDims(nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	var empty *mat.Dense
	_, _, err = MatrixDims(empty)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = MatrixDims(new(mat.Dense))
	require.ErrorIs(t, err, ErrInvalidArgument)

	rows, cols, err := MatrixDims(mat.NewDense(4, 3, nil))
	require.NoError(t, err)
	require.Equal(t, 4, rows)
	require.Equal(t, 3, cols)
}

// TestSeries_JSON writes NaN as null and reads null back as NaN.
func TestSeries_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Series{1, math.NaN(), 0.5})
	require.NoError(t, err)
	require.JSONEq(t, `[1, null, 0.5]`, string(data))

	var got Series
	require.NoError(t, json.Unmarshal([]byte(`[null, 2, 3.25]`), &got))
	require.Len(t, got, 3)
	require.True(t, math.IsNaN(got[0]))
	require.Equal(t, []float64{2, 3.25}, []float64(got[1:]))

	data, err = json.Marshal(struct {
		S Series `json:"s"`
	}{})
	require.NoError(t, err)
	require.JSONEq(t, `{"s": null}`, string(data))
}
