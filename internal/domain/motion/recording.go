package motion

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Recording is a uniformly sampled multi-channel signal held in memory.
type Recording struct {
	// SamplingRate is the number of samples per second.
	SamplingRate float64 `json:"sampling_rate" msgpack:"sampling_rate"`
	// Columns names the channels, e.g. "x", "y", "z". Optional.
	Columns []string `json:"columns,omitempty" msgpack:"columns,omitempty"`
	// Samples holds one row per instant and one column per channel.
	Samples [][]float64 `json:"samples" msgpack:"samples"`
}

// SampleInterval returns the sampling interval in seconds.
func (r *Recording) SampleInterval() float64 {
	return 1 / r.SamplingRate
}

// Validate checks that the recording is a non-empty rectangular matrix with a
// positive sampling rate.
func (r *Recording) Validate() error {
	if r == nil {
		return InvalidArgument("recording is not set")
	}

	if !(r.SamplingRate > 0) || math.IsInf(r.SamplingRate, 0) {
		return InvalidArgument("sampling rate must be positive, got %v", r.SamplingRate)
	}

	if len(r.Samples) == 0 {
		return InvalidArgument("recording has no samples")
	}

	width := len(r.Samples[0])
	if width == 0 {
		return InvalidArgument("recording has no channels")
	}

	for i, row := range r.Samples {
		if len(row) != width {
			return InvalidArgument("row %d has %d channels, expected %d", i, len(row), width)
		}
	}

	if len(r.Columns) > 0 && len(r.Columns) != width {
		return InvalidArgument("%d column names for %d channels", len(r.Columns), width)
	}

	return nil
}

// Matrix copies the samples into a dense rows-by-channels matrix.
func (r *Recording) Matrix() (*mat.Dense, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	rows, cols := len(r.Samples), len(r.Samples[0])
	m := mat.NewDense(rows, cols, nil)

	for i, row := range r.Samples {
		m.SetRow(i, row)
	}

	return m, nil
}

// Column returns a copy of channel j.
func (r *Recording) Column(j int) []float64 {
	out := make([]float64, len(r.Samples))
	for i, row := range r.Samples {
		out[i] = row[j]
	}

	return out
}

// RecordingFromMatrix builds a Recording from a matrix.
func RecordingFromMatrix(m mat.Matrix, samplingRate float64, columns ...string) *Recording {
	rows, cols := m.Dims()
	samples := make([][]float64, rows)

	for i := range samples {
		samples[i] = make([]float64, cols)
		for j := range samples[i] {
			samples[i][j] = m.At(i, j)
		}
	}

	return &Recording{
		SamplingRate: samplingRate,
		Columns:      columns,
		Samples:      samples,
	}
}
