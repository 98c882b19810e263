package uluse

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/oshokin/ulmotion/internal/domain/motion"
	"github.com/oshokin/ulmotion/internal/filter"
)

// maxAxes is the largest number of acceleration axes accepted.
const maxAxes = 3

// PitchParams controls forearm pitch estimation.
type PitchParams struct {
	// ForearmAxis is the column aligned with the forearm.
	ForearmAxis int `json:"forearm_axis" yaml:"forearm_axis" msgpack:"forearm_axis"`
	// ElbowToForearm is true when the forearm axis points from the elbow
	// towards the hand.
	ElbowToForearm bool `json:"elbow_to_forearm" yaml:"elbow_to_forearm" msgpack:"elbow_to_forearm"`
	// Window is the causal smoothing window in samples.
	Window int `json:"window" yaml:"window" msgpack:"window"`
}

// Validate checks the parameters against a matrix with cols columns.
func (p PitchParams) Validate(cols int) error {
	if cols > maxAxes {
		return motion.InvalidArgument("acceleration must have at most %d columns, got %d", maxAxes, cols)
	}

	if p.ForearmAxis < 0 || p.ForearmAxis >= cols {
		return motion.InvalidArgument("forearm axis %d out of range [0, %d)", p.ForearmAxis, cols)
	}

	if p.Window < 1 {
		return motion.InvalidArgument("pitch window must be a positive integer, got %d", p.Window)
	}

	return nil
}

// EstimatePitch returns the forearm pitch in degrees for every row of accel.
//
// Each column is smoothed with a causal moving average, every smoothed row is
// scaled to unit length and the pitch is the arcsine of its forearm
// component. The sign is positive when the forearm axis points from the
// elbow towards the hand. A row of zero length yields NaN.
func EstimatePitch(accel mat.Matrix, p PitchParams) ([]float64, error) {
	rows, cols, err := motion.MatrixDims(accel)
	if err != nil {
		return nil, err
	}

	if err = p.Validate(cols); err != nil {
		return nil, err
	}

	smoothed := make([][]float64, cols)

	for j := range smoothed {
		smoothed[j], err = filter.CausalMovingAverage(mat.Col(nil, j, accel), p.Window)
		if err != nil {
			return nil, err
		}
	}

	sign := -1.0
	if p.ElbowToForearm {
		sign = 1.0
	}

	var (
		pitch = make([]float64, rows)
		row   = make([]float64, cols)
	)

	for i := range pitch {
		for j := range row {
			row[j] = smoothed[j][i]
		}

		norm := floats.Norm(row, 2)
		if norm == 0 || math.IsNaN(norm) {
			pitch[i] = math.NaN()
			continue
		}

		component := math.Max(-1, math.Min(1, row[p.ForearmAxis]/norm))
		pitch[i] = sign * degrees(math.Asin(component))
	}

	return pitch, nil
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
