package filter

import (
	"math"

	"github.com/oshokin/ulmotion/internal/domain/motion"
)

// CausalMovingAverage returns the n-sample causal moving average of x.
//
// The output at i is sum(x[i-n+1..i]) / n with zero initial conditions, so the
// first n-1 outputs ramp up from the start of the signal. A NaN inside the
// window makes the output NaN.
func CausalMovingAverage(x []float64, n int) ([]float64, error) {
	if n < 1 {
		return nil, motion.InvalidArgument("moving average window must be a positive integer, got %d", n)
	}

	return movingAverage(x, n, func(int) float64 { return 0 }), nil
}

// CausalMovingAverageEdge is CausalMovingAverage with the signal padded at the
// beginning by its first value instead of zeros.
func CausalMovingAverageEdge(x []float64, n int) ([]float64, error) {
	if n < 1 {
		return nil, motion.InvalidArgument("moving average window must be a positive integer, got %d", n)
	}

	if len(x) == 0 {
		return []float64{}, nil
	}

	first := x[0]

	return movingAverage(x, n, func(int) float64 { return first }), nil
}

// movingAverage keeps a running sum of the non-NaN samples in the window and a
// count of the NaN ones. pad supplies values for indices before the signal.
func movingAverage(x []float64, n int, pad func(i int) float64) []float64 {
	var (
		out  = make([]float64, len(x))
		sum  float64
		nans int
	)

	at := func(i int) float64 {
		if i < 0 {
			return pad(i)
		}

		return x[i]
	}

	for i := -n + 1; i < 0; i++ {
		if v := at(i); math.IsNaN(v) {
			nans++
		} else {
			sum += v
		}
	}

	for i, v := range x {
		if math.IsNaN(v) {
			nans++
		} else {
			sum += v
		}

		if i > 0 {
			if old := at(i - n); math.IsNaN(old) {
				nans--
			} else {
				sum -= old
			}
		}

		if nans > 0 {
			out[i] = math.NaN()
			continue
		}

		out[i] = sum / float64(n)
	}

	return out
}
