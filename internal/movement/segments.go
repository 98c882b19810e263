package movement

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/oshokin/ulmotion/internal/domain/motion"
	"github.com/oshokin/ulmotion/internal/logger"
)

// Extract returns the movement bouts of vel, one row per sample and one
// column per velocity component. Bounds are inclusive sample indices.
//
// A signal without movement, or whose speed is NaN everywhere, yields no
// segments.
func Extract(ctx context.Context, vel mat.Matrix, p Params) ([]motion.Segment, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if _, _, err := motion.MatrixDims(vel); err != nil {
		return nil, err
	}

	speed := Speed(vel)

	peak, ok := peakSpeed(speed)
	if !ok || peak == 0 {
		logger.DebugKV(ctx, "No movement in velocity signal", "samples", len(speed))

		return []motion.Segment{}, nil
	}

	candidates := edges(moving(speed, p.SpeedThreshold*peak))
	segments := candidates

	if p.RemoveOnBeforeOff {
		segments = removeShortOn(segments, p)
		segments = removeShortOff(segments, p)
	} else {
		segments = removeShortOff(segments, p)
		segments = removeShortOn(segments, p)
	}

	segments = pad(segments, len(speed), p.DurationTolerance)

	logger.DebugKV(ctx, "Movement segments extracted",
		"samples", len(speed),
		"candidates", len(candidates),
		"segments", len(segments),
	)

	return segments, nil
}

// Speed returns the Euclidean norm of each row of vel.
func Speed(vel mat.Matrix) []float64 {
	var (
		rows, cols = vel.Dims()
		speed      = make([]float64, rows)
		row        = make([]float64, cols)
	)

	for i := range speed {
		mat.Row(row, i, vel)
		speed[i] = floats.Norm(row, 2)
	}

	return speed
}

// peakSpeed returns the maximum of the non-NaN speeds.
func peakSpeed(speed []float64) (float64, bool) {
	valid := make([]float64, 0, len(speed))

	for _, v := range speed {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}

	if len(valid) == 0 {
		return 0, false
	}

	return floats.Max(valid), true
}

// moving marks samples whose speed is strictly above threshold.
func moving(speed []float64, threshold float64) []bool {
	mask := make([]bool, len(speed))
	for i, v := range speed {
		mask[i] = v > threshold
	}

	return mask
}

// edges turns the moving mask into bouts, treating the signal as bounded by
// rest on both sides.
func edges(mask []bool) []motion.Segment {
	var (
		segments []motion.Segment
		start    = -1
	)

	for i, m := range mask {
		switch {
		case m && start < 0:
			start = i
		case !m && start >= 0:
			segments = append(segments, motion.Segment{Start: start, Stop: i - 1})
			start = -1
		}
	}

	if start >= 0 {
		segments = append(segments, motion.Segment{Start: start, Stop: len(mask) - 1})
	}

	return segments
}

// removeShortOn drops bouts lasting no more than the on threshold.
func removeShortOn(segments []motion.Segment, p Params) []motion.Segment {
	if p.OnThreshold == 0 {
		return segments
	}

	var (
		limit = p.samples(p.OnThreshold)
		kept  = make([]motion.Segment, 0, len(segments))
	)

	for _, s := range segments {
		if s.Duration() > limit {
			kept = append(kept, s)
		}
	}

	return kept
}

// removeShortOff bridges gaps lasting no more than the off threshold. The
// fold extends the last kept bout before the next gap is measured, so chains
// of short gaps collapse into one bout.
func removeShortOff(segments []motion.Segment, p Params) []motion.Segment {
	if p.OffThreshold == 0 || len(segments) == 0 {
		return segments
	}

	var (
		limit  = p.samples(p.OffThreshold)
		merged = make([]motion.Segment, 0, len(segments))
	)

	merged = append(merged, segments[0])

	for _, s := range segments[1:] {
		last := &merged[len(merged)-1]
		if s.Start-last.Stop > limit {
			merged = append(merged, s)
			continue
		}

		last.Stop = s.Stop
	}

	return merged
}

// pad widens each bout by tolerance times its duration on both sides. A bout
// never starts before the end of the previous padded bout and never stops at
// or after the start of the next one. Bouts are padded left to right, so when
// two bouts compete for a narrow gap the earlier one takes it and the later
// one may not widen to the left at all.
func pad(segments []motion.Segment, n int, tolerance float64) []motion.Segment {
	out := make([]motion.Segment, len(segments))

	for i, s := range segments {
		var (
			extra = int(tolerance * float64(s.Duration()))
			lo    = 0
			hi    = n - 1
		)

		if i > 0 {
			lo = out[i-1].Stop + 1
		}

		if i < len(segments)-1 {
			hi = segments[i+1].Start - 1
		}

		out[i] = motion.Segment{
			Start: max(lo, s.Start-extra),
			Stop:  min(hi, s.Stop+extra),
		}
	}

	return out
}
