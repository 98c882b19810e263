package server

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/semaphore"

	"github.com/oshokin/ulmotion/internal/domain/motion"
	"github.com/oshokin/ulmotion/internal/hysteresis"
	"github.com/oshokin/ulmotion/internal/logger"
	"github.com/oshokin/ulmotion/internal/movement"
	"github.com/oshokin/ulmotion/internal/uluse"
)

// accelerationAxes is the number of columns an acceleration recording carries.
const accelerationAxes = 3

// Service runs the analyses on in-memory recordings. Parameters left at zero
// for the sampling interval or rate are taken from the recording.
type Service struct {
	// slots bounds the number of analyses running at once.
	slots *semaphore.Weighted
}

// NewService creates a service running at most maxConcurrency analyses at
// once. Zero or less means one per available CPU.
func NewService(maxConcurrency int) *Service {
	if maxConcurrency <= 0 {
		maxConcurrency = runtime.GOMAXPROCS(0)
	}

	return &Service{
		slots: semaphore.NewWeighted(int64(maxConcurrency)),
	}
}

// ExtractSegments returns the movement bouts of a velocity recording.
func (s *Service) ExtractSegments(
	ctx context.Context,
	recording *motion.Recording,
	p movement.Params,
) ([]motion.Segment, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	vel, err := recording.Matrix()
	if err != nil {
		return nil, err
	}

	if p.SampleInterval == 0 {
		p.SampleInterval = recording.SampleInterval()
	}

	segments, err := movement.Extract(ctx, vel, p)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Movement segments extracted", "samples", len(recording.Samples), "segments", len(segments))

	return segments, nil
}

// ClassifyUse runs GMAC over an acceleration recording.
func (s *Service) ClassifyUse(
	ctx context.Context,
	recording *motion.Recording,
	p uluse.GMACParams,
) (*uluse.GMACResult, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	accel, err := recording.Matrix()
	if err != nil {
		return nil, err
	}

	if p.Magnitude.SamplingRate == 0 {
		p.Magnitude.SamplingRate = recording.SamplingRate
	}

	result, err := uluse.GMAC(ctx, accel, p)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Use classified", "samples", len(result.Use), "use_fraction", hysteresis.OnFraction(result.Use))

	return result, nil
}

// ClassifyCounts runs the count-based GMAC. forearmAxis selects the forearm
// column of a three-column recording; the other two are the orthogonal axes.
func (s *Service) ClassifyCounts(
	ctx context.Context,
	recording *motion.Recording,
	forearmAxis int,
	p uluse.CountParams,
) ([]float64, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if err = recording.Validate(); err != nil {
		return nil, err
	}

	if width := len(recording.Samples[0]); width != accelerationAxes {
		return nil, motion.InvalidArgument("acceleration must have exactly %d columns, got %d", accelerationAxes, width)
	}

	if forearmAxis < 0 || forearmAxis >= accelerationAxes {
		return nil, motion.InvalidArgument("forearm axis %d out of range [0, %d)", forearmAxis, accelerationAxes)
	}

	if p.SamplingRate == 0 {
		p.SamplingRate = int(math.Round(recording.SamplingRate))
	}

	axes := make([][]float64, 0, accelerationAxes)
	for j := range accelerationAxes {
		if j != forearmAxis {
			axes = append(axes, recording.Column(j))
		}
	}

	use, err := uluse.CountGMAC(ctx, recording.Column(forearmAxis), axes[0], axes[1], p)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Count-based use classified", "blocks", len(use), "use_fraction", hysteresis.OnFraction(use))

	return use, nil
}

// ClassifyActivity classifies the activity counts held in one column of the
// recording. Equal thresholds use the single threshold rule.
func (s *Service) ClassifyActivity(
	ctx context.Context,
	recording *motion.Recording,
	column int,
	low, high float64,
) ([]float64, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if err = recording.Validate(); err != nil {
		return nil, err
	}

	if width := len(recording.Samples[0]); column < 0 || column >= width {
		return nil, motion.InvalidArgument("column %d out of range [0, %d)", column, width)
	}

	use, err := uluse.FromActivityCountsHysteresis(ctx, recording.Column(column), low, high)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Activity counts classified", "samples", len(use), "use_fraction", hysteresis.OnFraction(use))

	return use, nil
}

// acquire waits for a free analysis slot.
func (s *Service) acquire(ctx context.Context) (func(), error) {
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for analysis slot: %w", err)
	}

	return func() { s.slots.Release(1) }, nil
}
