package analyzer

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"

	"github.com/oshokin/ulmotion/internal/domain/motion"
	"github.com/oshokin/ulmotion/internal/hysteresis"
	"github.com/oshokin/ulmotion/internal/uluse"
)

// SegmentsReport is the output of RunSegments.
type SegmentsReport struct {
	Input        string           `json:"input"`
	SamplingRate float64          `json:"sampling_rate"`
	Samples      int              `json:"samples"`
	Segments     []motion.Segment `json:"segments"`
	// MovingTime is the total bout duration in seconds.
	MovingTime float64 `json:"moving_time"`
}

// UseReport is the output of RunGMAC.
type UseReport struct {
	Input        string        `json:"input"`
	SamplingRate float64       `json:"sampling_rate"`
	UseFraction  *float64      `json:"use_fraction"`
	Pitch        motion.Series `json:"pitch"`
	Magnitude    motion.Series `json:"magnitude"`
	PitchUse     motion.Series `json:"pitch_use"`
	MagnitudeUse motion.Series `json:"magnitude_use"`
	Use          motion.Series `json:"use"`
}

// DecisionReport is the output of RunCounts and RunActivity.
type DecisionReport struct {
	Input string `json:"input"`
	// DecisionRate is the number of decisions per second.
	DecisionRate float64       `json:"decision_rate"`
	UseFraction  *float64      `json:"use_fraction"`
	Use          motion.Series `json:"use"`
}

func newSegmentsReport(input string, recording *motion.Recording, segments []motion.Segment) *SegmentsReport {
	if segments == nil {
		segments = []motion.Segment{}
	}

	var moving int
	for _, s := range segments {
		moving += s.Duration() + 1
	}

	return &SegmentsReport{
		Input:        input,
		SamplingRate: recording.SamplingRate,
		Samples:      len(recording.Samples),
		Segments:     segments,
		MovingTime:   float64(moving) * recording.SampleInterval(),
	}
}

func newUseReport(input string, recording *motion.Recording, result *uluse.GMACResult) *UseReport {
	return &UseReport{
		Input:        input,
		SamplingRate: recording.SamplingRate,
		UseFraction:  defined(hysteresis.OnFraction(result.Use)),
		Pitch:        result.Pitch,
		Magnitude:    result.Magnitude,
		PitchUse:     result.PitchUse,
		MagnitudeUse: result.MagnitudeUse,
		Use:          result.Use,
	}
}

func newDecisionReport(input string, rate float64, use []float64) *DecisionReport {
	return &DecisionReport{
		Input:        input,
		DecisionRate: rate,
		UseFraction:  defined(hysteresis.OnFraction(use)),
		Use:          use,
	}
}

// defined returns nil for NaN so it is written as null.
func defined(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}

	return &v
}

// encodeReport renders a report as indented JSON followed by a newline.
func encodeReport(report any) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	return append(data, '\n'), nil
}
