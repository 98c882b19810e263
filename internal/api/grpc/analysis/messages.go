package analysis

import (
	"github.com/oshokin/ulmotion/internal/domain/motion"
	"github.com/oshokin/ulmotion/internal/movement"
	"github.com/oshokin/ulmotion/internal/uluse"
)

// SegmentsRequest asks for the movement bouts of a velocity recording.
type SegmentsRequest struct {
	Recording *motion.Recording `msgpack:"recording"`
	Params    movement.Params   `msgpack:"params"`
}

// SegmentsResponse carries the extracted bouts.
type SegmentsResponse struct {
	Segments []motion.Segment `msgpack:"segments"`
}

// UseRequest asks for GMAC use classification of an acceleration recording.
type UseRequest struct {
	Recording *motion.Recording `msgpack:"recording"`
	Params    uluse.GMACParams  `msgpack:"params"`
}

// UseResponse carries the aligned GMAC outputs.
type UseResponse struct {
	Result *uluse.GMACResult `msgpack:"result"`
}

// CountsRequest asks for count-based use classification. ForearmAxis selects
// the recording column aligned with the forearm; the other two columns are
// the orthogonal axes.
type CountsRequest struct {
	Recording   *motion.Recording `msgpack:"recording"`
	ForearmAxis int               `msgpack:"forearm_axis"`
	Params      uluse.CountParams `msgpack:"params"`
}

// ActivityRequest asks for use classification of activity counts stored in
// one recording column. Equal thresholds select the single threshold rule.
type ActivityRequest struct {
	Recording *motion.Recording `msgpack:"recording"`
	Column    int               `msgpack:"column"`
	Low       float64           `msgpack:"low"`
	High      float64           `msgpack:"high"`
}

// DecisionResponse carries a decision signal.
type DecisionResponse struct {
	Use []float64 `msgpack:"use"`
}
