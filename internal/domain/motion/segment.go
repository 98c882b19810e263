package motion

// Segment is a movement bout delimited by inclusive sample indices.
type Segment struct {
	// Start is the index of the first sample of the bout.
	Start int `json:"start" msgpack:"start"`
	// Stop is the index of the last sample of the bout.
	Stop int `json:"stop" msgpack:"stop"`
}

// Duration returns the length of the segment in samples, Stop - Start.
func (s Segment) Duration() int {
	return s.Stop - s.Start
}

// Contains reports whether index i lies inside the segment.
func (s Segment) Contains(i int) bool {
	return i >= s.Start && i <= s.Stop
}
