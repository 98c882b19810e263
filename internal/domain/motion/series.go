package motion

import (
	"math"

	"github.com/goccy/go-json"
)

// Series is a numeric sequence whose JSON form writes NaN as null, so
// undefined samples and decisions survive a JSON round trip.
type Series []float64

// MarshalJSON implements json.Marshaler.
func (s Series) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}

	values := make([]*float64, len(s))

	for i := range s {
		if !math.IsNaN(s[i]) {
			values[i] = &s[i]
		}
	}

	return json.Marshal(values)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Series) UnmarshalJSON(data []byte) error {
	var values []*float64
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}

	if values == nil {
		*s = nil
		return nil
	}

	out := make(Series, len(values))

	for i, v := range values {
		if v == nil {
			out[i] = math.NaN()
			continue
		}

		out[i] = *v
	}

	*s = out

	return nil
}
