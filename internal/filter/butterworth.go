package filter

import (
	"math"
	"math/cmplx"

	"github.com/oshokin/ulmotion/internal/domain/motion"
)

// Section is a second-order IIR section in transposed direct form II.
// A[0] is always 1. A first-order section has B[2] and A[2] equal to zero.
type Section struct {
	B [3]float64
	A [3]float64
}

// Butterworth is a digital Butterworth filter as a cascade of sections.
type Butterworth struct {
	// Order is the filter order.
	Order int
	// Cutoff is the -3 dB corner frequency in Hz.
	Cutoff float64
	// SamplingRate is the sampling rate in Hz the design is valid for.
	SamplingRate float64
	// Sections are applied in order.
	Sections []Section
}

// HighPass returns the high-pass Butterworth filter of the given order and
// cutoff for signals sampled at samplingRate. Designs are cached.
func HighPass(order int, cutoff, samplingRate float64) (*Butterworth, error) {
	if order < 1 {
		return nil, motion.InvalidArgument("filter order must be a positive integer, got %d", order)
	}

	if !(samplingRate > 0) || math.IsInf(samplingRate, 0) {
		return nil, motion.InvalidArgument("sampling rate must be positive, got %v", samplingRate)
	}

	if !(cutoff > 0) || cutoff >= samplingRate/2 {
		return nil, motion.InvalidArgument("cutoff frequency must be in (0, %v) Hz, got %v", samplingRate/2, cutoff)
	}

	key := designKey{order: order, cutoff: cutoff, samplingRate: samplingRate}
	if design, ok := designs.get(key); ok {
		return design, nil
	}

	design := designHighPass(order, cutoff, samplingRate)
	designs.add(key, design)

	return design, nil
}

// designHighPass maps the analog Butterworth prototype onto a high-pass
// response with the bilinear transform. The cutoff is pre-warped so the
// digital filter is exactly -3 dB at cutoff.
func designHighPass(order int, cutoff, samplingRate float64) *Butterworth {
	var (
		k        = 2 * samplingRate
		wc       = k * math.Tan(math.Pi*cutoff/samplingRate)
		sections = make([]Section, 0, (order+1)/2)
	)

	// Conjugate pole pairs of the prototype sit at angle theta from the
	// imaginary axis; each pair gives s^2 / (s^2 + 2*zeta*wc*s + wc^2).
	for i := range order / 2 {
		theta := math.Pi * (2*float64(i) + 1) / (2 * float64(order))
		zeta := math.Sin(theta)

		d0 := k*k + 2*zeta*wc*k + wc*wc
		d1 := 2 * (wc*wc - k*k)
		d2 := k*k - 2*zeta*wc*k + wc*wc

		sections = append(sections, Section{
			B: [3]float64{k * k / d0, -2 * k * k / d0, k * k / d0},
			A: [3]float64{1, d1 / d0, d2 / d0},
		})
	}

	// The real pole of an odd order prototype gives s / (s + wc).
	if order%2 == 1 {
		d0 := k + wc

		sections = append(sections, Section{
			B: [3]float64{k / d0, -k / d0, 0},
			A: [3]float64{1, (wc - k) / d0, 0},
		})
	}

	return &Butterworth{
		Order:        order,
		Cutoff:       cutoff,
		SamplingRate: samplingRate,
		Sections:     sections,
	}
}

// clone returns a deep copy of the design.
func (b *Butterworth) clone() *Butterworth {
	c := *b
	c.Sections = append([]Section(nil), b.Sections...)

	return &c
}

// Gain returns the magnitude response of the filter at freq Hz.
func (b *Butterworth) Gain(freq float64) float64 {
	var (
		w = 2 * math.Pi * freq / b.SamplingRate
		z = cmplx.Exp(complex(0, -w)) // z^-1
		h = complex(1, 0)
	)

	for _, s := range b.Sections {
		num := complex(s.B[0], 0) + complex(s.B[1], 0)*z + complex(s.B[2], 0)*z*z
		den := complex(s.A[0], 0) + complex(s.A[1], 0)*z + complex(s.A[2], 0)*z*z
		h *= num / den
	}

	return cmplx.Abs(h)
}

// Filter applies the filter causally starting from a zero state.
func (b *Butterworth) Filter(x []float64) []float64 {
	out := append([]float64(nil), x...)

	for _, s := range b.Sections {
		s.apply(out, 0, 0)
	}

	return out
}

// FiltFilt applies the filter forward and then backward, which cancels the
// phase shift and squares the magnitude response.
//
// The signal is extended at both ends by odd reflection and each pass starts
// from the steady state for the first extended sample, so edges do not ring.
// Any NaN in x makes the whole output NaN.
func (b *Butterworth) FiltFilt(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return []float64{}
	}

	pad := min(b.padLen(), n-1)
	ext := oddExtend(x, pad)
	zi := b.steadyState()

	b.applyFrom(ext, zi)
	reverse(ext)
	b.applyFrom(ext, zi)
	reverse(ext)

	return append([]float64(nil), ext[pad:pad+n]...)
}

// applyFrom filters x in place with each section starting from zi scaled by
// the first input sample of the cascade.
func (b *Butterworth) applyFrom(x []float64, zi [][2]float64) {
	x0 := x[0]

	for i, s := range b.Sections {
		s.apply(x, zi[i][0]*x0, zi[i][1]*x0)
	}
}

// steadyState returns per-section initial states for a unit step input, each
// scaled by the DC gain of the sections before it.
func (b *Butterworth) steadyState() [][2]float64 {
	var (
		zi    = make([][2]float64, len(b.Sections))
		scale = 1.0
	)

	for i, s := range b.Sections {
		g := s.dcGain()
		zi[i] = [2]float64{
			scale * (g - s.B[0]),
			scale * (s.B[2] - s.A[2]*g),
		}
		scale *= g
	}

	return zi
}

// padLen follows the reflection length used by common forward-backward
// implementations: three times the number of filter taps.
func (b *Butterworth) padLen() int {
	var zeroB, zeroA int

	for _, s := range b.Sections {
		if s.B[2] == 0 {
			zeroB++
		}

		if s.A[2] == 0 {
			zeroA++
		}
	}

	taps := 2*len(b.Sections) + 1 - min(zeroB, zeroA)

	return 3 * taps
}

// apply filters x in place starting from state (z1, z2).
func (s Section) apply(x []float64, z1, z2 float64) {
	for i, v := range x {
		y := s.B[0]*v + z1
		z1 = s.B[1]*v - s.A[1]*y + z2
		z2 = s.B[2]*v - s.A[2]*y
		x[i] = y
	}
}

// dcGain returns the section response at 0 Hz.
func (s Section) dcGain() float64 {
	return (s.B[0] + s.B[1] + s.B[2]) / (s.A[0] + s.A[1] + s.A[2])
}

// oddExtend reflects pad samples around each end of x: 2*x[0]-x[pad..1] before
// and 2*x[n-1]-x[n-2..n-1-pad] after.
func oddExtend(x []float64, pad int) []float64 {
	var (
		n   = len(x)
		ext = make([]float64, 0, n+2*pad)
	)

	for i := pad; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}

	ext = append(ext, x...)

	for i := n - 2; i >= n-1-pad; i-- {
		ext = append(ext, 2*x[n-1]-x[i])
	}

	return ext
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
