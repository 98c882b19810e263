// Package filter provides the digital filters used by the upper-limb use
// estimators: causal moving averages and Butterworth high-pass filters built
// from second-order sections, applied causally or forward-backward for zero
// phase.
//
// Filter designs are immutable and cached, so the same design can be shared
// by concurrent callers filtering different axes.
package filter
