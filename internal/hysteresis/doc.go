// Package hysteresis converts a continuous signal into a binary decision
// signal with a dead zone below the switching threshold.
//
// A detector that is OFF switches ON when a sample exceeds the threshold and
// stays ON while samples remain at or above threshold minus band. Decisions
// are 0, 1 or NaN where the input sample is NaN.
package hysteresis
