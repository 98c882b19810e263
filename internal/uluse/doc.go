// Package uluse classifies accelerometer streams into functional upper-limb
// use.
//
// GMAC combines a forearm pitch estimate and a high-pass filtered
// acceleration magnitude, each passed through a hysteresis detector, into a
// per-sample use decision. CountGMAC is the count-based variant that decides
// once per second without hysteresis. FromActivityCounts and
// FromActivityCountsHysteresis classify vector-magnitude activity counts.
//
// Decision signals hold 0, 1 or NaN where the input is undefined.
package uluse
