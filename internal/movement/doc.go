// Package movement splits a velocity signal into movement bouts.
//
// Samples whose speed exceeds a fraction of the peak speed are moving. Bouts
// that are too short are dropped, gaps that are too short are bridged, and the
// surviving bouts are padded on both sides without touching their neighbours.
package movement
