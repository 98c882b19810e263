// Package motion contains the core domain types shared by the movement and
// upper-limb use algorithms.
//
// It defines Segment (an inclusive start/stop index pair), Recording (a
// uniformly sampled multi-channel signal) and the InvalidArgument error that
// every algorithm returns when a precondition is violated.
package motion
