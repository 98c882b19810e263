// Package checker probes the health of a running analysis server, once or
// at a fixed interval.
package checker
