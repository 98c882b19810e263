// Package analyzer runs the ulmotion analyses for the command line.
//
// Each Run function loads a recording, runs the analysis either in-process or
// on a remote analysis server, and writes an indented JSON report. Undefined
// values appear as null in reports.
package analyzer
