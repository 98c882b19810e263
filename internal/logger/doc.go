// Package logger wraps zap for the ulmotion binaries and libraries:
//   - a global sugared logger writing console lines to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level parsing and configuration,
//   - leveled helpers (Infof, InfoKV, ErrorKV, ...).
//
// Algorithms that need to report diagnostics, such as a degenerate hysteresis
// band, take the logger from the context they are given.
package logger
