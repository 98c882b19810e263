// Package config defines the settings shared by the ulmotion commands and
// provides helpers to load, validate and save them in YAML format.
//
// Besides the gRPC address and timeout, Config carries the segmentation and
// use classification settings. Windows are stored in seconds and turned into
// sample counts by the Params methods once a recording's sampling rate is
// known.
package config
