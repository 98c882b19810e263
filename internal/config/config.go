package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/ulmotion/internal/logger"
	"github.com/oshokin/ulmotion/internal/movement"
	"github.com/oshokin/ulmotion/internal/uluse"
)

// Config holds the settings shared by the ulmotion commands.
type Config struct {
	// ServerAddress is the gRPC address the server listens on and clients dial.
	ServerAddress string `yaml:"server_addr"`
	// Timeout bounds a single RPC call.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the zap level name.
	LogLevel string `yaml:"log_level"`
	// MaxConcurrency bounds the analyses the server runs at once.
	// Zero means one per available CPU.
	MaxConcurrency int `yaml:"max_concurrency"`
	// Segments holds movement segmentation settings.
	Segments Segments `yaml:"segments"`
	// GMAC holds pitch and magnitude use classification settings.
	GMAC GMAC `yaml:"gmac"`
	// Counts holds count-based use classification settings.
	Counts Counts `yaml:"counts"`
}

// Segments holds movement segmentation settings. Durations are in seconds.
type Segments struct {
	SpeedThreshold    float64 `yaml:"speed_threshold"`
	OnThreshold       float64 `yaml:"on_threshold"`
	OffThreshold      float64 `yaml:"off_threshold"`
	RemoveOnBeforeOff bool    `yaml:"remove_on_before_off"`
	DurationTolerance float64 `yaml:"duration_tolerance"`
}

// GMAC holds use classification settings. Windows are in seconds and are
// converted to samples once the sampling rate of a recording is known.
type GMAC struct {
	ForearmAxis        int     `yaml:"forearm_axis"`
	ElbowToForearm     bool    `yaml:"elbow_to_forearm"`
	PitchWindow        float64 `yaml:"pitch_window"`
	MagnitudeWindow    float64 `yaml:"magnitude_window"`
	CutoffFrequency    float64 `yaml:"cutoff_frequency"`
	FilterOrder        int     `yaml:"filter_order"`
	PitchThreshold     float64 `yaml:"pitch_threshold"`
	PitchBand          float64 `yaml:"pitch_band"`
	MagnitudeThreshold float64 `yaml:"magnitude_threshold"`
	MagnitudeBand      float64 `yaml:"magnitude_band"`
}

// Counts holds count-based use classification settings.
type Counts struct {
	PitchThreshold  float64 `yaml:"pitch_threshold"`
	CountsThreshold float64 `yaml:"counts_threshold"`
}

const (
	// DefaultConfigFilename is the default filename for ulmotion settings.
	DefaultConfigFilename = "ulmotion-settings.yaml"

	// DefaultServerAddress is the default gRPC address.
	DefaultServerAddress = "127.0.0.1:50051"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 30 * time.Second

	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	defaultPitchWindow     = 1.0
	defaultMagnitudeWindow = 5.0
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
)

// Default returns the settings used when no file is present.
func Default() *Config {
	segments := movement.DefaultParams(1)

	return &Config{
		ServerAddress: DefaultServerAddress,
		Timeout:       DefaultTimeout,
		LogLevel:      DefaultLogLevel,
		Segments: Segments{
			SpeedThreshold:    segments.SpeedThreshold,
			OnThreshold:       segments.OnThreshold,
			OffThreshold:      segments.OffThreshold,
			RemoveOnBeforeOff: segments.RemoveOnBeforeOff,
			DurationTolerance: segments.DurationTolerance,
		},
		GMAC: GMAC{
			ForearmAxis:        0,
			ElbowToForearm:     true,
			PitchWindow:        defaultPitchWindow,
			MagnitudeWindow:    defaultMagnitudeWindow,
			CutoffFrequency:    uluse.DefaultCutoffFrequency,
			FilterOrder:        uluse.DefaultFilterOrder,
			PitchThreshold:     uluse.DefaultPitchThreshold,
			PitchBand:          uluse.DefaultPitchBand,
			MagnitudeThreshold: uluse.DefaultMagnitudeThreshold,
			MagnitudeBand:      uluse.DefaultMagnitudeBand,
		},
		Counts: Counts{
			PitchThreshold:  uluse.DefaultCountPitchThreshold,
			CountsThreshold: uluse.DefaultCountCountsThreshold,
		},
	}
}

// Load reads configuration from the provided path on top of the defaults and
// validates it. When path is empty the default file is used, and a missing
// default file yields the defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	cfg := Default()

	contents, err := os.ReadFile(filepath.Clean(path))
	switch {
	case err == nil:
	case !explicit && errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults for the
// connection fields.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	// Set default timeout if not specified
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.MaxConcurrency < 0 {
		return fmt.Errorf("max concurrency must not be negative, got %d", settings.MaxConcurrency)
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("invalid log level %q", settings.LogLevel)
	}

	if err := settings.Segments.Params(1).Validate(); err != nil {
		return fmt.Errorf("segments: %w", err)
	}

	if err := settings.GMAC.validate(); err != nil {
		return fmt.Errorf("gmac: %w", err)
	}

	if err := settings.Counts.Params(1).Validate(); err != nil {
		return fmt.Errorf("counts: %w", err)
	}

	return nil
}

// Params returns segmentation parameters for a signal sampled every
// sampleInterval seconds.
func (s Segments) Params(sampleInterval float64) movement.Params {
	return movement.Params{
		SampleInterval:    sampleInterval,
		SpeedThreshold:    s.SpeedThreshold,
		OnThreshold:       s.OnThreshold,
		OffThreshold:      s.OffThreshold,
		RemoveOnBeforeOff: s.RemoveOnBeforeOff,
		DurationTolerance: s.DurationTolerance,
	}
}

// Params returns GMAC parameters for acceleration sampled at samplingRate Hz.
func (g GMAC) Params(samplingRate float64) uluse.GMACParams {
	return uluse.GMACParams{
		Pitch: uluse.PitchParams{
			ForearmAxis:    g.ForearmAxis,
			ElbowToForearm: g.ElbowToForearm,
			Window:         samples(g.PitchWindow, samplingRate),
		},
		Magnitude: uluse.MagnitudeParams{
			SamplingRate:    samplingRate,
			CutoffFrequency: g.CutoffFrequency,
			FilterOrder:     g.FilterOrder,
			Window:          samples(g.MagnitudeWindow, samplingRate),
		},
		PitchThreshold:     g.PitchThreshold,
		PitchBand:          g.PitchBand,
		MagnitudeThreshold: g.MagnitudeThreshold,
		MagnitudeBand:      g.MagnitudeBand,
	}
}

// validate checks the rate-independent GMAC settings.
func (g GMAC) validate() error {
	if !(g.PitchWindow > 0) || !(g.MagnitudeWindow > 0) {
		return fmt.Errorf("windows must be positive, got %v and %v", g.PitchWindow, g.MagnitudeWindow)
	}

	if !(g.CutoffFrequency > 0) {
		return fmt.Errorf("cutoff frequency must be positive, got %v", g.CutoffFrequency)
	}

	if g.FilterOrder < 1 {
		return fmt.Errorf("filter order must be a positive integer, got %d", g.FilterOrder)
	}

	if g.ForearmAxis < 0 || g.ForearmAxis > 2 {
		return fmt.Errorf("forearm axis must be 0, 1 or 2, got %d", g.ForearmAxis)
	}

	return g.Params(1).Validate()
}

// Params returns count-based GMAC parameters for acceleration sampled at
// samplingRate Hz, rounded to whole samples per second.
func (c Counts) Params(samplingRate float64) uluse.CountParams {
	return uluse.CountParams{
		SamplingRate:    int(math.Round(samplingRate)),
		PitchThreshold:  c.PitchThreshold,
		CountsThreshold: c.CountsThreshold,
	}
}

// samples converts seconds to a whole number of samples, at least one.
func samples(seconds, samplingRate float64) int {
	return max(1, int(math.Round(seconds*samplingRate)))
}
