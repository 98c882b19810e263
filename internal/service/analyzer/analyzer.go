package analyzer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/oshokin/ulmotion/internal/config"
	"github.com/oshokin/ulmotion/internal/domain/motion"
	"github.com/oshokin/ulmotion/internal/logger"
	"github.com/oshokin/ulmotion/internal/movement"
	repository "github.com/oshokin/ulmotion/internal/repository/recording"
	"github.com/oshokin/ulmotion/internal/service/common"
	"github.com/oshokin/ulmotion/internal/service/server"
	"github.com/oshokin/ulmotion/internal/uluse"
)

// Backend runs the analyses. Both the in-process service and the gRPC client
// implement it.
type Backend interface {
	ExtractSegments(ctx context.Context, recording *motion.Recording, p movement.Params) ([]motion.Segment, error)
	ClassifyUse(ctx context.Context, recording *motion.Recording, p uluse.GMACParams) (*uluse.GMACResult, error)
	ClassifyCounts(ctx context.Context, recording *motion.Recording, forearmAxis int, p uluse.CountParams) ([]float64, error)
	ClassifyActivity(ctx context.Context, recording *motion.Recording, column int, low, high float64) ([]float64, error)
}

// Options configures a single analysis run.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// Input is the recording file to analyse.
	Input string

	// Output is the report file. Empty means Stdout.
	Output string

	// ServerAddress runs the analysis on a remote server when set.
	ServerAddress string

	// Stdout receives the report when Output is empty. Defaults to os.Stdout.
	Stdout io.Writer

	// ForearmAxis selects the forearm column for count-based classification.
	ForearmAxis int

	// Column selects the activity count column.
	Column int

	// Low and High are the activity count thresholds. Equal values select the
	// single threshold rule.
	Low, High float64
}

// session holds everything a run needs once the inputs are loaded.
type session struct {
	settings  *config.Config
	recording *motion.Recording
	backend   Backend
	close     func()
}

// open loads settings and the recording and picks the backend.
func open(ctx context.Context, opts *Options) (*session, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	recording, err := repository.NewFileRepository(opts.Input).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w", opts.Input, err)
	}

	logger.DebugKV(ctx, "Recording loaded",
		"input", opts.Input,
		"samples", len(recording.Samples),
		"sampling_rate", recording.SamplingRate,
	)

	s := &session{
		settings:  settings,
		recording: recording,
		close:     func() {},
	}

	if opts.ServerAddress == "" {
		s.backend = server.NewService(settings.MaxConcurrency)

		return s, nil
	}

	clientOptions := []common.Option{common.WithCallTimeout(settings.Timeout)}

	// Identify current user and hostname for the server logs.
	if actor, err := common.DetectActor(); err == nil {
		clientOptions = append(clientOptions, common.WithCaller(actor))
	} else {
		logger.DebugKV(ctx, "Caller identity unavailable", "error", err)
	}

	client, err := common.Dial(ctx, opts.ServerAddress, clientOptions...)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Running analysis remotely", "server_address", opts.ServerAddress)

	s.backend = client
	s.close = func() {
		_ = client.Close()
	}

	return s, nil
}

// RunSegments extracts movement bouts from a velocity recording.
func RunSegments(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "segments")

	s, err := open(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close()

	params := s.settings.Segments.Params(s.recording.SampleInterval())

	segments, err := s.backend.ExtractSegments(ctx, s.recording, params)
	if err != nil {
		return err
	}

	return writeReport(opts, newSegmentsReport(opts.Input, s.recording, segments))
}

// RunGMAC classifies use in an acceleration recording with GMAC.
func RunGMAC(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "gmac")

	s, err := open(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close()

	params := s.settings.GMAC.Params(s.recording.SamplingRate)

	result, err := s.backend.ClassifyUse(ctx, s.recording, params)
	if err != nil {
		return err
	}

	return writeReport(opts, newUseReport(opts.Input, s.recording, result))
}

// RunCounts classifies use in an acceleration recording with the count-based
// GMAC, one decision per second.
func RunCounts(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "counts")

	s, err := open(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close()

	params := s.settings.Counts.Params(s.recording.SamplingRate)

	use, err := s.backend.ClassifyCounts(ctx, s.recording, opts.ForearmAxis, params)
	if err != nil {
		return err
	}

	return writeReport(opts, newDecisionReport(opts.Input, 1, use))
}

// RunActivity classifies use from activity counts.
func RunActivity(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "activity")

	s, err := open(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close()

	use, err := s.backend.ClassifyActivity(ctx, s.recording, opts.Column, opts.Low, opts.High)
	if err != nil {
		return err
	}

	return writeReport(opts, newDecisionReport(opts.Input, s.recording.SamplingRate, use))
}

// writeReport writes the report to the output file or Stdout.
func writeReport(opts *Options, report any) error {
	data, err := encodeReport(report)
	if err != nil {
		return err
	}

	if opts.Output != "" {
		if err = os.WriteFile(opts.Output, data, config.DefaultFilePermissions); err != nil {
			return fmt.Errorf("write report: %w", err)
		}

		return nil
	}

	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}

	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}
