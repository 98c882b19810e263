package checker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/ulmotion/internal/config"
	"github.com/oshokin/ulmotion/internal/logger"
	"github.com/oshokin/ulmotion/internal/service/common"
)

// Options controls the checker polling behavior and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ServerAddress provides an optional gRPC server address override.
	ServerAddress string
	// PollInterval defines the interval between health checks.
	PollInterval time.Duration
	// Watch keeps polling after the first check instead of returning.
	Watch bool
}

// DefaultPollInterval defines the polling interval for health checks.
const DefaultPollInterval = 5 * time.Second

// ErrNotServing indicates the server answered but the analysis service is down.
var ErrNotServing = errors.New("analysis service is not serving")

// Run checks the health of the analysis server. Without Watch it returns
// after one check, otherwise it logs every check until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "ulmotion-checker")

	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	// Determine server address: command line argument overrides config.
	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	caller, err := common.DetectActor()
	if err != nil {
		return fmt.Errorf("detect actor: %w", err)
	}

	// Establish gRPC connection with timeout from configuration.
	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout), common.WithCaller(caller))
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}

	// Ensure connection cleanup on function exit.
	defer func() {
		_ = client.Close()
	}()

	ctx = logger.WithKV(ctx, "server_address", serverAddress)

	if !opts.Watch {
		return checkState(ctx, client)
	}

	logger.InfoKV(ctx, "Polling server health", "interval", opts.PollInterval.String())

	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case <-ticker.C:
			if err = checkState(ctx, client); err != nil {
				logger.ErrorKV(ctx, "Health check failed", "error", err)
			}
		}
	}
}

// checkState runs one health check and logs the outcome.
func checkState(ctx context.Context, client *common.Client) error {
	serving, err := client.Serving(ctx)
	if err != nil {
		return err
	}

	if !serving {
		return ErrNotServing
	}

	logger.Info(ctx, "Analysis server is serving")

	return nil
}
