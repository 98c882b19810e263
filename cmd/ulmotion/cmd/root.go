package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/ulmotion/internal/config"
	"github.com/oshokin/ulmotion/internal/logger"
	"github.com/oshokin/ulmotion/internal/service/analyzer"
	"github.com/oshokin/ulmotion/internal/service/checker"
	"github.com/oshokin/ulmotion/internal/service/server"
	"github.com/oshokin/ulmotion/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel overrides the level from the configuration file.
	logLevel string
	// outputPath is the report file; empty means stdout.
	outputPath string
	// serverAddress runs analyses on a remote server when set.
	serverAddress string
	// forearmAxis selects the forearm column for count-based classification.
	forearmAxis int
	// activityColumn selects the activity count column.
	activityColumn int
	// activityLow and activityHigh are the activity count thresholds.
	activityLow, activityHigh float64
	// watch keeps the health check running.
	watch bool

	// rootCmd represents the base command when called without any subcommands.
	rootCmd = &cobra.Command{
		Use:   "ulmotion",
		Short: "Segment movements and classify upper-limb use from wearable sensor recordings.",
		Long: `ulmotion analyses recordings of wearable motion sensors.

It splits velocity recordings into movement bouts and classifies acceleration
recordings into functional upper-limb use, either in-process or on a remote
analysis server started with "ulmotion serve".

Recordings are JSON files, or msgpack files with a .msgpack or .mp extension,
holding a sampling rate and one row of channel values per sample.
Reports are written as JSON to stdout or to the file given by --output.`,
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging,
	}

	// segmentsCmd extracts movement bouts.
	segmentsCmd = &cobra.Command{
		Use:   "segments <recording>",
		Short: "Extract movement bouts from a velocity recording.",
		Long: `Splits a velocity recording into movement bouts.

A sample is moving when its speed exceeds a fraction of the peak speed.
Short bouts are dropped, short gaps are bridged and every bout is padded
by a fraction of its duration, as configured in the segments section.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return analyzer.RunSegments(cmd.Context(), analysisOptions(cmd, args[0]))
		},
	}

	// gmacCmd classifies use with pitch and magnitude hysteresis.
	gmacCmd = &cobra.Command{
		Use:   "gmac <recording>",
		Short: "Classify upper-limb use in a three-axis acceleration recording.",
		Long: `Classifies every sample of a three-axis acceleration recording as
functional use or not, combining forearm pitch and movement magnitude
through hysteresis thresholds configured in the gmac section.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return analyzer.RunGMAC(cmd.Context(), analysisOptions(cmd, args[0]))
		},
	}

	// countsCmd classifies use once per second.
	countsCmd = &cobra.Command{
		Use:   "counts <recording>",
		Short: "Classify upper-limb use per second with the count-based algorithm.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := analysisOptions(cmd, args[0])
			opts.ForearmAxis = forearmAxis

			return analyzer.RunCounts(cmd.Context(), opts)
		},
	}

	// activityCmd classifies use from activity counts.
	activityCmd = &cobra.Command{
		Use:   "activity <recording>",
		Short: "Classify upper-limb use from activity counts.",
		Long: `Classifies activity counts held in one recording column. Use starts
above --high and ends below --low. Equal thresholds apply a single threshold.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := analysisOptions(cmd, args[0])
			opts.Column = activityColumn
			opts.Low, opts.High = activityLow, activityHigh

			return analyzer.RunActivity(cmd.Context(), opts)
		},
	}

	// serveCmd runs the analysis gRPC server.
	serveCmd = &cobra.Command{
		Use:   "serve [listen-address]",
		Short: "Run the analysis gRPC server.",
		Long: `Starts the gRPC analysis server.

Only the port from server_addr in the configuration is used for listening
(e.g., :50051). A listen address argument overrides it (e.g., :9090, 0.0.0.0:8080).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
			}

			return server.Run(cmd.Context(), options)
		},
	}

	// checkCmd probes the analysis server health.
	checkCmd = &cobra.Command{
		Use:   "check [server-address]",
		Short: "Check that an analysis server is serving.",
		Long: `Runs a gRPC health check against the analysis server.

The server address can be provided as argument or loaded from configuration
file. With --watch the check repeats every 5 seconds until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var address string
			if len(args) > 0 {
				address = args[0]
			}

			options := &checker.Options{
				ConfigPath:    configPath,
				ServerAddress: address,
				Watch:         watch,
			}

			return checker.Run(cmd.Context(), options)
		},
	}
)

// Execute runs the ulmotion CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

// setupLogging applies --log-level or, without it, the level from the
// configuration file.
func setupLogging(*cobra.Command, []string) error {
	level := logLevel
	if level == "" {
		if settings, err := config.Load(configPath); err == nil {
			level = settings.LogLevel
		}
	}

	if level == "" {
		return nil
	}

	if !logger.SetLevelString(level) {
		return fmt.Errorf("unknown log level %q", level)
	}

	return nil
}

// analysisOptions collects the flags shared by the analysis subcommands.
func analysisOptions(cmd *cobra.Command, input string) *analyzer.Options {
	return &analyzer.Options{
		ConfigPath:    configPath,
		Input:         input,
		Output:        outputPath,
		ServerAddress: serverAddress,
		Stdout:        cmd.OutOrStdout(),
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "path to configuration file (default "+config.DefaultConfigFilename+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")

	for _, c := range []*cobra.Command{segmentsCmd, gmacCmd, countsCmd, activityCmd} {
		c.Flags().StringVarP(&outputPath, "output", "o", "", "write the report to this file instead of stdout")
		c.Flags().StringVar(&serverAddress, "server", "", "run the analysis on the analysis server at this address")
	}

	countsCmd.Flags().IntVar(&forearmAxis, "forearm-axis", 0, "recording column aligned with the forearm")
	activityCmd.Flags().IntVar(&activityColumn, "column", 0, "recording column holding the activity counts")
	activityCmd.Flags().Float64Var(&activityLow, "low", 0, "threshold below which use ends")
	activityCmd.Flags().Float64Var(&activityHigh, "high", 0, "threshold above which use starts")

	checkCmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep checking until interrupted")

	rootCmd.AddCommand(segmentsCmd, gmacCmd, countsCmd, activityCmd, serveCmd, checkCmd)
}
