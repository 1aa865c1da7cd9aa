package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"campcheck/internal/components/telemetry"
	libtelemetry "campcheck/lib/telemetry"

	"github.com/spf13/cobra"
)

const (
	ExitOK             = 0
	ExitError          = 1
	ExitUsage          = 2
	ExitNoAvailability = 3
)

var configPath *string
var debug *bool

// set by commands that finish without error but want a non-zero status
var exitCode = ExitOK

// telemetry set up by the last execution, flushed once it returns
var activeTelemetry libtelemetry.Telemetry

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "campcheck.json5", "The configuration file, <name>.local.json5 overrides it.")
	debug = rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug log level, also dumps every HTTP exchange to the state directory.")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Message: err.Error()}
	})
}

var rootCmd = &cobra.Command{
	Use:           "campcheck",
	Short:         "campcheck finds campsites with enough consecutive free nights on recreation.gov.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		libtelemetry.InitSlog(*debug)

		config, err := LoadConfig(*configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}

		otel, err := libtelemetry.Setup(cmd.Context(), "campcheck", config.Telemetry)
		if err != nil {
			slog.Warn("failed to setup telemetry, continuing without it", "err", err)
		}

		activeTelemetry = otel
		cmd.SetContext(setGlobals(cmd.Context(), &Globals{
			Config: config,
			Debug:  *debug,
			Tel:    telemetry.NewSlogAPI(slog.Default()),
		}))
		return nil
	},
}

// ExecuteContext runs the command line and returns the process exit status.
func ExecuteContext(ctx context.Context) int {
	exitCode = ExitOK
	activeTelemetry = libtelemetry.Telemetry{}
	err := rootCmd.ExecuteContext(ctx)
	flushTelemetry()
	if err == nil {
		return exitCode
	}

	fmt.Fprintln(os.Stderr, "error:", err)

	var usage *UsageError
	if errors.As(err, &usage) {
		fmt.Fprintln(os.Stderr, "run 'campcheck --help' for usage.")
		return ExitUsage
	}
	return ExitError
}

func flushTelemetry() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	err := activeTelemetry.Shutdown(ctx)
	if err != nil {
		slog.Warn("failed to flush telemetry", "err", err)
	}
	activeTelemetry = libtelemetry.Telemetry{}
}
