package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/perf-fold/pkg/config"
	"github.com/perf-fold/pkg/telemetry"
	"github.com/perf-fold/pkg/utils"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	configPath string

	logger utils.Logger
	cfg    *config.Config

	telemetryShutdown telemetry.ShutdownFunc
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "perf-fold",
	Short: "Collapse perf script output into folded stacks",
	Long: `perf-fold converts the output of "perf script" into folded stack lines,
the single-line-per-stack format consumed by flame graph tooling.

Identical call stacks are merged and counted, optionally annotated with
kernel and JIT markers, and written sorted so the output is stable for a
given input. Large traces are folded by multiple workers in parallel.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if quiet {
			logger = &utils.NullLogger{}
		} else {
			logLevel := utils.LevelWarn
			if verbose {
				logLevel = utils.LevelDebug
			}
			logger = utils.NewDefaultLogger(logLevel, os.Stderr)
		}

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		shutdown, err := telemetry.Init(cmd.Context())
		if err != nil {
			logger.Warn("telemetry init failed: %v", err)
		} else {
			telemetryShutdown = shutdown
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if telemetryShutdown != nil {
			return telemetryShutdown(context.Background())
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Silence all log output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")

	binName := BinName()
	rootCmd.Example = `  # Fold a recorded trace to stdout
  perf script | ` + binName + ` fold

  # Fold a file with kernel and JIT annotations, 8 workers
  ` + binName + ` fold --all -n 8 trace.perf

  # Fold, archive the run and upload the result
  ` + binName + ` fold trace.perf -o trace.folded --archive --upload`
}

// GetLogger returns the configured logger.
func GetLogger() utils.Logger {
	return logger
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return cfg
}

// BinName returns the base name of the current executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}
