package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dusk-indust/cdrhelper/internal/config"
)

// version is set by goreleaser at build time.
var version = "dev"

var (
	workdir   string
	outputDir string
	name      string
	verbose   bool

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cdrhelper",
	Short: "Generate and analyze fake call-detail-record datasets",
	Long: `cdrhelper synthesizes call-detail-record datasets: a preferential-attachment
network of callers, daily call events with reciprocation, and subscriber
attributes. It also summarizes the resulting call networks per quarter.

Settings are read from cdrhelper.yml in the working directory; flags override
them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(workdir)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cmd.Flags().Changed("output-dir") {
			cfg.OutputDir = outputDir
		}
		if cmd.Flags().Changed("name") {
			cfg.Name = name
		}
		if verbose {
			cfg.Verbose = true
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zcfg.Build()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&workdir, "dir", ".", "directory holding cdrhelper.yml")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", "", "dataset directory (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&name, "name", "n", "", "dataset name (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		generateCmd,
		analyzeCmd,
		statsCmd,
		statusCmd,
		exportCmd,
		serveMCPCmd,
		versionCmd,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
