package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/internal/logging"
	"github.com/rustyeddy/tradejournal/internal/trace"
)

var rootCmd = &cobra.Command{
	Use:   "journal",
	Short: "A trading journal with equity curves and performance analytics",
	Long: `Journal records trades and their fills in SQLite and analyzes them.

It provides tools for:
  - Recording trades and fills with automatic position accounting
  - Importing minute candles for mark-to-market replay
  - Building per-trade equity curves
  - Performance reports (win rate, profit factor, SQN, K-ratio, p-value)
  - Entry timing analysis by equity curve shape

Settings come from --config (YAML or JSON), then .env, then the environment.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

var (
	cfgFile string
	envFile string
	dbFlag  string

	cfg    *config.Config
	logger = zap.NewNop()
)

// Execute adds all child commands to the root command and runs it until
// the command finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file with overrides")
	rootCmd.PersistentFlags().StringVarP(&dbFlag, "db", "d", "", "path to SQLite journal DB (overrides config)")
}

func setup(cmd *cobra.Command, args []string) error {
	c := config.Default()
	if cfgFile != "" {
		loaded, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return err
		}
		c = loaded
	}
	if err := c.Overlay(envFile); err != nil {
		return err
	}
	if dbFlag != "" {
		c.Journal.DBPath = dbFlag
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err := logging.New(c.Log.Level, c.Log.Format)
	if err != nil {
		return err
	}
	if err := trace.Init(cmd.Context(), trace.Config{Enabled: c.Trace.Enabled, Version: version}); err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	cfg, logger = c, log
	logger.Debug("config loaded",
		zap.String("db", c.Journal.DBPath),
		zap.String("candles", c.Candles.Source),
		zap.Bool("trace", c.Trace.Enabled),
	)
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	_ = logger.Sync()
	return trace.Shutdown(context.WithoutCancel(cmd.Context()))
}
