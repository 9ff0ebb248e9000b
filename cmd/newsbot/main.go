package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"NewsTranslatorBot/internal/config"
	"NewsTranslatorBot/internal/logging"
)

var version = "dev"

var (
	configPath string
	logLevel   string
	cfg        config.Config
	logger     *slog.Logger
)

// exitError carries a process exit code other than 1.
type exitError struct {
	code int
	msg  string
}

func (e exitError) Error() string { return e.msg }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		var ee exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "newsbot",
	Short:         "Translate German news and deliver it to Telegram",
	Long:          "newsbot scrapes tagesschau.de, translates and classifies articles with a language model, stores them in Postgres and posts them to Telegram with feedback buttons.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// a missing .env is normal in production
		_ = godotenv.Load()

		if configPath != "" {
			if err := os.Setenv(config.PathEnv, configPath); err != nil {
				return err
			}
		}
		cfg = config.Load()
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		logger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config (overrides "+config.PathEnv+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(webhookCmd)
}

func fail(err error) error {
	if err == nil {
		return nil
	}
	var ee exitError
	if !errors.As(err, &ee) {
		logger.Error("command failed", "error", err)
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	return err
}
