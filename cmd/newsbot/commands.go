package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"NewsTranslatorBot/internal/app"
	"NewsTranslatorBot/internal/infrastructure/storage"
	"NewsTranslatorBot/internal/infrastructure/telegram"
	"NewsTranslatorBot/internal/usecase"
)

const exitNoOp = 2

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process one article (exit 0 processed, 2 nothing to do, 1 failure)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidatePipeline(); err != nil {
			return fail(err)
		}

		application, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return fail(err)
		}
		defer application.Close()

		res, err := application.RunOnce(cmd.Context())
		if err != nil {
			return fail(err)
		}

		switch res.Status {
		case usecase.StatusProcessed:
			fmt.Printf("processed article %d (%s), delivered=%t\n", res.Article.ID, res.Article.URL, res.Delivered)
			return nil
		default:
			fmt.Printf("nothing to do: %s\n", res.Status)
			return exitError{code: exitNoOp, msg: string(res.Status)}
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the Telegram webhook, health and metrics endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidatePipeline(); err != nil {
			return fail(err)
		}

		application, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return fail(err)
		}
		defer application.Close()

		return fail(application.Serve(cmd.Context()))
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.DSN == "" {
			return fail(errors.New("DATABASE_DSN is required"))
		}
		if err := storage.Migrate(cmd.Context(), cfg.Database.DSN); err != nil {
			return fail(err)
		}
		logger.Info("schema applied")
		return nil
	},
}

var recommendUserID int64

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Print recommendations for a Telegram user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if recommendUserID <= 0 {
			return fail(errors.New("--user must be a positive Telegram user id"))
		}

		application, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return fail(err)
		}
		defer application.Close()

		articles, err := application.Recommend(cmd.Context(), recommendUserID)
		if err != nil {
			return fail(err)
		}
		if len(articles) == 0 {
			fmt.Println("No new recommendations yet.")
			return nil
		}
		for i, a := range articles {
			fmt.Printf("%d. [%s] %s\n   %s\n", i+1, a.Topic, a.DisplayTitle(), a.URL)
		}
		return nil
	},
}

var webhookURL string

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage the Telegram webhook",
}

var webhookSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Register the public webhook URL with Telegram",
	RunE: func(cmd *cobra.Command, args []string) error {
		url := strings.TrimRight(webhookURL, "/")
		if url == "" {
			return fail(errors.New("--url is required"))
		}
		if !strings.HasSuffix(url, "/telegram/webhook") {
			url += "/telegram/webhook"
		}

		tg := cfg.Notifications.Telegram
		if tg.WebhookSecret == "" {
			logger.Warn("registering webhook without a secret token")
		}
		notifier := telegram.NewNotifier(tg, logger.With("component", "telegram"))
		if err := notifier.SetWebhook(cmd.Context(), url, tg.WebhookSecret); err != nil {
			return fail(err)
		}
		fmt.Printf("webhook set to %s\n", url)
		return nil
	},
}

func init() {
	recommendCmd.Flags().Int64Var(&recommendUserID, "user", 0, "Telegram user id")
	_ = recommendCmd.MarkFlagRequired("user")

	webhookSetCmd.Flags().StringVar(&webhookURL, "url", "", "Public base URL of this service")
	_ = webhookSetCmd.MarkFlagRequired("url")
	webhookCmd.AddCommand(webhookSetCmd)
}
