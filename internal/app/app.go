package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"NewsTranslatorBot/internal/config"
	"NewsTranslatorBot/internal/domain"
	"NewsTranslatorBot/internal/infrastructure/llm"
	"NewsTranslatorBot/internal/infrastructure/ml"
	"NewsTranslatorBot/internal/infrastructure/parser"
	"NewsTranslatorBot/internal/infrastructure/scheduler"
	"NewsTranslatorBot/internal/infrastructure/storage"
	"NewsTranslatorBot/internal/infrastructure/telegram"
	"NewsTranslatorBot/internal/logging"
	"NewsTranslatorBot/internal/ports"
	"NewsTranslatorBot/internal/scanner"
	"NewsTranslatorBot/internal/server"
	"NewsTranslatorBot/internal/usecase"
)

const schedulerStopTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg         config.Config
	logger      *slog.Logger
	pool        *pgxpool.Pool
	pipeline    *usecase.Pipeline
	recommender *usecase.Recommender
	bot         *usecase.Bot
}

// New connects to Postgres and builds every adapter and use case.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	pool, err := storage.Connect(ctx, cfg.Database.DSN, cfg.Database.MaxConns)
	if err != nil {
		return nil, err
	}
	repo := storage.NewPostgresRepository(pool)

	completer, err := llm.NewCompleter(cfg.LLM)
	if err != nil {
		pool.Close()
		return nil, err
	}
	model := llm.NewClient(completer, cfg.LLM.MaxInputChars, baseLogger.With("component", "llm."+cfg.LLM.Provider))

	registry := scanner.NewRegistry()
	registry.Register(parser.NewTagesschauScanner(nil, baseLogger.With("component", "scanner.tagesschau")))
	registry.Register(parser.NewRSSScanner(nil, baseLogger.With("component", "scanner.rss")))
	source := parser.NewStrategySource(registry, cfg.Sites, baseLogger.With("component", "source"))

	notifier := telegram.NewNotifier(cfg.Notifications.Telegram, baseLogger.With("component", "telegram"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:               source,
		Repository:           repo,
		Translator:           model,
		Classifier:           model,
		Notifier:             notifier,
		RecommendMinArticles: cfg.Notifications.Telegram.RecommendButtonMinArticles,
		Logger:               baseLogger.With("component", "pipeline"),
	})

	var scorer ports.Scorer = model
	if cfg.Recommender.Scorer == config.ScorerHeuristic {
		scorer = ml.NewHeuristicScorer()
	}
	recommender := usecase.NewRecommender(usecase.RecommenderDeps{
		Feedback:      repo,
		Scorer:        scorer,
		Limit:         cfg.Recommender.Limit,
		MaxCandidates: cfg.Recommender.MaxCandidates,
		Logger:        baseLogger.With("component", "recommender"),
	})

	feedback := usecase.NewFeedbackHandler(usecase.FeedbackDeps{
		Articles: repo,
		Feedback: repo,
		Notifier: notifier,
		Logger:   baseLogger.With("component", "feedback"),
	})

	return &Application{
		cfg:         cfg,
		logger:      baseLogger,
		pool:        pool,
		pipeline:    pipeline,
		recommender: recommender,
		bot:         usecase.NewBot(feedback, recommender, notifier, baseLogger.With("component", "bot")),
	}, nil
}

// Close releases the database pool.
func (a *Application) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

// RunOnce performs a single pipeline execution.
func (a *Application) RunOnce(ctx context.Context) (usecase.RunResult, error) {
	return a.pipeline.Run(ctx)
}

// Recommend computes recommendations for one user without sending them.
func (a *Application) Recommend(ctx context.Context, userID int64) ([]domain.Article, error) {
	return a.recommender.Recommend(ctx, userID)
}

// Serve runs the webhook server and, when an interval is configured, the
// in-process scheduler until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	srv := server.New(a.cfg.Server, a.cfg.Notifications.Telegram.WebhookSecret, a.bot, a.pool,
		a.logger.With("component", "server"))

	var sched *usecase.Scheduler
	if a.cfg.Scheduler.Interval > 0 {
		driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval, a.cfg.Scheduler.Location())
		sched = usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		a.logger.Info("scheduler started", "interval", a.cfg.Scheduler.Interval)
	}

	serveErr := srv.Run(ctx)

	if sched != nil {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), schedulerStopTimeout)
		defer cancel()
		if err := sched.Stop(stopCtx); err != nil {
			a.logger.Warn("scheduler did not stop cleanly", "error", err)
		}
	}
	return serveErr
}
