package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"NewsTranslatorBot/internal/domain"
	"NewsTranslatorBot/internal/metrics"
	"NewsTranslatorBot/internal/ports"
)

// RunStatus is the outcome of one pipeline run.
type RunStatus string

const (
	StatusProcessed RunStatus = "processed"
	StatusNoArticle RunStatus = "no_article"
	StatusDuplicate RunStatus = "duplicate"
)

// RunResult describes what a pipeline run did.
type RunResult struct {
	RunID     string
	Status    RunStatus
	Article   domain.Article
	Delivered bool
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.ArticleSource
	Repository ports.ArticleRepository
	Translator ports.Translator
	Classifier ports.Classifier
	Notifier   ports.Notifier
	// RecommendMinArticles is the stored-article count from which the
	// "More recommendations" button is attached. Zero disables it.
	RecommendMinArticles int
	Logger               *slog.Logger
	Now                  func() time.Time
}

// Pipeline implements scrape, dedup, translate, classify, persist and notify for
// a single article.
type Pipeline struct {
	source       ports.ArticleSource
	repository   ports.ArticleRepository
	translator   ports.Translator
	classifier   ports.Classifier
	notifier     ports.Notifier
	recommendMin int
	logger       *slog.Logger
	now          func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		source:       deps.Source,
		repository:   deps.Repository,
		translator:   deps.Translator,
		classifier:   deps.Classifier,
		notifier:     deps.Notifier,
		recommendMin: deps.RecommendMinArticles,
		logger:       logger,
		now:          now,
	}
}

// Run processes at most one article. Errors from fetching, the model or the store
// abort before anything is written; a delivery failure is logged and reported
// through RunResult.Delivered only.
func (p *Pipeline) Run(ctx context.Context) (RunResult, error) {
	if p.source == nil || p.repository == nil || p.translator == nil || p.classifier == nil {
		return RunResult{}, errors.New("pipeline misconfigured: source, repository, translator and classifier are required")
	}

	start := time.Now()
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)

	res, err := p.run(ctx, logger)
	res.RunID = runID

	outcome := string(res.Status)
	if err != nil {
		outcome = "failed"
	}
	metrics.PipelineRuns.WithLabelValues(outcome).Inc()
	metrics.PipelineDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		logger.Error("pipeline run failed", "error", err, "duration", time.Since(start))
		return res, err
	}
	logger.Info("pipeline run finished",
		"status", res.Status,
		"article_id", res.Article.ID,
		"delivered", res.Delivered,
		"duration", time.Since(start),
	)
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, logger *slog.Logger) (RunResult, error) {
	candidate, err := p.source.FetchLatest(ctx)
	if errors.Is(err, domain.ErrNoArticle) {
		logger.Info("no article available")
		return RunResult{Status: StatusNoArticle}, nil
	}
	if err != nil {
		return RunResult{}, fmt.Errorf("fetch latest: %w", err)
	}
	logger = logger.With("url", candidate.URL)

	exists, err := p.repository.ExistsByURL(ctx, candidate.URL)
	if err != nil {
		return RunResult{}, fmt.Errorf("check duplicate: %w", err)
	}
	if exists {
		logger.Info("article already processed")
		return RunResult{Status: StatusDuplicate}, nil
	}

	translation, err := p.translator.Translate(ctx, candidate)
	if err != nil {
		return RunResult{}, fmt.Errorf("translate: %w", err)
	}
	classification, err := p.classifier.SummarizeAndClassify(ctx, candidate)
	if err != nil {
		return RunResult{}, fmt.Errorf("summarize and classify: %w", err)
	}

	article := domain.NewArticle(candidate, translation, classification, p.now().UTC())
	saved, inserted, err := p.repository.SaveArticle(ctx, article)
	if err != nil {
		return RunResult{}, fmt.Errorf("save article: %w", err)
	}
	if !inserted {
		logger.Info("article stored concurrently", "article_id", saved.ID)
		return RunResult{Status: StatusDuplicate, Article: saved}, nil
	}
	logger.Debug("article stored", "article_id", saved.ID, "topic", saved.Topic)

	res := RunResult{Status: StatusProcessed, Article: saved}
	if p.notifier == nil {
		return res, nil
	}

	if _, err := p.notifier.SendArticle(ctx, saved, p.controls(ctx, logger)); err != nil {
		logger.Warn("article delivery failed", "article_id", saved.ID, "error", err)
		return res, nil
	}
	res.Delivered = true

	if err := p.repository.MarkDelivered(ctx, saved.ID); err != nil {
		logger.Warn("mark delivered failed", "article_id", saved.ID, "error", err)
		return res, nil
	}
	res.Article.Delivered = true
	return res, nil
}

// controls decides which optional buttons go on the article message. A failed
// count only hides the button.
func (p *Pipeline) controls(ctx context.Context, logger *slog.Logger) domain.Controls {
	if p.recommendMin <= 0 {
		return domain.Controls{}
	}
	n, err := p.repository.CountArticles(ctx)
	if err != nil {
		logger.Warn("count articles failed", "error", err)
		return domain.Controls{}
	}
	return domain.Controls{Recommend: n >= p.recommendMin}
}
