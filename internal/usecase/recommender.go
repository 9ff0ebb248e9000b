package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"NewsTranslatorBot/internal/domain"
	"NewsTranslatorBot/internal/metrics"
	"NewsTranslatorBot/internal/ports"
)

// RecommenderDeps wires the recommender.
type RecommenderDeps struct {
	Feedback      ports.FeedbackRepository
	Scorer        ports.Scorer
	Limit         int
	MaxCandidates int
	Logger        *slog.Logger
}

// Recommender ranks unseen articles against a user's feedback history.
type Recommender struct {
	feedback      ports.FeedbackRepository
	scorer        ports.Scorer
	limit         int
	maxCandidates int
	logger        *slog.Logger
}

// NewRecommender constructs a recommender; a non-positive limit means 2.
func NewRecommender(deps RecommenderDeps) *Recommender {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := deps.Limit
	if limit <= 0 {
		limit = 2
	}
	return &Recommender{
		feedback:      deps.Feedback,
		scorer:        deps.Scorer,
		limit:         limit,
		maxCandidates: deps.MaxCandidates,
		logger:        logger,
	}
}

type scoredArticle struct {
	article domain.Article
	score   float64
}

// Recommend returns up to limit articles, most relevant first. Users without any
// feedback get an empty list. Candidates whose scoring fails are skipped; if every
// one fails the first error is returned.
func (r *Recommender) Recommend(ctx context.Context, userID int64) ([]domain.Article, error) {
	if r.feedback == nil || r.scorer == nil {
		return nil, errors.New("recommender misconfigured")
	}

	history, err := r.feedback.ListHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if len(history) == 0 {
		r.logger.Info("no feedback yet, skipping recommendations", "user_id", userID)
		metrics.Recommendations.Observe(0)
		return []domain.Article{}, nil
	}

	candidates, err := r.feedback.ListCandidates(ctx, userID, r.maxCandidates)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	scored := make([]scoredArticle, 0, len(candidates))
	var firstErr error
	for _, a := range candidates {
		s, err := r.scorer.Score(ctx, a, history)
		if err != nil {
			r.logger.Warn("score failed", "user_id", userID, "article_id", a.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		scored = append(scored, scoredArticle{article: a, score: s})
	}
	if len(scored) == 0 && firstErr != nil {
		return nil, fmt.Errorf("score candidates: %w", firstErr)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	n := min(r.limit, len(scored))
	out := make([]domain.Article, 0, n)
	for _, s := range scored[:n] {
		out = append(out, s.article)
	}

	metrics.Recommendations.Observe(float64(len(out)))
	r.logger.Info("recommendations computed",
		"user_id", userID,
		"history", len(history),
		"candidates", len(candidates),
		"returned", len(out),
	)
	return out, nil
}
