package ports

import (
	"context"
	"time"

	"NewsTranslatorBot/internal/domain"
)

// ArticleSource pulls the most recent article from the configured news site.
type ArticleSource interface {
	FetchLatest(ctx context.Context) (domain.Candidate, error)
}

// ArticleRepository persists processed articles for deduplication and delivery.
type ArticleRepository interface {
	ExistsByURL(ctx context.Context, url string) (bool, error)
	// SaveArticle inserts the row; inserted is false when the URL already exists.
	SaveArticle(ctx context.Context, article domain.Article) (saved domain.Article, inserted bool, err error)
	MarkDelivered(ctx context.Context, id int64) error
	GetArticle(ctx context.Context, id int64) (domain.Article, error)
	CountArticles(ctx context.Context) (int, error)
}

// FeedbackRepository stores reactions and reads them back for recommendations.
type FeedbackRepository interface {
	SaveFeedback(ctx context.Context, fb domain.Feedback) (domain.Feedback, error)
	ListHistory(ctx context.Context, userID int64) ([]domain.HistoryEntry, error)
	ListCandidates(ctx context.Context, userID int64, limit int) ([]domain.Article, error)
}

// Translator renders the original article in English.
type Translator interface {
	Translate(ctx context.Context, c domain.Candidate) (domain.Translation, error)
}

// Classifier summarizes and tags an article.
type Classifier interface {
	SummarizeAndClassify(ctx context.Context, c domain.Candidate) (domain.Classification, error)
}

// Scorer rates how relevant an article is given the user's feedback history.
type Scorer interface {
	Score(ctx context.Context, article domain.Article, history []domain.HistoryEntry) (float64, error)
}

// Notifier delivers articles and replies to the messaging platform.
type Notifier interface {
	SendArticle(ctx context.Context, article domain.Article, controls domain.Controls) (domain.Delivery, error)
	SendRecommendations(ctx context.Context, chatID int64, articles []domain.Article) error
	SendText(ctx context.Context, chatID int64, text string) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
