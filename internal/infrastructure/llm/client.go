package llm

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"NewsTranslatorBot/internal/config"
	"NewsTranslatorBot/internal/domain"
	"NewsTranslatorBot/internal/metrics"
	"NewsTranslatorBot/internal/ports"
)

// Completer is a single system+user round trip against a model provider.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// NewCompleter picks the backend named by cfg.Provider.
func NewCompleter(cfg config.LLMConfig) (Completer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", config.ProviderOpenAI:
		return NewChatGPTClient(cfg), nil
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg), nil
	case config.ProviderOllama:
		return NewOllamaClient(cfg)
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
}

// Client turns free-form completions into validated structured results.
type Client struct {
	completer Completer
	maxInput  int
	logger    *slog.Logger
}

var (
	_ ports.Translator = (*Client)(nil)
	_ ports.Classifier = (*Client)(nil)
	_ ports.Scorer     = (*Client)(nil)
)

// NewClient wraps a completer; maxInput bounds the article text sent per request.
func NewClient(completer Completer, maxInput int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{completer: completer, maxInput: maxInput, logger: logger}
}

// Translate renders the candidate's title and body in English.
func (c *Client) Translate(ctx context.Context, cand domain.Candidate) (domain.Translation, error) {
	var out domain.Translation
	if err := c.call(ctx, "translate", translatorSystemPrompt, articlePrompt(cand.Title, cand.Body, c.maxInput), &out); err != nil {
		return domain.Translation{}, err
	}

	out.Title = strings.TrimSpace(out.Title)
	out.Body = strings.TrimSpace(out.Body)
	if out.Title == "" || out.Body == "" {
		return domain.Translation{}, fmt.Errorf("%w: translation is missing title_en or content_en", domain.ErrModel)
	}
	return out, nil
}

// SummarizeAndClassify returns an English summary plus topic, sentiment and urgency,
// each normalized to its enumeration.
func (c *Client) SummarizeAndClassify(ctx context.Context, cand domain.Candidate) (domain.Classification, error) {
	var out domain.Classification
	if err := c.call(ctx, "classify", classifierPrompt(), articlePrompt(cand.Title, cand.Body, c.maxInput), &out); err != nil {
		return domain.Classification{}, err
	}

	out.Summary = strings.TrimSpace(out.Summary)
	if out.Summary == "" {
		return domain.Classification{}, fmt.Errorf("%w: classification is missing summary_en", domain.ErrModel)
	}

	var err error
	if out.Topic, err = normalizeEnum("topic", out.Topic, domain.Topics); err != nil {
		return domain.Classification{}, err
	}
	if out.Sentiment, err = normalizeEnum("sentiment", out.Sentiment, domain.Sentiments); err != nil {
		return domain.Classification{}, err
	}
	if out.Urgency, err = normalizeEnum("urgency", out.Urgency, domain.Urgencies); err != nil {
		return domain.Classification{}, err
	}
	return out, nil
}

// Score rates the article for a reader with the given history, in [0, 10].
func (c *Client) Score(ctx context.Context, article domain.Article, history []domain.HistoryEntry) (float64, error) {
	var out struct {
		Score *float64 `json:"score"`
	}
	if err := c.call(ctx, "score", scorerSystemPrompt, scorePrompt(article, history), &out); err != nil {
		return 0, err
	}

	if out.Score == nil {
		return 0, fmt.Errorf("%w: score missing", domain.ErrModel)
	}
	s := *out.Score
	if math.IsNaN(s) || s < 0 || s > 10 {
		return 0, fmt.Errorf("%w: score %v out of range", domain.ErrModel, s)
	}
	return s, nil
}

func (c *Client) call(ctx context.Context, op, system, user string, v any) error {
	if c.completer == nil {
		return fmt.Errorf("%w: no completion backend configured", domain.ErrModel)
	}

	start := time.Now()
	text, err := c.completer.Complete(ctx, system, user)
	metrics.ModelDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err == nil {
		err = decodeJSON(text, v)
	}
	if err != nil {
		metrics.ModelRequests.WithLabelValues(op, "error").Inc()
		c.logger.Warn("model request failed", "operation", op, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	metrics.ModelRequests.WithLabelValues(op, "ok").Inc()
	c.logger.Debug("model request done", "operation", op, "duration", time.Since(start))
	return nil
}
