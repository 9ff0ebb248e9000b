package usecase

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"NewsTranslatorBot/internal/domain"
	"NewsTranslatorBot/internal/metrics"
	"NewsTranslatorBot/internal/ports"
)

// GenericErrorReply is sent whenever an inbound event cannot be handled.
const GenericErrorReply = "Something went wrong. Please try again."

// FeedbackDeps wires the feedback handler.
type FeedbackDeps struct {
	Articles ports.ArticleRepository
	Feedback ports.FeedbackRepository
	Notifier ports.Notifier
	Logger   *slog.Logger
	Now      func() time.Time
}

// FeedbackHandler validates reactions, stores them and confirms to the user.
type FeedbackHandler struct {
	articles ports.ArticleRepository
	feedback ports.FeedbackRepository
	notifier ports.Notifier
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewFeedbackHandler constructs the handler.
func NewFeedbackHandler(deps FeedbackDeps) *FeedbackHandler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &FeedbackHandler{
		articles: deps.Articles,
		feedback: deps.Feedback,
		notifier: deps.Notifier,
		validate: validate,
		logger:   logger,
		now:      now,
	}
}

// Handle records one reaction. Invalid events and unknown articles are rejected
// with domain.ErrValidation and nothing is written; the sender gets a generic reply.
func (h *FeedbackHandler) Handle(ctx context.Context, ev domain.FeedbackEvent) (domain.Feedback, error) {
	fb, article, err := h.record(ctx, ev)
	if err != nil {
		metrics.FeedbackEvents.WithLabelValues(reactionLabel(ev.Reaction), "rejected").Inc()
		h.logger.Warn("feedback rejected",
			"user_id", ev.UserID,
			"article_id", ev.ArticleID,
			"reaction", ev.Reaction,
			"error", err,
		)
		h.reply(ctx, ev.ChatID, GenericErrorReply)
		return domain.Feedback{}, err
	}

	metrics.FeedbackEvents.WithLabelValues(string(fb.Reaction), "stored").Inc()
	h.logger.Info("feedback stored",
		"feedback_id", fb.ID,
		"user_id", fb.UserID,
		"article_id", fb.ArticleID,
		"reaction", fb.Reaction,
	)
	h.reply(ctx, ev.ChatID, confirmation(fb.Reaction, article.DisplayTitle()))
	return fb, nil
}

func (h *FeedbackHandler) record(ctx context.Context, ev domain.FeedbackEvent) (domain.Feedback, domain.Article, error) {
	if err := h.validate.Struct(ev); err != nil {
		return domain.Feedback{}, domain.Article{}, fmt.Errorf("%w: %s", domain.ErrValidation, describeValidation(err))
	}
	reaction, err := domain.ParseReaction(ev.Reaction)
	if err != nil {
		return domain.Feedback{}, domain.Article{}, err
	}

	article, err := h.articles.GetArticle(ctx, ev.ArticleID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Feedback{}, domain.Article{}, fmt.Errorf("%w: unknown article %d", domain.ErrValidation, ev.ArticleID)
	}
	if err != nil {
		return domain.Feedback{}, domain.Article{}, fmt.Errorf("load article: %w", err)
	}

	fb, err := h.feedback.SaveFeedback(ctx, domain.Feedback{
		ArticleID: ev.ArticleID,
		UserID:    ev.UserID,
		ChatID:    ev.ChatID,
		Reaction:  reaction,
		CreatedAt: h.now().UTC(),
	})
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Feedback{}, domain.Article{}, fmt.Errorf("%w: unknown article %d", domain.ErrValidation, ev.ArticleID)
	}
	if err != nil {
		return domain.Feedback{}, domain.Article{}, fmt.Errorf("save feedback: %w", err)
	}
	return fb, article, nil
}

func (h *FeedbackHandler) reply(ctx context.Context, chatID int64, text string) {
	if h.notifier == nil || chatID == 0 {
		return
	}
	if err := h.notifier.SendText(ctx, chatID, text); err != nil {
		h.logger.Warn("feedback reply failed", "chat_id", chatID, "error", err)
	}
}

func confirmation(r domain.Reaction, title string) string {
	label := "Saved"
	switch r {
	case domain.ReactionNotInterested:
		label = "Not saved"
	case domain.ReactionReadLater:
		label = "Saved for later"
	}
	return fmt.Sprintf("<b>%s:</b> %s", label, html.EscapeString(title))
}

// reactionLabel keeps metric label values to the known reactions.
func reactionLabel(v string) string {
	r, err := domain.ParseReaction(v)
	if err != nil {
		return "invalid"
	}
	return string(r)
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, ", ")
}
