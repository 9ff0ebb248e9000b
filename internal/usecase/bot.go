package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"NewsTranslatorBot/internal/domain"
	"NewsTranslatorBot/internal/ports"
)

const helpText = "I send translated tagesschau.de articles. React with the buttons below each " +
	"article and use /recommend to get suggestions based on your reactions."

// CallbackQuery is an inline button press.
type CallbackQuery struct {
	ID     string
	Data   string
	UserID int64
	ChatID int64
}

// TextMessage is an inbound chat message.
type TextMessage struct {
	UserID int64
	ChatID int64
	Text   string
}

// Bot routes inbound messaging events to feedback and recommendations.
type Bot struct {
	feedback    *FeedbackHandler
	recommender *Recommender
	notifier    ports.Notifier
	logger      *slog.Logger
}

// NewBot wires the handlers behind the webhook.
func NewBot(feedback *FeedbackHandler, recommender *Recommender, notifier ports.Notifier, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{feedback: feedback, recommender: recommender, notifier: notifier, logger: logger}
}

// HandleCallback answers the button press and performs its action.
func (b *Bot) HandleCallback(ctx context.Context, q CallbackQuery) error {
	if q.ID != "" && b.notifier != nil {
		if err := b.notifier.AnswerCallback(ctx, q.ID, ""); err != nil {
			b.logger.Warn("answer callback failed", "callback_id", q.ID, "error", err)
		}
	}

	chatID := q.ChatID
	if chatID == 0 {
		chatID = q.UserID
	}

	action, err := domain.ParseCallback(q.Data)
	if err != nil {
		b.logger.Warn("bad callback data", "data", q.Data, "user_id", q.UserID, "error", err)
		b.sendText(ctx, chatID, GenericErrorReply)
		return err
	}

	switch action.Kind {
	case domain.ActionFeedback:
		_, err := b.feedback.Handle(ctx, domain.FeedbackEvent{
			UserID:    q.UserID,
			ChatID:    chatID,
			ArticleID: action.ArticleID,
			Reaction:  string(action.Reaction),
		})
		return err
	case domain.ActionRecommend:
		return b.recommend(ctx, q.UserID, chatID)
	}
	return fmt.Errorf("%w: unhandled action %q", domain.ErrValidation, action.Kind)
}

// HandleMessage reacts to bot commands; other text is ignored.
func (b *Bot) HandleMessage(ctx context.Context, m TextMessage) error {
	switch command(m.Text) {
	case "/recommend":
		return b.recommend(ctx, m.UserID, m.ChatID)
	case "/start", "/help":
		b.sendText(ctx, m.ChatID, helpText)
	}
	return nil
}

func (b *Bot) recommend(ctx context.Context, userID, chatID int64) error {
	articles, err := b.recommender.Recommend(ctx, userID)
	if err != nil {
		b.logger.Error("recommend failed", "user_id", userID, "error", err)
		b.sendText(ctx, chatID, GenericErrorReply)
		return err
	}
	if b.notifier == nil {
		return nil
	}
	return b.notifier.SendRecommendations(ctx, chatID, articles)
}

func (b *Bot) sendText(ctx context.Context, chatID int64, text string) {
	if b.notifier == nil || chatID == 0 {
		return
	}
	if err := b.notifier.SendText(ctx, chatID, text); err != nil {
		b.logger.Warn("send reply failed", "chat_id", chatID, "error", err)
	}
}

// command extracts "/name" from "/name@botname args".
func command(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	name, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(name)
}
