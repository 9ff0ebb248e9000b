package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"NewsTranslatorBot/internal/config"
	"NewsTranslatorBot/internal/domain"
	"NewsTranslatorBot/internal/metrics"
	"NewsTranslatorBot/internal/ports"
)

const (
	noRecommendationsText = "No new recommendations yet."
	defaultAPIBaseURL     = "https://api.telegram.org"
)

// Notifier talks to the Telegram Bot API.
type Notifier struct {
	botToken string
	chatIDs  []string
	baseURL  string
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers the bot token and broadcast chats.
func NewNotifier(cfg config.TelegramConfig, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	base := strings.TrimRight(cfg.APIBaseURL, "/")
	if base == "" {
		base = defaultAPIBaseURL
	}
	return &Notifier{
		botToken: cfg.BotToken,
		chatIDs:  cfg.ChatIDs,
		baseURL:  base,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type sendMessageRequest struct {
	ChatID                any             `json:"chat_id"`
	Text                  string          `json:"text"`
	ParseMode             string          `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool            `json:"disable_web_page_preview,omitempty"`
	ReplyMarkup           *inlineKeyboard `json:"reply_markup,omitempty"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// SendArticle posts the article card to every configured chat. All chats are
// attempted; the first failure is returned along with what was delivered.
func (n *Notifier) SendArticle(ctx context.Context, article domain.Article, controls domain.Controls) (domain.Delivery, error) {
	if n.botToken == "" || len(n.chatIDs) == 0 {
		return domain.Delivery{}, fmt.Errorf("%w: telegram notifier misconfigured", domain.ErrDelivery)
	}

	text := FormatArticle(article)
	keyboard := articleKeyboard(article.ID, controls)

	var (
		delivery domain.Delivery
		firstErr error
	)
	for _, chatID := range n.chatIDs {
		msgID, err := n.sendMessage(ctx, sendMessageRequest{
			ChatID:                chatID,
			Text:                  text,
			ParseMode:             "HTML",
			DisableWebPagePreview: true,
			ReplyMarkup:           keyboard,
		})
		if err != nil {
			metrics.Notifications.WithLabelValues("error").Inc()
			n.logger.Warn("send article failed", "chat_id", chatID, "article_id", article.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		metrics.Notifications.WithLabelValues("ok").Inc()
		delivery.ChatIDs = append(delivery.ChatIDs, chatID)
		delivery.MessageIDs = append(delivery.MessageIDs, msgID)
	}

	return delivery, firstErr
}

// SendRecommendations posts a compact list, or a short notice when it is empty.
func (n *Notifier) SendRecommendations(ctx context.Context, chatID int64, articles []domain.Article) error {
	if len(articles) == 0 {
		return n.SendText(ctx, chatID, noRecommendationsText)
	}

	_, err := n.sendMessage(ctx, sendMessageRequest{
		ChatID:                chatID,
		Text:                  FormatRecommendations(articles),
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	return err
}

// SendText posts an HTML-formatted reply.
func (n *Notifier) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := n.sendMessage(ctx, sendMessageRequest{ChatID: chatID, Text: text, ParseMode: "HTML"})
	return err
}

// AnswerCallback acknowledges an inline button press so the client stops spinning.
func (n *Notifier) AnswerCallback(ctx context.Context, callbackID, text string) error {
	payload := map[string]any{"callback_query_id": callbackID}
	if text != "" {
		payload["text"] = text
	}
	_, err := n.call(ctx, "answerCallbackQuery", payload)
	return err
}

// SetWebhook registers the public webhook URL with Telegram.
func (n *Notifier) SetWebhook(ctx context.Context, url, secret string) error {
	payload := map[string]any{
		"url":             url,
		"allowed_updates": []string{"message", "callback_query"},
	}
	if secret != "" {
		payload["secret_token"] = secret
	}
	_, err := n.call(ctx, "setWebhook", payload)
	return err
}

func (n *Notifier) sendMessage(ctx context.Context, req sendMessageRequest) (int64, error) {
	raw, err := n.call(ctx, "sendMessage", req)
	if err != nil {
		return 0, err
	}

	var msg struct {
		MessageID int64 `json:"message_id"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return 0, fmt.Errorf("%w: decode sendMessage result: %w", domain.ErrDelivery, err)
	}
	return msg.MessageID, nil
}

func (n *Notifier) call(ctx context.Context, method string, payload any) (json.RawMessage, error) {
	if n.botToken == "" {
		return nil, fmt.Errorf("%w: telegram bot token missing", domain.ErrDelivery)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal %s: %w", domain.ErrDelivery, method, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", n.baseURL, n.botToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: new request: %w", domain.ErrDelivery, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		// the URL carries the token; keep it out of logs
		return nil, fmt.Errorf("%w: %s: request failed", domain.ErrDelivery, method)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %w", domain.ErrDelivery, method, err)
	}

	var out apiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", domain.ErrDelivery, method, resp.Status)
	}
	if resp.StatusCode != http.StatusOK || !out.OK {
		return nil, fmt.Errorf("%w: %s: %s %s", domain.ErrDelivery, method, resp.Status, out.Description)
	}
	return out.Result, nil
}

func articleKeyboard(articleID int64, controls domain.Controls) *inlineKeyboard {
	kb := &inlineKeyboard{InlineKeyboard: [][]inlineButton{{
		{Text: "Interested!", CallbackData: domain.FeedbackCallback(domain.ReactionInterested, articleID)},
		{Text: "Not interested", CallbackData: domain.FeedbackCallback(domain.ReactionNotInterested, articleID)},
	}, {
		{Text: "Read later", CallbackData: domain.FeedbackCallback(domain.ReactionReadLater, articleID)},
	}}}
	if controls.Recommend {
		kb.InlineKeyboard = append(kb.InlineKeyboard, []inlineButton{
			{Text: "More recommendations", CallbackData: domain.CallbackRecommend},
		})
	}
	return kb
}

// FormatArticle renders the HTML card for one article.
func FormatArticle(a domain.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n\n", html.EscapeString(a.DisplayTitle()))
	fmt.Fprintf(&b, "<b>Category:</b> %s\n", html.EscapeString(a.Category))
	fmt.Fprintf(&b, "<b>Topic:</b> %s\n", html.EscapeString(a.Topic))
	fmt.Fprintf(&b, "<b>Sentiment:</b> %s\n", html.EscapeString(a.Sentiment))
	fmt.Fprintf(&b, "<b>Urgency:</b> %s\n\n", html.EscapeString(a.Urgency))
	fmt.Fprintf(&b, "<b>Overview:</b>\n%s\n\n", html.EscapeString(a.Summary))
	fmt.Fprintf(&b, "🔗 <a href=\"%s\">Read full article here</a>", html.EscapeString(a.URL))
	return b.String()
}

// FormatRecommendations renders "[Topic] Title" lines with links.
func FormatRecommendations(articles []domain.Article) string {
	lines := make([]string, 0, len(articles))
	for _, a := range articles {
		lines = append(lines, fmt.Sprintf("<b>[%s]</b> <a href=\"%s\">%s</a>",
			html.EscapeString(a.Topic), html.EscapeString(a.URL), html.EscapeString(a.DisplayTitle())))
	}
	return "⭐ <b>Recommended for you</b>\n\n" + strings.Join(lines, "\n")
}
