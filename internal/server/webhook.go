package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"NewsTranslatorBot/internal/metrics"
	"NewsTranslatorBot/internal/usecase"
)

const (
	secretHeader    = "X-Telegram-Bot-Api-Secret-Token"
	maxUpdateBytes  = 1 << 20
	dispatchTimeout = 90 * time.Second
)

// UpdateHandler receives decoded Telegram updates.
type UpdateHandler interface {
	HandleCallback(ctx context.Context, q usecase.CallbackQuery) error
	HandleMessage(ctx context.Context, m usecase.TextMessage) error
}

type tgUser struct {
	ID int64 `json:"id"`
}

type tgChat struct {
	ID int64 `json:"id"`
}

type tgMessage struct {
	MessageID int64   `json:"message_id"`
	From      *tgUser `json:"from"`
	Chat      tgChat  `json:"chat"`
	Text      string  `json:"text"`
}

type tgCallbackQuery struct {
	ID      string     `json:"id"`
	From    tgUser     `json:"from"`
	Message *tgMessage `json:"message"`
	Data    string     `json:"data"`
}

type tgUpdate struct {
	UpdateID      int64            `json:"update_id"`
	Message       *tgMessage       `json:"message"`
	CallbackQuery *tgCallbackQuery `json:"callback_query"`
}

type webhook struct {
	secret  string
	handler UpdateHandler
	logger  *slog.Logger
}

var okResponse = map[string]bool{"ok": true}

// handle acknowledges every authenticated update with 200 so Telegram does not
// redeliver it; processing failures are logged only.
func (w *webhook) handle(c echo.Context) error {
	if w.secret != "" {
		got := c.Request().Header.Get(secretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(w.secret)) != 1 {
			metrics.WebhookUpdates.WithLabelValues("unauthorized").Inc()
			return c.JSON(http.StatusUnauthorized, map[string]any{"ok": false})
		}
	}

	var upd tgUpdate
	body := http.MaxBytesReader(c.Response(), c.Request().Body, maxUpdateBytes)
	if err := json.NewDecoder(body).Decode(&upd); err != nil {
		metrics.WebhookUpdates.WithLabelValues("malformed").Inc()
		w.logger.Warn("malformed update", "error", err)
		return c.JSON(http.StatusOK, okResponse)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), dispatchTimeout)
	defer cancel()
	w.dispatch(ctx, upd)

	return c.JSON(http.StatusOK, okResponse)
}

func (w *webhook) dispatch(ctx context.Context, upd tgUpdate) {
	log := w.logger.With("update_id", upd.UpdateID)

	switch {
	case upd.CallbackQuery != nil:
		metrics.WebhookUpdates.WithLabelValues("callback_query").Inc()
		cq := upd.CallbackQuery
		q := usecase.CallbackQuery{ID: cq.ID, Data: cq.Data, UserID: cq.From.ID}
		if cq.Message != nil {
			q.ChatID = cq.Message.Chat.ID
		}
		if w.handler == nil {
			return
		}
		if err := w.handler.HandleCallback(ctx, q); err != nil {
			log.Warn("callback handling failed", "data", cq.Data, "error", err)
		}

	case upd.Message != nil:
		metrics.WebhookUpdates.WithLabelValues("message").Inc()
		m := usecase.TextMessage{ChatID: upd.Message.Chat.ID, Text: upd.Message.Text}
		if upd.Message.From != nil {
			m.UserID = upd.Message.From.ID
		}
		if w.handler == nil {
			return
		}
		if err := w.handler.HandleMessage(ctx, m); err != nil {
			log.Warn("message handling failed", "error", err)
		}

	default:
		metrics.WebhookUpdates.WithLabelValues("ignored").Inc()
		log.Debug("ignoring update without message or callback")
	}
}
