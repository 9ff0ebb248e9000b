package domain

import (
	"fmt"
	"time"
)

// Reaction is the user's response to a delivered article.
type Reaction string

const (
	ReactionInterested    Reaction = "interested"
	ReactionNotInterested Reaction = "not_interested"
	ReactionReadLater     Reaction = "read_later"
)

// ParseReaction accepts the stored value or the short callback code.
func ParseReaction(v string) (Reaction, error) {
	switch v {
	case string(ReactionInterested), "up":
		return ReactionInterested, nil
	case string(ReactionNotInterested), "down":
		return ReactionNotInterested, nil
	case string(ReactionReadLater), "later":
		return ReactionReadLater, nil
	}
	return "", fmt.Errorf("%w: unknown reaction %q", ErrValidation, v)
}

// Code is the compact form used in callback data.
func (r Reaction) Code() string {
	switch r {
	case ReactionInterested:
		return "up"
	case ReactionNotInterested:
		return "down"
	case ReactionReadLater:
		return "later"
	}
	return string(r)
}

// Feedback is one persisted reaction. Rows are never mutated.
type Feedback struct {
	ID        int64
	ArticleID int64
	UserID    int64
	ChatID    int64
	Reaction  Reaction
	CreatedAt time.Time
}

// FeedbackEvent is an inbound reaction before validation.
type FeedbackEvent struct {
	UserID    int64  `json:"user_id" validate:"required,gt=0"`
	ChatID    int64  `json:"chat_id" validate:"required"`
	ArticleID int64  `json:"article_id" validate:"required,gt=0"`
	Reaction  string `json:"reaction" validate:"required,oneof=interested not_interested read_later"`
}

// HistoryEntry is a feedback row joined with the article it refers to.
type HistoryEntry struct {
	ArticleID int64
	Title     string
	Topic     string
	Reaction  Reaction
	CreatedAt time.Time
}
