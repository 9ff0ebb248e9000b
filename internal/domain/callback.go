package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// CallbackRecommend is the callback data of the "More recommendations" button.
const CallbackRecommend = "recommend"

const (
	callbackFeedbackPrefix = "fb"
	// legacy values written by the first bot version; still accepted on input.
	legacyFeedbackPrefix  = "feedback"
	legacyRecommendAction = "recommend_more"
)

// ActionKind distinguishes inline button presses.
type ActionKind string

const (
	ActionFeedback  ActionKind = "feedback"
	ActionRecommend ActionKind = "recommend"
)

// Action is a decoded callback payload.
type Action struct {
	Kind      ActionKind
	Reaction  Reaction
	ArticleID int64
}

// FeedbackCallback encodes a reaction button, e.g. "fb:up:42".
func FeedbackCallback(r Reaction, articleID int64) string {
	return fmt.Sprintf("%s:%s:%d", callbackFeedbackPrefix, r.Code(), articleID)
}

// ParseCallback decodes inline button data. Anything unexpected is ErrValidation.
func ParseCallback(data string) (Action, error) {
	data = strings.TrimSpace(data)
	if data == CallbackRecommend || data == legacyRecommendAction {
		return Action{Kind: ActionRecommend}, nil
	}

	parts := strings.Split(data, ":")
	if len(parts) != 3 || (parts[0] != callbackFeedbackPrefix && parts[0] != legacyFeedbackPrefix) {
		return Action{}, fmt.Errorf("%w: unknown callback data %q", ErrValidation, data)
	}

	reaction, err := ParseReaction(parts[1])
	if err != nil {
		return Action{}, err
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || id <= 0 {
		return Action{}, fmt.Errorf("%w: bad article id in callback %q", ErrValidation, data)
	}
	return Action{Kind: ActionFeedback, Reaction: reaction, ArticleID: id}, nil
}
