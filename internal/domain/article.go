package domain

import "time"

// Candidate is a scraped article that has not been processed yet.
type Candidate struct {
	URL         string
	Category    string
	Title       string
	Body        string
	PublishedAt time.Time
}

// Translation holds the English rendition of a candidate.
type Translation struct {
	Title string `json:"title_en"`
	Body  string `json:"content_en"`
}

// Classification is the summary plus tags returned by the language model.
type Classification struct {
	Summary   string `json:"summary_en"`
	Topic     string `json:"topic"`
	Sentiment string `json:"sentiment"`
	Urgency   string `json:"urgency"`
}

// Article is a fully processed news item persisted to Postgres.
type Article struct {
	ID              int64
	URL             string
	Category        string
	Title           string
	TranslatedTitle string
	Body            string
	TranslatedBody  string
	Summary         string
	Topic           string
	Sentiment       string
	Urgency         string
	PublishedAt     time.Time
	ProcessedAt     time.Time
	Delivered       bool
}

// DisplayTitle prefers the translated title.
func (a Article) DisplayTitle() string {
	if a.TranslatedTitle != "" {
		return a.TranslatedTitle
	}
	return a.Title
}

// NewArticle assembles the persisted row from all pipeline outputs.
func NewArticle(c Candidate, t Translation, cl Classification, now time.Time) Article {
	published := c.PublishedAt
	if published.IsZero() {
		published = now
	}
	return Article{
		URL:             c.URL,
		Category:        c.Category,
		Title:           c.Title,
		TranslatedTitle: t.Title,
		Body:            c.Body,
		TranslatedBody:  t.Body,
		Summary:         cl.Summary,
		Topic:           cl.Topic,
		Sentiment:       cl.Sentiment,
		Urgency:         cl.Urgency,
		PublishedAt:     published,
		ProcessedAt:     now,
	}
}

// Topics enumerates the classification topics accepted from the model.
var Topics = []string{"Politics", "Economy", "Society", "Technology", "Health", "Environment", "Sports", "Other"}

// Sentiments enumerates the accepted sentiment tags.
var Sentiments = []string{"Positive", "Neutral", "Negative"}

// Urgencies enumerates the accepted urgency tags.
var Urgencies = []string{"Breaking", "Normal", "Low"}

// Delivery confirms which chats received a notification.
type Delivery struct {
	ChatIDs    []string
	MessageIDs []int64
}

// Controls toggles optional inline buttons attached to an article message.
type Controls struct {
	Recommend bool
}
