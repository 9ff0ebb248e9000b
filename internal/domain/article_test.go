package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewArticleDefaultsPublishedAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := Candidate{URL: "https://www.tagesschau.de/a", Category: "Inland", Title: "Titel", Body: "Text"}
	a := NewArticle(c, Translation{Title: "Title", Body: "Text en"},
		Classification{Summary: "Sum", Topic: "Politics", Sentiment: "Neutral", Urgency: "Normal"}, now)

	if !a.PublishedAt.Equal(now) || !a.ProcessedAt.Equal(now) {
		t.Fatalf("timestamps = %s / %s", a.PublishedAt, a.ProcessedAt)
	}
	if a.TranslatedTitle != "Title" || a.Title != "Titel" || a.Topic != "Politics" {
		t.Fatalf("unexpected article: %+v", a)
	}
	if a.Delivered {
		t.Fatal("new article must not be delivered")
	}

	published := now.Add(-time.Hour)
	c.PublishedAt = published
	if got := NewArticle(c, Translation{}, Classification{}, now).PublishedAt; !got.Equal(published) {
		t.Fatalf("published = %s, want %s", got, published)
	}
}

func TestDisplayTitle(t *testing.T) {
	t.Parallel()

	if got := (Article{Title: "Titel"}).DisplayTitle(); got != "Titel" {
		t.Fatalf("got %q", got)
	}
	if got := (Article{Title: "Titel", TranslatedTitle: "Title"}).DisplayTitle(); got != "Title" {
		t.Fatalf("got %q", got)
	}
}

func TestParseReaction(t *testing.T) {
	t.Parallel()

	cases := map[string]Reaction{
		"interested":     ReactionInterested,
		"up":             ReactionInterested,
		"not_interested": ReactionNotInterested,
		"down":           ReactionNotInterested,
		"read_later":     ReactionReadLater,
		"later":          ReactionReadLater,
	}
	for in, want := range cases {
		got, err := ParseReaction(in)
		if err != nil || got != want {
			t.Fatalf("ParseReaction(%q) = %q, %v", in, got, err)
		}
		if _, err := ParseReaction(got.Code()); err != nil {
			t.Fatalf("code %q does not parse back: %v", got.Code(), err)
		}
	}

	if _, err := ParseReaction("love"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
