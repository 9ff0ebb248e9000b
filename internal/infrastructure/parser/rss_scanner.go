package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsTranslatorBot/internal/domain"
	"NewsTranslatorBot/internal/scanner"
)

const defaultMinFeedBody = 400

// RSSScanner picks the newest item of an RSS/Atom feed.
type RSSScanner struct {
	pages  pageFetcher
	logger *slog.Logger
	now    func() time.Time
}

// NewRSSScanner wires an HTTP client shared by feed and page requests.
func NewRSSScanner(client *http.Client, logger *slog.Logger) *RSSScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &RSSScanner{pages: newPageFetcher(client), logger: logger, now: time.Now}
}

// Name identifies the strategy inside the registry.
func (s *RSSScanner) Name() string {
	return "rss"
}

// Latest parses the feed and returns its newest item. When the feed only carries a
// teaser, the article page is fetched and reduced with readability.
func (s *RSSScanner) Latest(ctx context.Context, req scanner.Request) (domain.Candidate, error) {
	if req.Category.URL == "" {
		return domain.Candidate{}, fmt.Errorf("%w: no feed url for site %s", domain.ErrFetch, req.SiteName)
	}

	raw, err := s.pages.fetch(ctx, req.Category.URL)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("feed %s: %w", req.Category.Name, err)
	}

	feed, err := gofeed.NewParser().ParseString(string(raw))
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("%w: parse feed %s: %w", domain.ErrFetch, req.Category.URL, err)
	}

	item := newestItem(feed.Items)
	if item == nil || item.Link == "" {
		return domain.Candidate{}, domain.ErrNoArticle
	}

	link, err := resolveURL(req.Category.URL, item.Link)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}

	body := cleanText(item.Content)
	if body == "" {
		body = cleanText(item.Description)
	}

	minBody := defaultMinFeedBody
	if v, err := strconv.Atoi(req.Option("minBodyChars", "")); err == nil {
		minBody = v
	}
	if len(body) < minBody {
		s.logger.Debug("feed item is a teaser, fetching page", "url", link)
		page, err := s.pages.fetch(ctx, link)
		if err != nil {
			return domain.Candidate{}, err
		}
		if text := readableText(page, link); text != "" {
			body = text
		}
	}
	if body == "" {
		return domain.Candidate{}, fmt.Errorf("%w: empty article body at %s", domain.ErrFetch, link)
	}

	published := s.now().UTC()
	if t := itemTime(item); t != nil {
		published = t.UTC()
	}

	return domain.Candidate{
		URL:         link,
		Category:    req.Category.Name,
		Title:       cleanText(item.Title),
		Body:        body,
		PublishedAt: published,
	}, nil
}

// newestItem keeps feed order for items without timestamps.
func newestItem(items []*gofeed.Item) *gofeed.Item {
	var newest *gofeed.Item
	for _, item := range items {
		if item == nil {
			continue
		}
		if newest == nil {
			newest = item
			continue
		}
		t, best := itemTime(item), itemTime(newest)
		if t != nil && (best == nil || t.After(*best)) {
			newest = item
		}
	}
	return newest
}

func itemTime(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	return item.UpdatedParsed
}
