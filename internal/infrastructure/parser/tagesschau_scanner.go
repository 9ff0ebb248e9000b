package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsTranslatorBot/internal/domain"
	"NewsTranslatorBot/internal/scanner"
)

const (
	defaultLinkSelector  = "main a[href*='-100.html']"
	defaultTitleSelector = "h1"
	defaultBodySelector  = "article p"
)

var standExpr = regexp.MustCompile(`Stand:\s*(\d{2}\.\d{2}\.\d{4})(?:\s+(\d{1,2}:\d{2}))?`)

// TagesschauScanner reads a category listing page and the newest article behind it.
type TagesschauScanner struct {
	pages  pageFetcher
	logger *slog.Logger
	now    func() time.Time
}

// NewTagesschauScanner wires an HTTP client; nil falls back to a 20s-timeout client.
func NewTagesschauScanner(client *http.Client, logger *slog.Logger) *TagesschauScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &TagesschauScanner{pages: newPageFetcher(client), logger: logger, now: time.Now}
}

// Name identifies the strategy inside the registry.
func (s *TagesschauScanner) Name() string {
	return "tagesschau"
}

// Latest loads the category listing, follows its first article link and extracts it.
func (s *TagesschauScanner) Latest(ctx context.Context, req scanner.Request) (domain.Candidate, error) {
	if req.Category.URL == "" {
		return domain.Candidate{}, fmt.Errorf("%w: no category url for site %s", domain.ErrFetch, req.SiteName)
	}

	listing, _, err := s.pages.document(ctx, req.Category.URL)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("category %s: %w", req.Category.Name, err)
	}

	articleURL, err := firstLink(listing, req.Category.URL, req.Option("linkSelector", defaultLinkSelector))
	if err != nil {
		return domain.Candidate{}, err
	}
	s.logger.Debug("latest article link", "category", req.Category.Name, "url", articleURL)

	doc, raw, err := s.pages.document(ctx, articleURL)
	if err != nil {
		return domain.Candidate{}, err
	}

	candidate, err := s.parseArticle(doc, req)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("%s: %w", articleURL, err)
	}
	candidate.URL = articleURL

	if candidate.Body == "" {
		s.logger.Warn("no article body found, falling back to readability", "url", articleURL)
		candidate.Body = readableText(raw, articleURL)
	}
	if candidate.Body == "" {
		return domain.Candidate{}, fmt.Errorf("%w: empty article body at %s", domain.ErrFetch, articleURL)
	}

	return candidate, nil
}

func firstLink(doc *goquery.Document, pageURL, selector string) (string, error) {
	href, ok := doc.Find(selector).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", domain.ErrNoArticle
	}
	link, err := resolveURL(pageURL, href)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}
	return link, nil
}

func (s *TagesschauScanner) parseArticle(doc *goquery.Document, req scanner.Request) (domain.Candidate, error) {
	title := cleanText(doc.Find(req.Option("titleSelector", defaultTitleSelector)).First().Text())
	if title == "" {
		return domain.Candidate{}, fmt.Errorf("%w: no <h1> title found", domain.ErrFetch)
	}

	var paragraphs []string
	doc.Find(req.Option("bodySelector", defaultBodySelector)).Each(func(_ int, p *goquery.Selection) {
		text := cleanText(p.Text())
		if text == "" || strings.HasPrefix(text, "Stand:") {
			return
		}
		paragraphs = append(paragraphs, text)
	})

	published, ok := parseStand(doc.Text())
	if !ok {
		published = s.now().UTC()
	}

	return domain.Candidate{
		Category:    req.Category.Name,
		Title:       title,
		Body:        strings.Join(paragraphs, "\n\n"),
		PublishedAt: published,
	}, nil
}

// parseStand reads the "Stand: 02.01.2006 15:04 Uhr" marker in Berlin time.
func parseStand(text string) (time.Time, bool) {
	m := standExpr.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}

	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		loc = time.UTC
	}

	layout, value := "02.01.2006", m[1]
	if m[2] != "" {
		layout, value = "02.01.2006 15:04", m[1]+" "+m[2]
	}
	t, err := time.ParseInLocation(layout, value, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
