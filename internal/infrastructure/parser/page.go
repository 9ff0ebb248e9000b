package parser

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"

	"NewsTranslatorBot/internal/domain"
)

const (
	userAgent    = "NewsTranslatorBot/1.0"
	maxPageBytes = 4 << 20
)

var strictPolicy = bluemonday.StrictPolicy()

// pageFetcher performs the GET requests shared by every scanner strategy.
type pageFetcher struct {
	client *http.Client
}

func newPageFetcher(client *http.Client) pageFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return pageFetcher{client: client}
}

func (f pageFetcher) fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", domain.ErrFetch, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request %s: %w", domain.ErrFetch, pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", domain.ErrFetch, pageURL, resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrFetch, pageURL, err)
	}
	return raw, nil
}

func (f pageFetcher) document(ctx context.Context, pageURL string) (*goquery.Document, []byte, error) {
	raw, err := f.fetch(ctx, pageURL)
	if err != nil {
		return nil, nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: parse %s: %w", domain.ErrFetch, pageURL, err)
	}
	return doc, raw, nil
}

// cleanText strips markup and collapses whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(strictPolicy.Sanitize(s))), " ")
}

// readableText extracts the main text of a page; empty when nothing useful is found.
func readableText(raw []byte, pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(bytes.NewReader(raw), parsed)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}

func resolveURL(base, href string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url %s: %w", base, err)
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("invalid link %s: %w", href, err)
	}
	resolved := b.ResolveReference(ref)
	resolved.Fragment = ""
	return resolved.String(), nil
}
