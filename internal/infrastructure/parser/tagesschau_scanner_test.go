package parser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsTranslatorBot/internal/domain"
	"NewsTranslatorBot/internal/scanner"
)

const listingHTML = `
<html><body>
<nav><a href="/wirtschaft/nav-100.html">Nav</a></nav>
<main>
  <a href="/inland/titel-a-100.html">Titel A</a>
  <a href="/inland/titel-b-100.html">Titel B</a>
</main>
</body></html>`

const articleHTML = `
<html><body>
<article>
  <h1>Titel A</h1>
  <p>Stand: 08.11.2025 10:15 Uhr</p>
  <p>Die Regierung hat &amp; heute beschlossen.</p>
  <p>  Zweiter   Absatz.  </p>
</article>
</body></html>`

func newTagesschauServer(t *testing.T, listing, article string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/inland", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listing))
	})
	mux.HandleFunc("/inland/titel-a-100.html", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(article))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestParseStand(t *testing.T) {
	t.Parallel()

	got, ok := parseStand("foo Stand: 08.11.2025 10:15 Uhr bar")
	if !ok {
		t.Fatalf("expected Stand marker to parse")
	}
	if got.Format("2006-01-02") != "2025-11-08" {
		t.Fatalf("unexpected date: %v", got)
	}

	dateOnly, ok := parseStand("Stand: 01.02.2024")
	if !ok || dateOnly.Year() != 2024 {
		t.Fatalf("unexpected date-only parse: %v %v", dateOnly, ok)
	}

	if _, ok := parseStand("no marker here"); ok {
		t.Fatalf("expected missing marker to fail")
	}
}

func TestFirstLink(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingHTML))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	link, err := firstLink(doc, "https://www.tagesschau.de/inland", defaultLinkSelector)
	if err != nil {
		t.Fatalf("firstLink error: %v", err)
	}
	if link != "https://www.tagesschau.de/inland/titel-a-100.html" {
		t.Fatalf("unexpected link: %s", link)
	}

	empty, _ := goquery.NewDocumentFromReader(strings.NewReader("<main></main>"))
	if _, err := firstLink(empty, "https://www.tagesschau.de/inland", defaultLinkSelector); !errors.Is(err, domain.ErrNoArticle) {
		t.Fatalf("expected ErrNoArticle, got %v", err)
	}
}

func TestTagesschauScannerLatest(t *testing.T) {
	t.Parallel()

	server := newTagesschauServer(t, listingHTML, articleHTML)
	sc := NewTagesschauScanner(server.Client(), nil)

	candidate, err := sc.Latest(context.Background(), scanner.Request{
		SiteName: "tagesschau",
		Category: scanner.Category{Name: "Inland", URL: server.URL + "/inland"},
	})
	if err != nil {
		t.Fatalf("Latest error: %v", err)
	}

	if candidate.URL != server.URL+"/inland/titel-a-100.html" {
		t.Fatalf("unexpected url: %s", candidate.URL)
	}
	if candidate.Title != "Titel A" {
		t.Fatalf("unexpected title: %s", candidate.Title)
	}
	if candidate.Category != "Inland" {
		t.Fatalf("unexpected category: %s", candidate.Category)
	}
	wantBody := "Die Regierung hat & heute beschlossen.\n\nZweiter Absatz."
	if candidate.Body != wantBody {
		t.Fatalf("unexpected body: %q", candidate.Body)
	}
	if candidate.PublishedAt.Format("2006-01-02") != "2025-11-08" {
		t.Fatalf("unexpected published date: %v", candidate.PublishedAt)
	}
}

func TestTagesschauScannerLatestIsIdempotent(t *testing.T) {
	t.Parallel()

	server := newTagesschauServer(t, listingHTML, articleHTML)
	sc := NewTagesschauScanner(server.Client(), nil)
	req := scanner.Request{Category: scanner.Category{Name: "Inland", URL: server.URL + "/inland"}}

	first, err := sc.Latest(context.Background(), req)
	if err != nil {
		t.Fatalf("first Latest: %v", err)
	}
	second, err := sc.Latest(context.Background(), req)
	if err != nil {
		t.Fatalf("second Latest: %v", err)
	}
	if first.URL != second.URL || first.Body != second.Body {
		t.Fatalf("expected identical candidates, got %q and %q", first.URL, second.URL)
	}
}

func TestTagesschauScannerMissingDateFallsBackToNow(t *testing.T) {
	t.Parallel()

	article := `<html><body><article><h1>Ohne Datum</h1><p>Text.</p></article></body></html>`
	server := newTagesschauServer(t, listingHTML, article)
	sc := NewTagesschauScanner(server.Client(), nil)
	fixed := time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)
	sc.now = func() time.Time { return fixed }

	candidate, err := sc.Latest(context.Background(), scanner.Request{
		Category: scanner.Category{Name: "Inland", URL: server.URL + "/inland"},
	})
	if err != nil {
		t.Fatalf("Latest error: %v", err)
	}
	if !candidate.PublishedAt.Equal(fixed) {
		t.Fatalf("expected fallback to now, got %v", candidate.PublishedAt)
	}
}

func TestTagesschauScannerEmptyListing(t *testing.T) {
	t.Parallel()

	server := newTagesschauServer(t, "<main></main>", articleHTML)
	sc := NewTagesschauScanner(server.Client(), nil)

	_, err := sc.Latest(context.Background(), scanner.Request{
		Category: scanner.Category{Name: "Inland", URL: server.URL + "/inland"},
	})
	if !errors.Is(err, domain.ErrNoArticle) {
		t.Fatalf("expected ErrNoArticle, got %v", err)
	}
}

func TestTagesschauScannerHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	sc := NewTagesschauScanner(server.Client(), nil)
	_, err := sc.Latest(context.Background(), scanner.Request{
		Category: scanner.Category{Name: "Inland", URL: server.URL + "/inland"},
	})
	if !errors.Is(err, domain.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}
