package parser

import (
	"context"
	"errors"
	"testing"

	"NewsTranslatorBot/internal/config"
	"NewsTranslatorBot/internal/domain"
	"NewsTranslatorBot/internal/scanner"
)

type stubScanner struct {
	name     string
	results  map[string]domain.Candidate
	requests []scanner.Request
}

func (s *stubScanner) Name() string { return s.name }

func (s *stubScanner) Latest(_ context.Context, req scanner.Request) (domain.Candidate, error) {
	s.requests = append(s.requests, req)
	c, ok := s.results[req.Category.URL]
	if !ok {
		return domain.Candidate{}, domain.ErrNoArticle
	}
	return c, nil
}

func TestStrategySourceFallsThroughEmptySites(t *testing.T) {
	t.Parallel()

	stub := &stubScanner{
		name: "stub",
		results: map[string]domain.Candidate{
			"https://b.example/news": {URL: "https://b.example/news/1", Title: "B"},
		},
	}
	reg := scanner.NewRegistry()
	reg.Register(stub)

	src := NewStrategySource(reg, []config.SiteConfig{
		{Name: "a", Scanner: "stub", Categories: []config.CategoryConfig{{Name: "A", URL: "https://a.example/news"}}},
		{Name: "b", Scanner: "stub", Categories: []config.CategoryConfig{{Name: "B", URL: "https://b.example/news"}}},
	}, nil)

	got, err := src.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("FetchLatest error: %v", err)
	}
	if got.URL != "https://b.example/news/1" {
		t.Fatalf("unexpected candidate: %+v", got)
	}
	if got.Category != "B" {
		t.Fatalf("expected category to be filled from config, got %q", got.Category)
	}
	if len(stub.requests) != 2 {
		t.Fatalf("expected 2 scans, got %d", len(stub.requests))
	}
}

func TestStrategySourceNothingFound(t *testing.T) {
	t.Parallel()

	reg := scanner.NewRegistry()
	reg.Register(&stubScanner{name: "stub"})
	src := NewStrategySource(reg, []config.SiteConfig{
		{Name: "a", Scanner: "stub", Categories: []config.CategoryConfig{{Name: "A", URL: "https://a.example"}}},
	}, nil)

	if _, err := src.FetchLatest(context.Background()); !errors.Is(err, domain.ErrNoArticle) {
		t.Fatalf("expected ErrNoArticle, got %v", err)
	}
}

func TestStrategySourceRandomCategory(t *testing.T) {
	t.Parallel()

	stub := &stubScanner{
		name: "stub",
		results: map[string]domain.Candidate{
			"https://x.example/wissen": {URL: "https://x.example/wissen/1"},
		},
	}
	reg := scanner.NewRegistry()
	reg.Register(stub)

	src := NewStrategySource(reg, []config.SiteConfig{{
		Name:      "x",
		Scanner:   "stub",
		Selection: config.SelectionRandom,
		Categories: []config.CategoryConfig{
			{Name: "Inland", URL: "https://x.example/inland"},
			{Name: "Wissen", URL: "https://x.example/wissen"},
		},
	}}, nil)
	src.pick = func(n int) int { return n - 1 }

	got, err := src.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("FetchLatest error: %v", err)
	}
	if got.Category != "Wissen" {
		t.Fatalf("expected picked category Wissen, got %q", got.Category)
	}
}

func TestStrategySourceDefaultSelectionIsStable(t *testing.T) {
	t.Parallel()

	stub := &stubScanner{
		name: "stub",
		results: map[string]domain.Candidate{
			"https://x.example/inland": {URL: "https://x.example/inland/1"},
			"https://x.example/wissen": {URL: "https://x.example/wissen/1"},
		},
	}
	reg := scanner.NewRegistry()
	reg.Register(stub)

	src := NewStrategySource(reg, []config.SiteConfig{{
		Name:    "x",
		Scanner: "stub",
		Categories: []config.CategoryConfig{
			{Name: "Inland", URL: "https://x.example/inland"},
			{Name: "Wissen", URL: "https://x.example/wissen"},
		},
	}}, nil)
	src.pick = func(n int) int { return n - 1 }

	for i := 0; i < 3; i++ {
		got, err := src.FetchLatest(context.Background())
		if err != nil {
			t.Fatalf("FetchLatest error: %v", err)
		}
		if got.URL != "https://x.example/inland/1" {
			t.Fatalf("call %d: expected the first category's article, got %q", i, got.URL)
		}
	}
}

func TestStrategySourceUnknownScanner(t *testing.T) {
	t.Parallel()

	src := NewStrategySource(scanner.NewRegistry(), []config.SiteConfig{
		{Name: "a", Scanner: "missing", Categories: []config.CategoryConfig{{Name: "A", URL: "https://a.example"}}},
	}, nil)

	_, err := src.FetchLatest(context.Background())
	if err == nil || errors.Is(err, domain.ErrNoArticle) {
		t.Fatalf("expected resolve error, got %v", err)
	}
}
