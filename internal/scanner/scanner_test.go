package scanner

import (
	"context"
	"testing"

	"NewsTranslatorBot/internal/domain"
)

type stubScanner struct{ name string }

func (s stubScanner) Name() string { return s.name }

func (s stubScanner) Latest(context.Context, Request) (domain.Candidate, error) {
	return domain.Candidate{URL: "https://example.org/" + s.name}, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	var r Registry
	r.Register(stubScanner{name: "rss"})

	s, err := r.Resolve("rss")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if s.Name() != "rss" {
		t.Fatalf("got %q", s.Name())
	}
	if _, err := r.Resolve("tagesschau"); err == nil {
		t.Fatal("expected error for unregistered scanner")
	}
}

func TestRequestOption(t *testing.T) {
	t.Parallel()

	req := Request{Options: map[string]string{"limit": "5", "empty": ""}}
	if got := req.Option("limit", "1"); got != "5" {
		t.Fatalf("got %q", got)
	}
	if got := req.Option("empty", "x"); got != "x" {
		t.Fatalf("empty option should fall back, got %q", got)
	}
	if got := (Request{}).Option("missing", "y"); got != "y" {
		t.Fatalf("got %q", got)
	}
}
