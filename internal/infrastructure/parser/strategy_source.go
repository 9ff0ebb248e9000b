package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"NewsTranslatorBot/internal/config"
	"NewsTranslatorBot/internal/domain"
	"NewsTranslatorBot/internal/ports"
	"NewsTranslatorBot/internal/scanner"
)

// StrategySource implements ArticleSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	logger   *slog.Logger
	pick     func(n int) int
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		logger:   log,
		pick:     rand.IntN,
	}
}

// FetchLatest asks each configured site in order for its newest article and returns
// the first one found. domain.ErrNoArticle means no site had anything.
func (s *StrategySource) FetchLatest(ctx context.Context) (domain.Candidate, error) {
	if s.registry == nil {
		return domain.Candidate{}, fmt.Errorf("scanner registry is not configured")
	}

	for _, site := range s.sites {
		if len(site.Categories) == 0 {
			s.debug("site has no categories", "site", site.Name)
			continue
		}

		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			return domain.Candidate{}, fmt.Errorf("site %s: %w", site.Name, err)
		}

		category := s.chooseCategory(site)
		s.debug("scan site", "site", site.Name, "scanner", site.Scanner, "category", category.Name)

		candidate, err := strategy.Latest(ctx, scanner.Request{
			SiteName: site.Name,
			BaseURL:  site.BaseURL,
			Category: scanner.Category{Name: category.Name, URL: category.URL},
			Options:  site.Options,
		})
		if errors.Is(err, domain.ErrNoArticle) {
			s.debug("no article in category", "site", site.Name, "category", category.Name)
			continue
		}
		if err != nil {
			return domain.Candidate{}, fmt.Errorf("scan site %s: %w", site.Name, err)
		}

		if candidate.Category == "" {
			candidate.Category = category.Name
		}
		return candidate, nil
	}

	return domain.Candidate{}, domain.ErrNoArticle
}

func (s *StrategySource) chooseCategory(site config.SiteConfig) config.CategoryConfig {
	if site.Selection != config.SelectionRandom || len(site.Categories) == 1 || s.pick == nil {
		return site.Categories[0]
	}
	return site.Categories[s.pick(len(site.Categories))]
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
