package ml

import (
	"context"
	"time"

	"NewsTranslatorBot/internal/domain"
	"NewsTranslatorBot/internal/ports"
)

const (
	interestedWeight    = 3.0
	readLaterWeight     = 1.0
	notInterestedWeight = -2.0
	recencyBonusDays    = 5
	freshnessBonusDays  = 3
)

// HeuristicScorer ranks articles by topic affinity without calling a model.
type HeuristicScorer struct {
	now func() time.Time
}

var _ ports.Scorer = (*HeuristicScorer)(nil)

// NewHeuristicScorer returns a scorer using wall-clock time for the decay terms.
func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{now: time.Now}
}

type topicPreference struct {
	weight    float64
	lastLiked time.Time
}

// Score sums the topic weight of the reader's reactions, a bonus for topics liked
// in the last few days and a freshness bonus for recent articles.
func (s *HeuristicScorer) Score(_ context.Context, article domain.Article, history []domain.HistoryEntry) (float64, error) {
	now := s.now()
	prefs := preferences(history)

	var score float64
	if pref, ok := prefs[article.Topic]; ok {
		score += pref.weight
		if !pref.lastLiked.IsZero() {
			score += bonus(recencyBonusDays, daysBetween(pref.lastLiked, now))
		}
	}
	if !article.PublishedAt.IsZero() {
		score += bonus(freshnessBonusDays, calendarDays(article.PublishedAt, now))
	}
	return score, nil
}

func preferences(history []domain.HistoryEntry) map[string]*topicPreference {
	prefs := make(map[string]*topicPreference)
	for _, h := range history {
		if h.Topic == "" {
			continue
		}
		pref := prefs[h.Topic]
		if pref == nil {
			pref = &topicPreference{}
			prefs[h.Topic] = pref
		}

		switch h.Reaction {
		case domain.ReactionInterested:
			pref.weight += interestedWeight
			if h.CreatedAt.After(pref.lastLiked) {
				pref.lastLiked = h.CreatedAt
			}
		case domain.ReactionReadLater:
			pref.weight += readLaterWeight
		case domain.ReactionNotInterested:
			pref.weight += notInterestedWeight
		}
	}
	return prefs
}

func bonus(maxDays, elapsed int) float64 {
	if elapsed >= maxDays {
		return 0
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return float64(maxDays - elapsed)
}

// daysBetween counts whole 24h periods.
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}

// calendarDays compares UTC dates, ignoring the time of day.
func calendarDays(from, to time.Time) int {
	f := from.UTC()
	t := to.UTC()
	fd := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.UTC)
	td := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(td.Sub(fd).Hours() / 24)
}
