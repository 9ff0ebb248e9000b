package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"NewsTranslatorBot/internal/domain"
)

// memoryStore is an in-process ArticleRepository + FeedbackRepository.
type memoryStore struct {
	mu       sync.Mutex
	articles []domain.Article
	feedback []domain.Feedback
	nextID   int64

	saveErr  error
	existErr error
}

func (s *memoryStore) ExistsByURL(_ context.Context, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existErr != nil {
		return false, s.existErr
	}
	for _, a := range s.articles {
		if a.URL == url {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) SaveArticle(_ context.Context, a domain.Article) (domain.Article, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return domain.Article{}, false, s.saveErr
	}
	for _, existing := range s.articles {
		if existing.URL == a.URL {
			return existing, false, nil
		}
	}
	s.nextID++
	a.ID = s.nextID
	s.articles = append(s.articles, a)
	return a, true, nil
}

func (s *memoryStore) MarkDelivered(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.articles {
		if s.articles[i].ID == id {
			s.articles[i].Delivered = true
			return nil
		}
	}
	return fmt.Errorf("%w: article %d", domain.ErrNotFound, id)
}

func (s *memoryStore) GetArticle(_ context.Context, id int64) (domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.articles {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Article{}, fmt.Errorf("%w: article %d", domain.ErrNotFound, id)
}

func (s *memoryStore) CountArticles(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.articles), nil
}

func (s *memoryStore) SaveFeedback(_ context.Context, fb domain.Feedback) (domain.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fb.ID = int64(len(s.feedback) + 1)
	s.feedback = append(s.feedback, fb)
	return fb, nil
}

func (s *memoryStore) ListHistory(_ context.Context, userID int64) ([]domain.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.HistoryEntry
	for _, fb := range s.feedback {
		if fb.UserID != userID {
			continue
		}
		for _, a := range s.articles {
			if a.ID == fb.ArticleID {
				out = append(out, domain.HistoryEntry{
					ArticleID: a.ID, Title: a.DisplayTitle(), Topic: a.Topic,
					Reaction: fb.Reaction, CreatedAt: fb.CreatedAt,
				})
			}
		}
	}
	return out, nil
}

func (s *memoryStore) ListCandidates(_ context.Context, userID int64, limit int) ([]domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	excluded := map[int64]bool{}
	for _, fb := range s.feedback {
		if fb.UserID == userID && fb.Reaction != domain.ReactionReadLater {
			excluded[fb.ArticleID] = true
		}
	}
	var out []domain.Article
	for _, a := range s.articles {
		if !excluded[a.ID] {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.articles)
}

type sentArticle struct {
	article  domain.Article
	controls domain.Controls
}

type sentText struct {
	chatID int64
	text   string
}

// recordingNotifier captures everything the use cases send.
type recordingNotifier struct {
	mu       sync.Mutex
	articles []sentArticle
	texts    []sentText
	recs     [][]domain.Article
	answered []string
	sendErr  error
}

func (n *recordingNotifier) SendArticle(_ context.Context, a domain.Article, c domain.Controls) (domain.Delivery, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.articles = append(n.articles, sentArticle{article: a, controls: c})
	if n.sendErr != nil {
		return domain.Delivery{}, n.sendErr
	}
	return domain.Delivery{ChatIDs: []string{"1"}, MessageIDs: []int64{int64(len(n.articles))}}, nil
}

func (n *recordingNotifier) SendRecommendations(_ context.Context, _ int64, articles []domain.Article) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.recs = append(n.recs, articles)
	return nil
}

func (n *recordingNotifier) SendText(_ context.Context, chatID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.texts = append(n.texts, sentText{chatID: chatID, text: text})
	return nil
}

func (n *recordingNotifier) AnswerCallback(_ context.Context, id, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.answered = append(n.answered, id)
	return nil
}
