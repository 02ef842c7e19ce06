// Package memory keeps cards in process memory. It is used by the memory
// DB_DRIVER and by tests that do not need SQL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vytor/wordflash/internal/flashcard"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

type cardKey struct {
	learnerID string
	contentID string
}

type cardRepository struct {
	mu      sync.RWMutex
	cards   map[cardKey]models.Card
	history map[cardKey][]models.ReviewLog
	nextID  int64
}

// NewCardRepository creates an empty in-memory CardRepository.
func NewCardRepository() repository.CardRepository {
	return &cardRepository{
		cards:   make(map[cardKey]models.Card),
		history: make(map[cardKey][]models.ReviewLog),
	}
}

func (r *cardRepository) Get(ctx context.Context, learnerID, contentID string) (*models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	card, ok := r.cards[cardKey{learnerID, contentID}]
	if !ok {
		return nil, nil
	}
	return &card, nil
}

func (r *cardRepository) Create(ctx context.Context, card models.Card) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("memory_repo")
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cardKey{card.LearnerID, card.ContentID}
	if existing, ok := r.cards[key]; ok {
		return &existing, nil
	}
	if card.Version == 0 {
		card.Version = 1
	}
	r.cards[key] = card
	log.Debug("card created: learner=%s, content=%s", card.LearnerID, card.ContentID)
	return &card, nil
}

func (r *cardRepository) Save(ctx context.Context, card *models.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cardKey{card.LearnerID, card.ContentID}
	stored, ok := r.cards[key]
	if !ok {
		return repository.ErrCardNotFound
	}
	if stored.Version != card.Version {
		return repository.ErrVersionConflict
	}
	card.Version++
	// content type and creation time are immutable
	card.ContentType = stored.ContentType
	card.CreatedAt = stored.CreatedAt
	r.cards[key] = *card
	return nil
}

func (r *cardRepository) Delete(ctx context.Context, learnerID, contentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cardKey{learnerID, contentID}
	if _, ok := r.cards[key]; !ok {
		return false, nil
	}
	delete(r.cards, key)
	delete(r.history, key)
	return true, nil
}

func (r *cardRepository) ListAll(ctx context.Context, learnerID string) ([]models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var cards []models.Card
	for key, card := range r.cards {
		if key.learnerID == learnerID {
			cards = append(cards, card)
		}
	}
	sort.Slice(cards, func(i, j int) bool {
		if !cards[i].CreatedAt.Equal(cards[j].CreatedAt) {
			return cards[i].CreatedAt.Before(cards[j].CreatedAt)
		}
		return cards[i].ContentID < cards[j].ContentID
	})
	return cards, nil
}

func (r *cardRepository) ListDue(ctx context.Context, learnerID string, now time.Time) ([]models.Card, error) {
	cards, err := r.ListAll(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	return flashcard.DueCards(cards, now), nil
}

func (r *cardRepository) ListNew(ctx context.Context, learnerID string, limit int) ([]models.Card, error) {
	cards, err := r.ListAll(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	return flashcard.NewCards(cards, limit), nil
}

func (r *cardRepository) ListLearners(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var learners []string
	for key := range r.cards {
		if _, ok := seen[key.learnerID]; ok {
			continue
		}
		seen[key.learnerID] = struct{}{}
		learners = append(learners, key.learnerID)
	}
	sort.Strings(learners)
	return learners, nil
}

func (r *cardRepository) InsertReviewLog(ctx context.Context, entry models.ReviewLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cardKey{entry.LearnerID, entry.ContentID}
	if _, ok := r.cards[key]; !ok {
		return repository.ErrCardNotFound
	}
	r.nextID++
	entry.ID = r.nextID
	r.history[key] = append(r.history[key], entry)
	return nil
}

func (r *cardRepository) ReviewHistory(ctx context.Context, learnerID, contentID string, limit int) ([]models.ReviewLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]models.ReviewLog(nil), r.history[cardKey{learnerID, contentID}]...)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReviewedAt.Equal(out[j].ReviewedAt) {
			return out[i].ReviewedAt.After(out[j].ReviewedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
