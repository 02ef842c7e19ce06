package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/wordflash/internal/models"
)

var (
	// ErrVersionConflict is returned by Save when the stored card changed
	// since it was read.
	ErrVersionConflict = errors.New("card version conflict")
	// ErrCardNotFound is returned by Save when the card no longer exists.
	ErrCardNotFound = errors.New("card not found")
)

// CardRepository handles card data access. Get returns (nil, nil) when the
// card does not exist.
type CardRepository interface {
	Get(ctx context.Context, learnerID, contentID string) (*models.Card, error)
	// Create inserts card unless one already exists for the same learner and
	// content, and returns the stored card either way.
	Create(ctx context.Context, card models.Card) (*models.Card, error)
	// Save writes card if its Version still matches the stored one, then
	// increments card.Version.
	Save(ctx context.Context, card *models.Card) error
	// Delete reports whether a card was removed.
	Delete(ctx context.Context, learnerID, contentID string) (bool, error)
	ListAll(ctx context.Context, learnerID string) ([]models.Card, error)
	ListDue(ctx context.Context, learnerID string, now time.Time) ([]models.Card, error)
	// ListNew returns never-reviewed cards oldest first; limit <= 0 means all.
	ListNew(ctx context.Context, learnerID string, limit int) ([]models.Card, error)
	ListLearners(ctx context.Context) ([]string, error)
	InsertReviewLog(ctx context.Context, entry models.ReviewLog) error
	ReviewHistory(ctx context.Context, learnerID, contentID string, limit int) ([]models.ReviewLog, error)
}
