package services

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/avast/retry-go"
	apperrors "github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/flashcard"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/repository"
)

const (
	DefaultRetryAttempts = 3
	retryDelay           = 5 * time.Millisecond
)

// CardService exposes the scheduling engine over a learner's stored cards.
type CardService interface {
	GetOrCreateCard(ctx context.Context, learnerID, contentID string, contentType models.ContentType) (*models.Card, error)
	GetCard(ctx context.Context, learnerID, contentID string) (*models.Card, error)
	ApplyReview(ctx context.Context, learnerID, contentID string, result models.ReviewResult) (*models.Card, error)
	EstimateQuality(accuracy, responseTimeMs, referenceResponseTimeMs float64) int
	GetDueCards(ctx context.Context, learnerID string, limit int) ([]models.Card, error)
	GetNewCards(ctx context.Context, learnerID string, limit int) ([]models.Card, error)
	// BuildStudySet assembles a session. A zero seed picks one from the clock.
	BuildStudySet(ctx context.Context, learnerID string, targetCount int, reviewRatio float64, seed int64) (models.StudySet, error)
	GetStats(ctx context.Context, learnerID string) (models.StatsSummary, error)
	ResetCard(ctx context.Context, learnerID, contentID string) (*models.Card, error)
	DeleteCard(ctx context.Context, learnerID, contentID string) error
	ListCards(ctx context.Context, learnerID string) ([]models.Card, error)
	ListLearners(ctx context.Context) ([]string, error)
	ReviewHistory(ctx context.Context, learnerID, contentID string, limit int) ([]models.ReviewLog, error)
}

// Option configures a CardService.
type Option func(*cardService)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *cardService) {
		s.now = now
	}
}

// WithRetryAttempts sets how many times a write that lost a version race is
// re-read and reapplied before CONFLICT is returned.
func WithRetryAttempts(n uint) Option {
	return func(s *cardService) {
		if n > 0 {
			s.retryAttempts = n
		}
	}
}

type cardService struct {
	repo          repository.CardRepository
	now           func() time.Time
	retryAttempts uint
}

// NewCardService creates a new CardService
func NewCardService(repo repository.CardRepository, opts ...Option) CardService {
	s := &cardService{
		repo:          repo,
		now:           time.Now,
		retryAttempts: DefaultRetryAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *cardService) clock() time.Time {
	return s.now().UTC()
}

func (s *cardService) GetOrCreateCard(ctx context.Context, learnerID, contentID string, contentType models.ContentType) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_service")
	log.Debug("get or create card: learner=%s, content=%s, type=%s", learnerID, contentID, contentType)

	if err := validateKey(learnerID, contentID); err != nil {
		return nil, err
	}
	if !contentType.IsValid() {
		return nil, apperrors.NewValidationError("content_type", "must be one of word, phrase, core-pattern")
	}

	card, err := s.repo.Create(ctx, models.NewCard(learnerID, contentID, contentType, s.clock()))
	if err != nil {
		log.Error("failed to create card: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	return card, nil
}

func (s *cardService) GetCard(ctx context.Context, learnerID, contentID string) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_service")

	if err := validateKey(learnerID, contentID); err != nil {
		return nil, err
	}
	card, err := s.repo.Get(ctx, learnerID, contentID)
	if err != nil {
		log.Error("failed to get card: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	if card == nil {
		return nil, apperrors.NewNotFoundError("card", contentID)
	}
	return card, nil
}

func (s *cardService) ApplyReview(ctx context.Context, learnerID, contentID string, result models.ReviewResult) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_service")
	log.Debug("applying review: learner=%s, content=%s, quality=%d", learnerID, contentID, result.Quality)

	if err := validateKey(learnerID, contentID); err != nil {
		return nil, err
	}
	if err := flashcard.ValidateQuality(result.Quality); err != nil {
		return nil, err
	}

	var reviewedAt time.Time
	card, err := s.update(ctx, learnerID, contentID, func(card models.Card) (models.Card, error) {
		reviewedAt = s.clock()
		return flashcard.ApplyReview(card, result, reviewedAt)
	})
	if err != nil {
		return nil, s.mapWriteError(ctx, contentID, err)
	}
	log.Debug("applied review: interval=%d days, ease_factor=%.2f, next=%s",
		card.IntervalDays, card.EaseFactor, card.NextReviewAt.Format(time.RFC3339))

	// History is best effort; the card is already saved.
	entry := models.ReviewLog{
		LearnerID:      learnerID,
		ContentID:      contentID,
		Quality:        result.Quality,
		ResponseTimeMs: result.ResponseTimeMs,
		Accuracy:       result.Accuracy,
		Speed:          result.Speed,
		ReviewedAt:     reviewedAt,
	}
	if err := s.repo.InsertReviewLog(ctx, entry); err != nil {
		log.Warn("failed to store review history: %v", err)
	}
	return card, nil
}

func (s *cardService) EstimateQuality(accuracy, responseTimeMs, referenceResponseTimeMs float64) int {
	return flashcard.EstimateQuality(accuracy, responseTimeMs, referenceResponseTimeMs)
}

func (s *cardService) GetDueCards(ctx context.Context, learnerID string, limit int) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_service")

	if err := validateLearner(learnerID); err != nil {
		return nil, err
	}
	now := s.clock()
	cards, err := s.repo.ListDue(ctx, learnerID, now)
	if err != nil {
		log.Error("failed to list due cards: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	flashcard.RankDue(cards, now)
	if limit > 0 && len(cards) > limit {
		cards = cards[:limit]
	}
	log.Debug("due cards: learner=%s, count=%d", learnerID, len(cards))
	return cards, nil
}

func (s *cardService) GetNewCards(ctx context.Context, learnerID string, limit int) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_service")

	if err := validateLearner(learnerID); err != nil {
		return nil, err
	}
	cards, err := s.repo.ListNew(ctx, learnerID, limit)
	if err != nil {
		log.Error("failed to list new cards: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	return cards, nil
}

func (s *cardService) BuildStudySet(ctx context.Context, learnerID string, targetCount int, reviewRatio float64, seed int64) (models.StudySet, error) {
	log := logger.FromContext(ctx).WithPrefix("card_service")

	if err := validateLearner(learnerID); err != nil {
		return models.StudySet{}, err
	}
	if err := flashcard.ValidateStudySetParams(targetCount, reviewRatio); err != nil {
		return models.StudySet{}, err
	}

	cards, err := s.repo.ListAll(ctx, learnerID)
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return models.StudySet{}, apperrors.NewInternalError(err)
	}

	now := s.clock()
	if seed == 0 {
		seed = now.UnixNano()
	}
	set, err := flashcard.BuildStudySet(cards, now, targetCount, reviewRatio, rand.New(rand.NewSource(seed)))
	if err != nil {
		return models.StudySet{}, err
	}
	log.Debug("study set: learner=%s, reviews=%d, new=%d", learnerID, len(set.Reviews), len(set.News))
	return set, nil
}

func (s *cardService) GetStats(ctx context.Context, learnerID string) (models.StatsSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("card_service")

	if err := validateLearner(learnerID); err != nil {
		return models.StatsSummary{}, err
	}
	cards, err := s.repo.ListAll(ctx, learnerID)
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return models.StatsSummary{}, apperrors.NewInternalError(err)
	}
	return flashcard.ComputeStats(cards, s.clock()), nil
}

func (s *cardService) ResetCard(ctx context.Context, learnerID, contentID string) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_service")
	log.Debug("resetting card: learner=%s, content=%s", learnerID, contentID)

	if err := validateKey(learnerID, contentID); err != nil {
		return nil, err
	}
	card, err := s.update(ctx, learnerID, contentID, func(card models.Card) (models.Card, error) {
		return flashcard.Reset(card, s.clock()), nil
	})
	if err != nil {
		return nil, s.mapWriteError(ctx, contentID, err)
	}
	return card, nil
}

// DeleteCard removes the card and its history. Deleting a card that does
// not exist returns NOT_FOUND.
func (s *cardService) DeleteCard(ctx context.Context, learnerID, contentID string) error {
	log := logger.FromContext(ctx).WithPrefix("card_service")
	log.Debug("deleting card: learner=%s, content=%s", learnerID, contentID)

	if err := validateKey(learnerID, contentID); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, learnerID, contentID)
	if err != nil {
		log.Error("failed to delete card: %v", err)
		return apperrors.NewInternalError(err)
	}
	if !deleted {
		return apperrors.NewNotFoundError("card", contentID)
	}
	return nil
}

func (s *cardService) ListCards(ctx context.Context, learnerID string) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_service")

	if err := validateLearner(learnerID); err != nil {
		return nil, err
	}
	cards, err := s.repo.ListAll(ctx, learnerID)
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	return cards, nil
}

func (s *cardService) ListLearners(ctx context.Context) ([]string, error) {
	learners, err := s.repo.ListLearners(ctx)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("card_service").Error("failed to list learners: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	return learners, nil
}

func (s *cardService) ReviewHistory(ctx context.Context, learnerID, contentID string, limit int) ([]models.ReviewLog, error) {
	if _, err := s.GetCard(ctx, learnerID, contentID); err != nil {
		return nil, err
	}
	entries, err := s.repo.ReviewHistory(ctx, learnerID, contentID, limit)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("card_service").Error("failed to fetch review history: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	return entries, nil
}

// update runs a read-modify-write of one card, re-reading and reapplying
// mutate when the save loses a version race.
func (s *cardService) update(ctx context.Context, learnerID, contentID string, mutate func(models.Card) (models.Card, error)) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_service")

	var saved models.Card
	err := retry.Do(
		func() error {
			card, err := s.repo.Get(ctx, learnerID, contentID)
			if err != nil {
				return err
			}
			if card == nil {
				return repository.ErrCardNotFound
			}
			next, err := mutate(*card)
			if err != nil {
				return err
			}
			if err := s.repo.Save(ctx, &next); err != nil {
				return err
			}
			saved = next
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(s.retryAttempts),
		retry.Delay(retryDelay),
		retry.MaxJitter(retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, repository.ErrVersionConflict)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Debug("retrying card write after conflict: learner=%s, content=%s, attempt=%d", learnerID, contentID, n+1)
		}),
	)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *cardService) mapWriteError(ctx context.Context, contentID string, err error) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repository.ErrCardNotFound):
		return apperrors.NewNotFoundError("card", contentID)
	case errors.Is(err, repository.ErrVersionConflict):
		logger.FromContext(ctx).WithPrefix("card_service").Warn("giving up after %d conflicting writes: content=%s", s.retryAttempts, contentID)
		return apperrors.NewConflictError("card", contentID, err)
	default:
		logger.FromContext(ctx).WithPrefix("card_service").Error("failed to write card: %v", err)
		return apperrors.NewInternalError(err)
	}
}

func validateLearner(learnerID string) error {
	if strings.TrimSpace(learnerID) == "" {
		return apperrors.NewValidationError("learner_id", "cannot be empty")
	}
	return nil
}

func validateKey(learnerID, contentID string) error {
	if err := validateLearner(learnerID); err != nil {
		return err
	}
	if strings.TrimSpace(contentID) == "" {
		return apperrors.NewValidationError("content_id", "cannot be empty")
	}
	return nil
}
