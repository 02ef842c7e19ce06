package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/wordflash/internal/models"
)

// MockCardRepository is a mock implementation of repository.CardRepository
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) Get(ctx context.Context, learnerID, contentID string) (*models.Card, error) {
	args := m.Called(ctx, learnerID, contentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardRepository) Create(ctx context.Context, card models.Card) (*models.Card, error) {
	args := m.Called(ctx, card)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardRepository) Save(ctx context.Context, card *models.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardRepository) Delete(ctx context.Context, learnerID, contentID string) (bool, error) {
	args := m.Called(ctx, learnerID, contentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCardRepository) ListAll(ctx context.Context, learnerID string) ([]models.Card, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockCardRepository) ListDue(ctx context.Context, learnerID string, now time.Time) ([]models.Card, error) {
	args := m.Called(ctx, learnerID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockCardRepository) ListNew(ctx context.Context, learnerID string, limit int) ([]models.Card, error) {
	args := m.Called(ctx, learnerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockCardRepository) ListLearners(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCardRepository) InsertReviewLog(ctx context.Context, entry models.ReviewLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockCardRepository) ReviewHistory(ctx context.Context, learnerID, contentID string, limit int) ([]models.ReviewLog, error) {
	args := m.Called(ctx, learnerID, contentID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewLog), args.Error(1)
}
