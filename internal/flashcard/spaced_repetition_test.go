package flashcard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/flashcard"
	"github.com/vytor/wordflash/internal/models"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func freshCard() models.Card {
	return models.NewCard("learner-1", "hello", models.ContentTypeWord, epoch)
}

func review(quality int) models.ReviewResult {
	return models.ReviewResult{Quality: quality, ResponseTimeMs: 1000, Accuracy: 1.0, Speed: 60}
}

func TestApplyReview_FirstPerfectReview(t *testing.T) {
	now := epoch.Add(time.Hour)

	updated, err := flashcard.ApplyReview(freshCard(), review(5), now)

	require.NoError(t, err)
	assert.Equal(t, 1, updated.IntervalDays)
	assert.Equal(t, 1, updated.Repetitions)
	assert.InDelta(t, 2.6, updated.EaseFactor, 1e-9)
	assert.False(t, updated.IsNew)
	assert.Equal(t, 1, updated.TotalReviews)
	assert.Equal(t, 1, updated.TotalCorrect)
	assert.Equal(t, 1, updated.Streak)
	assert.Equal(t, 1, updated.MaxStreak)
	assert.Equal(t, 1.0, updated.LastAccuracy)
	assert.Equal(t, 60.0, updated.LastSpeed)
	require.NotNil(t, updated.LastReviewedAt)
	assert.Equal(t, now, *updated.LastReviewedAt)
	assert.Equal(t, now, updated.UpdatedAt)
	assert.Equal(t, epoch, updated.CreatedAt)
}

func TestApplyReview_SecondQualifyingReview(t *testing.T) {
	first, err := flashcard.ApplyReview(freshCard(), review(5), epoch)
	require.NoError(t, err)

	second, err := flashcard.ApplyReview(first, review(4), epoch.Add(24*time.Hour))

	require.NoError(t, err)
	assert.Equal(t, 6, second.IntervalDays)
	assert.Equal(t, 2, second.Repetitions)
	assert.InDelta(t, 2.6, second.EaseFactor, 1e-9, "quality 4 leaves ease unchanged")
	assert.Equal(t, 2, second.Streak)
}

func TestApplyReview_DoesNotMutateInput(t *testing.T) {
	card := freshCard()

	_, err := flashcard.ApplyReview(card, review(5), epoch)

	require.NoError(t, err)
	assert.True(t, card.IsNew)
	assert.Equal(t, 0, card.TotalReviews)
	assert.Nil(t, card.LastReviewedAt)
}

func TestApplyReview_InvalidQuality(t *testing.T) {
	for _, q := range []int{-1, 0, 6, 100} {
		_, err := flashcard.ApplyReview(freshCard(), review(q), epoch)
		require.Error(t, err, "quality %d", q)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	}
}

func TestApplyReview_FailureResetsProgress(t *testing.T) {
	card := freshCard()
	card.IsNew = false
	card.Repetitions = 5
	card.IntervalDays = 40
	card.Streak = 5
	card.MaxStreak = 7
	card.TotalReviews = 5
	card.TotalCorrect = 5

	for q := flashcard.MinQuality; q < flashcard.PassQuality; q++ {
		updated, err := flashcard.ApplyReview(card, review(q), epoch)
		require.NoError(t, err)
		assert.Equal(t, 0, updated.Repetitions, "quality %d", q)
		assert.Equal(t, 1, updated.IntervalDays, "quality %d", q)
		assert.Equal(t, 0, updated.Streak, "quality %d", q)
		assert.Equal(t, 7, updated.MaxStreak, "max streak never decreases")
		assert.Equal(t, 5, updated.TotalCorrect, "quality %d", q)
		assert.Equal(t, 6, updated.TotalReviews, "quality %d", q)
	}
}

func TestApplyReview_EaseFactor(t *testing.T) {
	tests := []struct {
		name     string
		quality  int
		start    float64
		expected float64
	}{
		{name: "perfect rewards", quality: 5, start: 2.5, expected: 2.6},
		{name: "good unchanged", quality: 4, start: 2.5, expected: 2.5},
		{name: "pass penalized", quality: 3, start: 2.5, expected: 2.36},
		{name: "hard penalized more", quality: 2, start: 2.5, expected: 2.18},
		{name: "total failure", quality: 1, start: 2.5, expected: 1.96},
		{name: "clamped at minimum", quality: 1, start: 1.4, expected: models.MinEaseFactor},
		{name: "minimum stays minimum", quality: 3, start: models.MinEaseFactor, expected: models.MinEaseFactor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := freshCard()
			card.EaseFactor = tt.start

			updated, err := flashcard.ApplyReview(card, review(tt.quality), epoch)

			require.NoError(t, err)
			assert.InDelta(t, tt.expected, updated.EaseFactor, 1e-9)
		})
	}
}

func TestApplyReview_EaseFactorNeverBelowMinimum(t *testing.T) {
	for q := flashcard.MinQuality; q <= flashcard.MaxQuality; q++ {
		card := freshCard()
		for i := 0; i < 20; i++ {
			var err error
			card, err = flashcard.ApplyReview(card, review(q), epoch.Add(time.Duration(i)*time.Hour))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, card.EaseFactor, models.MinEaseFactor)
		}
	}
}

func TestApplyReview_IntervalGrowth(t *testing.T) {
	tests := []struct {
		name         string
		repetitions  int
		intervalDays int
		easeFactor   float64
		quality      int
		expected     int
	}{
		{name: "first success", repetitions: 0, intervalDays: 0, easeFactor: 2.5, quality: 3, expected: 1},
		{name: "second success", repetitions: 1, intervalDays: 1, easeFactor: 2.5, quality: 3, expected: 6},
		{name: "third success multiplies by ease", repetitions: 2, intervalDays: 6, easeFactor: 2.5, quality: 4, expected: 15},
		{name: "uses ease before adjustment", repetitions: 2, intervalDays: 10, easeFactor: 2.5, quality: 5, expected: 25},
		{name: "rounds to nearest day", repetitions: 3, intervalDays: 16, easeFactor: 1.3, quality: 3, expected: 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := freshCard()
			card.IsNew = tt.repetitions == 0
			card.Repetitions = tt.repetitions
			card.IntervalDays = tt.intervalDays
			card.EaseFactor = tt.easeFactor

			updated, err := flashcard.ApplyReview(card, review(tt.quality), epoch)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, updated.IntervalDays)
			assert.Equal(t, tt.repetitions+1, updated.Repetitions)
		})
	}
}

func TestApplyReview_NextReviewIsIntervalAfterReview(t *testing.T) {
	card := freshCard()
	qualities := []int{5, 4, 3, 1, 5, 5, 2, 4}
	now := epoch

	for _, q := range qualities {
		var err error
		now = now.Add(37 * time.Hour)
		card, err = flashcard.ApplyReview(card, review(q), now)
		require.NoError(t, err)

		require.NotNil(t, card.LastReviewedAt)
		gap := card.NextReviewAt.Sub(*card.LastReviewedAt)
		assert.Equal(t, time.Duration(card.IntervalDays)*24*time.Hour, gap)
	}
}

func TestApplyReview_RunningMeanResponseTime(t *testing.T) {
	times := []float64{1200, 800, 1500, 950, 3000, 410}
	card := freshCard()
	var sum float64

	for i, ms := range times {
		var err error
		card, err = flashcard.ApplyReview(card, models.ReviewResult{Quality: 4, ResponseTimeMs: ms, Accuracy: 0.9}, epoch.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		sum += ms
	}

	assert.InDelta(t, sum/float64(len(times)), card.AverageResponseTimeMs, 1e-6)
	assert.Equal(t, len(times), card.TotalReviews)
}

func TestApplyReview_RunningMeanCountsZeroTimes(t *testing.T) {
	card := freshCard()
	for i, ms := range []float64{0, 0, 300} {
		var err error
		card, err = flashcard.ApplyReview(card, models.ReviewResult{Quality: 4, ResponseTimeMs: ms}, epoch.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}

	assert.InDelta(t, 100.0, card.AverageResponseTimeMs, 1e-9)
}

func TestApplyReview_CorrectNeverExceedsTotal(t *testing.T) {
	card := freshCard()
	for i, q := range []int{5, 1, 3, 3, 2, 4, 5} {
		var err error
		card, err = flashcard.ApplyReview(card, review(q), epoch.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		assert.LessOrEqual(t, card.TotalCorrect, card.TotalReviews)
	}
	assert.Equal(t, 5, card.TotalCorrect)
	assert.Equal(t, 2, card.MaxStreak)
}

func TestReset(t *testing.T) {
	card := freshCard()
	card.Version = 4
	for i := 0; i < 3; i++ {
		var err error
		card, err = flashcard.ApplyReview(card, review(5), epoch.Add(time.Duration(i)*24*time.Hour))
		require.NoError(t, err)
	}
	now := epoch.Add(30 * 24 * time.Hour)

	reset := flashcard.Reset(card, now)

	assert.Equal(t, card.LearnerID, reset.LearnerID)
	assert.Equal(t, card.ContentID, reset.ContentID)
	assert.Equal(t, card.ContentType, reset.ContentType)
	assert.Equal(t, epoch, reset.CreatedAt)
	assert.Equal(t, now, reset.UpdatedAt)
	assert.Equal(t, epoch, reset.NextReviewAt)
	assert.Equal(t, models.DefaultEaseFactor, reset.EaseFactor)
	assert.True(t, reset.IsNew)
	assert.Nil(t, reset.LastReviewedAt)
	assert.Zero(t, reset.TotalReviews)
	assert.Zero(t, reset.TotalCorrect)
	assert.Zero(t, reset.Repetitions)
	assert.Zero(t, reset.IntervalDays)
	assert.Zero(t, reset.Streak)
	assert.Zero(t, reset.MaxStreak)
	assert.Zero(t, reset.AverageResponseTimeMs)
	assert.Equal(t, int64(4), reset.Version)
}
