package flashcard

import (
	"math"
	"time"

	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/models"
)

const (
	MinQuality = 1
	MaxQuality = 5
	// PassQuality is the lowest quality that counts as a qualifying review.
	PassQuality = 3

	day = 24 * time.Hour
)

// ValidateQuality returns a validation error unless quality is in 1..5.
func ValidateQuality(quality int) error {
	if quality < MinQuality || quality > MaxQuality {
		return errors.NewValidationError("quality", "must be between 1 and 5")
	}
	return nil
}

// ApplyReview updates card scheduling with the SM-2 algorithm.
// quality: 1=total failure, 3=threshold pass, 5=perfect.
// The input card is not modified.
func ApplyReview(card models.Card, result models.ReviewResult, now time.Time) (models.Card, error) {
	if err := ValidateQuality(result.Quality); err != nil {
		return card, err
	}

	card.TotalReviews++
	reviewedAt := now
	card.LastReviewedAt = &reviewedAt
	card.LastAccuracy = result.Accuracy
	card.LastSpeed = result.Speed
	card.IsNew = false
	card.UpdatedAt = now

	if card.TotalReviews == 1 {
		card.AverageResponseTimeMs = result.ResponseTimeMs
	} else {
		n := float64(card.TotalReviews)
		card.AverageResponseTimeMs = (card.AverageResponseTimeMs*(n-1) + result.ResponseTimeMs) / n
	}

	if result.Quality >= PassQuality {
		card.TotalCorrect++
		card.Streak++
		if card.Streak > card.MaxStreak {
			card.MaxStreak = card.Streak
		}

		switch card.Repetitions {
		case 0:
			card.IntervalDays = 1
		case 1:
			card.IntervalDays = 6
		default:
			card.IntervalDays = int(math.Round(float64(card.IntervalDays) * card.EaseFactor))
		}
		card.Repetitions++
	} else {
		card.Streak = 0
		card.Repetitions = 0
		card.IntervalDays = 1
	}

	card.EaseFactor = nextEaseFactor(card.EaseFactor, result.Quality)
	card.NextReviewAt = reviewedAt.Add(time.Duration(card.IntervalDays) * day)
	return card, nil
}

// nextEaseFactor applies the SM-2 ease delta: +0.10 at quality 5, 0 at 4,
// increasingly negative below. The result never drops under MinEaseFactor.
func nextEaseFactor(ef float64, quality int) float64 {
	q := float64(MaxQuality - quality)
	ef += 0.1 - q*(0.08+q*0.02)
	return math.Max(models.MinEaseFactor, ef)
}

// Reset returns card in its just-created state. Identity and creation time
// are kept; the version is carried so the caller can save it.
func Reset(card models.Card, now time.Time) models.Card {
	fresh := models.NewCard(card.LearnerID, card.ContentID, card.ContentType, card.CreatedAt)
	fresh.Version = card.Version
	fresh.UpdatedAt = now
	return fresh
}
