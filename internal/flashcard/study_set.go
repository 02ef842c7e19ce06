package flashcard

import (
	"math"
	"math/rand"
	"time"

	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/models"
)

const DefaultReviewRatio = 0.7

// ValidateStudySetParams checks the session size and review share.
func ValidateStudySetParams(targetCount int, reviewRatio float64) error {
	if targetCount < 1 {
		return errors.NewValidationError("target_count", "must be at least 1")
	}
	if math.IsNaN(reviewRatio) || reviewRatio < 0 || reviewRatio > 1 {
		return errors.NewValidationError("review_ratio", "must be between 0 and 1")
	}
	return nil
}

// BuildStudySet assembles a session of at most targetCount cards from a
// learner's collection. Up to floor(targetCount*reviewRatio) slots go to the
// highest-priority due reviews; the remainder is filled with the oldest new
// cards. New cards are never counted as reviews even though they are due.
// rng drives the presentation shuffle and must not be shared between goroutines.
func BuildStudySet(cards []models.Card, now time.Time, targetCount int, reviewRatio float64, rng *rand.Rand) (models.StudySet, error) {
	if err := ValidateStudySetParams(targetCount, reviewRatio); err != nil {
		return models.StudySet{}, err
	}

	var due []models.Card
	for _, c := range DueCards(cards, now) {
		if !c.IsNew {
			due = append(due, c)
		}
	}
	fresh := NewCards(cards, 0)

	reviewCount := min(int(math.Floor(float64(targetCount)*reviewRatio)), len(due))
	newCount := min(targetCount-reviewCount, len(fresh))

	RankDue(due, now)
	set := models.StudySet{
		Reviews: due[:reviewCount:reviewCount],
		News:    fresh[:newCount:newCount],
	}

	set.Combined = make([]models.Card, 0, reviewCount+newCount)
	set.Combined = append(set.Combined, set.Reviews...)
	set.Combined = append(set.Combined, set.News...)
	rng.Shuffle(len(set.Combined), func(i, j int) {
		set.Combined[i], set.Combined[j] = set.Combined[j], set.Combined[i]
	})
	return set, nil
}
