package flashcard

import (
	"sort"
	"time"

	"github.com/vytor/wordflash/internal/models"
)

// IsDue reports whether the card's review time has arrived. The boundary is inclusive.
func IsDue(card models.Card, now time.Time) bool {
	return !card.NextReviewAt.After(now)
}

// DueCards returns the cards with NextReviewAt <= now, in input order.
func DueCards(cards []models.Card, now time.Time) []models.Card {
	var due []models.Card
	for _, c := range cards {
		if IsDue(c, now) {
			due = append(due, c)
		}
	}
	return due
}

// NewCards returns never-reviewed cards, oldest first. limit <= 0 means no cap.
func NewCards(cards []models.Card, limit int) []models.Card {
	var fresh []models.Card
	for _, c := range cards {
		if c.IsNew {
			fresh = append(fresh, c)
		}
	}
	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].CreatedAt.Before(fresh[j].CreatedAt)
	})
	return capCards(fresh, limit)
}

// RankDue sorts cards in place by study priority, highest first:
// most overdue, then highest failure rate, then shortest interval.
func RankDue(cards []models.Card, now time.Time) {
	sort.SliceStable(cards, func(i, j int) bool {
		return higherPriority(cards[i], cards[j], now)
	})
}

func higherPriority(a, b models.Card, now time.Time) bool {
	if oa, ob := now.Sub(a.NextReviewAt), now.Sub(b.NextReviewAt); oa != ob {
		return oa > ob
	}
	if fa, fb := a.FailureRate(), b.FailureRate(); fa != fb {
		return fa > fb
	}
	if a.IntervalDays != b.IntervalDays {
		return a.IntervalDays < b.IntervalDays
	}
	return a.ContentID < b.ContentID
}

// PriorityScore is the composite form of the ranking, for display:
// overdueDays*10 + failureRate*5 + 2/(intervalDays+1).
func PriorityScore(card models.Card, now time.Time) float64 {
	overdueDays := now.Sub(card.NextReviewAt).Hours() / 24
	return overdueDays*10 + card.FailureRate()*5 + 2/float64(card.IntervalDays+1)
}

func capCards(cards []models.Card, limit int) []models.Card {
	if limit > 0 && len(cards) > limit {
		return cards[:limit]
	}
	return cards
}
