package flashcard

import (
	"math"
	"time"

	"github.com/vytor/wordflash/internal/models"
)

// ComputeStats summarizes a learner's collection at now.
func ComputeStats(cards []models.Card, now time.Time) models.StatsSummary {
	stats := models.StatsSummary{Total: len(cards)}

	var retentionSum, easeSum float64
	var reviewed int
	for _, c := range cards {
		switch {
		case c.IsNew:
			stats.New++
		case c.IntervalDays < models.MatureIntervalDays:
			stats.Learning++
		}
		if c.IntervalDays >= models.MatureIntervalDays {
			stats.Mature++
		}
		if IsDue(c, now) {
			stats.DueToday++
		}
		if c.TotalReviews > 0 {
			retentionSum += float64(c.TotalCorrect) / float64(c.TotalReviews)
			reviewed++
		}
		if c.MaxStreak > stats.LongestStreak {
			stats.LongestStreak = c.MaxStreak
		}
		stats.TotalReviews += c.TotalReviews
		easeSum += c.EaseFactor
	}

	if reviewed > 0 {
		stats.AverageRetention = roundTo(retentionSum/float64(reviewed)*100, 2)
	}
	if len(cards) > 0 {
		stats.AverageEaseFactor = roundTo(easeSum/float64(len(cards)), 2)
	}
	return stats
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
