package models

// StudySet is one assembled session. Reviews and News keep their ranked
// order; Combined is the shuffled presentation order of both.
type StudySet struct {
	Reviews  []Card `json:"reviews"`
	News     []Card `json:"news"`
	Combined []Card `json:"combined"`
}

// Len returns the number of cards in the session.
func (s StudySet) Len() int {
	return len(s.Combined)
}

type StatsSummary struct {
	Total             int     `json:"total"`
	New               int     `json:"new"`
	Learning          int     `json:"learning"`
	Mature            int     `json:"mature"`
	DueToday          int     `json:"due_today"`
	AverageRetention  float64 `json:"average_retention"`
	TotalReviews      int     `json:"total_reviews"`
	AverageEaseFactor float64 `json:"average_ease_factor"`
	LongestStreak     int     `json:"longest_streak"`
}
