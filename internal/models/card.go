package models

import "time"

// ContentType identifies what kind of learnable item a card schedules.
type ContentType string

const (
	ContentTypeWord        ContentType = "word"
	ContentTypePhrase      ContentType = "phrase"
	ContentTypeCorePattern ContentType = "core-pattern"
)

// IsValid reports whether t is one of the known content types.
func (t ContentType) IsValid() bool {
	switch t {
	case ContentTypeWord, ContentTypePhrase, ContentTypeCorePattern:
		return true
	}
	return false
}

const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
	// MatureIntervalDays is the interval at which a card stops counting as "learning".
	MatureIntervalDays = 21
)

// Card is the scheduling record of one content item for one learner.
type Card struct {
	LearnerID             string      `json:"learner_id" db:"learner_id" yaml:"learner_id"`
	ContentID             string      `json:"content_id" db:"content_id" yaml:"content_id"`
	ContentType           ContentType `json:"content_type" db:"content_type" yaml:"content_type"`
	EaseFactor            float64     `json:"ease_factor" db:"ease_factor" yaml:"ease_factor"`
	IntervalDays          int         `json:"interval_days" db:"interval_days" yaml:"interval_days"`
	Repetitions           int         `json:"repetitions" db:"repetitions" yaml:"repetitions"`
	LastReviewedAt        *time.Time  `json:"last_reviewed_at" db:"last_reviewed_at" yaml:"last_reviewed_at"`
	NextReviewAt          time.Time   `json:"next_review_at" db:"next_review_at" yaml:"next_review_at"`
	TotalReviews          int         `json:"total_reviews" db:"total_reviews" yaml:"total_reviews"`
	TotalCorrect          int         `json:"total_correct" db:"total_correct" yaml:"total_correct"`
	AverageResponseTimeMs float64     `json:"average_response_time_ms" db:"average_response_time_ms" yaml:"average_response_time_ms"`
	Streak                int         `json:"streak" db:"streak" yaml:"streak"`
	MaxStreak             int         `json:"max_streak" db:"max_streak" yaml:"max_streak"`
	LastAccuracy          float64     `json:"last_accuracy" db:"last_accuracy" yaml:"last_accuracy"`
	LastSpeed             float64     `json:"last_speed" db:"last_speed" yaml:"last_speed"`
	IsNew                 bool        `json:"is_new" db:"is_new" yaml:"is_new"`
	Version               int64       `json:"version" db:"version" yaml:"-"`
	CreatedAt             time.Time   `json:"created_at" db:"created_at" yaml:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at" db:"updated_at" yaml:"updated_at"`
}

// NewCard returns a never-reviewed card that is due immediately.
func NewCard(learnerID, contentID string, contentType ContentType, now time.Time) Card {
	return Card{
		LearnerID:    learnerID,
		ContentID:    contentID,
		ContentType:  contentType,
		EaseFactor:   DefaultEaseFactor,
		NextReviewAt: now,
		IsNew:        true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// FailureRate is the share of reviews that did not qualify, 0 for unreviewed cards.
func (c Card) FailureRate() float64 {
	if c.TotalReviews == 0 {
		return 0
	}
	return 1 - float64(c.TotalCorrect)/float64(c.TotalReviews)
}

// ReviewResult is one observed review of a card. It is not persisted as-is.
type ReviewResult struct {
	Quality        int     `json:"quality"`
	ResponseTimeMs float64 `json:"response_time_ms"`
	Accuracy       float64 `json:"accuracy"`
	Speed          float64 `json:"speed"`
}

// ReviewLog is a persisted review event.
type ReviewLog struct {
	ID             int64     `json:"id" db:"id"`
	LearnerID      string    `json:"learner_id" db:"learner_id"`
	ContentID      string    `json:"content_id" db:"content_id"`
	Quality        int       `json:"quality" db:"quality"`
	ResponseTimeMs float64   `json:"response_time_ms" db:"response_time_ms"`
	Accuracy       float64   `json:"accuracy" db:"accuracy"`
	Speed          float64   `json:"speed" db:"speed"`
	ReviewedAt     time.Time `json:"reviewed_at" db:"reviewed_at"`
}
