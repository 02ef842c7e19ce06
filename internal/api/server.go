package api

import (
	"context"

	"github.com/vytor/wordflash/internal/flashcard"
	"github.com/vytor/wordflash/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	Cards services.CardService
	// DB is nil for the in-memory store; readiness then only reflects the process.
	DB           Pinger
	StudySetSize int
	ReviewRatio  float64
}

func NewServer(cards services.CardService, db Pinger, studySetSize int, reviewRatio float64) *Server {
	if studySetSize <= 0 {
		studySetSize = 20
	}
	if reviewRatio < 0 || reviewRatio > 1 {
		reviewRatio = flashcard.DefaultReviewRatio
	}
	return &Server{
		Cards:        cards,
		DB:           db,
		StudySetSize: studySetSize,
		ReviewRatio:  reviewRatio,
	}
}
