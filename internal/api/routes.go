package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const requestTimeout = 30 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(timeoutMiddleware(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Post("/quality/estimate", s.handleEstimateQuality)

		r.Route("/learners/{learnerID}", func(r chi.Router) {
			r.Get("/cards", s.handleListCards)
			r.Post("/cards", s.handleCreateCard)
			r.Get("/cards/{contentID}", s.handleGetCard)
			r.Delete("/cards/{contentID}", s.handleDeleteCard)
			r.Post("/cards/{contentID}/reviews", s.handleReviewCard)
			r.Get("/cards/{contentID}/reviews", s.handleReviewHistory)
			r.Post("/cards/{contentID}/reset", s.handleResetCard)

			r.Get("/due", s.handleDueCards)
			r.Get("/new", s.handleNewCards)
			r.Get("/study-set", s.handleStudySet)
			r.Get("/stats", s.handleStats)
		})
	})
	return r
}
