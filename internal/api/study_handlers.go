package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleDueCards(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}
	cards, err := s.Cards.GetDueCards(r.Context(), chi.URLParam(r, "learnerID"), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cardsResponse{Cards: emptyIfNil(cards)})
}

func (s *Server) handleNewCards(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}
	cards, err := s.Cards.GetNewCards(r.Context(), chi.URLParam(r, "learnerID"), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cardsResponse{Cards: emptyIfNil(cards)})
}

// handleStudySet takes target, ratio and seed from the query; missing values
// fall back to the configured session size and ratio.
func (s *Server) handleStudySet(w http.ResponseWriter, r *http.Request) {
	target, err := queryInt(r, "target", s.StudySetSize)
	if err != nil {
		handleError(w, r, err)
		return
	}
	ratio, err := queryFloat(r, "ratio", s.ReviewRatio)
	if err != nil {
		handleError(w, r, err)
		return
	}
	seed, err := queryInt64(r, "seed", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}

	set, err := s.Cards.BuildStudySet(r.Context(), chi.URLParam(r, "learnerID"), target, ratio, seed)
	if err != nil {
		handleError(w, r, err)
		return
	}
	set.Reviews = emptyIfNil(set.Reviews)
	set.News = emptyIfNil(set.News)
	set.Combined = emptyIfNil(set.Combined)
	writeJSON(w, r, http.StatusOK, set)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Cards.GetStats(r.Context(), chi.URLParam(r, "learnerID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}
