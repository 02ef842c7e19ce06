package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
)

type createCardRequest struct {
	ContentID   string `json:"content_id" validate:"required"`
	ContentType string `json:"content_type" validate:"required,oneof=word phrase core-pattern"`
}

// reviewRequest leaves quality optional; without it the quality is
// estimated from accuracy and response time.
type reviewRequest struct {
	Quality                 *int    `json:"quality" validate:"omitempty,min=1,max=5"`
	ResponseTimeMs          float64 `json:"response_time_ms" validate:"gte=0"`
	Accuracy                float64 `json:"accuracy" validate:"gte=0,lte=1"`
	Speed                   float64 `json:"speed" validate:"gte=0"`
	ReferenceResponseTimeMs float64 `json:"reference_response_time_ms" validate:"gte=0"`
}

type estimateRequest struct {
	Accuracy                float64 `json:"accuracy" validate:"gte=0,lte=1"`
	ResponseTimeMs          float64 `json:"response_time_ms" validate:"gte=0"`
	ReferenceResponseTimeMs float64 `json:"reference_response_time_ms" validate:"gte=0"`
}

type cardsResponse struct {
	Cards []models.Card `json:"cards"`
}

func emptyIfNil(cards []models.Card) []models.Card {
	if cards == nil {
		return []models.Card{}
	}
	return cards
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.Cards.ListCards(r.Context(), chi.URLParam(r, "learnerID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cardsResponse{Cards: emptyIfNil(cards)})
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	card, err := s.Cards.GetOrCreateCard(r.Context(), chi.URLParam(r, "learnerID"), req.ContentID, models.ContentType(req.ContentType))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	card, err := s.Cards.GetCard(r.Context(), chi.URLParam(r, "learnerID"), chi.URLParam(r, "contentID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := s.Cards.DeleteCard(r.Context(), chi.URLParam(r, "learnerID"), chi.URLParam(r, "contentID")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReviewCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	result := models.ReviewResult{
		ResponseTimeMs: req.ResponseTimeMs,
		Accuracy:       req.Accuracy,
		Speed:          req.Speed,
	}
	if req.Quality != nil {
		result.Quality = *req.Quality
	} else {
		result.Quality = s.Cards.EstimateQuality(req.Accuracy, req.ResponseTimeMs, req.ReferenceResponseTimeMs)
		log.Debug("estimated quality %d", result.Quality)
	}

	card, err := s.Cards.ApplyReview(r.Context(), chi.URLParam(r, "learnerID"), chi.URLParam(r, "contentID"), result)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleReviewHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}
	entries, err := s.Cards.ReviewHistory(r.Context(), chi.URLParam(r, "learnerID"), chi.URLParam(r, "contentID"), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.ReviewLog{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"reviews": entries})
}

func (s *Server) handleResetCard(w http.ResponseWriter, r *http.Request) {
	card, err := s.Cards.ResetCard(r.Context(), chi.URLParam(r, "learnerID"), chi.URLParam(r, "contentID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleEstimateQuality(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	quality := s.Cards.EstimateQuality(req.Accuracy, req.ResponseTimeMs, req.ReferenceResponseTimeMs)
	writeJSON(w, r, http.StatusOK, map[string]int{"quality": quality})
}
