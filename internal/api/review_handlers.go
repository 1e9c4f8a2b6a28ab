package api

import (
	"net/http"

	"github.com/vytor/mnemoflash/internal/logger"
	"github.com/vytor/mnemoflash/internal/services"
)

type rateRequest struct {
	Rating string `json:"rating" validate:"required"`
}

func (s *Server) handleDueReviews(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	queue, err := s.ReviewService.DueReviews(r.Context(), profile.ID, intQuery(r, "limit", services.DefaultDueLimit))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, queue)
}

func (s *Server) handleRateReview(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req rateRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validateRequest(req); err != nil {
		handleError(w, r, err)
		return
	}

	rec, err := s.ReviewService.RateReview(r.Context(), profile.ID, id, req.Rating)
	if err != nil {
		handleError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("review %d rated %s", id, req.Rating)
	writeJSON(w, r, http.StatusOK, rec)
}
