package api

import (
	"net/http"
	"strings"

	"github.com/vytor/mnemoflash/internal/logger"
	"github.com/vytor/mnemoflash/internal/models"
)

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	q := r.URL.Query()
	filter := models.CardFilter{
		ProfileID: profile.ID,
		Search:    strings.TrimSpace(q.Get("q")),
		POS:       q.Get("pos"),
		Limit:     intQuery(r, "limit", 0),
		Offset:    intQuery(r, "offset", 0),
	}
	logger.FromContext(r.Context()).WithFields(map[string]any{
		"search": filter.Search,
		"pos":    filter.POS,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	}).Debug("listing cards with filters")

	cards, total, err := s.CardService.ListCards(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if cards == nil {
		cards = []models.Card{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"cards": cards, "total": total})
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.CardService.GetCard(r.Context(), profile.ID, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var req models.NewCard
	if err := decodeJSON(w, r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validateRequest(req); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.CardService.CreateCard(r.Context(), profile.ID, req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, card)
}
