package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/mnemoflash/internal/logger"
	"github.com/vytor/mnemoflash/internal/models"
)

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	sn, err := s.CreationService.StartSession(r.Context(), profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, sn)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	writeJSON(w, r, http.StatusOK, map[string]any{
		"sessions": s.CreationService.ListSessions(r.Context(), profile.ID),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	sn, err := s.CreationService.GetSession(r.Context(), profile.ID, chi.URLParam(r, "sid"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sn)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	if err := s.CreationService.DeleteSession(r.Context(), profile.ID, chi.URLParam(r, "sid")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSessionAction runs the action named by the rest of the path, for
// example POST /api/create/sessions/{sid}/anchors/select.
func (s *Server) handleSessionAction(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	sid, action := chi.URLParam(r, "sid"), chi.URLParam(r, "*")
	log := logger.FromContext(r.Context()).WithFields(map[string]any{"session_id": sid, "action": action})
	log.Debug("session action requested")

	var in models.SessionInput
	if err := decodeJSON(w, r, &in, true); err != nil {
		handleError(w, r, err)
		return
	}

	sn, err := s.CreationService.Apply(r.Context(), profile.ID, sid, action, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sn)
}
