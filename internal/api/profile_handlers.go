package api

import (
	"net/http"
	"strings"

	"github.com/vytor/mnemoflash/internal/logger"
	"github.com/vytor/mnemoflash/internal/models"
)

type createProfileRequest struct {
	Username string `json:"username" validate:"required,max=64"`
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	log.Debug("listing profiles")

	profiles, err := s.ProfileService.ListProfiles(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	if profiles == nil {
		profiles = []models.Profile{}
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"profiles": profiles,
		"current":  profileFromContext(r.Context()),
	})
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req createProfileRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if err := validateRequest(req); err != nil {
		log.Warn("create profile rejected: %v", err)
		handleError(w, r, err)
		return
	}

	profile, err := s.ProfileService.CreateProfile(r.Context(), req.Username)
	if err != nil {
		handleError(w, r, err)
		return
	}

	setProfileCookie(w, profile.ID)
	writeJSON(w, r, http.StatusCreated, profile)
}

func (s *Server) handleSelectProfile(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	profile, err := s.ProfileService.GetProfile(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	setProfileCookie(w, profile.ID)
	writeJSON(w, r, http.StatusOK, profile)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.ProfileService.DeleteProfile(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}

	if current := profileFromContext(r.Context()); current != nil && current.ID == id {
		clearProfileCookie(w)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var req models.ProfileSettings
	if err := decodeJSON(w, r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validateRequest(req); err != nil {
		handleError(w, r, err)
		return
	}

	updated, err := s.ProfileService.UpdateSettings(r.Context(), profile.ID, req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, updated)
}
