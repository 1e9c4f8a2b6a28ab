package api

import (
	"net/http"
	"strings"

	"github.com/vytor/mnemoflash/internal/errors"
	"github.com/vytor/mnemoflash/internal/models"
)

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var req models.AnalyzeRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}
	if req.LearningLanguage == "" {
		req.LearningLanguage = profile.LearningLanguage
	}
	if req.NativeLanguage == "" {
		req.NativeLanguage = profile.NativeLanguage
	}
	if err := validateRequest(req); err != nil {
		handleError(w, r, err)
		return
	}

	res, err := s.GenerationService.Analyze(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleCustomizeChunking(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var req models.ChunkingRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}
	if req.LearningLanguage == "" {
		req.LearningLanguage = profile.LearningLanguage
	}
	if req.NativeLanguage == "" {
		req.NativeLanguage = profile.NativeLanguage
	}
	if err := validateRequest(req); err != nil {
		handleError(w, r, err)
		return
	}

	phonetics, err := s.GenerationService.CustomizeChunking(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"phonetics": phonetics})
}

// handleAnchors serves both anchor routes; the customize variant requires
// instructions.
func (s *Server) handleAnchors(customize bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := profileFromContext(r.Context())

		var req models.AnchorsRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			handleError(w, r, err)
			return
		}
		if req.NativeLanguage == "" {
			req.NativeLanguage = profile.NativeLanguage
		}
		if err := validateRequest(req); err != nil {
			handleError(w, r, err)
			return
		}
		if customize && strings.TrimSpace(req.CustomInstructions) == "" {
			handleError(w, r, errors.NewValidationError("customInstructions", "is required"))
			return
		}

		res, err := s.GenerationService.GenerateAnchors(r.Context(), req)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, res)
	}
}

func (s *Server) handleScene(customize bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile := profileFromContext(r.Context())

		var req models.SceneRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			handleError(w, r, err)
			return
		}
		if req.NativeLanguage == "" {
			req.NativeLanguage = profile.NativeLanguage
		}
		if err := validateRequest(req); err != nil {
			handleError(w, r, err)
			return
		}
		if customize && strings.TrimSpace(req.CustomInstructions) == "" {
			handleError(w, r, errors.NewValidationError("customInstructions", "is required"))
			return
		}

		res, err := s.GenerationService.BuildScene(r.Context(), req)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, res)
	}
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	var req models.ImageRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validateRequest(req); err != nil {
		handleError(w, r, err)
		return
	}

	res, err := s.GenerationService.GenerateImage(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	language := r.URL.Query().Get("language")
	if language == "" {
		language = profile.LearningLanguage
	}

	audio, err := s.AudioService.Pronunciation(r.Context(), r.URL.Query().Get("word"), language)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, audio)
}
