package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Group(func(r chi.Router) {
		r.Use(s.profileMiddleware)

		r.Get("/profiles", s.handleProfiles)
		r.Post("/profiles", s.handleCreateProfile)
		r.Post("/profiles/{id}/select", s.handleSelectProfile)
		r.Post("/profiles/{id}/delete", s.handleDeleteProfile)
		r.With(requireProfile).Post("/profiles/settings", s.handleUpdateSettings)

		r.Route("/api", func(r chi.Router) {
			r.Use(requireProfile)

			r.Route("/create/sessions", func(r chi.Router) {
				r.Get("/", s.handleListSessions)
				r.Post("/", s.handleStartSession)
				r.Get("/{sid}", s.handleGetSession)
				r.Delete("/{sid}", s.handleDeleteSession)
				r.Post("/{sid}/*", s.handleSessionAction)
			})

			r.Post("/analyze", s.handleAnalyze)
			r.Post("/chunking/customize", s.handleCustomizeChunking)
			r.Post("/anchors", s.handleAnchors(false))
			r.Post("/anchors/customize", s.handleAnchors(true))
			r.Post("/scene", s.handleScene(false))
			r.Post("/scene/customize", s.handleScene(true))
			r.Post("/image", s.handleImage)
			r.Get("/audio", s.handleAudio)

			r.Group(func(r chi.Router) {
				if s.DataTimeout > 0 {
					r.Use(timeoutMiddleware(s.DataTimeout))
				}
				r.Get("/cards", s.handleListCards)
				r.Post("/cards", s.handleCreateCard)
				r.Get("/cards/{id}", s.handleGetCard)
				r.Get("/reviews/due", s.handleDueReviews)
				r.Post("/reviews/{id}/rate", s.handleRateReview)
				r.Get("/stats", s.handleStats)
			})
		})
	})

	return r
}
