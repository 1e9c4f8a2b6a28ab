package api

import "net/http"

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	summary, err := s.StatsService.GetSummary(r.Context(), profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}
