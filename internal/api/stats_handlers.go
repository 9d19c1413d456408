package api

import (
	"net/http"
	"strconv"

	"github.com/vytor/quizdrill/internal/errors"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	worst := 0
	if raw := r.URL.Query().Get("worst"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			handleError(w, r, errors.NewValidationError("worst", "must be a non-negative integer"))
			return
		}
		worst = n
	}

	summary, err := s.StatsService.Report(r.Context(), worst)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

func (s *Server) handleResetStats(w http.ResponseWriter, r *http.Request) {
	if err := s.StatsService.Reset(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
