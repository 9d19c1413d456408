package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/quizdrill/internal/models"
)

func (s *Server) handleBank(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"total":     s.Bank.Len(),
		"types":     s.Bank.Types(),
		"by_type":   s.Bank.CountByType(),
		"resumable": s.Engine.HasSnapshot(r.Context()),
	})
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	id := models.QuestionID(chi.URLParam(r, "id"))
	detail, err := s.StatsService.Question(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, struct {
		Question questionView        `json:"question"`
		Stats    models.QuestionStat `json:"stats"`
	}{
		Question: newQuestionView(detail.Question, detail.Question.Options, true),
		Stats:    detail.Stat,
	})
}
