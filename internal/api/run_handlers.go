package api

import (
	"net/http"

	"github.com/vytor/quizdrill/internal/errors"
	"github.com/vytor/quizdrill/internal/logger"
	"github.com/vytor/quizdrill/internal/models"
	"github.com/vytor/quizdrill/internal/quiz"
	"github.com/vytor/quizdrill/internal/services"
)

type submitRequest struct {
	Selected []string `json:"selected"`
}

// currentView renders the engine state, presenting the current question
// unless the run is finished.
func (s *Server) currentView(r *http.Request) (runView, error) {
	state := s.Engine.State()
	if state == nil {
		return runView{}, errors.NewNotFoundError("run", "current")
	}
	if state.Finished {
		return newRunView(state, nil), nil
	}
	p, err := s.Engine.PresentCurrent(r.Context())
	if err != nil {
		return runView{}, err
	}
	return newRunView(s.Engine.State(), &p), nil
}

func (s *Server) respondCurrent(w http.ResponseWriter, r *http.Request, status int) {
	view, err := s.currentView(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, status, view)
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req services.RunRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if _, err := s.RunService.Start(r.Context(), req); err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("run started via api: type=%s, limit=%d, view_only=%t", req.Type, req.Limit, req.ViewOnly)
	s.respondCurrent(w, r, http.StatusCreated)
}

func (s *Server) handleResumeRun(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Engine.Resume(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	s.respondCurrent(w, r, http.StatusOK)
}

func (s *Server) handleCurrentRun(w http.ResponseWriter, r *http.Request) {
	s.respondCurrent(w, r, http.StatusOK)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	grade, err := s.Engine.Submit(r.Context(), req.Selected)
	if err != nil {
		handleError(w, r, err)
		return
	}
	view, err := s.currentView(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, struct {
		Grade models.Grade `json:"grade"`
		Run   runView      `json:"run"`
	}{grade, view})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	result, err := s.Engine.Advance(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	view, err := s.currentView(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, struct {
		Result quiz.AdvanceResult `json:"result"`
		Run    runView            `json:"run"`
	}{result, view})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Engine.Restart(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	s.respondCurrent(w, r, http.StatusOK)
}

func (s *Server) handleSuspend(w http.ResponseWriter, r *http.Request) {
	if s.Engine.State() == nil {
		handleError(w, r, errors.NewNotFoundError("run", "current"))
		return
	}
	s.Engine.Suspend(r.Context())
	writeJSON(w, r, http.StatusOK, map[string]any{"resumable": s.Engine.HasSnapshot(r.Context())})
}

func (s *Server) handleAbortRun(w http.ResponseWriter, r *http.Request) {
	s.Engine.Abort(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
