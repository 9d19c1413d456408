package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)
	r.Use(jsonHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Get("/bank", s.handleBank)
	r.Get("/bank/questions/{id}", s.handleQuestion)

	r.Route("/runs", func(r chi.Router) {
		r.Post("/", s.handleStartRun)
		r.Post("/resume", s.handleResumeRun)
		r.Get("/current", s.handleCurrentRun)
		r.Delete("/current", s.handleAbortRun)
		r.Post("/current/submit", s.handleSubmit)
		r.Post("/current/advance", s.handleAdvance)
		r.Post("/current/restart", s.handleRestart)
		r.Post("/current/suspend", s.handleSuspend)
	})

	r.Get("/stats", s.handleStats)
	r.Delete("/stats", s.handleResetStats)
	return r
}
