package api

import (
	"database/sql"

	"github.com/vytor/quizdrill/internal/question"
	"github.com/vytor/quizdrill/internal/quiz"
	"github.com/vytor/quizdrill/internal/services"
)

// Server exposes one engine over a local JSON API.
type Server struct {
	Engine       *quiz.Engine
	Bank         *question.Bank
	RunService   services.RunService
	StatsService services.StatsService
	// DB is set when the sqlite backend is used; it backs the readiness probe.
	DB *sql.DB
}
