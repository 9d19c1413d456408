package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vytor/quizdrill/internal/config"
	"github.com/vytor/quizdrill/internal/db"
	"github.com/vytor/quizdrill/internal/logger"
	"github.com/vytor/quizdrill/internal/question"
	"github.com/vytor/quizdrill/internal/quiz"
	"github.com/vytor/quizdrill/internal/repository"
	"github.com/vytor/quizdrill/internal/repository/jsonfile"
	"github.com/vytor/quizdrill/internal/repository/sqlite"
	"github.com/vytor/quizdrill/internal/services"
)

// App holds everything a command needs once the bank is loaded.
type App struct {
	Config  config.Config
	Bank    *question.Bank
	Engine  *quiz.Engine
	Runs    services.RunService
	Stats   services.StatsService
	DB      *sql.DB
	NoColor bool
}

// Opener builds the App lazily so help and usage errors work without a bank.
type Opener func(ctx context.Context) (*App, error)

// OpenApp loads the question bank and wires the configured storage backend.
// A bank load failure is returned as a LOAD_ERROR.
func OpenApp(ctx context.Context, cfg config.Config) (*App, error) {
	log := logger.FromContext(ctx).WithPrefix("app")

	bank, err := question.Load(ctx, cfg.BankPath, question.LoadOptions{Strict: cfg.BankStrict})
	if err != nil {
		log.Error("failed to load question bank: %v", err)
		return nil, err
	}
	log.Info("loaded %d questions from %s", bank.Len(), cfg.BankPath)

	var (
		statsRepo   repository.StatsRepository
		sessionRepo repository.SessionRepository
		sqlDB       *sql.DB
	)
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		sqlDB = database.DB
		statsRepo = sqlite.NewStatsRepository(sqlDB)
		sessionRepo = sqlite.NewSessionRepository(sqlDB)
	default:
		statsRepo = jsonfile.NewStatsRepository(cfg.StatsPath)
		sessionRepo = jsonfile.NewSessionRepository(cfg.SessionPath)
	}
	log.Debug("storage backend: %s", cfg.StorageBackend)

	engine := quiz.NewEngine(ctx, statsRepo, sessionRepo, quiz.WithTickInterval(cfg.TickInterval))
	return &App{
		Config:  cfg,
		Bank:    bank,
		Engine:  engine,
		Runs:    services.NewRunService(bank, engine),
		Stats:   services.NewStatsService(engine, bank, cfg.WorstLimit),
		DB:      sqlDB,
		NoColor: !cfg.LogColors,
	}, nil
}

// Close stops the engine timer and releases the database.
func (a *App) Close() {
	a.Engine.Close()
	if a.DB != nil {
		_ = a.DB.Close()
	}
}
