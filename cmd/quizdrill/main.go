package main

import (
	"context"
	"fmt"
	"os"

	"github.com/vytor/quizdrill/internal/cli"
	"github.com/vytor/quizdrill/internal/config"
	"github.com/vytor/quizdrill/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(cli.ExitError)
	}

	log := logger.New(
		logger.WithOutput(os.Stderr),
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(cfg.LogColors),
	)
	logger.SetDefault(log)

	log.Debug("===========================================")
	log.Debug("QuizDrill Starting")
	log.Debug("===========================================")
	log.Debug("bank_path=%s", cfg.BankPath)
	log.Debug("bank_strict=%t", cfg.BankStrict)
	log.Debug("storage_backend=%s", cfg.StorageBackend)
	log.Debug("stats_path=%s", cfg.StatsPath)
	log.Debug("session_path=%s", cfg.SessionPath)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("tick_interval=%s", cfg.TickInterval)
	log.Debug("worst_limit=%d", cfg.WorstLimit)

	ctx := logger.NewContext(context.Background(), log)
	open := func(ctx context.Context) (*cli.App, error) {
		return cli.OpenApp(ctx, cfg)
	}

	os.Exit(cli.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, open))
}
