package services

import (
	"context"
	"fmt"

	"github.com/vytor/quizdrill/internal/errors"
	"github.com/vytor/quizdrill/internal/logger"
	"github.com/vytor/quizdrill/internal/models"
	"github.com/vytor/quizdrill/internal/question"
	"github.com/vytor/quizdrill/internal/quiz"
)

// RunRequest selects the questions for a new run.
type RunRequest struct {
	Type     string `json:"type"`
	Limit    int    `json:"limit"`
	ViewOnly bool   `json:"view_only"`
}

// RunService starts runs from bank selections
type RunService interface {
	Start(ctx context.Context, req RunRequest) (*models.RunState, error)
}

type runService struct {
	bank   *question.Bank
	engine *quiz.Engine
}

// NewRunService creates a new RunService
func NewRunService(bank *question.Bank, engine *quiz.Engine) RunService {
	return &runService{bank: bank, engine: engine}
}

func (s *runService) Start(ctx context.Context, req RunRequest) (*models.RunState, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting run: type=%s, limit=%d, view_only=%t", req.Type, req.Limit, req.ViewOnly)

	if req.Limit < 0 {
		return nil, errors.NewValidationError("limit", "must not be negative")
	}
	if req.Type != "" && req.Type != question.TypeAll {
		if _, ok := s.bank.CountByType()[req.Type]; !ok {
			return nil, errors.NewValidationError("type", fmt.Sprintf("unknown question type %q", req.Type))
		}
	}

	selected := s.bank.Select(req.Type, req.Limit, nil)
	state, err := s.engine.Start(ctx, selected, req.ViewOnly)
	if err != nil {
		log.Warn("failed to start run: %v", err)
		return nil, err
	}
	return state, nil
}
