package services

import (
	"context"

	"github.com/vytor/quizdrill/internal/errors"
	"github.com/vytor/quizdrill/internal/logger"
	"github.com/vytor/quizdrill/internal/models"
	"github.com/vytor/quizdrill/internal/question"
	"github.com/vytor/quizdrill/internal/stats"
)

// StatsSource is the single owner of the stats record.
type StatsSource interface {
	Stats() models.StatsRecord
	ResetStats(ctx context.Context) error
}

// QuestionDetail is a bank question with its attempt counters.
type QuestionDetail struct {
	Question models.Question
	Stat     models.QuestionStat
}

// StatsService handles stats reporting and question lookups
type StatsService interface {
	Report(ctx context.Context, worst int) (models.StatsSummary, error)
	Reset(ctx context.Context) error
	Question(ctx context.Context, id models.QuestionID) (*QuestionDetail, error)
}

type statsService struct {
	source     StatsSource
	bank       *question.Bank
	worstLimit int
}

// NewStatsService creates a new StatsService. worstLimit is used when a
// report asks for a non-positive worst count.
func NewStatsService(source StatsSource, bank *question.Bank, worstLimit int) StatsService {
	return &statsService{source: source, bank: bank, worstLimit: worstLimit}
}

func (s *statsService) Report(ctx context.Context, worst int) (models.StatsSummary, error) {
	log := logger.FromContext(ctx)
	if worst <= 0 {
		worst = s.worstLimit
	}
	log.Debug("building stats report: worst=%d", worst)

	lookup := func(id models.QuestionID) (string, bool) {
		q, ok := s.bank.Get(id)
		return q.Text, ok
	}
	return stats.Summarize(s.source.Stats(), lookup, worst), nil
}

func (s *statsService) Reset(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info("resetting stats")

	if err := s.source.ResetStats(ctx); err != nil {
		log.Error("failed to reset stats: %v", err)
		return err
	}
	return nil
}

func (s *statsService) Question(ctx context.Context, id models.QuestionID) (*QuestionDetail, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting question: id=%s", id)

	q, ok := s.bank.Get(id)
	if !ok {
		return nil, errors.NewNotFoundError("question", id)
	}
	return &QuestionDetail{
		Question: q,
		Stat:     s.source.Stats().Questions[id],
	}, nil
}
