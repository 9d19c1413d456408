package jsonfile_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/quizdrill/internal/models"
	"github.com/vytor/quizdrill/internal/repository"
	"github.com/vytor/quizdrill/internal/repository/jsonfile"
)

type StatsRepositorySuite struct {
	suite.Suite
	path string
	repo repository.StatsRepository
}

func (s *StatsRepositorySuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "stats.json")
	s.repo = jsonfile.NewStatsRepository(s.path)
}

func (s *StatsRepositorySuite) TestLoadMissingFileIsEmpty() {
	rec, err := s.repo.Load(context.Background())
	s.Require().NoError(err)
	s.Empty(rec.Questions)
	s.Nil(rec.LatestDuration)
}

func (s *StatsRepositorySuite) TestSaveAndLoad() {
	ctx := context.Background()
	rec := models.NewStatsRecord()
	rec.Questions["1"] = models.QuestionStat{Total: 3, Correct: 2, Wrong: 1}
	rec.Questions["abc"] = models.QuestionStat{Total: 1, Wrong: 1}
	d := 125
	rec.LatestDuration = &d

	s.Require().NoError(s.repo.Save(ctx, rec))

	got, err := s.repo.Load(ctx)
	s.Require().NoError(err)
	s.Equal(rec.Questions, got.Questions)
	s.Require().NotNil(got.LatestDuration)
	s.Equal(125, *got.LatestDuration)
}

func (s *StatsRepositorySuite) TestFileFormat() {
	rec := models.NewStatsRecord()
	rec.Questions["7"] = models.QuestionStat{Total: 2, Correct: 1, Wrong: 1}
	d := 30
	rec.LatestDuration = &d
	s.Require().NoError(s.repo.Save(context.Background(), rec))

	data, err := os.ReadFile(s.path)
	s.Require().NoError(err)
	s.Contains(string(data), "\n  \"7\": {")

	var raw map[string]any
	s.Require().NoError(json.Unmarshal(data, &raw))
	s.Equal(float64(30), raw[models.LatestDurationKey])
	s.Equal(map[string]any{"total": float64(2), "correct": float64(1), "wrong": float64(1)}, raw["7"])
}

func (s *StatsRepositorySuite) TestLoadMalformed() {
	s.Require().NoError(os.WriteFile(s.path, []byte("{not json"), 0o644))

	_, err := s.repo.Load(context.Background())
	s.Error(err)
}

func (s *StatsRepositorySuite) TestLoadRejectsBrokenCounters() {
	for name, content := range map[string]string{
		"mismatched total":  `{"1": {"total": 5, "correct": 1, "wrong": 1}}`,
		"negative counter":  `{"1": {"total": 0, "correct": 2, "wrong": -2}}`,
		"negative duration": `{"latest_duration": -4}`,
	} {
		s.Run(name, func() {
			s.Require().NoError(os.WriteFile(s.path, []byte(content), 0o644))
			_, err := s.repo.Load(context.Background())
			s.Error(err)
		})
	}
}

func (s *StatsRepositorySuite) TestSaveOverwrites() {
	ctx := context.Background()
	rec := models.NewStatsRecord()
	rec.Questions["1"] = models.QuestionStat{Total: 1, Correct: 1}
	s.Require().NoError(s.repo.Save(ctx, rec))
	s.Require().NoError(s.repo.Save(ctx, models.NewStatsRecord()))

	got, err := s.repo.Load(ctx)
	s.Require().NoError(err)
	s.Empty(got.Questions)

	entries, err := os.ReadDir(filepath.Dir(s.path))
	s.Require().NoError(err)
	s.Len(entries, 1, "no temp files left behind")
}

func TestStatsRepositorySuite(t *testing.T) {
	suite.Run(t, new(StatsRepositorySuite))
}

type SessionRepositorySuite struct {
	suite.Suite
	path string
	repo repository.SessionRepository
}

func (s *SessionRepositorySuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "last_session.json")
	s.repo = jsonfile.NewSessionRepository(s.path)
}

func (s *SessionRepositorySuite) state() *models.RunState {
	q := models.Question{
		ID:      "1",
		Text:    "q",
		Type:    "t",
		Options: []models.Option{{Key: "b", Text: "y"}, {Key: "a", Text: "x"}},
		Answer:  models.NewKeySet("a", "b"),
	}
	return &models.RunState{
		RunID:                "run",
		QuestionQueue:        []models.Question{q},
		Round:                1,
		Mode:                 models.ModeFirstRun,
		SourceQuestions:      []models.Question{q},
		PresentedOptionOrder: []string{"a", "b"},
	}
}

func (s *SessionRepositorySuite) TestLoadMissingIsNone() {
	state, err := s.repo.Load(context.Background())
	s.Require().NoError(err)
	s.Nil(state)

	exists, err := s.repo.Exists(context.Background())
	s.Require().NoError(err)
	s.False(exists)
}

func (s *SessionRepositorySuite) TestSaveLoadClear() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Save(ctx, s.state()))

	exists, err := s.repo.Exists(ctx)
	s.Require().NoError(err)
	s.True(exists)

	got, err := s.repo.Load(ctx)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal([]string{"a", "b"}, got.PresentedOptionOrder)
	s.True(got.QuestionQueue[0].Answer.Equal(models.NewKeySet("a", "b")))

	s.Require().NoError(s.repo.Clear(ctx))
	s.Require().NoError(s.repo.Clear(ctx), "clear is idempotent")

	exists, err = s.repo.Exists(ctx)
	s.Require().NoError(err)
	s.False(exists)
}

func (s *SessionRepositorySuite) TestLoadCorrupt() {
	s.Require().NoError(os.WriteFile(s.path, []byte(`{"version":`), 0o644))

	_, err := s.repo.Load(context.Background())
	s.Error(err)
}

func TestSessionRepositorySuite(t *testing.T) {
	suite.Run(t, new(SessionRepositorySuite))
}
