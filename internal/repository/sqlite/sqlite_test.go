package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/quizdrill/internal/models"
	"github.com/vytor/quizdrill/internal/repository"
	"github.com/vytor/quizdrill/internal/repository/sqlite"
	"github.com/vytor/quizdrill/internal/testutil"
)

type StatsRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.StatsRepository
}

func (s *StatsRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewStatsRepository(s.db)
}

func (s *StatsRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *StatsRepositorySuite) TestLoadEmpty() {
	rec, err := s.repo.Load(context.Background())
	s.Require().NoError(err)
	s.Empty(rec.Questions)
	s.Nil(rec.LatestDuration)
}

func (s *StatsRepositorySuite) TestSaveAndLoad() {
	ctx := context.Background()
	rec := models.NewStatsRecord()
	rec.Questions["1"] = models.QuestionStat{Total: 2, Correct: 1, Wrong: 1}
	rec.Questions["q-2"] = models.QuestionStat{Total: 1, Correct: 1}
	d := 61
	rec.LatestDuration = &d

	s.Require().NoError(s.repo.Save(ctx, rec))

	got, err := s.repo.Load(ctx)
	s.Require().NoError(err)
	s.Equal(rec.Questions, got.Questions)
	s.Require().NotNil(got.LatestDuration)
	s.Equal(61, *got.LatestDuration)
}

func (s *StatsRepositorySuite) TestSaveReplacesPreviousRows() {
	ctx := context.Background()
	rec := models.NewStatsRecord()
	rec.Questions["1"] = models.QuestionStat{Total: 1, Wrong: 1}
	d := 5
	rec.LatestDuration = &d
	s.Require().NoError(s.repo.Save(ctx, rec))

	next := models.NewStatsRecord()
	next.Questions["2"] = models.QuestionStat{Total: 1, Correct: 1}
	s.Require().NoError(s.repo.Save(ctx, next))

	got, err := s.repo.Load(ctx)
	s.Require().NoError(err)
	s.Equal(next.Questions, got.Questions)
	s.Nil(got.LatestDuration)
}

func (s *StatsRepositorySuite) TestRejectsBrokenInvariant() {
	rec := models.NewStatsRecord()
	rec.Questions["1"] = models.QuestionStat{Total: 3, Correct: 1, Wrong: 1}

	s.Error(s.repo.Save(context.Background(), rec))
}

func TestStatsRepositorySuite(t *testing.T) {
	suite.Run(t, new(StatsRepositorySuite))
}

type SessionRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.SessionRepository
}

func (s *SessionRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewSessionRepository(s.db)
}

func (s *SessionRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *SessionRepositorySuite) TestLifecycle() {
	ctx := context.Background()

	state, err := s.repo.Load(ctx)
	s.Require().NoError(err)
	s.Nil(state)

	qs := testutil.Questions(2)
	run := &models.RunState{
		RunID:                "run-1",
		QuestionQueue:        qs,
		Cursor:               1,
		Round:                1,
		Mode:                 models.ModeFirstRun,
		SourceQuestions:      qs,
		PresentedOptionOrder: []string{"d", "c", "b", "a"},
	}
	s.Require().NoError(s.repo.Save(ctx, run))

	run.Cursor = 0
	s.Require().NoError(s.repo.Save(ctx, run), "save overwrites the single snapshot")

	exists, err := s.repo.Exists(ctx)
	s.Require().NoError(err)
	s.True(exists)

	got, err := s.repo.Load(ctx)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(0, got.Cursor)
	s.Equal("run-1", got.RunID)
	s.Equal(run.PresentedOptionOrder, got.PresentedOptionOrder)
	s.True(got.QuestionQueue[1].Answer.Equal(models.NewKeySet("a")))

	s.Require().NoError(s.repo.Clear(ctx))
	s.Require().NoError(s.repo.Clear(ctx))
	exists, err = s.repo.Exists(ctx)
	s.Require().NoError(err)
	s.False(exists)
}

func TestSessionRepositorySuite(t *testing.T) {
	suite.Run(t, new(SessionRepositorySuite))
}
