package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/quizdrill/internal/api"
	"github.com/vytor/quizdrill/internal/logger"
	"github.com/vytor/quizdrill/internal/question"
	"github.com/vytor/quizdrill/internal/quiz"
	"github.com/vytor/quizdrill/internal/repository/jsonfile"
	"github.com/vytor/quizdrill/internal/services"
	"github.com/vytor/quizdrill/internal/testutil"
)

type APISuite struct {
	suite.Suite
	engine  *quiz.Engine
	handler http.Handler
}

func (s *APISuite) SetupTest() {
	logger.SetDefault(logger.Discard())
	ctx := logger.NewContext(context.Background(), logger.Discard())
	dir := s.T().TempDir()
	s.engine = quiz.NewEngine(ctx,
		jsonfile.NewStatsRepository(filepath.Join(dir, "stats.json")),
		jsonfile.NewSessionRepository(filepath.Join(dir, "session.json")),
		quiz.WithTickInterval(time.Hour),
	)
	bank := question.NewBank(testutil.Questions(2))
	server := &api.Server{
		Engine:       s.engine,
		Bank:         bank,
		RunService:   services.NewRunService(bank, s.engine),
		StatsService: services.NewStatsService(s.engine, bank, 10),
	}
	s.handler = server.Routes()
}

func (s *APISuite) TearDownTest() {
	s.engine.Close()
}

func (s *APISuite) do(method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func (s *APISuite) TestHealthAndBank() {
	rec, body := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(float64(2), body["questions"])

	rec, body = s.do(http.MethodGet, "/bank", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(float64(2), body["total"])
	s.Equal(false, body["resumable"])
}

func (s *APISuite) TestQuestionDetail() {
	rec, body := s.do(http.MethodGet, "/bank/questions/1", nil)
	s.Equal(http.StatusOK, rec.Code)
	q := body["question"].(map[string]any)
	s.Equal([]any{"a"}, q["answer"])

	rec, body = s.do(http.MethodGet, "/bank/questions/99", nil)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("NOT_FOUND", errorCode(body))
}

func (s *APISuite) TestFullRun() {
	rec, body := s.do(http.MethodPost, "/runs", map[string]any{"type": "all"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	s.Equal("presenting", body["phase"])
	current := body["current"].(map[string]any)
	s.Nil(current["question"].(map[string]any)["answer"], "answer hidden before submit")

	for i := 0; i < 2; i++ {
		rec, body = s.do(http.MethodPost, "/runs/current/submit", map[string]any{"selected": []string{"a"}})
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		s.Equal(true, body["grade"].(map[string]any)["correct"])

		rec, body = s.do(http.MethodPost, "/runs/current/advance", nil)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	}
	s.Equal("finished", body["result"].(map[string]any)["transition"])
	s.Equal("finished", body["run"].(map[string]any)["phase"])

	rec, body = s.do(http.MethodGet, "/stats", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(float64(2), body["correct"])

	rec, _ = s.do(http.MethodDelete, "/stats", nil)
	s.Equal(http.StatusNoContent, rec.Code)
	_, body = s.do(http.MethodGet, "/stats", nil)
	s.Equal(float64(0), body["total"])
}

func (s *APISuite) TestErrorMapping() {
	rec, body := s.do(http.MethodGet, "/runs/current", nil)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("NOT_FOUND", errorCode(body))

	rec, body = s.do(http.MethodPost, "/runs/resume", nil)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("RESUME_ERROR", errorCode(body))

	rec, body = s.do(http.MethodPost, "/runs", map[string]any{"type": "history"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_ERROR", errorCode(body))

	_, _ = s.do(http.MethodPost, "/runs", nil)
	rec, body = s.do(http.MethodPost, "/runs/current/advance", nil)
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal("INVALID_STATE", errorCode(body))

	rec, body = s.do(http.MethodGet, "/stats?worst=x", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_ERROR", errorCode(body))
}

func (s *APISuite) TestSuspendAndResume() {
	_, _ = s.do(http.MethodPost, "/runs", nil)
	_, before := s.do(http.MethodGet, "/runs/current", nil)

	rec, body := s.do(http.MethodPost, "/runs/current/suspend", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(true, body["resumable"])

	rec, after := s.do(http.MethodPost, "/runs/resume", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal(before["current"].(map[string]any)["options"], after["current"].(map[string]any)["options"])

	rec, _ = s.do(http.MethodDelete, "/runs/current", nil)
	s.Equal(http.StatusNoContent, rec.Code)
	_, body = s.do(http.MethodGet, "/bank", nil)
	s.Equal(false, body["resumable"])
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}
