package snapshot_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/quizdrill/internal/models"
	"github.com/vytor/quizdrill/internal/snapshot"
)

func multiAnswer() models.Question {
	return models.Question{
		ID:   "5",
		Text: "Pick the even numbers",
		Type: "theoretical",
		Options: []models.Option{
			{Key: "c", Text: "4"},
			{Key: "a", Text: "1"},
			{Key: "b", Text: "2"},
		},
		Answer:      models.NewKeySet("c", "b"),
		Explanation: "2 and 4 divide by two",
		Table:       &models.Table{Header: []string{"n"}, Rows: [][]string{{"1"}}},
	}
}

func TestAnswerWire(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, snapshot.AnswerToWire(models.NewKeySet("c", "a", "b")))

	set := snapshot.AnswerFromWire([]string{"b", "a", "b"})
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Equal(models.NewKeySet("a", "b")))
}

func TestEncodeDecode_PreservesState(t *testing.T) {
	q := multiAnswer()
	state := &models.RunState{
		RunID:                "run-1",
		QuestionQueue:        []models.Question{q},
		Cursor:               0,
		Round:                2,
		Mode:                 models.ModeRepeatWrong,
		Score:                3,
		Missed:               []models.Question{q},
		SourceQuestions:      []models.Question{q},
		PresentedOptionOrder: []string{"b", "c", "a"},
		LastGrade:            &models.Grade{QuestionID: "5", Selected: []string{"b"}, Missing: []string{"c"}},
		ElapsedSeconds:       17,
		StartedAt:            time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	data, err := snapshot.Encode(state)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "\n  \"run_id\""), "snapshot is pretty printed")

	got, err := snapshot.Decode(data)
	require.NoError(t, err)

	assert.Equal(t, state.RunID, got.RunID)
	assert.Equal(t, state.Round, got.Round)
	assert.Equal(t, state.Mode, got.Mode)
	assert.Equal(t, state.Score, got.Score)
	assert.Equal(t, state.ElapsedSeconds, got.ElapsedSeconds)
	assert.Equal(t, state.PresentedOptionOrder, got.PresentedOptionOrder)
	assert.True(t, state.StartedAt.Equal(got.StartedAt))
	require.NotNil(t, got.LastGrade)
	assert.Equal(t, []string{"c"}, got.LastGrade.Missing)

	require.Len(t, got.QuestionQueue, 1)
	restored := got.QuestionQueue[0]
	assert.True(t, restored.Answer.Equal(q.Answer), "answer membership survives")
	assert.Equal(t, q.OptionKeys(), restored.OptionKeys(), "option order survives")
	assert.Equal(t, q.Table, restored.Table)
	assert.Equal(t, q.Explanation, restored.Explanation)
	require.Len(t, got.Missed, 1)
	require.Len(t, got.SourceQuestions, 1)
}

func TestDecode_CollapsesDuplicateAnswers(t *testing.T) {
	data := `{
  "version": 1,
  "run_id": "r",
  "question_queue": [
    {"id": "1", "question": "q", "type": "t",
     "options": [{"key": "a", "text": "x"}, {"key": "b", "text": "y"}],
     "answer": ["b", "a", "b"]}
  ],
  "cursor": 0,
  "round": 1,
  "mode": "first_run"
}`

	got, err := snapshot.Decode([]byte(data))
	require.NoError(t, err)
	require.Len(t, got.QuestionQueue, 1)
	assert.True(t, got.QuestionQueue[0].Answer.Equal(models.NewKeySet("a", "b")))
	assert.Nil(t, got.PresentedOptionOrder)
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":     "  ",
		"malformed": `{"version": 1,`,
		"version":   `{"version": 9, "mode": "first_run"}`,
		"mode":      `{"version": 1, "mode": "sideways"}`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := snapshot.Decode([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestEncode_Nil(t *testing.T) {
	_, err := snapshot.Encode(nil)
	assert.Error(t, err)
}
