package question_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/quizdrill/internal/errors"
	"github.com/vytor/quizdrill/internal/models"
	"github.com/vytor/quizdrill/internal/question"
)

func writeBank(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const jsonBank = `[
  {
    "id": 1,
    "question": "Which ports are privileged?",
    "type": "theoretical",
    "options": {"c": "Above 1024", "a": "Below 1024", "b": "Exactly 1024"},
    "answer": ["a"],
    "explanation": "Ports under 1024 need root."
  },
  {
    "id": "net-2",
    "question": "Pick the transport protocols",
    "type": "practical",
    "options": {"a": "TCP", "b": "UDP", "c": "HTTP"},
    "answer": ["b", "a", "a"],
    "table": {"header": ["Proto", "Layer"], "rows": [["TCP", "4"], ["HTTP", "7"]]}
  }
]`

func TestLoad_JSON(t *testing.T) {
	path := writeBank(t, "bank.json", jsonBank)

	bank, err := question.Load(context.Background(), path, question.LoadOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, bank.Len())

	q1, ok := bank.Get("1")
	require.True(t, ok)
	assert.Equal(t, "theoretical", q1.Type)
	assert.Equal(t, []string{"c", "a", "b"}, q1.OptionKeys(), "options keep file order")
	assert.True(t, q1.Answer.Equal(models.NewKeySet("a")))
	assert.Equal(t, "Ports under 1024 need root.", q1.Explanation)
	assert.False(t, q1.IsMultiAnswer())

	q2, ok := bank.Get("net-2")
	require.True(t, ok)
	assert.True(t, q2.IsMultiAnswer())
	assert.Equal(t, 2, q2.Answer.Len(), "duplicate answer keys collapse")
	require.NotNil(t, q2.Table)
	assert.Equal(t, []string{"Proto", "Layer"}, q2.Table.Header)
	assert.Len(t, q2.Table.Rows, 2)
}

func TestLoad_YAML(t *testing.T) {
	path := writeBank(t, "bank.yaml", `
- id: 7
  question: Capital of France?
  type: theoretical
  options:
    b: Lyon
    a: Paris
  answer: [a]
`)

	bank, err := question.Load(context.Background(), path, question.LoadOptions{Strict: true})
	require.NoError(t, err)

	q, ok := bank.Get("7")
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, q.OptionKeys())
	assert.True(t, q.Answer.Has("a"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := question.Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"), question.LoadOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeLoad))
	assert.False(t, errors.Recoverable(err))
}

func TestLoad_Malformed(t *testing.T) {
	path := writeBank(t, "bank.json", `[{"id": 1, "question": "x",`)

	_, err := question.Load(context.Background(), path, question.LoadOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeLoad))
}

const mixedBank = `[
  {"id": 1, "question": "ok", "type": "t", "options": {"a": "x", "b": "y"}, "answer": ["a"]},
  {"id": 2, "question": "answer not an option", "type": "t", "options": {"a": "x"}, "answer": ["z"]},
  {"id": 3, "question": "no answer", "type": "t", "options": {"a": "x"}, "answer": []},
  {"id": 1, "question": "duplicate id", "type": "t", "options": {"a": "x"}, "answer": ["a"]}
]`

func TestLoad_LenientDropsInvalidRecords(t *testing.T) {
	path := writeBank(t, "bank.json", mixedBank)

	bank, err := question.Load(context.Background(), path, question.LoadOptions{Strict: false})
	require.NoError(t, err)
	assert.Equal(t, 1, bank.Len())
	q, ok := bank.Get("1")
	require.True(t, ok)
	assert.Equal(t, "ok", q.Text)
}

func TestLoad_StrictFailsWholeLoad(t *testing.T) {
	path := writeBank(t, "bank.json", mixedBank)

	_, err := question.Load(context.Background(), path, question.LoadOptions{Strict: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeLoad))

	var verr *question.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Issues, 3)
	assert.Contains(t, err.Error(), `unknown option "z"`)
	assert.Contains(t, err.Error(), "duplicate id")
}

func TestLoad_NoValidQuestions(t *testing.T) {
	path := writeBank(t, "bank.json", `[]`)

	_, err := question.Load(context.Background(), path, question.LoadOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeLoad))
}
