package testutil

import (
	"context"
	"database/sql"
	"strconv"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/quizdrill/internal/db"
	"github.com/vytor/quizdrill/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// A single connection keeps every query on the same in-memory database.
func NewTestDB(t *testing.T) *sql.DB {
	sqlDB, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background(), sqlDB), "failed to apply migrations")
	return sqlDB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// Question builds a question whose options are the given keys and whose
// answer is the listed correct keys.
func Question(id string, keys []string, correct ...string) models.Question {
	options := make([]models.Option, 0, len(keys))
	for _, k := range keys {
		options = append(options, models.Option{Key: k, Text: "option " + k})
	}
	return models.Question{
		ID:      models.QuestionID(id),
		Text:    "question " + id,
		Type:    "theoretical",
		Options: options,
		Answer:  models.NewKeySet(correct...),
	}
}

// Questions builds n single-answer questions with ids "1".."n", options a-d
// and answer "a".
func Questions(n int) []models.Question {
	out := make([]models.Question, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, Question(strconv.Itoa(i), []string{"a", "b", "c", "d"}, "a"))
	}
	return out
}
