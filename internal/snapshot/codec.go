// Package snapshot converts a RunState to and from its on-disk form.
//
// Answer sets travel as sorted key lists and are rebuilt as sets on decode,
// collapsing duplicates. Options travel as an ordered list so the bank order
// survives a round trip.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vytor/quizdrill/internal/models"
)

// Version is written into every snapshot.
const Version = 1

type wireQuestion struct {
	ID          string          `json:"id"`
	Question    string          `json:"question"`
	Type        string          `json:"type"`
	Options     []models.Option `json:"options"`
	Answer      []string        `json:"answer"`
	Explanation string          `json:"explanation,omitempty"`
	Table       *models.Table   `json:"table,omitempty"`
}

type wireState struct {
	Version              int            `json:"version"`
	RunID                string         `json:"run_id"`
	ViewOnly             bool           `json:"view_only"`
	QuestionQueue        []wireQuestion `json:"question_queue"`
	Cursor               int            `json:"cursor"`
	Round                int            `json:"round"`
	Mode                 models.Mode    `json:"mode"`
	Score                int            `json:"score"`
	Missed               []wireQuestion `json:"missed"`
	SourceQuestions      []wireQuestion `json:"source_questions"`
	PresentedOptionOrder []string       `json:"presented_option_order"`
	LastGrade            *models.Grade  `json:"last_grade,omitempty"`
	ElapsedSeconds       int            `json:"elapsed_seconds"`
	Finished             bool           `json:"finished"`
	StartedAt            time.Time      `json:"started_at"`
}

// AnswerToWire renders an answer set as a deterministic sequence.
func AnswerToWire(answer models.KeySet) []string {
	return answer.Sorted()
}

// AnswerFromWire rebuilds an answer set from its sequence form.
func AnswerFromWire(keys []string) models.KeySet {
	return models.NewKeySet(keys...)
}

// Encode serializes state as indented JSON.
func Encode(state *models.RunState) ([]byte, error) {
	if state == nil {
		return nil, fmt.Errorf("snapshot: nil state")
	}
	w := wireState{
		Version:              Version,
		RunID:                state.RunID,
		ViewOnly:             state.ViewOnly,
		QuestionQueue:        questionsToWire(state.QuestionQueue),
		Cursor:               state.Cursor,
		Round:                state.Round,
		Mode:                 state.Mode,
		Score:                state.Score,
		Missed:               questionsToWire(state.Missed),
		SourceQuestions:      questionsToWire(state.SourceQuestions),
		PresentedOptionOrder: append([]string{}, state.PresentedOptionOrder...),
		LastGrade:            state.LastGrade,
		ElapsedSeconds:       state.ElapsedSeconds,
		Finished:             state.Finished,
		StartedAt:            state.StartedAt,
	}
	return json.MarshalIndent(w, "", "  ")
}

// Decode parses a snapshot produced by Encode.
func Decode(data []byte) (*models.RunState, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("snapshot: empty document")
	}
	var w wireState
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if w.Version != Version {
		return nil, fmt.Errorf("snapshot: unsupported version %d", w.Version)
	}
	switch w.Mode {
	case models.ModeFirstRun, models.ModeRepeatWrong:
	default:
		return nil, fmt.Errorf("snapshot: unknown mode %q", w.Mode)
	}

	state := &models.RunState{
		RunID:           w.RunID,
		ViewOnly:        w.ViewOnly,
		QuestionQueue:   questionsFromWire(w.QuestionQueue),
		Cursor:          w.Cursor,
		Round:           w.Round,
		Mode:            w.Mode,
		Score:           w.Score,
		Missed:          questionsFromWire(w.Missed),
		SourceQuestions: questionsFromWire(w.SourceQuestions),
		LastGrade:       w.LastGrade,
		ElapsedSeconds:  w.ElapsedSeconds,
		Finished:        w.Finished,
		StartedAt:       w.StartedAt,
	}
	if len(w.PresentedOptionOrder) > 0 {
		state.PresentedOptionOrder = w.PresentedOptionOrder
	}
	return state, nil
}

func questionsToWire(qs []models.Question) []wireQuestion {
	out := make([]wireQuestion, 0, len(qs))
	for _, q := range qs {
		out = append(out, wireQuestion{
			ID:          string(q.ID),
			Question:    q.Text,
			Type:        q.Type,
			Options:     append([]models.Option{}, q.Options...),
			Answer:      AnswerToWire(q.Answer),
			Explanation: q.Explanation,
			Table:       q.Table,
		})
	}
	return out
}

func questionsFromWire(ws []wireQuestion) []models.Question {
	if len(ws) == 0 {
		return nil
	}
	out := make([]models.Question, 0, len(ws))
	for _, w := range ws {
		out = append(out, models.Question{
			ID:          models.QuestionID(w.ID),
			Text:        w.Question,
			Type:        w.Type,
			Options:     w.Options,
			Answer:      AnswerFromWire(w.Answer),
			Explanation: w.Explanation,
			Table:       w.Table,
		})
	}
	return out
}
