package models

import (
	"strconv"
	"time"
)

// Mode distinguishes the first pass from repeat rounds over misses.
type Mode string

const (
	ModeFirstRun    Mode = "first_run"
	ModeRepeatWrong Mode = "repeat_wrong"
)

// Phase is the engine state derived from a RunState.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhasePresenting Phase = "presenting"
	PhaseGraded     Phase = "graded"
	PhaseFinished   Phase = "finished"
)

// Grade is the outcome of one submission.
type Grade struct {
	QuestionID QuestionID `json:"question_id"`
	Selected   []string   `json:"selected"`
	Correct    bool       `json:"correct"`
	// Missing are correct keys the user did not select.
	Missing []string `json:"missing,omitempty"`
	// Extra are selected keys that are not correct.
	Extra []string `json:"extra,omitempty"`
}

// RunState is the full mutable state of one quiz run.
type RunState struct {
	RunID           string
	ViewOnly        bool
	QuestionQueue   []Question
	Cursor          int
	Round           int
	Mode            Mode
	Score           int
	Missed          []Question
	SourceQuestions []Question
	// PresentedOptionOrder holds the option keys of the current question in
	// the order they were shown. Empty until the question is first presented.
	PresentedOptionOrder []string
	// LastGrade is set once the question at Cursor has been submitted.
	LastGrade      *Grade
	ElapsedSeconds int
	Finished       bool
	StartedAt      time.Time
}

// Current returns the question at the cursor.
func (s *RunState) Current() (Question, bool) {
	if s == nil || s.Cursor < 0 || s.Cursor >= len(s.QuestionQueue) {
		return Question{}, false
	}
	return s.QuestionQueue[s.Cursor], true
}

// Phase derives the state machine phase.
func (s *RunState) Phase() Phase {
	switch {
	case s == nil:
		return PhaseIdle
	case s.Finished:
		return PhaseFinished
	case s.LastGrade != nil:
		return PhaseGraded
	default:
		return PhasePresenting
	}
}

// HasMissed reports whether id is already in the miss set.
func (s *RunState) HasMissed(id QuestionID) bool {
	for _, q := range s.Missed {
		if q.ID == id {
			return true
		}
	}
	return false
}

// RoundLabel names the round the way the trainer shows it.
func (s *RunState) RoundLabel() string {
	if s.Mode == ModeFirstRun || s.Round <= 1 {
		return "First round"
	}
	return "Repeat round " + strconv.Itoa(s.Round-1)
}

// Clone returns a deep copy so callers cannot mutate engine-owned state.
func (s *RunState) Clone() *RunState {
	if s == nil {
		return nil
	}
	out := *s
	out.QuestionQueue = cloneQuestions(s.QuestionQueue)
	out.Missed = cloneQuestions(s.Missed)
	out.SourceQuestions = cloneQuestions(s.SourceQuestions)
	out.PresentedOptionOrder = append([]string(nil), s.PresentedOptionOrder...)
	if s.LastGrade != nil {
		g := *s.LastGrade
		g.Selected = append([]string(nil), s.LastGrade.Selected...)
		g.Missing = append([]string(nil), s.LastGrade.Missing...)
		g.Extra = append([]string(nil), s.LastGrade.Extra...)
		out.LastGrade = &g
	}
	return &out
}

func cloneQuestions(qs []Question) []Question {
	if qs == nil {
		return nil
	}
	out := make([]Question, len(qs))
	copy(out, qs)
	return out
}
