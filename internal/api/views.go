package api

import (
	"github.com/vytor/quizdrill/internal/models"
	"github.com/vytor/quizdrill/internal/quiz"
	"github.com/vytor/quizdrill/internal/snapshot"
)

type questionView struct {
	ID          models.QuestionID `json:"id"`
	Question    string            `json:"question"`
	Type        string            `json:"type"`
	Options     []models.Option   `json:"options"`
	Answer      []string          `json:"answer,omitempty"`
	Explanation string            `json:"explanation,omitempty"`
	Table       *models.Table     `json:"table,omitempty"`
}

// newQuestionView renders q with options in the given order. The answer and
// explanation are included only when reveal is set.
func newQuestionView(q models.Question, options []models.Option, reveal bool) questionView {
	v := questionView{
		ID:       q.ID,
		Question: q.Text,
		Type:     q.Type,
		Options:  options,
		Table:    q.Table,
	}
	if reveal {
		v.Answer = snapshot.AnswerToWire(q.Answer)
		v.Explanation = q.Explanation
	}
	return v
}

type presentationView struct {
	quiz.Presentation
	Question questionView `json:"question"`
}

type runView struct {
	RunID          string            `json:"run_id"`
	Phase          models.Phase      `json:"phase"`
	Round          int               `json:"round"`
	RoundLabel     string            `json:"round_label"`
	Mode           models.Mode       `json:"mode"`
	Score          int               `json:"score"`
	ElapsedSeconds int               `json:"elapsed_seconds"`
	ViewOnly       bool              `json:"view_only"`
	Queued         int               `json:"queued"`
	Missed         int               `json:"missed"`
	Current        *presentationView `json:"current,omitempty"`
}

func newRunView(state *models.RunState, p *quiz.Presentation) runView {
	v := runView{
		RunID:          state.RunID,
		Phase:          state.Phase(),
		Round:          state.Round,
		RoundLabel:     state.RoundLabel(),
		Mode:           state.Mode,
		Score:          state.Score,
		ElapsedSeconds: state.ElapsedSeconds,
		ViewOnly:       state.ViewOnly,
		Queued:         len(state.QuestionQueue),
		Missed:         len(state.Missed),
	}
	if p != nil {
		reveal := p.ViewOnly || p.Grade != nil
		v.Current = &presentationView{
			Presentation: *p,
			Question:     newQuestionView(p.Question, p.Options, reveal),
		}
	}
	return v
}
