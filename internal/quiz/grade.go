package quiz

import "github.com/vytor/quizdrill/internal/models"

// Grade compares a selection against the answer set. Only exact set equality
// is correct; the order of selected keys is irrelevant.
func Grade(q models.Question, selected models.KeySet) models.Grade {
	return models.Grade{
		QuestionID: q.ID,
		Selected:   selected.Sorted(),
		Correct:    selected.Equal(q.Answer),
		Missing:    q.Answer.Minus(selected),
		Extra:      selected.Minus(q.Answer),
	}
}

// validOrder reports whether order is a permutation of the question's keys.
func validOrder(q models.Question, order []string) bool {
	if len(order) == 0 || len(order) != len(q.Options) {
		return false
	}
	seen := make(map[string]struct{}, len(order))
	for _, k := range order {
		if !q.HasOption(k) {
			return false
		}
		if _, dup := seen[k]; dup {
			return false
		}
		seen[k] = struct{}{}
	}
	return true
}
