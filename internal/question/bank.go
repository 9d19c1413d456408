package question

import (
	"math/rand/v2"
	"sort"

	"github.com/vytor/quizdrill/internal/models"
)

// TypeAll selects every question regardless of type.
const TypeAll = "all"

// Bank is the read-only set of questions shared by the trainer.
type Bank struct {
	questions []models.Question
	byID      map[models.QuestionID]int
}

// NewBank wraps already validated questions.
func NewBank(questions []models.Question) *Bank {
	b := &Bank{
		questions: append([]models.Question(nil), questions...),
		byID:      make(map[models.QuestionID]int, len(questions)),
	}
	for i, q := range b.questions {
		b.byID[q.ID] = i
	}
	return b
}

// Len returns the number of questions.
func (b *Bank) Len() int { return len(b.questions) }

// All returns every question in bank order.
func (b *Bank) All() []models.Question {
	return append([]models.Question(nil), b.questions...)
}

// Get looks a question up by id.
func (b *Bank) Get(id models.QuestionID) (models.Question, bool) {
	i, ok := b.byID[id]
	if !ok {
		return models.Question{}, false
	}
	return b.questions[i], true
}

// ByType returns questions whose type matches. "" and TypeAll match everything.
func (b *Bank) ByType(typ string) []models.Question {
	if typ == "" || typ == TypeAll {
		return b.All()
	}
	var out []models.Question
	for _, q := range b.questions {
		if q.Type == typ {
			out = append(out, q)
		}
	}
	return out
}

// CountByType counts questions per type tag.
func (b *Bank) CountByType() map[string]int {
	counts := map[string]int{}
	for _, q := range b.questions {
		counts[q.Type]++
	}
	return counts
}

// Types returns the distinct type tags, sorted.
func (b *Bank) Types() []string {
	counts := b.CountByType()
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Select returns the questions of a type, reduced to a random subset of limit
// questions when 0 < limit < available. rng may be nil.
func (b *Bank) Select(typ string, limit int, rng *rand.Rand) []models.Question {
	selected := b.ByType(typ)
	if limit <= 0 || limit >= len(selected) {
		return selected
	}
	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})
	return selected[:limit]
}
