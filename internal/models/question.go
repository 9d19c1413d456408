package models

import (
	"sort"
	"strconv"
)

// QuestionID identifies a question across the bank, stats and snapshots.
// Banks may use integers or strings; both are carried as their decimal/text form.
type QuestionID string

// Less orders ids numerically when both parse as integers, lexically otherwise.
func (id QuestionID) Less(other QuestionID) bool {
	a, errA := strconv.ParseInt(string(id), 10, 64)
	b, errB := strconv.ParseInt(string(other), 10, 64)
	switch {
	case errA == nil && errB == nil:
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return id < other
	}
}

// Option is one answer choice as defined by the bank.
type Option struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Table is supplementary tabular data shown next to the prompt.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Question is an immutable bank record. Options keep the bank's order.
type Question struct {
	ID          QuestionID
	Text        string
	Type        string
	Options     []Option
	Answer      KeySet
	Explanation string
	Table       *Table
}

// Option returns the option with the given key.
func (q Question) Option(key string) (Option, bool) {
	for _, o := range q.Options {
		if o.Key == key {
			return o, true
		}
	}
	return Option{}, false
}

// HasOption reports whether key is one of the question's option keys.
func (q Question) HasOption(key string) bool {
	_, ok := q.Option(key)
	return ok
}

// OptionKeys returns option keys in bank order.
func (q Question) OptionKeys() []string {
	keys := make([]string, 0, len(q.Options))
	for _, o := range q.Options {
		keys = append(keys, o.Key)
	}
	return keys
}

// IsMultiAnswer reports whether more than one option is correct.
func (q Question) IsMultiAnswer() bool {
	return q.Answer.Len() > 1
}

// KeySet is a set of option keys. The zero value is an empty set.
type KeySet map[string]struct{}

// NewKeySet builds a set from keys, collapsing duplicates.
func NewKeySet(keys ...string) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s KeySet) Len() int { return len(s) }

func (s KeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Equal is exact set equality.
func (s KeySet) Equal(other KeySet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

// Minus returns the keys of s not present in other, sorted.
func (s KeySet) Minus(other KeySet) []string {
	var out []string
	for k := range s {
		if !other.Has(k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Sorted returns the members in ascending order.
func (s KeySet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (s KeySet) Clone() KeySet {
	out := make(KeySet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}
