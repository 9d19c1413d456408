package question

import (
	"fmt"
	"strings"

	"github.com/vytor/quizdrill/internal/models"
)

// Issue captures a validation problem in one bank record.
type Issue struct {
	Field   string
	Message string
}

// ValidationError reports one or more validation issues.
type ValidationError struct {
	Issues []Issue
}

func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return fmt.Sprintf("question bank validation failed: %s", strings.Join(parts, "; "))
}

type issueCollector struct {
	issues []Issue
}

func (collector *issueCollector) add(field, message string) {
	collector.issues = append(collector.issues, Issue{Field: field, Message: message})
}

// validateRecord converts a record into a Question, collecting every problem.
// seen tracks ids of records accepted so far.
func validateRecord(prefix string, rec record, seen map[models.QuestionID]struct{}) (models.Question, []Issue) {
	collector := &issueCollector{}

	id := models.QuestionID(strings.TrimSpace(string(rec.ID)))
	if id == "" {
		collector.add(prefix+".id", "is required")
	} else if _, dup := seen[id]; dup {
		collector.add(prefix+".id", fmt.Sprintf("duplicate id %q", id))
	}

	text := strings.TrimSpace(rec.Question)
	if text == "" {
		collector.add(prefix+".question", "is required")
	}

	options := make([]models.Option, 0, len(rec.Options))
	keys := map[string]struct{}{}
	if len(rec.Options) == 0 {
		collector.add(prefix+".options", "must include at least one entry")
	}
	for _, opt := range rec.Options {
		key := strings.TrimSpace(opt.Key)
		if key == "" {
			collector.add(prefix+".options", "keys must not be empty")
			continue
		}
		if _, dup := keys[key]; dup {
			collector.add(prefix+".options."+key, "duplicate key")
			continue
		}
		keys[key] = struct{}{}
		options = append(options, models.Option{Key: key, Text: opt.Text})
	}

	answer := models.NewKeySet()
	if len(rec.Answer) == 0 {
		collector.add(prefix+".answer", "must include at least one entry")
	}
	for i, key := range rec.Answer {
		key = strings.TrimSpace(key)
		if _, ok := keys[key]; !ok {
			collector.add(fmt.Sprintf("%s.answer[%d]", prefix, i), fmt.Sprintf("unknown option %q", key))
			continue
		}
		answer[key] = struct{}{}
	}

	if rec.Table != nil && len(rec.Table.Header) > 0 {
		for i, row := range rec.Table.Rows {
			if len(row) != len(rec.Table.Header) {
				collector.add(fmt.Sprintf("%s.table.rows[%d]", prefix, i),
					fmt.Sprintf("has %d cells, header has %d", len(row), len(rec.Table.Header)))
			}
		}
	}

	if len(collector.issues) > 0 {
		return models.Question{}, collector.issues
	}
	return models.Question{
		ID:          id,
		Text:        text,
		Type:        strings.TrimSpace(rec.Type),
		Options:     options,
		Answer:      answer,
		Explanation: strings.TrimSpace(rec.Explanation),
		Table:       rec.Table,
	}, nil
}
