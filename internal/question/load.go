package question

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vytor/quizdrill/internal/errors"
	"github.com/vytor/quizdrill/internal/logger"
	"github.com/vytor/quizdrill/internal/models"
)

// LoadOptions controls how invalid records are treated.
type LoadOptions struct {
	// Strict fails the whole load on the first invalid record set.
	// Otherwise invalid records are dropped with a warning.
	Strict bool
}

// Load reads, parses and validates a question bank file (JSON, or YAML by
// extension). Every failure is a LOAD_ERROR.
func Load(ctx context.Context, path string, opts LoadOptions) (*Bank, error) {
	log := logger.FromContext(ctx).WithPrefix("bank")
	log.Info("loading question bank: %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("failed to read question bank: %v", err)
		return nil, errors.NewLoadError(path, err)
	}

	records, err := parseRecords(data, filepath.Ext(path))
	if err != nil {
		log.Error("failed to parse question bank: %v", err)
		return nil, errors.NewLoadError(path, err)
	}

	questions, err := buildQuestions(ctx, records, opts)
	if err != nil {
		return nil, errors.NewLoadError(path, err)
	}

	log.Info("question bank loaded: %d questions", len(questions))
	return NewBank(questions), nil
}

func buildQuestions(ctx context.Context, records []record, opts LoadOptions) ([]models.Question, error) {
	log := logger.FromContext(ctx).WithPrefix("bank")

	seen := make(map[models.QuestionID]struct{}, len(records))
	questions := make([]models.Question, 0, len(records))
	var all []Issue
	for i, rec := range records {
		q, issues := validateRecord(fmt.Sprintf("questions[%d]", i), rec, seen)
		if len(issues) > 0 {
			if opts.Strict {
				all = append(all, issues...)
				continue
			}
			log.Warn("dropping invalid question %s", (&ValidationError{Issues: issues}).Error())
			continue
		}
		seen[q.ID] = struct{}{}
		questions = append(questions, q)
	}

	if len(all) > 0 {
		err := &ValidationError{Issues: all}
		log.Error("%v", err)
		return nil, err
	}
	if len(questions) == 0 {
		log.Error("question bank contains no valid questions")
		return nil, fmt.Errorf("no valid questions found")
	}
	return questions, nil
}
