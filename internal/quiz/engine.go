// Package quiz implements the trainer's run state machine: first round over a
// shuffled selection, repeat rounds over misses, grading and stats updates.
//
// The engine serializes every operation. Persistence failures never undo an
// in-memory change; they are logged and published as EventPersistFailed.
package quiz

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/quizdrill/internal/errors"
	"github.com/vytor/quizdrill/internal/logger"
	"github.com/vytor/quizdrill/internal/models"
	"github.com/vytor/quizdrill/internal/repository"
	"github.com/vytor/quizdrill/internal/stats"
	"github.com/vytor/quizdrill/internal/worker"
)

// Transition is the outcome of Advance.
type Transition string

const (
	TransitionNext          Transition = "next"
	TransitionRoundComplete Transition = "round_complete"
	TransitionFinished      Transition = "finished"
)

// Presentation is what the presentation layer renders for the current question.
type Presentation struct {
	Question models.Question `json:"-"`
	// Options are in the order they must be shown.
	Options    []models.Option `json:"options"`
	Number     int             `json:"number"`
	Total      int             `json:"total"`
	Round      int             `json:"round"`
	RoundLabel string          `json:"round_label"`
	Mode       models.Mode     `json:"mode"`
	Score      int             `json:"score"`
	ViewOnly   bool            `json:"view_only"`
	Grade      *models.Grade   `json:"grade,omitempty"`
}

// RunSummary describes a finished run.
type RunSummary struct {
	RunID          string `json:"run_id"`
	Rounds         int    `json:"rounds"`
	Score          int    `json:"score"`
	Questions      int    `json:"questions"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	ViewOnly       bool   `json:"view_only"`
}

// AdvanceResult reports what Advance did.
type AdvanceResult struct {
	Transition Transition  `json:"transition"`
	Round      int         `json:"round"`
	Repeating  int         `json:"repeating,omitempty"`
	Summary    *RunSummary `json:"summary,omitempty"`
}

type Engine struct {
	mu          sync.Mutex
	statsRepo   repository.StatsRepository
	sessionRepo repository.SessionRepository
	record      models.StatsRecord
	// statsWritable is false when the stored record could not be read; the
	// store is then left untouched until ResetStats replaces it.
	statsWritable bool
	state         *models.RunState
	rng           *rand.Rand
	tickInterval  time.Duration
	ticker        *worker.Ticker
	tickerGen     uint64
	observers     observers
	log           *logger.Logger
	now           func() time.Time
}

// NewEngine loads the stats record once. A failed load is logged and the
// engine counts in memory from an empty record without writing the store.
func NewEngine(ctx context.Context, statsRepo repository.StatsRepository, sessionRepo repository.SessionRepository, opts ...Option) *Engine {
	e := &Engine{
		statsRepo:    statsRepo,
		sessionRepo:  sessionRepo,
		rng:          rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		tickInterval: time.Second,
		log:          logger.FromContext(ctx).WithPrefix("engine"),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	rec, err := statsRepo.Load(ctx)
	e.statsWritable = err == nil
	if err != nil {
		e.log.Warn("%v", errors.NewPersistError("load stats", err))
		e.log.Warn("stored stats left untouched; attempts are counted in memory until stats are reset")
		rec = models.NewStatsRecord()
	}
	if rec.Questions == nil {
		rec.Questions = map[models.QuestionID]models.QuestionStat{}
	}
	e.record = rec
	e.log.Debug("engine ready: %d questions with stats", len(rec.Questions))
	return e
}

// Subscribe registers an observer for engine events.
func (e *Engine) Subscribe(obs Observer) {
	e.observers.add(obs)
}

// Start begins a new run over questions. Any stale snapshot is discarded.
// View-only runs reveal answers, never persist and never touch stats.
func (e *Engine) Start(ctx context.Context, questions []models.Question, viewOnly bool) (*models.RunState, error) {
	if len(questions) == 0 {
		return nil, errors.NewEmptyRunError()
	}

	e.mu.Lock()
	var events []Event
	stopped := e.detachTicker()

	if err := e.sessionRepo.Clear(ctx); err != nil {
		events = e.persistFailed(events, "clear session", err)
	}

	source := append([]models.Question(nil), questions...)
	queue := append([]models.Question(nil), questions...)
	e.rng.Shuffle(len(queue), func(i, j int) {
		queue[i], queue[j] = queue[j], queue[i]
	})

	e.state = &models.RunState{
		RunID:           uuid.NewString(),
		ViewOnly:        viewOnly,
		QuestionQueue:   queue,
		Cursor:          0,
		Round:           1,
		Mode:            models.ModeFirstRun,
		SourceQuestions: source,
		StartedAt:       e.now().UTC(),
	}
	if !viewOnly {
		e.attachTicker(ctx)
	}
	e.log.Info("run started: run_id=%s, questions=%d, view_only=%t", e.state.RunID, len(queue), viewOnly)
	events = append(events, Event{Type: EventRunStarted, RunID: e.state.RunID, Round: 1})
	out := e.state.Clone()
	e.mu.Unlock()

	e.finish(stopped, events)
	return out, nil
}

// Resume restores the saved snapshot verbatim, including the option order the
// user last saw.
func (e *Engine) Resume(ctx context.Context) (*models.RunState, error) {
	snap, err := e.sessionRepo.Load(ctx)
	if err != nil {
		e.log.Warn("failed to load session: %v", err)
		return nil, errors.NewPersistError("load session", err)
	}
	if snap == nil {
		return nil, errors.NewResumeError("no saved session to resume")
	}
	if err := checkSnapshot(snap); err != nil {
		e.log.Warn("rejecting session snapshot: %v", err)
		return nil, errors.NewResumeError(err.Error())
	}

	e.mu.Lock()
	stopped := e.detachTicker()
	if snap.LastGrade != nil {
		if q, _ := snap.Current(); snap.LastGrade.QuestionID != q.ID {
			snap.LastGrade = nil
		}
	}
	e.state = snap
	e.attachTicker(ctx)
	e.log.Info("run resumed: run_id=%s, round=%d, cursor=%d/%d", snap.RunID, snap.Round, snap.Cursor+1, len(snap.QuestionQueue))
	events := []Event{{Type: EventRunStarted, RunID: snap.RunID, Round: snap.Round, Elapsed: snap.ElapsedSeconds, Resumed: true}}
	out := e.state.Clone()
	e.mu.Unlock()

	e.finish(stopped, events)
	return out, nil
}

func checkSnapshot(snap *models.RunState) error {
	switch {
	case snap.ViewOnly:
		return fmt.Errorf("view-only runs cannot be resumed")
	case snap.Finished:
		return fmt.Errorf("saved run is already finished")
	case len(snap.QuestionQueue) == 0:
		return fmt.Errorf("saved run has no questions")
	case snap.Cursor < 0 || snap.Cursor >= len(snap.QuestionQueue):
		return fmt.Errorf("saved cursor %d is outside the queue of %d", snap.Cursor, len(snap.QuestionQueue))
	case snap.Round < 1:
		return fmt.Errorf("saved round %d is invalid", snap.Round)
	}
	return nil
}

// PresentCurrent returns the current question with its display order. The
// order is shuffled the first time a question is shown and reused afterwards.
func (e *Engine) PresentCurrent(ctx context.Context) (Presentation, error) {
	e.mu.Lock()
	s := e.state
	if err := requireActive(s, "present"); err != nil {
		e.mu.Unlock()
		return Presentation{}, err
	}
	var events []Event
	q, _ := s.Current()

	if !validOrder(q, s.PresentedOptionOrder) {
		order := q.OptionKeys()
		e.rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		s.PresentedOptionOrder = order
	}
	if !s.ViewOnly {
		events = e.saveSession(ctx, events)
	}
	p := e.presentation(q)
	e.mu.Unlock()

	e.observers.publish(events)
	return p, nil
}

func (e *Engine) presentation(q models.Question) Presentation {
	s := e.state
	options := make([]models.Option, 0, len(s.PresentedOptionOrder))
	for _, k := range s.PresentedOptionOrder {
		opt, _ := q.Option(k)
		options = append(options, opt)
	}
	p := Presentation{
		Question:   q,
		Options:    options,
		Number:     s.Cursor + 1,
		Total:      len(s.QuestionQueue),
		Round:      s.Round,
		RoundLabel: s.RoundLabel(),
		Mode:       s.Mode,
		Score:      s.Score,
		ViewOnly:   s.ViewOnly,
	}
	if s.LastGrade != nil {
		g := *s.LastGrade
		p.Grade = &g
	}
	return p
}

// Submit grades the selection for the current question. A second submit for
// the same question returns the stored grade without side effects.
func (e *Engine) Submit(ctx context.Context, selected []string) (models.Grade, error) {
	e.mu.Lock()
	s := e.state
	if err := requireActive(s, "submit"); err != nil {
		e.mu.Unlock()
		return models.Grade{}, err
	}
	if s.ViewOnly {
		e.mu.Unlock()
		return models.Grade{}, errors.NewInvalidStateError("submit", "in view-only mode")
	}
	if s.LastGrade != nil {
		g := s.Clone().LastGrade
		e.mu.Unlock()
		return *g, nil
	}

	q, _ := s.Current()
	for _, k := range selected {
		if !q.HasOption(k) {
			e.mu.Unlock()
			return models.Grade{}, errors.NewValidationError("selected", fmt.Sprintf("unknown option %q for question %s", k, q.ID))
		}
	}

	grade := Grade(q, models.NewKeySet(selected...))
	if grade.Correct {
		s.Score++
	} else if !s.HasMissed(q.ID) {
		s.Missed = append(s.Missed, q)
	}
	s.LastGrade = &grade
	e.log.Debug("graded question %s: correct=%t, score=%d, missed=%d", q.ID, grade.Correct, s.Score, len(s.Missed))

	var events []Event
	e.record = stats.RecordAttempt(e.record, q.ID, grade.Correct)
	events = e.saveStats(ctx, events)
	events = e.saveSession(ctx, events)
	out := *s.Clone().LastGrade
	e.mu.Unlock()

	e.observers.publish(events)
	return out, nil
}

// Advance moves past the current question. At the end of a round the misses
// become the next queue in the order they were missed; with no misses the run
// finishes.
func (e *Engine) Advance(ctx context.Context) (AdvanceResult, error) {
	e.mu.Lock()
	s := e.state
	if err := requireActive(s, "advance"); err != nil {
		e.mu.Unlock()
		return AdvanceResult{}, err
	}
	if !s.ViewOnly && s.LastGrade == nil {
		e.mu.Unlock()
		return AdvanceResult{}, errors.NewInvalidStateError("advance", "the current question is unanswered")
	}

	var events []Event
	var stopped *worker.Ticker
	s.Cursor++
	s.PresentedOptionOrder = nil
	s.LastGrade = nil

	var result AdvanceResult
	switch {
	case s.Cursor < len(s.QuestionQueue):
		result = AdvanceResult{Transition: TransitionNext, Round: s.Round}
		if !s.ViewOnly {
			events = e.saveSession(ctx, events)
		}

	case len(s.Missed) > 0:
		s.QuestionQueue = s.Missed
		s.Missed = nil
		s.Cursor = 0
		s.Round++
		s.Mode = models.ModeRepeatWrong
		result = AdvanceResult{Transition: TransitionRoundComplete, Round: s.Round, Repeating: len(s.QuestionQueue)}
		e.log.Info("round %d complete, repeating %d missed questions", s.Round-1, len(s.QuestionQueue))
		events = e.saveSession(ctx, events)
		events = append(events, Event{Type: EventRoundStarted, RunID: s.RunID, Round: s.Round, Elapsed: s.ElapsedSeconds})

	default:
		s.Finished = true
		stopped = e.detachTicker()
		summary := &RunSummary{
			RunID:          s.RunID,
			Rounds:         s.Round,
			Score:          s.Score,
			Questions:      len(s.SourceQuestions),
			ElapsedSeconds: s.ElapsedSeconds,
			ViewOnly:       s.ViewOnly,
		}
		if !s.ViewOnly {
			e.record = stats.RecordDuration(e.record, s.ElapsedSeconds)
			events = e.saveStats(ctx, events)
			if err := e.sessionRepo.Clear(ctx); err != nil {
				events = e.persistFailed(events, "clear session", err)
			}
		}
		e.log.Info("run finished: run_id=%s, rounds=%d, score=%d, elapsed=%ds", s.RunID, s.Round, s.Score, s.ElapsedSeconds)
		result = AdvanceResult{Transition: TransitionFinished, Round: s.Round, Summary: summary}
		events = append(events, Event{Type: EventRunFinished, RunID: s.RunID, Round: s.Round, Elapsed: s.ElapsedSeconds, Summary: summary})
	}
	e.mu.Unlock()

	e.finish(stopped, events)
	return result, nil
}

// Restart starts again over the run's original selection.
func (e *Engine) Restart(ctx context.Context) (*models.RunState, error) {
	e.mu.Lock()
	if e.state == nil {
		e.mu.Unlock()
		return nil, errors.NewInvalidStateError("restart", "no run is active")
	}
	source := append([]models.Question(nil), e.state.SourceQuestions...)
	viewOnly := e.state.ViewOnly
	e.mu.Unlock()

	e.log.Info("restarting run")
	return e.Start(ctx, source, viewOnly)
}

// Suspend stops the timer, saves the snapshot and releases the run so it can
// be resumed later.
func (e *Engine) Suspend(ctx context.Context) {
	e.mu.Lock()
	var events []Event
	stopped := e.detachTicker()
	if s := e.state; s != nil && !s.ViewOnly && !s.Finished {
		events = e.saveSession(ctx, events)
		e.log.Info("run suspended: run_id=%s", s.RunID)
	}
	e.state = nil
	e.mu.Unlock()

	e.finish(stopped, events)
}

// Abort stops the timer and discards the run and its snapshot.
func (e *Engine) Abort(ctx context.Context) {
	e.mu.Lock()
	var events []Event
	stopped := e.detachTicker()
	if err := e.sessionRepo.Clear(ctx); err != nil {
		events = e.persistFailed(events, "clear session", err)
	}
	if e.state != nil {
		e.log.Info("run aborted: run_id=%s", e.state.RunID)
	}
	e.state = nil
	e.mu.Unlock()

	e.finish(stopped, events)
}

// Close stops the timer. The in-memory run is kept.
func (e *Engine) Close() {
	e.mu.Lock()
	stopped := e.detachTicker()
	e.mu.Unlock()
	e.finish(stopped, nil)
}

// ResetStats replaces the stats record with an empty one.
func (e *Engine) ResetStats(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record = models.NewStatsRecord()
	if err := e.statsRepo.Save(ctx, e.record); err != nil {
		e.log.Warn("failed to reset stats: %v", err)
		return errors.NewPersistError("reset stats", err)
	}
	e.statsWritable = true
	e.log.Info("stats reset")
	return nil
}

// State returns a copy of the current run, nil when idle.
func (e *Engine) State() *models.RunState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

func (e *Engine) Phase() models.Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Phase()
}

func (e *Engine) Score() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return 0
	}
	return e.state.Score
}

func (e *Engine) Round() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return 0
	}
	return e.state.Round
}

func (e *Engine) Mode() models.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return ""
	}
	return e.state.Mode
}

// Elapsed returns the run's elapsed seconds.
func (e *Engine) Elapsed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return 0
	}
	return e.state.ElapsedSeconds
}

// Stats returns a copy of the stats record.
func (e *Engine) Stats() models.StatsRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.record.Clone()
}

// HasSnapshot reports whether a resumable run is stored.
func (e *Engine) HasSnapshot(ctx context.Context) bool {
	ok, err := e.sessionRepo.Exists(ctx)
	if err != nil {
		e.log.Warn("failed to check session snapshot: %v", err)
		return false
	}
	return ok
}

func requireActive(s *models.RunState, op string) error {
	switch {
	case s == nil:
		return errors.NewInvalidStateError(op, "no run is active")
	case s.Finished:
		return errors.NewInvalidStateError(op, "the run is finished")
	}
	return nil
}

// attachTicker starts the elapsed counter for the current run. Must hold e.mu.
func (e *Engine) attachTicker(ctx context.Context) {
	e.tickerGen++
	gen := e.tickerGen
	e.ticker = worker.NewTicker(e.tickInterval, func() { e.onTick(gen) })
	e.ticker.Start(context.WithoutCancel(ctx))
}

// detachTicker invalidates the running ticker and hands it back so the caller
// can stop it after releasing e.mu. Must hold e.mu.
func (e *Engine) detachTicker() *worker.Ticker {
	t := e.ticker
	e.ticker = nil
	e.tickerGen++
	return t
}

func (e *Engine) onTick(gen uint64) {
	e.mu.Lock()
	s := e.state
	if gen != e.tickerGen || s == nil || s.Finished || s.ViewOnly {
		e.mu.Unlock()
		return
	}
	s.ElapsedSeconds++
	ev := Event{Type: EventTick, RunID: s.RunID, Round: s.Round, Elapsed: s.ElapsedSeconds}
	e.mu.Unlock()
	e.observers.publish([]Event{ev})
}

func (e *Engine) finish(stopped *worker.Ticker, events []Event) {
	if stopped != nil {
		stopped.Stop()
	}
	e.observers.publish(events)
}

func (e *Engine) saveSession(ctx context.Context, events []Event) []Event {
	if err := e.sessionRepo.Save(ctx, e.state); err != nil {
		return e.persistFailed(events, "save session", err)
	}
	return events
}

func (e *Engine) saveStats(ctx context.Context, events []Event) []Event {
	if !e.statsWritable {
		e.log.Debug("stats store unreadable at startup, skipping save")
		return events
	}
	if err := e.statsRepo.Save(ctx, e.record); err != nil {
		return e.persistFailed(events, "save stats", err)
	}
	return events
}

func (e *Engine) persistFailed(events []Event, op string, err error) []Event {
	perr := errors.NewPersistError(op, err)
	e.log.Warn("%v", perr)
	ev := Event{Type: EventPersistFailed, Err: perr}
	if e.state != nil {
		ev.RunID = e.state.RunID
		ev.Round = e.state.Round
	}
	return append(events, ev)
}
