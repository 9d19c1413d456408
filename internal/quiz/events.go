package quiz

import "sync"

type EventType string

const (
	EventRunStarted    EventType = "run_started"
	EventRoundStarted  EventType = "round_started"
	EventTick          EventType = "tick"
	EventRunFinished   EventType = "run_finished"
	EventPersistFailed EventType = "persist_failed"
)

// Event is published to observers after the operation that caused it has
// released the engine.
type Event struct {
	Type    EventType
	RunID   string
	Round   int
	Elapsed int
	// Resumed is set on run_started when the run came from a snapshot.
	Resumed bool
	// Summary is set on run_finished.
	Summary *RunSummary
	// Err is set on persist_failed.
	Err error
}

// Observer receives engine events. Implementations must not block.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(ev Event) { f(ev) }

type observers struct {
	mu   sync.RWMutex
	list []Observer
}

func (o *observers) add(obs Observer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.list = append(o.list, obs)
}

func (o *observers) publish(events []Event) {
	if len(events) == 0 {
		return
	}
	o.mu.RLock()
	list := append([]Observer(nil), o.list...)
	o.mu.RUnlock()
	for _, ev := range events {
		for _, obs := range list {
			obs.OnEvent(ev)
		}
	}
}
