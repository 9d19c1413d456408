package worker

import (
	"context"
	"sync"
	"time"

	"github.com/vytor/quizdrill/internal/logger"
)

// Ticker calls a function at a fixed interval on its own goroutine until
// stopped. It can be restarted after Stop.
type Ticker struct {
	interval time.Duration
	fn       func()
	mu       sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	log      *logger.Logger
}

func NewTicker(interval time.Duration, fn func()) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{
		interval: interval,
		fn:       fn,
		log:      logger.Default().WithPrefix("ticker"),
	}
}

// Start launches the tick loop. Starting a running ticker is a no-op.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.log.Debug("starting ticker every %v", t.interval)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		tick := time.NewTicker(t.interval)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				t.log.Debug("ticker shutting down")
				return
			case <-tick.C:
				// A stop racing with this tick must win.
				if ctx.Err() != nil {
					return
				}
				t.fn()
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit. The callback is never
// invoked after Stop returns. Stop must not be called from the callback.
func (t *Ticker) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	t.wg.Wait()
	t.log.Debug("ticker stopped")
}

// Running reports whether the loop is active.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}
