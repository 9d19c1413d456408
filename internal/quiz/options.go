package quiz

import (
	"math/rand/v2"
	"time"

	"github.com/vytor/quizdrill/internal/logger"
)

type Option func(*Engine)

// WithRand sets the source used for queue and option shuffles.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// WithTickInterval sets how often the elapsed counter advances by one second.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.tickInterval = d
		}
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log.WithPrefix("engine")
		}
	}
}
