// Package interval runs an action repeatedly on a fixed period until cancelled.
package interval

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Timer calls an action every period on its own goroutine.
//
// Deadlines are absolute: the n-th call is due at start + n*period, so time
// spent inside the action does not push later calls back. When a call
// overruns one or more deadlines the next call happens immediately.
type Timer struct {
	period time.Duration
	action func()
	clock  clockwork.Clock
	logger zerolog.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Option configures a Timer.
type Option func(*Timer)

// WithClock sets the clock used for deadlines. Defaults to the real clock.
func WithClock(c clockwork.Clock) Option {
	return func(t *Timer) {
		t.clock = c
	}
}

// WithLogger sets the logger used to report recovered panics.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Timer) {
		t.logger = logger
	}
}

// New starts a timer that calls action every period.
// Non-positive periods are treated as one second.
func New(period time.Duration, action func(), opts ...Option) *Timer {
	if period <= 0 {
		period = time.Second
	}
	t := &Timer{
		period: period,
		action: action,
		clock:  clockwork.NewRealClock(),
		logger: zerolog.Nop(),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With().Str("component", "interval").Dur("period", period).Logger()

	go t.run()
	return t
}

func (t *Timer) run() {
	defer close(t.done)

	next := t.clock.Now().Add(t.period)
	for {
		if !t.wait(next.Sub(t.clock.Now())) {
			return
		}
		next = next.Add(t.period)
		t.fire()
	}
}

// wait blocks for d and reports whether the timer should fire.
func (t *Timer) wait(d time.Duration) bool {
	if d <= 0 {
		select {
		case <-t.stop:
			return false
		default:
			return true
		}
	}

	timer := t.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-t.stop:
		return false
	case <-timer.Chan():
	}

	select {
	case <-t.stop:
		return false
	default:
		return true
	}
}

func (t *Timer) fire() {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error().Interface("panic", r).Msg("Interval action panicked")
		}
	}()
	t.action()
}

// Cancel stops the timer without waiting. A call already in progress runs to
// completion; no further calls are started. Cancel is safe to call from the
// action itself and more than once.
func (t *Timer) Cancel() {
	t.stopOnce.Do(func() {
		close(t.stop)
	})
}

// Stop cancels the timer and waits for its goroutine to exit. It must not be
// called from the action.
func (t *Timer) Stop() {
	t.Cancel()
	<-t.done
}

// Done is closed once the timer's goroutine has exited.
func (t *Timer) Done() <-chan struct{} {
	return t.done
}

// Period returns the interval between calls.
func (t *Timer) Period() time.Duration {
	return t.period
}
