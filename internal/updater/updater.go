// Package updater keeps a chat status message current by re-rendering the
// task report on a fixed interval and publishing it when it changes.
package updater

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/mirrorbot/mirrorbot/internal/interval"
)

// Renderer produces the current status text.
type Renderer interface {
	Render(ctx context.Context) string
}

// Publisher delivers status text, typically by editing a chat message.
type Publisher interface {
	Publish(ctx context.Context, text string) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, text string) error

func (f PublisherFunc) Publish(ctx context.Context, text string) error {
	return f(ctx, text)
}

// DefaultInterval is used when New is given a non-positive period.
const DefaultInterval = 5 * time.Second

// Updater periodically publishes the rendered report.
type Updater struct {
	renderer  Renderer
	publisher Publisher
	period    time.Duration
	clock     clockwork.Clock
	logger    zerolog.Logger

	mu    sync.Mutex
	last  string
	timer *interval.Timer
}

// Option configures an Updater.
type Option func(*Updater)

// WithClock sets the clock driving the refresh interval.
func WithClock(c clockwork.Clock) Option {
	return func(u *Updater) {
		u.clock = c
	}
}

// New creates an Updater. It does nothing until Start is called.
func New(renderer Renderer, publisher Publisher, period time.Duration, logger zerolog.Logger, opts ...Option) *Updater {
	if period <= 0 {
		period = DefaultInterval
	}
	u := &Updater{
		renderer:  renderer,
		publisher: publisher,
		period:    period,
		clock:     clockwork.NewRealClock(),
		logger:    logger.With().Str("component", "updater").Logger(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Start begins periodic refreshes. Calling Start on a running Updater is a no-op.
func (u *Updater) Start() {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.timer != nil {
		return
	}
	u.timer = interval.New(u.period, u.tick,
		interval.WithClock(u.clock),
		interval.WithLogger(u.logger),
	)
	u.logger.Info().Dur("interval", u.period).Msg("Status updater started")
}

// Stop ends periodic refreshes and waits for an in-flight refresh to finish.
func (u *Updater) Stop() {
	u.mu.Lock()
	timer := u.timer
	u.timer = nil
	u.mu.Unlock()

	if timer == nil {
		return
	}
	timer.Stop()
	u.logger.Info().Msg("Status updater stopped")
}

// Running reports whether periodic refreshes are active.
func (u *Updater) Running() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.timer != nil
}

func (u *Updater) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), u.period)
	defer cancel()

	if _, err := u.RefreshNow(ctx); err != nil {
		u.logger.Warn().Err(err).Msg("Failed to publish status")
	}
}

// RefreshNow renders the report and publishes it if it differs from the
// last published text. It reports whether anything was published.
func (u *Updater) RefreshNow(ctx context.Context) (bool, error) {
	text := u.renderer.Render(ctx)

	u.mu.Lock()
	unchanged := text == u.last
	u.mu.Unlock()
	if unchanged {
		return false, nil
	}

	if err := u.publisher.Publish(ctx, text); err != nil {
		return false, fmt.Errorf("publish status: %w", err)
	}

	u.mu.Lock()
	u.last = text
	u.mu.Unlock()

	u.logger.Debug().Int("length", len(text)).Msg("Published status")
	return true, nil
}

// Reset forgets the last published text so the next refresh always publishes,
// e.g. after the status message was deleted and must be re-sent.
func (u *Updater) Reset() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.last = ""
}
