// Package testutil provides fakes and helpers shared by package tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mirrorbot/mirrorbot/internal/format"
	"github.com/mirrorbot/mirrorbot/internal/mirror"
)

// Handle is a settable in-memory mirror.Handle.
type Handle struct {
	mu        sync.Mutex
	NameVal   string
	StatusVal mirror.Status
	GIDVal    string
	Processed int64
	Total     int64
	SpeedVal  string
	ETAVal    string
}

var _ mirror.Handle = (*Handle)(nil)

// NewHandle creates a handle with the given gid, name and status.
func NewHandle(gid, name string, status mirror.Status) *Handle {
	return &Handle{
		NameVal:   name,
		StatusVal: status,
		GIDVal:    gid,
		SpeedVal:  "0B/s",
		ETAVal:    "-",
	}
}

// WithBytes sets processed and total bytes and returns h.
func (h *Handle) WithBytes(processed, total int64) *Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Processed = processed
	h.Total = total
	return h
}

// SetStatus changes the reported status.
func (h *Handle) SetStatus(s mirror.Status) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.StatusVal = s
}

func (h *Handle) Name() string { return h.NameVal }
func (h *Handle) GID() string  { return h.GIDVal }

func (h *Handle) Status() mirror.Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.StatusVal
}

func (h *Handle) ProcessedBytes() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Processed
}

func (h *Handle) SizeRaw() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Total
}

func (h *Handle) Size() string     { return format.Size(h.SizeRaw()) }
func (h *Handle) Speed() string    { return h.SpeedVal }
func (h *Handle) ETA() string      { return h.ETAVal }
func (h *Handle) Progress() string { return format.Percentage(h.ProcessedBytes(), h.SizeRaw()) }

// PeerHandle is a Handle that also reports swarm counts.
type PeerHandle struct {
	*Handle
	Info  mirror.PeerInfo
	Err   error
	Delay time.Duration
	// Hold, if set, blocks Peers until it is closed, ignoring ctx.
	Hold <-chan struct{}
}

var _ mirror.PeerReporter = (*PeerHandle)(nil)

// Peers returns Info after Delay, or ctx's error if it ends first.
func (p *PeerHandle) Peers(ctx context.Context) (mirror.PeerInfo, error) {
	if p.Hold != nil {
		<-p.Hold
	}
	if p.Delay > 0 {
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return mirror.PeerInfo{}, ctx.Err()
		}
	}
	if p.Err != nil {
		return mirror.PeerInfo{}, p.Err
	}
	return p.Info, nil
}

// NewTestLogger creates a test logger that outputs to t.Log.
func NewTestLogger(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
}

// NopLogger returns a no-op logger for tests that don't need output.
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}
