// Package aria2 exposes aria2 downloads as mirror handles. It works on the
// status objects returned by aria2's tellStatus call and leaves the RPC
// transport to the caller.
package aria2

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/mirrorbot/mirrorbot/internal/format"
	"github.com/mirrorbot/mirrorbot/internal/mirror"
)

// StatusObject is a decoded tellStatus result.
type StatusObject map[string]any

// Source fetches the current status of a download.
type Source interface {
	TellStatus(ctx context.Context, gid string) (StatusObject, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, gid string) (StatusObject, error)

func (f SourceFunc) TellStatus(ctx context.Context, gid string) (StatusObject, error) {
	return f(ctx, gid)
}

// ParseStatus decodes a raw tellStatus result.
func ParseStatus(data []byte) (StatusObject, error) {
	var status StatusObject
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status: %w", err)
	}
	if getString(status, "gid") == "" {
		return nil, fmt.Errorf("status has no gid")
	}
	return status, nil
}

// Handle is a mirror.Handle backed by an aria2 download.
type Handle struct {
	gid    string
	source Source

	mu     sync.RWMutex
	status StatusObject
}

var (
	_ mirror.Handle     = (*Handle)(nil)
	_ mirror.PeerReporter = (*Handle)(nil)
)

// NewHandle wraps status. source may be nil, in which case Refresh and Peers
// only see the initial status.
func NewHandle(status StatusObject, source Source) *Handle {
	return &Handle{
		gid:    getString(status, "gid"),
		source: source,
		status: status,
	}
}

// Refresh replaces the cached status with a fresh one from the source.
func (h *Handle) Refresh(ctx context.Context) error {
	if h.source == nil {
		return nil
	}
	status, err := h.source.TellStatus(ctx, h.gid)
	if err != nil {
		return fmt.Errorf("tellStatus %s: %w", h.gid, err)
	}
	h.mu.Lock()
	h.status = status
	h.mu.Unlock()
	return nil
}

// Update replaces the cached status.
func (h *Handle) Update(status StatusObject) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = status
}

func (h *Handle) snapshot() StatusObject {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

func (h *Handle) GID() string { return h.gid }

func (h *Handle) Name() string {
	return extractName(h.snapshot())
}

func (h *Handle) Status() mirror.Status {
	return mapStatus(getString(h.snapshot(), "status"))
}

func (h *Handle) ProcessedBytes() int64 {
	return getInt(h.snapshot(), "completedLength")
}

func (h *Handle) SizeRaw() int64 {
	return getInt(h.snapshot(), "totalLength")
}

func (h *Handle) Size() string {
	return format.Size(h.SizeRaw())
}

func (h *Handle) Speed() string {
	return format.Speed(getInt(h.snapshot(), "downloadSpeed"))
}

func (h *Handle) ETA() string {
	status := h.snapshot()
	total := getInt(status, "totalLength")
	completed := getInt(status, "completedLength")
	return format.ETA(total-completed, getInt(status, "downloadSpeed"))
}

func (h *Handle) Progress() string {
	status := h.snapshot()
	return format.Percentage(getInt(status, "completedLength"), getInt(status, "totalLength"))
}

// Peers fetches live seeder and connection counts. Downloads that are not
// BitTorrent report mirror.ErrNoPeers.
func (h *Handle) Peers(ctx context.Context) (mirror.PeerInfo, error) {
	status := h.snapshot()
	if h.source != nil {
		fresh, err := h.source.TellStatus(ctx, h.gid)
		if err != nil {
			return mirror.PeerInfo{}, fmt.Errorf("tellStatus %s: %w", h.gid, err)
		}
		h.Update(fresh)
		status = fresh
	}

	if _, ok := status["bittorrent"]; !ok {
		return mirror.PeerInfo{}, mirror.ErrNoPeers
	}
	return mirror.PeerInfo{
		Seeders:     int(getInt(status, "numSeeders")),
		Connections: int(getInt(status, "connections")),
	}, nil
}

func extractName(status StatusObject) string {
	if bt, ok := status["bittorrent"].(map[string]any); ok {
		if info, ok := bt["info"].(map[string]any); ok {
			if name, ok := info["name"].(string); ok && name != "" {
				return name
			}
		}
	}

	if files, ok := status["files"].([]any); ok && len(files) > 0 {
		if file, ok := files[0].(map[string]any); ok {
			if path, ok := file["path"].(string); ok && path != "" {
				return filepath.Base(path)
			}
		}
	}

	if gid := getString(status, "gid"); gid != "" {
		return gid
	}
	return "unknown"
}

func mapStatus(aria2Status string) mirror.Status {
	switch aria2Status {
	case "active":
		return mirror.StatusDownloading
	case "waiting", "paused":
		return mirror.StatusQueued
	case "error":
		return mirror.StatusFailed
	case "removed":
		return mirror.StatusCancelled
	case "complete":
		return mirror.StatusUploading
	default:
		return mirror.StatusQueued
	}
}

func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// getInt reads aria2's decimal-string numbers.
func getInt(m map[string]any, key string) int64 {
	s := getString(m, key)
	if s == "" {
		return 0
	}
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
