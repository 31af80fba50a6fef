// Package mirror defines the read-only view the status helpers have of a
// download task. Download engines, archivers and uploaders live elsewhere and
// expose their progress through Handle.
package mirror

import (
	"context"
	"errors"
)

// ErrNoPeers is returned by a PeerReporter whose task has no swarm information.
var ErrNoPeers = errors.New("peer information not available")

// Status is the lifecycle label reported by a task.
type Status string

const (
	StatusUploading   Status = "uploading"
	StatusDownloading Status = "downloading"
	StatusQueued      Status = "queued"
	StatusFailed      Status = "failed"
	StatusCancelled   Status = "cancelled"
	StatusArchiving   Status = "archiving"
	StatusExtracting  Status = "extracting"
)

var statusLabels = map[Status]string{
	StatusUploading:   "𝗨𝗽𝗹𝗼𝗮𝗱𝗶𝗻𝗚...📤",
	StatusDownloading: "𝗗𝗼𝘄𝗻𝗹𝗼𝗮𝗱𝗶𝗻𝗚...📥",
	StatusQueued:      "𝗤𝘂𝗲𝘂𝗲𝗱...📝",
	StatusFailed:      "𝗙𝗮𝗶𝗹𝗲𝗱 🚫! 𝗖𝗹𝗲𝗮𝗻𝗶𝗻𝗴 𝗱𝗼𝘄𝗻𝗹𝗼𝗮𝗱...",
	StatusCancelled:   "𝗖𝗮𝗻𝗰𝗲𝗹𝗹𝗲𝗱 ❎! 𝗖𝗹𝗲𝗮𝗻𝗶𝗻𝗴 𝗗𝗼𝘄𝗻𝗹𝗼𝗮𝗱...",
	StatusArchiving:   "𝗔𝗿𝗰𝗵𝗶𝘃𝗶𝗻𝗴...🔐",
	StatusExtracting:  "𝗘𝘅𝘁𝗿𝗮𝗰𝘁𝗶𝗻𝗴...📂",
}

// Label returns the decorated chat label for the status.
// Unknown statuses are returned verbatim.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Valid reports whether s is one of the known lifecycle labels.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Addressable reports whether a task in this state may be looked up by gid
// for cancellation. Tasks that are uploading, archiving or extracting have
// already left the download engine.
func (s Status) Addressable() bool {
	switch s {
	case StatusUploading, StatusArchiving, StatusExtracting:
		return false
	default:
		return true
	}
}

// ShowsTransfer reports whether progress, size and speed lines apply.
func (s Status) ShowsTransfer() bool {
	return s != StatusArchiving && s != StatusExtracting
}

// Handle is a read-only view of one task.
type Handle interface {
	Name() string
	Status() Status
	GID() string
	ProcessedBytes() int64
	// Size is the pre-formatted total size.
	Size() string
	SizeRaw() int64
	Speed() string
	ETA() string
	Progress() string
}

// PeerInfo holds swarm counts for torrent tasks.
type PeerInfo struct {
	Seeders     int
	Connections int
}

// PeerReporter is implemented by handles backed by a torrent engine.
type PeerReporter interface {
	Peers(ctx context.Context) (PeerInfo, error)
}

// AsPeerReporter returns the peer capability of h, if it has one.
func AsPeerReporter(h Handle) (PeerReporter, bool) {
	p, ok := h.(PeerReporter)
	return p, ok
}
