// Package snapshot loads static task lists from YAML, for previewing status
// messages without a running download engine.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mirrorbot/mirrorbot/internal/format"
	"github.com/mirrorbot/mirrorbot/internal/mirror"
)

// Entry is one task in a snapshot file.
type Entry struct {
	GID         string        `yaml:"gid"`
	Name        string        `yaml:"name"`
	Status      mirror.Status `yaml:"status"`
	Processed   int64         `yaml:"processed"`
	Total       int64         `yaml:"total"`
	SpeedBytes  int64         `yaml:"speed"`
	Seeders     *int          `yaml:"seeders,omitempty"`
	Connections *int          `yaml:"connections,omitempty"`
}

type file struct {
	Tasks []Entry `yaml:"tasks"`
}

type handle struct {
	e Entry
}

func (h handle) Name() string          { return h.e.Name }
func (h handle) Status() mirror.Status { return h.e.Status }
func (h handle) GID() string           { return h.e.GID }
func (h handle) ProcessedBytes() int64 { return h.e.Processed }
func (h handle) SizeRaw() int64        { return h.e.Total }
func (h handle) Size() string          { return format.Size(h.e.Total) }
func (h handle) Speed() string         { return format.Speed(h.e.SpeedBytes) }
func (h handle) ETA() string           { return format.ETA(h.e.Total-h.e.Processed, h.e.SpeedBytes) }
func (h handle) Progress() string      { return format.Percentage(h.e.Processed, h.e.Total) }

type peerHandle struct {
	handle
}

func (h peerHandle) Peers(context.Context) (mirror.PeerInfo, error) {
	var info mirror.PeerInfo
	if h.e.Seeders != nil {
		info.Seeders = *h.e.Seeders
	}
	if h.e.Connections != nil {
		info.Connections = *h.e.Connections
	}
	return info, nil
}

// Handle returns e as a mirror.Handle. Entries with swarm counts also
// implement mirror.PeerReporter.
func (e Entry) Handle() mirror.Handle {
	if e.Seeders != nil || e.Connections != nil {
		return peerHandle{handle{e}}
	}
	return handle{e}
}

// Validate checks that e can be registered.
func (e Entry) Validate() error {
	if e.GID == "" {
		return errors.New("gid is required")
	}
	if !e.Status.Valid() {
		return fmt.Errorf("unknown status %q", e.Status)
	}
	if e.Processed < 0 || e.Total < 0 {
		return errors.New("byte counts must not be negative")
	}
	return nil
}

// Load decodes a snapshot document and returns its tasks in file order.
func Load(r io.Reader) ([]mirror.Handle, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return []mirror.Handle{}, nil
		}
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	handles := make([]mirror.Handle, 0, len(f.Tasks))
	for i, e := range f.Tasks {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		handles = append(handles, e.Handle())
	}
	return handles, nil
}

// LoadFile reads a snapshot from path.
func LoadFile(path string) ([]mirror.Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()
	return Load(f)
}
