// Package report renders the combined status message for all in-flight
// tasks, formatted as Telegram HTML.
package report

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mirrorbot/mirrorbot/internal/async"
	"github.com/mirrorbot/mirrorbot/internal/format"
	"github.com/mirrorbot/mirrorbot/internal/mirror"
	"github.com/mirrorbot/mirrorbot/internal/registry"
)

const (
	DefaultBanner        = "✥════ Mirror Status ════✥"
	DefaultCancelCommand = "cancel"
	DefaultPeerTimeout   = 2 * time.Second
)

// Field labels. These and the surrounding tags are what chat clients parse,
// so changing them breaks existing integrations.
const (
	labelFileName   = "🗂 𝗙𝗶𝗹𝗲𝗡𝗮𝗺𝗲 : "
	labelStatus     = "🚦 𝐒𝐭𝐚𝐭𝐮𝐬 : "
	labelDownloaded = "📥 𝐃𝐨𝐰𝐧𝐥𝐨𝐚𝐝𝐞𝐝 : "
	labelUploaded   = "📤 𝐔𝐩𝐥𝐨𝐚𝐝𝐞𝐝 : "
	labelSpeed      = "🚀 𝐒𝐩𝐞𝐞𝐝 : "
	labelETA        = "⏳ 𝐄𝐓𝐀 : "
	labelSeeders    = "⚓️ 𝐈𝐧𝐟𝐨 : -Seeders:"
	labelPeers      = "🔄 𝐏𝐞𝐞𝐫𝐬 : "
	labelStop       = "🚫 𝐓𝐨 𝐒𝐭𝐨𝐩 : "
)

// Options configures an Aggregator.
type Options struct {
	Banner        string
	CancelCommand string
	// PeerTimeout bounds the seeders/peers lookups of one Render call.
	PeerTimeout time.Duration
}

// Aggregator reads the shared registry to find and describe tasks.
type Aggregator struct {
	registry *registry.Registry
	opts     Options
	logger   zerolog.Logger
}

// New creates an Aggregator over reg. Zero option fields take defaults.
func New(reg *registry.Registry, opts Options, logger zerolog.Logger) *Aggregator {
	if opts.Banner == "" {
		opts.Banner = DefaultBanner
	}
	if opts.CancelCommand == "" {
		opts.CancelCommand = DefaultCancelCommand
	}
	opts.CancelCommand = strings.TrimPrefix(opts.CancelCommand, "/")
	if opts.PeerTimeout <= 0 {
		opts.PeerTimeout = DefaultPeerTimeout
	}
	return &Aggregator{
		registry: reg,
		opts:     opts,
		logger:   logger.With().Str("component", "report").Logger(),
	}
}

// GetDownloadByGID returns the task with the given gid. Tasks that are
// uploading, archiving or extracting are never returned.
func (a *Aggregator) GetDownloadByGID(gid string) (mirror.Handle, bool) {
	var found mirror.Handle
	a.registry.View(func(handles []mirror.Handle) {
		for _, h := range handles {
			if !h.Status().Addressable() {
				continue
			}
			if h.GID() == gid {
				found = h
				return
			}
		}
	})
	return found, found != nil
}

// Render builds the status message for every task in insertion order.
// An empty registry renders the banner alone.
func (a *Aggregator) Render(ctx context.Context) string {
	var sb strings.Builder
	sb.WriteString(a.opts.Banner)

	a.registry.View(func(handles []mirror.Handle) {
		statuses := make([]mirror.Status, len(handles))
		for i, h := range handles {
			statuses[i] = h.Status()
		}
		peers := a.lookupPeers(ctx, handles, statuses)
		for i, h := range handles {
			a.writeTask(&sb, h, statuses[i], peers[i])
		}
	})

	return sb.String()
}

func (a *Aggregator) writeTask(sb *strings.Builder, h mirror.Handle, status mirror.Status, peers *mirror.PeerInfo) {
	sb.WriteString(fmt.Sprintf("<b>\n\n%s</b> <code>%s</code>", labelFileName, html.EscapeString(h.Name())))
	sb.WriteString(fmt.Sprintf("\n<b>%s</b> <i>%s</i>", labelStatus, status.Label()))

	if status.ShowsTransfer() {
		sb.WriteString(fmt.Sprintf("\n<code>%s %s</code>", format.HandleBar(h), h.Progress()))

		processed := h.ProcessedBytes()
		if status == mirror.StatusDownloading {
			sb.WriteString(fmt.Sprintf("\n<b>%s</b> %s of %s", labelDownloaded, format.ReadableSize(&processed), h.Size()))
		} else {
			sb.WriteString(fmt.Sprintf("\n<b>%s</b> %s of %s", labelUploaded, format.ReadableSize(&processed), h.Size()))
		}
		sb.WriteString(fmt.Sprintf("\n<b>%s</b> %s, \n<b>%s</b> %s ", labelSpeed, h.Speed(), labelETA, h.ETA()))

		if peers != nil {
			sb.WriteString(fmt.Sprintf("\n<b>%s</b> %d | <b>%s</b> %d", labelSeeders, peers.Seeders, labelPeers, peers.Connections))
		}
	}

	if status == mirror.StatusDownloading {
		sb.WriteString(fmt.Sprintf("\n<b>%s</b> <code>/%s %s</code>", labelStop, a.opts.CancelCommand, h.GID()))
	}
	sb.WriteString("\n\n")
}

type peerLookup struct {
	index int
	gid   string
	task  *async.Task
	info  mirror.PeerInfo
	err   error
}

// lookupPeers asks every torrent-backed task for its swarm counts at once.
// The lookups share a single PeerTimeout deadline, so the registry lock is
// held no longer than that however many of them hang. The result is indexed
// like handles; nil means the line is omitted.
func (a *Aggregator) lookupPeers(ctx context.Context, handles []mirror.Handle, statuses []mirror.Status) []*mirror.PeerInfo {
	results := make([]*mirror.PeerInfo, len(handles))

	ctx, cancel := context.WithTimeout(ctx, a.opts.PeerTimeout)
	defer cancel()

	var lookups []*peerLookup
	for i, h := range handles {
		if !statuses[i].ShowsTransfer() {
			continue
		}
		reporter, ok := mirror.AsPeerReporter(h)
		if !ok {
			continue
		}
		l := &peerLookup{index: i, gid: h.GID()}
		l.task = async.Go(func() {
			l.info, l.err = reporter.Peers(ctx)
		})
		lookups = append(lookups, l)
	}

	for _, l := range lookups {
		select {
		case <-l.task.Done():
		case <-ctx.Done():
			a.logger.Debug().Str("gid", l.gid).Err(ctx.Err()).Msg("Peer lookup timed out")
			continue
		}

		err := l.err
		if perr := l.task.Wait(); perr != nil {
			err = perr
		}
		if err != nil {
			a.logger.Debug().Str("gid", l.gid).Err(err).Msg("Peer lookup failed")
			continue
		}
		info := l.info
		results[l.index] = &info
	}
	return results
}
