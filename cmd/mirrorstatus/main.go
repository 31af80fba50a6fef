// Command mirrorstatus renders the bot's status message for a snapshot of
// tasks, either once or continuously while the snapshot file changes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/mirrorbot/mirrorbot/internal/config"
	"github.com/mirrorbot/mirrorbot/internal/interval"
	"github.com/mirrorbot/mirrorbot/internal/links"
	"github.com/mirrorbot/mirrorbot/internal/logger"
	"github.com/mirrorbot/mirrorbot/internal/registry"
	"github.com/mirrorbot/mirrorbot/internal/report"
	"github.com/mirrorbot/mirrorbot/internal/snapshot"
	"github.com/mirrorbot/mirrorbot/internal/updater"
)

var errNotFound = errors.New("no cancellable task with that gid")

type options struct {
	configPath   string
	snapshotPath string
	watch        bool
	findGID      string
	classify     string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to config file")
	flag.StringVar(&opts.snapshotPath, "snapshot", "", "YAML file describing the tasks to render")
	flag.BoolVar(&opts.watch, "watch", false, "Re-render every status.interval until interrupted")
	flag.StringVar(&opts.findGID, "find", "", "Look up a cancellable task by gid")
	flag.StringVar(&opts.classify, "classify", "", "Print the link kind of a download source")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "mirrorstatus:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	if opts.classify != "" {
		fmt.Fprintln(stdout, links.Classify(opts.classify))
		return nil
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
		Output:     stderr,
	})
	defer log.Close()

	log.Debug().
		Str("version", config.Version).
		Str("snapshot", opts.snapshotPath).
		Msg("starting mirrorstatus")

	reg := registry.New()
	if opts.snapshotPath != "" {
		if err := reload(reg, opts.snapshotPath); err != nil {
			return err
		}
	}

	agg := report.New(reg, report.Options{
		Banner:        cfg.Bot.Banner,
		CancelCommand: cfg.Bot.CancelCommand,
		PeerTimeout:   cfg.Status.PeerTimeout,
	}, log.Logger)

	if opts.findGID != "" {
		h, ok := agg.GetDownloadByGID(opts.findGID)
		if !ok {
			return fmt.Errorf("%w: %s", errNotFound, opts.findGID)
		}
		fmt.Fprintf(stdout, "%s\t%s\t%s\n", h.GID(), h.Name(), h.Status())
		return nil
	}

	if !opts.watch {
		fmt.Fprintln(stdout, agg.Render(ctx))
		return nil
	}

	return watch(ctx, cfg, reg, agg, opts.snapshotPath, stdout, log.WithComponent("watch"))
}

// watch republishes the report to stdout whenever it changes, reloading the
// snapshot file on the same interval.
func watch(ctx context.Context, cfg *config.Config, reg *registry.Registry, agg *report.Aggregator,
	snapshotPath string, stdout io.Writer, log zerolog.Logger) error {
	publish := updater.PublisherFunc(func(_ context.Context, text string) error {
		_, err := fmt.Fprintf(stdout, "%s\n", text)
		return err
	})

	up := updater.New(agg, publish, cfg.Status.Interval, log)
	if _, err := up.RefreshNow(ctx); err != nil {
		return err
	}
	up.Start()
	defer up.Stop()

	if snapshotPath != "" {
		reloader := interval.New(cfg.Status.Interval, func() {
			if err := reload(reg, snapshotPath); err != nil {
				log.Warn().Err(err).Msg("Failed to reload snapshot")
			}
		}, interval.WithLogger(log))
		defer reloader.Stop()
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")
	return nil
}

// reload replaces the registry contents with the tasks in path, keeping the
// position of tasks that are still present.
func reload(reg *registry.Registry, path string) error {
	handles, err := snapshot.LoadFile(path)
	if err != nil {
		return err
	}

	keep := make(map[string]bool, len(handles))
	for _, h := range handles {
		keep[h.GID()] = true
	}
	for _, h := range reg.Snapshot() {
		if !keep[h.GID()] {
			reg.Remove(h.GID())
		}
	}
	for _, h := range handles {
		reg.Put(h)
	}
	return nil
}
