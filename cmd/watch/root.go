package watch

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"reflect"
	"syscall"

	"github.com/ValentinKolb/sKV/cmd/util"
	"github.com/ValentinKolb/sKV/lib/codec"
	"github.com/ValentinKolb/sKV/lib/persister"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var (
	// WatchCmd represents the watch command
	WatchCmd = &cobra.Command{
		Use:     "watch",
		Short:   "Watches a store file and logs every change",
		Long:    `Watches a store file and logs added, updated and removed keys whenever another process writes the file. Runs until interrupted.`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common store flags to the watch command
	util.SetupStoreFlags(WatchCmd)
}

func processConfig(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	util.SetupLogger()
	return nil
}

// run watches the store file until interrupted
func run(_ *cobra.Command, _ []string) error {
	conf := util.GetStoreConfig()

	c, err := codec.Get(conf.Codec)
	if err != nil {
		return err
	}

	// read-only view of the file, loaded fresh on every event
	p := persister.NewFilePersister(conf.File, c)

	current, err := p.Load()
	if err != nil {
		return err
	}
	slog.Info("watching store file", "file", conf.File, "codec", conf.Codec, "entries", len(current))

	// every save replaces the file by rename, a watch on the file itself
	// would be lost after the first write. Watch the directory and filter
	// for the file name instead.
	dir := filepath.Dir(conf.File)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if err := w.Add(dir); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	base := filepath.Base(conf.File)
	for {
		select {
		case <-ctx.Done():
			slog.Info("stopping watch")
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}

			next, err := p.Load()
			if err != nil {
				slog.Warn("store file unreadable", "err", err)
				continue
			}
			logDiff(current, next)
			current = next
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "err", err)
		}
	}
}

// logDiff logs added, updated and removed keys between two snapshots
func logDiff(before, after map[string]any) {
	for key, value := range after {
		previous, ok := before[key]
		switch {
		case !ok:
			slog.Info("key added", "key", key, "value", value)
		case !reflect.DeepEqual(previous, value):
			slog.Info("key updated", "key", key, "value", value)
		}
	}
	for key := range before {
		if _, ok := after[key]; !ok {
			slog.Info("key removed", "key", key)
		}
	}
}
