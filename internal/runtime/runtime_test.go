package runtime

import (
	"context"
	"testing"

	cfgpkg "github.com/rzbill/lens/internal/config"
	"github.com/rzbill/lens/internal/debugevents"
	pebblestore "github.com/rzbill/lens/internal/storage/pebble"
	"github.com/rzbill/lens/internal/store"
)

func TestOpenCloseHealth(t *testing.T) {
	dir := t.TempDir()
	rt, err := Open(Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	defer rt.Close()
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestOpenStore(t *testing.T) {
	rt, err := Open(Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()

	if _, err := rt.OpenStore(t.TempDir()); err != store.ErrNoDebugData {
		t.Fatalf("empty logdir: err = %v, want ErrNoDebugData", err)
	}

	logdir := t.TempDir()
	w, err := debugevents.NewWriter(logdir, 1.0)
	if err != nil {
		t.Fatalf("writer: %v", err)
	}
	defer w.Close()
	if _, err := rt.OpenStore(logdir); err != nil {
		t.Fatalf("open store: %v", err)
	}
}

func TestIngestOptionsFromConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.PollIntervalMs = 500
	cfg.WatchDebounceMs = 25
	rt, err := Open(Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever, Config: cfg})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.Close()
	opts := rt.IngestOptions()
	if opts.PollInterval.Milliseconds() != 500 || opts.WatchDebounce.Milliseconds() != 25 {
		t.Fatalf("opts = %+v", opts)
	}
}
