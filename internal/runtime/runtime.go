package runtime

import (
	"context"
	"errors"
	"time"

	cfgpkg "github.com/rzbill/lens/internal/config"
	pebblestore "github.com/rzbill/lens/internal/storage/pebble"
	"github.com/rzbill/lens/internal/store"
	logpkg "github.com/rzbill/lens/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	Logger        logpkg.Logger
}

// Runtime wires storage, config, and the event store for a single-node
// instance. The Pebble DB is shared: the store indexes into it and the
// runtime owns its lifecycle.
type Runtime struct {
	db     *pebblestore.DB
	config cfgpkg.Config
	logger logpkg.Logger
}

// Open initializes the underlying storage and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.DataDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
	})
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	return &Runtime{db: db, config: opts.Config, logger: logger}, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	it.Close()
	return nil
}

// OpenStore opens the event store over the given logdir. It returns
// store.ErrNoDebugData when the logdir holds no debug-event file set.
func (r *Runtime) OpenStore(logdir string) (*store.Store, error) {
	return store.Open(r.db, logdir, r.logger)
}

// IngestOptions derives the ingestion loop tunables from config.
func (r *Runtime) IngestOptions() store.IngestOptions {
	return store.IngestOptions{
		PollInterval:  time.Duration(r.config.PollIntervalMs) * time.Millisecond,
		WatchDebounce: time.Duration(r.config.WatchDebounceMs) * time.Millisecond,
	}
}

// DB exposes the underlying DB for advanced operations (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// Logger returns the runtime's base logger.
func (r *Runtime) Logger() logpkg.Logger { return r.logger }
