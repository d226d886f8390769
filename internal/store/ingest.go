package store

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rzbill/lens/internal/debugevents"
	"github.com/rzbill/lens/pkg/id"
	logpkg "github.com/rzbill/lens/pkg/log"
)

var sessionIDs = id.NewGenerator()

// IngestOptions tunes the background ingestion loop.
type IngestOptions struct {
	// PollInterval triggers a pass even without filesystem notifications.
	PollInterval time.Duration
	// WatchDebounce batches bursts of file-change events into one pass.
	WatchDebounce time.Duration
}

// Status describes the ingestion loop for monitoring. The original design
// ran ingestion fire-and-forget with no error surface; here failures are
// captured and queryable instead of silently freezing the store.
type Status struct {
	SessionID  string    `json:"session_id"`
	Running    bool      `json:"running"`
	Passes     uint64    `json:"passes"`
	LastUpdate time.Time `json:"last_update"`
	LastError  string    `json:"last_error,omitempty"`
}

type ingestState struct {
	mu         sync.Mutex
	running    bool
	cancel     context.CancelFunc
	done       chan struct{}
	sessionID  string
	passes     uint64
	lastUpdate time.Time
	lastErr    error
}

// Update performs one incremental ingestion pass: it tails each event file
// from its persisted offset and appends the new records plus the advanced
// offsets in one atomic batch. Readers observe the new count only after the
// batch commits. Passes are serialized; Update is safe to call concurrently
// with every read operation.
func (s *Store) Update(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	numExec := s.numExec
	execOff := s.execOff
	srcOff := s.srcOff
	haveStart := s.haveStart
	s.mu.RUnlock()

	var (
		gotStart  bool
		startTime float64
	)
	if !haveStart {
		meta, ok, err := debugevents.ReadMetadata(s.fs.MetadataPath)
		if err != nil {
			return err
		}
		if ok {
			gotStart = true
			startTime = meta.WallTime
		}
	}

	execs, newExecOff, err := debugevents.TailExecutions(s.fs.ExecutionPath, execOff)
	if err != nil {
		return err
	}
	srcs, newSrcOff, err := debugevents.TailSourceFiles(s.fs.SourceFilesPath, srcOff)
	if err != nil {
		return err
	}
	if !gotStart && len(execs) == 0 && len(srcs) == 0 {
		return nil
	}

	b := s.db.NewBatch()
	defer b.Close()

	for i, e := range execs {
		val, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if err := b.Set(keyExec(numExec+uint64(i)), val, nil); err != nil {
			return err
		}
	}
	if len(execs) > 0 {
		if err := b.Set(keyExecCount, encodeBE8(numExec+uint64(len(execs))), nil); err != nil {
			return err
		}
		if err := b.Set(keyOffset("execution"), encodeBE8(uint64(newExecOff)), nil); err != nil {
			return err
		}
	}

	// Source files keep their first-discovery index; a re-emitted record
	// only refreshes the stored content.
	var newKeys []SourceFileKey
	newIndex := make(map[string]int)
	for _, src := range srcs {
		mk := srcMapKey(src.HostName, src.FilePath)
		_, seen := s.srcIndex[mk]
		if !seen {
			if _, pending := newIndex[mk]; !pending {
				idx := len(s.srcKeys) + len(newKeys)
				newIndex[mk] = idx
				newKeys = append(newKeys, SourceFileKey{HostName: src.HostName, FilePath: src.FilePath})
				keyRec, err := json.Marshal(SourceFileKey{HostName: src.HostName, FilePath: src.FilePath})
				if err != nil {
					return err
				}
				if err := b.Set(keySrcKey(uint64(idx)), keyRec, nil); err != nil {
					return err
				}
			}
		}
		content, err := json.Marshal(src.Lines)
		if err != nil {
			return err
		}
		if err := b.Set(keySrcContent(src.HostName, src.FilePath), content, nil); err != nil {
			return err
		}
	}
	if len(srcs) > 0 {
		if err := b.Set(keyOffset("source_files"), encodeBE8(uint64(newSrcOff)), nil); err != nil {
			return err
		}
	}

	if gotStart {
		if err := b.Set(keyStartTime, encodeBE8(math.Float64bits(startTime)), nil); err != nil {
			return err
		}
	}

	if err := s.db.CommitBatch(ctx, b); err != nil {
		return err
	}

	// Publish after commit so readers never see counts ahead of the index.
	s.mu.Lock()
	s.numExec = numExec + uint64(len(execs))
	s.execOff = newExecOff
	s.srcOff = newSrcOff
	for _, k := range newKeys {
		s.srcIndex[srcMapKey(k.HostName, k.FilePath)] = len(s.srcKeys)
		s.srcKeys = append(s.srcKeys, k)
	}
	if gotStart {
		s.startWallTime = startTime
		s.haveStart = true
	}
	close(s.notifyCh)
	s.notifyCh = make(chan struct{})
	s.mu.Unlock()

	s.logger.Debug("ingestion pass",
		logpkg.Int("new_digests", len(execs)),
		logpkg.Int("new_source_files", len(newKeys)),
		logpkg.Uint64("total_digests", numExec+uint64(len(execs))),
	)
	return nil
}

// StartIngestion launches the supervised background ingestion loop: one
// pass immediately, then one per filesystem notification (debounced) or
// poll tick. Errors are recorded in Status and retried on the next wake.
// Idempotent; the loop stops when ctx is cancelled or Close is called.
func (s *Store) StartIngestion(ctx context.Context, opts IngestOptions) {
	s.ingest.mu.Lock()
	defer s.ingest.mu.Unlock()
	if s.ingest.running {
		return
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.WatchDebounce <= 0 {
		opts.WatchDebounce = 100 * time.Millisecond
	}
	lctx, cancel := context.WithCancel(ctx)
	s.ingest.running = true
	s.ingest.cancel = cancel
	s.ingest.done = make(chan struct{})
	s.ingest.sessionID = sessionIDs.Next().String()
	go s.ingestLoop(lctx, opts, s.ingest.done, s.ingest.sessionID)
}

func (s *Store) ingestLoop(ctx context.Context, opts IngestOptions, done chan struct{}, session string) {
	defer close(done)
	logger := s.logger.With(logpkg.Str("session", session))

	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		if werr := watcher.Add(s.fs.LogDir); werr != nil {
			logger.Warn("logdir watch failed, polling only", logpkg.Err(werr))
			watcher.Close()
			watcher = nil
		}
	} else {
		logger.Warn("fsnotify unavailable, polling only", logpkg.Err(err))
		watcher = nil
	}
	if watcher != nil {
		defer watcher.Close()
	}

	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	logger.Info("ingestion started", logpkg.Str("logdir", s.fs.LogDir))
	for {
		err := s.Update(ctx)
		s.ingest.mu.Lock()
		if err != nil {
			s.ingest.lastErr = err
		} else {
			s.ingest.lastErr = nil
			s.ingest.passes++
			s.ingest.lastUpdate = time.Now()
		}
		s.ingest.mu.Unlock()
		if err != nil && ctx.Err() == nil {
			logger.Warn("ingestion pass failed", logpkg.Err(err))
		}

		select {
		case <-ctx.Done():
			logger.Info("ingestion stopped")
			return
		case ev, ok := <-watchEvents(watcher):
			if !ok {
				// Watcher closed underneath us; fall back to polling.
				watcher = nil
				continue
			}
			if !s.relevantEvent(ev) {
				continue
			}
			s.drainDebounce(ctx, watcher, opts.WatchDebounce)
		case werr, ok := <-watchErrors(watcher):
			if !ok {
				watcher = nil
				continue
			}
			// Left undrained this channel would wedge the watcher's
			// delivery goroutine. Polling still triggers passes.
			logger.Warn("logdir watch error", logpkg.Err(werr))
			continue
		case <-ticker.C:
		}
	}
}

// watchEvents returns a nil channel (blocks forever) when the watcher is
// unavailable, keeping the select above simple.
func watchEvents(w *fsnotify.Watcher) chan fsnotify.Event {
	if w == nil {
		return nil
	}
	return w.Events
}

func watchErrors(w *fsnotify.Watcher) chan error {
	if w == nil {
		return nil
	}
	return w.Errors
}

func (s *Store) relevantEvent(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
		return false
	}
	return strings.Contains(ev.Name, debugevents.Prefix)
}

// drainDebounce absorbs the burst of change events that accompanies an
// active writer so one pass covers all of them.
func (s *Store) drainDebounce(ctx context.Context, w *fsnotify.Watcher, window time.Duration) {
	timer := time.NewTimer(window)
	defer timer.Stop()
	for {
		select {
		case <-watchEvents(w):
		case <-timer.C:
			return
		case <-ctx.Done():
			return
		}
	}
}

// IngestionStatus reports the state of the background loop.
func (s *Store) IngestionStatus() Status {
	s.ingest.mu.Lock()
	defer s.ingest.mu.Unlock()
	st := Status{
		SessionID:  s.ingest.sessionID,
		Running:    s.ingest.running,
		Passes:     s.ingest.passes,
		LastUpdate: s.ingest.lastUpdate,
	}
	if s.ingest.lastErr != nil {
		st.LastError = s.ingest.lastErr.Error()
	}
	return st
}

// Close stops the ingestion loop and waits for it to exit. The Pebble DB is
// owned by the runtime and is not closed here.
func (s *Store) Close() {
	s.ingest.mu.Lock()
	cancel := s.ingest.cancel
	done := s.ingest.done
	s.ingest.running = false
	s.ingest.cancel = nil
	s.ingest.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}
