package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/rzbill/lens/internal/debugevents"
	pebblestore "github.com/rzbill/lens/internal/storage/pebble"
	logpkg "github.com/rzbill/lens/pkg/log"
)

// ErrNoDebugData indicates the logdir holds no debug-event file set.
var ErrNoDebugData = debugevents.ErrNoDebugData

// ErrSourceFileNotFound is returned by SourceLines for an unknown
// (host, path) pair.
var ErrSourceFileNotFound = errors.New("store: source file not found")

// SourceFileKey identifies one recorded source file.
type SourceFileKey struct {
	HostName string `json:"host_name"`
	FilePath string `json:"file_path"`
}

// Store is an indexed, background-updatable view over one debug-event file
// set. One goroutine (the ingestion loop) appends; any number of goroutines
// may read concurrently. Digest and source-key indices are append-only:
// once an index is assigned it always refers to the same record.
type Store struct {
	db     *pebblestore.DB
	fs     debugevents.FileSet
	logger logpkg.Logger

	// writeMu serializes ingestion passes.
	writeMu sync.Mutex

	// mu guards the reader-visible state below and the notify channel.
	mu            sync.RWMutex
	numExec       uint64
	srcKeys       []SourceFileKey
	srcIndex      map[string]int
	startWallTime float64
	haveStart     bool
	execOff       int64
	srcOff        int64
	notifyCh      chan struct{}

	ingest ingestState
}

// Open validates that logdir holds a debug-event file set and loads any
// previously persisted index state from db. It performs blocking I/O and is
// intended to run synchronously on the first query path, once.
func Open(db *pebblestore.DB, logdir string, logger logpkg.Logger) (*Store, error) {
	fs, err := debugevents.Discover(logdir)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	s := &Store{
		db:       db,
		fs:       fs,
		logger:   logger.WithComponent("store"),
		srcIndex: make(map[string]int),
		notifyCh: make(chan struct{}),
	}
	if err := s.loadPersisted(); err != nil {
		return nil, err
	}
	return s, nil
}

// loadPersisted restores counts, offsets, source keys and the start time
// from the index so a restart does not re-read the whole event stream.
func (s *Store) loadPersisted() error {
	if b, err := s.db.Get(keyExecCount); err == nil {
		s.numExec = decodeBE8(b)
	}
	if b, err := s.db.Get(keyStartTime); err == nil && len(b) >= 8 {
		s.startWallTime = math.Float64frombits(decodeBE8(b))
		s.haveStart = true
	}
	if b, err := s.db.Get(keyOffset("execution")); err == nil {
		s.execOff = int64(decodeBE8(b))
	}
	if b, err := s.db.Get(keyOffset("source_files")); err == nil {
		s.srcOff = int64(decodeBE8(b))
	}

	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: keySrcKey(0),
		UpperBound: keySrcKey(^uint64(0)),
	})
	if err != nil {
		return err
	}
	defer iter.Close()
	for iter.First(); iter.Valid(); iter.Next() {
		var k SourceFileKey
		if err := json.Unmarshal(iter.Value(), &k); err != nil {
			return fmt.Errorf("store: corrupt source key record: %w", err)
		}
		s.srcIndex[srcMapKey(k.HostName, k.FilePath)] = len(s.srcKeys)
		s.srcKeys = append(s.srcKeys, k)
	}
	return nil
}

func srcMapKey(host, path string) string { return host + "\x00" + path }

// FileSet returns the discovered file set.
func (s *Store) FileSet() debugevents.FileSet { return s.fs }

// NumExecutions returns the number of digests ingested so far. The value is
// monotonically non-decreasing over the store's lifetime.
func (s *Store) NumExecutions() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.numExec
}

// StartingWallTime returns the wall time of the earliest ingested record.
// If no record has been ingested yet it waits for an ingestion pass to
// produce one, bounded by ctx, but never for full ingestion.
func (s *Store) StartingWallTime(ctx context.Context) (float64, error) {
	for {
		s.mu.RLock()
		have, t, ch := s.haveStart, s.startWallTime, s.notifyCh
		s.mu.RUnlock()
		if have {
			return t, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// ExecutionDigestRange returns digests in the half-open range [begin, end),
// in ingestion order. Bounds must satisfy begin <= end <= NumExecutions();
// the caller validates them against the count it observed. Reads go through
// a snapshot so a concurrently committing pass is never partially visible.
func (s *Store) ExecutionDigestRange(begin, end uint64) ([]debugevents.Execution, error) {
	if begin > end {
		return nil, fmt.Errorf("store: begin %d > end %d", begin, end)
	}
	out := make([]debugevents.Execution, 0, end-begin)
	if begin == end {
		return out, nil
	}
	snap := s.db.NewSnapshot()
	defer snap.Close()
	iter, err := snap.NewIter(&pebble.IterOptions{
		LowerBound: keyExec(begin),
		UpperBound: keyExecUpperBound(end),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	for iter.First(); iter.Valid(); iter.Next() {
		var d debugevents.Execution
		if err := json.Unmarshal(iter.Value(), &d); err != nil {
			return nil, fmt.Errorf("store: corrupt digest record: %w", err)
		}
		out = append(out, d)
	}
	if uint64(len(out)) != end-begin {
		return nil, fmt.Errorf("store: digest range [%d,%d) returned %d records", begin, end, len(out))
	}
	return out, nil
}

// SourceFileKeys returns the ordered (host, path) pairs discovered so far.
// Positions are stable: a key never changes index once assigned.
func (s *Store) SourceFileKeys() []SourceFileKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SourceFileKey, len(s.srcKeys))
	copy(out, s.srcKeys)
	return out
}

// SourceLines returns the recorded line content for one source file,
// reading through to the index.
func (s *Store) SourceLines(host, path string) ([]string, error) {
	s.mu.RLock()
	_, known := s.srcIndex[srcMapKey(host, path)]
	s.mu.RUnlock()
	if !known {
		return nil, ErrSourceFileNotFound
	}
	b, err := s.db.Get(keySrcContent(host, path))
	if err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return nil, ErrSourceFileNotFound
		}
		return nil, err
	}
	var lines []string
	if err := json.Unmarshal(b, &lines); err != nil {
		return nil, fmt.Errorf("store: corrupt source content: %w", err)
	}
	return lines, nil
}

// WaitForIngest blocks until an ingestion pass publishes new records or the
// timeout elapses. Returns true if woken by a pass.
func (s *Store) WaitForIngest(timeout time.Duration) bool {
	s.mu.RLock()
	ch := s.notifyCh
	s.mu.RUnlock()
	if timeout <= 0 {
		<-ch
		return true
	}
	select {
	case <-ch:
		return true
	case <-time.After(timeout):
		return false
	}
}
