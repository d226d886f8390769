package debuggersvc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rzbill/lens/internal/debugevents"
	"github.com/rzbill/lens/internal/runtime"
	"github.com/rzbill/lens/internal/store"
	"github.com/rzbill/lens/pkg/errdefs"
	logpkg "github.com/rzbill/lens/pkg/log"
)

// EventStore is the minimum surface the facade requires to treat a logdir
// as readable.
type EventStore interface {
	StartingWallTime(ctx context.Context) (float64, error)
	StartIngestion(ctx context.Context, opts store.IngestOptions)
	Close()
}

// DigestStore adds the execution-digest and source-file surfaces. A store
// that opens but does not implement it is treated as "not supported" rather
// than a hard error: the capability is probed explicitly, never inferred
// from error strings.
type DigestStore interface {
	EventStore
	NumExecutions() uint64
	ExecutionDigestRange(begin, end uint64) ([]debugevents.Execution, error)
	SourceFileKeys() []store.SourceFileKey
	SourceLines(host, path string) ([]string, error)
	IngestionStatus() store.Status
	WaitForIngest(timeout time.Duration) bool
}

// Service is the query facade over one logdir's debug-event data. The store
// underneath is built lazily, at most once, synchronously on the first query
// that needs it; construction failure for "no data" or "missing capability"
// is cached as a terminal absent state so later queries do not retry.
type Service struct {
	logger     logpkg.Logger
	logdir     string
	opener     func() (EventStore, error)
	ingestOpts store.IngestOptions

	// bgCtx bounds the background ingestion loop to the service lifetime,
	// not to the request that happened to trigger construction.
	bgCtx    context.Context
	bgCancel context.CancelFunc

	mu     sync.Mutex
	state  State
	reason AbsentReason
	st     DigestStore
}

// New returns a Service over the given logdir, using a default logger.
func New(rt *runtime.Runtime, logdir string) *Service {
	return NewWithLogger(rt, logdir, rt.Logger())
}

// NewWithLogger constructs the service with an injected logger.
func NewWithLogger(rt *runtime.Runtime, logdir string, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		logger: logger.WithComponent("debugger"),
		logdir: logdir,
		opener: func() (EventStore, error) {
			st, err := rt.OpenStore(logdir)
			if err != nil {
				return nil, err
			}
			return st, nil
		},
		ingestOpts: rt.IngestOptions(),
		bgCtx:      ctx,
		bgCancel:   cancel,
		state:      StateUninitialized,
	}
}

// ensure runs the at-most-once store construction and returns the active
// store, or nil when the logdir is in the terminal absent state.
func (s *Service) ensure() (DigestStore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateActive:
		return s.st, nil
	case StateAbsent:
		return nil, nil
	}

	es, err := s.opener()
	if err != nil {
		if errors.Is(err, store.ErrNoDebugData) {
			s.state, s.reason = StateAbsent, AbsentNoData
			s.logger.Info("no debug data in logdir", logpkg.Str("logdir", s.logdir))
			return nil, nil
		}
		// Transient failure (I/O, corrupt index): stay uninitialized so the
		// next query retries.
		return nil, err
	}
	ds, ok := es.(DigestStore)
	if !ok {
		es.Close()
		s.state, s.reason = StateAbsent, AbsentNotSupported
		s.logger.Warn("store lacks the digest surface, treating logdir as unsupported",
			logpkg.Str("logdir", s.logdir))
		return nil, nil
	}

	ds.StartIngestion(s.bgCtx, s.ingestOpts)
	s.state = StateActive
	s.st = ds
	s.logger.Info("store active", logpkg.Str("logdir", s.logdir))
	return ds, nil
}

// Runs returns the known runs mapped to category → tag names. The reserved
// run appears as soon as a store is active, with the fixed category and a
// tag list that stays empty until tags are defined. An absent logdir yields
// an empty mapping, not an error.
func (s *Service) Runs(ctx context.Context) (map[string]map[string][]string, error) {
	ds, err := s.ensure()
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return map[string]map[string][]string{}, nil
	}
	return map[string]map[string][]string{
		DefaultRunName: {Category: {}},
	}, nil
}

// FirstEventTimestamp returns the wall time of the earliest record of the
// run. It may block on the store for the first record, bounded by ctx, but
// never waits for full ingestion.
func (s *Service) FirstEventTimestamp(ctx context.Context, run string) (float64, error) {
	ds, err := s.ensure()
	if err != nil {
		return 0, err
	}
	if ds == nil {
		return 0, errdefs.NotFoundf("no debugger runs exist")
	}
	if run != DefaultRunName {
		return 0, errdefs.InvalidArgumentf("Expected run name to be %s, but got %s", DefaultRunName, run)
	}
	return ds.StartingWallTime(ctx)
}

// ExecutionDigests returns the digest page [begin, end) plus the total
// count known when the page was cut. end < 0 means "all remaining" and is
// resolved against the current total. An unknown run yields (nil, nil).
func (s *Service) ExecutionDigests(ctx context.Context, run string, begin, end int64) (*DigestPage, error) {
	ds, err := s.ensure()
	if err != nil {
		return nil, err
	}
	if ds == nil || run != DefaultRunName {
		return nil, nil
	}

	total := int64(ds.NumExecutions())
	if begin < 0 {
		return nil, errdefs.OutOfRangef("Invalid begin index (%d)", begin)
	}
	if end > total {
		return nil, errdefs.OutOfRangef("end index (%d) out of bounds (%d)", end, total)
	}
	if end >= 0 && end < begin {
		return nil, errdefs.InvalidArgumentf("end index (%d) is less than begin index (%d)", end, begin)
	}
	if end < 0 {
		end = total
	}
	lo, hi := begin, end
	if lo > hi {
		lo = hi
	}
	digests, err := ds.ExecutionDigestRange(uint64(lo), uint64(hi))
	if err != nil {
		return nil, err
	}
	return &DigestPage{
		Begin:            begin,
		End:              end,
		NumDigests:       total,
		ExecutionDigests: digests,
	}, nil
}

// SourceFileList returns the ordered (host, path) keys of the recorded
// source files, or nil for an unknown run.
func (s *Service) SourceFileList(ctx context.Context, run string) ([]store.SourceFileKey, error) {
	ds, err := s.ensure()
	if err != nil {
		return nil, err
	}
	if ds == nil || run != DefaultRunName {
		return nil, nil
	}
	return ds.SourceFileKeys(), nil
}

// SourceLines returns one source file's content by its positional index in
// the SourceFileList order, or nil for an unknown run.
func (s *Service) SourceLines(ctx context.Context, run string, index int) (*SourceFileContent, error) {
	ds, err := s.ensure()
	if err != nil {
		return nil, err
	}
	if ds == nil || run != DefaultRunName {
		return nil, nil
	}
	keys := ds.SourceFileKeys()
	if index < 0 || index >= len(keys) {
		return nil, errdefs.OutOfRangef("There is no source-code file at index %d", index)
	}
	lines, err := ds.SourceLines(keys[index].HostName, keys[index].FilePath)
	if err != nil {
		return nil, err
	}
	return &SourceFileContent{
		HostName: keys[index].HostName,
		FilePath: keys[index].FilePath,
		Lines:    lines,
	}, nil
}

// PluginRunToTagToContent is part of the generic multiplexer surface but is
// not meaningful for debug-event data.
func (s *Service) PluginRunToTagToContent(plugin string) (map[string]map[string][]byte, error) {
	return nil, errdefs.NotSupportedf("PluginRunToTagToContent is not supported (plugin %q)", plugin)
}

// StoreState reports the lifecycle state and, when absent, the reason.
func (s *Service) StoreState() (State, AbsentReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.reason
}

// IngestionStatus reports the background loop status of the active store.
// ok is false when no store is active.
func (s *Service) IngestionStatus() (store.Status, bool) {
	s.mu.Lock()
	ds := s.st
	s.mu.Unlock()
	if ds == nil {
		return store.Status{}, false
	}
	return ds.IngestionStatus(), true
}

// WaitForIngest blocks until the active store publishes new records or the
// timeout elapses. Returns false immediately when no store is active.
func (s *Service) WaitForIngest(timeout time.Duration) bool {
	s.mu.Lock()
	ds := s.st
	s.mu.Unlock()
	if ds == nil {
		return false
	}
	return ds.WaitForIngest(timeout)
}

// Close stops background ingestion. Queries against a closed service keep
// reading whatever was ingested.
func (s *Service) Close() {
	s.bgCancel()
	s.mu.Lock()
	ds := s.st
	s.mu.Unlock()
	if ds != nil {
		ds.Close()
	}
}
