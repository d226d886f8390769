package debugevents

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Writer produces a debug-event file set. It is used by tests and by the
// `lens gen` command; real instrumentation runs emit the same format.
type Writer struct {
	mu  sync.Mutex
	set FileSet

	meta *os.File
	exec *os.File
	src  *os.File
}

// NewWriter creates a fresh file set in logdir and writes the stream-start
// metadata record with the given wall time.
func NewWriter(logdir string, startWallTime float64) (*Writer, error) {
	if err := os.MkdirAll(logdir, 0o755); err != nil {
		return nil, err
	}
	stamp := fmt.Sprintf("%013d", time.Now().UnixMilli())
	base := filepath.Join(logdir, Prefix+"."+stamp)
	set := FileSet{
		LogDir:          logdir,
		Stamp:           stamp,
		MetadataPath:    base + MetadataSuffix,
		ExecutionPath:   base + ExecutionSuffix,
		SourceFilesPath: base + SourceFilesSuffix,
	}

	w := &Writer{set: set}
	var err error
	if w.meta, err = create(set.MetadataPath); err != nil {
		return nil, err
	}
	if w.exec, err = create(set.ExecutionPath); err != nil {
		w.Close()
		return nil, err
	}
	if w.src, err = create(set.SourceFilesPath); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.append(w.meta, Metadata{WallTime: startWallTime}); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

func create(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// FileSet returns the paths of the files this writer produces.
func (w *Writer) FileSet() FileSet { return w.set }

// AppendExecution appends one execution record.
func (w *Writer) AppendExecution(e Execution) error {
	return w.append(w.exec, e)
}

// AppendSourceFile appends one source-file record.
func (w *Writer) AppendSourceFile(s SourceFile) error {
	return w.append(w.src, s)
}

func (w *Writer) append(f *os.File, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = f.Write(EncodeFrame(payload))
	return err
}

// Sync flushes all three files to stable storage.
func (w *Writer) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, f := range []*os.File{w.meta, w.exec, w.src} {
		if f == nil {
			continue
		}
		if err := f.Sync(); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying files.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var firstErr error
	for _, f := range []*os.File{w.meta, w.exec, w.src} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	w.meta, w.exec, w.src = nil, nil, nil
	return firstErr
}
