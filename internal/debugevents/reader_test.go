package debugevents

import (
	"os"
	"testing"
)

func newTestSet(t *testing.T) (*Writer, FileSet) {
	t.Helper()
	dir := t.TempDir()
	w, err := NewWriter(dir, 1000.5)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w, w.FileSet()
}

func TestDiscoverFindsNewestSet(t *testing.T) {
	dir := t.TempDir()
	w1, err := NewWriter(dir, 1.0)
	if err != nil {
		t.Fatalf("writer1: %v", err)
	}
	w1.Close()
	// Force distinct stamps.
	w2, err := NewWriter(dir, 2.0)
	if err != nil {
		t.Fatalf("writer2: %v", err)
	}
	defer w2.Close()
	if w1.FileSet().Stamp == w2.FileSet().Stamp {
		t.Skip("same-millisecond stamps, cannot distinguish sets")
	}

	fs, err := Discover(dir)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if fs.Stamp != w2.FileSet().Stamp {
		t.Fatalf("discovered stamp %s, want newest %s", fs.Stamp, w2.FileSet().Stamp)
	}
}

func TestDiscoverNoData(t *testing.T) {
	if _, err := Discover(t.TempDir()); err != ErrNoDebugData {
		t.Fatalf("err = %v, want ErrNoDebugData", err)
	}
	if _, err := Discover("/does/not/exist"); err != ErrNoDebugData {
		t.Fatalf("missing dir err = %v, want ErrNoDebugData", err)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	_, fs := newTestSet(t)
	m, ok, err := ReadMetadata(fs.MetadataPath)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	if !ok {
		t.Fatalf("metadata record missing")
	}
	if m.WallTime != 1000.5 {
		t.Fatalf("wall time %v", m.WallTime)
	}
}

func TestTailExecutionsIncremental(t *testing.T) {
	w, fs := newTestSet(t)

	for i := 0; i < 3; i++ {
		if err := w.AppendExecution(Execution{WallTime: float64(i), OpType: "MatMul"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	first, off, err := TailExecutions(fs.ExecutionPath, 0)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("got %d executions, want 3", len(first))
	}

	// Nothing new: offset stays put.
	again, off2, err := TailExecutions(fs.ExecutionPath, off)
	if err != nil {
		t.Fatalf("tail2: %v", err)
	}
	if len(again) != 0 || off2 != off {
		t.Fatalf("expected no new records, got %d (off %d -> %d)", len(again), off, off2)
	}

	// Append more and tail only the delta.
	if err := w.AppendExecution(Execution{WallTime: 9, OpType: "Relu", OutputTensorDeviceIDs: []string{"d0", "d1"}}); err != nil {
		t.Fatalf("append: %v", err)
	}
	delta, off3, err := TailExecutions(fs.ExecutionPath, off)
	if err != nil {
		t.Fatalf("tail3: %v", err)
	}
	if len(delta) != 1 || delta[0].OpType != "Relu" {
		t.Fatalf("delta = %+v", delta)
	}
	if off3 <= off {
		t.Fatalf("offset did not advance: %d -> %d", off, off3)
	}
	if len(delta[0].OutputTensorDeviceIDs) != 2 {
		t.Fatalf("device ids: %v", delta[0].OutputTensorDeviceIDs)
	}
}

func TestTailStopsBeforePartialFrame(t *testing.T) {
	w, fs := newTestSet(t)
	if err := w.AppendExecution(Execution{OpType: "Add"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	// Simulate a writer caught mid-append: raw half frame at the end.
	frame := EncodeFrame([]byte(`{"op_type":"Mul"}`))
	f, err := os.OpenFile(fs.ExecutionPath, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.Write(frame[:len(frame)/2]); err != nil {
		t.Fatalf("write: %v", err)
	}
	f.Close()

	events, off, err := TailExecutions(fs.ExecutionPath, 0)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(events) != 1 || events[0].OpType != "Add" {
		t.Fatalf("events = %+v", events)
	}

	// Completing the frame makes the record visible from the saved offset.
	f, err = os.OpenFile(fs.ExecutionPath, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, err := f.Write(frame[len(frame)/2:]); err != nil {
		t.Fatalf("write rest: %v", err)
	}
	f.Close()

	events, _, err = TailExecutions(fs.ExecutionPath, off)
	if err != nil {
		t.Fatalf("tail after completion: %v", err)
	}
	if len(events) != 1 || events[0].OpType != "Mul" {
		t.Fatalf("events = %+v", events)
	}
}

func TestTailSourceFiles(t *testing.T) {
	w, fs := newTestSet(t)
	src := SourceFile{HostName: "worker0", FilePath: "/src/model.py", Lines: []string{"import math", ""}}
	if err := w.AppendSourceFile(src); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, _, err := TailSourceFiles(fs.SourceFilesPath, 0)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d source files", len(got))
	}
	if got[0].HostName != "worker0" || got[0].FilePath != "/src/model.py" || len(got[0].Lines) != 2 {
		t.Fatalf("source file = %+v", got[0])
	}
}

func TestTailMissingFileIsEmpty(t *testing.T) {
	events, off, err := TailExecutions("/does/not/exist.execution", 0)
	if err != nil || len(events) != 0 || off != 0 {
		t.Fatalf("events=%v off=%d err=%v", events, off, err)
	}
}
