// Package debugevents implements the on-disk debug-event file-set format
// produced by instrumented program runs and consumed by the Lens store.
//
// # File sets
//
// A file set is three append-only files in a logdir sharing one prefix
// (lensdbg_events.<stamp>):
//   - .metadata      stream start record (wall time)
//   - .execution     one record per executed operation
//   - .source_files  one record per discovered source file
//
// # Framing
//
// Records are framed as: uvarint(len(payload)) | payload | crc32c(payload).
// Payloads are JSON. A truncated trailing frame is not an error: readers
// stop before it and resume from the same byte offset on the next pass,
// which is what makes incremental tailing of a live file safe.
//
// # API surface
//
//	fs, _ := Discover(logdir)
//	events, off, _ := TailExecutions(fs.ExecutionPath, 0)
//	// ... later, pick up only what was appended since:
//	more, off2, _ := TailExecutions(fs.ExecutionPath, off)
//
// Writer produces file sets for tests and the `lens gen` command.
package debugevents
