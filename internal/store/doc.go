// Package store implements the Lens event store: an incrementally ingested,
// offset-indexed view over one debug-event file set, persisted in Pebble.
//
// # Overview
//
// The event stream can be too large to materialize, so records are indexed
// by position as they are ingested and served through bounded range reads.
// A single background loop appends; readers run on caller goroutines and
// always observe a consistent, monotonically growing view: counts are
// published only after the index batch commits, and range reads go through
// Pebble snapshots.
//
// # API surface (internal)
//
//	st, _ := store.Open(db, logdir, logger)
//	st.StartIngestion(ctx, store.IngestOptions{PollInterval: 2 * time.Second})
//	defer st.Close()
//
//	n := st.NumExecutions()
//	digests, _ := st.ExecutionDigestRange(0, n)
//	keys := st.SourceFileKeys()
//	lines, _ := st.SourceLines(keys[0].HostName, keys[0].FilePath)
//
//	// Blocking wait/notify, used by the SSE tail route
//	woke := st.WaitForIngest(200 * time.Millisecond)
//	_ = woke
package store
