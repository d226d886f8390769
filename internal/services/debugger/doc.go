// Package debuggersvc implements the debugger query facade over a logdir's
// debug-event data. It lazily constructs the event store on the first query,
// starts background ingestion, and exposes runs, execution digests, and
// recorded source files to the HTTP transport.
//
// Example:
//
//	svc := debuggersvc.New(rt, "./logdir")
//	defer svc.Close()
//	runs, _ := svc.Runs(ctx)
//	page, _ := svc.ExecutionDigests(ctx, debuggersvc.DefaultRunName, 0, -1)
package debuggersvc
