// Package httpserver provides the JSON gateway for Lens with SSE tailing
// of execution digests and endpoints mirroring the debugger data surface.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeNever, Config: config.Default()})
//	svc := debuggersvc.New(rt, "./logdir")
//	s := httpserver.New(rt, svc, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":8080")
package httpserver
