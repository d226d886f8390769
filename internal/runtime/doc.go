// Package runtime wires storage, config, and the event store into a
// single-node Lens instance. It exposes Open/Close, basic health checks,
// and helpers used by higher-level services.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: cfg})
//	defer rt.Close()
//	// Health
//	_ = rt.CheckHealth(context.Background())
//	// Open the store over a logdir
//	st, _ := rt.OpenStore("./logdir")
//	_ = st
package runtime
