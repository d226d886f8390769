package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	clientcmd "github.com/rzbill/lens/internal/cmd/client"
	serverrun "github.com/rzbill/lens/internal/cmd/server"
	cfgpkg "github.com/rzbill/lens/internal/config"
	"github.com/rzbill/lens/internal/debugevents"
	pebblestore "github.com/rzbill/lens/internal/storage/pebble"
	logpkg "github.com/rzbill/lens/pkg/log"
	"github.com/spf13/cobra"
)

func main() {
	// Respect LENS_LOG_LEVEL for CLI output
	level := os.Getenv("LENS_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)

	// Redirect standard library logs (used by Pebble) to our logger
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "lens",
		Short: "Lens debugger-data CLI",
		Long:  "Lens serves recorded debugger-event data over HTTP. This CLI manages the server and queries running instances.",
	}

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start lens server",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			logdir, _ := cmd.Flags().GetString("logdir")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			httpAddr, _ := cmd.Flags().GetString("http")
			configPath, _ := cmd.Flags().GetString("config")
			fsyncMode, _ := cmd.Flags().GetString("fsync")
			fsyncIntervalMs, _ := cmd.Flags().GetInt("fsync-interval-ms")
			pollMs, _ := cmd.Flags().GetInt("poll-ms")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")

			mode := pebblestore.FsyncModeAlways
			switch fsyncMode {
			case "never":
				mode = pebblestore.FsyncModeNever
			case "interval":
				mode = pebblestore.FsyncModeInterval
			case "always":
				mode = pebblestore.FsyncModeAlways
			default:
				return fmt.Errorf("invalid --fsync; use always|interval|never")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return err
			}
			cfgpkg.FromEnv(&cfg)
			if pollMs > 0 {
				cfg.PollIntervalMs = pollMs
			}
			if logLevel != "" {
				_ = os.Setenv("LENS_LOG_LEVEL", logLevel)
			}
			if logFormat != "" {
				_ = os.Setenv("LENS_LOG_FORMAT", logFormat)
			}
			if err := serverrun.Run(ctx, serverrun.Options{
				LogDir:        logdir,
				DataDir:       dataDir,
				HTTPAddr:      httpAddr,
				Fsync:         mode,
				FsyncInterval: time.Duration(fsyncIntervalMs) * time.Millisecond,
				Config:        cfg,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			// brief delay to allow logs flush
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	serverStartCmd.Flags().String("logdir", os.Getenv("LENS_LOGDIR"), "Directory holding the debug-event file set")
	serverStartCmd.Flags().String("data-dir", "", "Data directory for the index (if not specified, uses OS-specific application data directory)")
	serverStartCmd.Flags().String("http", ":8080", "HTTP listen address")
	serverStartCmd.Flags().String("config", os.Getenv("LENS_CONFIG"), "Config file path (JSON or YAML)")
	serverStartCmd.Flags().String("fsync", "never", "Fsync mode for the index: always|interval|never")
	serverStartCmd.Flags().Int("fsync-interval-ms", 5, "When --fsync=interval, group-commit window in ms (default 5)")
	serverStartCmd.Flags().Int("poll-ms", 0, "Ingestion poll interval in ms (overrides config)")
	serverStartCmd.Flags().String("log-level", os.Getenv("LENS_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", os.Getenv("LENS_LOG_FORMAT"), "Log format: text|json (default text)")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	// gen: write a demo file set
	genCmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a demo debug-event file set",
		RunE: func(cmd *cobra.Command, args []string) error {
			logdir, _ := cmd.Flags().GetString("logdir")
			numExec, _ := cmd.Flags().GetInt("num-executions")
			numSrc, _ := cmd.Flags().GetInt("source-files")
			if logdir == "" {
				return fmt.Errorf("--logdir is required")
			}
			w, err := debugevents.NewWriter(logdir, float64(time.Now().UnixMilli())/1000.0)
			if err != nil {
				return err
			}
			defer w.Close()
			ops := []string{"MatMul", "Relu", "BiasAdd", "Softmax"}
			for i := 0; i < numExec; i++ {
				if err := w.AppendExecution(debugevents.Execution{
					WallTime:              float64(time.Now().UnixMilli()) / 1000.0,
					OpType:                ops[i%len(ops)],
					OutputTensorDeviceIDs: []string{"/device:CPU:0"},
				}); err != nil {
					return err
				}
			}
			host, _ := os.Hostname()
			for i := 0; i < numSrc; i++ {
				if err := w.AppendSourceFile(debugevents.SourceFile{
					HostName: host,
					FilePath: fmt.Sprintf("/demo/model_%d.py", i),
					Lines:    []string{"import numpy as np", "", "def forward(x):", "    return np.matmul(x, x)"},
				}); err != nil {
					return err
				}
			}
			if err := w.Sync(); err != nil {
				return err
			}
			fmt.Printf("wrote %d executions and %d source files to %s\n", numExec, numSrc, logdir)
			return nil
		},
	}
	genCmd.Flags().String("logdir", "", "Target directory for the generated file set")
	genCmd.Flags().Int("num-executions", 100, "Number of execution digests to write")
	genCmd.Flags().Int("source-files", 3, "Number of source files to write")
	rootCmd.AddCommand(genCmd)

	// debugger query commands (HTTP client)
	rootCmd.AddCommand(clientcmd.NewDebuggerCommand(apiURL))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func apiURL() string {
	if v := os.Getenv("LENS_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
