// Package client contains Cobra CLI commands for Lens.
package client

import (
	"bufio"
	"fmt"
	"net/url"
	"strings"

	debuggersvc "github.com/rzbill/lens/internal/services/debugger"
	"github.com/spf13/cobra"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// NewDebuggerCommand constructs the `debugger` command group and subcommands.
func NewDebuggerCommand(baseURL BaseURLFunc) *cobra.Command {
	dbgCmd := &cobra.Command{Use: "debugger", Short: "Debugger data queries", Aliases: []string{"dbg"}}

	dbgCmd.AddCommand(
		newRunsCommand(baseURL),
		newDigestsCommand(baseURL),
		newSourcesCommand(baseURL),
		newSourceCommand(baseURL),
		newTailCommand(baseURL),
		newStatusCommand(baseURL),
	)

	return dbgCmd
}

// newRunsCommand constructs the `debugger runs` subcommand.
func newRunsCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List debugger runs and their start times",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return getAndPrint(cmd, baseURL()+"/v1/debugger/runs")
		},
	}
}

// newDigestsCommand constructs the `debugger digests` subcommand.
func newDigestsCommand(baseURL BaseURLFunc) *cobra.Command {
	digestsCmd := &cobra.Command{
		Use:   "digests",
		Short: "Fetch a page of execution digests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			run, _ := cmd.Flags().GetString("run")
			begin, _ := cmd.Flags().GetInt64("begin")
			end, _ := cmd.Flags().GetInt64("end")
			filter, _ := cmd.Flags().GetString("filter")

			q := url.Values{}
			q.Set("run", run)
			q.Set("begin", fmt.Sprintf("%d", begin))
			q.Set("end", fmt.Sprintf("%d", end))
			if filter != "" {
				q.Set("filter", filter)
			}
			return getAndPrint(cmd, baseURL()+"/v1/debugger/execution/digests?"+q.Encode())
		},
	}
	digestsCmd.Flags().String("run", debuggersvc.DefaultRunName, "Run name")
	digestsCmd.Flags().Int64("begin", 0, "Begin index (inclusive)")
	digestsCmd.Flags().Int64("end", -1, "End index (exclusive, -1 = all)")
	digestsCmd.Flags().String("filter", "", "CEL filter, e.g. 'op_type.startsWith(\"MatMul\")'")
	return digestsCmd
}

// newSourcesCommand constructs the `debugger sources` subcommand.
func newSourcesCommand(baseURL BaseURLFunc) *cobra.Command {
	sourcesCmd := &cobra.Command{
		Use:   "sources",
		Short: "List recorded source files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			run, _ := cmd.Flags().GetString("run")
			return getAndPrint(cmd, baseURL()+"/v1/debugger/source_files/list?run="+url.QueryEscape(run))
		},
	}
	sourcesCmd.Flags().String("run", debuggersvc.DefaultRunName, "Run name")
	return sourcesCmd
}

// newSourceCommand constructs the `debugger source` subcommand.
func newSourceCommand(baseURL BaseURLFunc) *cobra.Command {
	sourceCmd := &cobra.Command{
		Use:   "source",
		Short: "Fetch one source file's recorded content by index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			run, _ := cmd.Flags().GetString("run")
			index, _ := cmd.Flags().GetInt("index")
			q := url.Values{}
			q.Set("run", run)
			q.Set("index", fmt.Sprintf("%d", index))
			return getAndPrint(cmd, baseURL()+"/v1/debugger/source_files/file?"+q.Encode())
		},
	}
	sourceCmd.Flags().String("run", debuggersvc.DefaultRunName, "Run name")
	sourceCmd.Flags().Int("index", 0, "Positional index in the source file list")
	return sourceCmd
}

// newTailCommand constructs the `debugger tail` subcommand. It follows the
// server's SSE stream and prints one JSON object per newly ingested digest.
func newTailCommand(baseURL BaseURLFunc) *cobra.Command {
	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Stream newly ingested execution digests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			run, _ := cmd.Flags().GetString("run")
			filter, _ := cmd.Flags().GetString("filter")
			limit, _ := cmd.Flags().GetInt("limit")

			q := url.Values{}
			q.Set("run", run)
			if filter != "" {
				q.Set("filter", filter)
			}
			resp, err := httpGet(cmd.Context(), baseURL()+"/v1/debugger/tail?"+q.Encode())
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != 200 {
				return responseError(resp)
			}

			n := 0
			scanner := bufio.NewScanner(resp.Body)
			for scanner.Scan() {
				line := scanner.Text()
				if !strings.HasPrefix(line, "data: ") {
					continue
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimPrefix(line, "data: "))
				n++
				if limit > 0 && n >= limit {
					return nil
				}
			}
			return scanner.Err()
		},
	}
	tailCmd.Flags().String("run", debuggersvc.DefaultRunName, "Run name")
	tailCmd.Flags().String("filter", "", "CEL filter (server-side)")
	tailCmd.Flags().Int("limit", 0, "Stop after N digests (0 = infinite)")
	return tailCmd
}

// newStatusCommand constructs the `debugger status` subcommand.
func newStatusCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show store and ingestion status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return getAndPrint(cmd, baseURL()+"/v1/status")
		},
	}
}
