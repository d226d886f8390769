package debuggersvc

import (
	"github.com/rzbill/lens/internal/debugevents"
)

const (
	// DefaultRunName is the single reserved run name. A logdir holds at most
	// one debug-event file set, so runs and file sets are one-to-one.
	DefaultRunName = "__default_debugger_run__"

	// Category is the fixed category label under which a run's tags are
	// grouped in the Runs mapping.
	Category = "debugger-v2"
)

// AbsentReason records why store construction concluded "no store".
type AbsentReason string

const (
	AbsentNoData       AbsentReason = "no_data"
	AbsentNotSupported AbsentReason = "not_supported"
)

// State is the facade's store lifecycle state.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateAbsent        State = "absent"
	StateActive        State = "active"
)

// DigestPage is one bounded slice of the execution digest stream together
// with the total count observed when the page was cut.
type DigestPage struct {
	Begin            int64                   `json:"begin"`
	End              int64                   `json:"end"`
	NumDigests       int64                   `json:"num_digests"`
	ExecutionDigests []debugevents.Execution `json:"execution_digests"`
}

// SourceFileContent is the recorded content of one instrumented source file.
type SourceFileContent struct {
	HostName string   `json:"host_name"`
	FilePath string   `json:"file_path"`
	Lines    []string `json:"lines"`
}
