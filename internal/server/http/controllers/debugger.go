package controllers

import (
	"net/http"

	debuggersvc "github.com/rzbill/lens/internal/services/debugger"
	logpkg "github.com/rzbill/lens/pkg/log"
)

// DebuggerController serves the debugger data endpoints consumed by the
// frontend: run listing, execution digests, and recorded source files.
type DebuggerController struct {
	svc    *debuggersvc.Service
	logger logpkg.Logger
	// pageMax caps digests read per tail wake; 0 means unbounded.
	pageMax int64
}

// NewDebuggerController creates a new debugger controller.
func NewDebuggerController(svc *debuggersvc.Service, pageMax int, logger logpkg.Logger) *DebuggerController {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	return &DebuggerController{svc: svc, logger: logger.WithComponent("debugger-http"), pageMax: int64(pageMax)}
}

// RegisterRoutes registers debugger routes with the given mux.
func (c *DebuggerController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/debugger/runs", c.handleRuns)
	mux.HandleFunc("/v1/debugger/execution/digests", c.handleExecutionDigests)
	mux.HandleFunc("/v1/debugger/source_files/list", c.handleSourceFileList)
	mux.HandleFunc("/v1/debugger/source_files/file", c.handleSourceFile)
	mux.HandleFunc("/v1/debugger/tail", c.handleTail)
}

// handleRuns lists runs with their start timestamps. An absent logdir
// yields an empty object, not an error.
func (c *DebuggerController) handleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := c.svc.Runs(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make(map[string]runInfo, len(runs))
	for run := range runs {
		start, err := c.svc.FirstEventTimestamp(r.Context(), run)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		resp[run] = runInfo{StartTime: start}
	}
	writeJSON(w, resp)
}

// handleExecutionDigests serves one page of execution digests.
//
// Query parameters: run (required), begin (default 0), end (default -1,
// meaning all known digests), filter (optional CEL expression applied to
// the returned page).
func (c *DebuggerController) handleExecutionDigests(w http.ResponseWriter, r *http.Request) {
	run, ok := requiredRun(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	begin, ok := parseInt64(q.Get("begin"), 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid begin parameter")
		return
	}
	end, ok := parseInt64(q.Get("end"), -1)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid end parameter")
		return
	}
	filter, err := debuggersvc.NewFilter(q.Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter: "+err.Error())
		return
	}

	page, err := c.svc.ExecutionDigests(r.Context(), run, begin, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if page == nil {
		writeJSON(w, nil)
		return
	}
	writeJSON(w, debuggersvc.FilterDigests(filter, page))
}

// handleSourceFileList serves the ordered [host, path] pairs of the
// recorded source files.
func (c *DebuggerController) handleSourceFileList(w http.ResponseWriter, r *http.Request) {
	run, ok := requiredRun(w, r)
	if !ok {
		return
	}
	keys, err := c.svc.SourceFileList(r.Context(), run)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if keys == nil {
		writeJSON(w, nil)
		return
	}
	pairs := make([][2]string, len(keys))
	for i, k := range keys {
		pairs[i] = [2]string{k.HostName, k.FilePath}
	}
	writeJSON(w, pairs)
}

// handleSourceFile serves one source file's content by positional index.
func (c *DebuggerController) handleSourceFile(w http.ResponseWriter, r *http.Request) {
	run, ok := requiredRun(w, r)
	if !ok {
		return
	}
	indexStr := r.URL.Query().Get("index")
	if indexStr == "" {
		writeError(w, http.StatusBadRequest, "index parameter is not provided")
		return
	}
	index, ok := parseInt64(indexStr, 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid index parameter")
		return
	}
	content, err := c.svc.SourceLines(r.Context(), run, int(index))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, content)
}
