package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	debuggersvc "github.com/rzbill/lens/internal/services/debugger"
	logpkg "github.com/rzbill/lens/pkg/log"
)

// sseWriter formats JSON values as Server-Sent Events and flushes after
// each event so clients see digests as soon as they are ingested.
type sseWriter struct {
	w http.ResponseWriter
}

func (s sseWriter) send(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := s.w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := s.w.Write(b); err != nil {
		return err
	}
	if _, err := s.w.Write([]byte("\n\n")); err != nil {
		return err
	}
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// tailEvent is one streamed digest with its absolute stream index.
type tailEvent struct {
	Index  int64 `json:"index"`
	Digest any   `json:"digest"`
}

// handleTail streams newly ingested execution digests as SSE events until
// the client disconnects. An optional CEL filter narrows the stream.
func (c *DebuggerController) handleTail(w http.ResponseWriter, r *http.Request) {
	run, ok := requiredRun(w, r)
	if !ok {
		return
	}
	filter, err := debuggersvc.NewFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter: "+err.Error())
		return
	}
	// Resolve the starting cursor before switching to the event stream so
	// parameter errors still produce a JSON 400.
	page, err := c.svc.ExecutionDigests(r.Context(), run, 0, 0)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if page == nil {
		writeError(w, http.StatusBadRequest, "unknown run: "+run)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	out := sseWriter{w: w}
	cursor := page.NumDigests
	for {
		// Bound each read so one wake never buffers an unbounded backlog.
		end := int64(-1)
		if c.pageMax > 0 {
			end = cursor + c.pageMax
			if total := page.NumDigests; end > total {
				end = -1
			}
		}
		next, err := c.svc.ExecutionDigests(r.Context(), run, cursor, end)
		if err != nil {
			c.logger.Warn("tail read failed", logpkg.Err(err))
			return
		}
		for i, d := range next.ExecutionDigests {
			idx := next.Begin + int64(i)
			if !filter.Eval(idx, d) {
				continue
			}
			if err := out.send(tailEvent{Index: idx, Digest: d}); err != nil {
				return
			}
		}
		page = next
		cursor = next.End

		if r.Context().Err() != nil {
			return
		}
		if cursor < next.NumDigests {
			// More backlog to drain before waiting for new records.
			continue
		}
		c.svc.WaitForIngest(time.Second)
		if r.Context().Err() != nil {
			return
		}
	}
}
