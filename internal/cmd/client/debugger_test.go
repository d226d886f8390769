package client

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newFakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/debugger/runs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"__default_debugger_run__":{"start_time":123.5}}`))
	})
	mux.HandleFunc("/v1/debugger/execution/digests", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("run") == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"run parameter is not provided"}`))
			return
		}
		_, _ = w.Write([]byte(`{"begin":0,"end":1,"num_digests":1,"execution_digests":[{"op_type":"MatMul"}]}`))
	})
	mux.HandleFunc("/v1/debugger/tail", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: {\"index\":0,\"digest\":{\"op_type\":\"A\"}}\n\n"))
		_, _ = w.Write([]byte("data: {\"index\":1,\"digest\":{\"op_type\":\"B\"}}\n\n"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func runCommand(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	root := NewRoot(func() string { return srv.URL })
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRunsCommand(t *testing.T) {
	srv := newFakeServer(t)
	out, err := runCommand(t, srv, "debugger", "runs")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "__default_debugger_run__") || !strings.Contains(out, "123.5") {
		t.Fatalf("output = %q", out)
	}
}

func TestDigestsCommand(t *testing.T) {
	srv := newFakeServer(t)
	out, err := runCommand(t, srv, "debugger", "digests", "--begin", "0", "--end", "1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "MatMul") {
		t.Fatalf("output = %q", out)
	}
}

func TestDigestsCommandServerError(t *testing.T) {
	srv := newFakeServer(t)
	_, err := runCommand(t, srv, "debugger", "digests", "--run", "")
	if err == nil || !strings.Contains(err.Error(), "run parameter is not provided") {
		t.Fatalf("err = %v", err)
	}
}

func TestTailCommandLimit(t *testing.T) {
	srv := newFakeServer(t)
	out, err := runCommand(t, srv, "debugger", "tail", "--limit", "1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, `"op_type":"A"`) || strings.Contains(out, `"op_type":"B"`) {
		t.Fatalf("output = %q", out)
	}
}
