package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rzbill/lens/pkg/errdefs"
)

// Helper functions for common HTTP responses

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON writes a JSON response with the given data.
func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError maps a facade error onto an HTTP status. Validation
// failures (bad arguments, out-of-range indices) are client errors.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errdefs.IsInvalidArgument(err), errdefs.IsOutOfRange(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errdefs.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case errdefs.IsNotSupported(err):
		writeError(w, http.StatusNotImplemented, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// parseInt64 parses an integer query parameter, falling back to def for an
// empty value. ok is false for a malformed value.
func parseInt64(s string, def int64) (v int64, ok bool) {
	if s == "" {
		return def, true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// requiredRun extracts the run query parameter, writing the canonical 400
// response when it is missing.
func requiredRun(w http.ResponseWriter, r *http.Request) (string, bool) {
	run := r.URL.Query().Get("run")
	if run == "" {
		writeError(w, http.StatusBadRequest, "run parameter is not provided")
		return "", false
	}
	return run, true
}
