// Package client implements the Cobra commands that query a running Lens
// server over its HTTP API. The base URL comes from the caller (typically
// LENS_HTTP or a default of http://127.0.0.1:8080).
package client
