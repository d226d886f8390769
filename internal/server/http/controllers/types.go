package controllers

import (
	"github.com/rzbill/lens/internal/store"
)

// Common response types for HTTP controllers

// runInfo is the per-run entry of the runs listing.
type runInfo struct {
	StartTime float64 `json:"start_time"`
}

// statusResp reports the store lifecycle state plus, when a store is
// active, the background ingestion status.
type statusResp struct {
	State        string        `json:"state"`
	AbsentReason string        `json:"absent_reason,omitempty"`
	Ingestion    *store.Status `json:"ingestion,omitempty"`
}
