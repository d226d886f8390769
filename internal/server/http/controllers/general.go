package controllers

import (
	"net/http"

	"github.com/rzbill/lens/internal/runtime"
	debuggersvc "github.com/rzbill/lens/internal/services/debugger"
)

// GeneralController handles general HTTP endpoints like health and status.
type GeneralController struct {
	rt  *runtime.Runtime
	svc *debuggersvc.Service
}

// NewGeneralController creates a new general controller.
func NewGeneralController(rt *runtime.Runtime, svc *debuggersvc.Service) *GeneralController {
	return &GeneralController{rt: rt, svc: svc}
}

// RegisterRoutes registers general routes with the given mux.
//
// This method sets up HTTP endpoints for:
// - Health checks (/v1/healthz)
// - Store and ingestion status (/v1/status)
func (c *GeneralController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/healthz", c.handleHealth)
	mux.HandleFunc("/v1/status", c.handleStatus)
}

// handleHealth returns the health status of the service.
//
// Returns 200 OK with {"status": "ok"} if healthy, 503 Service Unavailable otherwise.
func (c *GeneralController) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := c.rt.CheckHealth(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_serving")
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleStatus reports the store lifecycle state and, when ingestion is
// running, the background loop status.
func (c *GeneralController) handleStatus(w http.ResponseWriter, r *http.Request) {
	state, reason := c.svc.StoreState()
	resp := statusResp{State: string(state), AbsentReason: string(reason)}
	if st, ok := c.svc.IngestionStatus(); ok {
		resp.Ingestion = &st
	}
	writeJSON(w, resp)
}
