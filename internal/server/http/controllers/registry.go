package controllers

import (
	"net/http"

	"github.com/rzbill/lens/internal/runtime"
	debuggersvc "github.com/rzbill/lens/internal/services/debugger"
	logpkg "github.com/rzbill/lens/pkg/log"
)

// ControllerRegistry manages all HTTP controllers.
//
// It provides a centralized way to register all controller routes
// and manages the lifecycle of individual controllers.
type ControllerRegistry struct {
	general  *GeneralController
	debugger *DebuggerController
}

// NewControllerRegistry creates a new controller registry.
//
// It initializes all controllers with the provided runtime and service.
func NewControllerRegistry(rt *runtime.Runtime, svc *debuggersvc.Service, logger logpkg.Logger) *ControllerRegistry {
	return &ControllerRegistry{
		general:  NewGeneralController(rt, svc),
		debugger: NewDebuggerController(svc, rt.Config().DigestPageMax, logger),
	}
}

// RegisterAllRoutes registers all controller routes with the given mux.
//
// This method sets up all HTTP endpoints for the Lens service: general
// endpoints (health, status) and the debugger data endpoints.
func (r *ControllerRegistry) RegisterAllRoutes(mux *http.ServeMux) {
	r.general.RegisterRoutes(mux)
	r.debugger.RegisterRoutes(mux)
}
