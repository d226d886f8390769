package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/rzbill/lens/internal/runtime"
	"github.com/rzbill/lens/internal/server/http/controllers"
	debuggersvc "github.com/rzbill/lens/internal/services/debugger"
	"github.com/rzbill/lens/internal/ui"
	"github.com/rzbill/lens/pkg/id"
	logpkg "github.com/rzbill/lens/pkg/log"
)

// Server is the JSON/SSE gateway consumed by the frontend and the CLI
// client commands.
type Server struct {
	rt     *runtime.Runtime
	svc    *debuggersvc.Service
	logger logpkg.Logger
	srv    *http.Server
	lis    net.Listener
}

var requestIDs = id.NewGenerator()

// New builds the server and registers all routes.
func New(rt *runtime.Runtime, svc *debuggersvc.Service, logger logpkg.Logger) *Server {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	logger = logger.WithComponent("http")
	mux := http.NewServeMux()
	s := &Server{rt: rt, svc: svc, logger: logger}
	s.srv = &http.Server{Handler: cors(s.requestID(mux))}

	registry := controllers.NewControllerRegistry(rt, svc, logger)
	registry.RegisterAllRoutes(mux)
	mux.Handle("/", http.FileServer(ui.FS()))
	return s
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	s.logger.Info("http listening", logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Addr returns the bound listener address, or "" before ListenAndServe.
func (s *Server) Addr() string {
	if s.lis == nil {
		return ""
	}
	return s.lis.Addr().String()
}

func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestID tags every request with a generated ID, echoed in the response
// header and attached to request logs.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-ID")
		if rid == "" {
			rid = requestIDs.Next().String()
		}
		w.Header().Set("X-Request-ID", rid)
		s.logger.Debug("request",
			logpkg.RequestID(rid),
			logpkg.Str("method", r.Method),
			logpkg.Str("path", r.URL.Path),
		)
		next.ServeHTTP(w, r)
	})
}
