// Package editor serves the browser editor's JSON API and the workspace
// files it previews.
package editor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/alexanderramin/showcase/internal/logging"
	"github.com/alexanderramin/showcase/internal/service"
	"github.com/alexanderramin/showcase/internal/session"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// Options configures the editor server.
type Options struct {
	Addr string
	// StaticDir is served for every non-API path.
	StaticDir string
	// ResourcesDir receives uploads under <lang>/.
	ResourcesDir string
	Locales      []string
	// MaxUploadBytes caps upload bodies. Zero means 64 MiB.
	MaxUploadBytes int64
}

type Server struct {
	opts     Options
	engine   *gin.Engine
	catalogs service.CatalogService
	builds   service.BuildService
	sessions *session.Store
	log      *logging.Logger
}

func NewServer(
	opts Options,
	catalogs service.CatalogService,
	builds service.BuildService,
	sessions *session.Store,
	log *logging.Logger,
) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 64 << 20
	}
	s := &Server{
		opts:     opts,
		catalogs: catalogs,
		builds:   builds,
		sessions: sessions,
		log:      logging.OrNop(log).With("component", "editor"),
	}
	s.engine = s.newRouter()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe listens on the configured address and serves until ctx
// ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx ends, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	s.log.Info("editor listening", "addr", ln.Addr().String(), "static", s.opts.StaticDir)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := srv.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		s.log.Info("editor stopped")
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
