// Package server exposes the solver over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DanLyss/AstroNavigation/internal/corr"
	"github.com/DanLyss/AstroNavigation/internal/logging"
	"github.com/DanLyss/AstroNavigation/internal/nav"
	"github.com/DanLyss/AstroNavigation/internal/state"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	// Filter is the default correspondence filter; requests may override
	// the threshold and star cap.
	Filter corr.Options
	// MaxUploadSize bounds request bodies in bytes.
	MaxUploadSize int64
}

// Server handles solve requests and keeps their history.
type Server struct {
	solver *nav.Solver
	state  *state.Manager
	opts   Options
	log    *logging.Logger
	router *gin.Engine
}

// New creates a server. A nil logger discards output.
func New(solver *nav.Solver, st *state.Manager, opts Options, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = 32 << 20
	}
	s := &Server{
		solver: solver,
		state:  st,
		opts:   opts,
		log:    logger.With("http"),
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	router.MaxMultipartMemory = s.opts.MaxUploadSize

	router.GET("/health", s.health)

	api := router.Group("/api/v1")
	{
		api.POST("/solve", s.solve)
		api.GET("/solutions", s.listSolutions)
		api.GET("/solutions/:id", s.getSolution)
	}

	return router
}

// requestLogger logs one line per request through the application logger.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("%s %s %d %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Debug("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
