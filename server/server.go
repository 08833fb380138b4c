// Package server exposes chat sessions over a JSON HTTP API. Every
// client session owns its own controller and store.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/DachengChen/paiAnalyst/ai"
	"github.com/DachengChen/paiAnalyst/applog"
	"github.com/DachengChen/paiAnalyst/chat"
)

// Factory builds the controller of a new session.
type Factory func() *chat.Controller

// Server is the HTTP surface.
type Server struct {
	echo       *echo.Echo
	sessions   *registry
	summarizer *ai.Summarizer
	now        func() time.Time
}

// New returns a server that builds sessions with factory. summarizer
// may be nil.
func New(factory Factory, summarizer *ai.Summarizer) *Server {
	s := &Server{
		echo:       echo.New(),
		sessions:   newRegistry(factory),
		summarizer: summarizer,
		now:        time.Now,
	}
	s.echo.Use(middleware.Recover())
	s.registerRoutes(s.echo)
	return s
}

func (s *Server) registerRoutes(e *echo.Echo) {
	e.GET("/api/health", s.health)
	e.GET("/api/samples", s.samples)

	g := e.Group("/api/sessions")
	g.POST("", s.createSession)
	g.DELETE("/:id", s.deleteSession)
	g.GET("/:id/state", s.getState)
	g.PUT("/:id/mode", s.setMode)
	g.PUT("/:id/preferences", s.setPreferences)
	g.GET("/:id/turns", s.listTurns)
	g.DELETE("/:id/turns", s.clearTurns)
	g.POST("/:id/messages", s.postMessage)
	g.POST("/:id/suggestions", s.postSuggestion)
	g.POST("/:id/chart", s.renderChart)
	g.GET("/:id/turns/:turn/export", s.exportResult)
	g.GET("/:id/turns/:turn/summary", s.summarize)
	g.GET("/:id/export", s.exportChat)
}

// Handler returns the API wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return logRequests(s.echo)
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	applog.Info("http server listening on %s", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		applog.Event("HTTP", "%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
