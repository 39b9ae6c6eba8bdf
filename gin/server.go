// Package gin exposes docrag operations over HTTP using the gin router.
package gin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/docrag"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server defaults.
const (
	DefaultMaxPages       = 100
	DefaultMaxUploadBytes = 32 << 20
	ShutdownTimeout       = 10 * time.Second
)

// FileLoader parses an uploaded file into a text unit.
type FileLoader interface {
	Load(name string, data []byte) (docrag.TextUnit, error)
}

// Server is the HTTP API. Collaborators are assigned after NewServer and
// before the first request.
type Server struct {
	Crawler  docrag.Crawler
	Ingester docrag.Ingester
	Asker    docrag.Asker
	Registry docrag.CorpusRegistry
	Corpora  docrag.CorpusService
	Files    FileLoader

	// MaxPages bounds crawls whose request does not set max_pages.
	// Zero means DefaultMaxPages.
	MaxPages int

	// MaxUploadBytes bounds the size of each uploaded file.
	// Zero means DefaultMaxUploadBytes.
	MaxUploadBytes int64

	Logger *slog.Logger

	router  *gin.Engine
	metrics *prometheus.Registry
}

// NewServer returns a Server with all routes registered.
func NewServer() *Server {
	s := &Server{
		router:  gin.New(),
		metrics: prometheus.NewRegistry(),
	}
	s.metrics.MustRegister(collectors.NewGoCollector())

	s.router.Use(gin.Recovery(), s.logRequests(), newMetrics(s.metrics).middleware())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{})))

	s.router.POST("/scrape", s.handleScrape)
	s.router.POST("/upload", s.handleUpload)
	s.router.POST("/chat", s.handleChat)

	corpora := s.router.Group("/corpora")
	corpora.GET("", s.handleListCorpora)
	corpora.DELETE("/:label", s.handleDeleteCorpus)
	corpora.POST("/:label/scrape", s.handleScrapeInto)
	corpora.POST("/:label/files", s.handleUploadInto)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger().Info("server listening", "addr", addr)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

func (s *Server) maxPages(requested int) int {
	if requested > 0 {
		return requested
	}
	if s.MaxPages > 0 {
		return s.MaxPages
	}
	return DefaultMaxPages
}

func (s *Server) maxUploadBytes() int64 {
	if s.MaxUploadBytes > 0 {
		return s.MaxUploadBytes
	}
	return DefaultMaxUploadBytes
}
