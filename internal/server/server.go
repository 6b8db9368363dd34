// Package server serves the upload, review and confirmation pages.
//
// The flow is stateless across requests: POST / stores and extracts each
// upload and renders the text for editing, POST /submit validates whatever
// text comes back and renders the simulated sales orders.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"scanorder/internal/logger"
	"scanorder/internal/metrics"
	"scanorder/internal/ocr"
	"scanorder/internal/order"
	"scanorder/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

const defaultMaxBodyBytes = 32 << 20

// TextExtractor turns a stored upload into text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (ocr.Result, error)
	EngineName() string
	OCRAvailable() bool
	PDFAvailable() bool
}

// Options configures a Server.
type Options struct {
	// MaxBodyBytes caps the size of a request body. Zero means 32 MiB.
	MaxBodyBytes int64
}

// Server wires storage, extraction and order submission to HTTP routes.
type Server struct {
	store     *storage.Store
	extractor TextExtractor
	orders    *order.Processor
	router    *gin.Engine
	log       zerolog.Logger
}

// New builds the router. Call Handler to mount it or Run to serve it.
func New(store *storage.Store, extractor TextExtractor, orders *order.Processor, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}

	s := &Server{
		store:     store,
		extractor: extractor,
		orders:    orders,
		log:       logger.WithComponent("server"),
	}

	router := gin.New()
	router.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))
	router.Use(requestLogger(), recovery(), limitBody(opts.MaxBodyBytes))

	router.GET("/", s.handleIndex)
	router.POST("/", s.handleUpload)
	router.POST("/submit", s.handleSubmit)
	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	s.router = router
	return s
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
