package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"eldrix/admin/internal/apperr"
	"eldrix/admin/internal/config"
	"eldrix/admin/internal/handlers"
	"eldrix/admin/internal/middleware"
)

// Room for multipart framing and the other form fields around an upload.
const multipartOverhead = 1 << 20

type HTTPServer struct {
	engine *gin.Engine
	server *http.Server
	drain  time.Duration
	log    zerolog.Logger
}

func NewHTTPServer(cfg *config.AppConfig, log zerolog.Logger, handlerSet handlers.HandlerSet) *HTTPServer {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	maxBody := cfg.Storage.MaxUploadBytes + multipartOverhead

	engine := gin.New()
	engine.RedirectTrailingSlash = true
	engine.RedirectFixedPath = true
	engine.MaxMultipartMemory = maxBody

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.Metrics(),
		middleware.CORS(cfg.AllowCORSOrigins),
		limitBody(maxBody),
	)
	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": apperr.ErrNotFound.WithMessage("Route not found")})
	})

	handlerSet.Register(engine.Group("/api"))

	drain := cfg.HTTP.ShutdownTimeout
	if drain <= 0 {
		drain = 10 * time.Second
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &HTTPServer{
		engine: engine,
		server: srv,
		drain:  drain,
		log:    log,
	}
}

// limitBody turns away requests that declare a body larger than the upload
// ceiling and caps the ones that do not declare a length.
func limitBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": apperr.ErrPayloadTooLarge.WithDetails(map[string]int64{"maxBytes": limit}),
			})
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

func (s *HTTPServer) Start() error {
	s.log.Info().
		Str("addr", s.server.Addr).
		Msg("http server starting")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

// Run serves until ctx is cancelled or the listener fails, then gives
// in-flight requests the shutdown timeout to finish.
func (s *HTTPServer) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(s.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.drain)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.log.Info().Dur("drain", s.drain).Msg("http server shutting down")
	return s.server.Shutdown(ctx)
}
