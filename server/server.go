package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xhad/ezodus/internal/models"
	"github.com/xhad/ezodus/pkg/service"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Generator is the work behind the two endpoints.
type Generator interface {
	AnalyzeBrandVoice(ctx context.Context, req models.ScrapeRequest) (*models.BrandVoiceResult, error)
	GeneratePost(ctx context.Context, req models.PostRequest) (*models.PostResult, error)
}

type Config struct {
	Addr string
	// CORSOrigin enables CORS for the given origin. Empty disables it.
	CORSOrigin      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	config  Config
	svc     Generator
	logger  *slog.Logger
	handler http.Handler
}

// Paths served by each handler. The function paths keep existing frontends
// working unchanged.
var (
	brandVoicePaths = []string{"/api/brand-voice", "/.netlify/functions/analyzeBrandVoice"}
	postPaths       = []string{"/api/posts", "/.netlify/functions/generatePost"}
)

func New(config Config, svc Generator, logger *slog.Logger) *Server {
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: config,
		svc:    svc,
		logger: logger,
	}
	s.handler = otelhttp.NewHandler(s.router(), "ezodus")
	return s
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(requestID(), requestLogger(s.logger), recovery(s.logger))
	if s.config.CORSOrigin != "" {
		r.Use(cors(s.config.CORSOrigin))
	}

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, models.ErrorResponse{Error: service.MsgMethodNotAllowed})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Not Found"})
	})

	r.GET("/health", healthHandler)
	for _, p := range brandVoicePaths {
		r.POST(p, s.brandVoiceHandler)
	}
	for _, p := range postPaths {
		r.POST(p, s.postHandler)
	}
	return r
}

// Handler serves every route with tracing applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
