package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/sessionkit/logger"
	"github.com/kbukum/sessionkit/server/middleware"
)

// Server is the HTTP server backed by Gin.
type Server struct {
	httpServer  *http.Server
	engine      *gin.Engine
	middlewares []middleware.Middleware
	config      Config
	log         *logger.Logger

	mu       sync.RWMutex
	boundTo  string
	serveErr chan error
}

// New creates a Server. No middleware is applied until ApplyMiddleware
// or Use is called.
func New(cfg Config, log *logger.Logger) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
		},
		engine: engine,
		config: cfg,
		log:    log.WithComponent("server"),
	}
}

// Engine returns the Gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Use appends server-level middleware. The first added is the outermost.
func (s *Server) Use(mw ...middleware.Middleware) {
	s.middlewares = append(s.middlewares, mw...)
}

// ApplyMiddleware installs the standard stack: recovery, request id,
// CORS, body size limit and request logging.
func (s *Server) ApplyMiddleware() {
	s.Use(
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.CORS(&s.config.CORS),
		middleware.BodySizeLimit(s.config.MaxBodySize),
		middleware.RequestLogger(s.log),
	)
}

// Handler returns the full handler: middleware chain around the engine,
// wrapped for HTTP/2 cleartext.
func (s *Server) Handler() http.Handler {
	h := middleware.Chain(s.middlewares...)(s.engine)
	return h2c.NewHandler(h, &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          time.Duration(s.config.IdleTimeout) * time.Second,
	})
}

// Start binds the port and serves in the background. It returns once the
// listener is bound.
func (s *Server) Start(_ context.Context) error {
	s.httpServer.Handler = s.Handler()

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}

	s.mu.Lock()
	s.boundTo = listener.Addr().String()
	s.serveErr = make(chan error, 1)
	s.mu.Unlock()

	go func() {
		err := s.httpServer.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Server error", logger.Fields("error", err.Error()))
			s.serveErr <- err
		}
		close(s.serveErr)
	}()

	s.log.Info("HTTP server started", logger.Fields("addr", s.Addr()))
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.boundTo != "" {
		return s.boundTo
	}
	return s.httpServer.Addr
}

// Running reports whether Start succeeded and Serve has not failed.
func (s *Server) Running() bool {
	s.mu.RLock()
	ch := s.serveErr
	s.mu.RUnlock()
	if ch == nil {
		return false
	}
	select {
	case <-ch:
		return false
	default:
		return true
	}
}
