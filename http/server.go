// Package http serves the study time predictor over HTTP.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"studyplan/monitoring"
)

// Server wraps the predictor routes in the middleware chain.
type Server struct {
	server  *http.Server
	config  ServerConfig
	logger  *zap.Logger
	handler http.Handler
}

// ServerConfig holds listener and request limits.
type ServerConfig struct {
	Port           int
	Timeout        time.Duration
	MaxBodyBytes   int64
	AllowedOrigins []string
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           5000,
		Timeout:        30 * time.Second,
		MaxBodyBytes:   1 << 20,
		AllowedOrigins: []string{"*"},
	}
}

// NewServer builds the mux and middleware chain. metrics and logger may be nil.
func NewServer(config ServerConfig, predictor Predictor, metrics *monitoring.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()
	RegisterHandlers(mux, predictor, metrics, logger)

	handler := middlewareChain(config, metrics, logger)(mux)

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      handler,
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
			IdleTimeout:  120 * time.Second,
		},
		config:  config,
		logger:  logger,
		handler: handler,
	}
}

// middlewareChain wraps routes so that recovered panics still reach the access log and
// request metrics.
func middlewareChain(config ServerConfig, metrics *monitoring.Metrics, logger *zap.Logger) Middleware {
	return Chain(
		LoggerMiddleware(logger, metrics),
		RecoveryMiddleware(logger),
		SecurityHeadersMiddleware,
		CORSMiddleware(config.AllowedOrigins),
		RequestSizeMiddleware(config.MaxBodyBytes),
	)
}

// Handler returns the fully wrapped handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start blocks until the server stops. A clean shutdown returns nil.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.server.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Stop is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting http server", zap.String("addr", ln.Addr().String()))
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop drains in-flight requests until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func (s *Server) Addr() string {
	return s.server.Addr
}
