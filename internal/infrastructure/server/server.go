package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/wifi-login/internal/api/http"
	"github.com/GriffinCanCode/wifi-login/internal/api/middleware"
	"github.com/GriffinCanCode/wifi-login/internal/api/ws"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/config"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/logging"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/tracing"
)

// Server is the optional status server of the login service.
type Server struct {
	router   *gin.Engine
	http     *http.Server
	hub      *ws.Hub
	tracer   *tracing.Tracer
	logger   *logging.Logger
	listener net.Listener
}

// Options configures a Server.
type Options struct {
	Status      config.StatusConfig
	Version     string
	Development bool
}

// New builds the router:
//
//	GET /healthz  liveness
//	GET /status   last check and outcome
//	GET /metrics  Prometheus exposition
//	GET /events   WebSocket stream of login events
func New(opts Options, status apihttp.StatusProvider, metrics *monitoring.Metrics, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.Named("server")

	if !opts.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	tracer := tracing.New("status", logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(tracing.Middleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.CORSConfig{AllowOrigins: opts.Status.AllowOrigins}))
	router.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: opts.Status.RequestsPerSecond,
		Burst:             opts.Status.Burst,
	}))

	handlers := apihttp.NewHandlers(status, opts.Version)
	hub := ws.NewHub(nil, logger)

	router.GET("/healthz", handlers.Health)
	router.GET("/status", handlers.Status)
	router.GET("/events", hub.HandleConnection)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))
	}

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              opts.Status.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		hub:    hub,
		tracer: tracer,
		logger: logger,
	}
}

// Hub returns the event hub; register it as a login.Reporter.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	s.listener = ln
	s.logger.Info("Starting status server", zap.String("addr", ln.Addr().String()))

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Status server failed", zap.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.http.Addr
	}
	return s.listener.Addr().String()
}

// Shutdown disconnects event subscribers and stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down status server...")
	s.hub.Close()
	defer s.tracer.Close()
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown status server: %w", err)
	}
	return nil
}
