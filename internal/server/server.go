// Package server exposes the solver and the tool interface over HTTP.
//
// Routes:
//
//	POST /v1/tool         execute a tool call
//	POST /v1/solve        solve one equation or inequality
//	POST /v1/solve/batch  solve several equations concurrently
//	POST /v1/domain       domain of an expression
//	GET  /v1/schema       tool schema for agent registration
//	GET  /health          liveness check
//	GET  /metrics         Prometheus metrics
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/njchilds90/gosolve"
	"github.com/njchilds90/gosolve/internal/config"
)

const serviceName = "gosolve"

type Server struct {
	solver  *gosolve.AlgebraSolver
	cfg     config.Config
	logger  *slog.Logger
	limiter *rate.Limiter
	flight  singleflight.Group
	router  *gin.Engine
}

// New builds the router. A nil logger discards output.
func New(cfg config.Config, solver *gosolve.AlgebraSolver, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if solver == nil {
		solver = gosolve.NewAlgebraSolver(cfg.SolverOptions(logger)...)
	}
	s := &Server{solver: solver, cfg: cfg, logger: logger}
	if cfg.Server.RatePerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Server.RatePerSecond), cfg.Server.Burst)
	}
	s.initRouter()
	return s
}

func (s *Server) initRouter() {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(s.requestID(), s.observe())

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.Use(s.limit(), s.bodyLimit())
	{
		v1.GET("/schema", s.schema)
		v1.POST("/tool", s.tool)
		v1.POST("/solve", s.solve)
		v1.POST("/solve/batch", s.solveBatch)
		v1.POST("/domain", s.domain)
	}
	s.router = r
}

func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("gosolve server listening", slog.String("addr", srv.Addr))
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
	s.logger.Info("gosolve server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// solveContext bounds one solve by the configured timeout.
func (s *Server) solveContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Solver.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, s.cfg.Solver.Timeout)
}
