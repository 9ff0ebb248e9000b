package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"NewsTranslatorBot/internal/config"
	"NewsTranslatorBot/pkg/logger"
)

const (
	webhookPath     = "/telegram/webhook"
	shutdownTimeout = 10 * time.Second
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes the Telegram webhook, health and metrics endpoints.
type Server struct {
	echo   *echo.Echo
	http   *http.Server
	logger *slog.Logger
}

// New builds the echo router. secret guards the webhook; db may be nil.
func New(cfg config.ServerConfig, secret string, handler UpdateHandler, db Pinger, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health" || c.Request().URL.Path == "/metrics"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency_ms", v.Latency.Milliseconds()}
			if v.Error != nil {
				log.Warn("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			log.Debug("request completed", attrs...)
			return nil
		},
	}))

	wh := &webhook{secret: secret, handler: handler, logger: log}
	limiter := newLimiter(rate.Limit(cfg.RateLimit), cfg.Burst)
	e.POST(webhookPath, wh.handle, limiter.middleware())
	e.GET("/health", healthHandler(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}

	return &Server{
		echo: e,
		http: &http.Server{
			Addr:              addr,
			Handler:           e,
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          logger.New(log, "http", slog.LevelWarn),
		},
		logger: log,
	}
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}

func healthHandler(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}
