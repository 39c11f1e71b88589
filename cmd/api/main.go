package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/smartmemorandum/contract-analyzer/internal/application"
	appanalysis "github.com/smartmemorandum/contract-analyzer/internal/application/analysis"
	"github.com/smartmemorandum/contract-analyzer/internal/application/session"
	"github.com/smartmemorandum/contract-analyzer/internal/bootstrap"
	"github.com/smartmemorandum/contract-analyzer/internal/config"
	domain "github.com/smartmemorandum/contract-analyzer/internal/domain/analysis"
	"github.com/smartmemorandum/contract-analyzer/internal/infra/httpserver"
	"github.com/smartmemorandum/contract-analyzer/internal/infra/notify"
	"github.com/smartmemorandum/contract-analyzer/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	logger, err := config.InitLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("provider init error", zap.Error(err))
	}
	defer providers.Close()

	metrics := middleware.NewMetrics()
	sessions := session.NewRegistry(
		func(n domain.Notifier) *appanalysis.Service {
			return appanalysis.NewService(providers.Sources, providers.Explainer, n,
				appanalysis.WithLogger(logger),
				appanalysis.WithObserver(metrics),
			)
		},
		notify.NewLogger(logger.Named("notify")),
		cfg.Server.SessionTTL,
		application.SystemClock{},
		logger,
	)
	go sessions.Run(ctx, time.Minute)
	metrics.Registry().MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "contract_analyzer",
		Name:      "sessions",
		Help:      "Open analyzer sessions.",
	}, func() float64 { return float64(sessions.Len()) }))

	var limiter *middleware.RateLimiter
	if cfg.Server.RateLimit.RPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst)
		go limiter.Run(ctx)
	}

	mux := chi.NewRouter()
	mux.Mount("/", httpserver.NewRouter(httpserver.Deps{
		Sessions:       sessions,
		Metrics:        metrics,
		Checkers:       providers.Checkers,
		Limiter:        limiter,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		APIKeys:        cfg.Server.APIKeys,
		Logger:         logger,
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// a request spans both remote calls
		WriteTimeout: cfg.Source.Timeout + cfg.Explainer.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	logger.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
