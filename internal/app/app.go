package app

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/MaxRadzey/codecgateway/internal/codec"
	"github.com/MaxRadzey/codecgateway/internal/config"
	"github.com/MaxRadzey/codecgateway/internal/handler"
	"github.com/MaxRadzey/codecgateway/internal/logger"
	"github.com/MaxRadzey/codecgateway/internal/metrics"
	"github.com/MaxRadzey/codecgateway/internal/render"
	"github.com/MaxRadzey/codecgateway/internal/router"
	"github.com/MaxRadzey/codecgateway/internal/service"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// NewCodecs создает реестр кодеков по настройкам.
func NewCodecs(cfg *config.Config) (*codec.Registry, error) {
	gz, err := codec.NewGzipCodecWithLevel(cfg.GzipLevel, cfg.MaxDecompressedSize)
	if err != nil {
		return nil, err
	}
	br, err := codec.NewBrotliCodecWithQuality(cfg.BrotliQuality, cfg.MaxDecompressedSize)
	if err != nil {
		return nil, err
	}
	return codec.NewRegistry(gz, br), nil
}

// NewEngine собирает сервис, хэндлеры и роутер. Реестр метрик может быть nil.
func NewEngine(cfg *config.Config, reg *prometheus.Registry) (*gin.Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	mode, err := render.ParseMode(cfg.RenderMode)
	if err != nil {
		return nil, err
	}

	codecs, err := NewCodecs(cfg)
	if err != nil {
		return nil, err
	}

	h := &handler.Handler{
		Service:      service.NewService(codecs, mode),
		LegacyErrors: cfg.LegacyErrors,
	}

	var gatherer prometheus.Gatherer
	if reg != nil {
		gatherer = reg
	}
	return router.SetupRouter(h, cfg, codecs, gatherer), nil
}

// Run запускает http сервер и останавливает его по SIGINT/SIGTERM.
func Run(AppConfig *config.Config) error {
	if err := logger.Initialize(AppConfig.LogLevel, logger.FileOptions{
		Path:       AppConfig.LogFile,
		MaxSizeMB:  AppConfig.LogMaxSizeMB,
		MaxBackups: AppConfig.LogMaxBackups,
	}); err != nil {
		return err
	}
	defer func() {
		_ = logger.Log.Sync()
	}()

	var reg *prometheus.Registry
	if AppConfig.MetricsEnabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics.Register(reg)
	}

	engine, err := NewEngine(AppConfig, reg)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              AppConfig.Address,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Log.Info("starting server",
			zap.String("address", AppConfig.Address),
			zap.String("render_mode", AppConfig.RenderMode),
			zap.Bool("legacy_errors", AppConfig.LegacyErrors),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), AppConfig.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
