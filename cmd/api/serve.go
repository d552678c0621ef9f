package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"doc-summarizer/internal/cache"
	httphandler "doc-summarizer/internal/http"
	"doc-summarizer/internal/metrics"
	"doc-summarizer/internal/middleware"
	"doc-summarizer/internal/services/extract"
	"doc-summarizer/internal/services/llm"
	"doc-summarizer/internal/services/summary"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

// components holds the pipeline and the resources it owns.
type components struct {
	service *summary.Service
	metrics *metrics.Metrics
	cache   *cache.RedisCache
}

func (c *components) Close() {
	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
}

func buildComponents() (*components, error) {
	summarizer, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	opts := []summary.Option{
		summary.WithTimeout(cfg.LLM.Timeout),
		summary.WithMetrics(m),
	}

	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		redisCache, err = cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		opts = append(opts, summary.WithCache(redisCache, cfg.Redis.TTL))
	}

	log.Info().
		Str("provider", summarizer.Name()).
		Str("model", summarizer.Model()).
		Bool("cache", redisCache != nil).
		Msg("Summarizer configured")

	return &components{
		service: summary.NewService(extract.NewExtractor(), summarizer, opts...),
		metrics: m,
		cache:   redisCache,
	}, nil
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	comp, err := buildComponents()
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize")
		return err
	}
	defer comp.Close()

	router := httphandler.NewRouter(httphandler.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Server.WriteTimeout,
		RateLimiter:    middleware.NewRateLimiter(cfg.Server.RateLimitRPM, cfg.Server.RateLimitBurst),
	})

	router.RegisterSummaryRoutes(httphandler.NewSummaryHandler(comp.service, cfg.Server.MaxUploadBytes()))
	deps := map[string]httphandler.Pinger{}
	if comp.cache != nil {
		deps["redis"] = comp.cache
	}
	router.RegisterHealthRoutes(deps)
	router.RegisterMetricsRoutes(comp.metrics.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		return err
	}

	log.Info().Msg("Server stopped")
	return nil
}
