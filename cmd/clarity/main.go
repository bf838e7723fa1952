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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dealershipai/clarity/pkg/backend"
	"github.com/dealershipai/clarity/pkg/cache"
	"github.com/dealershipai/clarity/pkg/config"
	"github.com/dealershipai/clarity/pkg/logging"
	"github.com/dealershipai/clarity/pkg/metrics"
	"github.com/dealershipai/clarity/pkg/orchestrator"
	"github.com/dealershipai/clarity/pkg/pool"
)

var (
	rateCardFile string
	debugFlag    bool
	mockFlag     bool
	metricsAddr  string

	logger *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clarity",
		Short: "Task router with single-hop failover across text-generation backends",
		Long: `Clarity classifies each task, sends it to the backend the rate card
assigns, and on failure retries once on the designated fallback with
cached context. Every result carries a cost and latency estimate.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = logging.New(debugFlag)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&rateCardFile, "ratecard", "", "path to rate card file")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&mockFlag, "mock", false, "serve every backend with the mock vendor")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(routesCmd())
	rootCmd.AddCommand(rateCardCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if rateCardFile != "" {
		cfg, err = config.LoadWithRateCard(rateCardFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if mockFlag {
		card, err := mockCard(cfg.RateCard)
		if err != nil {
			return nil, err
		}
		cfg.RateCard = card
	}
	return cfg, nil
}

// mockCard keeps the card's routing shape with every backend on the mock vendor.
func mockCard(card *config.RateCard) (*config.RateCard, error) {
	backends := make([]config.Backend, len(card.Backends))
	copy(backends, card.Backends)
	for i := range backends {
		backends[i].Vendor = config.VendorMock
	}
	return config.NewRateCard(backends...)
}

type app struct {
	cfg    *config.Config
	engine *orchestrator.Engine
	close  func()
}

// buildApp wires the engine and its collaborators from configuration.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.CheckVendors(); err != nil {
		return nil, err
	}

	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var m *metrics.Metrics
	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		m = metrics.New(reg)
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
		closers = append(closers, func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		})
	}

	var contextCache cache.Cache = cache.NewMemory()
	if cfg.Redis.Addr != "" {
		r, err := cache.Dial(ctx, cfg.Redis, cache.WithRedisLogger(logger))
		if err != nil {
			closeAll()
			return nil, err
		}
		contextCache = r
		closers = append(closers, func() { _ = r.Close() })
	}

	handles := pool.New(cfg.RateCard, backend.NewFactory(cfg),
		pool.WithLogger(logger),
		pool.WithOnCreate(m.HandleCreated),
	)

	engine := orchestrator.New(cfg.RateCard, handles,
		orchestrator.WithLogger(logger),
		orchestrator.WithCache(contextCache),
		orchestrator.WithMetrics(m),
		orchestrator.WithExecution(cfg.Execution),
	)

	return &app{cfg: cfg, engine: engine, close: closeAll}, nil
}
