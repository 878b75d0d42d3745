// Package main wires together the accessibility check service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/a11ycheck/a11ycheck/internal/accessibility"
	"github.com/a11ycheck/a11ycheck/internal/api"
	"github.com/a11ycheck/a11ycheck/internal/cache"
	"github.com/a11ycheck/a11ycheck/internal/checker"
	"github.com/a11ycheck/a11ycheck/internal/clock/system"
	"github.com/a11ycheck/a11ycheck/internal/config"
	"github.com/a11ycheck/a11ycheck/internal/hash/sha256"
	"github.com/a11ycheck/a11ycheck/internal/id/uuid"
	"github.com/a11ycheck/a11ycheck/internal/logging"
	"github.com/a11ycheck/a11ycheck/internal/metrics"
	"github.com/a11ycheck/a11ycheck/internal/orchestrator"
	"github.com/a11ycheck/a11ycheck/internal/scoring"
	"github.com/a11ycheck/a11ycheck/internal/session"
	"github.com/a11ycheck/a11ycheck/internal/snapshot"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := system.New()
	hasher := sha256.New()
	idGen := uuid.New()

	pool, err := session.NewPool(session.Config{
		Size:              cfg.Sessions.PoolSize,
		MaxSessionRenders: cfg.Sessions.MaxSessionRenders,
		HostQPS:           cfg.Sessions.HostQPS,
		UserAgent:         cfg.Render.UserAgent,
	}, logger.Named("session"))
	if err != nil {
		logger.Fatal("session pool init failed", zap.Error(err))
	}

	builder := snapshot.NewBuilder(pool, clock, snapshot.BuilderConfig{
		RenderTimeout: cfg.RenderTimeout(),
		SettleWait:    cfg.SettleWait(),
		UserAgent:     cfg.Render.UserAgent,
	}, logger.Named("snapshot"))

	registry, err := buildRegistry(cfg.Checks.DisabledCategories)
	if err != nil {
		logger.Fatal("checker registry init failed", zap.Error(err))
	}

	engine, err := scoring.NewEngine(scoring.Config{
		Weights:   toCategoryWeights(cfg.Scoring.Weights),
		Penalties: toSeverityPenalties(cfg.Scoring.Penalties),
		Grades:    cfg.Scoring.Grades,
	})
	if err != nil {
		logger.Fatal("scoring engine init failed", zap.Error(err))
	}

	results, err := cache.New(cfg.CacheTTL(), clock)
	if err != nil {
		logger.Fatal("result cache init failed", zap.Error(err))
	}
	go runCacheJanitor(ctx, results, cfg.SweepInterval(), logger.Named("cache"))

	orch, err := orchestrator.New(
		accessibility.NewTargetValidator(cfg.Targets.BlockedHosts, cfg.Targets.AllowPrivate),
		builder,
		registry,
		engine,
		results,
		hasher,
		idGen,
		clock,
		orchestrator.Config{MaxConcurrentRuns: cfg.Render.MaxConcurrentRuns},
		logger.Named("orchestrator"),
	)
	if err != nil {
		logger.Fatal("orchestrator init failed", zap.Error(err))
	}

	apiServer := api.NewServer(orch, registry, cfg, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	if err := pool.Close(shutdownCtx); err != nil {
		logger.Error("session pool shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// buildRegistry wires every built-in checker except the disabled ones.
func buildRegistry(disabled []string) (*checker.Registry, error) {
	skip := make(map[accessibility.Category]bool, len(disabled))
	for _, name := range disabled {
		skip[accessibility.Category(strings.ToLower(strings.TrimSpace(name)))] = true
	}

	all := []checker.Module{
		checker.NewARIA(),
		checker.NewSemantic(),
		checker.NewImage(),
		checker.NewMedia(),
		checker.NewVisual(),
		checker.NewKeyboard(),
	}
	enabled := make([]checker.Module, 0, len(all))
	for _, m := range all {
		if !skip[m.Category()] {
			enabled = append(enabled, m)
		}
	}
	return checker.NewRegistry(enabled...)
}

func toCategoryWeights(in map[string]float64) map[accessibility.Category]float64 {
	if len(in) == 0 {
		return nil
	}
	out := make(map[accessibility.Category]float64, len(in))
	for name, w := range in {
		out[accessibility.Category(strings.ToLower(name))] = w
	}
	return out
}

func toSeverityPenalties(in map[string]float64) map[accessibility.Severity]float64 {
	if len(in) == 0 {
		return nil
	}
	out := make(map[accessibility.Severity]float64, len(in))
	for name, p := range in {
		out[accessibility.Severity(strings.ToLower(name))] = p
	}
	return out
}

// runCacheJanitor periodically evicts expired results.
func runCacheJanitor(ctx context.Context, c *cache.Cache, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := c.Sweep(); removed > 0 {
				logger.Debug("swept expired results", zap.Int("removed", removed))
			}
		}
	}
}
