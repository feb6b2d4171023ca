package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/application/workers"
	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/infrastructure/cache"
	"github.com/bimakw/market-intel/internal/infrastructure/database"
	"github.com/bimakw/market-intel/internal/infrastructure/logging"
	"github.com/bimakw/market-intel/internal/infrastructure/warehouse"
)

// Deps bundles the shared clients handed to a worker's build function.
type Deps struct {
	Cfg       *config.Config
	Logger    *zap.Logger
	Warehouse *warehouse.Client
	Dedup     repositories.DedupCache
}

// BuildFunc assembles one worker from the shared dependencies.
type BuildFunc func(ctx context.Context, deps *Deps) (workers.Worker, error)

// Options tunes which shared clients RunWorker sets up.
type Options struct {
	// NeedDedup connects the Redis dedup cache. Workers that do not
	// deduplicate get a no-op cache.
	NeedDedup bool
}

// RunWorker is the shared main body of every worker binary. It loads
// configuration, connects the warehouse, the run ledger, and optionally
// the dedup cache, builds the worker, and executes it once. The ledger
// and the dedup cache are best effort; the warehouse is required.
func RunWorker(build BuildFunc, opts Options) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wh, err := warehouse.New(ctx, cfg.Warehouse, logger)
	if err != nil {
		logger.Fatal("Failed to connect to warehouse", zap.Error(err))
	}
	defer wh.Close()

	var ledger repositories.RunLedger
	if !cfg.Ledger.Disabled {
		db, err := database.NewPostgresDB(cfg.Ledger, logger)
		if err != nil {
			logger.Warn("Failed to connect to run ledger, continuing without it", zap.Error(err))
		} else {
			defer db.Close()
			repo := database.NewRunLedgerRepo(db.DB())
			if err := repo.EnsureSchema(ctx); err != nil {
				logger.Warn("Failed to prepare run ledger schema, continuing without it", zap.Error(err))
			} else {
				ledger = repo
			}
		}
	}

	var dedup repositories.DedupCache = cache.NoopDedup{}
	if opts.NeedDedup && !cfg.Redis.Disabled {
		rd, err := cache.NewRedisDedup(cfg.Redis, logger)
		if err != nil {
			logger.Warn("Failed to connect to Redis, continuing without dedup", zap.Error(err))
		} else {
			defer rd.Close()
			dedup = rd
		}
	}

	deps := &Deps{Cfg: cfg, Logger: logger, Warehouse: wh, Dedup: dedup}
	w, err := build(ctx, deps)
	if err != nil {
		logger.Fatal("Failed to build worker", zap.Error(err))
	}

	if err := workers.Execute(ctx, w, ledger, logger); err != nil {
		logger.Error("Worker run failed", zap.String("worker", w.Name()), zap.Error(err))
		os.Exit(1)
	}
}
