package main

import (
	"context"
	"time"

	"github.com/bimakw/market-intel/internal/application/workers"
	"github.com/bimakw/market-intel/internal/bootstrap"
	"github.com/bimakw/market-intel/internal/infrastructure/explorers"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

func main() {
	bootstrap.RunWorker(func(ctx context.Context, deps *bootstrap.Deps) (workers.Worker, error) {
		http := httpx.New(deps.Logger,
			httpx.WithRateLimit(deps.Cfg.Explorer.RatePerSecond, time.Second),
			httpx.WithTimeout(deps.Cfg.Explorer.RequestTimeout),
		)
		explorer := explorers.NewClient(deps.Cfg.Explorer, http)
		return workers.NewContractsWorker(deps.Warehouse, deps.Warehouse, explorer,
			deps.Cfg.Explorer, deps.Cfg.Warehouse, deps.Logger), nil
	}, bootstrap.Options{})
}
