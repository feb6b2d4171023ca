package main

import (
	"context"
	"time"

	"github.com/bimakw/market-intel/internal/application/workers"
	"github.com/bimakw/market-intel/internal/bootstrap"
	"github.com/bimakw/market-intel/internal/infrastructure/coingecko"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

func main() {
	bootstrap.RunWorker(func(ctx context.Context, deps *bootstrap.Deps) (workers.Worker, error) {
		http := httpx.New(deps.Logger,
			httpx.WithRateLimit(deps.Cfg.CoinGecko.RatePerMinute, time.Minute),
			httpx.WithTimeout(deps.Cfg.CoinGecko.RequestTimeout),
		)
		source := coingecko.NewClient(deps.Cfg.CoinGecko, http)
		return workers.NewCoinGeckoWorker(source, deps.Warehouse, deps.Dedup,
			deps.Cfg.CoinGecko, deps.Cfg.Warehouse, deps.Logger), nil
	}, bootstrap.Options{NeedDedup: true})
}
