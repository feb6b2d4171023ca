package main

import (
	"context"
	"time"

	"github.com/bimakw/market-intel/internal/application/workers"
	"github.com/bimakw/market-intel/internal/bootstrap"
	"github.com/bimakw/market-intel/internal/infrastructure/exchanges"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

func main() {
	bootstrap.RunWorker(func(ctx context.Context, deps *bootstrap.Deps) (workers.Worker, error) {
		binanceHTTP := httpx.New(deps.Logger,
			httpx.WithRateLimit(deps.Cfg.CEX.BinanceRPS, time.Second),
			httpx.WithTimeout(deps.Cfg.CEX.RequestTimeout),
		)
		krakenHTTP := httpx.New(deps.Logger,
			httpx.WithRateLimit(deps.Cfg.CEX.KrakenRPS, time.Second),
			httpx.WithTimeout(deps.Cfg.CEX.RequestTimeout),
		)
		venues := []exchanges.Exchange{
			exchanges.NewBinance(binanceHTTP),
			exchanges.NewKraken(krakenHTTP),
		}
		return workers.NewCEXWorker(venues, deps.Warehouse,
			deps.Cfg.CEX, deps.Cfg.Warehouse, deps.Logger), nil
	}, bootstrap.Options{})
}
