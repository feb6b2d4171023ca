package main

import (
	"context"

	"github.com/bimakw/market-intel/internal/application/workers"
	"github.com/bimakw/market-intel/internal/bootstrap"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
	"github.com/bimakw/market-intel/internal/infrastructure/thegraph"
)

func main() {
	bootstrap.RunWorker(func(ctx context.Context, deps *bootstrap.Deps) (workers.Worker, error) {
		http := httpx.New(deps.Logger, httpx.WithTimeout(deps.Cfg.DEX.RequestTimeout))
		source := thegraph.NewClient(deps.Cfg.DEX.Endpoint, http)
		return workers.NewDEXWorker(source, deps.Warehouse,
			deps.Cfg.DEX, deps.Cfg.Warehouse, deps.Logger), nil
	}, bootstrap.Options{})
}
