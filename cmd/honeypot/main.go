package main

import (
	"context"

	"github.com/bimakw/market-intel/internal/application/workers"
	"github.com/bimakw/market-intel/internal/bootstrap"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
	"github.com/bimakw/market-intel/internal/infrastructure/mlserve"
)

func main() {
	bootstrap.RunWorker(func(ctx context.Context, deps *bootstrap.Deps) (workers.Worker, error) {
		http := httpx.New(deps.Logger, httpx.WithTimeout(deps.Cfg.Model.RequestTimeout))
		model := mlserve.NewClient(deps.Cfg.Model, http)
		return workers.NewHoneypotWorker(deps.Warehouse, deps.Warehouse, model,
			deps.Cfg.Model, deps.Cfg.Warehouse, deps.Logger), nil
	}, bootstrap.Options{})
}
