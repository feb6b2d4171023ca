package main

import (
	"context"

	"github.com/bimakw/market-intel/internal/application/workers"
	"github.com/bimakw/market-intel/internal/bootstrap"
)

func main() {
	bootstrap.RunWorker(func(ctx context.Context, deps *bootstrap.Deps) (workers.Worker, error) {
		return workers.NewWhalesWorker(deps.Warehouse, deps.Warehouse,
			deps.Cfg.Analytics, deps.Cfg.Warehouse, deps.Logger), nil
	}, bootstrap.Options{})
}
