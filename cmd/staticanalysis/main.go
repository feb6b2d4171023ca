package main

import (
	"context"

	"github.com/bimakw/market-intel/internal/application/workers"
	"github.com/bimakw/market-intel/internal/bootstrap"
	"github.com/bimakw/market-intel/internal/infrastructure/slither"
)

func main() {
	bootstrap.RunWorker(func(ctx context.Context, deps *bootstrap.Deps) (workers.Worker, error) {
		analyzer := slither.NewRunner(deps.Cfg.Slither)
		return workers.NewStaticAnalysisWorker(deps.Warehouse, deps.Warehouse, analyzer,
			deps.Cfg.Slither, deps.Cfg.Warehouse, deps.Logger), nil
	}, bootstrap.Options{})
}
