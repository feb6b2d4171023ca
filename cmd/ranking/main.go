package main

import (
	"context"

	"github.com/bimakw/market-intel/internal/application/workers"
	"github.com/bimakw/market-intel/internal/bootstrap"
	"github.com/bimakw/market-intel/internal/config"
)

func main() {
	bootstrap.RunWorker(func(ctx context.Context, deps *bootstrap.Deps) (workers.Worker, error) {
		var weights config.RankingWeights
		if err := config.LoadYAML(deps.Cfg.Analytics.RankingConfigPath, &weights); err != nil {
			return nil, err
		}
		return workers.NewRankingWorker(deps.Warehouse, deps.Warehouse,
			weights, deps.Cfg.Warehouse, deps.Logger), nil
	}, bootstrap.Options{})
}
