package main

import (
	"context"

	"github.com/bimakw/market-intel/internal/application/workers"
	"github.com/bimakw/market-intel/internal/bootstrap"
	"github.com/bimakw/market-intel/internal/config"
)

func main() {
	bootstrap.RunWorker(func(ctx context.Context, deps *bootstrap.Deps) (workers.Worker, error) {
		var registry config.BridgeRegistry
		if err := config.LoadYAML(deps.Cfg.Analytics.BridgesConfigPath, &registry); err != nil {
			return nil, err
		}
		return workers.NewBridgesWorker(deps.Warehouse, deps.Warehouse, deps.Warehouse,
			registry.Bridges, deps.Cfg.Analytics, deps.Cfg.Warehouse, deps.Logger), nil
	}, bootstrap.Options{})
}
