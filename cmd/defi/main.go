package main

import (
	"context"

	"github.com/bimakw/market-intel/internal/application/workers"
	"github.com/bimakw/market-intel/internal/bootstrap"
	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/infrastructure/defillama"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

func main() {
	bootstrap.RunWorker(func(ctx context.Context, deps *bootstrap.Deps) (workers.Worker, error) {
		var registry config.ProtocolRegistry
		if err := config.LoadYAML(deps.Cfg.Analytics.ProtocolConfigPath, &registry); err != nil {
			return nil, err
		}

		llama := defillama.NewClient(httpx.New(deps.Logger))

		return workers.NewDeFiWorker(deps.Warehouse, deps.Warehouse, deps.Warehouse,
			llama, registry.Protocols, deps.Cfg.Warehouse, deps.Logger), nil
	}, bootstrap.Options{})
}
