package main

import (
	"context"

	"github.com/bimakw/market-intel/internal/application/workers"
	"github.com/bimakw/market-intel/internal/bootstrap"
	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
	"github.com/bimakw/market-intel/internal/infrastructure/opensea"
)

func main() {
	bootstrap.RunWorker(func(ctx context.Context, deps *bootstrap.Deps) (workers.Worker, error) {
		var registry config.NFTRegistry
		if err := config.LoadYAML(deps.Cfg.Analytics.NFTConfigPath, &registry); err != nil {
			return nil, err
		}

		marketplace := opensea.NewClient(deps.Cfg.Analytics.OpenSeaBaseURL,
			deps.Cfg.Analytics.OpenSeaAPIKey, httpx.New(deps.Logger))

		return workers.NewNFTWorker(deps.Warehouse, deps.Warehouse, deps.Warehouse,
			marketplace, registry.Collections, deps.Cfg.Warehouse, deps.Logger), nil
	}, bootstrap.Options{})
}
