package main

import (
	"context"

	"github.com/bimakw/market-intel/internal/application/workers"
	"github.com/bimakw/market-intel/internal/bootstrap"
	"github.com/bimakw/market-intel/internal/infrastructure/ethereum"
)

func main() {
	bootstrap.RunWorker(func(ctx context.Context, deps *bootstrap.Deps) (workers.Worker, error) {
		client, err := ethereum.NewClient(deps.Cfg.Chain, deps.Logger)
		if err != nil {
			return nil, err
		}
		metadata := ethereum.NewMetadataFetcher(client, deps.Logger)
		return workers.NewLabelerWorker(deps.Warehouse, deps.Warehouse, deps.Warehouse,
			metadata, deps.Cfg.Analytics, deps.Cfg.Warehouse, deps.Logger), nil
	}, bootstrap.Options{})
}
