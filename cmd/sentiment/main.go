package main

import (
	"context"

	"github.com/bimakw/market-intel/internal/application/workers"
	"github.com/bimakw/market-intel/internal/bootstrap"
	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
	"github.com/bimakw/market-intel/internal/infrastructure/mlserve"
)

func main() {
	bootstrap.RunWorker(func(ctx context.Context, deps *bootstrap.Deps) (workers.Worker, error) {
		assetMap, err := config.LoadAssetMap(deps.Cfg.Model.AssetMapPath)
		if err != nil {
			return nil, err
		}

		http := httpx.New(deps.Logger, httpx.WithTimeout(deps.Cfg.Model.RequestTimeout))
		model := mlserve.NewClient(deps.Cfg.Model, http)

		return workers.NewSentimentWorker(deps.Warehouse, deps.Warehouse, model,
			assetMap, deps.Cfg.Model, deps.Cfg.Warehouse, deps.Logger), nil
	}, bootstrap.Options{})
}
