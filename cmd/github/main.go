package main

import (
	"context"

	"github.com/bimakw/market-intel/internal/application/workers"
	"github.com/bimakw/market-intel/internal/bootstrap"
	"github.com/bimakw/market-intel/internal/infrastructure/github"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

func main() {
	bootstrap.RunWorker(func(ctx context.Context, deps *bootstrap.Deps) (workers.Worker, error) {
		http := httpx.New(deps.Logger, httpx.WithTimeout(deps.Cfg.GitHub.RequestTimeout))
		source := github.NewClient(deps.Cfg.GitHub.Token, http)
		return workers.NewGitHubWorker(deps.Warehouse, deps.Warehouse, source,
			deps.Cfg.GitHub, deps.Cfg.Warehouse, deps.Logger), nil
	}, bootstrap.Options{})
}
