package main

import (
	"context"

	"github.com/bimakw/market-intel/internal/application/workers"
	"github.com/bimakw/market-intel/internal/bootstrap"
	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/infrastructure/feeds"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
	"github.com/bimakw/market-intel/internal/infrastructure/llm"
)

func main() {
	bootstrap.RunWorker(func(ctx context.Context, deps *bootstrap.Deps) (workers.Worker, error) {
		var sources config.NewsSources
		if err := config.LoadYAML(deps.Cfg.News.ConfigPath, &sources); err != nil {
			return nil, err
		}

		http := httpx.New(deps.Logger, httpx.WithTimeout(deps.Cfg.News.RequestTimeout))
		fetcher := feeds.NewFetcher(http, deps.Cfg.News.MaxEntries, deps.Logger)
		apis := feeds.NewAPIFetcher(http)
		extractor := feeds.NewExtractor(http)
		summary := llm.NewClient(deps.Cfg.News, httpx.New(deps.Logger))

		return workers.NewNewsWorker(sources, fetcher, apis, extractor, summary,
			deps.Warehouse, deps.Dedup, deps.Cfg.News, deps.Cfg.Warehouse, deps.Logger), nil
	}, bootstrap.Options{NeedDedup: true})
}
