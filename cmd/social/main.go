package main

import (
	"context"

	"github.com/bimakw/market-intel/internal/application/workers"
	"github.com/bimakw/market-intel/internal/bootstrap"
	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
	"github.com/bimakw/market-intel/internal/infrastructure/social"
)

func main() {
	bootstrap.RunWorker(func(ctx context.Context, deps *bootstrap.Deps) (workers.Worker, error) {
		var sources config.SocialSources
		if err := config.LoadYAML(deps.Cfg.Social.ConfigPath, &sources); err != nil {
			return nil, err
		}

		http := httpx.New(deps.Logger, httpx.WithTimeout(deps.Cfg.Social.RequestTimeout))
		twitter := social.NewTwitter(deps.Cfg.Social.TwitterBearerToken, deps.Cfg.Social.TwitterMaxResults, http)
		reddit := social.NewReddit(deps.Cfg.Social, http)

		return workers.NewSocialWorker(sources, twitter, reddit,
			deps.Warehouse, deps.Dedup, deps.Cfg.Warehouse, deps.Logger), nil
	}, bootstrap.Options{NeedDedup: true})
}
