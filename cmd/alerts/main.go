package main

import (
	"context"

	"github.com/bimakw/market-intel/internal/application/workers"
	"github.com/bimakw/market-intel/internal/bootstrap"
	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
	"github.com/bimakw/market-intel/internal/infrastructure/notify"
)

func main() {
	bootstrap.RunWorker(func(ctx context.Context, deps *bootstrap.Deps) (workers.Worker, error) {
		var registry config.AlertRules
		if err := config.LoadYAML(deps.Cfg.Alerts.RulesPath, &registry); err != nil {
			return nil, err
		}

		notifier := notify.NewMulti(deps.Cfg.Alerts, httpx.New(deps.Logger), deps.Logger)

		return workers.NewAlertsWorker(deps.Warehouse, notifier, registry.Rules, deps.Cfg.Alerts.SummaryTables, deps.Logger), nil
	}, bootstrap.Options{})
}
