package main

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ferreirogomes/nftmarket/artifacts"
	"github.com/ferreirogomes/nftmarket/events"
	"github.com/ferreirogomes/nftmarket/metrics"
	"github.com/ferreirogomes/nftmarket/models"
	"github.com/ferreirogomes/nftmarket/services"
	"github.com/ferreirogomes/nftmarket/state"
	"github.com/ferreirogomes/nftmarket/storage"
)

func deploy(cfg *deployConfig, log *zap.Logger) error {
	ctx := context.Background()

	deployer := models.NewAddress()
	if cfg.Deployer != "" {
		var err error
		deployer, err = models.ParseAddress(cfg.Deployer)
		if err != nil {
			return errors.Wrap(err, "Error parsing deployer")
		}
	}

	db := state.New()
	var store services.Persister
	if cfg.DatabaseURL != "" {
		pg, err := storage.NewDB(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return errors.Wrap(err, "Error connecting to the database")
		}
		defer pg.Close()
		db, err = pg.Restore(ctx)
		if err != nil {
			return errors.Wrap(err, "Error loading persisted state")
		}
		store = pg
	}

	m, err := metrics.New()
	if err != nil {
		return errors.Wrap(err, "Error creating metrics")
	}
	bus := events.NewBus(log)
	defer bus.Close()
	svc := services.NewMarketService(db, store, bus, m, log)

	log.Info("Deploying contracts with the account",
		zap.Stringer("deployer", deployer),
		zap.String("balance", models.FormatUnits(svc.Balance(deployer), models.DefaultDecimals)),
	)

	err = svc.Deploy(ctx, services.DeployConfig{
		RegistryName:   cfg.RegistryName,
		RegistrySymbol: cfg.RegistrySymbol,
		FeePercent:     cfg.FeePercent,
		Deployer:       deployer,
	})
	if err != nil {
		return errors.Wrap(err, "Error deploying contracts")
	}

	if err := artifacts.SaveAll(cfg.Out, svc); err != nil {
		return errors.Wrap(err, "Error saving artifacts")
	}
	for _, c := range svc.Contracts() {
		log.Info("Contract deployed",
			zap.String("name", c.Name),
			zap.Stringer("address", c.Address),
			zap.String("out", cfg.Out),
		)
	}
	return nil
}
