package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ferreirogomes/nftmarket/artifacts"
	"github.com/ferreirogomes/nftmarket/blockchain_listener"
	"github.com/ferreirogomes/nftmarket/config"
	"github.com/ferreirogomes/nftmarket/events"
	"github.com/ferreirogomes/nftmarket/handlers"
	"github.com/ferreirogomes/nftmarket/logging"
	"github.com/ferreirogomes/nftmarket/metrics"
	"github.com/ferreirogomes/nftmarket/models"
	"github.com/ferreirogomes/nftmarket/services"
	"github.com/ferreirogomes/nftmarket/state"
	"github.com/ferreirogomes/nftmarket/storage"
)

func main() {
	cfg, loadedEnv, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuração inválida: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		Production: cfg.IsProduction(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "falha ao criar logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	if !loadedEnv {
		logger.Debug("nenhum arquivo .env encontrado, usando variáveis de ambiente")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("servidor encerrado com erro", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db := state.New()
	var store services.Persister
	if cfg.DatabaseURL != "" {
		pg, err := storage.NewDB(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return fmt.Errorf("falha ao conectar ao banco de dados e aplicar migrações: %w", err)
		}
		defer pg.Close()
		db, err = pg.Restore(ctx)
		if err != nil {
			return err
		}
		store = pg
	} else {
		logger.Warn("DATABASE_URL vazio, estado mantido apenas em memória")
	}

	deployer := models.NewAddress()
	if cfg.FeeAccount != "" {
		var err error
		deployer, err = models.ParseAddress(cfg.FeeAccount)
		if err != nil {
			return fmt.Errorf("FEE_ACCOUNT inválido: %w", err)
		}
	}

	m, err := metrics.New()
	if err != nil {
		return err
	}
	bus := events.NewBus(logger)
	defer bus.Close()

	svc := services.NewMarketService(db, store, bus, m, logger)
	err = svc.Deploy(ctx, services.DeployConfig{
		RegistryName:   cfg.RegistryName,
		RegistrySymbol: cfg.RegistrySymbol,
		FeePercent:     cfg.FeePercent,
		Deployer:       deployer,
	})
	if err != nil {
		return fmt.Errorf("falha na implantação: %w", err)
	}
	if cfg.ArtifactsDir != "" {
		if err := artifacts.SaveAll(cfg.ArtifactsDir, svc); err != nil {
			return err
		}
		logger.Info("artefatos gravados", zap.String("dir", cfg.ArtifactsDir))
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(svc, bus, m.Gatherer(), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	listener := blockchain_listener.NewBlockchainListener(bus, cfg.WebhookURL, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return listener.StartListening(gctx)
	})
	g.Go(func() error {
		logger.Info("servidor backend rodando", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("encerrando servidor")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
