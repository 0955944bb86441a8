package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ruteri/sequencer-seeder/api/handlers"
	"github.com/ruteri/sequencer-seeder/api/servers"
	"github.com/ruteri/sequencer-seeder/cmd/flags"
	"github.com/ruteri/sequencer-seeder/config"
	"github.com/ruteri/sequencer-seeder/healthcheck"
	"github.com/ruteri/sequencer-seeder/interfaces"
	"github.com/ruteri/sequencer-seeder/liveness"
	"github.com/ruteri/sequencer-seeder/metrics"
	"github.com/ruteri/sequencer-seeder/registry"
	"github.com/ruteri/sequencer-seeder/signature"
	"github.com/ruteri/sequencer-seeder/storage"
	"github.com/urfave/cli/v2"
)

var forceFlag = &cli.BoolFlag{
	Name:  "force",
	Usage: "replace an existing configuration directory",
}

func main() {
	app := &cli.App{
		Name:  "seeder",
		Usage: "Serve the sequencer discovery registry",
		Flags: append([]cli.Flag{flags.LogServiceFlagFn("seeder")}, flags.LogFlags...),
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create a configuration directory with default values",
				Flags: []cli.Flag{flags.ConfigPathFlag, forceFlag},
				Action: func(cCtx *cli.Context) error {
					logger := flags.SetupLogger(cCtx)
					path := cCtx.String(flags.ConfigPathFlag.Name)
					if err := config.Init(path, cCtx.Bool(forceFlag.Name)); err != nil {
						logger.Error("Failed to initialize config", "path", path, "err", err)
						return err
					}
					logger.Info("Config initialized", "path", path)
					return nil
				},
			},
			{
				Name:  "start",
				Usage: "serve the internal and external RPC endpoints",
				Flags: append([]cli.Flag{
					flags.ConfigPathFlag,
					flags.ExternalRpcUrlFlag,
					flags.InternalRpcUrlFlag,
					flags.DatabaseURIFlag,
				}, flags.ServerFlags...),
				Action: start,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func start(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	cfg, err := config.Load(flags.ConfigOverrides(cCtx))
	if err != nil {
		logger.Error("Failed to load config", "err", err)
		return err
	}

	signer, err := signature.NewPrivateKeySigner(cfg.SigningKey)
	if err != nil {
		logger.Error("Failed to load signing key", "err", err)
		return err
	}

	engine, err := storage.NewEngineFactory(logger).EngineFor(cfg.DatabaseURI)
	if err != nil {
		logger.Error("Failed to open record store", "uri", cfg.DatabaseURI, "err", err)
		return err
	}
	store := storage.NewRecordStore(engine, logger)
	defer store.Close()

	reg := registry.NewRegistry(logger)
	reg.AddSigner(interfaces.PlatformEthereum, signer)

	factory := liveness.NewClientFactory(reg, logger)
	if err := reg.Bootstrap(cCtx.Context, store, factory); err != nil {
		logger.Error("Failed to restore sequencing infos", "err", err)
		return err
	}
	metrics.SequencingInfos.Set(float64(len(reg.SequencingInfos())))

	handler := handlers.NewHandler(
		reg,
		store,
		factory,
		healthcheck.NewHTTPHealthChecker(healthcheck.DefaultTimeout, logger),
		signature.NewVerifier(),
		logger,
	)

	serverCfg, err := flags.ConfigureServer(cCtx, logger, cfg)
	if err != nil {
		logger.Error("Invalid listen address", "err", err)
		return err
	}
	server, err := servers.New(serverCfg, handler)
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("Starting seeder",
		"signer", signer.Address().Hex(),
		"external", serverCfg.ExternalListenAddr,
		"internal", serverCfg.InternalListenAddr,
		"database", store.LocationURI())
	server.RunInBackground()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logger.Info("Shutdown signal received")

	server.Shutdown()
	logger.Info("Server shutdown complete")
	return nil
}
