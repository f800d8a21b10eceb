// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"context"
	"fmt"
	rawLog "log"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/plantops/timeclock/common/businesstime"
	"github.com/plantops/timeclock/common/log"
	"github.com/plantops/timeclock/common/log/tag"
	"github.com/plantops/timeclock/config"
	"github.com/plantops/timeclock/engine"
	"github.com/plantops/timeclock/gateway"
	"github.com/plantops/timeclock/persistence"
	"github.com/plantops/timeclock/persistence/postgres"
	"github.com/plantops/timeclock/service/api"
)

const ApiServiceName = "api"

const FlagConfig = "config"

func StartTimeclockServerCli(c *cli.Context) {
	// register interrupt signal for graceful shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	configPath := c.String(FlagConfig)

	cfg, err := config.NewConfig(configPath)
	if err != nil {
		rawLog.Fatalf("Unable to load config for path %v because of error %v", configPath, err)
	}
	shutdownFunc := StartTimeclockServer(rootCtx, cfg)
	// wait for os signals
	<-rootCtx.Done()

	ctx, cancF := context.WithTimeout(context.Background(), time.Second*10)
	defer cancF()
	err = shutdownFunc(ctx)
	if err != nil {
		fmt.Println("shutdown error:", err)
	}
}

type GracefulShutdown func(ctx context.Context) error

func StartTimeclockServer(rootCtx context.Context, cfg *config.Config) GracefulShutdown {
	zapLogger, err := cfg.Log.NewZapLogger()
	if err != nil {
		rawLog.Fatalf("Unable to create a new zap logger %v", err)
	}
	logger := log.NewLogger(zapLogger)
	logger.Info("config is loaded", tag.Value(cfg.String()))
	err = cfg.ValidateAndSetDefaults()
	if err != nil {
		logger.Fatal("config is invalid", tag.Error(err))
	}

	normalizer, err := businesstime.NewNormalizer(cfg.Engine.BusinessTimezone)
	if err != nil {
		logger.Fatal("invalid business timezone", tag.Error(err))
	}

	session, err := gateway.NewSession(cfg.Gateway, logger)
	if err != nil {
		logger.Fatal("error on gateway session setup", tag.Error(err))
	}

	var sessionStore persistence.TimerSessionStore
	if cfg.Database != nil {
		sessionStore, err = postgres.NewTimerSessionStore(cfg.Database.SQL)
		if err != nil {
			logger.Fatal("error on persistence setup", tag.Error(err))
		}
	} else {
		sessionStore = persistence.NewInMemTimerSessionStore()
	}

	eng := engine.NewEngine(cfg.Engine, normalizer, engine.Dependencies{
		Store:         gateway.NewTimeEntryStore(cfg.Gateway, session, logger),
		Confirmations: gateway.NewConfirmationService(cfg.Gateway, cfg.Engine, session, normalizer, logger),
		Personnel:     gateway.NewPersonnelService(cfg.Gateway, session, logger),
		Catalog:       gateway.NewOrderCatalog(cfg.Gateway, session, logger),
		Sessions:      sessionStore,
	}, nil, logger)

	if err := eng.Start(rootCtx); err != nil {
		logger.Fatal("Failed to start the time entry engine", tag.Error(err))
	}

	apiServer := api.NewDefaultAPIServerWithGin(
		rootCtx, *cfg, eng, logger.WithTags(tag.Service(ApiServiceName)))
	if err := apiServer.Start(); err != nil {
		logger.Fatal("Failed to start api server", tag.Error(err))
	}

	return func(ctx context.Context) error {
		// graceful shutdown
		var errs error
		// first stop api server
		if err := apiServer.Stop(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
		// then the engine and its session store
		if err := eng.Stop(); err != nil {
			errs = multierr.Append(errs, err)
		}
		return errs
	}
}
