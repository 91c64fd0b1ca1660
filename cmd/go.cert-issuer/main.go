package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/ca/acmev2"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/config"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/environment"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/gateway/rest"
	ll "gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/logger"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/retry"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/server/http"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/service/issuer"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/service/probe"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/service/renewal"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/service/sweeper"
	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/storage/postgres"
)

//nolint:gochecknoglobals
var (
	version   = "unknown"
	buildTime = "unknown"
)

func main() {
	appConfig, err := config.New()
	if err != nil {
		if errors.Is(err, config.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("failed to read app config: %v", err)
	}

	logger, err := ll.New(version, appConfig.Env, appConfig.Logger.Level)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	ctx = environment.CtxWithEnv(ctx, appConfig.Env)
	ctx = environment.CtxWithVersion(ctx, version)
	ctx = environment.CtxWithBuildTime(ctx, buildTime)

	pgStorage, err := postgres.New(ctx, logger, &appConfig.Postgres)
	if err != nil {
		logger.Error("failed to connect to postgres", zap.Error(err))
		return
	}
	defer pgStorage.Close() //nolint:errcheck

	caClient, err := acmev2.New(&appConfig.ACME, logger)
	if err != nil {
		logger.Error("failed to init acme client", zap.Error(err))
		return
	}

	gateways := rest.NewFactory(&appConfig.Gateway, logger)

	issuerService := issuer.New(caClient, gateways, logger, issuer.Config{
		ResponderName:    appConfig.Responder.Name,
		ResponderBackend: appConfig.Responder.BackendFQDN,
		PollInterval:     appConfig.ACME.PollInterval,
		PollTimeout:      appConfig.ACME.PollTimeout,
		CARetry:          retry.Policy{BaseDelay: appConfig.ACME.RetryBaseDelay},
		GatewayRetry:     retry.Policy{BaseDelay: appConfig.Gateway.RetryBaseDelay},
		MaxConcurrency:   appConfig.Issuer.MaxConcurrency,
		DryRun:           appConfig.Issuer.DryRun,
	})
	renewalService := renewal.New(&pgStorage, gateways, issuerService, logger, renewal.Config{
		RenewBeforeDays: appConfig.Issuer.RenewBeforeDays,
		Force:           appConfig.Issuer.Force,
	})
	sweeperService := sweeper.New(&pgStorage, gateways, logger)
	probeService := probe.New(&pgStorage, logger)

	httpServer, err := http.NewServer(logger, appConfig, renewalService)
	if err != nil {
		logger.Error("failed to create http server", zap.Error(err))
		return
	}

	gr, appctx := errgroup.WithContext(ctx)
	gr.Go(func() error {
		return httpServer.Serve(appctx)
	})

	gr.Go(func() error {
		// Rules left behind by a previous interrupted run are removed
		// before the first renewal cycle touches the gateways.
		if _, err := sweeperService.Sweep(appctx); err != nil {
			return fmt.Errorf("failed to sweep orphaned challenge rules: %w", err)
		}

		if err := renewDue(appctx, logger, renewalService); err != nil {
			return err
		}

		tch := time.Tick(appConfig.Tickers.Renewal)
		for range tch {
			if err := renewDue(appctx, logger, renewalService); err != nil {
				return err
			}
		}

		return nil
	})

	gr.Go(func() error {
		tch := time.Tick(appConfig.Tickers.Probe)
		for range tch {
			if err := refreshServedCerts(appctx, logger, probeService); err != nil {
				return err
			}
		}

		return nil
	})

	if err := gr.Wait(); err != nil {
		logger.Error("application exited with error", zap.Error(err))
	}
}

func renewDue(ctx context.Context, logger *zap.Logger, renewalService renewal.Service) error {
	start := time.Now()

	summary, err := renewalService.RenewDue(ctx)
	if err != nil {
		return fmt.Errorf("failed to renew certificates %w", err)
	}
	logger.Info("renewal - successful",
		zap.Int("due", summary.Due),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", time.Since(start)),
	)

	return nil
}

func refreshServedCerts(ctx context.Context, logger *zap.Logger, probeService probe.Service) error {
	start := time.Now()

	if err := probeService.RefreshAll(ctx); err != nil {
		return fmt.Errorf("failed to refresh served certificates %w", err)
	}
	logger.Info("served certificate probe - successful", zap.Duration("duration", time.Since(start)))

	return nil
}
