package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"finsimples/internal/adapters"
	"finsimples/internal/amqp"
	"finsimples/internal/auth"
	"finsimples/internal/backend"
	"finsimples/internal/cache"
	"finsimples/internal/cli"
	"finsimples/internal/config"
	apphttp "finsimples/internal/http"
	applog "finsimples/internal/log"
	"finsimples/internal/services"
	"finsimples/internal/sheets"
	gsheet "finsimples/internal/sheets/google"
	"finsimples/internal/worker"
)

const (
	shutdownTimeout      = 30 * time.Second
	cacheCleanupInterval = time.Minute
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := cli.SetupLogger(cfg, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *applog.Logger) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	result, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}

	bus := cache.NewBus(logger.WithComponent(applog.ComponentCache).Logger)
	manager := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	store := adapters.NewCachedStore(result.Store, bus, manager, cfg.CacheMaxEntries, cfg.CacheTTL)
	manager.StartCleanup(cacheCleanupInterval)

	g, gctx := errgroup.WithContext(ctx)

	// Without a broker the local bus is the only subscriber that matters.
	var invalidator cache.Invalidator = bus
	var broker *amqp.Client
	if cfg.AMQPURL != "" {
		broker, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return fmt.Errorf("connect AMQP: %w", err)
		}
		workerLog := logger.WithComponent(applog.ComponentWorker).Logger
		b := worker.NewBroadcaster(bus, broker, workerLog)
		invalidator = b
		w := worker.NewInvalidationWorker(b.Origin(), bus, broker, workerLog)
		g.Go(func() error {
			if err := w.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("invalidation worker: %w", err)
			}
			return nil
		})
		logger.Info("Cross-instance cache invalidation enabled", "exchange", cfg.AMQPExchange, "origin", b.Origin())
	}

	policy, err := services.ParseDeletePolicy(cfg.CategoryDeletePolicy)
	if err != nil {
		return err
	}
	categories := services.NewCategoryService(store, invalidator, policy)
	transactions := services.NewTransactionService(store, categories, invalidator)
	svc := apphttp.Services{
		Transactions: transactions,
		Categories:   categories,
		Goals:        services.NewGoalService(store, invalidator),
		Reports:      services.NewReportService(transactions),
		Import:       services.NewImportService(store, invalidator),
	}

	var openSheet apphttp.SheetOpener
	if cfg.GoogleSheetsEnabled() {
		client, err := gsheet.New(ctx, gsheet.Credentials{
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
			OAuthClientFile:    cfg.GoogleOAuthClientFile,
			OAuthTokenFile:     cfg.GoogleOAuthTokenFile,
		})
		if err != nil {
			return fmt.Errorf("google sheets: %w", err)
		}
		openSheet = func(_ context.Context, spreadsheetID, rng string) (sheets.TableReader, error) {
			return client.Range(spreadsheetID, rng)
		}
		logger.Info("Google Sheets import enabled")
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:           ":" + cfg.Port,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimitRPM:   cfg.RateLimitRPM,
		MaxUploadBytes: cfg.MaxUploadBytes,
		ImportMaxRows:  cfg.ImportMaxRows,
		Logger:         logger,
		Verifier:       auth.NewVerifier(cfg.JWTSecret),
		Invalidator:    invalidator,
		Store:          store,
		OpenSheet:      openSheet,
		CacheStats:     store.Stats,
	}, svc)

	g.Go(func() error {
		logger.Info("Starting finsimples server", "port", cfg.Port, "backend", backendCfg.Type)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")
		cli.GracefulShutdown(logger, shutdownTimeout,
			srv.Shutdown,
			func(context.Context) error { manager.Stop(); return nil },
			closer(broker),
			func(context.Context) error {
				if result.Cleanup == nil {
					return nil
				}
				return result.Cleanup()
			},
		)
		return nil
	})

	return g.Wait()
}

func closer(c *amqp.Client) func(context.Context) error {
	if c == nil {
		return nil
	}
	return func(context.Context) error { return c.Close() }
}
