package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"gnomeshade/internal/amqp"
	"gnomeshade/internal/auth"
	"gnomeshade/internal/cli"
	"gnomeshade/internal/config"
	apphttp "gnomeshade/internal/http"
	"gnomeshade/internal/log"
	"gnomeshade/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.MustLoadConfig((*config.Config).Validate)
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	db, store, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open database", "error", err, "driver", cfg.DatabaseDriver)
		os.Exit(1)
	}
	defer db.Close()

	reports := services.NewReportService(store, cfg.ReportCacheSize, cfg.ReportCacheTTL, logger)

	// Events are optional; without a broker only the report cache is invalidated.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("Publishing entity events", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}
	notifier := services.NewNotifier(publisher, reports, logger)

	if cfg.AdminUsername != "" {
		users := services.NewUserService(store, notifier, logger)
		created, err := users.EnsureUser(ctx, cfg.AdminUsername, cfg.AdminPassword, cfg.AdminUsername)
		if err != nil {
			logger.Error("Failed to bootstrap admin user", "error", err, "username", cfg.AdminUsername)
			os.Exit(1)
		}
		if created {
			logger.Info("Admin user created", "username", cfg.AdminUsername)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Dependencies{
		Store:              store,
		Issuer:             auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Reports:            reports,
		Notifier:           notifier,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	go func() {
		logger.Info("Starting gnomeshade server", "port", cfg.Port, "driver", cfg.DatabaseDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err, "port", cfg.Port)
			cancel()
		}
	}()

	if err := cli.GracefulShutdown(ctx, logger, 30*time.Second, srv.Shutdown); err != nil {
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
