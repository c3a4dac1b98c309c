package main

import (
	"context"
	"errors"
	"os"
	"time"

	"gnomeshade/internal/amqp"
	"gnomeshade/internal/cli"
	"gnomeshade/internal/config"
	"gnomeshade/internal/log"
	"gnomeshade/internal/sheets"
	gsheet "gnomeshade/internal/sheets/google"
	mem "gnomeshade/internal/sheets/memory"
	"gnomeshade/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.MustLoadConfig((*config.Config).ValidateWorker)
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting gnomeshade-worker")

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	db, store, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open database", "error", err, "driver", cfg.DatabaseDriver)
		os.Exit(1)
	}
	defer db.Close()

	var journal sheets.JournalWriter
	if cfg.SheetsEnabled() {
		oauthClient, err := cfg.OAuthClient()
		if err != nil {
			logger.Error("Failed to read OAuth client", "error", err)
			os.Exit(1)
		}
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
			OAuthClientJSON: oauthClient,
			OAuthTokenFile:  cfg.GoogleOAuthTokenFile,
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		journal = client
		logger.Info("Journaling to Google Sheets", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		journal = mem.New()
		logger.Warn("Google Sheets disabled - journal entries are kept in memory only")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	journalWorker := worker.NewJournalWorker(store.Transfers, journal, logger)
	consumed := make(chan error, 1)
	go func() {
		consumed <- amqpClient.Consume(ctx, journalWorker.HandleEvent)
	}()

	if err := cli.GracefulShutdown(ctx, logger, 30*time.Second, func(shutdownCtx context.Context) error {
		select {
		case err := <-consumed:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
			return shutdownCtx.Err()
		}
	}); err != nil {
		os.Exit(1)
	}
}
